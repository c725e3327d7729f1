package mcp23008

// BaseAddress is the fixed part of the chip's bus address in 8-bit
// (write) form. The 3-bit hardware strap (A0..A2) occupies bits 1..3.
const BaseAddress = 0x40

// MCP23008 register map.
const (
	regIODIR   = 0x00 // I/O direction: 1=input, 0=output
	regIPOL    = 0x01 // input polarity: 1 inverts the read value
	regGPINTEN = 0x02 // interrupt-on-change enable
	regDEFVAL  = 0x03 // compare value for interrupt-on-change
	regINTCON  = 0x04 // interrupt control: 0=any change, 1=compare to DEFVAL
	regIOCON   = 0x05 // chip configuration
	regGPPU    = 0x06 // 100 kOhm pull-up enable
	regINTF    = 0x07 // interrupt flag (read-only)
	regINTCAP  = 0x08 // pin state captured at interrupt time (read-only)
	regGPIO    = 0x09 // live pin state; writes land in OLAT
	regOLAT    = 0x0A // output latch
)
