// Package protocol implements the framed wire protocol spoken over the
// shared serial byte stream: three-byte channel messages for digital and
// analog state, sysex frames for everything else, and the 7-bit payload
// codec sysex data is packed with.
package protocol

// Status bytes. The low nibble of a channel message carries the port or
// channel index.
const (
	DigitalMessage byte = 0x90 // digital port state change
	AnalogMessage  byte = 0xE0 // analog channel sample
	ReportAnalog   byte = 0xC0 // enable/disable analog channel reporting
	ReportDigital  byte = 0xD0 // enable/disable digital port reporting
	SetPinMode     byte = 0xF4
	SysexStart     byte = 0xF0
	SysexEnd       byte = 0xF7
)

// Sysex sub-commands.
const (
	I2CRequest byte = 0x76
	I2CReply   byte = 0x77
	I2CConfig  byte = 0x78
)

// Pin modes for SetPinMode.
const (
	ModeInput  byte = 0x00
	ModeOutput byte = 0x01
	ModeAnalog byte = 0x02
)

// Bits of the I2C request mode byte. The low bit selects the direction,
// bit 6 requests a repeated START between the register write and the read.
const (
	I2CModeWrite   byte = 0x00
	I2CModeRead    byte = 0x08
	I2CRestartMask byte = 0x40
)

// MaxChannel is the highest port or channel index a three-byte message can
// address.
const MaxChannel = 0x0F

// AppendMessage appends a three-byte channel message: the status byte ORed
// with the channel, then the value split into its low 7 bits and high bits.
func AppendMessage(dst []byte, status, channel byte, value uint16) []byte {
	return append(dst, status|channel&MaxChannel, byte(value&0x7F), byte(value>>7&0x7F))
}

// AppendSysex appends a framed sysex message carrying cmd and payload.
// Payload bytes must already be 7-bit clean.
func AppendSysex(dst []byte, cmd byte, payload []byte) []byte {
	dst = append(dst, SysexStart, cmd)
	dst = append(dst, payload...)
	return append(dst, SysexEnd)
}
