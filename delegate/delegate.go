// Package delegate defines the capability contracts a hardware backend can
// expose: digital I/O, analog input/output, I2C master and SPI master.
//
// Higher-level device drivers (sensors, PWM controllers, muxes) program
// against these interfaces only and never assume a specific transport. A
// backend implements whichever subset of capabilities its hardware supports;
// the embeddable No* types supply honest "unsupported" defaults for the
// rest.
package delegate

import "iobridge/errcode"

// Gpio is a single digital I/O pin.
type Gpio interface {
	// Write drives the pin to the given logic level and switches it to
	// output mode. A nil value requests a tri-state/high-impedance (input)
	// mode instead, assuming the pin is capable of it.
	Write(value *int) error

	// Read returns the pin's logic level, 0 or 1. A pin that has never
	// been observed reads as 0.
	Read() (int, error)

	// SetCallback registers fn to run whenever the pin changes state.
	// Registering forces the pin into input mode with change reporting
	// enabled. Passing nil deregisters the callback and disables
	// reporting. Backends without change reporting return
	// errcode.Unsupported.
	SetCallback(fn func()) error
}

// AnalogIn is a single ADC input channel.
type AnalogIn interface {
	// Read returns the sensed voltage.
	Read() (float64, error)

	// Min is the minimum voltage this input can sense.
	Min() float64

	// Max is the maximum voltage this input can sense.
	Max() float64
}

// AnalogOut is a single DAC output channel.
type AnalogOut interface {
	// Write drives the output to the given voltage.
	Write(volts float64) error

	// Min is the minimum voltage this output can drive.
	Min() float64

	// Max is the maximum voltage this output can drive.
	Max() float64
}

// I2C is a register-oriented I2C master.
type I2C interface {
	// Write writes data to a register on the device at addr.
	Write(addr, reg uint8, data []byte) error

	// Read reads n bytes from a register on the device at addr. When
	// restart is true the bus is held between the register write and the
	// read with a repeated START condition.
	Read(addr, reg uint8, n int, restart bool) ([]byte, error)
}

// SPI is a full-duplex SPI master. Chip select is not handled here: the
// caller asserts and deasserts it through whatever GPIO it has.
type SPI interface {
	// CPOL is the clock polarity of this bus.
	CPOL() int

	// CPHA is the clock phase of this bus.
	CPHA() int

	// Transfer shifts w out on the given bus while reading the same number
	// of bits back. When bits <= 0 the transfer length is len(w)*8.
	Transfer(bus int, w []byte, bits int) ([]byte, error)
}

// Write8 writes a single byte to a register on an I2C device.
func Write8(bus I2C, addr, reg, value uint8) error {
	return bus.Write(addr, reg, []byte{value})
}

// Read8 reads a single byte from a register on an I2C device.
func Read8(bus I2C, addr, reg uint8) (uint8, error) {
	data, err := bus.Read(addr, reg, 1, false)
	if err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, &errcode.E{C: errcode.Protocol, Op: "i2c.read8", Msg: "empty reply"}
	}
	return data[0], nil
}

// NoCallback is embedded by Gpio backends whose hardware cannot report
// state changes.
type NoCallback struct{}

func (NoCallback) SetCallback(func()) error {
	return &errcode.E{C: errcode.Unsupported, Op: "gpio.callback", Msg: "backend does not report state changes"}
}
