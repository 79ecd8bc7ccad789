// Package pca9685 drives a PCA9685 16-channel PWM controller over I2C.
package pca9685

import (
	"fmt"
	"math"
	"time"

	"iobridge/delegate"
	"iobridge/errcode"
)

// Register map.
const (
	Mode1    = 0x00
	Mode2    = 0x01
	SubAdr1  = 0x02
	SubAdr2  = 0x03
	SubAdr3  = 0x04
	Prescale = 0xFE

	Led0OnL  = 0x06
	Led0OnH  = 0x07
	Led0OffL = 0x08
	Led0OffH = 0x09

	AllLedOnL  = 0xFA
	AllLedOnH  = 0xFB
	AllLedOffL = 0xFC
	AllLedOffH = 0xFD
)

// MODE1 and MODE2 bits.
const (
	Mode1Restart = 0x80
	Mode1Sleep   = 0x10
	Mode1AllCall = 0x01
	Mode2Invrt   = 0x10
	Mode2OutDrv  = 0x04
)

const oscillatorHz = 25000000

// Controller is a PCA9685 on an I2C bus.
type Controller struct {
	bus  delegate.I2C
	addr uint8
}

// New initializes the controller at the given strap address (the lower
// six bits set by pins A5 through A0) and wakes it from sleep.
func New(bus delegate.I2C, address uint8) (*Controller, error) {
	c := &Controller{bus: bus, addr: (address & 0x3F) + 0x40}

	if err := delegate.Write8(c.bus, c.addr, Mode2, Mode2OutDrv); err != nil {
		return nil, err
	}
	if err := delegate.Write8(c.bus, c.addr, Mode1, Mode1AllCall); err != nil {
		return nil, err
	}
	time.Sleep(5 * time.Millisecond)

	mode1, err := delegate.Read8(c.bus, c.addr, Mode1)
	if err != nil {
		return nil, err
	}
	if err := delegate.Write8(c.bus, c.addr, Mode1, mode1&^uint8(Mode1Sleep)); err != nil {
		return nil, err
	}
	return c, nil
}

// SetPWMFreq programs the output frequency in hertz. The controller
// must sleep while the prescaler is written, so outputs glitch briefly.
func (c *Controller) SetPWMFreq(freqHz float64) error {
	prescale := uint8(math.Floor(oscillatorHz/4096.0/freqHz - 1.0 + 0.5))

	oldMode, err := delegate.Read8(c.bus, c.addr, Mode1)
	if err != nil {
		return err
	}
	if err := delegate.Write8(c.bus, c.addr, Mode1, (oldMode&0x7F)|Mode1Sleep); err != nil {
		return err
	}
	if err := delegate.Write8(c.bus, c.addr, Prescale, prescale); err != nil {
		return err
	}
	if err := delegate.Write8(c.bus, c.addr, Mode1, oldMode); err != nil {
		return err
	}
	time.Sleep(5 * time.Millisecond)
	return delegate.Write8(c.bus, c.addr, Mode1, oldMode|Mode1Restart)
}

// SetPWM programs the ON and OFF transition ticks, out of 4095, for one
// channel.
func (c *Controller) SetPWM(channel, on, off int) error {
	if channel < 0 || channel > 15 {
		return &errcode.E{
			C:   errcode.InvalidArgument,
			Op:  "pca9685.pwm",
			Msg: fmt.Sprintf("channel %d out of range 0..15", channel),
		}
	}
	if on < 0 || on > 4095 {
		return &errcode.E{
			C:   errcode.InvalidArgument,
			Op:  "pca9685.pwm",
			Msg: fmt.Sprintf("on time %d out of range 0..4095", on),
		}
	}
	if off < 0 || off > 4095 {
		return &errcode.E{
			C:   errcode.InvalidArgument,
			Op:  "pca9685.pwm",
			Msg: fmt.Sprintf("off time %d out of range 0..4095", off),
		}
	}
	base := uint8(Led0OnL + 4*channel)
	if err := delegate.Write8(c.bus, c.addr, base, uint8(on&0xFF)); err != nil {
		return err
	}
	if err := delegate.Write8(c.bus, c.addr, base+1, uint8(on>>8)); err != nil {
		return err
	}
	if err := delegate.Write8(c.bus, c.addr, base+2, uint8(off&0xFF)); err != nil {
		return err
	}
	return delegate.Write8(c.bus, c.addr, base+3, uint8(off>>8))
}

// SetPWMDuty sets a channel's duty cycle as a fraction in [0, 1], with
// the on transition fixed at tick zero.
func (c *Controller) SetPWMDuty(channel int, duty float64) error {
	return c.SetPWM(channel, 0, int(duty*4095))
}
