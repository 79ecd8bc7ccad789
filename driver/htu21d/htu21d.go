// Package htu21d drives an HTU21D temperature and humidity sensor over
// I2C.
package htu21d

import (
	"math"

	"iobridge/delegate"
	"iobridge/errcode"
)

// Addr is the sensor's fixed I2C address.
const Addr = 0x40

// Sensor commands.
const (
	TriggerTempHold   = 0xE3
	TriggerHumHold    = 0xE5
	TriggerTempNoHold = 0xF3
	TriggerHumNoHold  = 0xF5
	WriteUser         = 0xE6
	ReadUser          = 0xE7
	SoftReset         = 0xFE
)

// Partial pressure constants for the dew point calculation.
const (
	ppA = 8.1332
	ppB = 1762.39
	ppC = 235.66
)

// Sensor is an HTU21D on an I2C bus.
type Sensor struct {
	bus delegate.I2C
}

// New returns a sensor on the given bus.
func New(bus delegate.I2C) *Sensor {
	return &Sensor{bus: bus}
}

// Reset issues a soft reset.
func (s *Sensor) Reset() error {
	return s.bus.Write(Addr, SoftReset, nil)
}

// validateCRC checks the sensor's CRC-8 over a measurement frame.
func validateCRC(msb, lsb, crc byte) error {
	remainder := uint32(msb)<<16 | uint32(lsb)<<8 | uint32(crc)
	divisor := uint32(0x988000)

	for i := 0; i < 16; i++ {
		if remainder&(1<<(23-i)) != 0 {
			remainder ^= divisor
		}
		divisor >>= 1
	}
	if remainder != 0 {
		return &errcode.E{C: errcode.Protocol, Op: "htu21d.crc", Msg: "measurement failed CRC check"}
	}
	return nil
}

// readRegister triggers a measurement and returns the raw 14-bit value
// with the status bits cleared.
func (s *Sensor) readRegister(trigger uint8) (uint16, error) {
	data, err := s.bus.Read(Addr, trigger, 3, false)
	if err != nil {
		return 0, err
	}
	if len(data) < 3 {
		return 0, &errcode.E{C: errcode.Protocol, Op: "htu21d.read", Msg: "short measurement frame"}
	}
	if err := validateCRC(data[0], data[1], data[2]); err != nil {
		return 0, err
	}
	return (uint16(data[0])<<8 | uint16(data[1])) & 0xFFFC, nil
}

// Temperature returns the sensed temperature in degrees Celsius.
func (s *Sensor) Temperature() (float64, error) {
	raw, err := s.readRegister(TriggerTempHold)
	if err != nil {
		return 0, err
	}
	return float64(raw)/65536*175.72 - 46.85, nil
}

// Humidity returns the relative humidity in percent, clamped at zero.
func (s *Sensor) Humidity() (float64, error) {
	raw, err := s.readRegister(TriggerHumHold)
	if err != nil {
		return 0, err
	}
	return math.Max(0, float64(raw)/65536*125-6), nil
}

// PartialPressure returns the saturation partial pressure of water
// vapor at the current temperature, in mmHg.
func (s *Sensor) PartialPressure() (float64, error) {
	temp, err := s.Temperature()
	if err != nil {
		return 0, err
	}
	return math.Pow(10, ppA-ppB/(temp+ppC)), nil
}

// DewPoint returns the dew point temperature in degrees Celsius.
func (s *Sensor) DewPoint() (float64, error) {
	pressure, err := s.PartialPressure()
	if err != nil {
		return 0, err
	}
	humidity, err := s.Humidity()
	if err != nil {
		return 0, err
	}
	denominator := math.Log10(humidity*pressure/100) - ppA
	return -(ppB/denominator + ppC), nil
}
