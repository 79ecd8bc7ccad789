package firmata

import (
	"iobridge/errcode"
	"iobridge/protocol"
)

const (
	adcVoltageMin = 0.0
	adcVoltageMax = 5.0
	adcFullScale  = 1023 // 10-bit converter
)

// EnableAnalog asks the device to start reporting samples for channel.
// The request is fire-and-forget: a read immediately afterwards may still
// observe no sample.
func (d *Device) EnableAnalog(channel int) error {
	if err := d.checkChannel(channel); err != nil {
		return err
	}
	d.analogMu.Lock()
	d.analogOn[channel] = true
	d.analogMu.Unlock()
	return d.writeFrame(protocol.AppendMessage(nil, protocol.ReportAnalog, byte(channel), 1))
}

// DisableAnalog stops reporting for channel.
func (d *Device) DisableAnalog(channel int) error {
	if err := d.checkChannel(channel); err != nil {
		return err
	}
	d.analogMu.Lock()
	d.analogOn[channel] = false
	d.analogMu.Unlock()
	return d.writeFrame(protocol.AppendMessage(nil, protocol.ReportAnalog, byte(channel), 0))
}

// ReadAnalog returns the last reported raw sample for channel. The channel
// must have been enabled first.
func (d *Device) ReadAnalog(channel int) (int, error) {
	if err := d.checkChannel(channel); err != nil {
		return 0, err
	}
	d.analogMu.Lock()
	defer d.analogMu.Unlock()
	if !d.analogOn[channel] {
		return 0, &errcode.E{C: errcode.NotReady, Op: "adc.read", Msg: "channel must be enabled before reading"}
	}
	return d.analogValues[channel], nil
}

// analogChannel adapts one ADC channel to the delegate.AnalogIn contract,
// scaling raw samples linearly into the sensed voltage range.
type analogChannel struct {
	dev   *Device
	index int
}

func (a analogChannel) Read() (float64, error) {
	raw, err := a.dev.ReadAnalog(a.index)
	if err != nil {
		return 0, err
	}
	return adcVoltageMax * float64(raw) / adcFullScale, nil
}

func (a analogChannel) Min() float64 { return adcVoltageMin }
func (a analogChannel) Max() float64 { return adcVoltageMax }
