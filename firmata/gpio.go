package firmata

import (
	"iobridge/protocol"
)

// WritePin drives pin to value and switches it to output mode. A nil value
// switches the pin to input (tri-state) mode instead. The cached input
// state is not touched here: it belongs to the dispatch goroutine and only
// changes when the device reports back.
func (d *Device) WritePin(pin int, value *int) error {
	if err := d.checkPin(pin); err != nil {
		return err
	}
	if value == nil {
		return d.setPinMode(pin, protocol.ModeInput)
	}

	port, bit := pin/8, uint(pin%8)
	d.pinMu.Lock()
	if *value != 0 {
		d.outMasks[port] |= 1 << bit
	} else {
		d.outMasks[port] &^= 1 << bit
	}
	mask := d.outMasks[port]
	d.pinMu.Unlock()

	if err := d.writeFrame(protocol.AppendMessage(nil, protocol.DigitalMessage, byte(port), uint16(mask))); err != nil {
		return err
	}
	return d.setPinMode(pin, protocol.ModeOutput)
}

// ReadPin returns the last observed value of pin. A pin that has never
// been reported reads as 0.
func (d *Device) ReadPin(pin int) (int, error) {
	if err := d.checkPin(pin); err != nil {
		return 0, err
	}
	d.pinMu.Lock()
	defer d.pinMu.Unlock()
	if d.portValues[pin/8]&(1<<uint(pin%8)) != 0 {
		return 1, nil
	}
	return 0, nil
}

// SetPinCallback registers fn to run, on the dispatch goroutine, each time
// pin changes state. Registering forces the pin into input mode and
// enables change reporting for its port. A nil fn removes any existing
// registration and disables reporting for the port.
func (d *Device) SetPinCallback(pin int, fn func()) error {
	if err := d.checkPin(pin); err != nil {
		return err
	}
	port := pin / 8

	if fn == nil {
		d.pinMu.Lock()
		delete(d.callbacks, pin)
		d.pinMu.Unlock()
		return d.writeFrame(protocol.AppendMessage(nil, protocol.ReportDigital, byte(port), 0))
	}

	if err := d.WritePin(pin, nil); err != nil {
		return err
	}
	d.pinMu.Lock()
	d.callbacks[pin] = fn
	d.pinMu.Unlock()
	return d.writeFrame(protocol.AppendMessage(nil, protocol.ReportDigital, byte(port), 1))
}

func (d *Device) setPinMode(pin int, mode byte) error {
	return d.writeFrame([]byte{protocol.SetPinMode, byte(pin), mode})
}

// gpioPin adapts one device pin to the delegate.Gpio contract.
type gpioPin struct {
	dev   *Device
	index int
}

func (g gpioPin) Write(value *int) error {
	return g.dev.WritePin(g.index, value)
}

func (g gpioPin) Read() (int, error) {
	return g.dev.ReadPin(g.index)
}

func (g gpioPin) SetCallback(fn func()) error {
	return g.dev.SetPinCallback(g.index, fn)
}
