package firmata

import (
	"time"

	"iobridge/protocol"
)

// readLoop is the sole reader of the transport for the device's lifetime.
// It drains whatever bytes are available, feeds them through the frame
// parser, and exits when Close signals the stop channel. Read errors are
// never fatal here: a misbehaving link must not kill the reader and
// silently lose the device.
func (d *Device) readLoop() {
	defer close(d.done)

	buf := make([]byte, 256)
	for {
		select {
		case <-d.stop:
			return
		default:
		}

		n, _ := d.port.Read(buf)
		if n > 0 {
			d.parser.Feed(buf[:n])
			continue
		}

		// Nothing read: a timeout, a transient error, or a dead link.
		// Wait a beat on the termination signal before trying again.
		select {
		case <-d.stop:
			return
		case <-time.After(time.Millisecond):
		}
	}
}

// dispatch routes one decoded frame. Unknown commands are dropped.
func (d *Device) dispatch(m protocol.Message) {
	switch m.Command {
	case protocol.DigitalMessage:
		d.handleDigital(int(m.Channel), m.Data)
	case protocol.AnalogMessage:
		d.handleAnalog(int(m.Channel), m.Data)
	case protocol.I2CReply:
		d.handleI2CReply(m.Data)
	}
}

// handleDigital diffs the reported mask against the port's cached value
// and fires the callback of every pin whose value changed, exactly once
// per transition, synchronously on the dispatch goroutine.
func (d *Device) handleDigital(port int, data []byte) {
	if len(data) < 2 {
		return
	}
	// 14-bit capable on the wire, truncated to the port's 8 pins.
	mask := byte(uint16(data[0])&0x7F | uint16(data[1])<<7)

	d.pinMu.Lock()
	if port >= len(d.portValues) {
		d.pinMu.Unlock()
		return
	}
	changed := d.portValues[port] ^ mask
	d.portValues[port] = mask

	var fire []func()
	for bit := 0; bit < 8; bit++ {
		if changed&(1<<bit) == 0 {
			continue
		}
		if fn := d.callbacks[port*8+bit]; fn != nil {
			fire = append(fire, fn)
		}
	}
	d.pinMu.Unlock()

	// Callbacks run outside the lock so they may register or deregister
	// callbacks themselves.
	for _, fn := range fire {
		fn()
	}
}

func (d *Device) handleAnalog(channel int, data []byte) {
	if len(data) < 2 {
		return
	}
	value := int(data[0])&0x7F | int(data[1])<<7

	d.analogMu.Lock()
	if channel < len(d.analogValues) {
		d.analogValues[channel] = value
	}
	d.analogMu.Unlock()
}

// handleI2CReply decodes a reply payload and deposits it in the single
// reply slot. The payload starts with the address and register as 7-bit
// pairs; the data bytes follow. A reply nobody is waiting for is dropped.
func (d *Device) handleI2CReply(payload []byte) {
	if len(payload) < 4 {
		return
	}
	data := protocol.DecodeSevenBit(payload[4:])

	select {
	case d.i2cReply <- data:
	default:
	}
}
