package firmata

import (
	"iobridge/delegate"
	"iobridge/errcode"
	"iobridge/protocol"
)

// EnableI2C sends the remote bus configuration. It runs once per device;
// later calls are no-ops. I2CRead and I2CWrite call it implicitly.
func (d *Device) EnableI2C() error {
	var err error
	d.i2cConfig.Do(func() {
		err = d.writeFrame(protocol.AppendSysex(nil, protocol.I2CConfig, []byte{0, 0}))
	})
	return err
}

// I2CRead performs one register read transaction and returns up to n
// bytes. Bare reads without a register are not supported by this
// transport; pass restart to hold the bus between the register write and
// the read with a repeated START.
//
// The call blocks until the dispatch goroutine delivers the reply. There
// is deliberately no timeout: a non-responding or disconnected device
// blocks the caller until the device is closed.
func (d *Device) I2CRead(addr uint8, reg, n int, restart bool) ([]byte, error) {
	if reg < 0 {
		return nil, &errcode.E{C: errcode.InvalidArgument, Op: "i2c.read", Msg: "bare reads without a register are not supported"}
	}
	if reg > 0x3FFF {
		return nil, &errcode.E{C: errcode.InvalidArgument, Op: "i2c.read", Msg: "register out of range"}
	}
	if n < 1 || n > 0x3FFF {
		return nil, &errcode.E{C: errcode.InvalidArgument, Op: "i2c.read", Msg: "byte count out of range"}
	}

	mode := protocol.I2CModeRead
	if restart {
		mode |= protocol.I2CRestartMask
	}

	d.txMu.Lock()
	defer d.txMu.Unlock()

	if err := d.EnableI2C(); err != nil {
		return nil, err
	}

	payload := []byte{
		addr & 0x7F, mode,
		byte(reg & 0x7F), byte(reg >> 7 & 0x7F),
		byte(n & 0x7F), byte(n >> 7 & 0x7F),
	}
	if err := d.writeFrame(protocol.AppendSysex(nil, protocol.I2CRequest, payload)); err != nil {
		return nil, err
	}

	select {
	case reply := <-d.i2cReply:
		if len(reply) > n {
			reply = reply[:n]
		}
		return reply, nil
	case <-d.stop:
		return nil, &errcode.E{C: errcode.Connection, Op: "i2c.read", Msg: "device closed while waiting for reply"}
	}
}

// I2CWrite writes data to a register on the device at addr. The request is
// fire-and-forget: no reply is awaited and no transaction slot is held.
func (d *Device) I2CWrite(addr uint8, reg int, data []byte) error {
	if reg < 0 || reg > 0xFF {
		return &errcode.E{C: errcode.InvalidArgument, Op: "i2c.write", Msg: "register out of range"}
	}
	if err := d.EnableI2C(); err != nil {
		return err
	}

	payload := []byte{addr & 0x7F, protocol.I2CModeWrite}
	payload = protocol.EncodeSevenBit(payload, append([]byte{byte(reg)}, data...))
	return d.writeFrame(protocol.AppendSysex(nil, protocol.I2CRequest, payload))
}

// i2cBus adapts the device to the delegate.I2C contract.
type i2cBus struct {
	dev *Device
}

var _ delegate.I2C = i2cBus{}

func (b i2cBus) Write(addr, reg uint8, data []byte) error {
	return b.dev.I2CWrite(addr, int(reg), data)
}

func (b i2cBus) Read(addr, reg uint8, n int, restart bool) ([]byte, error) {
	return b.dev.I2CRead(addr, int(reg), n, restart)
}
