package ftdi

import (
	realftdi "github.com/ziutek/ftdi"
)

// libConn is the production Conn, backed by libftdi in asynchronous
// bit-bang mode. Direction changes re-issue the bit mode with the new
// output mask, which is how the chip declares pin directions.
type libConn struct {
	dev *realftdi.Device
}

func openBitBang(product int, serialNumber string, bus int, outputEnable byte) (Conn, error) {
	dev, err := realftdi.Open(int(VendorID), product, "", serialNumber, 0, realftdi.Channel(bus+1))
	if err != nil {
		return nil, err
	}
	if err := dev.SetBitmode(outputEnable, realftdi.ModeBitbang); err != nil {
		dev.Close()
		return nil, err
	}
	return &libConn{dev: dev}, nil
}

func (c *libConn) WritePort(value byte) error {
	return c.dev.WriteByte(value)
}

func (c *libConn) ReadPort() (byte, error) {
	return c.dev.Pins()
}

func (c *libConn) SetDirection(mask byte) error {
	return c.dev.SetBitmode(mask, realftdi.ModeBitbang)
}

func (c *libConn) Close() error {
	return c.dev.Close()
}
