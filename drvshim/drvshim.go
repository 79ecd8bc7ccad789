// Package drvshim adapts delegate buses to the bus interfaces of
// tinygo.org/x/drivers, so off-the-shelf sensor drivers from that
// collection can run over any backend.
package drvshim

import (
	"iobridge/delegate"
	"iobridge/errcode"
)

// I2C exposes a register-oriented delegate.I2C through the drivers Tx
// shape.
type I2C struct {
	bus delegate.I2C
}

// NewI2C wraps bus.
func NewI2C(bus delegate.I2C) *I2C {
	return &I2C{bus: bus}
}

// Tx performs one I2C transaction. A combined write/read maps to a
// register read with a repeated start, where the first written byte is
// the register; a pure write maps to a register write. The underlying
// contract has no bare-read form, so a transaction with an empty w is
// unsupported.
func (s *I2C) Tx(addr uint16, w, r []byte) error {
	if len(w) == 0 {
		return &errcode.E{
			C:   errcode.Unsupported,
			Op:  "drvshim.tx",
			Msg: "bare reads without a register write are not supported",
		}
	}
	if len(r) == 0 {
		return s.bus.Write(uint8(addr), w[0], w[1:])
	}
	if len(w) != 1 {
		return &errcode.E{
			C:   errcode.Unsupported,
			Op:  "drvshim.tx",
			Msg: "write-then-read supports a single register byte only",
		}
	}
	data, err := s.bus.Read(uint8(addr), w[0], len(r), true)
	if err != nil {
		return err
	}
	if len(data) != len(r) {
		return &errcode.E{C: errcode.Protocol, Op: "drvshim.tx", Msg: "short read"}
	}
	copy(r, data)
	return nil
}

// SPI binds one bus of a delegate.SPI master to the drivers SPI shape.
type SPI struct {
	master delegate.SPI
	bus    int
}

// NewSPI wraps one bus of master.
func NewSPI(master delegate.SPI, bus int) *SPI {
	return &SPI{master: master, bus: bus}
}

// Tx shifts w out while filling r with the bytes read back. Either
// slice may be nil; when both are set they must be the same length.
func (s *SPI) Tx(w, r []byte) error {
	if w == nil {
		w = make([]byte, len(r))
	}
	if r != nil && len(r) != len(w) {
		return &errcode.E{
			C:   errcode.InvalidArgument,
			Op:  "drvshim.spi",
			Msg: "w and r must be the same length",
		}
	}
	data, err := s.master.Transfer(s.bus, w, 0)
	if err != nil {
		return err
	}
	if r != nil {
		if len(data) < len(r) {
			return &errcode.E{C: errcode.Protocol, Op: "drvshim.spi", Msg: "short transfer"}
		}
		copy(r, data)
	}
	return nil
}

// Transfer shifts a single byte.
func (s *SPI) Transfer(b byte) (byte, error) {
	data, err := s.master.Transfer(s.bus, []byte{b}, 8)
	if err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, &errcode.E{C: errcode.Protocol, Op: "drvshim.spi", Msg: "empty transfer"}
	}
	return data[0], nil
}
