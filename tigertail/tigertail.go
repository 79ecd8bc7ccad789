// Package tigertail controls a Tigertail USB-C mux. The device accepts
// short text commands on its bulk OUT endpoint; the only one used here
// selects which of the two downstream ports, if any, is connected.
package tigertail

import (
	"fmt"

	"iobridge/errcode"
)

// USB identifiers for the Tigertail.
const (
	VendorID  = 0x18d1
	ProductID = 0x5027
)

// Mux positions.
const (
	Off  = "off"
	SelA = "A"
	SelB = "B"
)

// commandWriter is the bulk OUT endpoint of an open Tigertail.
type commandWriter interface {
	Write(p []byte) (int, error)
	Close() error
}

// Mux is an open Tigertail device.
type Mux struct {
	w commandWriter
}

// Open claims the Tigertail with the given serial number. An empty
// serial matches any Tigertail on the bus.
func Open(serialNumber string) (*Mux, error) {
	w, err := openEndpoint(serialNumber)
	if err != nil {
		return nil, &errcode.E{C: errcode.Connection, Op: "tigertail.open", Err: err}
	}
	return &Mux{w: w}, nil
}

// Select switches the mux to the given position.
func (m *Mux) Select(position string) error {
	switch position {
	case Off, SelA, SelB:
	default:
		return &errcode.E{
			C:   errcode.InvalidArgument,
			Op:  "tigertail.select",
			Msg: fmt.Sprintf("unknown mux position %q", position),
		}
	}
	cmd := []byte("mux " + position + "\r\n")
	if _, err := m.w.Write(cmd); err != nil {
		return &errcode.E{C: errcode.Connection, Op: "tigertail.select", Err: err}
	}
	return nil
}

// Close releases the USB device.
func (m *Mux) Close() error {
	return m.w.Close()
}
