// Package usbinfo models resolved USB endpoint descriptors. Enumerating
// the bus is out of scope: callers obtain these records from whatever
// discovery mechanism they use and pass them to the device constructors,
// which filter them against static per-model identifier tables.
package usbinfo

import "strings"

// ID is a USB vendor/product identifier pair.
type ID struct {
	Vendor  uint16
	Product uint16
}

// Endpoint describes one discovered USB endpoint.
type Endpoint struct {
	ID     ID
	Serial string

	// Device is the character device node backing the endpoint, e.g.
	// "/dev/ttyACM0". Empty when the endpoint has no tty.
	Device string

	// Interface is the USB interface number, or -1 when the record does
	// not describe an interface endpoint.
	Interface int
}

// HasTTY reports whether the endpoint is backed by a tty character device.
func (e Endpoint) HasTTY() bool {
	return strings.HasPrefix(e.Device, "/dev/tty")
}

// Match returns the endpoints with the given serial number whose ID appears
// in ids.
func Match(endpoints []Endpoint, ids []ID, serial string) []Endpoint {
	var out []Endpoint
	for _, ep := range endpoints {
		if ep.Serial != serial {
			continue
		}
		for _, id := range ids {
			if ep.ID == id {
				out = append(out, ep)
				break
			}
		}
	}
	return out
}
