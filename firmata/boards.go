package firmata

import (
	"fmt"

	"iobridge/errcode"
	"iobridge/usbinfo"
)

// Board describes one supported microcontroller model: its pin layout and
// the USB identifiers its serial interface may enumerate under.
type Board struct {
	Name        string
	PinCount    int // digital pins, grouped into 8-pin ports
	AnalogCount int // ADC channels
	IDs         []usbinfo.ID
}

var (
	Uno = Board{
		Name:        "uno",
		PinCount:    14,
		AnalogCount: 6,
		IDs: []usbinfo.ID{
			{Vendor: 0x2341, Product: 0x0043},
			{Vendor: 0x2341, Product: 0x0001},
			{Vendor: 0x2A03, Product: 0x0043},
			{Vendor: 0x2341, Product: 0x0243},
		},
	}

	Mega = Board{
		Name:        "mega",
		PinCount:    54,
		AnalogCount: 16,
		IDs: []usbinfo.ID{
			{Vendor: 0x2341, Product: 0x0010},
			{Vendor: 0x2341, Product: 0x0042},
			{Vendor: 0x2A03, Product: 0x0010},
			{Vendor: 0x2A03, Product: 0x0042},
			{Vendor: 0x2341, Product: 0x0210},
			{Vendor: 0x2341, Product: 0x0242},
		},
	}

	Due = Board{
		Name:        "due",
		PinCount:    54,
		AnalogCount: 12,
		IDs: []usbinfo.ID{
			{Vendor: 0x2341, Product: 0x003D},
			{Vendor: 0x2341, Product: 0x003E},
		},
	}
)

// numPorts returns how many 8-pin ports the board's digital pins span.
func (b Board) numPorts() int {
	return (b.PinCount + 7) / 8
}

// Resolve picks the single tty endpoint matching the board's identifiers
// and the given serial number out of the supplied descriptor set. Zero or
// ambiguous matches fail with errcode.Connection.
func Resolve(board Board, serialNumber string, endpoints []usbinfo.Endpoint) (usbinfo.Endpoint, error) {
	var matches []usbinfo.Endpoint
	for _, ep := range usbinfo.Match(endpoints, board.IDs, serialNumber) {
		if ep.HasTTY() {
			matches = append(matches, ep)
		}
	}
	if len(matches) != 1 {
		return usbinfo.Endpoint{}, &errcode.E{
			C:   errcode.Connection,
			Op:  "firmata.resolve",
			Msg: fmt.Sprintf("expected exactly one %s device with serial %q, found %d", board.Name, serialNumber, len(matches)),
		}
	}
	return matches[0], nil
}
