// Package ftdi exposes the data-bus pins of FTDI USB adapters as GPIO
// delegates via the chip's bit-bang mode. There is no background reader
// here: every operation is a direct read-modify-write of the bus port and
// direction registers, so pin-change callbacks are unsupported.
package ftdi

import (
	"fmt"
	"strings"
	"sync"

	"iobridge/delegate"
	"iobridge/errcode"
	"iobridge/usbinfo"
)

// VendorID is the FTDI USB vendor identifier.
const VendorID uint16 = 0x0403

// Conn is one adapter channel in bit-bang mode. The production
// implementation wraps a libftdi device; tests substitute fakes.
type Conn interface {
	// WritePort drives the bus's output latch.
	WritePort(value byte) error

	// ReadPort samples the current pin states.
	ReadPort() (byte, error)

	// SetDirection re-declares which bits are outputs, 1 = output.
	SetDirection(mask byte) error

	Close() error
}

// OpenFunc opens channel bus of the adapter in bit-bang mode with the
// given initial output-enable mask.
type OpenFunc func(bus int, outputEnable byte) (Conn, error)

// Adapter groups the data buses of one FTDI device. Buses are named dbus
// on single-bus parts, or adbus, bdbus, ... on multi-bus parts.
type Adapter struct {
	numBuses int
	open     OpenFunc

	mu    []sync.Mutex // per-bus read-modify-write locks
	conns []Conn
	latch []byte // output latch per bus
	dir   []byte // direction mask per bus
}

// New derives the adapter's bus count from the supplied endpoint
// descriptors (one interface endpoint per bus) and opens buses on demand
// through libftdi. Zero matching endpoints fail with errcode.Connection.
func New(serialNumber string, endpoints []usbinfo.Endpoint) (*Adapter, error) {
	num := 0
	var product uint16
	for _, ep := range endpoints {
		if ep.ID.Vendor == VendorID && ep.Serial == serialNumber && ep.Interface >= 0 {
			num++
			product = ep.ID.Product
		}
	}
	if num == 0 {
		return nil, &errcode.E{
			C:   errcode.Connection,
			Op:  "ftdi.new",
			Msg: fmt.Sprintf("no FTDI device with serial %q", serialNumber),
		}
	}
	open := func(bus int, outputEnable byte) (Conn, error) {
		return openBitBang(int(product), serialNumber, bus, outputEnable)
	}
	return NewWithOpener(num, open), nil
}

// NewWithOpener builds an adapter over a custom channel opener.
func NewWithOpener(numBuses int, open OpenFunc) *Adapter {
	return &Adapter{
		numBuses: numBuses,
		open:     open,
		mu:       make([]sync.Mutex, numBuses),
		conns:    make([]Conn, numBuses),
		latch:    make([]byte, numBuses),
		dir:      make([]byte, numBuses),
	}
}

// BusIndex maps a bus name like "adbus", or "dbus" on single-bus parts,
// to its index.
func (a *Adapter) BusIndex(name string) (int, error) {
	name = strings.ToLower(name)
	if a.numBuses == 1 {
		if name == "dbus" {
			return 0, nil
		}
	} else if len(name) == 5 && strings.HasSuffix(name, "dbus") {
		idx := int(name[0] - 'a')
		if idx >= 0 && idx < a.numBuses {
			return idx, nil
		}
	}
	return 0, &errcode.E{C: errcode.InvalidArgument, Op: "ftdi.bus", Msg: "unknown bus " + name}
}

// SetBitBang switches a bus to bit-bang mode with the given output-enable
// mask. A bus is typically hardwired to either serial or bit-bang
// circuitry, so this is done once per bus; doing it twice is an error.
func (a *Adapter) SetBitBang(bus int, outputEnable byte) error {
	if err := a.checkBus(bus); err != nil {
		return err
	}
	a.mu[bus].Lock()
	defer a.mu[bus].Unlock()
	if a.conns[bus] != nil {
		return &errcode.E{
			C:   errcode.InvalidArgument,
			Op:  "ftdi.bitbang",
			Msg: fmt.Sprintf("bus %d already in bit-bang mode", bus),
		}
	}
	conn, err := a.open(bus, outputEnable)
	if err != nil {
		return &errcode.E{C: errcode.Connection, Op: "ftdi.bitbang", Err: err}
	}
	a.conns[bus] = conn
	a.dir[bus] = outputEnable
	return nil
}

// WritePin drives one pin of a bus. A nil value tri-states the pin by
// clearing its direction bit. Latch and direction updates are
// read-modify-write, serialized per bus.
func (a *Adapter) WritePin(bus, pin int, value *int) error {
	if err := a.checkPin(bus, pin); err != nil {
		return err
	}
	a.mu[bus].Lock()
	defer a.mu[bus].Unlock()
	conn, err := a.conn(bus)
	if err != nil {
		return err
	}

	mask := byte(1) << uint(pin)
	if value == nil {
		a.dir[bus] &^= mask
		return conn.SetDirection(a.dir[bus])
	}

	if *value != 0 {
		a.latch[bus] |= mask
	} else {
		a.latch[bus] &^= mask
	}
	if err := conn.WritePort(a.latch[bus]); err != nil {
		return err
	}
	if a.dir[bus]&mask == 0 {
		a.dir[bus] |= mask
		return conn.SetDirection(a.dir[bus])
	}
	return nil
}

// ReadPin samples one pin of a bus.
func (a *Adapter) ReadPin(bus, pin int) (int, error) {
	if err := a.checkPin(bus, pin); err != nil {
		return 0, err
	}
	a.mu[bus].Lock()
	defer a.mu[bus].Unlock()
	conn, err := a.conn(bus)
	if err != nil {
		return 0, err
	}
	v, err := conn.ReadPort()
	if err != nil {
		return 0, err
	}
	return int(v >> uint(pin) & 1), nil
}

// Gpio returns the delegate for one pin of a bus.
func (a *Adapter) Gpio(bus, pin int) delegate.Gpio {
	return ftdiPin{a: a, bus: bus, pin: pin}
}

// Close closes every opened bus.
func (a *Adapter) Close() error {
	var first error
	for i := range a.conns {
		a.mu[i].Lock()
		if a.conns[i] != nil {
			if err := a.conns[i].Close(); err != nil && first == nil {
				first = err
			}
			a.conns[i] = nil
		}
		a.mu[i].Unlock()
	}
	return first
}

func (a *Adapter) checkBus(bus int) error {
	if bus < 0 || bus >= a.numBuses {
		return &errcode.E{C: errcode.InvalidArgument, Op: "ftdi.bus", Msg: "bus index out of range"}
	}
	return nil
}

func (a *Adapter) checkPin(bus, pin int) error {
	if err := a.checkBus(bus); err != nil {
		return err
	}
	if pin < 0 || pin > 7 {
		return &errcode.E{C: errcode.InvalidArgument, Op: "ftdi.pin", Msg: "pin index out of range"}
	}
	return nil
}

// conn is called with the bus lock held.
func (a *Adapter) conn(bus int) (Conn, error) {
	if a.conns[bus] == nil {
		return nil, &errcode.E{
			C:   errcode.NotReady,
			Op:  "ftdi.pin",
			Msg: fmt.Sprintf("bus %d is not in bit-bang mode", bus),
		}
	}
	return a.conns[bus], nil
}

// ftdiPin adapts one bus pin to the delegate.Gpio contract. The adapter
// cannot report state changes, so NoCallback supplies SetCallback.
type ftdiPin struct {
	delegate.NoCallback
	a   *Adapter
	bus int
	pin int
}

func (p ftdiPin) Write(value *int) error {
	return p.a.WritePin(p.bus, p.pin, value)
}

func (p ftdiPin) Read() (int, error) {
	return p.a.ReadPin(p.bus, p.pin)
}
