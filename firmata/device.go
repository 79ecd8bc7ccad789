// Package firmata drives USB-serial microcontrollers that multiplex
// digital state reporting, analog sampling, and I2C register transactions
// over one full-duplex byte stream.
//
// A single background goroutine owns all reads from the transport and
// routes decoded frames to the GPIO state cache or to the caller blocked on
// an I2C reply. Failure semantics are deliberately asymmetric: precondition
// violations surface immediately as errors on the calling goroutine, while
// a malformed or dropped reply frame is silently discarded, leaving the
// blocked I2C caller waiting until the device is closed. There is no reply
// timeout; callers that need one must close the device from another
// goroutine.
package firmata

import (
	"sync"

	"iobridge/delegate"
	"iobridge/errcode"
	"iobridge/protocol"
	"iobridge/serial"
	"iobridge/usbinfo"
)

// Device is one open protocol bridge.
type Device struct {
	board  Board
	port   serial.Port
	parser *protocol.Parser

	writeMu sync.Mutex // one frame at a time on the wire

	// txMu spans the request write and the blocking reply wait, so at
	// most one I2C transaction is in flight per device.
	txMu      sync.Mutex
	i2cReply  chan []byte
	i2cConfig sync.Once

	// The dispatch goroutine is the sole writer of portValues and
	// analogValues; pinMu and analogMu guard cross-goroutine reads and
	// the caller-mutated callback registry and output latches.
	pinMu      sync.Mutex
	portValues []byte // last observed input mask per port
	outMasks   []byte // host-side output latch per port
	callbacks  map[int]func()

	analogMu     sync.Mutex
	analogValues []int
	analogOn     []bool

	closeOnce sync.Once
	stop      chan struct{}
	done      chan struct{}

	// Capability delegates, one per pin or channel.
	Gpio     []delegate.Gpio
	AnalogIn []delegate.AnalogIn
	I2C      delegate.I2C
}

// Open resolves the board's endpoint from the supplied descriptors, opens
// its serial port, and starts the device.
func Open(board Board, serialNumber string, endpoints []usbinfo.Endpoint) (*Device, error) {
	ep, err := Resolve(board, serialNumber, endpoints)
	if err != nil {
		return nil, err
	}
	port, err := serial.Open(serial.DefaultConfig(ep.Device))
	if err != nil {
		return nil, &errcode.E{C: errcode.Connection, Op: "firmata.open", Err: err}
	}
	return New(board, port), nil
}

// New wraps an already-open port and starts the dispatch goroutine. The
// device takes ownership of the port and closes it on Close.
func New(board Board, port serial.Port) *Device {
	d := &Device{
		board:        board,
		port:         port,
		i2cReply:     make(chan []byte, 1),
		portValues:   make([]byte, board.numPorts()),
		outMasks:     make([]byte, board.numPorts()),
		callbacks:    make(map[int]func()),
		analogValues: make([]int, board.AnalogCount),
		analogOn:     make([]bool, board.AnalogCount),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	d.parser = protocol.NewParser(d.dispatch)

	d.Gpio = make([]delegate.Gpio, board.PinCount)
	for i := range d.Gpio {
		d.Gpio[i] = gpioPin{dev: d, index: i}
	}
	d.AnalogIn = make([]delegate.AnalogIn, board.AnalogCount)
	for i := range d.AnalogIn {
		d.AnalogIn[i] = analogChannel{dev: d, index: i}
	}
	d.I2C = i2cBus{dev: d}

	go d.readLoop()
	return d
}

// Board returns the model the device was constructed for.
func (d *Device) Board() Board {
	return d.board
}

// Close signals the dispatch goroutine, waits for it to exit, and closes
// the port. Only the first call does anything; later calls return nil.
func (d *Device) Close() error {
	var err error
	d.closeOnce.Do(func() {
		close(d.stop)
		<-d.done
		err = d.port.Close()
	})
	return err
}

// writeFrame writes one complete frame on the transport.
func (d *Device) writeFrame(frame []byte) error {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	if _, err := d.port.Write(frame); err != nil {
		return &errcode.E{C: errcode.Connection, Op: "firmata.write", Err: err}
	}
	return nil
}

func (d *Device) checkPin(pin int) error {
	if pin < 0 || pin >= d.board.PinCount {
		return &errcode.E{C: errcode.InvalidArgument, Op: "gpio", Msg: "pin index out of range"}
	}
	return nil
}

func (d *Device) checkChannel(channel int) error {
	if channel < 0 || channel >= d.board.AnalogCount {
		return &errcode.E{C: errcode.InvalidArgument, Op: "adc", Msg: "channel index out of range"}
	}
	return nil
}
