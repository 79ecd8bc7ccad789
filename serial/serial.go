// Package serial provides the transport handle the protocol bridge reads
// and writes. The Port interface keeps the bridge testable: production code
// opens a real serial device, tests inject an in-memory port.
package serial

import "io"

// Port is one open duplex byte channel to a physical device.
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered output.
	Flush() error
}

// Config holds serial port configuration.
type Config struct {
	// Device path (e.g. "/dev/ttyACM0").
	Device string

	// Baud rate.
	Baud int

	// ReadTimeout in milliseconds. The background reader relies on reads
	// returning periodically so it can observe its termination signal, so
	// this must not be zero (blocking).
	ReadTimeout int
}

// DefaultConfig returns the configuration used for the USB-serial
// microcontroller backends.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        57600,
		ReadTimeout: 100,
	}
}
