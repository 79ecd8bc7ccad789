package htu21d

import (
	"errors"
	"math"
	"testing"

	"iobridge/errcode"
)

// queueI2C serves reads from per-register queues and records writes.
type queueI2C struct {
	writes [][]byte
	queues map[uint8][][]byte
}

func newQueueI2C() *queueI2C {
	return &queueI2C{queues: make(map[uint8][][]byte)}
}

func (q *queueI2C) push(reg uint8, frame []byte) {
	q.queues[reg] = append(q.queues[reg], frame)
}

func (q *queueI2C) Write(addr, reg uint8, data []byte) error {
	if addr != Addr {
		return &errcode.E{C: errcode.InvalidArgument, Op: "test.write"}
	}
	q.writes = append(q.writes, append([]byte{reg}, data...))
	return nil
}

func (q *queueI2C) Read(addr, reg uint8, n int, restart bool) ([]byte, error) {
	if addr != Addr {
		return nil, &errcode.E{C: errcode.InvalidArgument, Op: "test.read"}
	}
	frames := q.queues[reg]
	if len(frames) == 0 {
		return nil, &errcode.E{C: errcode.NotReady, Op: "test.read"}
	}
	q.queues[reg] = frames[1:]
	return frames[0], nil
}

func TestTemperature(t *testing.T) {
	bus := newQueueI2C()
	bus.push(TriggerTempHold, []byte{0, 0, 0})

	got, err := New(bus).Temperature()
	if err != nil {
		t.Fatalf("Temperature: %v", err)
	}
	if math.Abs(got-(-46.85)) > 0.01 {
		t.Errorf("Temperature = %v, want -46.85", got)
	}
}

func TestTemperatureCRCError(t *testing.T) {
	bus := newQueueI2C()
	s := New(bus)
	for crc := 1; crc < 256; crc++ {
		bus.push(TriggerTempHold, []byte{0, 0, byte(crc)})
		if _, err := s.Temperature(); !errors.Is(err, errcode.Protocol) {
			t.Fatalf("crc 0x%02x: err = %v, want protocol_error", crc, err)
		}
	}
}

func TestHumidity(t *testing.T) {
	bus := newQueueI2C()
	bus.push(TriggerHumHold, []byte{0, 0, 0})

	got, err := New(bus).Humidity()
	if err != nil {
		t.Fatalf("Humidity: %v", err)
	}
	if got != 0 {
		t.Errorf("Humidity = %v, want 0 (clamped)", got)
	}
}

func TestHumidityCRCError(t *testing.T) {
	bus := newQueueI2C()
	s := New(bus)
	for crc := 1; crc < 256; crc++ {
		bus.push(TriggerHumHold, []byte{0, 0, byte(crc)})
		if _, err := s.Humidity(); !errors.Is(err, errcode.Protocol) {
			t.Fatalf("crc 0x%02x: err = %v, want protocol_error", crc, err)
		}
	}
}

func TestReset(t *testing.T) {
	bus := newQueueI2C()
	if err := New(bus).Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if len(bus.writes) != 1 || len(bus.writes[0]) != 1 || bus.writes[0][0] != SoftReset {
		t.Errorf("writes = %v, want [[0xFE]]", bus.writes)
	}
}

func TestShortFrame(t *testing.T) {
	bus := newQueueI2C()
	bus.push(TriggerTempHold, []byte{0, 0})
	if _, err := New(bus).Temperature(); !errors.Is(err, errcode.Protocol) {
		t.Errorf("short frame = %v, want protocol_error", err)
	}
}
