package protocol

import (
	"bytes"
	"testing"
)

func collect(msgs *[]Message) Handler {
	return func(m Message) {
		*msgs = append(*msgs, m)
	}
}

func TestParserDigitalMessage(t *testing.T) {
	var msgs []Message
	p := NewParser(collect(&msgs))

	p.Feed([]byte{DigitalMessage | 0x02, 0x08, 0x00})

	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	m := msgs[0]
	if m.Command != DigitalMessage {
		t.Errorf("expected command 0x%02x, got 0x%02x", DigitalMessage, m.Command)
	}
	if m.Channel != 2 {
		t.Errorf("expected channel 2, got %d", m.Channel)
	}
	if !bytes.Equal(m.Data, []byte{0x08, 0x00}) {
		t.Errorf("unexpected data %v", m.Data)
	}
}

func TestParserSplitAcrossChunks(t *testing.T) {
	var msgs []Message
	p := NewParser(collect(&msgs))

	// A frame arriving one byte at a time must still decode.
	frame := AppendSysex(nil, I2CReply, EncodeSevenBit(nil, []byte{0x40, 0x00, 0xAA}))
	for _, b := range frame {
		p.Feed([]byte{b})
	}

	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Command != I2CReply {
		t.Errorf("expected sysex command 0x%02x, got 0x%02x", I2CReply, msgs[0].Command)
	}
	decoded := DecodeSevenBit(msgs[0].Data)
	if !bytes.Equal(decoded, []byte{0x40, 0x00, 0xAA}) {
		t.Errorf("unexpected payload %v", decoded)
	}
}

func TestParserResyncAfterGarbage(t *testing.T) {
	var msgs []Message
	p := NewParser(collect(&msgs))

	// Stray data bytes, a truncated channel message, and an unknown
	// control byte must all be dropped without losing the frame behind
	// them.
	p.Feed([]byte{0x12, 0x34})                       // stray data bytes
	p.Feed([]byte{AnalogMessage | 0x01, 0x05})       // truncated by the next status byte
	p.Feed([]byte{0xF9, DigitalMessage, 0x01, 0x00}) // unknown control, then a good frame

	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Command != DigitalMessage || msgs[0].Channel != 0 {
		t.Errorf("unexpected message %+v", msgs[0])
	}
}

func TestParserUnterminatedSysexDropped(t *testing.T) {
	var msgs []Message
	p := NewParser(collect(&msgs))

	// A new status byte inside a sysex frame abandons the partial frame.
	p.Feed([]byte{SysexStart, I2CReply, 0x01, 0x02})
	p.Feed([]byte{DigitalMessage, 0x00, 0x01})

	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Command != DigitalMessage {
		t.Errorf("expected the digital message, got command 0x%02x", msgs[0].Command)
	}
}

func TestParserOversizedSysexDropped(t *testing.T) {
	var msgs []Message
	p := NewParser(collect(&msgs))

	p.Feed([]byte{SysexStart, I2CReply})
	p.Feed(make([]byte, maxSysexPayload+16))
	p.Feed([]byte{SysexEnd})

	if len(msgs) != 0 {
		t.Fatalf("expected oversized frame to be dropped, got %d messages", len(msgs))
	}

	// The parser must still be usable afterwards.
	p.Feed([]byte{AnalogMessage | 0x03, 0x7F, 0x03})
	if len(msgs) != 1 || msgs[0].Command != AnalogMessage {
		t.Fatalf("parser did not recover after oversized frame")
	}
}

func TestParserEmptySysexDropped(t *testing.T) {
	var msgs []Message
	p := NewParser(collect(&msgs))

	p.Feed([]byte{SysexStart, SysexEnd, SysexEnd})

	if len(msgs) != 0 {
		t.Errorf("expected no messages from empty sysex, got %d", len(msgs))
	}
}

func TestAppendMessage(t *testing.T) {
	got := AppendMessage(nil, ReportDigital, 1, 1)
	if !bytes.Equal(got, []byte{ReportDigital | 1, 0x01, 0x00}) {
		t.Errorf("unexpected encoding %v", got)
	}

	got = AppendMessage(nil, DigitalMessage, 0, 0x388)
	if !bytes.Equal(got, []byte{DigitalMessage, 0x08, 0x07}) {
		t.Errorf("unexpected encoding %v", got)
	}
}
