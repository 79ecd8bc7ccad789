package protocol

// maxSysexPayload bounds how much sysex payload the parser will buffer.
// Anything longer is garbage from a desynchronized stream.
const maxSysexPayload = 512

// Message is one decoded frame from the wire.
type Message struct {
	// Command is the status byte (high nibble) for channel messages, or
	// the sysex sub-command for sysex frames.
	Command byte

	// Channel is the port or channel index of a channel message. Zero for
	// sysex frames.
	Channel byte

	// Data holds the two value bytes of a channel message, or the sysex
	// payload after the sub-command.
	Data []byte
}

// Handler consumes decoded messages. Messages the handler does not
// recognize are its to drop; the parser keeps going either way.
type Handler func(Message)

// Parser is a push-based decoder for the shared byte stream. Feed it
// whatever chunks the transport produces; partial frames are buffered
// between calls. Malformed input and unknown control bytes are discarded
// without error: a misbehaving link must never take the reader down.
type Parser struct {
	handler Handler

	cmd     byte
	channel byte
	need    int
	buf     []byte
	inSysex bool
}

// NewParser returns a Parser that delivers decoded frames to h.
func NewParser(h Handler) *Parser {
	return &Parser{handler: h}
}

// Feed consumes a chunk of raw bytes from the transport.
func (p *Parser) Feed(chunk []byte) {
	for _, b := range chunk {
		p.feedByte(b)
	}
}

func (p *Parser) feedByte(b byte) {
	if b&0x80 != 0 {
		// Any status byte restarts framing; a partial frame in progress
		// was cut short and is dropped.
		switch {
		case b == SysexStart:
			p.reset()
			p.inSysex = true
		case b == SysexEnd:
			if p.inSysex {
				p.finishSysex()
			} else {
				p.reset()
			}
		case b >= 0xF0:
			// Control messages other than sysex carry no routable state
			// for us; skip the byte and resynchronize.
			p.reset()
		default:
			p.reset()
			p.cmd = b & 0xF0
			p.channel = b & MaxChannel
			p.need = 2
		}
		return
	}

	if p.inSysex {
		if len(p.buf) >= maxSysexPayload {
			p.reset()
			return
		}
		p.buf = append(p.buf, b)
		return
	}

	if p.need == 0 {
		// Stray data byte between frames.
		return
	}

	p.buf = append(p.buf, b)
	if len(p.buf) == p.need {
		msg := Message{Command: p.cmd, Channel: p.channel, Data: p.copyBuf()}
		p.reset()
		p.handler(msg)
	}
}

func (p *Parser) finishSysex() {
	if len(p.buf) == 0 {
		p.reset()
		return
	}
	msg := Message{Command: p.buf[0], Data: p.copyBuf()[1:]}
	p.reset()
	p.handler(msg)
}

func (p *Parser) copyBuf() []byte {
	out := make([]byte, len(p.buf))
	copy(out, p.buf)
	return out
}

func (p *Parser) reset() {
	p.inSysex = false
	p.need = 0
	p.buf = p.buf[:0]
}
