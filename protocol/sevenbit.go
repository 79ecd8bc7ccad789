package protocol

// Sysex payloads may only use 7 bits per wire byte, so full bytes travel as
// pairs: low 7 bits first, then the high bit.

// EncodeSevenBit appends each byte of src to dst as a 7-bit lo/hi pair.
func EncodeSevenBit(dst, src []byte) []byte {
	for _, b := range src {
		dst = append(dst, b&0x7F, b>>7&0x7F)
	}
	return dst
}

// DecodeSevenBit reconstructs bytes from 7-bit lo/hi pairs as lo | hi<<7.
// A trailing unpaired byte is dropped.
func DecodeSevenBit(src []byte) []byte {
	out := make([]byte, 0, len(src)/2)
	for i := 0; i+1 < len(src); i += 2 {
		out = append(out, src[i]&0x7F|src[i+1]<<7)
	}
	return out
}
