package wire

import (
	"encoding/binary"
	"errors"
)

// Various codec errors.
var (
	// ErrShortPacket is returned when a read would run past the bytes
	// remaining in a Buffer.
	ErrShortPacket = errors.New("packet too short")

	// ErrLongPacket is returned when a packet announces a length beyond
	// the maximum the session accepts.
	ErrLongPacket = errors.New("packet too long")

	// ErrInvalidPacket is returned when the envelope length field does not
	// match the number of bytes actually received.
	ErrInvalidPacket = errors.New("invalid packet length")
)

// Buffer wraps up the various encoding details of the SSH wire format.
//
// Data types are encoded as per section 4 from
// https://tools.ietf.org/html/draft-ietf-secsh-architecture-09#page-8
type Buffer struct {
	b   []byte
	off int
}

// NewBuffer creates and initializes a new Buffer using buf as its initial contents.
// The new Buffer takes ownership of buf, and the caller should not use buf after this call.
func NewBuffer(buf []byte) *Buffer {
	return &Buffer{
		b: buf,
	}
}

// NewMarshalBuffer creates a new Buffer ready to start marshaling a request into.
// It prepopulates the 4-byte length placeholder, the packet type, and —
// for every type except init and version — the 4-byte request id,
// and preallocates room for an additional size bytes of payload.
func NewMarshalBuffer(packetType PacketType, requestID uint32, size int) *Buffer {
	buf := NewBuffer(make([]byte, 4, 4+1+4+size))

	buf.AppendUint8(uint8(packetType))

	if packetType != PacketTypeInit && packetType != PacketTypeVersion {
		buf.AppendUint32(requestID)
	}

	return buf
}

// Bytes returns a slice of length b.Len() holding the unconsumed bytes in the Buffer.
// The slice is valid for use only until the next buffer modification.
func (b *Buffer) Bytes() []byte {
	return b.b[b.off:]
}

// Len returns the number of unconsumed bytes in the Buffer.
func (b *Buffer) Len() int {
	return len(b.b) - b.off
}

// ConsumeUint8 consumes a single byte from the Buffer.
// If the Buffer does not have enough data, it returns ErrShortPacket.
func (b *Buffer) ConsumeUint8() (uint8, error) {
	if b.Len() < 1 {
		return 0, ErrShortPacket
	}

	var v uint8
	v, b.off = b.b[b.off], b.off+1
	return v, nil
}

// AppendUint8 appends a single byte into the Buffer.
func (b *Buffer) AppendUint8(v uint8) {
	b.b = append(b.b, v)
}

// ConsumeUint16 consumes a single uint16 from the Buffer, in network byte order (big-endian).
// If the Buffer does not have enough data, it returns ErrShortPacket.
func (b *Buffer) ConsumeUint16() (uint16, error) {
	if b.Len() < 2 {
		return 0, ErrShortPacket
	}

	v := binary.BigEndian.Uint16(b.b[b.off:])
	b.off += 2
	return v, nil
}

// AppendUint16 appends a single uint16 into the Buffer, in network byte order (big-endian).
func (b *Buffer) AppendUint16(v uint16) {
	b.b = append(b.b,
		byte(v>>8),
		byte(v>>0),
	)
}

// ConsumeInt16 consumes a single int16 from the Buffer, in network byte
// order (big-endian) with two's complement sign extension.
func (b *Buffer) ConsumeInt16() (int16, error) {
	v, err := b.ConsumeUint16()
	if err != nil {
		return 0, err
	}

	return int16(v), nil
}

// ConsumeUint32 consumes a single uint32 from the Buffer, in network byte order (big-endian).
// If the Buffer does not have enough data, it returns ErrShortPacket.
func (b *Buffer) ConsumeUint32() (uint32, error) {
	if b.Len() < 4 {
		return 0, ErrShortPacket
	}

	v := binary.BigEndian.Uint32(b.b[b.off:])
	b.off += 4
	return v, nil
}

// AppendUint32 appends a single uint32 into the Buffer, in network byte order (big-endian).
func (b *Buffer) AppendUint32(v uint32) {
	b.b = append(b.b,
		byte(v>>24),
		byte(v>>16),
		byte(v>>8),
		byte(v>>0),
	)
}

// ConsumeInt32 consumes a single int32 from the Buffer, in network byte
// order (big-endian) with two's complement sign extension.
func (b *Buffer) ConsumeInt32() (int32, error) {
	v, err := b.ConsumeUint32()
	if err != nil {
		return 0, err
	}

	return int32(v), nil
}

// ConsumeUint64 consumes a single uint64 from the Buffer, in network byte order (big-endian).
// It is read as two sequential 32-bit words, high word first.
// If the Buffer does not have enough data, it returns ErrShortPacket.
//
// The reference protocol narrows these values through a 53-bit float;
// this implementation keeps the full 64-bit range.
func (b *Buffer) ConsumeUint64() (uint64, error) {
	hi, err := b.ConsumeUint32()
	if err != nil {
		return 0, err
	}

	lo, err := b.ConsumeUint32()
	if err != nil {
		return 0, err
	}

	return uint64(hi)<<32 | uint64(lo), nil
}

// AppendUint64 appends a single uint64 into the Buffer, in network byte
// order (big-endian), as two sequential 32-bit words, high word first.
func (b *Buffer) AppendUint64(v uint64) {
	b.AppendUint32(uint32(v >> 32))
	b.AppendUint32(uint32(v))
}

// ConsumeByteSlice consumes a single string of raw binary data from the Buffer.
// A string is a uint32 length, followed by that number of raw bytes.
// If the Buffer does not have enough data, or defines a length larger than available,
// it returns ErrShortPacket.
//
// The returned slice aliases the Buffer contents, and is valid only as
// long as the Buffer is. Use ConsumeByteSliceCopy for an owned copy.
func (b *Buffer) ConsumeByteSlice() ([]byte, error) {
	start := b.off

	length, err := b.ConsumeUint32()
	if err != nil {
		return nil, err
	}

	if b.Len() < int(length) {
		// Leave no partial consumption behind on a bounds failure.
		b.off = start
		return nil, ErrShortPacket
	}

	v := b.b[b.off:]
	if len(v) > int(length) {
		v = v[:length:length]
	}
	b.off += int(length)
	return v, nil
}

// ConsumeByteSliceCopy consumes a single string of raw binary data from
// the Buffer, returning an owned copy that remains valid after the
// Buffer is released.
func (b *Buffer) ConsumeByteSliceCopy() ([]byte, error) {
	v, err := b.ConsumeByteSlice()
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// AppendByteSlice appends a single string of raw binary data into the Buffer.
// A string is a uint32 length, followed by that number of raw bytes.
func (b *Buffer) AppendByteSlice(v []byte) {
	b.AppendUint32(uint32(len(v)))
	b.b = append(b.b, v...)
}

// ConsumeString consumes a single string of binary data from the Buffer.
// A string is a uint32 length, followed by that number of raw bytes.
//
// NOTE: Go implicitly assumes that strings contain UTF-8 encoded data.
// All caveats on using arbitrary binary data in Go strings apply.
func (b *Buffer) ConsumeString() (string, error) {
	v, err := b.ConsumeByteSlice()
	if err != nil {
		return "", err
	}

	return string(v), nil
}

// AppendString appends a single string of binary data into the Buffer.
// A string is a uint32 length, followed by that number of raw bytes.
func (b *Buffer) AppendString(v string) {
	b.AppendByteSlice([]byte(v))
}

// ConsumeBuffer consumes a uint32-length-prefixed region and
// reinterprets it as a nested envelope-less Buffer, for structured
// decoding of opaque payloads such as extension values.
func (b *Buffer) ConsumeBuffer() (*Buffer, error) {
	v, err := b.ConsumeByteSlice()
	if err != nil {
		return nil, err
	}

	return NewBuffer(v), nil
}

// PutLength writes the given size into the first four bytes of the Buffer
// in network byte order (big endian).
func (b *Buffer) PutLength(size int) {
	if len(b.b) < 4 {
		b.b = append(b.b, make([]byte, 4-len(b.b))...)
	}

	binary.BigEndian.PutUint32(b.b, uint32(size))
}

// Packet finalizes a request started with NewMarshalBuffer.
// It back-patches the true body length into the length placeholder and
// returns the full wire image. The caller should not use the Buffer
// after this call.
func (b *Buffer) Packet() []byte {
	b.PutLength(len(b.b) - 4)
	return b.b
}
