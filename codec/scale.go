// Package codec implements the subset of the SCALE codec needed to encode
// constructor arguments and assemble signed extrinsics for a
// Substrate-family chain.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrCompactTooLarge is returned when a value exceeds the four-byte-mode
	// compact encoding range supported here (2^30-1) and is not a big integer.
	ErrCompactTooLarge = errors.New("codec: compact value out of range")

	// ErrNegative is returned when a negative value is encoded into an
	// unsigned field.
	ErrNegative = errors.New("codec: negative value for unsigned encoding")

	// ErrU128Overflow is returned when a big integer does not fit in 16 bytes.
	ErrU128Overflow = errors.New("codec: value exceeds u128")
)

// Encoder writes SCALE-encoded values into an in-memory buffer.
// The zero value is ready to use.
type Encoder struct {
	buf bytes.Buffer
}

// Bytes returns the encoded output accumulated so far.
func (e *Encoder) Bytes() []byte {
	return e.buf.Bytes()
}

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int {
	return e.buf.Len()
}

// Raw appends bytes without any length prefix.
func (e *Encoder) Raw(b []byte) {
	e.buf.Write(b)
}

// Byte appends a single raw byte.
func (e *Encoder) Byte(b byte) {
	e.buf.WriteByte(b)
}

// Bool encodes a boolean as a single byte.
func (e *Encoder) Bool(v bool) {
	if v {
		e.buf.WriteByte(1)
	} else {
		e.buf.WriteByte(0)
	}
}

// U8 encodes a fixed-width u8.
func (e *Encoder) U8(v uint8) {
	e.buf.WriteByte(v)
}

// U16 encodes a fixed-width little-endian u16.
func (e *Encoder) U16(v uint16) {
	e.buf.Write([]byte{byte(v), byte(v >> 8)})
}

// U32 encodes a fixed-width little-endian u32.
func (e *Encoder) U32(v uint32) {
	e.buf.Write([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}

// U64 encodes a fixed-width little-endian u64.
func (e *Encoder) U64(v uint64) {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	e.buf.Write(b[:])
}

// U128 encodes a fixed-width little-endian u128 from a non-negative big.Int.
func (e *Encoder) U128(v *big.Int) error {
	if v == nil {
		v = big.NewInt(0)
	}
	if v.Sign() < 0 {
		return ErrNegative
	}
	if v.BitLen() > 128 {
		return ErrU128Overflow
	}
	var b [16]byte
	raw := v.Bytes() // big-endian
	for i, j := 0, len(raw)-1; j >= 0; i, j = i+1, j-1 {
		b[i] = raw[j]
	}
	e.buf.Write(b[:])
	return nil
}

// Compact encodes an unsigned integer in SCALE compact form.
func (e *Encoder) Compact(v uint64) {
	switch {
	case v < 1<<6:
		e.buf.WriteByte(byte(v) << 2)
	case v < 1<<14:
		e.U16(uint16(v)<<2 | 0b01)
	case v < 1<<30:
		e.U32(uint32(v)<<2 | 0b10)
	default:
		e.compactBigTail(new(big.Int).SetUint64(v))
	}
}

// CompactBig encodes a non-negative big.Int in SCALE compact form.
func (e *Encoder) CompactBig(v *big.Int) error {
	if v == nil {
		v = big.NewInt(0)
	}
	if v.Sign() < 0 {
		return ErrNegative
	}
	if v.IsUint64() && v.Uint64() < 1<<30 {
		e.Compact(v.Uint64())
		return nil
	}
	if v.BitLen() > 536 { // 67 bytes, the compact big-integer mode ceiling
		return ErrCompactTooLarge
	}
	e.compactBigTail(v)
	return nil
}

// compactBigTail writes the big-integer mode: length byte then LE payload.
func (e *Encoder) compactBigTail(v *big.Int) {
	raw := v.Bytes()
	n := len(raw)
	e.buf.WriteByte(byte(n-4)<<2 | 0b11)
	for i := n - 1; i >= 0; i-- {
		e.buf.WriteByte(raw[i])
	}
}

// BytesValue encodes a byte vector with a compact length prefix.
func (e *Encoder) BytesValue(b []byte) {
	e.Compact(uint64(len(b)))
	e.buf.Write(b)
}

// String encodes a UTF-8 string as a compact-prefixed byte vector.
func (e *Encoder) String(s string) {
	e.BytesValue([]byte(s))
}

// OptionNone encodes the absent variant of an Option.
func (e *Encoder) OptionNone() {
	e.buf.WriteByte(0)
}

// OptionSome writes the present variant tag; the caller encodes the value next.
func (e *Encoder) OptionSome() {
	e.buf.WriteByte(1)
}

// Decoder reads SCALE-encoded values from a byte slice.
type Decoder struct {
	data []byte
	off  int
}

// NewDecoder returns a decoder over data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.data) - d.off
}

// Byte reads a single byte.
func (d *Decoder) Byte() (byte, error) {
	if d.off >= len(d.data) {
		return 0, fmt.Errorf("codec: unexpected end of input at offset %d", d.off)
	}
	b := d.data[d.off]
	d.off++
	return b, nil
}

// Raw reads n bytes without a length prefix.
func (d *Decoder) Raw(n int) ([]byte, error) {
	if d.Remaining() < n {
		return nil, fmt.Errorf("codec: need %d bytes, have %d", n, d.Remaining())
	}
	b := d.data[d.off : d.off+n]
	d.off += n
	return b, nil
}

// Compact decodes a compact unsigned integer in the u64 range.
func (d *Decoder) Compact() (uint64, error) {
	first, err := d.Byte()
	if err != nil {
		return 0, err
	}
	switch first & 0b11 {
	case 0b00:
		return uint64(first >> 2), nil
	case 0b01:
		second, err := d.Byte()
		if err != nil {
			return 0, err
		}
		return (uint64(first) | uint64(second)<<8) >> 2, nil
	case 0b10:
		rest, err := d.Raw(3)
		if err != nil {
			return 0, err
		}
		v := uint64(first) | uint64(rest[0])<<8 | uint64(rest[1])<<16 | uint64(rest[2])<<24
		return v >> 2, nil
	default:
		n := int(first>>2) + 4
		if n > 8 {
			return 0, ErrCompactTooLarge
		}
		raw, err := d.Raw(n)
		if err != nil {
			return 0, err
		}
		var v uint64
		for i := n - 1; i >= 0; i-- {
			v = v<<8 | uint64(raw[i])
		}
		return v, nil
	}
}

// BytesValue decodes a compact-prefixed byte vector.
func (d *Decoder) BytesValue() ([]byte, error) {
	n, err := d.Compact()
	if err != nil {
		return nil, err
	}
	return d.Raw(int(n))
}
