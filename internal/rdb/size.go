package rdb

import "fmt"

// sizeKind distinguishes a plain length from the "special string type"
// selector packed into the same leading byte.
type sizeKind int

const (
	sizeLength sizeKind = iota
	sizeStringType
)

// size is the result of decoding a variable-length Size field: either an
// ordinary length, or (when the top two bits are 11) a special string
// type selector carried in stringType.
type size struct {
	kind       sizeKind
	length     uint32
	stringType byte
}

// decodeSize reads the variable-length Size encoding: the top two bits of
// the first byte select one of three length formats, or mark the
// remaining six bits as a special string-type selector instead of a
// length.
func decodeSize(r *byteReader) (size, error) {
	first, err := r.readByte()
	if err != nil {
		return size{}, fmt.Errorf("rdb: reading size: %w", err)
	}

	switch first >> 6 {
	case 0b00:
		return size{kind: sizeLength, length: uint32(first & 0x3f)}, nil
	case 0b01:
		second, err := r.readByte()
		if err != nil {
			return size{}, fmt.Errorf("rdb: reading 14-bit size: %w", err)
		}
		return size{kind: sizeLength, length: uint32(first&0x3f)<<8 | uint32(second)}, nil
	case 0b10:
		b, err := r.readN(4)
		if err != nil {
			return size{}, fmt.Errorf("rdb: reading 32-bit size: %w", err)
		}
		length := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
		return size{kind: sizeLength, length: length}, nil
	default: // 0b11
		return size{kind: sizeStringType, stringType: first & 0x3f}, nil
	}
}
