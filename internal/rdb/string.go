package rdb

import (
	"encoding/binary"
	"fmt"
	"strconv"
)

const (
	stringTypeInt8  = 0x00 // 0xC0
	stringTypeInt16 = 0x01 // 0xC1
	stringTypeInt32 = 0x02 // 0xC2
	stringTypeLZF   = 0x03 // 0xC3, unimplemented
)

// decodeString reads a String field: a Size followed either by that many
// raw bytes, or (when the Size is a special string-type selector) by a
// fixed-width integer rendered back as decimal text.
func decodeString(r *byteReader) (string, error) {
	sz, err := decodeSize(r)
	if err != nil {
		return "", err
	}

	if sz.kind == sizeLength {
		b, err := r.readN(int(sz.length))
		if err != nil {
			return "", fmt.Errorf("rdb: reading string payload: %w", err)
		}
		return string(b), nil
	}

	switch sz.stringType {
	case stringTypeInt8:
		b, err := r.readN(1)
		if err != nil {
			return "", fmt.Errorf("rdb: reading int8 string: %w", err)
		}
		return strconv.FormatInt(int64(int8(b[0])), 10), nil
	case stringTypeInt16:
		b, err := r.readN(2)
		if err != nil {
			return "", fmt.Errorf("rdb: reading int16 string: %w", err)
		}
		return strconv.FormatInt(int64(int16(binary.LittleEndian.Uint16(b))), 10), nil
	case stringTypeInt32:
		b, err := r.readN(4)
		if err != nil {
			return "", fmt.Errorf("rdb: reading int32 string: %w", err)
		}
		return strconv.FormatInt(int64(int32(binary.LittleEndian.Uint32(b))), 10), nil
	case stringTypeLZF:
		return "", fmt.Errorf("rdb: LZF-compressed strings are not implemented")
	default:
		return "", fmt.Errorf("rdb: unknown string type selector %#x", sz.stringType)
	}
}
