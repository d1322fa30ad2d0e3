package rdb

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mickamy/redikv/internal/store"
)

const (
	tagMetadata    = 0xFA
	tagDatabase    = 0xFE
	tagSizes       = 0xFB
	tagExpireMS    = 0xFC
	tagExpireSec   = 0xFD
	tagEOF         = 0xFF
	checksumLength = 8
)

const magic = "REDIS"

// Load opens path and populates s from its contents. A missing file is
// not an error: the store is simply left as-is, matching the
// "no snapshot yet" startup case. Any structural problem in a file that
// does exist is fatal, since a half-loaded store is worse than none.
func Load(path string, s *store.Store) error {
	if path == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("rdb: opening %s: %w", path, err)
	}
	defer f.Close()

	return Decode(f, s)
}

// Decode reads a complete snapshot stream from r and installs every
// key it contains into s. Absolute expiration timestamps the snapshot
// carries are stored as-is; an already-expired key is installed and then
// hidden by the store's read-time expiration.
func Decode(r io.Reader, s *store.Store) error {
	br := newByteReader(r)

	if err := decodeHeader(br); err != nil {
		return err
	}

	if err := skipMetadata(br); err != nil {
		return err
	}

	for {
		tag, err := br.readByte()
		if err != nil {
			if err == io.EOF {
				return fmt.Errorf("rdb: unexpected end of stream before EOF marker")
			}
			return fmt.Errorf("rdb: reading section tag: %w", err)
		}

		switch tag {
		case tagDatabase:
			if err := decodeDatabase(br, s); err != nil {
				return err
			}
		case tagEOF:
			if _, err := br.readN(checksumLength); err != nil {
				return fmt.Errorf("rdb: reading trailing checksum: %w", err)
			}
			return nil
		default:
			return fmt.Errorf("rdb: unexpected section tag %#x", tag)
		}
	}
}

func decodeHeader(br *byteReader) error {
	b, err := br.readN(len(magic) + 4)
	if err != nil {
		return fmt.Errorf("rdb: reading header: %w", err)
	}
	if string(b[:len(magic)]) != magic {
		return fmt.Errorf("rdb: bad magic %q", b[:len(magic)])
	}
	return nil
}

// skipMetadata consumes 0xFA entries until a non-metadata tag appears,
// which is pushed back for the caller to handle.
func skipMetadata(br *byteReader) error {
	for {
		tag, err := br.readByte()
		if err != nil {
			return fmt.Errorf("rdb: reading tag after header: %w", err)
		}
		if tag != tagMetadata {
			br.unreadByte(tag)
			return nil
		}

		if _, err := decodeString(br); err != nil {
			return fmt.Errorf("rdb: reading metadata key: %w", err)
		}
		if _, err := decodeString(br); err != nil {
			return fmt.Errorf("rdb: reading metadata value: %w", err)
		}
	}
}

func decodeDatabase(br *byteReader, s *store.Store) error {
	if _, err := decodeSize(br); err != nil { // db index, unused: a single keyspace
		return fmt.Errorf("rdb: reading database index: %w", err)
	}

	sizesTag, err := br.readByte()
	if err != nil {
		return fmt.Errorf("rdb: reading sizes tag: %w", err)
	}
	if sizesTag != tagSizes {
		return fmt.Errorf("rdb: expected sizes tag %#x, got %#x", tagSizes, sizesTag)
	}
	if _, err := decodeSize(br); err != nil { // key count, unused
		return fmt.Errorf("rdb: reading key count: %w", err)
	}
	if _, err := decodeSize(br); err != nil { // expiring key count, unused
		return fmt.Errorf("rdb: reading expiring key count: %w", err)
	}

	for {
		tag, err := br.readByte()
		if err != nil {
			return fmt.Errorf("rdb: reading entry tag: %w", err)
		}

		var expiration time.Time
		switch tag {
		case tagExpireMS:
			b, err := br.readN(8)
			if err != nil {
				return fmt.Errorf("rdb: reading ms expiration: %w", err)
			}
			ms := binary.LittleEndian.Uint64(b)
			expiration = time.UnixMilli(int64(ms)).UTC()
			tag, err = br.readByte()
			if err != nil {
				return fmt.Errorf("rdb: reading value-type after ms expiration: %w", err)
			}
		case tagExpireSec:
			b, err := br.readN(4)
			if err != nil {
				return fmt.Errorf("rdb: reading s expiration: %w", err)
			}
			sec := binary.LittleEndian.Uint32(b)
			expiration = time.Unix(int64(sec), 0).UTC()
			tag, err = br.readByte()
			if err != nil {
				return fmt.Errorf("rdb: reading value-type after s expiration: %w", err)
			}
		case tagDatabase, tagEOF:
			br.unreadByte(tag)
			return nil
		}

		valueType := tag
		if valueType != 0x00 {
			return fmt.Errorf("rdb: unsupported value type %#x", valueType)
		}

		key, err := decodeString(br)
		if err != nil {
			return fmt.Errorf("rdb: reading key: %w", err)
		}
		value, err := decodeString(br)
		if err != nil {
			return fmt.Errorf("rdb: reading value: %w", err)
		}

		s.Set(key, store.Entry{Value: []byte(value), Expiration: expiration})
	}
}
