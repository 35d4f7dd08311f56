// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package blobstore

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/riskful/grouplist/lib/codec"
)

// Compression identifies how record content is stored. The values are
// persisted; do not renumber.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionZstd Compression = 1
	CompressionLZ4  Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses a configured compression name. The empty
// string selects zstd.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	case "none":
		return CompressionNone, nil
	default:
		return 0, fmt.Errorf("unknown compression %q (want zstd, lz4, or none)", name)
	}
}

// compressionThreshold is the content size above which records are
// compressed. Typical lists are well below it.
const compressionThreshold = 4 << 10

// record is the CBOR value stored per key.
type record struct {
	Content     []byte      `cbor:"content"`
	Compression Compression `cbor:"compression"`
	Size        int         `cbor:"size"`
	UpdatedAt   int64       `cbor:"updated_at"`
	Message     string      `cbor:"message,omitempty"`
}

// zstd.Encoder and zstd.Decoder are safe for concurrent use when only
// EncodeAll/DecodeAll are called.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("blobstore: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("blobstore: zstd decoder initialization failed: " + err.Error())
	}
}

var errIncompressible = errors.New("content is incompressible")

func compress(algorithm Compression, content []byte) ([]byte, error) {
	switch algorithm {
	case CompressionZstd:
		compressed := zstdEncoder.EncodeAll(content, nil)
		if len(compressed) >= len(content) {
			return nil, errIncompressible
		}
		return compressed, nil
	case CompressionLZ4:
		destination := make([]byte, lz4.CompressBlockBound(len(content)))
		written, err := lz4.CompressBlock(content, destination, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		// CompressBlock returns 0 for incompressible input.
		if written == 0 || written >= len(content) {
			return nil, errIncompressible
		}
		return destination[:written], nil
	default:
		return nil, errIncompressible
	}
}

func decompress(algorithm Compression, compressed []byte, size int) ([]byte, error) {
	switch algorithm {
	case CompressionNone:
		return compressed, nil
	case CompressionZstd:
		content, err := zstdDecoder.DecodeAll(compressed, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		return content, nil
	case CompressionLZ4:
		destination := make([]byte, size)
		read, err := lz4.UncompressBlock(compressed, destination)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		return destination[:read], nil
	default:
		return nil, fmt.Errorf("unsupported compression %s", algorithm)
	}
}

// encodeRecord builds the stored form of content. Content over the
// threshold is compressed with algorithm unless that does not shrink
// it.
func encodeRecord(content []byte, algorithm Compression, updatedAt int64, message string) ([]byte, error) {
	stored := record{
		Content:     content,
		Compression: CompressionNone,
		Size:        len(content),
		UpdatedAt:   updatedAt,
		Message:     message,
	}
	if len(content) > compressionThreshold {
		compressed, err := compress(algorithm, content)
		switch {
		case err == nil:
			stored.Content = compressed
			stored.Compression = algorithm
		case !errors.Is(err, errIncompressible):
			return nil, err
		}
	}
	return codec.Marshal(stored)
}

// decodeRecord returns the record with its content decompressed.
// Records written with any algorithm decode regardless of the store's
// current setting.
func decodeRecord(data []byte) (record, error) {
	stored, err := codec.Decode[record](data)
	if err != nil {
		return record{}, fmt.Errorf("decoding record: %w", err)
	}
	content, err := decompress(stored.Compression, stored.Content, stored.Size)
	if err != nil {
		return record{}, err
	}
	if len(content) != stored.Size {
		return record{}, fmt.Errorf("content size %d does not match recorded size %d", len(content), stored.Size)
	}
	stored.Content = content
	stored.Compression = CompressionNone
	return stored, nil
}
