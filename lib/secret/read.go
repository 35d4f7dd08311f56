// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
)

// MaxFileSize bounds secret and token files.
const MaxFileSize = 64 << 10

// ReadFromPath reads a secret from a file path, or the first line of
// stdin if path is "-". Surrounding whitespace is trimmed. The returned
// buffer must be closed by the caller. Fails on an empty secret or a
// source over MaxFileSize.
func ReadFromPath(path string) (*Buffer, error) {
	if path == "-" {
		return readFirstLine(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxFileSize+1))
	if err != nil {
		Zero(data)
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(data) > MaxFileSize {
		Zero(data)
		return nil, fmt.Errorf("%s exceeds %d bytes", path, MaxFileSize)
	}
	return fromTrimmed(data)
}

func readFirstLine(reader io.Reader) (*Buffer, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 256), MaxFileSize)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return nil, fmt.Errorf("stdin is empty")
	}
	return fromTrimmed(scanner.Bytes())
}

// fromTrimmed copies the trimmed secret into a buffer and zeros data.
func fromTrimmed(data []byte) (*Buffer, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		Zero(data)
		return nil, fmt.Errorf("secret is empty")
	}
	buffer, err := NewFromBytes(trimmed)
	Zero(data)
	if err != nil {
		return nil, err
	}
	return buffer, nil
}
