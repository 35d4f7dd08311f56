// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package blobstore

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/riskful/grouplist/lib/secret"
)

// sealedVersion prefixes every sealed record and is authenticated as
// part of the AAD.
const sealedVersion byte = 0x01

// sealedOverhead is version + XChaCha20 nonce + Poly1305 tag.
const sealedOverhead = 1 + chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead

// minKeyMaterial is the shortest accepted key file content.
const minKeyMaterial = 16

var hkdfInfoRecord = []byte("grouplist blobstore record v1")

// sealer encrypts records at rest. The AAD binds each ciphertext to its
// row key, so a record copied to another key fails to open.
type sealer struct {
	key *secret.Buffer
}

// newSealer derives the record key from keyMaterial, which is borrowed
// and not closed.
func newSealer(keyMaterial *secret.Buffer) (*sealer, error) {
	if keyMaterial.Len() < minKeyMaterial {
		return nil, fmt.Errorf("encryption key is %d bytes, need at least %d", keyMaterial.Len(), minKeyMaterial)
	}
	reader := hkdf.New(sha256.New, keyMaterial.Bytes(), nil, hkdfInfoRecord)
	derived := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(reader, derived); err != nil {
		secret.Zero(derived)
		return nil, fmt.Errorf("deriving record key: %w", err)
	}
	key, err := secret.NewFromBytes(derived)
	if err != nil {
		return nil, err
	}
	return &sealer{key: key}, nil
}

func (s *sealer) Close() error {
	return s.key.Close()
}

// seal returns version || nonce || ciphertext+tag.
func (s *sealer) seal(key string, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}
	var nonce [chacha20poly1305.NonceSizeX]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	output := make([]byte, 1+len(nonce), sealedOverhead+len(plaintext))
	output[0] = sealedVersion
	copy(output[1:], nonce[:])
	return aead.Seal(output, nonce[:], plaintext, recordAAD(key)), nil
}

func (s *sealer) open(key string, sealed []byte) ([]byte, error) {
	if len(sealed) < sealedOverhead {
		return nil, fmt.Errorf("sealed record is %d bytes, minimum is %d", len(sealed), sealedOverhead)
	}
	if sealed[0] != sealedVersion {
		return nil, fmt.Errorf("sealed record version %d is not supported", sealed[0])
	}
	aead, err := chacha20poly1305.NewX(s.key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}
	nonce := sealed[1 : 1+chacha20poly1305.NonceSizeX]
	plaintext, err := aead.Open(nil, nonce, sealed[1+chacha20poly1305.NonceSizeX:], recordAAD(key))
	if err != nil {
		return nil, fmt.Errorf("opening sealed record (wrong key or tampered row): %w", err)
	}
	return plaintext, nil
}

func recordAAD(key string) []byte {
	aad := make([]byte, 1+len(key))
	aad[0] = sealedVersion
	copy(aad[1:], key)
	return aad
}
