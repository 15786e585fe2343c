// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

// Package storage persists trained models.
//
// Models are gob-encoded, checksummed with SHA-256, gzip-compressed and
// wrapped in an envelope that carries the metadata. The same envelope is
// written by FileStore (one file per key) and BadgerStore (one value per
// key), so artifacts can be moved between backends.
//
// # Integrity
//
// Load recomputes the checksum over the decompressed payload and rejects
// artifacts that do not match with ErrCorrupt.
package storage

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/tomtom215/postpredict/internal/ml"
)

var (
	// ErrNotFound is returned when no artifact exists for a key.
	ErrNotFound = errors.New("model not found")

	// ErrCorrupt is returned when an artifact fails to decode or its
	// checksum does not match.
	ErrCorrupt = errors.New("model artifact corrupt")

	// ErrInvalidKey is returned for keys outside [a-z0-9_-].
	ErrInvalidKey = errors.New("invalid model key")
)

var keyPattern = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

// Metadata describes a stored model.
type Metadata struct {
	Key       string    `json:"key"`
	Target    string    `json:"target"`
	Family    string    `json:"family"`
	Features  []string  `json:"features"`
	TrainedAt time.Time `json:"trained_at"`
	SavedAt   time.Time `json:"saved_at"`
	TrainRows int       `json:"train_rows"`

	// Checksum is the SHA-256 of the uncompressed gob payload.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed payload size.
	SizeBytes int64 `json:"size_bytes"`
}

// envelope is the persisted form of a model.
type envelope struct {
	Metadata       Metadata
	CompressedData []byte
}

func validateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// encode serializes m into an envelope.
func encode(key string, m *ml.Model) ([]byte, Metadata, error) {
	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(m); err != nil {
		return nil, Metadata{}, fmt.Errorf("encode model: %w", err)
	}

	hash := sha256.Sum256(raw.Bytes())

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw.Bytes()); err != nil {
		return nil, Metadata{}, fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, Metadata{}, fmt.Errorf("finalize compression: %w", err)
	}

	meta := Metadata{
		Key:       key,
		Target:    string(m.Target),
		Family:    string(m.Family),
		Features:  append([]string(nil), m.Features...),
		TrainedAt: m.TrainedAt,
		SavedAt:   time.Now().UTC(),
		TrainRows: m.TrainRows,
		Checksum:  hex.EncodeToString(hash[:]),
		SizeBytes: int64(compressed.Len()),
	}

	var out bytes.Buffer
	if err := gob.NewEncoder(&out).Encode(envelope{Metadata: meta, CompressedData: compressed.Bytes()}); err != nil {
		return nil, Metadata{}, fmt.Errorf("write envelope: %w", err)
	}
	return out.Bytes(), meta, nil
}

// decodeMetadata reads only the envelope header.
func decodeMetadata(r io.Reader) (Metadata, error) {
	var env envelope
	if err := gob.NewDecoder(r).Decode(&env); err != nil {
		return Metadata{}, fmt.Errorf("%w: read envelope: %w", ErrCorrupt, err)
	}
	return env.Metadata, nil
}

// decode verifies and deserializes an envelope.
func decode(r io.Reader) (*ml.Model, error) {
	var env envelope
	if err := gob.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: read envelope: %w", ErrCorrupt, err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(env.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("%w: decompress: %w", ErrCorrupt, err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // close after read is not actionable

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("%w: read payload: %w", ErrCorrupt, err)
	}

	hash := sha256.Sum256(raw)
	if checksum := hex.EncodeToString(hash[:]); checksum != env.Metadata.Checksum {
		return nil, fmt.Errorf("%w: checksum mismatch: expected %s, got %s", ErrCorrupt, env.Metadata.Checksum, checksum)
	}

	var m ml.Model
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: decode model: %w", ErrCorrupt, err)
	}
	return &m, nil
}
