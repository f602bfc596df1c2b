// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package cos

import (
	"github.com/go-playground/validator/v10"

	"github.com/open-cos/gocos/logger"
)

// ParsingMode selects how the tokenizer, parser, and file parser react to
// recoverable malformations (spec §6, §7).
type ParsingMode string

const (
	// Strict rejects any deviation from well-formed syntax as a fatal
	// Syntax/OutOfRange error.
	Strict ParsingMode = "strict"
	// BestEffort recovers where spec §6 defines a recovery rule, emitting
	// a Warning diagnostic instead of failing the parse.
	BestEffort ParsingMode = "best-effort"
)

// Config bounds and tunes the CORE components. It is validated the same
// way the teacher validates its own Config: struct tags plus
// validator.Struct.
type Config struct {
	// ParsingMode selects strict vs. best-effort recovery (spec §6).
	ParsingMode ParsingMode `validate:"oneof=strict best-effort"`

	// StreamReaderBufSize is the streamReader's read-ahead buffer
	// capacity in bytes (spec §4.1 requires at least 256).
	StreamReaderBufSize int `validate:"min=256"`

	// FilterBufSize is a decode buffer capacity, validated to be at least
	// 256 (spec §4.2). The filter constructors do not read it: every
	// Filter allocates minDecodeBuf bytes.
	FilterBufSize int `validate:"min=256"`

	// TokenFreeListSize bounds the tokenizer's recycled-Token free list
	// (spec §4.3's token recycling).
	TokenFreeListSize int `validate:"min=1"`

	// ReservoirCapacity bounds the parser's pending-integer reservoir
	// used to disambiguate "n n obj"/"n n R" (spec §4.4, §9). The
	// grammar never needs more than two pending integers.
	ReservoirCapacity int `validate:"min=2,max=2"`

	// TrailerScanWindow is the number of trailing bytes the file parser
	// scans backward from EOF looking for startxref/%%EOF (spec §4.6).
	TrailerScanWindow int `validate:"min=16"`

	// MaxConcurrentResolves bounds Store.ResolveMany's in-flight object
	// resolutions (spec §5's "separate threads" allowance).
	MaxConcurrentResolves int `validate:"min=1,max=64"`

	// Lenient gates the file parser's best-effort xref offset repair: a
	// rescan of a small window around any entry whose declared offset
	// doesn't actually look like an object header (spec §4.6's
	// supplemental xref-repair feature). Independent of ParsingMode,
	// since a caller may want strict lexical/grammar rules but still
	// tolerate a stale xref table produced by a buggy writer.
	Lenient bool
}

// NewDefaultConfig returns a Config with the defaults gocos uses when the
// caller does not supply one.
func NewDefaultConfig() *Config {
	return &Config{
		ParsingMode:           BestEffort,
		StreamReaderBufSize:   minReadAheadBuf,
		FilterBufSize:         minDecodeBuf,
		TokenFreeListSize:     64,
		ReservoirCapacity:     2,
		TrailerScanWindow:     1024,
		MaxConcurrentResolves: 8,
		Lenient:               true,
	}
}

// Validate checks that cfg's fields are within their documented bounds.
func (cfg *Config) Validate() error {
	logger.Debug("validating config", true)
	return validator.New().Struct(cfg)
}
