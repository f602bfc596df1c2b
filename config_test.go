// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package cos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *Config
		shouldErr bool
	}{
		{
			name: "valid config",
			cfg: &Config{
				ParsingMode:           BestEffort,
				StreamReaderBufSize:   512,
				FilterBufSize:         512,
				TokenFreeListSize:     64,
				ReservoirCapacity:     2,
				TrailerScanWindow:     1024,
				MaxConcurrentResolves: 8,
			},
			shouldErr: false,
		},
		{
			name: "stream reader buffer too small",
			cfg: &Config{
				ParsingMode:           BestEffort,
				StreamReaderBufSize:   16,
				FilterBufSize:         512,
				TokenFreeListSize:     64,
				ReservoirCapacity:     2,
				TrailerScanWindow:     1024,
				MaxConcurrentResolves: 8,
			},
			shouldErr: true,
		},
		{
			name: "filter buffer too small",
			cfg: &Config{
				ParsingMode:           Strict,
				StreamReaderBufSize:   512,
				FilterBufSize:         16,
				TokenFreeListSize:     64,
				ReservoirCapacity:     2,
				TrailerScanWindow:     1024,
				MaxConcurrentResolves: 8,
			},
			shouldErr: true,
		},
		{
			name: "invalid ParsingMode",
			cfg: &Config{
				ParsingMode:           "invalid-mode",
				StreamReaderBufSize:   512,
				FilterBufSize:         512,
				TokenFreeListSize:     64,
				ReservoirCapacity:     2,
				TrailerScanWindow:     1024,
				MaxConcurrentResolves: 8,
			},
			shouldErr: true,
		},
		{
			name: "reservoir capacity must be exactly two",
			cfg: &Config{
				ParsingMode:           BestEffort,
				StreamReaderBufSize:   512,
				FilterBufSize:         512,
				TokenFreeListSize:     64,
				ReservoirCapacity:     3,
				TrailerScanWindow:     1024,
				MaxConcurrentResolves: 8,
			},
			shouldErr: true,
		},
		{
			name: "too many concurrent resolves",
			cfg: &Config{
				ParsingMode:           BestEffort,
				StreamReaderBufSize:   512,
				FilterBufSize:         512,
				TokenFreeListSize:     64,
				ReservoirCapacity:     2,
				TrailerScanWindow:     1024,
				MaxConcurrentResolves: 128,
			},
			shouldErr: true,
		},
		{
			name:      "default config is valid",
			cfg:       NewDefaultConfig(),
			shouldErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.shouldErr {
				assert.Error(t, err, "expected validation error")
			} else {
				assert.NoError(t, err, "expected validation to pass")
			}
		})
	}
}

func TestConfig_DefaultIsLenient(t *testing.T) {
	assert.True(t, NewDefaultConfig().Lenient)
}
