// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package body

import (
	"log/slog"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	assert.Equal(t, Unlimited, cfg.limit)
	assert.Equal(t, "file-uploads", cfg.uploadsDir)
	assert.True(t, cfg.mergeFormAttributes)
	assert.False(t, cfg.deleteUploadedFilesOnEnd)
	assert.NotNil(t, cfg.errorHandler)
	assert.NotNil(t, cfg.logger)
	assert.NotNil(t, cfg.fs)
}

func TestWithLimit(t *testing.T) {
	cfg := defaultConfig()
	WithLimit(1024)(cfg)
	assert.Equal(t, int64(1024), cfg.limit)

	WithLimit(Unlimited)(cfg)
	assert.Equal(t, Unlimited, cfg.limit)

	assert.Panics(t, func() { WithLimit(0)(cfg) })
	assert.Panics(t, func() { WithLimit(-2)(cfg) })
}

func TestWithUploadsDirectory(t *testing.T) {
	cfg := defaultConfig()
	WithUploadsDirectory("/tmp/parts")(cfg)
	assert.Equal(t, "/tmp/parts", cfg.uploadsDir)

	assert.Panics(t, func() { WithUploadsDirectory("")(cfg) })
}

func TestWithFlags(t *testing.T) {
	cfg := defaultConfig()

	WithMergeFormAttributes(false)(cfg)
	assert.False(t, cfg.mergeFormAttributes)

	WithDeleteUploadedFilesOnEnd(true)(cfg)
	assert.True(t, cfg.deleteUploadedFilesOnEnd)
}

func TestWithCollaborators(t *testing.T) {
	cfg := defaultConfig()

	logger := slog.Default()
	WithLogger(logger)(cfg)
	assert.Same(t, logger, cfg.logger)

	fs := afero.NewMemMapFs()
	WithFileSystem(fs)(cfg)
	assert.Same(t, fs, cfg.fs)

	assert.Panics(t, func() { WithFileSystem(nil)(cfg) })
}
