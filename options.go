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

	"github.com/spf13/afero"
	"rivaas.dev/router"
)

// Option defines functional options for body middleware configuration.
type Option func(*config)

// config holds the configuration for the body middleware.
type config struct {
	// limit is the maximum total submission size in bytes, or Unlimited
	limit int64

	// uploadsDir is the directory upload files are created under
	uploadsDir string

	// mergeFormAttributes merges form fields into c.Request.Form on success
	mergeFormAttributes bool

	// deleteUploadedFilesOnEnd removes upload files once the response completes
	deleteUploadedFilesOnEnd bool

	// errorHandler is called when the size limit is exceeded
	errorHandler func(c *router.Context, limit int64)

	// logger receives cleanup warnings
	logger *slog.Logger

	// fs is the storage backend for upload files
	fs afero.Fs
}

// defaultConfig returns the default configuration for body middleware.
func defaultConfig() *config {
	return &config{
		limit:                    Unlimited,
		uploadsDir:               "file-uploads",
		mergeFormAttributes:      true,
		deleteUploadedFilesOnEnd: false,
		errorHandler:             defaultErrorHandler,
		logger:                   slog.Default(),
		fs:                       afero.NewOsFs(),
	}
}

// WithLimit sets the maximum total submission size in bytes, counted across
// the in-memory body and all uploaded parts. Use Unlimited to disable size
// checks entirely.
// Default: Unlimited
//
// Example:
//
//	// Limit to 10MB
//	body.New(body.WithLimit(10 * 1024 * 1024))
func WithLimit(size int64) Option {
	return func(cfg *config) {
		if size <= 0 && size != Unlimited {
			panic("body limit must be positive or Unlimited")
		}
		cfg.limit = size
	}
}

// WithUploadsDirectory sets the directory upload files are created under.
// The directory is created (recursively) on the first structured submission
// if it does not exist.
// Default: "file-uploads"
func WithUploadsDirectory(dir string) Option {
	return func(cfg *config) {
		if dir == "" {
			panic("uploads directory must not be empty")
		}
		cfg.uploadsDir = dir
	}
}

// WithMergeFormAttributes controls whether form fields from multipart and
// url-encoded submissions are merged into c.Request.Form, making them
// visible to c.FormValue.
// Default: true
func WithMergeFormAttributes(merge bool) Option {
	return func(cfg *config) {
		cfg.mergeFormAttributes = merge
	}
}

// WithDeleteUploadedFilesOnEnd controls whether upload files are removed
// once the downstream handlers have returned. Deletion is asynchronous and
// best-effort; failures are logged, never surfaced.
// Default: false (files are only removed when ingestion fails)
func WithDeleteUploadedFilesOnEnd(remove bool) Option {
	return func(cfg *config) {
		cfg.deleteUploadedFilesOnEnd = remove
	}
}

// WithErrorHandler sets a custom handler for when the size limit is
// exceeded. The handler receives both the context and the configured limit.
// Default: returns 413 Request Entity Too Large with a JSON error
//
// Example:
//
//	body.New(
//	    body.WithErrorHandler(func(c *router.Context, limit int64) {
//	        c.Stringf(http.StatusRequestEntityTooLarge, "body exceeds %d bytes", limit)
//	    }),
//	)
func WithErrorHandler(handler func(c *router.Context, limit int64)) Option {
	return func(cfg *config) {
		cfg.errorHandler = handler
	}
}

// WithLogger sets the logger used for upload cleanup warnings. Cleanup
// failures never fail the request; the logger is the only place they
// surface.
// Default: slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithFileSystem sets the filesystem upload files are written to. Tests
// typically pass afero.NewMemMapFs().
// Default: afero.NewOsFs()
func WithFileSystem(fs afero.Fs) Option {
	return func(cfg *config) {
		if fs == nil {
			panic("filesystem must not be nil")
		}
		cfg.fs = fs
	}
}
