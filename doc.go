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

// Package body provides middleware that ingests HTTP request bodies before
// the route handler runs: plain bodies are accumulated in memory, while
// multipart file uploads are streamed to temporary files on disk.
//
// The middleware enforces an optional total-size limit across the whole
// submission (in-memory bytes and uploaded files combined), collects form
// attributes from multipart and url-encoded submissions, and guarantees that
// temporary upload files are cleaned up when ingestion fails or, optionally,
// once the response has been written.
//
// # Basic Usage
//
//	import "rivaas.dev/middleware/body"
//
//	r := router.MustNew()
//	r.Use(body.New(
//	    body.WithLimit(10 << 20), // 10MB across body and uploads
//	))
//
//	r.POST("/submit", func(c *router.Context) {
//	    raw := body.Get(c) // the accumulated body bytes
//	    ...
//	})
//
// # File Uploads
//
// Multipart submissions never populate the in-memory body. Each file part is
// streamed to a uniquely named file under the configured uploads directory
// and described by an [Upload]:
//
//	r.POST("/upload", func(c *router.Context) {
//	    for _, u := range body.Uploads(c) {
//	        log.Printf("received %s (%d bytes) at %s", u.FileName, u.Size, u.Path)
//	    }
//	    c.NoContent()
//	})
//
// Set WithDeleteUploadedFilesOnEnd(true) to have upload files removed after
// the response completes; otherwise they are only removed when ingestion
// fails.
//
// # Error Handling
//
// A submission exceeding the configured limit yields a 413 Request Entity
// Too Large response (customizable via WithErrorHandler) and the route
// handler is never invoked. Any other ingestion failure (truncated stream,
// malformed multipart payload, storage error) yields a 500 with the cause
// recorded on the context. In both cases every temporary file already
// created for the request is deleted.
//
// # Configuration Options
//
//   - Limit: maximum total submission size in bytes; Unlimited by default
//   - UploadsDirectory: where upload files are created ("file-uploads")
//   - MergeFormAttributes: merge form fields into c.Request.Form (on)
//   - DeleteUploadedFilesOnEnd: remove uploads after the response (off)
//   - ErrorHandler: custom 413 presentation
//   - Logger: destination for cleanup warnings
//   - FileSystem: storage backend, swappable for tests
package body
