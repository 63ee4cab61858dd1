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
	"io"

	"github.com/spf13/afero"
)

// partSink streams one file part's bytes to its upload file. The session's
// pump writes part bytes into the sink; a dedicated goroutine drains them
// into the file and reports exactly one of completion or failure back to
// the session once the file is closed.
//
// The pipe decouples part completion from the pump: the report can arrive
// before or after the pump observes end-of-stream, and the session's
// terminal evaluation reconciles the two. A sink never retries; any storage
// error fails the whole session.
type partSink struct {
	pw *io.PipeWriter
}

// newPartSink starts streaming into file and returns the write side. The
// report callback runs on the sink's goroutine with a nil error on
// completion, or with the cause on failure. upload.Size is set before the
// report is issued.
func newPartSink(file afero.File, upload *Upload, report func(error)) *partSink {
	pr, pw := io.Pipe()
	go func() {
		n, err := io.Copy(file, pr)
		if cerr := file.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			// Unblock the pump if it is still writing.
			pr.CloseWithError(err)
		}
		upload.Size = n
		report(err)
	}()
	return &partSink{pw: pw}
}

// Write forwards part bytes to the streaming goroutine. It blocks until the
// bytes are consumed, propagating any failure the goroutine has already hit.
func (s *partSink) Write(p []byte) (int, error) {
	return s.pw.Write(p)
}

// Close marks the part's byte stream as fully delivered.
func (s *partSink) Close() error {
	return s.pw.Close()
}

// abort terminates the sink with an error; the streaming goroutine reports
// the failure. Used when the session fails while the part is mid-stream.
func (s *partSink) abort(err error) {
	s.pw.CloseWithError(err)
}
