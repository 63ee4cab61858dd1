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
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"rivaas.dev/router"
	"rivaas.dev/router/middleware"
)

func BenchmarkBody_Plain(b *testing.B) {
	r := router.MustNew()
	r.Use(New(
		WithFileSystem(afero.NewMemMapFs()),
		WithLogger(middleware.NewTestLogger()),
		WithLimit(1<<20),
	))
	r.POST("/ingest", func(c *router.Context) { c.NoContent() })

	payload := strings.Repeat("a", 4096)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader(payload))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
	}
}

func BenchmarkBody_Multipart(b *testing.B) {
	r := router.MustNew()
	r.Use(New(
		WithFileSystem(afero.NewMemMapFs()),
		WithLogger(middleware.NewTestLogger()),
		WithDeleteUploadedFilesOnEnd(true),
	))
	r.POST("/upload", func(c *router.Context) { c.NoContent() })

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("doc", "doc.bin")
	if err != nil {
		b.Fatal(err)
	}
	if _, err := fw.Write(bytes.Repeat([]byte("a"), 4096)); err != nil {
		b.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		b.Fatal(err)
	}
	payload := buf.Bytes()
	contentType := mw.FormDataContentType()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(payload))
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
	}
}
