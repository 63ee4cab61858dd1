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
	"fmt"
	"io"
	"math"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"sync/atomic"
)

const (
	// defaultInitialBufferSize is the body buffer capacity used when the
	// request declares no usable Content-Length.
	defaultInitialBufferSize = 1024

	// pumpChunkSize is the read-chunk size of the pump loop.
	pumpChunkSize = 32 * 1024
)

// failure is the terminal error of a session: the HTTP status it maps to
// and the underlying cause. The first failure recorded wins; everything
// after it is discarded.
type failure struct {
	status int
	err    error
}

// session is the per-request ingestion state. It is created once per
// request and survives reroutes through the request context, which is how
// re-entry is detected.
//
// The pump loop (run and everything it calls) executes on the request
// goroutine and is the only writer of body, fields, uploads and the size
// tracker. Part sinks report completion from their own goroutines, so the
// active-part counter, the end flag, the failure slot and the finalize and
// cleanup guards are atomic: they are the rendezvous between the pump and
// the sinks.
type session struct {
	cfg   *config
	store *uploadStore

	tracker limitTracker
	body    *bytes.Buffer
	fields  url.Values
	uploads []*Upload

	multipart  bool
	urlencoded bool
	boundary   string

	activeParts atomic.Int32
	ended       atomic.Bool
	finalized   atomic.Bool
	cleaned     atomic.Bool
	failure     atomic.Pointer[failure]

	// done is closed exactly once, by whichever of end-of-stream, last part
	// completion, or first failure resolves the session. The request
	// goroutine blocks on it before continuing or failing the request.
	done chan struct{}
}

func newSession(req *http.Request, cfg *config) *session {
	s := &session{
		cfg:     cfg,
		store:   newUploadStore(cfg),
		tracker: limitTracker{limit: cfg.limit},
		fields:  url.Values{},
		done:    make(chan struct{}),
	}

	if mediaType, params, err := mime.ParseMediaType(req.Header.Get("Content-Type")); err == nil {
		switch mediaType {
		case "multipart/form-data":
			s.multipart = true
			s.boundary = params["boundary"]
		case "application/x-www-form-urlencoded":
			s.urlencoded = true
		}
	}

	s.body = bytes.NewBuffer(make([]byte, 0, initialBufferSize(req, cfg.limit)))

	return s
}

// initialBufferSize sizes the body buffer from the declared Content-Length,
// clamped to the limit. A missing, negative or unparsable header falls back
// to the fixed default rather than failing.
func initialBufferSize(req *http.Request, limit int64) int {
	size := int64(defaultInitialBufferSize)
	if v := req.Header.Get("Content-Length"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			size = n
		}
	}
	if limit != Unlimited && limit < size {
		size = limit
	}
	if size > math.MaxInt32 {
		size = math.MaxInt32
	}
	return int(size)
}

// structured reports whether the submission carries form data instead of a
// plain body. Structured submissions never populate the in-memory body:
// their bytes live in per-part upload files and in the collected fields.
func (s *session) structured() bool {
	return s.multipart || s.urlencoded
}

// run consumes the request body to completion (or failure) and records
// end-of-stream. It must be called exactly once, on the request goroutine.
func (s *session) run(req *http.Request) {
	if req.Body == nil {
		s.end()
		return
	}
	switch {
	case s.multipart:
		s.pumpMultipart(req)
	case s.urlencoded:
		s.pumpURLEncoded(req)
	default:
		s.pumpPlain(req)
	}
	s.end()
}

func (s *session) pumpPlain(req *http.Request) {
	buf := make([]byte, pumpChunkSize)
	for !s.failed() {
		n, err := req.Body.Read(buf)
		if n > 0 {
			if !s.tracker.add(int64(n)) {
				s.fail(http.StatusRequestEntityTooLarge, ErrBodyLimitExceeded)
				return
			}
			s.body.Write(buf[:n])
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			s.fail(http.StatusInternalServerError, fmt.Errorf("reading request body: %w", err))
			return
		}
	}
}

func (s *session) pumpURLEncoded(req *http.Request) {
	var raw bytes.Buffer
	buf := make([]byte, pumpChunkSize)
	for !s.failed() {
		n, err := req.Body.Read(buf)
		if n > 0 {
			if !s.tracker.add(int64(n)) {
				s.fail(http.StatusRequestEntityTooLarge, ErrBodyLimitExceeded)
				return
			}
			raw.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			s.fail(http.StatusInternalServerError, fmt.Errorf("reading request body: %w", err))
			return
		}
	}
	if s.failed() {
		return
	}

	values, err := url.ParseQuery(raw.String())
	if err != nil {
		s.fail(http.StatusInternalServerError, fmt.Errorf("parsing url-encoded body: %w", err))
		return
	}
	for k, vs := range values {
		s.fields[k] = append(s.fields[k], vs...)
	}
}

func (s *session) pumpMultipart(req *http.Request) {
	if s.boundary == "" {
		s.fail(http.StatusInternalServerError, fmt.Errorf("multipart body without boundary parameter"))
		return
	}

	mr := multipart.NewReader(req.Body, s.boundary)
	buf := make([]byte, pumpChunkSize)
	for !s.failed() {
		part, err := mr.NextPart()
		if err == io.EOF {
			return
		}
		if err != nil {
			s.fail(http.StatusInternalServerError, fmt.Errorf("reading multipart body: %w", err))
			return
		}
		if part.FileName() == "" {
			s.readField(part, buf)
			continue
		}
		s.streamPart(part, buf)
	}
}

// readField collects a non-file part into the form attributes. Field bytes
// count against the limit like everything else.
func (s *session) readField(part *multipart.Part, buf []byte) {
	var value bytes.Buffer
	for {
		n, err := part.Read(buf)
		if n > 0 {
			if !s.tracker.add(int64(n)) {
				s.fail(http.StatusRequestEntityTooLarge, ErrBodyLimitExceeded)
				return
			}
			value.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			s.fail(http.StatusInternalServerError,
				fmt.Errorf("reading form field %q: %w", part.FormName(), err))
			return
		}
	}
	s.fields.Add(part.FormName(), value.String())
}

// streamPart routes one file part through a sink into a fresh upload file.
// The declared part size is pre-checked against the limit so an oversized
// upload can be rejected before a single byte is stored; the definitive
// check still runs on observed bytes, so an under-declared part is caught
// as it streams.
func (s *session) streamPart(part *multipart.Part, buf []byte) {
	if !s.tracker.precheck(declaredPartSize(part.Header)) {
		s.fail(http.StatusRequestEntityTooLarge, ErrBodyLimitExceeded)
		return
	}

	file, path, err := s.store.create()
	if err != nil {
		s.fail(http.StatusInternalServerError, err)
		return
	}
	upload := &Upload{
		Name:        part.FormName(),
		FileName:    part.FileName(),
		ContentType: part.Header.Get("Content-Type"),
		Path:        path,
	}
	s.uploads = append(s.uploads, upload)

	s.activeParts.Add(1)
	sink := newPartSink(file, upload, s.partDone)

	for {
		if s.failed() {
			sink.abort(s.failure.Load().err)
			return
		}
		n, err := part.Read(buf)
		if n > 0 {
			if !s.tracker.add(int64(n)) {
				s.fail(http.StatusRequestEntityTooLarge, ErrBodyLimitExceeded)
				sink.abort(ErrBodyLimitExceeded)
				return
			}
			if _, werr := sink.Write(buf[:n]); werr != nil {
				// The sink goroutine already hit a storage error and has
				// reported it; nothing more to do here.
				return
			}
		}
		if err == io.EOF {
			_ = sink.Close()
			return
		}
		if err != nil {
			readErr := fmt.Errorf("reading upload %q: %w", upload.Name, err)
			s.fail(http.StatusInternalServerError, readErr)
			sink.abort(readErr)
			return
		}
	}
}

// declaredPartSize extracts a part's declared Content-Length. Negative,
// unparsable or absent sizes all mean unknown.
func declaredPartSize(h textproto.MIMEHeader) int64 {
	v := h.Get("Content-Length")
	if v == "" {
		return -1
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// partDone is the sink completion report. It may run on any sink goroutine,
// concurrently with end; the atomic counter and the finalize guard make the
// terminal evaluation safe from either side.
func (s *session) partDone(err error) {
	if err != nil {
		s.fail(http.StatusInternalServerError, err)
	}
	if s.activeParts.Add(-1) == 0 && s.ended.Load() {
		s.tryFinish()
	}
}

// end records that the request stream is fully consumed. If no parts are
// still streaming the session resolves now; otherwise the last partDone
// resolves it.
func (s *session) end() {
	s.ended.Store(true)
	if s.activeParts.Load() == 0 {
		s.tryFinish()
	}
}

// fail records the session's terminal failure. Only the first failure is
// kept; a failure resolves the session immediately, without waiting for
// in-flight parts, whose output is discarded by cleanup.
func (s *session) fail(status int, err error) {
	if s.failure.CompareAndSwap(nil, &failure{status: status, err: err}) {
		s.tryFinish()
	}
}

func (s *session) failed() bool {
	return s.failure.Load() != nil
}

// tryFinish resolves the session at most once, regardless of how many
// trigger paths race into it.
func (s *session) tryFinish() {
	if s.finalized.CompareAndSwap(false, true) {
		close(s.done)
	}
}

// cleanup deletes every upload file the session created. It runs at most
// once no matter how many paths trigger it, never blocks the request flow,
// and never fails: storage problems during deletion are logged and
// swallowed.
func (s *session) cleanup() {
	if s.cleaned.CompareAndSwap(false, true) {
		uploads := s.uploads
		go s.store.removeAll(uploads)
	}
}

// mergeFormAttributes merges the collected fields into the request's form
// values, where FormValue finds them. Re-merging on a reroute appends the
// fields again; callers that re-enter see duplicated values.
func (s *session) mergeFormAttributes(req *http.Request) {
	if req.Form == nil {
		req.Form = req.URL.Query()
	}
	for k, vs := range s.fields {
		req.Form[k] = append(req.Form[k], vs...)
	}
	// Body is consumed; keep ParseForm from trying to read it again.
	if req.PostForm == nil {
		req.PostForm = url.Values{}
	}
}
