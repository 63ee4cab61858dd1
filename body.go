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
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"rivaas.dev/router"
)

// ErrBodyLimitExceeded is the cause recorded when a submission exceeds the
// configured limit, whether caught on a part's declared size or on observed
// bytes.
var ErrBodyLimitExceeded = errors.New("request body size exceeds limit")

// contextKey is a private type for context keys to avoid collisions with
// other packages.
type contextKey string

// sessionKey is the context key the ingestion session is stored under. Its
// presence on the request marks the body as handled, which is what makes a
// rerouted request skip re-ingestion.
const sessionKey contextKey = "middleware.body_session"

// New returns a middleware that ingests the request body before the route
// handler runs. Plain bodies are accumulated in memory and republished on
// c.Request.Body; multipart file parts are streamed to temporary files;
// form fields from multipart and url-encoded submissions are collected and,
// by default, merged into c.Request.Form.
//
// The handler chain is continued exactly once, and only after the whole
// submission — the raw stream and every upload part — has finished. If the
// configured size limit is exceeded the request fails with 413 and the
// chain is never continued; any other ingestion failure yields a 500 with
// the cause attached to the context. Both failure paths delete every
// temporary file the request created.
//
// Basic usage:
//
//	r := router.MustNew()
//	r.Use(body.New(body.WithLimit(10 << 20)))
//
// With uploads kept only for the lifetime of the request:
//
//	r.Use(body.New(
//	    body.WithUploadsDirectory("/tmp/uploads"),
//	    body.WithDeleteUploadedFilesOnEnd(true),
//	))
//
// Re-invoking the middleware on the same request (an internal reroute)
// never re-reads the body or re-creates upload files; it only re-merges
// form attributes when that is enabled.
func New(opts ...Option) router.HandlerFunc {
	// Apply options to default config
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		// Websocket upgrades carry no body to ingest.
		if isWebsocketUpgrade(c.Request) {
			c.Next()
			return
		}

		if sess := sessionFrom(c); sess != nil {
			// Reroute of an already-handled request: accumulation never
			// re-runs, only the form-attribute merge does.
			if cfg.mergeFormAttributes && sess.structured() {
				sess.mergeFormAttributes(c.Request)
			}
			c.Next()
			return
		}

		sess := newSession(c.Request, cfg)
		// Mark the request handled before consuming a single byte, so
		// re-entrant delivery within this pass is impossible.
		c.Request = c.Request.WithContext(
			context.WithValue(c.Request.Context(), sessionKey, sess))

		if sess.structured() {
			// Blocking is fine here: this runs once per request, before
			// any part starts streaming.
			if err := sess.store.ensureDir(); err != nil {
				c.Error(err)
				c.WriteErrorResponse(http.StatusInternalServerError,
					"failed to prepare uploads directory")
				c.Abort()
				return
			}
		}

		sess.run(c.Request)

		// Part sinks may still be flushing after the stream ends; the
		// session resolves once the last of them reports, or immediately
		// on failure.
		<-sess.done

		if f := sess.failure.Load(); f != nil {
			sess.cleanup()
			if f.status == http.StatusRequestEntityTooLarge {
				cfg.errorHandler(c, cfg.limit)
			} else {
				c.Error(f.err)
				c.WriteErrorResponse(http.StatusInternalServerError,
					"failed to read request body")
			}
			c.Abort()
			return
		}

		if cfg.deleteUploadedFilesOnEnd {
			defer sess.cleanup()
		}
		if cfg.mergeFormAttributes && sess.structured() {
			sess.mergeFormAttributes(c.Request)
		}
		if !sess.structured() {
			// Republish the accumulated bytes so downstream handlers can
			// read the body as usual.
			c.Request.Body = io.NopCloser(bytes.NewReader(sess.body.Bytes()))
			c.Request.ContentLength = int64(sess.body.Len())
		}

		c.Next()
	}
}

// defaultErrorHandler is the default response for an exceeded size limit.
func defaultErrorHandler(c *router.Context, limit int64) {
	c.JSON(http.StatusRequestEntityTooLarge, map[string]any{
		"error":    "request entity too large",
		"max_size": limit,
	})
}

// Get returns the accumulated request body. It is empty for structured
// submissions (their bytes live in upload files and form attributes) and
// nil when the middleware did not run for this request.
//
// Example:
//
//	func handler(c *router.Context) {
//	    raw := body.Get(c)
//	    // parse raw ...
//	}
func Get(c *router.Context) []byte {
	if sess := sessionFrom(c); sess != nil {
		return sess.body.Bytes()
	}
	return nil
}

// Uploads returns the file uploads received with the request, in arrival
// order. It is nil when there are none or the middleware did not run.
func Uploads(c *router.Context) []*Upload {
	if sess := sessionFrom(c); sess != nil {
		return sess.uploads
	}
	return nil
}

// FormAttributes returns the form fields collected from a multipart or
// url-encoded submission, independent of whether they were merged into
// c.Request.Form.
func FormAttributes(c *router.Context) url.Values {
	if sess := sessionFrom(c); sess != nil {
		return sess.fields
	}
	return nil
}

func sessionFrom(c *router.Context) *session {
	sess, _ := c.Request.Context().Value(sessionKey).(*session)
	return sess
}

func isWebsocketUpgrade(req *http.Request) bool {
	for _, v := range req.Header.Values("Upgrade") {
		for _, token := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(token), "websocket") {
				return true
			}
		}
	}
	return false
}
