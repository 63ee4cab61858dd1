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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// uploadStore creates and deletes temporary upload files under a single
// directory. Creation errors are fatal to the owning session; deletion is
// best-effort and only ever logs.
type uploadStore struct {
	fs     afero.Fs
	dir    string
	logger *slog.Logger
}

func newUploadStore(cfg *config) *uploadStore {
	return &uploadStore{
		fs:     cfg.fs,
		dir:    cfg.uploadsDir,
		logger: cfg.logger,
	}
}

// ensureDir creates the uploads directory if it does not exist. It is
// idempotent and blocking; it runs at most once per session, before any
// part starts streaming.
func (s *uploadStore) ensureDir() error {
	exists, err := afero.DirExists(s.fs, s.dir)
	if err != nil {
		return fmt.Errorf("checking uploads directory %q: %w", s.dir, err)
	}
	if exists {
		return nil
	}
	if err := s.fs.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("creating uploads directory %q: %w", s.dir, err)
	}
	return nil
}

// create opens a new upload file with a generated unique name and returns
// the open handle along with its path.
func (s *uploadStore) create() (afero.File, string, error) {
	path := filepath.Join(s.dir, uuid.NewString())
	f, err := s.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, "", fmt.Errorf("creating upload file %q: %w", path, err)
	}
	return f, path, nil
}

// removeAll deletes the files behind the given uploads. It is synchronous;
// callers that must not block run it on its own goroutine. Each deletion is
// independent: a failure on one file never prevents the others from being
// attempted, and no failure is ever returned. A file that is already gone
// is not an error.
func (s *uploadStore) removeAll(uploads []*Upload) {
	for _, u := range uploads {
		s.remove(u.Path)
	}
}

func (s *uploadStore) remove(path string) {
	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		s.logger.Warn("could not check whether uploaded file exists, not deleting",
			"path", path, "error", err)
		return
	}
	if !exists {
		return
	}
	if err := s.fs.Remove(path); err != nil {
		s.logger.Warn("delete of uploaded file failed", "path", path, "error", err)
	}
}
