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

// Upload describes one file part that was streamed to temporary storage.
//
// The described file is exclusively owned by the request that produced it:
// it is deleted when ingestion fails, and additionally after the response
// completes when WithDeleteUploadedFilesOnEnd is enabled. Handlers that need
// the file to outlive the request must move it elsewhere.
type Upload struct {
	// Name is the form field name the part arrived under.
	Name string

	// FileName is the file name declared by the client, if any.
	FileName string

	// ContentType is the part's declared content type, if any.
	ContentType string

	// Size is the number of bytes actually written to the file. It is set
	// when the part finishes streaming and is valid once the route handler
	// runs.
	Size int64

	// Path is the generated location of the file under the uploads
	// directory.
	Path string
}
