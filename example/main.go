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

// Package main demonstrates how to use the body middleware to ingest
// request bodies and file uploads with a total-size limit.
package main

import (
	"log"
	"net/http"

	"rivaas.dev/middleware/body"
	"rivaas.dev/router"
)

func main() {
	r := router.MustNew()

	// Ingest every body up front: at most 10MB across the raw body and all
	// uploaded files, uploads staged under ./uploads and removed once the
	// response is written.
	r.Use(body.New(
		body.WithLimit(10<<20),
		body.WithUploadsDirectory("uploads"),
		body.WithDeleteUploadedFilesOnEnd(true),
	))

	// Plain bodies are accumulated and available both through body.Get and
	// on c.Request.Body.
	r.POST("/echo", func(c *router.Context) {
		c.Data(http.StatusOK, "application/octet-stream", body.Get(c))
	})

	// Multipart submissions stream each file part to its own temporary
	// file; form fields are merged into the request form.
	r.POST("/upload", func(c *router.Context) {
		files := make([]map[string]any, 0, len(body.Uploads(c)))
		for _, u := range body.Uploads(c) {
			files = append(files, map[string]any{
				"field":     u.Name,
				"file_name": u.FileName,
				"size":      u.Size,
				"path":      u.Path,
			})
		}
		c.JSON(http.StatusOK, map[string]any{
			"description": c.FormValue("description"),
			"files":       files,
		})
	})

	log.Println("listening on http://localhost:8080")
	log.Println("try:")
	log.Println(`  curl -d 'hello' http://localhost:8080/echo`)
	log.Println(`  curl -F description="report" -F doc=@README.md http://localhost:8080/upload`)
	log.Fatal(http.ListenAndServe(":8080", r))
}
