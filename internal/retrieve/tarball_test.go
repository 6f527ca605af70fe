// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package retrieve

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/elba-pm/elba/internal/lock"
	"github.com/elba-pm/elba/internal/resolution"
)

func buildTestTarball(t *testing.T, topLevel string, files map[string]string) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	gzw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gzw)

	for name, content := range files {
		full := filepath.Join(topLevel, name)
		if err := tw.WriteHeader(&tar.Header{
			Name: full,
			Mode: 0o644,
			Size: int64(len(content)),
		}); err != nil {
			t.Fatalf("WriteHeader() error = %v", err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("tar Write() error = %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("tar Close() error = %v", err)
	}
	if err := gzw.Close(); err != nil {
		t.Fatalf("gzip Close() error = %v", err)
	}

	sum := fmt.Sprintf("%x", sha256.Sum256(buf.Bytes()))
	return buf.Bytes(), sum
}

func TestTarRetrieverRetrieve(t *testing.T) {
	data, sum := buildTestTarball(t, "pkg-v1", map[string]string{
		"elba.toml": "[package]\nname=\"foo/bar\"\nversion=\"1.0.0\"\n",
		"src/a.idr": "module A\n",
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	destDir := filepath.Join(t.TempDir(), "dest")
	dl, err := lock.Acquire(destDir)
	if err != nil {
		t.Fatalf("lock.Acquire() error = %v", err)
	}
	defer dl.Release()

	res := resolution.NewTarRes(srv.URL, sum)
	r := NewTarRetriever()
	if err := r.Retrieve(context.Background(), res, dl); err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(destDir, "elba.toml"))
	if err != nil {
		t.Fatalf("reading extracted elba.toml: %v", err)
	}
	if string(got) != "[package]\nname=\"foo/bar\"\nversion=\"1.0.0\"\n" {
		t.Errorf("extracted elba.toml = %q", got)
	}
}

func TestTarRetrieverChecksumMismatch(t *testing.T) {
	data, _ := buildTestTarball(t, "pkg-v1", map[string]string{"elba.toml": "x"})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	destDir := filepath.Join(t.TempDir(), "dest")
	dl, err := lock.Acquire(destDir)
	if err != nil {
		t.Fatalf("lock.Acquire() error = %v", err)
	}
	defer dl.Release()

	res := resolution.NewTarRes(srv.URL, "0000000000000000000000000000000000000000000000000000000000000000")
	r := NewTarRetriever()
	if err := r.Retrieve(context.Background(), res, dl); err == nil {
		t.Fatalf("Retrieve() with bad checksum expected error, got nil")
	}
}
