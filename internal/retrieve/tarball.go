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
	"compress/gzip"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/elba-pm/elba/internal/cacheerr"
	"github.com/elba-pm/elba/internal/lock"
	"github.com/elba-pm/elba/internal/resolution"
)

var errChecksumMismatch = errors.New("checksum mismatch")

// TarRetriever downloads a tarball, verifies its digest, and unpacks it
// into a destination directory, stripping the first path component of
// every entry. Entries at the archive's top level (with no directory
// component) are not extracted.
type TarRetriever struct {
	Client  *http.Client
	Backoff time.Duration
}

// NewTarRetriever builds a TarRetriever with reasonable request timeouts
// and retry backoff.
func NewTarRetriever() *TarRetriever {
	return &TarRetriever{
		Client:  &http.Client{Timeout: 60 * time.Second},
		Backoff: 2 * time.Second,
	}
}

// Retrieve downloads res's tarball, verifies its checksum, and extracts it
// into dest.
func (t *TarRetriever) Retrieve(ctx context.Context, res resolution.DirectRes, dest *lock.DirLock) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest.Path()), "elba-download-")
	if err != nil {
		return cacheerr.Wrap(cacheerr.IO, err, "creating temp file for download")
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := t.downloadWithRetry(ctx, tmpPath, res.URL()); err != nil {
		return err
	}

	sum, err := sha256File(tmpPath)
	if err != nil {
		return cacheerr.Wrap(cacheerr.IO, err, "hashing downloaded tarball")
	}
	if sum != res.Cksum() {
		return cacheerr.Wrap(cacheerr.Checksum, fmt.Errorf("%w: expected=%s, got=%s", errChecksumMismatch, res.Cksum(), sum), "verifying %s", res.URL())
	}

	if err := extractTarball(tmpPath, dest.Path()); err != nil {
		return cacheerr.Wrap(cacheerr.IO, err, "extracting %s", res.URL())
	}
	return nil
}

// downloadWithRetry makes up to 3 download attempts with exponential
// backoff between them, mirroring the teacher's fetch.downloadTarball.
func (t *TarRetriever) downloadWithRetry(ctx context.Context, target, url string) error {
	backoff := t.Backoff
	var lastErr error
	for i := range 3 {
		if i > 0 {
			select {
			case <-time.After(backoff):
				backoff *= 2
			case <-ctx.Done():
				return cacheerr.Wrap(cacheerr.Network, ctx.Err(), "downloading %s", url)
			}
		}
		if err := t.downloadAttempt(ctx, target, url); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return cacheerr.Wrap(cacheerr.Network, err, "downloading %s", url)
			}
			lastErr = err
			continue
		}
		return nil
	}
	return cacheerr.Wrap(cacheerr.Network, lastErr, "downloading %s failed after 3 attempts", url)
}

func (t *TarRetriever) downloadAttempt(ctx context.Context, target, url string) (err error) {
	file, err := os.Create(target)
	if err != nil {
		return err
	}
	defer func() {
		cerr := file.Close()
		if err == nil {
			err = cerr
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := t.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("http error downloading %s: %s", url, resp.Status)
	}

	_, err = io.Copy(file, resp.Body)
	return err
}

func sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// extractTarball extracts a gzipped tarball to destDir, stripping the
// leading path component of every entry (the single top-level directory a
// source archive is conventionally wrapped in).
func extractTarball(tarballPath, destDir string) error {
	f, err := os.Open(tarballPath)
	if err != nil {
		return err
	}
	defer f.Close()

	gzr, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gzr.Close()

	tr := tar.NewReader(gzr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		name := hdr.Name
		if parts := strings.SplitN(name, "/", 2); len(parts) == 2 {
			name = parts[1]
		} else {
			continue
		}
		if name == "" {
			continue
		}

		target := filepath.Join(destDir, name)
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_RDWR|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			out.Close()
		}
	}
}
