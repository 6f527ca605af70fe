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

// Package source bundles a locked on-disk package directory with its
// parsed manifest and a content hash that is independent of the
// directory's real name or location.
package source

import (
	"archive/tar"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/elba-pm/elba/internal/cacheerr"
	"github.com/elba-pm/elba/internal/lock"
	"github.com/elba-pm/elba/internal/manifest"
	"github.com/elba-pm/elba/internal/resolution"
)

// DefaultIgnore is the conservative allow-list of top-level VCS/build
// directory names skipped while computing a Source's content hash, per the
// spec's open question on ignoring a conventional `target/` subdirectory.
// Grounded on golang-dep's pkgtree.DigestFromPathname, which skips the same
// class of directories while hashing a package tree.
var DefaultIgnore = map[string]bool{
	"target": true,
	".git":   true,
	".hg":    true,
	".svn":   true,
	".bzr":   true,
}

// Source is a locked on-disk package directory plus its parsed manifest
// and content hash. It uses shared ownership: multiple workers may hold a
// Source (via Retain), and the underlying DirLock is released only when
// the last holder calls Release.
type Source struct {
	inner *sourceInner
}

type sourceInner struct {
	manifest *manifest.Manifest
	loc      resolution.DirectRes
	dir      *lock.DirLock
	hash     string
	refs     int32
}

// FromFolder opens dir's elba.toml, parses it, verifies its declared name
// matches pkg, and computes the content hash over the directory tree,
// skipping any top-level entry named in ignore (nil means DefaultIgnore).
func FromFolder(pkg resolution.PackageId, dir *lock.DirLock, loc resolution.DirectRes, ignore map[string]bool) (*Source, error) {
	if ignore == nil {
		ignore = DefaultIgnore
	}

	mfPath := filepath.Join(dir.Path(), "elba.toml")
	data, err := os.ReadFile(mfPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cacheerr.Wrap(cacheerr.MissingManifest, err, "looking for elba.toml in %s", dir.Path())
		}
		return nil, cacheerr.Wrap(cacheerr.InvalidIndex, err, "reading elba.toml in %s", dir.Path())
	}

	m, err := manifest.Parse(data)
	if err != nil {
		return nil, cacheerr.Wrap(cacheerr.InvalidIndex, err, "parsing elba.toml in %s", dir.Path())
	}

	name, _, err := m.Summary()
	if err != nil {
		return nil, cacheerr.Wrap(cacheerr.InvalidIndex, err, "reading summary from elba.toml in %s", dir.Path())
	}
	if !name.Equal(pkg.Name()) {
		return nil, fmt.Errorf("names don't match: %s was declared, but %s was found in elba.toml", pkg.Name(), name)
	}

	hash, err := hashTree(dir.Path(), ignore)
	if err != nil {
		return nil, cacheerr.Wrap(cacheerr.IO, err, "hashing source tree at %s", dir.Path())
	}

	return &Source{inner: &sourceInner{manifest: m, loc: loc, dir: dir, hash: hash, refs: 1}}, nil
}

// hashTree archives dir's contents into an in-memory tar stream under a
// fixed top-level entry name (never dir's real name, so renaming the
// directory never changes the hash) and returns the hex-encoded SHA-256 of
// the archive bytes.
func hashTree(dir string, ignore map[string]bool) (string, error) {
	h := sha256.New()
	tw := tar.NewWriter(h)

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if rel == d.Name() && ignore[d.Name()] {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		var link string
		if info.Mode()&os.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return err
			}
		}

		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(filepath.Join("source", rel))

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			if _, err := io.Copy(tw, f); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if err := tw.Close(); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// Manifest returns the source's parsed manifest.
func (s *Source) Manifest() *manifest.Manifest { return s.inner.manifest }

// Location returns the DirectRes this source was retrieved from.
func (s *Source) Location() resolution.DirectRes { return s.inner.loc }

// Hash returns the source's content hash.
func (s *Source) Hash() string { return s.inner.hash }

// Path returns the source's on-disk directory.
func (s *Source) Path() string { return s.inner.dir.Path() }

// Equal reports whether two Sources have equal content hashes.
func (s *Source) Equal(o *Source) bool {
	return s.Hash() == o.Hash()
}

// Retain increments the Source's reference count and returns the same
// Source, for callers that need to hand out another owning handle (e.g.
// enqueuing onto a shared job queue).
func (s *Source) Retain() *Source {
	atomic.AddInt32(&s.inner.refs, 1)
	return s
}

// Release decrements the Source's reference count, releasing the
// underlying DirLock once the last holder releases.
func (s *Source) Release() error {
	if atomic.AddInt32(&s.inner.refs, -1) == 0 {
		return s.inner.dir.Release()
	}
	return nil
}
