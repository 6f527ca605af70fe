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

package cache

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/elba-pm/elba/internal/buildhash"
	"github.com/elba-pm/elba/internal/cacheerr"
	"github.com/elba-pm/elba/internal/layout"
	"github.com/elba-pm/elba/internal/lock"
)

// Binary is a locked on-disk tree of built artifacts, identified
// externally by its BuildHash.
type Binary struct {
	dir *lock.DirLock
}

// Path returns the binary's on-disk directory.
func (b *Binary) Path() string { return b.dir.Path() }

// Release gives up the underlying DirLock.
func (b *Binary) Release() error { return b.dir.Release() }

// CheckoutBuild returns a lock on layout.build/<h> iff it already exists.
// It never creates the directory; a miss is reported via the second
// return value, not an error.
func (c *Cache) CheckoutBuild(h buildhash.Hash) (*Binary, bool, error) {
	p := filepath.Join(c.Layout.Build, h.String())
	if _, err := os.Stat(p); err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, cacheerr.Wrap(cacheerr.IO, err, "statting build directory %s", p)
	}

	dl, err := lock.Acquire(p)
	if err != nil {
		return nil, false, err
	}
	return &Binary{dir: dl}, true, nil
}

// CheckoutTmp acquires layout.tmp/<h>, clears it, and wraps it in an
// OutputLayout, always yielding a fresh tree.
func (c *Cache) CheckoutTmp(h buildhash.Hash) (*layout.OutputLayout, error) {
	p := filepath.Join(c.Layout.Tmp, h.String())
	dl, err := lock.Acquire(p)
	if err != nil {
		return nil, err
	}
	if err := clearDir(p); err != nil {
		_ = dl.Release()
		return nil, cacheerr.Wrap(cacheerr.IO, err, "clearing tmp directory %s", p)
	}
	return layout.NewOutputLayout(dl), nil
}

// StoreBuild ensures layout.build/<h> exists, clears it, recursively
// copies from into it, and returns the resulting Binary.
func (c *Cache) StoreBuild(from string, h buildhash.Hash) (*Binary, error) {
	p := filepath.Join(c.Layout.Build, h.String())
	dl, err := lock.Acquire(p)
	if err != nil {
		return nil, err
	}
	if err := clearDir(p); err != nil {
		_ = dl.Release()
		return nil, cacheerr.Wrap(cacheerr.IO, err, "clearing build directory %s", p)
	}
	if err := copyDir(from, p); err != nil {
		_ = dl.Release()
		return nil, cacheerr.Wrap(cacheerr.IO, err, "copying build output from %s", from)
	}

	slog.Debug("stored build", "hash", h.String(), "from", from)
	return &Binary{dir: dl}, nil
}

// GC removes every scratch tree under layout.tmp, returning how many it
// removed. This is always safe: checkout_tmp recreates and clears its
// target on every call.
func (c *Cache) GC() (int, error) {
	entries, err := os.ReadDir(c.Layout.Tmp)
	if err != nil {
		return 0, cacheerr.Wrap(cacheerr.IO, err, "listing %s", c.Layout.Tmp)
	}
	n := 0
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(c.Layout.Tmp, e.Name())); err != nil {
			return n, cacheerr.Wrap(cacheerr.IO, err, "removing %s", e.Name())
		}
		n++
	}
	return n, nil
}

// clearDir removes every entry under dir without removing dir itself, so
// the directory keeps its DirLock-managed identity.
func clearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// copyDir recursively copies src into dst, copying symlinks as symlinks
// and regular files by content. Grounded on the teacher's copyFile helper
// for legacy manifest publishing, generalized here to walk a whole tree
// instead of one file at a time.
func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if rel == "." {
			return os.MkdirAll(target, 0o755)
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		if info.Mode()&os.ModeSymlink != 0 {
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		}
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
