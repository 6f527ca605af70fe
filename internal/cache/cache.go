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

// Package cache orchestrates DirLock, Layout, Retriever, Source, Index,
// and BuildHash into the on-disk package cache: source checkout, build
// checkout, and transitive index discovery.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/elba-pm/elba/internal/index"
	"github.com/elba-pm/elba/internal/layout"
	"github.com/elba-pm/elba/internal/lock"
	"github.com/elba-pm/elba/internal/resolution"
	"github.com/elba-pm/elba/internal/retrieve"
	"github.com/elba-pm/elba/internal/source"
)

// Cache is the package cache rooted at a Layout, fetching and storing
// sources, build artifacts, and package indices.
type Cache struct {
	Layout    *layout.Layout
	Retriever retrieve.Retriever
	Ignore    map[string]bool
}

// New builds a Cache rooted at root, creating the cache directory tree if
// absent. ignore is the content-hash ignore allow-list passed through to
// source.FromFolder; nil selects source.DefaultIgnore.
func New(root string, ignore map[string]bool) *Cache {
	return &Cache{
		Layout:    layout.New(root),
		Retriever: retrieve.NewDefault(),
		Ignore:    ignore,
	}
}

// sourceDirName computes the on-disk directory name for a non-Dir
// resolution: "<group>_<name>-<hex>" where hex is SHA-256 over the
// package name, the resolution's canonical string, and (for Tar
// resolutions with a known version) the version string.
func sourceDirName(pkg resolution.PackageId, v *resolution.Version) string {
	h := sha256.New()
	h.Write([]byte(pkg.Name().String()))
	h.Write([]byte(pkg.Res().CanonicalString()))
	if pkg.Res().Kind() == resolution.KindTar && v != nil {
		h.Write([]byte(v.String()))
	}
	return fmt.Sprintf("%s_%s-%s", pkg.Name().Group(), pkg.Name().Name(), hex.EncodeToString(h.Sum(nil)))
}

// indexDirName computes the on-disk directory name for an index
// resolution: hex(SHA-256(res.canonical_string())).
func indexDirName(res resolution.DirectRes) string {
	sum := sha256.Sum256([]byte(res.CanonicalString()))
	return hex.EncodeToString(sum[:])
}

// SourceDirPath reports the on-disk directory pkg's source would use,
// without fetching or locking it. It is the debugging counterpart to
// CheckoutSource, for operators inspecting cache state manually.
func (c *Cache) SourceDirPath(pkg resolution.PackageId, v *resolution.Version) string {
	if pkg.Res().Kind() == resolution.KindDir {
		return pkg.Res().Path()
	}
	return filepath.Join(c.Layout.Src, sourceDirName(pkg, v))
}

// CheckoutSource locates or retrieves pkg's source directory and parses it
// into a Source. v, if non-nil, is folded into the directory name for Tar
// resolutions (the same URL may serve many versions).
func (c *Cache) CheckoutSource(ctx context.Context, pkg resolution.PackageId, v *resolution.Version) (*source.Source, error) {
	dl, err := c.loadSource(ctx, pkg, v)
	if err != nil {
		return nil, err
	}

	src, err := source.FromFolder(pkg, dl, pkg.Res(), c.Ignore)
	if err != nil {
		_ = dl.Release()
		return nil, err
	}

	slog.Debug("checked out source", "package", pkg.Name().String(), "hash", src.Hash())
	return src, nil
}

// loadSource implements spec's load_source: Dir resolutions bypass the
// Retriever entirely, everything else is keyed by sourceDirName and
// fetched on miss.
func (c *Cache) loadSource(ctx context.Context, pkg resolution.PackageId, v *resolution.Version) (*lock.DirLock, error) {
	res := pkg.Res()
	if res.Kind() == resolution.KindDir {
		return lock.Acquire(res.Path())
	}

	p := filepath.Join(c.Layout.Src, sourceDirName(pkg, v))
	return acquireRetrieved(ctx, c.Retriever, res, p)
}

// GetIndices performs breadth-first, dedup-by-DirectRes discovery over a
// worklist seeded with seeds, per spec §4.7. Every failure mode (lock
// contention, retrieval failure, parse error) is logged and skipped so a
// broken transitive index never aborts a build when the project's own
// indices are sufficient.
func (c *Cache) GetIndices(ctx context.Context, seeds []resolution.DirectRes) *index.Indices {
	var seen []resolution.DirectRes
	var result []*index.Index
	queue := append([]resolution.DirectRes(nil), seeds...)

	alreadySeen := func(res resolution.DirectRes) bool {
		for _, s := range seen {
			if s.Equal(res) {
				return true
			}
		}
		return false
	}

	for len(queue) > 0 {
		res := queue[0]
		queue = queue[1:]

		if alreadySeen(res) {
			continue
		}

		dl, err := c.locateIndexDir(ctx, res)
		if err != nil {
			slog.Warn("skipping index: could not locate directory", "res", res.CanonicalString(), "err", err)
			continue
		}

		ix, err := index.FromDisk(res, dl.Path())
		if err != nil {
			slog.Warn("skipping index: parse error", "res", res.CanonicalString(), "err", err)
			_ = dl.Release()
			continue
		}

		queue = append(queue, ix.Depends()...)
		seen = append(seen, res)
		result = append(result, ix)
		_ = dl.Release()
	}

	return index.New(result)
}

func (c *Cache) locateIndexDir(ctx context.Context, res resolution.DirectRes) (*lock.DirLock, error) {
	if res.Kind() == resolution.KindDir {
		return lock.Acquire(res.Path())
	}

	p := filepath.Join(c.Layout.Indices, indexDirName(res))
	return acquireRetrieved(ctx, c.Retriever, res, p)
}

