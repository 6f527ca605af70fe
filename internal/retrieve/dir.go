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
	"context"
	"os"

	"github.com/elba-pm/elba/internal/cacheerr"
	"github.com/elba-pm/elba/internal/lock"
	"github.com/elba-pm/elba/internal/resolution"
)

// DirRetriever populates a destination directory so that it points to a
// local directory dependency, via a symlink.
type DirRetriever struct{}

// NewDirRetriever builds a DirRetriever.
func NewDirRetriever() *DirRetriever {
	return &DirRetriever{}
}

// Retrieve symlinks dest to res.Path(). In practice the cache bypasses
// this path entirely for Dir resolutions (see cache.CheckoutSource), since
// a Dir dependency is used in place rather than copied into the cache; this
// exists so DirRetriever still satisfies Retriever for direct callers and
// tests.
func (d *DirRetriever) Retrieve(ctx context.Context, res resolution.DirectRes, dest *lock.DirLock) error {
	if _, err := os.Lstat(dest.Path()); err == nil {
		if err := os.Remove(dest.Path()); err != nil {
			return cacheerr.Wrap(cacheerr.IO, err, "removing existing entry at %s", dest.Path())
		}
	}
	if err := os.Symlink(res.Path(), dest.Path()); err != nil {
		return cacheerr.Wrap(cacheerr.IO, err, "symlinking %s to %s", dest.Path(), res.Path())
	}
	return nil
}
