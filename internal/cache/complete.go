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
	"context"
	"os"
	"path/filepath"

	"github.com/elba-pm/elba/internal/cacheerr"
	"github.com/elba-pm/elba/internal/lock"
	"github.com/elba-pm/elba/internal/resolution"
	"github.com/elba-pm/elba/internal/retrieve"
)

// completeSentinel is written into a retrieved directory once Retrieve
// succeeds. Its absence means the directory either was never populated or
// was left behind by a process killed mid-retrieve; either way, the next
// checkout must re-retrieve rather than trust the partial contents (spec
// open question 3).
const completeSentinel = ".complete"

func isComplete(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, completeSentinel))
	return err == nil
}

func markComplete(dir string) error {
	return os.WriteFile(filepath.Join(dir, completeSentinel), nil, 0o644)
}

// acquireRetrieved acquires path, treating it as populated only if it
// carries the completeSentinel; otherwise it (re-)invokes retriever and
// marks the directory complete on success.
func acquireRetrieved(ctx context.Context, retriever retrieve.Retriever, res resolution.DirectRes, path string) (*lock.DirLock, error) {
	if isComplete(path) {
		return lock.Acquire(path)
	}

	dl, err := lock.Acquire(path)
	if err != nil {
		return nil, err
	}
	if err := retriever.Retrieve(ctx, res, dl); err != nil {
		_ = dl.Release()
		return nil, err
	}
	if err := markComplete(path); err != nil {
		_ = dl.Release()
		return nil, cacheerr.Wrap(cacheerr.IO, err, "marking %s complete", path)
	}
	return dl, nil
}
