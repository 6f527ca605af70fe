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

// Package lock provides DirLock, a scoped exclusive reservation over a
// filesystem directory.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/elba-pm/elba/internal/cacheerr"
)

// inFlight tracks directories locked by this process, since flock's
// advisory file lock is reentrant within one process (the same process can
// lock the same file twice) but the spec requires at most one live DirLock
// per absolute path process-wide.
var inFlight sync.Map // map[string]struct{}

// DirLock is a scoped exclusive reservation of a filesystem directory. It
// creates the directory if absent and records an exclusive claim on it,
// valid until Release is called. The claim is advisory and cross-process
// via an OS-level file lock; it does not imply the directory's contents are
// unchanged, only that no other cache-managed actor will mutate it while
// held.
type DirLock struct {
	path     string
	fl       *flock.Flock
	released bool
	mu       sync.Mutex
}

// Acquire creates path if absent and takes an exclusive claim on it. It
// fails with a cacheerr of kind LockBusy if another DirLock (in this
// process or, where the filesystem honors flock, another process) already
// holds path.
func Acquire(path string) (*DirLock, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, cacheerr.Wrap(cacheerr.IO, err, "resolving absolute path for %s", path)
	}

	if _, loaded := inFlight.LoadOrStore(abs, struct{}{}); loaded {
		return nil, cacheerr.New(cacheerr.LockBusy, "directory %s is already locked by this process", abs)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		inFlight.Delete(abs)
		return nil, cacheerr.Wrap(cacheerr.IO, err, "creating directory %s", abs)
	}

	lockFile := abs + ".lock"
	fl := flock.New(lockFile)
	ok, err := fl.TryLock()
	if err != nil {
		inFlight.Delete(abs)
		return nil, cacheerr.Wrap(cacheerr.IO, err, "locking %s", lockFile)
	}
	if !ok {
		inFlight.Delete(abs)
		return nil, cacheerr.New(cacheerr.LockBusy, "directory %s is locked by another process", abs)
	}

	return &DirLock{path: abs, fl: fl}, nil
}

// Path returns the locked directory's absolute path.
func (d *DirLock) Path() string {
	return d.path
}

// Release gives up the exclusive claim. It is idempotent and safe to call
// from a deferred statement on every exit path, including failure.
func (d *DirLock) Release() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return nil
	}
	d.released = true

	inFlight.Delete(d.path)

	if err := d.fl.Unlock(); err != nil {
		return fmt.Errorf("unlocking %s: %w", d.path, err)
	}
	return nil
}
