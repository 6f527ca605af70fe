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

package layout

import (
	"os"
	"path/filepath"

	"github.com/elba-pm/elba/internal/lock"
)

// OutputLayout is the layout of a per-build scratch or output tree: either
// a temporary build directory in the global cache, or the project's
// `target` directory.
type OutputLayout struct {
	lock *lock.DirLock

	Root      string
	Bin       string
	Lib       string
	Build     string
	Deps      string
	Artifacts string
}

// NewOutputLayout builds the six-path record (the root plus five
// subdirectories) rooted at lock's directory and creates every directory.
func NewOutputLayout(l *lock.DirLock) *OutputLayout {
	root := l.Path()
	ol := &OutputLayout{
		lock:      l,
		Root:      root,
		Bin:       filepath.Join(root, "bin"),
		Lib:       filepath.Join(root, "lib"),
		Build:     filepath.Join(root, "build"),
		Deps:      filepath.Join(root, "deps"),
		Artifacts: filepath.Join(root, "artifacts"),
	}

	for _, dir := range []string{ol.Root, ol.Bin, ol.Lib, ol.Build, ol.Deps, ol.Artifacts} {
		_ = os.MkdirAll(dir, 0o755)
	}

	return ol
}

// Release gives up the underlying DirLock.
func (ol *OutputLayout) Release() error {
	return ol.lock.Release()
}
