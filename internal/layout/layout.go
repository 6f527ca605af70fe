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

// Package layout names the on-disk subdirectories of a cache root (and,
// via OutputLayout, of a per-build scratch/output tree) and guarantees
// their existence.
package layout

import (
	"os"
	"path/filepath"
)

// Layout records the seven cache directories rooted at a cache root. New
// attempts to create all seven; it does not report a directory it failed
// to create.
type Layout struct {
	Root      string
	Src       string
	Build     string
	Tmp       string
	Artifacts string
	Bin       string
	Indices   string
}

// New builds the seven-path record rooted at root and creates every
// directory. Other IO errors during creation are tolerated silently here;
// operations that require a directory later surface their own errors.
func New(root string) *Layout {
	l := &Layout{
		Root:      root,
		Src:       filepath.Join(root, "src"),
		Build:     filepath.Join(root, "build"),
		Tmp:       filepath.Join(root, "tmp"),
		Artifacts: filepath.Join(root, "artifacts"),
		Bin:       filepath.Join(root, "bin"),
		Indices:   filepath.Join(root, "indices"),
	}

	for _, dir := range []string{l.Root, l.Src, l.Build, l.Tmp, l.Artifacts, l.Bin, l.Indices} {
		_ = os.MkdirAll(dir, 0o755)
	}

	return l
}
