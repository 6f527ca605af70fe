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

package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/elba-pm/elba/internal/resolution"
)

func writeIndexYAML(t *testing.T, dir string, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "index.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestFromDiskParsesPackagesAndDepends(t *testing.T) {
	dir := t.TempDir()
	writeIndexYAML(t, dir, `
name: central
packages:
  - name: foo/bar
    version: 1.0.0
    res: tar+https://example.com/bar.tar.gz#abc
depends:
  - kind: git
    url: https://example.com/other-index.git
    reference: main
`)

	res := resolution.NewDirRes(dir)
	ix, err := FromDisk(res, dir)
	if err != nil {
		t.Fatalf("FromDisk() error = %v", err)
	}

	if ix.Name() != "central" {
		t.Errorf("Name() = %q, want %q", ix.Name(), "central")
	}
	if got := ix.Summaries("foo/bar"); len(got) != 1 || got[0].Version != "1.0.0" {
		t.Errorf("Summaries(foo/bar) = %v", got)
	}
	if got := ix.Depends(); len(got) != 1 || got[0].Kind() != resolution.KindGit {
		t.Errorf("Depends() = %v", got)
	}
}

func TestFromDiskMissingFile(t *testing.T) {
	dir := t.TempDir()
	res := resolution.NewDirRes(dir)
	if _, err := FromDisk(res, dir); err == nil {
		t.Fatalf("FromDisk() with missing index.yaml expected error, got nil")
	}
}

func TestFromDiskUnknownDependsKind(t *testing.T) {
	dir := t.TempDir()
	writeIndexYAML(t, dir, `
name: broken
packages: []
depends:
  - kind: svn
    url: https://example.com/x
`)
	res := resolution.NewDirRes(dir)
	if _, err := FromDisk(res, dir); err == nil {
		t.Fatalf("FromDisk() with unknown depends kind expected error, got nil")
	}
}

func TestIndicesSummariesPriorityOrder(t *testing.T) {
	dirA := t.TempDir()
	writeIndexYAML(t, dirA, "name: a\npackages:\n  - name: foo/bar\n    version: 1.0.0\n    res: x\n")
	dirB := t.TempDir()
	writeIndexYAML(t, dirB, "name: b\npackages:\n  - name: foo/bar\n    version: 2.0.0\n    res: y\n")

	ixA, err := FromDisk(resolution.NewDirRes(dirA), dirA)
	if err != nil {
		t.Fatalf("FromDisk(a) error = %v", err)
	}
	ixB, err := FromDisk(resolution.NewDirRes(dirB), dirB)
	if err != nil {
		t.Fatalf("FromDisk(b) error = %v", err)
	}

	ixs := New([]*Index{ixA, ixB})
	got := ixs.Summaries("foo/bar")
	if len(got) != 2 || got[0].Version != "1.0.0" || got[1].Version != "2.0.0" {
		t.Errorf("Summaries() = %v, want discovery order [1.0.0, 2.0.0]", got)
	}
}
