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

package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/elba-pm/elba/internal/lock"
	"github.com/elba-pm/elba/internal/resolution"
)

func writeManifest(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "elba.toml"), []byte(
		"[package]\nname=\""+name+"\"\nversion=\"1.0.0\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func acquireAndBuild(t *testing.T, dirPath string, pkg resolution.PackageId, loc resolution.DirectRes) *Source {
	t.Helper()
	dl, err := lock.Acquire(dirPath)
	if err != nil {
		t.Fatalf("lock.Acquire() error = %v", err)
	}
	s, err := FromFolder(pkg, dl, loc, nil)
	if err != nil {
		t.Fatalf("FromFolder() error = %v", err)
	}
	return s
}

func TestFromFolderHashDeterminism(t *testing.T) {
	name, _ := resolution.ParseName("foo/bar")
	loc := resolution.NewDirRes("/irrelevant")
	pkg := resolution.NewPackageId(name, loc)

	dir := filepath.Join(t.TempDir(), "pkg")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	writeManifest(t, dir, "foo/bar")

	dl, err := lock.Acquire(dir)
	if err != nil {
		t.Fatalf("lock.Acquire() error = %v", err)
	}
	s1, err := FromFolder(pkg, dl, loc, nil)
	if err != nil {
		t.Fatalf("FromFolder() error = %v", err)
	}
	if err := s1.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	dl2, err := lock.Acquire(dir)
	if err != nil {
		t.Fatalf("re-Acquire() error = %v", err)
	}
	s2, err := FromFolder(pkg, dl2, loc, nil)
	if err != nil {
		t.Fatalf("FromFolder() second call error = %v", err)
	}
	defer s2.Release()

	if !s1.Equal(s2) {
		t.Errorf("identical directory contents produced different hashes across re-open: %s vs %s", s1.Hash(), s2.Hash())
	}
}

func TestFromFolderIgnoresDirectoryName(t *testing.T) {
	name, _ := resolution.ParseName("foo/bar")
	loc := resolution.NewDirRes("/irrelevant")
	pkg := resolution.NewPackageId(name, loc)

	dirA := filepath.Join(t.TempDir(), "name-a")
	dirB := filepath.Join(t.TempDir(), "totally-different-name")
	for _, d := range []string{dirA, dirB} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		writeManifest(t, d, "foo/bar")
	}

	sA := acquireAndBuild(t, dirA, pkg, loc)
	defer sA.Release()
	sB := acquireAndBuild(t, dirB, pkg, loc)
	defer sB.Release()

	if !sA.Equal(sB) {
		t.Errorf("directory name influenced content hash: %s vs %s", sA.Hash(), sB.Hash())
	}
}

func TestFromFolderMissingManifest(t *testing.T) {
	name, _ := resolution.ParseName("foo/bar")
	loc := resolution.NewDirRes("/irrelevant")
	pkg := resolution.NewPackageId(name, loc)

	dir := filepath.Join(t.TempDir(), "pkg")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	dl, err := lock.Acquire(dir)
	if err != nil {
		t.Fatalf("lock.Acquire() error = %v", err)
	}
	defer dl.Release()

	if _, err := FromFolder(pkg, dl, loc, nil); err == nil {
		t.Fatalf("FromFolder() with missing manifest expected error, got nil")
	}
}

func TestFromFolderNameMismatch(t *testing.T) {
	name, _ := resolution.ParseName("foo/other")
	loc := resolution.NewDirRes("/irrelevant")
	pkg := resolution.NewPackageId(name, loc)

	dir := filepath.Join(t.TempDir(), "pkg")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	writeManifest(t, dir, "foo/bar")

	dl, err := lock.Acquire(dir)
	if err != nil {
		t.Fatalf("lock.Acquire() error = %v", err)
	}
	defer dl.Release()

	if _, err := FromFolder(pkg, dl, loc, nil); err == nil {
		t.Fatalf("FromFolder() with mismatched name expected error, got nil")
	}
}

func TestSourceRefCounting(t *testing.T) {
	name, _ := resolution.ParseName("foo/bar")
	loc := resolution.NewDirRes("/irrelevant")
	pkg := resolution.NewPackageId(name, loc)

	dir := filepath.Join(t.TempDir(), "pkg")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	writeManifest(t, dir, "foo/bar")

	s := acquireAndBuild(t, dir, pkg, loc)
	s2 := s.Retain()

	if err := s.Release(); err != nil {
		t.Fatalf("first Release() error = %v", err)
	}
	// The directory should still be usable: a second Acquire on the same
	// path must still fail, because s2 still holds the lock.
	if _, err := lock.Acquire(dir); err == nil {
		t.Errorf("Acquire() on still-held directory succeeded, want error")
	}
	if err := s2.Release(); err != nil {
		t.Fatalf("second Release() error = %v", err)
	}
}
