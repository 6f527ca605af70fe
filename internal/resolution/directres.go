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

package resolution

import "fmt"

// ResKind tags which variant a DirectRes holds.
type ResKind int

const (
	// KindTar is a remote tarball with an expected content digest.
	KindTar ResKind = iota
	// KindGit is a VCS URL plus a reference (branch, tag, or commit).
	KindGit
	// KindDir is a local absolute path.
	KindDir
)

func (k ResKind) String() string {
	switch k {
	case KindTar:
		return "tar"
	case KindGit:
		return "git"
	case KindDir:
		return "dir"
	default:
		return "unknown"
	}
}

// DirectRes is a tagged source locator: a tarball URL+checksum, a VCS
// URL+reference, or a local path. It has a canonical, stable string form
// that is the only input used to derive on-disk directory names.
type DirectRes struct {
	kind ResKind

	// Tar / Git share URL.
	url string
	// Tar only.
	cksum string
	// Git only.
	reference string
	// Dir only.
	path string
}

// NewTarRes builds a Tar DirectRes.
func NewTarRes(url, cksum string) DirectRes {
	return DirectRes{kind: KindTar, url: url, cksum: cksum}
}

// NewGitRes builds a Git DirectRes.
func NewGitRes(url, reference string) DirectRes {
	return DirectRes{kind: KindGit, url: url, reference: reference}
}

// NewDirRes builds a Dir DirectRes.
func NewDirRes(path string) DirectRes {
	return DirectRes{kind: KindDir, path: path}
}

// Kind reports which variant this DirectRes holds.
func (r DirectRes) Kind() ResKind { return r.kind }

// URL returns the Tar/Git URL. Empty for Dir.
func (r DirectRes) URL() string { return r.url }

// Cksum returns the Tar expected digest. Empty for other kinds.
func (r DirectRes) Cksum() string { return r.cksum }

// Reference returns the Git branch/tag/commit reference. Empty for other kinds.
func (r DirectRes) Reference() string { return r.reference }

// Path returns the Dir local path. Empty for other kinds.
func (r DirectRes) Path() string { return r.path }

// CanonicalString renders the stable string form used to derive on-disk
// directory names. It is the only input to DirLock path hashing.
func (r DirectRes) CanonicalString() string {
	switch r.kind {
	case KindTar:
		return fmt.Sprintf("tar+%s#%s", r.url, r.cksum)
	case KindGit:
		return fmt.Sprintf("git+%s#%s", r.url, r.reference)
	case KindDir:
		return fmt.Sprintf("dir+%s", r.path)
	default:
		return ""
	}
}

// Equal reports whether two DirectRes values have the same canonical
// string form (the discovery worklist's dedup key).
func (r DirectRes) Equal(o DirectRes) bool {
	return r.CanonicalString() == o.CanonicalString()
}
