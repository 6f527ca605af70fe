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

// Package retrieve fetches a resolution.DirectRes into a locked
// destination directory: unpacking a tarball, cloning/checking out a VCS
// reference, or symlinking a local directory.
package retrieve

import (
	"context"

	"github.com/elba-pm/elba/internal/cacheerr"
	"github.com/elba-pm/elba/internal/lock"
	"github.com/elba-pm/elba/internal/resolution"
)

// Retriever fetches res into dest. The cache calls Retrieve only after
// acquiring the DirLock on dest.
type Retriever interface {
	Retrieve(ctx context.Context, res resolution.DirectRes, dest *lock.DirLock) error
}

// Default composes the three concrete retrievers (tarball, git, dir)
// behind one Retriever, selected by res.Kind().
type Default struct {
	Tar *TarRetriever
	Git *GitRetriever
	Dir *DirRetriever
}

// NewDefault builds a Default retriever from NewTarRetriever (an
// http.Client with a request timeout and retry backoff), NewGitRetriever,
// and NewDirRetriever.
func NewDefault() *Default {
	return &Default{
		Tar: NewTarRetriever(),
		Git: NewGitRetriever(),
		Dir: NewDirRetriever(),
	}
}

// Retrieve dispatches to the concrete retriever matching res.Kind().
func (d *Default) Retrieve(ctx context.Context, res resolution.DirectRes, dest *lock.DirLock) error {
	switch res.Kind() {
	case resolution.KindTar:
		return d.Tar.Retrieve(ctx, res, dest)
	case resolution.KindGit:
		return d.Git.Retrieve(ctx, res, dest)
	case resolution.KindDir:
		return d.Dir.Retrieve(ctx, res, dest)
	default:
		return cacheerr.New(cacheerr.IO, "unknown DirectRes kind %v", res.Kind())
	}
}
