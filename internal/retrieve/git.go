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
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	httpAuth "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/elba-pm/elba/internal/cacheerr"
	"github.com/elba-pm/elba/internal/lock"
	"github.com/elba-pm/elba/internal/resolution"
)

// GitRetriever clones (or opens and fast-forwards) a repository into a
// destination directory and checks out a branch, tag, or commit in
// detached HEAD.
type GitRetriever struct{}

// NewGitRetriever builds a GitRetriever.
func NewGitRetriever() *GitRetriever {
	return &GitRetriever{}
}

// Retrieve clones res's repository into dest (or opens and fetches it if
// already present) and checks out res.Reference().
func (g *GitRetriever) Retrieve(ctx context.Context, res resolution.DirectRes, dest *lock.DirLock) error {
	auth, err := authForURL(res.URL())
	if err != nil {
		return cacheerr.Wrap(cacheerr.VCS, err, "resolving auth for %s", res.URL())
	}

	repo, err := git.PlainOpen(dest.Path())
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainCloneContext(ctx, dest.Path(), false, &git.CloneOptions{
			URL:  res.URL(),
			Auth: auth,
		})
		if err != nil {
			return cacheerr.Wrap(cacheerr.VCS, err, "cloning %s", res.URL())
		}
	} else if err != nil {
		return cacheerr.Wrap(cacheerr.VCS, err, "opening repository at %s", dest.Path())
	} else {
		remote, rerr := repo.Remote("origin")
		if rerr == nil {
			if err := remote.FetchContext(ctx, &git.FetchOptions{Auth: auth}); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
				return cacheerr.Wrap(cacheerr.VCS, err, "fetching %s", res.URL())
			}
		}
	}

	hash, err := resolveReference(repo, res.Reference())
	if err != nil {
		return cacheerr.Wrap(cacheerr.VCS, err, "resolving reference %q", res.Reference())
	}

	wt, err := repo.Worktree()
	if err != nil {
		return cacheerr.Wrap(cacheerr.VCS, err, "opening worktree at %s", dest.Path())
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: *hash}); err != nil {
		return cacheerr.Wrap(cacheerr.VCS, err, "checking out %q", res.Reference())
	}
	return nil
}

// resolveReference resolves a branch, tag, or raw commit hash to a commit
// hash, trying each in turn since the reference's exact kind is not known
// up front. A branch is looked up on origin's remote-tracking refs first,
// so a re-opened repository checks out the commit its fetch just brought in.
func resolveReference(repo *git.Repository, reference string) (*plumbing.Hash, error) {
	for _, ref := range []plumbing.ReferenceName{
		plumbing.NewRemoteReferenceName("origin", reference),
		plumbing.NewBranchReferenceName(reference),
		plumbing.NewTagReferenceName(reference),
	} {
		if h, err := repo.ResolveRevision(plumbing.Revision(ref)); err == nil {
			return h, nil
		}
	}
	h, err := repo.ResolveRevision(plumbing.Revision(reference))
	if err != nil {
		return nil, fmt.Errorf("reference %q is not a known branch, tag, or commit: %w", reference, err)
	}
	return h, nil
}

// authForURL selects an auth method by URL scheme: SSH agent auth for
// ssh://-style and scp-style URLs, HTTP basic auth from the environment for
// https:// URLs, none for everything else.
func authForURL(url string) (transport.AuthMethod, error) {
	switch {
	case strings.HasPrefix(url, "git@") || strings.HasPrefix(url, "ssh://"):
		return ssh.NewSSHAgentAuth("git")
	case strings.HasPrefix(url, "https://"):
		if user, pass := os.Getenv("ELBA_GIT_USER"), os.Getenv("ELBA_GIT_PASSWORD"); pass != "" {
			return &httpAuth.BasicAuth{Username: user, Password: pass}, nil
		}
		return nil, nil
	default:
		return nil, nil
	}
}
