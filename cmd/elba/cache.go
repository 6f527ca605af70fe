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

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/elba-pm/elba/internal/cache"
	"github.com/elba-pm/elba/internal/resolution"
)

func defaultCacheRoot() (string, error) {
	if root := os.Getenv("ELBA_CACHE"); root != "" {
		return root, nil
	}
	home, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolving default cache root: %w", err)
	}
	return filepath.Join(home, "elba"), nil
}

func cacheCommand() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "inspect and maintain the on-disk package cache",
		Commands: []*cli.Command{
			cachePathCommand(),
			cacheGCCommand(),
		},
	}
}

func cachePathCommand() *cli.Command {
	return &cli.Command{
		Name:      "path",
		Usage:     "print the on-disk source directory a resolution would use, without fetching",
		UsageText: "elba cache path <group/name> <res>",
		Description: `res is a resolution in canonical string form:
  tar+<url>#<cksum>
  git+<url>#<reference>
  dir+<path>`,
		Action: runCachePath,
	}
}

func runCachePath(ctx context.Context, cmd *cli.Command) error {
	nameArg := cmd.Args().First()
	resArg := cmd.Args().Get(1)
	if nameArg == "" || resArg == "" {
		return fmt.Errorf("elba cache path requires <group/name> and <res> arguments")
	}

	name, err := parseName(nameArg)
	if err != nil {
		return err
	}
	res, err := parseRes(resArg)
	if err != nil {
		return err
	}

	root, err := defaultCacheRoot()
	if err != nil {
		return err
	}
	c := cache.New(root, nil)
	pkg := resolution.NewPackageId(name, res)

	fmt.Println(c.SourceDirPath(pkg, nil))
	return nil
}

func cacheGCCommand() *cli.Command {
	return &cli.Command{
		Name:  "gc",
		Usage: "remove scratch build trees (layout.tmp/*); safe, they are recreated on demand",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			root, err := defaultCacheRoot()
			if err != nil {
				return err
			}
			c := cache.New(root, nil)
			n, err := c.GC()
			if err != nil {
				return err
			}
			fmt.Printf("removed %d scratch tree(s) from %s\n", n, c.Layout.Tmp)
			return nil
		},
	}
}

func parseName(s string) (resolution.Name, error) {
	return resolution.ParseName(s)
}

// parseRes parses the canonical string form produced by
// resolution.DirectRes.CanonicalString back into a DirectRes, for CLI
// callers that need to name a resolution on the command line.
func parseRes(s string) (resolution.DirectRes, error) {
	switch {
	case strings.HasPrefix(s, "tar+"):
		rest := strings.TrimPrefix(s, "tar+")
		url, cksum, ok := strings.Cut(rest, "#")
		if !ok {
			return resolution.DirectRes{}, fmt.Errorf("invalid tar resolution %q: expected tar+<url>#<cksum>", s)
		}
		return resolution.NewTarRes(url, cksum), nil
	case strings.HasPrefix(s, "git+"):
		rest := strings.TrimPrefix(s, "git+")
		url, ref, ok := strings.Cut(rest, "#")
		if !ok {
			return resolution.DirectRes{}, fmt.Errorf("invalid git resolution %q: expected git+<url>#<reference>", s)
		}
		return resolution.NewGitRes(url, ref), nil
	case strings.HasPrefix(s, "dir+"):
		return resolution.NewDirRes(strings.TrimPrefix(s, "dir+")), nil
	default:
		return resolution.DirectRes{}, fmt.Errorf("unrecognized resolution %q: expected a tar+, git+, or dir+ prefix", s)
	}
}
