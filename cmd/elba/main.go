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

// Command elba is a thin CLI over the package cache: project scaffolding
// and cache inspection/maintenance. None of the package resolution or
// build logic lives here; this is only enough of a caller to exercise the
// cache package for real.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/elba-pm/elba/internal/scaffold"
)

func main() {
	setupLogger(false)
	if err := newElbaCommand().Run(context.Background(), os.Args); err != nil {
		slog.Error("elba failed", "err", err)
		os.Exit(1)
	}
}

func setupLogger(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func newElbaCommand() *cli.Command {
	return &cli.Command{
		Name:  "elba",
		Usage: "a package manager's content-addressed source and build cache",
		Commands: []*cli.Command{
			newCommand(),
			cacheCommand(),
		},
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "new",
		Usage:     "scaffold a new package",
		UsageText: "elba new <group/name> [path] [--bin] [--author name]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "bin", Usage: "scaffold a binary target instead of a library"},
			&cli.StringFlag{Name: "author", Usage: "author line written into elba.toml"},
		},
		Action: runNew,
	}
}

func runNew(ctx context.Context, cmd *cli.Command) error {
	nameArg := cmd.Args().First()
	if nameArg == "" {
		return fmt.Errorf("elba new requires a <group/name> argument")
	}
	path := cmd.Args().Get(1)
	if path == "" {
		path = nameArg
	}

	name, err := parseName(nameArg)
	if err != nil {
		return err
	}

	msg, err := scaffold.New(scaffold.Ctx{
		Path:   path,
		Name:   name,
		Author: cmd.String("author"),
		Bin:    cmd.Bool("bin"),
	})
	if err != nil {
		return err
	}
	fmt.Println(msg)
	return nil
}
