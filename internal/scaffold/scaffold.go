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

// Package scaffold writes a new project's elba.toml and starter source
// module, the one piece of the CLI that shares code with the cache: the
// Name parser.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/elba-pm/elba/internal/resolution"
)

// Ctx describes a scaffold request.
type Ctx struct {
	// Path is the project directory to write into. For New, it must not
	// already exist; for Init, it must already exist and be empty of an
	// elba.toml.
	Path string
	Name resolution.Name
	// Author, if non-empty, is written into elba.toml's authors list.
	Author string
	Bin    bool
}

// New creates ctx.Path (which must not already exist) and scaffolds a new
// project into it.
func New(ctx Ctx) (string, error) {
	if _, err := os.Stat(ctx.Path); err == nil {
		return "", fmt.Errorf("destination %q already exists; run elba new on a fresh directory, or write elba.toml by hand to adopt an existing one", ctx.Path)
	}
	if err := os.MkdirAll(ctx.Path, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", ctx.Path, err)
	}
	return Init(ctx)
}

// Init scaffolds elba.toml and a starter source module into ctx.Path,
// which must already exist.
func Init(ctx Ctx) (string, error) {
	author := ""
	if ctx.Author != "" {
		author = fmt.Sprintf("%q", ctx.Author)
	}

	var target string
	if ctx.Bin {
		target = fmt.Sprintf("[[targets.bin]]\nname = %q\nmain = \"src/main.src\"\n\n", ctx.Name.Name())
	} else {
		target = fmt.Sprintf("[targets.lib]\npath = \"src/\"\nmods = [\n    %q\n]\n\n", ctx.Name.Dotted())
	}

	manifest := fmt.Sprintf("[package]\nname = %q\nversion = \"0.1.0\"\nauthors = [%s]\n\n[dependencies]\n\n%s",
		ctx.Name.String(), author, target)

	if err := os.WriteFile(filepath.Join(ctx.Path, "elba.toml"), []byte(manifest), 0o644); err != nil {
		return "", fmt.Errorf("writing elba.toml: %w", err)
	}

	if ctx.Bin {
		if err := writeStarter(ctx.Path, "src", "main.src", "package main\n\nfunc main() {\n\tprintln(\"Hello, world!\")\n}\n"); err != nil {
			return "", err
		}
	} else {
		groupDir := filepath.Join("src", ctx.Name.Group())
		if err := writeStarter(ctx.Path, groupDir, ctx.Name.Name()+".src",
			fmt.Sprintf("module %s\n\nfunc Hello() {\n\tprintln(\"Hello, world!\")\n}\n", ctx.Name.Dotted())); err != nil {
			return "", err
		}
	}

	kind := "library"
	if ctx.Bin {
		kind = "binary"
	}
	return fmt.Sprintf("new package with %s target created at %s", kind, ctx.Path), nil
}

func writeStarter(root, relDir, file, body string) error {
	dir := filepath.Join(root, relDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, file), []byte(body), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", file, err)
	}
	return nil
}
