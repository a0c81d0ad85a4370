// Package scaffold generates a new MCP server project from a template.
package scaffold

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Zentre-Ai/mcp-servers/internal/logger"
)

//go:embed all:template
var embedded embed.FS

// Placeholders substituted in file contents and path names.
const (
	PlaceholderName        = "{{SERVER_NAME}}"
	PlaceholderDescription = "{{DESCRIPTION}}"
	PlaceholderAuthor      = "{{AUTHOR}}"
)

// templateSuffix is stripped from generated file names so template sources
// are not compiled as part of this module.
const templateSuffix = ".tmpl"

// binarySniffLen bytes are inspected for a NUL byte to detect binary files.
const binarySniffLen = 8000

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// Options describe one scaffold run.
type Options struct {
	Name        string
	Description string
	Author      string

	// OutputDir is the parent of the generated project. Defaults to ".".
	OutputDir string

	// TemplateDir overrides the embedded template.
	TemplateDir string

	// Install runs the manifest's install command after generation.
	Install bool

	// Output receives the install command's output. Defaults to io.Discard.
	Output io.Writer
}

// Result describes a generated project.
type Result struct {
	Dir   string
	Files []string
}

// ValidateName reports whether name is usable as a project name.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid name %q: must start with a lowercase letter and contain only lowercase letters, digits and hyphens", name)
	}
	return nil
}

// Generate copies the template into OutputDir/Name, substituting
// placeholders. It fails without writing anything if the destination exists.
func Generate(ctx context.Context, opts Options) (*Result, error) {
	if err := ValidateName(opts.Name); err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.Description) == "" {
		return nil, errors.New("description is required")
	}
	if strings.TrimSpace(opts.Author) == "" {
		return nil, errors.New("author is required")
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}

	src, err := templateFS(opts.TemplateDir)
	if err != nil {
		return nil, err
	}
	manifest, err := loadManifest(src)
	if err != nil {
		return nil, err
	}

	dest := filepath.Join(opts.OutputDir, opts.Name)
	if _, err := os.Lstat(dest); err == nil {
		return nil, fmt.Errorf("destination %s already exists", dest)
	} else if !isNotExist(err) {
		return nil, fmt.Errorf("failed to stat %s: %w", dest, err)
	}

	replacer := strings.NewReplacer(
		PlaceholderName, opts.Name,
		PlaceholderDescription, opts.Description,
		PlaceholderAuthor, opts.Author,
	)

	log := logger.Named("scaffold")
	res := &Result{Dir: dest}
	err = fs.WalkDir(src, ".", func(rel string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if rel == "." {
			return os.MkdirAll(dest, 0o755)
		}
		if manifest.ignored(rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		target := filepath.Join(dest, filepath.FromSlash(replacer.Replace(rel)))
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		target = strings.TrimSuffix(target, templateSuffix)

		if err := copyFile(src, rel, target, replacer); err != nil {
			return err
		}
		out, _ := filepath.Rel(dest, target)
		res.Files = append(res.Files, filepath.ToSlash(out))
		log.Debugw("wrote file", "path", target)
		return nil
	})
	if err != nil {
		_ = os.RemoveAll(dest)
		return nil, fmt.Errorf("failed to generate %s: %w", dest, err)
	}

	if opts.Install {
		if err := runInstall(ctx, dest, manifest.Install, opts.Output); err != nil {
			return res, err
		}
	}
	return res, nil
}

func templateFS(dir string) (fs.FS, error) {
	if dir == "" {
		return fs.Sub(embedded, "template")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("template directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("template %s is not a directory", dir)
	}
	return os.DirFS(dir), nil
}

func copyFile(src fs.FS, rel, target string, replacer *strings.Replacer) error {
	data, err := fs.ReadFile(src, rel)
	if err != nil {
		return err
	}
	if !IsBinary(data) {
		data = []byte(replacer.Replace(string(data)))
	}

	mode := os.FileMode(0o644)
	if info, err := fs.Stat(src, rel); err == nil && info.Mode().Perm()&0o100 != 0 {
		mode = 0o755
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	return os.WriteFile(target, data, mode)
}

// IsBinary reports whether data looks binary: a NUL byte within the first
// 8000 bytes.
func IsBinary(data []byte) bool {
	if len(data) > binarySniffLen {
		data = data[:binarySniffLen]
	}
	return bytes.IndexByte(data, 0) >= 0
}

func runInstall(ctx context.Context, dir string, command []string, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("install command %q failed: %w", strings.Join(command, " "), err)
	}
	return nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
