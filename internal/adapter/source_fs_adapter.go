// Package adapter contains infrastructure adapters for the mockfn CLI.
package adapter

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	m "github.com/EugenEistrach/mockfn/internal/model"
)

// directories never considered part of the project's own source tree.
var skippedDirs = map[string]struct{}{
	".git":         {},
	"vendor":       {},
	"node_modules": {},
	"testdata":     {},
}

// SourceFSAdapter abstracts filesystem operations the domain layer relies on
// when discovering and rewriting project sources. It hides direct `os` access
// so the workflow logic can be tested without touching the disk.
type SourceFSAdapter interface {
	// Get discovers the source units under the given Go-style path
	// patterns ("./...", "./cmd"). Vendor and dependency trees are
	// excluded, as are files matching any of the exclude regexes.
	Get(ctx context.Context, paths []m.Path, exclude ...string) ([]m.Source, error)

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path m.Path) ([]byte, error)

	// WriteFile writes content to a file with the given permissions.
	WriteFile(path m.Path, content []byte, perm os.FileMode) error

	// FindProjectRoot searches for a go.mod walking up the directory tree.
	FindProjectRoot(startPath m.Path) (m.Path, error)

	// CreateTempDir creates a temporary directory for a verification run.
	CreateTempDir(pattern string) (m.Path, error)

	// RemoveAll removes a directory and all its contents.
	RemoveAll(path m.Path) error

	// CopyDir recursively copies a directory tree, skipping dependency
	// directories.
	CopyDir(src, dst m.Path) error

	// RelPath returns the relative path from base to target.
	RelPath(base, target m.Path) (m.Path, error)

	// JoinPath joins path elements into a single path.
	JoinPath(elem ...string) m.Path
}

// LocalSourceFSAdapter is the concrete SourceFSAdapter backed by the os and
// path/filepath packages.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// Get walks the requested paths and returns the discovered source units,
// ordered by path. File hashing runs concurrently; the transform itself stays
// sequential downstream.
func (a *LocalSourceFSAdapter) Get(ctx context.Context, paths []m.Path, exclude ...string) ([]m.Source, error) {
	if len(paths) == 0 {
		paths = []m.Path{"./..."}
	}

	filters, err := compileExcludes(exclude)
	if err != nil {
		return nil, err
	}

	var files []string

	seen := make(map[string]struct{})

	for _, pattern := range paths {
		root, recursive := splitPattern(pattern)

		found, err := a.collectGoFiles(root, recursive)
		if err != nil {
			return nil, err
		}

		for _, path := range found {
			if _, dup := seen[path]; dup {
				continue
			}

			seen[path] = struct{}{}
			files = append(files, path)
		}
	}

	files = applyExcludes(files, filters)
	sort.Strings(files)

	sources := make([]m.Source, len(files))

	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			hash, err := a.hashFile(path)
			if err != nil {
				return fmt.Errorf("hash error for %s: %w", path, err)
			}

			short := path
			if rel, err := filepath.Rel(".", path); err == nil {
				short = rel
			}

			mu.Lock()
			sources[i] = m.Source{Origin: &m.File{
				FullPath:  m.Path(path),
				ShortPath: m.Path(short),
				Hash:      hash,
			}}
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return sources, nil
}

// splitPattern separates a Go-style path pattern into its root directory and
// a recursion flag.
func splitPattern(pattern m.Path) (string, bool) {
	p := string(pattern)
	if strings.HasSuffix(p, "/...") {
		return strings.TrimSuffix(p, "/..."), true
	}

	if p == "..." {
		return ".", true
	}

	return p, false
}

func compileExcludes(exclude []string) ([]*regexp.Regexp, error) {
	filters := make([]*regexp.Regexp, 0, len(exclude))

	for _, pattern := range exclude {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}

		filters = append(filters, re)
	}

	return filters, nil
}

func applyExcludes(files []string, filters []*regexp.Regexp) []string {
	if len(filters) == 0 {
		return files
	}

	kept := files[:0]

outer:
	for _, path := range files {
		for _, re := range filters {
			if re.MatchString(path) {
				continue outer
			}
		}

		kept = append(kept, path)
	}

	return kept
}

func (a *LocalSourceFSAdapter) collectGoFiles(root string, recursive bool) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("path error: %w", err)
	}

	if !info.IsDir() {
		if filepath.Ext(root) == ".go" {
			return []string{root}, nil
		}

		return nil, nil
	}

	var files []string

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if _, skip := skippedDirs[info.Name()]; skip {
				return filepath.SkipDir
			}

			if !recursive && path != root {
				return filepath.SkipDir
			}

			return nil
		}

		if filepath.Ext(path) != ".go" {
			return nil
		}

		files = append(files, path)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// hashFile returns the SHA-256 hash of the file at the provided path.
func (a *LocalSourceFSAdapter) hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}

	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	return os.ReadFile(string(path))
}

// WriteFile writes content to a file with the given permissions.
func (a *LocalSourceFSAdapter) WriteFile(path m.Path, content []byte, perm os.FileMode) error {
	return os.WriteFile(string(path), content, perm)
}

// FindProjectRoot searches for a go.mod walking up the directory tree.
func (a *LocalSourceFSAdapter) FindProjectRoot(startPath m.Path) (m.Path, error) {
	dir := string(startPath)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for {
		goModPath := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(goModPath); err == nil {
			return m.Path(dir), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found in any parent directory of %s", startPath)
		}

		dir = parent
	}
}

// CreateTempDir creates a temporary directory for a verification run.
func (a *LocalSourceFSAdapter) CreateTempDir(pattern string) (m.Path, error) {
	tmpDir, err := os.MkdirTemp("", pattern)
	if err != nil {
		return "", err
	}

	return m.Path(tmpDir), nil
}

// RemoveAll removes a directory and all its contents.
func (a *LocalSourceFSAdapter) RemoveAll(path m.Path) error {
	return os.RemoveAll(string(path))
}

// CopyDir recursively copies a directory tree.
func (a *LocalSourceFSAdapter) CopyDir(src, dst m.Path) error {
	return filepath.Walk(string(src), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if _, skip := skippedDirs[filepath.Base(path)]; skip && path != string(src) {
				return filepath.SkipDir
			}
		}

		relPath, err := filepath.Rel(string(src), path)
		if err != nil {
			return err
		}

		targetPath := filepath.Join(string(dst), relPath)

		if info.IsDir() {
			return os.MkdirAll(targetPath, info.Mode())
		}

		return a.copyFile(path, targetPath, info.Mode())
	})
}

// copyFile copies a single file.
func (a *LocalSourceFSAdapter) copyFile(src, dst string, mode os.FileMode) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}

	defer func() { _ = sourceFile.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}

	defer func() { _ = destFile.Close() }()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return os.Chmod(dst, mode)
}

// RelPath returns the relative path from base to target.
func (a *LocalSourceFSAdapter) RelPath(base, target m.Path) (m.Path, error) {
	rel, err := filepath.Rel(string(base), string(target))
	if err != nil {
		return "", err
	}

	return m.Path(rel), nil
}

// JoinPath joins path elements into a single path.
func (a *LocalSourceFSAdapter) JoinPath(elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}
