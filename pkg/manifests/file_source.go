package manifests

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	dashboard "github.com/goliatone/go-dashboard-filters/components/dashboard"
)

var extensions = []string{".json", ".yaml", ".yml"}

// FileSource reads manifests from a directory laid out like the asset server:
//
//	data/{project}-injected.json
//	layouts/{project}_layout.json
//	data/column_aliases/{project}.json
//
// YAML files with the same base name are accepted as well.
type FileSource struct {
	root fs.FS
}

var _ dashboard.ManifestSource = (*FileSource)(nil)

// NewFileSource reads manifests below dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{root: os.DirFS(dir)}
}

// NewFSSource reads manifests from any fs.FS, such as an embed.FS.
func NewFSSource(root fs.FS) *FileSource {
	return &FileSource{root: root}
}

// FetchData decodes the data manifest; a missing file is an error.
func (s *FileSource) FetchData(ctx context.Context, project string) (dashboard.DataManifest, error) {
	var doc dashboard.DataManifest
	err := s.read(ctx, filepath.Join("data", project+"-injected"), func(r io.Reader) error {
		var err error
		doc, err = dashboard.DecodeDataManifest(r)
		return err
	})
	return doc, err
}

// FetchLayout decodes the layout manifest or reports dashboard.ErrLayoutNotFound.
func (s *FileSource) FetchLayout(ctx context.Context, project string) (dashboard.LayoutManifest, error) {
	var doc dashboard.LayoutManifest
	err := s.read(ctx, filepath.Join("layouts", project+"_layout"), func(r io.Reader) error {
		var err error
		doc, err = dashboard.DecodeLayoutManifest(r)
		return err
	})
	if errors.Is(err, fs.ErrNotExist) {
		return dashboard.LayoutManifest{}, fmt.Errorf("manifests: layout for %s: %w", project, dashboard.ErrLayoutNotFound)
	}
	return doc, err
}

// FetchColumnAliases decodes the alias map. A missing file yields no aliases.
func (s *FileSource) FetchColumnAliases(ctx context.Context, project string) (dashboard.ColumnAliases, error) {
	aliases := dashboard.ColumnAliases{}
	err := s.read(ctx, filepath.Join("data", "column_aliases", project), func(r io.Reader) error {
		var err error
		aliases, err = dashboard.DecodeColumnAliases(r)
		return err
	})
	if errors.Is(err, fs.ErrNotExist) {
		return dashboard.ColumnAliases{}, nil
	}
	return aliases, err
}

func (s *FileSource) read(ctx context.Context, base string, decode func(io.Reader) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, ext := range extensions {
		name := filepath.ToSlash(base + ext)
		f, err := s.root.Open(name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("manifests: open %s: %w", name, err)
		}
		err = decode(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("manifests: %s: %w", name, err)
		}
		return nil
	}
	return fmt.Errorf("manifests: %s: %w", base, fs.ErrNotExist)
}
