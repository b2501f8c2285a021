package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-dashboard-filters/components/dashboard"
)

type kindCmd struct {
	Code         string   `required:"" help:"Block kind code; normalized to PascalCase (scatter-chart becomes ScatterChart)."`
	Name         string   `help:"Display name (defaults to the code)."`
	Description  string   `help:"One-line description used in manifests."`
	ManifestPath string   `required:"" type:"path" help:"Path to the kind manifest YAML file to update."`
	SchemaPath   string   `type:"path" help:"Optional JSON schema file for the kind settings."`
	Capability   []string `help:"Capabilities (data, filter_panel, container); repeatable."`
	Tag          []string `help:"Optional tags to include in the manifest."`
	Package      string   `help:"Frontend package implementing the kind."`
	DocsURL      string   `help:"Link to the kind documentation."`
	Channel      string   `help:"Distribution channel label (community, partner, internal)."`
	Overwrite    bool     `help:"Replace an existing manifest entry with the same code."`
}

func (cmd *kindCmd) Run(_ context.Context) error {
	code := normalizeKindCode(cmd.Code)
	if code == "" {
		return errors.New("dashctl: kind code is required")
	}
	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("dashctl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}
	schema, err := loadSchema(cmd.SchemaPath)
	if err != nil {
		return err
	}
	caps := make([]dashboard.Capability, 0, len(cmd.Capability))
	for _, c := range cmd.Capability {
		caps = append(caps, dashboard.Capability(strings.TrimSpace(c)))
	}

	entry := dashboard.ManifestKind{
		Definition: dashboard.KindDefinition{
			Code:         code,
			Name:         cmd.Name,
			Description:  cmd.Description,
			Schema:       schema,
			Capabilities: caps,
		},
		Source: dashboard.ManifestSourceInfo{
			Package: cmd.Package,
			DocsURL: cmd.DocsURL,
			Channel: cmd.Channel,
		},
		Tags: cmd.Tag,
	}
	if err := upsertKind(doc, entry, cmd.Overwrite); err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Added %s to %s\n", code, manifestPath)
	return nil
}

func normalizeKindCode(code string) string {
	return strcase.ToPascal(strings.TrimSpace(code))
}

func upsertKind(doc *dashboard.KindManifestDocument, entry dashboard.ManifestKind, overwrite bool) error {
	code := entry.Definition.Code
	replaced := false
	for idx := range doc.Kinds {
		if !strings.EqualFold(doc.Kinds[idx].Definition.Code, code) {
			continue
		}
		if !overwrite {
			return fmt.Errorf("dashctl: manifest already defines kind %s (use --overwrite to replace)", code)
		}
		doc.Kinds[idx] = entry
		replaced = true
		break
	}
	if !replaced {
		doc.Kinds = append(doc.Kinds, entry)
	}
	sort.Slice(doc.Kinds, func(i, j int) bool {
		return doc.Kinds[i].Definition.Code < doc.Kinds[j].Definition.Code
	})
	return nil
}

func loadSchema(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dashctl: read schema file: %w", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("dashctl: parse schema JSON: %w", err)
	}
	return schema, nil
}

func loadOrInitManifest(path string) (*dashboard.KindManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &dashboard.KindManifestDocument{
				Version: dashboard.ManifestVersion,
				Kinds:   []dashboard.ManifestKind{},
				Source:  path,
			}, nil
		}
		return nil, fmt.Errorf("dashctl: stat manifest: %w", err)
	}
	return dashboard.ReadManifest(path)
}

func writeManifest(path string, doc *dashboard.KindManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("dashctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	out := *doc
	out.Source = ""

	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("dashctl: create manifest %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("dashctl: write manifest: %w", err)
	}
	return nil
}
