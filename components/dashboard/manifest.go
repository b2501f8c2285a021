package dashboard

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current kind manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// KindManifestDocument models a YAML/JSON manifest declaring extra widget kinds.
type KindManifestDocument struct {
	Version string         `json:"version" yaml:"version"`
	Name    string         `json:"name,omitempty" yaml:"name,omitempty"`
	Kinds   []ManifestKind `json:"kinds" yaml:"kinds"`
	Source  string         `json:"-" yaml:"-"`
}

// ManifestKind is a single kind entry within a manifest.
type ManifestKind struct {
	Definition KindDefinition     `json:"definition" yaml:"definition"`
	Source     ManifestSourceInfo `json:"source,omitempty" yaml:"source,omitempty"`
	Tags       []string           `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// ManifestSourceInfo records where a kind's frontend implementation lives.
type ManifestSourceInfo struct {
	Package string `json:"package,omitempty" yaml:"package,omitempty"`
	DocsURL string `json:"docs_url,omitempty" yaml:"docs_url,omitempty"`
	Channel string `json:"channel,omitempty" yaml:"channel,omitempty"`
}

// LoadManifestFile reads a kind manifest from disk and registers it.
func (r *Registry) LoadManifestFile(path string) (*KindManifestDocument, error) {
	doc, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	if err := r.LoadManifestDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadManifestDocument registers kinds and source metadata from a decoded manifest.
func (r *Registry) LoadManifestDocument(doc *KindManifestDocument) error {
	if doc == nil {
		return fmt.Errorf("dashboard: manifest document is nil")
	}
	for _, kind := range doc.Kinds {
		if err := r.RegisterKind(kind.Definition); err != nil {
			return fmt.Errorf("dashboard: register kind %s from %s: %w", kind.Definition.Code, doc.Source, err)
		}
		r.recordManifestInfo(kind.Definition.Code, kind.Source)
	}
	return nil
}

// ReadManifest loads a kind manifest file from disk without registering it.
func ReadManifest(path string) (*KindManifestDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a kind manifest from any reader.
func DecodeManifest(r io.Reader) (*KindManifestDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc KindManifestDocument
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("dashboard: manifest is empty")
		}
		return nil, fmt.Errorf("dashboard: parse manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures the manifest satisfies required fields.
func (doc *KindManifestDocument) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("dashboard: unsupported manifest version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Kinds))
	for idx, kind := range doc.Kinds {
		if kind.Definition.Code == "" {
			return fmt.Errorf("dashboard: manifest kind at index %d is missing definition.code", idx)
		}
		key := kindKey(kind.Definition.Code)
		if _, exists := seen[key]; exists {
			return fmt.Errorf("dashboard: manifest duplicates kind code %s", kind.Definition.Code)
		}
		seen[key] = struct{}{}
		for _, c := range kind.Definition.Capabilities {
			switch c {
			case CapabilityFilterPanel, CapabilityContainer, CapabilityData:
			default:
				return fmt.Errorf("dashboard: manifest kind %s declares unknown capability %q", kind.Definition.Code, c)
			}
		}
	}
	return nil
}

func (doc *KindManifestDocument) applyDefaults() {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
	for i := range doc.Kinds {
		if doc.Kinds[i].Definition.Name == "" {
			doc.Kinds[i].Definition.Name = doc.Kinds[i].Definition.Code
		}
	}
}

func (p ManifestSourceInfo) isZero() bool {
	return p.Package == "" && p.DocsURL == "" && p.Channel == ""
}

// DecodeDataManifest reads a data manifest document. JSON input is accepted
// since it is valid YAML.
func DecodeDataManifest(r io.Reader) (DataManifest, error) {
	var doc DataManifest
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return DataManifest{}, fmt.Errorf("dashboard: data manifest is empty")
		}
		return DataManifest{}, fmt.Errorf("dashboard: parse data manifest: %w", err)
	}
	return doc, nil
}

// DecodeLayoutManifest reads a layout manifest document.
func DecodeLayoutManifest(r io.Reader) (LayoutManifest, error) {
	var doc LayoutManifest
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return LayoutManifest{}, nil
		}
		return LayoutManifest{}, fmt.Errorf("dashboard: parse layout manifest: %w", err)
	}
	return doc, nil
}

// DecodeColumnAliases reads a column alias document.
func DecodeColumnAliases(r io.Reader) (ColumnAliases, error) {
	aliases := ColumnAliases{}
	if err := yaml.NewDecoder(r).Decode(&aliases); err != nil {
		if err == io.EOF {
			return ColumnAliases{}, nil
		}
		return nil, fmt.Errorf("dashboard: parse column aliases: %w", err)
	}
	return aliases, nil
}
