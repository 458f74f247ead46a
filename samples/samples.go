// Package samples provides the built-in annotated texts.
package samples

import (
	"embed"
	"errors"
	"fmt"
	"path"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml texts/*.txt
var samplesFS embed.FS

var ErrUnknownSample = errors.New("unknown sample")

// Sample is a single entry of the catalog.
type Sample struct {
	Name        string `yaml:"name" json:"name"`
	Title       string `yaml:"title" json:"title"`
	Author      string `yaml:"author" json:"author"`
	Description string `yaml:"description" json:"description"`
	File        string `yaml:"file" json:"-"`

	// Text is the annotated source, filled by Load.
	Text string `yaml:"-" json:"text,omitempty"`
}

// Catalog is the ordered list of samples.
type Catalog struct {
	Samples []Sample `yaml:"samples"`
}

// Load decodes the embedded catalog and reads the text of every sample.
func Load() (Catalog, error) {
	data, err := samplesFS.ReadFile("catalog.yaml")
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}

	return parseCatalog(data, func(name string) ([]byte, error) {
		return samplesFS.ReadFile(path.Join("texts", name))
	})
}

func parseCatalog(data []byte, readFile func(name string) ([]byte, error)) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(c.Samples))

	for i := range c.Samples {
		s := &c.Samples[i]

		if s.Name == "" {
			return Catalog{}, fmt.Errorf("sample #%d has no name", i)
		}

		if _, ok := seen[s.Name]; ok {
			return Catalog{}, fmt.Errorf("duplicate sample %q", s.Name)
		}
		seen[s.Name] = struct{}{}

		text, err := readFile(s.File)
		if err != nil {
			return Catalog{}, fmt.Errorf("read sample %q: %w", s.Name, err)
		}
		s.Text = string(text)
	}

	return c, nil
}

// Names returns the sample names in catalog order.
func (c Catalog) Names() []string {
	out := make([]string, len(c.Samples))
	for i, s := range c.Samples {
		out[i] = s.Name
	}
	return out
}

// Get returns the sample with the name or [ErrUnknownSample].
func (c Catalog) Get(name string) (Sample, error) {
	for _, s := range c.Samples {
		if s.Name == name {
			return s, nil
		}
	}
	return Sample{}, fmt.Errorf("%w: %q", ErrUnknownSample, name)
}
