package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/f3rmion/kanjimon/internal/kanji"
)

//go:embed data/catalog.yaml
var defaultData []byte

// Default returns the built-in catalog.
func Default(opts ...Option) (*Catalog, error) {
	c, err := Load(bytes.NewReader(defaultData), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading built-in catalog: %w", err)
	}
	return c, nil
}

// Load decodes a catalog document.
func Load(r io.Reader, opts ...Option) (*Catalog, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return New(f, opts...)
}

// LoadFile loads a catalog from a YAML file.
func LoadFile(path string, opts ...Option) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	defer file.Close()

	return Load(file, opts...)
}

// Save writes a catalog document to a YAML file.
func Save(path string, f File) error {
	out, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("marshaling catalog: %w", err)
	}

	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("writing catalog file: %w", err)
	}

	return nil
}

// Merge returns base with extra appended. Questions in extra whose ID
// already exists in base replace the base entry.
func Merge(base, extra File) File {
	out := File{Monsters: append([]kanji.Monster(nil), base.Monsters...)}

	index := make(map[string]int, len(base.Questions))
	for _, q := range base.Questions {
		index[q.ID] = len(out.Questions)
		out.Questions = append(out.Questions, q)
	}
	for _, q := range extra.Questions {
		if i, ok := index[q.ID]; ok {
			out.Questions[i] = q
			continue
		}
		index[q.ID] = len(out.Questions)
		out.Questions = append(out.Questions, q)
	}

	seen := make(map[int]bool, len(out.Monsters))
	for _, m := range out.Monsters {
		seen[m.ID] = true
	}
	for _, m := range extra.Monsters {
		if !seen[m.ID] {
			seen[m.ID] = true
			out.Monsters = append(out.Monsters, m)
		}
	}
	return out
}
