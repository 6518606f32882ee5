package words

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Dictionary is the fixed vocabulary keywords are drawn from. The three
// categories are concatenated (nouns, then verbs, then adjectives) into one
// flat index space, and that ordering must stay stable across processes:
// derivation maps hash seeds to indexes in it.
type Dictionary struct {
	Nouns      []string `json:"nouns" yaml:"nouns"`
	Verbs      []string `json:"verbs" yaml:"verbs"`
	Adjectives []string `json:"adjectives" yaml:"adjectives"`

	all []string
}

// Load reads a vocabulary file. The format is picked by extension:
// .yml/.yaml parse as YAML, everything else as JSON.
func Load(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read words file: %w", err)
	}

	var dict Dictionary
	switch filepath.Ext(path) {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, &dict); err != nil {
			return nil, fmt.Errorf("parse words file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &dict); err != nil {
			return nil, fmt.Errorf("parse words file: %w", err)
		}
	}

	dict.flatten()
	return &dict, nil
}

// New builds a dictionary from in-memory word lists. Used by tests and the
// backfill tool when the vocabulary is already loaded.
func New(nouns, verbs, adjectives []string) *Dictionary {
	d := &Dictionary{Nouns: nouns, Verbs: verbs, Adjectives: adjectives}
	d.flatten()
	return d
}

func (d *Dictionary) flatten() {
	d.all = make([]string, 0, len(d.Nouns)+len(d.Verbs)+len(d.Adjectives))
	d.all = append(d.all, d.Nouns...)
	d.all = append(d.all, d.Verbs...)
	d.all = append(d.all, d.Adjectives...)
}

// All returns the full vocabulary in index order.
func (d *Dictionary) All() []string {
	return d.all
}

// Total returns the vocabulary size.
func (d *Dictionary) Total() int {
	return len(d.all)
}

// WordAt returns the word at the given index, or false if out of range.
func (d *Dictionary) WordAt(i int) (string, bool) {
	if i < 0 || i >= len(d.all) {
		return "", false
	}
	return d.all[i], true
}
