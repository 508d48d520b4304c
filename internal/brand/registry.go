// Package brand holds the fixed set of media brands whose inventory tables the
// dashboard reads.
package brand

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed brands.yaml
var defaultRegistry []byte

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

type Brand struct {
	Code  string `yaml:"code" json:"code"`
	Name  string `yaml:"name" json:"name"`
	Table string `yaml:"table" json:"table"`
}

type registryFile struct {
	Brands []Brand `yaml:"brands"`
}

// Registry is immutable after Load and safe for concurrent use.
type Registry struct {
	brands []Brand
	lookup map[string]int
}

// Load reads the registry from path, or the embedded default when path is empty.
func Load(path string) (*Registry, error) {
	data := defaultRegistry
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read brand registry: %w", err)
		}
		data = raw
	}
	return Parse(data)
}

func Parse(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode brand registry: %w", err)
	}
	return New(file.Brands)
}

func New(brands []Brand) (*Registry, error) {
	if len(brands) == 0 {
		return nil, errors.New("brand registry is empty")
	}

	reg := &Registry{
		brands: make([]Brand, 0, len(brands)),
		lookup: make(map[string]int, len(brands)*2),
	}
	for _, b := range brands {
		b.Code = strings.ToUpper(strings.TrimSpace(b.Code))
		b.Name = strings.TrimSpace(b.Name)
		b.Table = strings.TrimSpace(b.Table)
		if b.Code == "" || b.Name == "" {
			return nil, fmt.Errorf("brand %q: code and name are required", b.Code)
		}
		if !tableNamePattern.MatchString(b.Table) {
			return nil, fmt.Errorf("brand %s: invalid table name %q", b.Code, b.Table)
		}
		for _, key := range []string{b.Code, b.Name} {
			k := strings.ToLower(key)
			if _, dup := reg.lookup[k]; dup {
				return nil, fmt.Errorf("brand %s: duplicate key %q", b.Code, key)
			}
			reg.lookup[k] = len(reg.brands)
		}
		reg.brands = append(reg.brands, b)
	}
	return reg, nil
}

// All returns brands in registry order.
func (r *Registry) All() []Brand {
	out := make([]Brand, len(r.brands))
	copy(out, r.brands)
	return out
}

// Lookup resolves a brand by code or display name, case-insensitively.
func (r *Registry) Lookup(codeOrName string) (Brand, bool) {
	idx, ok := r.lookup[strings.ToLower(strings.TrimSpace(codeOrName))]
	if !ok {
		return Brand{}, false
	}
	return r.brands[idx], true
}

// Index reports the registry position of a brand code, or len(All()) when unknown.
func (r *Registry) Index(code string) int {
	if idx, ok := r.lookup[strings.ToLower(code)]; ok {
		return idx
	}
	return len(r.brands)
}
