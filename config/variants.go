package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"sessionTrader/internal/ports"
	"sessionTrader/internal/strategy"
)

// variantsFile is the layout of a VARIANTS_FILE.
type variantsFile struct {
	Variants []yaml.Node `yaml:"variants"`
}

// LoadVariants returns the built-in presets merged with the variants declared in path.
// A declared variant whose name matches a preset overrides only the fields it sets;
// any other name starts from an empty configuration. Every resulting variant is validated.
// An empty path returns the presets alone.
func LoadVariants(path string) (map[string]strategy.Config, error) {
	catalog := strategy.Presets()
	if path == "" {
		return catalog, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading variants file %s: %v: %w", path, err, ports.ErrConfigurationInvalid)
	}
	if err := mergeVariants(catalog, data); err != nil {
		return nil, fmt.Errorf("variants file %s: %w", path, err)
	}
	return catalog, nil
}

func mergeVariants(catalog map[string]strategy.Config, data []byte) error {
	var file variantsFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%v: %w", err, ports.ErrConfigurationInvalid)
	}

	var errs []string
	seen := make(map[string]bool, len(file.Variants))
	for i, node := range file.Variants {
		var head struct {
			Name string `yaml:"name"`
		}
		if err := node.Decode(&head); err != nil || head.Name == "" {
			errs = append(errs, fmt.Sprintf("variant #%d has no name", i+1))
			continue
		}
		if seen[head.Name] {
			errs = append(errs, fmt.Sprintf("variant %q declared twice", head.Name))
			continue
		}
		seen[head.Name] = true

		cfg := catalog[head.Name]
		if err := node.Decode(&cfg); err != nil {
			errs = append(errs, fmt.Sprintf("variant %q: %v", head.Name, err))
			continue
		}
		if err := cfg.Validate(); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		catalog[head.Name] = cfg
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s: %w", strings.Join(errs, "; "), ports.ErrConfigurationInvalid)
	}
	return nil
}

// ResolveVariants picks the named variants from the catalog built by LoadVariants, in order.
func ResolveVariants(names []string, path string) ([]strategy.Config, error) {
	catalog, err := LoadVariants(path)
	if err != nil {
		return nil, err
	}
	out := make([]strategy.Config, 0, len(names))
	for _, name := range names {
		cfg, ok := catalog[name]
		if !ok {
			return nil, fmt.Errorf("unknown variant %q: %w", name, ports.ErrNotFound)
		}
		out = append(out, cfg)
	}
	return out, nil
}
