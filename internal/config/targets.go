package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// Target is one listing URL and the file its products are written to.
// The file name is the key of a batch.
type Target struct {
	URL  string `yaml:"url"`
	File string `yaml:"file"`
}

// Targets is an ordered batch of listings
type Targets []Target

// targetsFile accepts both layouts of a targets file:
//
//	https://shop/laptops: laptops.csv
//
// or
//
//	targets:
//	  - url: https://shop/laptops
//	    file: laptops.csv
type targetsFile struct {
	Targets Targets
}

func (f *targetsFile) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping of url to file or a targets list", value.Line)
	}

	if len(value.Content) == 2 && value.Content[0].Value == "targets" && value.Content[1].Kind == yaml.SequenceNode {
		return value.Content[1].Decode(&f.Targets)
	}

	// Content alternates key and value nodes, in document order
	for i := 0; i+1 < len(value.Content); i += 2 {
		k, v := value.Content[i], value.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: file for %q must be a string", v.Line, k.Value)
		}
		f.Targets = append(f.Targets, Target{URL: k.Value, File: v.Value})
	}
	return nil
}

// LoadTargets reads a YAML targets file, keeping the order of its entries
func LoadTargets(path string) (Targets, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var tf targetsFile
	if err := yaml.NewDecoder(file).Decode(&tf); err != nil {
		return nil, fmt.Errorf("failed to decode targets file %s: %w", path, err)
	}
	return tf.Targets, nil
}

// Validate rejects batches that cannot be written unambiguously. Two targets
// may share a URL, but never an output file.
func (t Targets) Validate() error {
	if len(t) == 0 {
		return errors.New("no targets configured")
	}

	files := make(map[string]int, len(t))
	for i, target := range t {
		if target.File == "" {
			return fmt.Errorf("target %d (%s): empty file name", i, target.URL)
		}
		if prev, ok := files[target.File]; ok {
			return fmt.Errorf("target %d: file %s already used by target %d", i, target.File, prev)
		}
		files[target.File] = i

		u, err := url.Parse(target.URL)
		if err != nil {
			return fmt.Errorf("target %d (%s): invalid url: %w", i, target.File, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("target %d (%s): url %q must be absolute http(s)", i, target.File, target.URL)
		}
	}
	return nil
}

// DuplicateURLs returns the URLs listed more than once, in first-seen order
func (t Targets) DuplicateURLs() []string {
	seen := make(map[string]int, len(t))
	var dups []string
	for _, target := range t {
		seen[target.URL]++
		if seen[target.URL] == 2 {
			dups = append(dups, target.URL)
		}
	}
	return dups
}
