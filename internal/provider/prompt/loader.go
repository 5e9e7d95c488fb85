package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type promptFile struct {
	Prompts []*Prompt `yaml:"prompts"`
}

// Defaults returns the built-in prompt set keyed by slug.
func Defaults() (map[string]*Prompt, error) {
	return parsePrompts([]byte(defaultPromptsYAML))
}

// Load returns the built-in prompts merged with overrides from dir. An
// empty dir returns the defaults; a missing dir is an error so typos in
// prompts_dir do not silently fall back.
func Load(dir string) (map[string]*Prompt, error) {
	prompts, err := Defaults()
	if err != nil {
		return nil, err
	}

	dir = strings.TrimSpace(dir)
	if dir == "" {
		return prompts, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read prompts dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read prompt file %s: %w", entry.Name(), err)
		}

		loaded, err := parsePrompts(data)
		if err != nil {
			return nil, fmt.Errorf("parse prompt file %s: %w", entry.Name(), err)
		}
		for slug, p := range loaded {
			prompts[slug] = p
		}
	}

	return prompts, nil
}

func parsePrompts(data []byte) (map[string]*Prompt, error) {
	var file promptFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode prompts: %w", err)
	}

	prompts := make(map[string]*Prompt, len(file.Prompts))
	for _, p := range file.Prompts {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		prompts[p.Slug] = p
	}
	return prompts, nil
}
