// Package prompt loads the YAML prompt templates used for metadata
// generation. Built-in defaults can be overridden per slug by files in a
// configured prompts directory.
package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Prompt is a named generation template. System and User are Go text
// templates over a flat string map.
type Prompt struct {
	Slug        string `yaml:"slug"`
	Description string `yaml:"description,omitempty"`
	System      string `yaml:"system"`
	User        string `yaml:"user"`
}

// Validate checks the minimal shape of a prompt definition.
func (p *Prompt) Validate() error {
	if p == nil {
		return fmt.Errorf("prompt is nil")
	}
	if strings.TrimSpace(p.Slug) == "" {
		return fmt.Errorf("prompt slug is required")
	}
	if strings.TrimSpace(p.User) == "" {
		return fmt.Errorf("prompt %q has no user template", p.Slug)
	}
	return nil
}

// Render executes the system and user templates against data.
func (p *Prompt) Render(data map[string]string) (system, user string, err error) {
	system, err = renderTemplate(p.Slug+":system", p.System, data)
	if err != nil {
		return "", "", err
	}
	user, err = renderTemplate(p.Slug+":user", p.User, data)
	if err != nil {
		return "", "", err
	}
	return system, user, nil
}

func renderTemplate(name, text string, data map[string]string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	tmpl, err := template.New(name).Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}
