// Package prompts holds the fixed instructions and canned texts used by the
// gateway and the client. Defaults are embedded; a YAML file can override any
// field.
package prompts

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

type Prompts struct {
	ClientSystem    string   `yaml:"client_system"`
	GatewaySystem   string   `yaml:"gateway_system"`
	SelectionHeader string   `yaml:"selection_header"`
	WebHeader       string   `yaml:"web_header"`
	SearchQuery     string   `yaml:"search_query"`
	RoutinePrompt   string   `yaml:"routine_prompt"`
	RoutineDisplay  string   `yaml:"routine_display"`
	EmptySelection  string   `yaml:"empty_selection"`
	TopicRedirect   string   `yaml:"topic_redirect"`
	TopicKeywords   []string `yaml:"topic_keywords"`
}

// Default returns the embedded prompt set.
func Default() Prompts {
	var p Prompts
	if err := yaml.Unmarshal(defaultYAML, &p); err != nil {
		panic(fmt.Sprintf("prompts: embedded default.yaml is invalid: %v", err))
	}
	return p
}

// Load reads path and merges its non-empty fields over the defaults.
// An empty path returns the defaults.
func Load(path string) (Prompts, error) {
	p := Default()
	if path == "" {
		return p, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read prompts %s: %w", path, err)
	}
	var override Prompts
	if err := yaml.Unmarshal(b, &override); err != nil {
		return p, fmt.Errorf("parse prompts %s: %w", path, err)
	}
	p.merge(override)
	return p, nil
}

func (p *Prompts) merge(o Prompts) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&p.ClientSystem, o.ClientSystem)
	set(&p.GatewaySystem, o.GatewaySystem)
	set(&p.SelectionHeader, o.SelectionHeader)
	set(&p.WebHeader, o.WebHeader)
	set(&p.SearchQuery, o.SearchQuery)
	set(&p.RoutinePrompt, o.RoutinePrompt)
	set(&p.RoutineDisplay, o.RoutineDisplay)
	set(&p.EmptySelection, o.EmptySelection)
	set(&p.TopicRedirect, o.TopicRedirect)
	if len(o.TopicKeywords) > 0 {
		p.TopicKeywords = append([]string(nil), o.TopicKeywords...)
	}
}
