package machine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/amp-labs/amp-fsm/transition"
)

// Config defines a string-state machine in YAML. Validation covers only
// structural requirements (a name, an initial state, non-empty rule
// sets); whether the declared graph makes sense is the author's
// responsibility and only surfaces as rejected attempts at runtime.
type Config struct {
	Name         string         `json:"name"         yaml:"name"`
	InitialState string         `json:"initialState" yaml:"initialState"`
	Context      map[string]any `json:"context"      yaml:"context"`
	Rules        []RuleConfig   `json:"rules"        yaml:"rules"`
}

// RuleConfig defines one transition rule.
type RuleConfig struct {
	From []string `json:"from" yaml:"from"`
	To   []string `json:"to"   yaml:"to"`
}

// LoadConfig reads and validates a machine definition from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Intentional path-based loading
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	return LoadConfigFromBytes(data)
}

// LoadConfigFromBytes parses and validates a machine definition from YAML
// bytes.
func LoadConfigFromBytes(data []byte) (*Config, error) {
	var config Config

	err := yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate checks the structural requirements of the config.
func (c *Config) Validate() error {
	if c.Name == "" {
		return ErrConfigNameRequired
	}

	if c.InitialState == "" {
		return ErrInitialStateRequired
	}

	for i, rule := range c.Rules {
		if len(rule.From) == 0 {
			return fmt.Errorf("rule %d: %w", i, ErrRuleFromRequired)
		}

		if len(rule.To) == 0 {
			return fmt.Errorf("rule %d: %w", i, ErrRuleToRequired)
		}
	}

	return nil
}

// TransitionRules converts the configured rules into table rules.
func (c *Config) TransitionRules() []transition.Rule[string] {
	rules := make([]transition.Rule[string], len(c.Rules))
	for i, rule := range c.Rules {
		rules[i] = transition.Rule[string]{From: rule.From, To: rule.To}
	}

	return rules
}

// Build constructs a machine from the config: initial state, initial
// context, name, and the full transition table. Additional options are
// applied after the config-derived ones, so they win on conflict.
func (c *Config) Build(opts ...Option[string]) *Machine[string] {
	all := append([]Option[string]{
		WithName[string](c.Name),
		WithContext[string](Context(c.Context)),
	}, opts...)

	m := New(c.InitialState, all...)
	m.SetTransitions(c.TransitionRules()...)

	return m
}
