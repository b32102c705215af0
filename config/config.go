// Package config loads the simulator configuration from yaml or json
// files with environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/lastmile-cy/microtransit/core/agent"
	"github.com/lastmile-cy/microtransit/core/cluster"
	"github.com/lastmile-cy/microtransit/core/sim"
)

// Config aggregates every tunable section of the simulator.
type Config struct {
	Sim     sim.Config     `json:"sim"`
	Cluster cluster.Config `json:"cluster"`
	Agent   agent.Config   `json:"agent"`
	Logging LoggingConfig  `json:"logging"`
}

// Load reads the file at path, applies LM_ environment overrides, fills
// defaults and validates every section. Nested keys in the environment
// use double underscores, e.g. LM_SIM__VEHICLES=5.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("LM_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "lm_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Sim.SetDefaults()
	cfg.Cluster.SetDefaults()
	cfg.Agent.SetDefaults()
	cfg.Logging.SetDefaults()
	if err := cfg.Sim.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Cluster.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Agent.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
