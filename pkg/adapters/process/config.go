package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/sluice/pkg/domain"
)

// RuntimeConfig describes one interpreter binary an operator trusts.
type RuntimeConfig struct {
	Language    string            `yaml:"language" json:"language"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
}

// Executor builds the subprocess executor this entry describes.
func (c RuntimeConfig) Executor(opts ...Option) *Executor {
	all := make([]Option, 0, len(opts)+1)
	if len(c.Environment) > 0 {
		all = append(all, WithEnv(c.Environment))
	}
	all = append(all, opts...)
	return New(domain.Language(c.Language), c.Command, c.Args, all...)
}

// ConfigFile is the structure of runtimes.yaml.
type ConfigFile struct {
	Runtimes []RuntimeConfig `yaml:"runtimes" json:"runtimes"`
}

// LoadRuntimes reads interpreter overrides from a YAML or JSON file and
// returns them keyed by language. A missing file is not an error: it
// means the stock interpreter set applies.
func LoadRuntimes(path string) (map[domain.Language]RuntimeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[domain.Language]RuntimeConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read runtimes config: %w", err)
	}

	var cfg ConfigFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	runtimes := make(map[domain.Language]RuntimeConfig)
	for _, rc := range cfg.Runtimes {
		if rc.Language == "" || rc.Command == "" {
			continue
		}
		runtimes[domain.Language(rc.Language)] = rc
	}
	return runtimes, nil
}

// DefaultExecutors returns the stock interpreter set: python3, node and
// the platform shell. Lua is absent because it runs in-process.
func DefaultExecutors(opts ...Option) []*Executor {
	return []*Executor{
		NewPython(opts...),
		NewNode(opts...),
		NewShell(opts...),
	}
}
