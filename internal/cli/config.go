package cli

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/sluice/pkg/domain"
)

// DefaultConfigPath is where commands look for configuration when --config
// is not set.
const DefaultConfigPath = "sluice.yaml"

// Config is the CLI configuration, usually read from sluice.yaml. The zero
// value is a working setup: everything in memory, stock interpreters.
type Config struct {
	// Listen is the HTTP bind address for serve. Flags override it.
	Listen string `mapstructure:"listen"`

	// Runtimes points at the interpreter overrides file (runtimes.yaml).
	Runtimes string `mapstructure:"runtimes"`

	// Backends selects the storage drivers.
	Backends Backends `mapstructure:"backends"`

	// Units, Aliases and Variables seed the memory registry. The file and
	// redis drivers own their definitions, so these are ignored there.
	Units     []domain.Unit     `mapstructure:"units"`
	Aliases   map[string]string `mapstructure:"aliases"`
	Variables map[string]string `mapstructure:"variables"`
}

// Backends groups the driver selections per concern.
type Backends struct {
	// Registry backs units, aliases and variables.
	Registry BackendConfig `mapstructure:"registry"`

	// Blobs backs the content-addressed store.
	Blobs BackendConfig `mapstructure:"blobs"`

	// Locker serializes unit toggles across replicas. Redis only.
	Locker BackendConfig `mapstructure:"locker"`
}

// BackendConfig is one driver-tagged section. The driver key picks the
// implementation; the remaining keys decode into that driver's config
// struct, so each driver can have its own shape without the others
// carrying dead fields.
type BackendConfig map[string]any

// Driver returns the section's driver name; empty for an absent section.
func (b BackendConfig) Driver() string {
	d, _ := b["driver"].(string)
	return d
}

// Decode maps the section's keys onto a driver-specific struct.
func (b BackendConfig) Decode(out any) error {
	return mapstructure.Decode(map[string]any(b), out)
}

// FileBackend configures the filesystem driver.
type FileBackend struct {
	Root string `mapstructure:"root"`
}

// RedisBackend configures the redis driver.
type RedisBackend struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// BlobEncryption configures optional encryption at rest for the blobs
// section, alongside whichever driver backs it. Keys are hex encoded:
// 64 hex characters for AES-256.
type BlobEncryption struct {
	EncryptionKey string `mapstructure:"encryption_key"`

	// FallbackKeys lists previous keys, so rotation does not orphan
	// payloads written before it.
	FallbackKeys []string `mapstructure:"fallback_keys"`
}

// LoadConfig reads a YAML config file. A missing file is not an error: it
// means the zero-value setup applies.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	// Two-step decode: YAML to a generic tree, then mapstructure onto the
	// typed config. The backend sections stay maps until a driver is known.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := mapstructure.Decode(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
