package cli

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/sluice"
	"github.com/aretw0/sluice/pkg/adapters/file"
	"github.com/aretw0/sluice/pkg/adapters/lua"
	"github.com/aretw0/sluice/pkg/adapters/memory"
	"github.com/aretw0/sluice/pkg/adapters/process"
	"github.com/aretw0/sluice/pkg/adapters/redis"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/observability"
	"github.com/aretw0/sluice/pkg/persistence/middleware"
	"github.com/aretw0/sluice/pkg/ports"
	"github.com/aretw0/sluice/pkg/registry"
)

// Stack is the assembled engine plus its concrete collaborators, kept
// visible so transports can mount management surfaces against the same
// backends the evaluator reads from.
type Stack struct {
	Engine    *sluice.Engine
	Units     ports.UnitRegistry
	Aliases   ports.AliasRegistry
	Variables ports.VariableRegistry
	Blobs     ports.BlobStore
	// Locker is non-nil only with a redis locker section.
	Locker ports.DistributedLocker
	// Watcher is non-nil only with the file registry driver.
	Watcher ports.Watchable

	closers []func() error
}

// Close releases backend connections.
func (s *Stack) Close() error {
	var errs []error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BuildStack assembles the engine and its collaborators from config.
// With debug set the engine logs each stage through lifecycle hooks;
// extraHooks lets transports attach their own consumers (metrics, audit)
// to the same stream.
func BuildStack(cfg Config, logger *slog.Logger, debug bool, extraHooks ...domain.LifecycleHooks) (*Stack, error) {
	st := &Stack{}

	if err := st.buildRegistry(cfg); err != nil {
		return nil, err
	}
	if err := st.buildBlobs(cfg); err != nil {
		return nil, err
	}
	if err := st.buildLocker(cfg); err != nil {
		return nil, err
	}

	dispatcher, err := buildDispatcher(cfg)
	if err != nil {
		return nil, err
	}

	opts := []sluice.Option{
		sluice.WithUnits(st.Units),
		sluice.WithAliases(st.Aliases),
		sluice.WithVariables(st.Variables),
		sluice.WithBlobStore(st.Blobs),
		sluice.WithDispatcher(dispatcher),
		sluice.WithLogger(logger),
	}
	hooks := extraHooks
	if debug {
		hooks = append(hooks, debugHooks(logger))
	}
	// A lone consumer keeps its nil callbacks, so unsubscribed stages stay
	// free; merging only happens when there is something to merge.
	switch len(hooks) {
	case 0:
	case 1:
		opts = append(opts, sluice.WithLifecycleHooks(hooks[0]))
	default:
		opts = append(opts, sluice.WithLifecycleHooks(observability.MergeHooks(hooks...)))
	}

	st.Engine = sluice.New(opts...)
	return st, nil
}

func (s *Stack) buildRegistry(cfg Config) error {
	section := cfg.Backends.Registry
	switch section.Driver() {
	case "", "memory":
		units := make([]domain.Unit, 0, len(cfg.Units))
		for _, u := range cfg.Units {
			if u.Language == domain.LangNone {
				u.Language = domain.DefaultLanguage
			}
			units = append(units, u)
		}
		aliases := make([]domain.Alias, 0, len(cfg.Aliases))
		for name, target := range cfg.Aliases {
			aliases = append(aliases, domain.Alias{Name: name, Target: target})
		}
		vars := make([]domain.Variable, 0, len(cfg.Variables))
		for name, value := range cfg.Variables {
			vars = append(vars, domain.Variable{Name: name, Value: value})
		}
		s.Units = memory.NewUnitRegistry(units...)
		s.Aliases = memory.NewAliasRegistry(aliases...)
		s.Variables = memory.NewVariableRegistry(vars...)

	case "file":
		var fc FileBackend
		if err := section.Decode(&fc); err != nil {
			return fmt.Errorf("invalid file registry config: %w", err)
		}
		reg, err := file.NewRegistry(fc.Root)
		if err != nil {
			return fmt.Errorf("failed to load registry from %s: %w", fc.Root, err)
		}
		s.Units = reg.Units()
		s.Aliases = reg.Aliases()
		s.Variables = reg.Variables()
		s.Watcher = reg

	case "redis":
		client, redisOpts, err := s.redisClient(section)
		if err != nil {
			return fmt.Errorf("invalid redis registry config: %w", err)
		}
		s.Units = redis.NewUnitRegistry(client, redisOpts...)
		s.Aliases = redis.NewAliasRegistry(client, redisOpts...)
		s.Variables = redis.NewVariableRegistry(client, redisOpts...)

	default:
		return fmt.Errorf("unknown registry driver %q", section.Driver())
	}
	return nil
}

func (s *Stack) buildBlobs(cfg Config) error {
	section := cfg.Backends.Blobs
	switch section.Driver() {
	case "", "memory":
		s.Blobs = memory.NewStore()

	case "file":
		var fc FileBackend
		if err := section.Decode(&fc); err != nil {
			return fmt.Errorf("invalid file blobs config: %w", err)
		}
		s.Blobs = file.NewStore(fc.Root)

	case "redis":
		client, redisOpts, err := s.redisClient(section)
		if err != nil {
			return fmt.Errorf("invalid redis blobs config: %w", err)
		}
		s.Blobs = redis.NewStore(client, redisOpts...)

	default:
		return fmt.Errorf("unknown blobs driver %q", section.Driver())
	}

	enc, err := blobEncryption(section)
	if err != nil {
		return err
	}
	if enc != nil {
		s.Blobs = middleware.NewEncryptionMiddleware(*enc)(s.Blobs)
	}
	return nil
}

// blobEncryption reads the optional encryption settings from the blobs
// section; nil when no key is configured.
func blobEncryption(section BackendConfig) (*middleware.EncryptionConfig, error) {
	var be BlobEncryption
	if err := section.Decode(&be); err != nil {
		return nil, fmt.Errorf("invalid blob encryption config: %w", err)
	}
	if be.EncryptionKey == "" {
		return nil, nil
	}

	key, err := decodeKey(be.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption_key: %w", err)
	}
	enc := &middleware.EncryptionConfig{ActiveKey: key}
	for i, fallback := range be.FallbackKeys {
		k, err := decodeKey(fallback)
		if err != nil {
			return nil, fmt.Errorf("fallback_keys[%d]: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, k)
	}
	return enc, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("not hex encoded: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("must decode to 32 bytes (AES-256), got %d", len(key))
	}
	return key, nil
}

func (s *Stack) buildLocker(cfg Config) error {
	section := cfg.Backends.Locker
	switch section.Driver() {
	case "":
		// Single-replica setups don't need one; toggles run unlocked.
	case "redis":
		client, redisOpts, err := s.redisClient(section)
		if err != nil {
			return fmt.Errorf("invalid redis locker config: %w", err)
		}
		s.Locker = redis.NewLocker(client, redisOpts...)
	default:
		return fmt.Errorf("unknown locker driver %q (only redis provides locking)", section.Driver())
	}
	return nil
}

func (s *Stack) redisClient(section BackendConfig) (*backend.Client, []redis.Option, error) {
	var rc RedisBackend
	if err := section.Decode(&rc); err != nil {
		return nil, nil, err
	}
	if rc.Address == "" {
		return nil, nil, fmt.Errorf("redis driver needs an address")
	}

	client := redis.Connect(rc.Address, rc.Password, rc.DB)
	s.closers = append(s.closers, client.Close)

	var opts []redis.Option
	if rc.Prefix != "" {
		opts = append(opts, redis.WithPrefix(rc.Prefix))
	}
	return client, opts, nil
}

// buildDispatcher installs interpreter overrides from runtimes.yaml over
// the stock set, with the embedded Lua runtime as the in-process default.
func buildDispatcher(cfg Config) (ports.Dispatcher, error) {
	overrides, err := process.LoadRuntimes(cfg.Runtimes)
	if err != nil {
		return nil, err
	}

	reg := registry.NewRegistry()
	for lang, rc := range overrides {
		reg.Install(lang, rc.Executor())
	}
	for _, exec := range process.DefaultExecutors() {
		if _, ok := overrides[exec.Language()]; !ok {
			reg.Install(exec.Language(), exec)
		}
	}
	if _, ok := overrides[domain.LangLua]; !ok {
		reg.Install(domain.LangLua, lua.New())
	}
	return reg, nil
}
