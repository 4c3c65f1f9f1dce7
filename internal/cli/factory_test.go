package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/sluice/internal/logging"
	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ports"
	"github.com/aretw0/sluice/pkg/registry"
)

func TestBuildStackMemory(t *testing.T) {
	cfg := Config{
		Units: []domain.Unit{
			{Name: "echo", Source: "return input", Language: domain.LangLua, Enabled: true},
		},
		Variables: map[string]string{"name": "world"},
	}

	stack, err := BuildStack(cfg, logging.NewNop(), false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stack.Close() })

	assert.Nil(t, stack.Locker)
	assert.Nil(t, stack.Watcher)

	// Lua runs in-process, so this pipeline needs no interpreter binaries.
	res, err := stack.Engine.Evaluate(context.Background(), domain.EvalRequest{Path: "/echo/name"})
	require.NoError(t, err)
	assert.Equal(t, "world", res.Output)
}

func TestBuildStackDefaultsLanguage(t *testing.T) {
	cfg := Config{
		Units: []domain.Unit{{Name: "greet", Source: "print('hi')", Enabled: true}},
	}

	stack, err := BuildStack(cfg, logging.NewNop(), false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stack.Close() })

	u, err := stack.Units.Lookup(context.Background(), "greet")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultLanguage, u.Language)
}

func TestBuildStackFile(t *testing.T) {
	root := t.TempDir()
	unitsDir := filepath.Join(root, "units")
	require.NoError(t, os.Mkdir(unitsDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(unitsDir, "echo.lua"), []byte("return input"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "vars.yaml"), []byte("variables:\n  name: lisboa\n"), 0644))

	cfg := Config{
		Backends: Backends{
			Registry: BackendConfig{"driver": "file", "root": root},
		},
	}

	stack, err := BuildStack(cfg, logging.NewNop(), false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stack.Close() })

	require.NotNil(t, stack.Watcher)

	res, err := stack.Engine.Evaluate(context.Background(), domain.EvalRequest{Path: "/echo/name"})
	require.NoError(t, err)
	assert.Equal(t, "lisboa", res.Output)
}

func TestBuildStackRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err, "Failed to start miniredis")
	t.Cleanup(mr.Close)

	section := BackendConfig{"driver": "redis", "address": mr.Addr()}
	cfg := Config{
		Backends: Backends{
			Registry: section,
			Blobs:    section,
			Locker:   section,
		},
	}

	stack, err := BuildStack(cfg, logging.NewNop(), false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stack.Close() })

	require.NotNil(t, stack.Locker)

	admin, ok := stack.Units.(ports.UnitAdmin)
	require.True(t, ok, "redis unit registry should allow mutation")
	require.NoError(t, admin.Save(context.Background(), domain.Unit{
		Name: "echo", Source: "return input", Language: domain.LangLua, Enabled: true,
	}))

	res, err := stack.Engine.Evaluate(context.Background(), domain.EvalRequest{Path: "/echo/hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", res.Output)
}

func TestBuildStackEncryptedBlobs(t *testing.T) {
	key := strings.Repeat("ab", 32)
	cfg := Config{
		Backends: Backends{
			Blobs: BackendConfig{"driver": "memory", "encryption_key": key},
		},
	}

	stack, err := BuildStack(cfg, logging.NewNop(), false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stack.Close() })

	ctx := context.Background()
	id, err := stack.Engine.Content().Put(ctx, []byte("secret payload"))
	require.NoError(t, err)

	raw, err := stack.Blobs.Get(ctx, string(id))
	require.NoError(t, err)
	assert.Equal(t, "secret payload", string(raw), "the stack store decrypts on read")

	res, err := stack.Engine.Evaluate(ctx, domain.EvalRequest{Path: "/" + string(id)})
	require.NoError(t, err)
	assert.Equal(t, "secret payload", res.Output)
}

func TestBuildStackRejectsBadEncryptionKeys(t *testing.T) {
	_, err := BuildStack(Config{
		Backends: Backends{Blobs: BackendConfig{"encryption_key": "not-hex"}},
	}, logging.NewNop(), false)
	assert.Error(t, err)

	_, err = BuildStack(Config{
		Backends: Backends{Blobs: BackendConfig{"encryption_key": "abcd"}},
	}, logging.NewNop(), false)
	assert.Error(t, err, "short keys should be rejected")
}

func TestBuildStackRejectsUnknownDrivers(t *testing.T) {
	_, err := BuildStack(Config{
		Backends: Backends{Registry: BackendConfig{"driver": "etcd"}},
	}, logging.NewNop(), false)
	assert.Error(t, err)

	_, err = BuildStack(Config{
		Backends: Backends{Locker: BackendConfig{"driver": "memory"}},
	}, logging.NewNop(), false)
	assert.Error(t, err)

	_, err = BuildStack(Config{
		Backends: Backends{Registry: BackendConfig{"driver": "redis"}},
	}, logging.NewNop(), false)
	assert.Error(t, err, "redis without an address should fail")
}

func TestBuildDispatcher(t *testing.T) {
	t.Run("Stock Set", func(t *testing.T) {
		d, err := buildDispatcher(Config{})
		require.NoError(t, err)

		reg, ok := d.(*registry.Registry)
		require.True(t, ok)
		assert.ElementsMatch(t,
			[]domain.Language{domain.LangPython, domain.LangJavaScript, domain.LangShell, domain.LangLua},
			reg.Languages())
	})

	t.Run("Overrides Replace Stock Entries", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "runtimes.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
runtimes:
  - language: python
    command: python3.12
    args: ["-c"]
`), 0644))

		d, err := buildDispatcher(Config{Runtimes: path})
		require.NoError(t, err)

		reg := d.(*registry.Registry)
		assert.Contains(t, reg.Languages(), domain.LangPython)
	})

	t.Run("Broken Overrides File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "runtimes.yaml")
		require.NoError(t, os.WriteFile(path, []byte("runtimes: [oops"), 0644))

		_, err := buildDispatcher(Config{Runtimes: path})
		assert.Error(t, err)
	})
}
