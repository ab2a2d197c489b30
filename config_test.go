package arena

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kingpin/v2"
	"github.com/c2h5oh/datasize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := map[string]struct {
		cfg     Config
		wantErr bool
	}{
		"default":         {cfg: DefaultConfig()},
		"mmap":            {cfg: Config{Capacity: 4 * datasize.KB, Backing: "mmap"}},
		"empty backing":   {cfg: Config{Capacity: datasize.KB}},
		"zero capacity":   {cfg: Config{Backing: "heap"}, wantErr: true},
		"unknown backing": {cfg: Config{Capacity: datasize.KB, Backing: "disk"}, wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfig_NewArena(t *testing.T) {
	cfg := Config{Capacity: 8 * datasize.KB, Backing: "mmap"}
	a, err := cfg.NewArena()
	require.NoError(t, err)
	defer a.Release()
	assert.Equal(t, 8192, a.Capacity())
	assert.Equal(t, "mmap", a.backing.Name())

	_, err = Config{Backing: "heap"}.NewArena()
	require.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "arena.yaml")
	require.NoError(t, os.WriteFile(path, []byte("capacity: 64KB\nbacking: mmap\n"), 0o600))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Config{Capacity: 64 * datasize.KB, Backing: "mmap"}, cfg)

	partial := filepath.Join(dir, "partial.yaml")
	require.NoError(t, os.WriteFile(partial, []byte("capacity: 4096\n"), 0o600))
	cfg, err = LoadConfig(partial)
	require.NoError(t, err)
	assert.Equal(t, Config{Capacity: 4096, Backing: "heap"}, cfg)

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("capacity: lots\n"), 0o600))
	_, err = LoadConfig(broken)
	require.Error(t, err)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestConfig_RegisterFlags(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := DefaultConfig()
		app := kingpin.New("test", "")
		cfg.RegisterFlags(app)
		_, err := app.Parse(nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("overrides", func(t *testing.T) {
		cfg := DefaultConfig()
		app := kingpin.New("test", "")
		cfg.RegisterFlags(app)
		_, err := app.Parse([]string{"--arena.capacity=16KB", "--arena.backing=mmap"})
		require.NoError(t, err)
		assert.Equal(t, Config{Capacity: 16 * datasize.KB, Backing: "mmap"}, cfg)
	})

	t.Run("rejects unknown backing", func(t *testing.T) {
		cfg := DefaultConfig()
		app := kingpin.New("test", "")
		cfg.RegisterFlags(app)
		_, err := app.Parse([]string{"--arena.backing=disk"})
		require.Error(t, err)
	})
}
