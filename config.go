package arena

import (
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/c2h5oh/datasize"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config describes an arena in a configuration file or on the command line.
type Config struct {
	Capacity datasize.ByteSize `yaml:"capacity"`
	Backing  string            `yaml:"backing"`
}

// DefaultConfig returns a Config for a DefaultCapacity heap-backed arena.
func DefaultConfig() Config {
	return Config{
		Capacity: datasize.ByteSize(DefaultCapacity),
		Backing:  HeapBacking{}.Name(),
	}
}

// RegisterFlags adds the arena flags to app, using the current values as defaults.
func (c *Config) RegisterFlags(app *kingpin.Application) {
	app.Flag("arena.capacity", "Size of the arena buffer, e.g. 4KB or 1MB.").
		Default(c.Capacity.String()).
		SetValue(byteSizeValue{&c.Capacity})
	app.Flag("arena.backing", "Where the arena buffer comes from.").
		Default(c.Backing).
		EnumVar(&c.Backing, "heap", "mmap")
}

// Validate checks the config for errors.
func (c Config) Validate() error {
	if c.Capacity == 0 {
		return errors.New("arena capacity must be positive")
	}
	if uint64(c.Capacity) > uint64(maxInt) {
		return errors.Errorf("arena capacity %s is too large", c.Capacity.HumanReadable())
	}
	if _, err := BackingByName(c.Backing); err != nil {
		return err
	}
	return nil
}

// NewArena validates the config and builds the arena it describes.
func (c Config) NewArena(opts ...Option) (*Arena, error) {
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid arena config")
	}
	b, err := BackingByName(c.Backing)
	if err != nil {
		return nil, err
	}
	return New(int(c.Capacity), append([]Option{WithBacking(b)}, opts...)...)
}

// LoadConfig reads a YAML config file. Fields missing from the file keep
// their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	buf, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read arena config")
	}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse arena config %s", path)
	}
	return cfg, nil
}

const maxInt = int(^uint(0) >> 1)

// byteSizeValue lets kingpin parse human-readable sizes.
type byteSizeValue struct {
	v *datasize.ByteSize
}

func (b byteSizeValue) Set(s string) error {
	return b.v.UnmarshalText([]byte(s))
}

func (b byteSizeValue) String() string {
	return b.v.String()
}
