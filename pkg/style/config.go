package style

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/flowtower/pkg/errors"
)

// FileName is the configuration file looked up by [DefaultPath].
const FileName = "flowtower.toml"

// Config is the decoded configuration file.
//
//	[defaults]
//	min_value = 10000000
//	layout = "topdown"
//	kinds = ["TRANSFER KELUAR", "PAYMENT"]
//
//	[styles.default]
//	color = "#2563eb"
//	shape = "dot"
//
//	[styles.BCA]
//	color = "#0060af"
//	shape = "image"
//	icon = "icons/bca.png"
type Config struct {
	Defaults Defaults         `toml:"defaults"`
	Styles   map[string]Style `toml:"styles"`

	meta toml.MetaData
}

// Defaults holds pipeline parameter defaults. Fields left out of the file
// keep their zero value; use [Config.IsSet] to tell them apart.
type Defaults struct {
	MinValue  float64  `toml:"min_value"`
	Layout    string   `toml:"layout"`
	Direction string   `toml:"direction"`
	Mode      string   `toml:"mode"`
	Kinds     []string `toml:"kinds"`
}

// Decode reads a TOML configuration. Unknown keys are rejected so that
// typos do not silently fall back to defaults.
func Decode(r io.Reader) (*Config, error) {
	var cfg Config
	meta, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "invalid configuration")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown configuration keys: %v", keys)
	}
	if cfg.Defaults.MinValue < 0 {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "defaults.min_value must not be negative")
	}
	cfg.meta = meta
	return &cfg, nil
}

// LoadFile reads and decodes the configuration at path.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s not found", path)
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "open config")
	}
	defer f.Close()
	return Decode(f)
}

// DefaultPath returns $XDG_CONFIG_HOME/flowtower/flowtower.toml (or the
// platform equivalent) and whether that file exists.
func DefaultPath() (string, bool) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", false
	}
	path := filepath.Join(dir, "flowtower", FileName)
	_, err = os.Stat(path)
	return path, err == nil
}

// IsSet reports whether the dotted key (for example "defaults.min_value")
// was present in the decoded file.
func (c *Config) IsSet(key ...string) bool {
	if c == nil {
		return false
	}
	return c.meta.IsDefined(key...)
}

// Table builds the style table described by the configuration.
// A nil Config yields [DefaultTable].
func (c *Config) Table() *Table {
	if c == nil || len(c.Styles) == 0 {
		return DefaultTable()
	}
	return NewTable(c.Styles)
}
