// Package config holds the settings of a solving session.
package config

import (
	"bytes"
	"os"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

// Logic names the theory combination a session reasons in.
type Logic string

const (
	QFUF  Logic = "QF_UF"
	QFAUF Logic = "QF_AUF"
)

// PedanticEnv forces pedantic debugging on when set to a true value.
const PedanticEnv = "OPENSMT_PEDANTIC"

type Log struct {
	Enabled     bool `yaml:"enabled"`
	Development bool `yaml:"development"`
}

type Config struct {
	Logic           Logic  `yaml:"logic"`
	KeepPartitions  bool   `yaml:"keepPartitions"`
	PedanticDebug   bool   `yaml:"pedanticDebug"`
	ArenaCapacity   int    `yaml:"arenaCapacity"`
	FormalArgPrefix string `yaml:"formalArgPrefix"`
	Log             Log    `yaml:"log"`
}

// Default returns the configuration used when nothing is specified.
func Default() *Config {
	return &Config{
		Logic:           QFUF,
		FormalArgPrefix: "x",
		PedanticDebug:   boolEnv(PedanticEnv),
	}
}

// Parse decodes a YAML document over the defaults and validates the
// result. An empty document yields the defaults.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.UnmarshalWithOptions(data, c, yaml.DisallowUnknownField()); err != nil {
			return nil, errors.Wrap(err, "decoding config")
		}
	}
	if boolEnv(PedanticEnv) {
		c.PedanticDebug = true
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads and parses the YAML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return c, nil
}

func (c *Config) Validate() error {
	switch c.Logic {
	case QFUF, QFAUF:
	default:
		return errors.Errorf("unsupported logic %q", c.Logic)
	}
	if c.ArenaCapacity < 0 {
		return errors.Errorf("arenaCapacity must not be negative, got %d", c.ArenaCapacity)
	}
	if c.FormalArgPrefix == "" {
		return errors.New("formalArgPrefix must not be empty")
	}
	return nil
}

// Arrays reports whether the logic includes the array theory.
func (c *Config) Arrays() bool {
	return c.Logic == QFAUF
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}
