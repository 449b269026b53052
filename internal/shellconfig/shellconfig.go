package shellconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	ConfigFileName = "shell.yml"

	DefaultTitle    = "Lite XL"
	DefaultProgram  = "/usr/bin/lite-xl"
	DefaultScript   = "lite-xl.js"
	DefaultHome     = "/home/web_user"
	DefaultScaleEnv = "LITE_SCALE"
	DefaultLanguage = "en"
)

// Config describes how the shell boots the program.
type Config struct {
	Title     string            `yaml:"title" json:"title"`
	Program   string            `yaml:"program" json:"program"`     // argv[0] / thisProgram
	Script    string            `yaml:"script" json:"script"`       // Emscripten loader URL
	Arguments []string          `yaml:"arguments,omitempty" json:"arguments"`
	Home      string            `yaml:"home" json:"home"`           // persistent mount point and working directory
	ScaleEnv  string            `yaml:"scale_env" json:"scaleEnv"`  // receives the device pixel ratio
	Env       map[string]string `yaml:"env,omitempty" json:"env"`
	Language  string            `yaml:"language,omitempty" json:"language"`

	// Path is the directory containing this config (not serialized)
	Path string `yaml:"-" json:"-"`
}

// Default returns the configuration used by the stock Lite XL build.
func Default() *Config {
	return &Config{
		Title:     DefaultTitle,
		Program:   DefaultProgram,
		Script:    DefaultScript,
		Arguments: []string{},
		Home:      DefaultHome,
		ScaleEnv:  DefaultScaleEnv,
		Env:       map[string]string{},
		Language:  DefaultLanguage,
	}
}

// Load reads a config from a directory. Missing fields take their defaults.
func Load(dir string) (*Config, error) {
	p := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	c.Path = dir
	return c, nil
}

// Parse decodes YAML config content on top of the defaults.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return c.normalize()
}

// ParseJSON decodes the JSON form produced by JSON on top of the defaults.
func ParseJSON(data []byte) (*Config, error) {
	c := Default()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return c.normalize()
}

func (c *Config) normalize() (*Config, error) {
	if c.Env == nil {
		c.Env = map[string]string{}
	}
	if c.Arguments == nil {
		c.Arguments = []string{}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Save writes the configuration to disk.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	p := filepath.Join(c.Path, ConfigFileName)
	if err := os.WriteFile(p, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Program == "" {
		return fmt.Errorf("program is required")
	}
	if c.Script == "" {
		return fmt.Errorf("script is required")
	}
	if !path.IsAbs(c.Home) {
		return fmt.Errorf("home must be an absolute path, got %q", c.Home)
	}
	if path.Clean(c.Home) == "/" {
		return fmt.Errorf("home cannot be the filesystem root")
	}
	if c.ScaleEnv == "" {
		return fmt.Errorf("scale_env is required")
	}
	for k := range c.Env {
		if k == "" || strings.ContainsAny(k, "= ") {
			return fmt.Errorf("invalid environment variable name %q", k)
		}
		if k == c.ScaleEnv {
			return fmt.Errorf("env cannot override %s", c.ScaleEnv)
		}
	}
	return nil
}

// EnvKeys returns the configured environment variable names in sorted order.
func (c *Config) EnvKeys() []string {
	keys := make([]string, 0, len(c.Env))
	for k := range c.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// JSON encodes the config for embedding in the shell page.
func (c *Config) JSON() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	return string(data), nil
}

// FindConfigDir searches up the directory tree for a shell.yml file.
func FindConfigDir(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, ConfigFileName)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found in %s or any parent directory", ConfigFileName, startDir)
		}
		dir = parent
	}
}

// LoadOrDefault loads the config found from startDir upward, falling back to
// Default when there is none.
func LoadOrDefault(startDir string) (*Config, error) {
	dir, err := FindConfigDir(startDir)
	if err != nil {
		c := Default()
		c.Path = startDir
		return c, nil
	}
	return Load(dir)
}
