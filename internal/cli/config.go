package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/scantower/pkg/core/model"
	"github.com/matzehuels/scantower/pkg/errors"
	"github.com/matzehuels/scantower/pkg/pipeline"
)

// defaultConfigFile is looked up in the working directory when --config is
// not given.
const defaultConfigFile = "scantower.toml"

// Config is the content of a scantower.toml file. Command-line flags take
// precedence over every value.
//
//	[scanner]
//	ignore_patterns = ["**/testdata/**"]
//
//	[[excludes.paths]]
//	pattern = "docs/**"
//	reason = "DOCUMENTATION_OF"
//
//	[output]
//	format = "yaml"
//	min_severity = "WARNING"
//	scanners = ["ScanCode@^32"]
//
//	[cache]
//	disabled = false
type Config struct {
	Scanner  ScannerConfig   `toml:"scanner"`
	Excludes *model.Excludes `toml:"excludes"`
	Output   OutputConfig    `toml:"output"`
	Cache    CacheConfig     `toml:"cache"`
}

// ScannerConfig adds to the configuration recorded in scanner runs.
type ScannerConfig struct {
	IgnorePatterns []string `toml:"ignore_patterns"`
}

// OutputConfig holds report defaults.
type OutputConfig struct {
	Format       string   `toml:"format"`
	MinSeverity  string   `toml:"min_severity"`
	OmitExcluded bool     `toml:"omit_excluded"`
	Scanners     []string `toml:"scanners"`
}

// CacheConfig controls the report cache.
type CacheConfig struct {
	Disabled bool   `toml:"disabled"`
	Dir      string `toml:"dir"`
}

// loadConfig reads the config file at path. An empty path means the default
// file, which may be missing; an explicit path must exist.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			if explicit {
				return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
			}
			return &Config{}, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "config file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidFormat, "config file %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if err := errors.ValidateGlobs(c.Scanner.IgnorePatterns); err != nil {
		return err
	}
	if c.Excludes != nil {
		if err := c.Excludes.Validate(); err != nil {
			return err
		}
	}
	if c.Output.Format != "" {
		if err := pipeline.ValidateFormat(c.Output.Format); err != nil {
			return err
		}
	}
	if c.Output.MinSeverity != "" {
		if err := pipeline.ValidateSeverity(c.Output.MinSeverity); err != nil {
			return err
		}
	}
	return pipeline.ValidateScanners(c.Output.Scanners)
}

// apply copies the config values into opts.
func (c *Config) apply(opts *pipeline.Options) {
	opts.IgnorePatterns = append(opts.IgnorePatterns, c.Scanner.IgnorePatterns...)
	if c.Excludes != nil {
		opts.Excludes = c.Excludes
	}
	opts.Format = c.Output.Format
	opts.MinSeverity = c.Output.MinSeverity
	opts.OmitExcluded = c.Output.OmitExcluded
	opts.Scanners = c.Output.Scanners
}
