package cli

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scantower/pkg/buildinfo"
	cachepkg "github.com/matzehuels/scantower/pkg/cache"
	"github.com/matzehuels/scantower/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "scantower"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any command runs.
	Config     *Config
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: &Config{},
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The cache is disabled by
// noCache or by the config file. Keys are scoped by the tool version, since
// the report layout may change between releases.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := c.newCache(noCache || c.Config.Cache.Disabled)
	if err != nil {
		return nil, err
	}
	keyer := cachepkg.NewScopedKeyer(nil, buildinfo.Version+":")
	return pipeline.NewRunner(cache, keyer, c.Logger), nil
}

func (c *CLI) newCache(disabled bool) (cachepkg.Cache, error) {
	if disabled {
		return cachepkg.NewNullCache(), nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cachepkg.NewNullCache(), nil
	}
	fc, err := cachepkg.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory from the config, or the per-user
// default ($XDG_CACHE_HOME/scantower on Linux).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cachepkg.DefaultDir()
}
