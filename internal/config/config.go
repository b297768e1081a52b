package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Editor holds buffer-level settings.
type Editor struct {
	// TabWidth is the display width of a tab character.
	TabWidth int `toml:"tab_width"`

	// LineEnding is the write-out line ending style: "lf", "crlf",
	// "cr", or "auto" to detect from the file.
	LineEnding string `toml:"line_ending"`
}

// View holds viewer settings.
type View struct {
	// Gutter enables the line-number gutter.
	Gutter bool `toml:"gutter"`

	// StatusLine enables the status line.
	StatusLine bool `toml:"status_line"`
}

// Annotate holds line annotation settings.
type Annotate struct {
	// Enabled turns per-line annotation on.
	Enabled bool `toml:"enabled"`

	// Script is the path of a Lua annotator script. Empty selects the
	// builtin annotator.
	Script string `toml:"script"`
}

// Config is the complete linetab configuration.
type Config struct {
	Editor   Editor   `toml:"editor"`
	View     View     `toml:"view"`
	Annotate Annotate `toml:"annotate"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Editor:   Editor{TabWidth: 4, LineEnding: "auto"},
		View:     View{Gutter: true, StatusLine: true},
		Annotate: Annotate{Enabled: true},
	}
}

// Load reads the configuration file at path, merges it over the
// defaults, and applies environment overrides. A missing file is not an
// error. An empty path skips file loading entirely.
func Load(path string) (Config, error) {
	c := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults apply.
		case err != nil:
			return c, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, &c); err != nil {
				return c, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	applyEnv(&c)

	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// applyEnv overrides settings from LINETAB_* environment variables.
func applyEnv(c *Config) {
	if v, ok := os.LookupEnv("LINETAB_TAB_WIDTH"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.Editor.TabWidth = n
		}
	}
	if v, ok := os.LookupEnv("LINETAB_LINE_ENDING"); ok {
		c.Editor.LineEnding = v
	}
	if v, ok := os.LookupEnv("LINETAB_GUTTER"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.View.Gutter = b
		}
	}
	if v, ok := os.LookupEnv("LINETAB_ANNOTATE_SCRIPT"); ok {
		c.Annotate.Script = v
		c.Annotate.Enabled = v != ""
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if c.Editor.TabWidth < 1 || c.Editor.TabWidth > 16 {
		return fmt.Errorf("editor.tab_width %d out of range [1,16]", c.Editor.TabWidth)
	}
	switch c.Editor.LineEnding {
	case "auto", "lf", "crlf", "cr":
	default:
		return fmt.Errorf("editor.line_ending %q must be auto, lf, crlf, or cr", c.Editor.LineEnding)
	}
	return nil
}
