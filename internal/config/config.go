// Package config loads .phphint.toml and answers per-path questions: which
// PHP version a file targets, whether it is excluded, and which rules run at
// what severity.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"

	"phphint/internal/diag"
	"phphint/internal/phpver"
)

// FileName is the configuration file looked up from the analysis target.
const FileName = ".phphint.toml"

// Rules selects rules by key ("empty-statement") or ID ("HNT4001").
type Rules struct {
	Enable   []string          `toml:"enable"`
	Disable  []string          `toml:"disable"`
	Severity map[string]string `toml:"severity"`
}

// Override applies a different language version to matching paths.
type Override struct {
	Paths      []string       `toml:"paths"`
	PHPVersion phpver.Version `toml:"php_version"`

	globs []glob.Glob
}

type Cache struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type LSP struct {
	DebounceMS int `toml:"debounce_ms"`
}

// Config is the decoded configuration. Paths given to its methods may be
// absolute or relative to Root; patterns match slash-separated paths
// relative to Root.
type Config struct {
	Path           string         `toml:"-"`
	Root           string         `toml:"-"`
	PHPVersion     phpver.Version `toml:"php_version"`
	MaxDiagnostics int            `toml:"max_diagnostics"`
	Exclude        []string       `toml:"exclude"`
	Rules          Rules          `toml:"rules"`
	Overrides      []Override     `toml:"override"`
	Cache          Cache          `toml:"cache"`
	LSP            LSP            `toml:"lsp"`

	exclude  []glob.Glob
	enable   map[diag.Code]bool
	severity map[diag.Code]diag.Severity
}

// Default returns the configuration used when no file is found.
func Default(root string) *Config {
	c := &Config{Root: root, PHPVersion: phpver.Latest}
	if err := c.compile(); err != nil {
		panic(err) // nothing to compile
	}
	return c
}

// Load decodes path and validates rule keys, severities and patterns.
func Load(path string) (*Config, error) {
	var c Config
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	c.Path = path
	c.Root = filepath.Dir(path)
	if err := c.compile(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// Parse decodes TOML text; root is the directory patterns are relative to.
func Parse(text, root string) (*Config, error) {
	var c Config
	if _, err := toml.Decode(text, &c); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	c.Root = root
	if err := c.compile(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Discover finds the configuration governing startDir, falling back to
// Default rooted at startDir.
func Discover(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		abs, err := filepath.Abs(startDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve start directory: %w", err)
		}
		return Default(abs), nil
	}
	return Load(path)
}

func (c *Config) compile() error {
	if c.PHPVersion == 0 {
		c.PHPVersion = phpver.Latest
	}
	if c.MaxDiagnostics < 0 {
		return fmt.Errorf("max_diagnostics must not be negative")
	}
	var err error
	if c.exclude, err = compileGlobs(c.Exclude); err != nil {
		return fmt.Errorf("exclude: %w", err)
	}
	for i := range c.Overrides {
		o := &c.Overrides[i]
		if len(o.Paths) == 0 {
			return fmt.Errorf("override #%d: no paths", i+1)
		}
		if o.PHPVersion == 0 {
			return fmt.Errorf("override #%d: php_version is required", i+1)
		}
		if o.globs, err = compileGlobs(o.Paths); err != nil {
			return fmt.Errorf("override #%d: %w", i+1, err)
		}
	}

	c.enable = make(map[diag.Code]bool)
	for _, key := range c.Rules.Enable {
		code, ok := diag.LookupKey(strings.TrimSpace(key))
		if !ok {
			return fmt.Errorf("rules.enable: unknown rule %q", key)
		}
		c.enable[code] = true
	}
	for _, key := range c.Rules.Disable {
		code, ok := diag.LookupKey(strings.TrimSpace(key))
		if !ok {
			return fmt.Errorf("rules.disable: unknown rule %q", key)
		}
		c.enable[code] = false
	}
	c.severity = make(map[diag.Code]diag.Severity, len(c.Rules.Severity))
	for key, s := range c.Rules.Severity {
		code, ok := diag.LookupKey(strings.TrimSpace(key))
		if !ok {
			return fmt.Errorf("rules.severity: unknown rule %q", key)
		}
		sev, err := diag.ParseSeverity(s)
		if err != nil {
			return fmt.Errorf("rules.severity.%s: %w", key, err)
		}
		c.severity[code] = sev
	}
	return nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(filepath.ToSlash(strings.TrimSpace(p)), '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// rel turns path into the slash form patterns are matched against.
func (c *Config) rel(path string) string {
	if filepath.IsAbs(path) && c.Root != "" {
		if r, err := filepath.Rel(c.Root, path); err == nil && !strings.HasPrefix(r, "..") {
			path = r
		}
	}
	return strings.TrimPrefix(filepath.ToSlash(filepath.Clean(path)), "./")
}

func matchAny(globs []glob.Glob, path string) bool {
	for _, g := range globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// VersionFor returns the target version of path: the last matching override,
// else php_version, else phpver.Latest.
func (c *Config) VersionFor(path string) phpver.Version {
	if c == nil {
		return phpver.Latest
	}
	rel := c.rel(path)
	for i := len(c.Overrides) - 1; i >= 0; i-- {
		if matchAny(c.Overrides[i].globs, rel) {
			return c.Overrides[i].PHPVersion
		}
	}
	if c.PHPVersion == 0 {
		return phpver.Latest
	}
	return c.PHPVersion
}

// Excluded reports whether path matches an exclude pattern.
func (c *Config) Excluded(path string) bool {
	if c == nil {
		return false
	}
	return matchAny(c.exclude, c.rel(path))
}

// RuleEnabled applies rules.enable and rules.disable over the rule default.
func (c *Config) RuleEnabled(code diag.Code, defaultEnabled bool) bool {
	if c == nil {
		return defaultEnabled
	}
	if on, ok := c.enable[code]; ok {
		return on
	}
	return defaultEnabled
}

// SeverityFor returns the configured severity of code, or def.
func (c *Config) SeverityFor(code diag.Code, def diag.Severity) diag.Severity {
	if c == nil {
		return def
	}
	if s, ok := c.severity[code]; ok {
		return s
	}
	return def
}

// Debounce is the LSP and watcher re-analysis delay.
func (c *Config) Debounce() time.Duration {
	if c == nil || c.LSP.DebounceMS <= 0 {
		return 300 * time.Millisecond
	}
	return time.Duration(c.LSP.DebounceMS) * time.Millisecond
}
