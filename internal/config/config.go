// Package config loads showcase settings from SHOWCASE_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"
)

// Config holds every path and setting the commands share. Relative paths
// are resolved against Root by Resolve.
type Config struct {
	Root          string   `env:"SHOWCASE_ROOT" envDefault:"."`
	CasesFile     string   `env:"SHOWCASE_CASES_FILE" envDefault:"config/cases.json"`
	EditorConfig  string   `env:"SHOWCASE_EDITOR_CONFIG_DIR" envDefault:"editor/config"`
	CollectedDir  string   `env:"SHOWCASE_COLLECTED_DIR" envDefault:"collected"`
	ResourcesDir  string   `env:"SHOWCASE_RESOURCES_DIR" envDefault:"editor/resources"`
	OutputDir     string   `env:"SHOWCASE_OUTPUT_DIR" envDefault:"site"`
	Locales       []string `env:"SHOWCASE_LOCALES" envDefault:"zh,en" envSeparator:","`
	DefaultLocale string   `env:"SHOWCASE_DEFAULT_LOCALE"`
	Template      string   `env:"SHOWCASE_TEMPLATE"`
	DBPath        string   `env:"SHOWCASE_DB" envDefault:".showcase/history.db"`
	LogMode       string   `env:"SHOWCASE_LOG_MODE" envDefault:"dev"`
	EditorAddr    string   `env:"SHOWCASE_EDITOR_ADDR" envDefault:":8080"`
	BuildWorkers  int      `env:"SHOWCASE_BUILD_WORKERS" envDefault:"4"`
	DefaultTitle  string   `env:"SHOWCASE_DEFAULT_TITLE" envDefault:"MiniCPM-o 4.5"`

	PublishBucket string `env:"SHOWCASE_PUBLISH_BUCKET"`
	PublishPrefix string `env:"SHOWCASE_PUBLISH_PREFIX"`
	// StorageEmulatorHost points the GCS client at a local emulator.
	StorageEmulatorHost string `env:"STORAGE_EMULATOR_HOST"`
}

// Load parses the environment, applies defaults and validates the result.
// Paths are left relative; call Resolve after any flag overrides.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks locales and derives DefaultLocale when unset.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Locales) == 0 {
		errs = append(errs, errors.New("SHOWCASE_LOCALES: at least one locale is required"))
	}
	seen := make(map[string]bool)
	for i, l := range c.Locales {
		l = strings.TrimSpace(l)
		c.Locales[i] = l
		if err := ValidateLocale(l); err != nil {
			errs = append(errs, fmt.Errorf("SHOWCASE_LOCALES: %w", err))
			continue
		}
		if seen[l] {
			errs = append(errs, fmt.Errorf("SHOWCASE_LOCALES: duplicate locale %q", l))
		}
		seen[l] = true
	}
	if c.DefaultLocale == "" && len(c.Locales) > 0 {
		c.DefaultLocale = c.Locales[0]
	} else if c.DefaultLocale != "" && !slices.Contains(c.Locales, c.DefaultLocale) {
		errs = append(errs, fmt.Errorf("SHOWCASE_DEFAULT_LOCALE: %q is not in SHOWCASE_LOCALES", c.DefaultLocale))
	}
	if c.BuildWorkers < 1 {
		errs = append(errs, fmt.Errorf("SHOWCASE_BUILD_WORKERS: must be positive, got %d", c.BuildWorkers))
	}
	return errors.Join(errs...)
}

// ValidateLocale accepts BCP 47 tags that are also safe as a file name part.
func ValidateLocale(l string) error {
	if l == "" || strings.ContainsAny(l, `/\. `) {
		return fmt.Errorf("invalid locale %q", l)
	}
	if _, err := language.Parse(l); err != nil {
		return fmt.Errorf("invalid locale %q: %w", l, err)
	}
	return nil
}

// HasLocale reports whether l is one of the configured locales.
func (c *Config) HasLocale(l string) bool {
	return slices.Contains(c.Locales, l)
}

// Resolve makes every path absolute against Root.
func (c *Config) Resolve() error {
	root, err := filepath.Abs(c.Root)
	if err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}
	c.Root = root
	for _, p := range []*string{&c.CasesFile, &c.EditorConfig, &c.CollectedDir, &c.ResourcesDir, &c.OutputDir, &c.DBPath, &c.Template} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(root, *p)
		}
	}
	return nil
}
