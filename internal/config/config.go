// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config builds the effective landscape-pdf configuration from a viper
// instance. Missing keys take the built-in defaults; malformed values also
// fall back to the defaults and are reported as notices rather than errors.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/pdiddy/landscape-pdf/pkg/types"
)

// Configuration keys. Viper keys are case-insensitive, so "LOGGING.log_level"
// in a config file resolves to KeyLogLevel.
const (
	KeyLogLevel     = "logging.log_level"
	KeyLogToFile    = "logging.log_to_file"
	KeyLogDir       = "logging.log_dir"
	KeyLogName      = "logging.name"
	KeyInputFolder  = "paths.input_folder"
	KeyOutputFolder = "paths.output_folder"
	KeyNaturalSort  = "paths.natural_sort"
	KeyMarginMM     = "layout.margin_mm"
	KeyGutterMM     = "layout.gutter_mm"
	KeyFooterMM     = "layout.footer_mm"
	KeyFontSize     = "layout.font_size"
	KeyNativeDPI    = "layout.native_dpi"
	KeyMaxDPI       = "layout.max_dpi"
	KeyUpscale      = "layout.upscale"
	KeyOptimize     = "layout.optimize"
	KeyHistory      = "history.enabled"
	KeyHistoryDB    = "history.db_path"
)

// EnvPrefix is the prefix for environment overrides, e.g.
// LANDSCAPE_PDF_LOGGING_LOG_LEVEL=DEBUG.
const EnvPrefix = "LANDSCAPE_PDF"

// Defaults returns the built-in configuration.
func Defaults() types.Config {
	return types.Config{
		Logging: types.LoggingConfig{
			Level:  "INFO",
			ToFile: true,
			Dir:    "logs",
			Name:   "LandscapePDF",
		},
		Paths: types.PathsConfig{
			InputFolder:  "input",
			OutputFolder: "output",
		},
		Layout: types.LayoutConfig{
			MarginMM:  10,
			GutterMM:  10,
			FooterMM:  12,
			FontSize:  10,
			NativeDPI: 72,
			MaxDPI:    300,
			Optimize:  true,
		},
		History: types.HistoryConfig{
			Enabled: true,
			DBPath:  filepath.Join(".landscape-pdf", "history.db"),
		},
	}
}

// SetDefaults registers the built-in defaults on v and enables environment
// overrides.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault(KeyLogLevel, d.Logging.Level)
	v.SetDefault(KeyLogToFile, d.Logging.ToFile)
	v.SetDefault(KeyLogDir, d.Logging.Dir)
	v.SetDefault(KeyLogName, d.Logging.Name)
	v.SetDefault(KeyInputFolder, d.Paths.InputFolder)
	v.SetDefault(KeyOutputFolder, d.Paths.OutputFolder)
	v.SetDefault(KeyNaturalSort, d.Paths.NaturalSort)
	v.SetDefault(KeyMarginMM, d.Layout.MarginMM)
	v.SetDefault(KeyGutterMM, d.Layout.GutterMM)
	v.SetDefault(KeyFooterMM, d.Layout.FooterMM)
	v.SetDefault(KeyFontSize, d.Layout.FontSize)
	v.SetDefault(KeyNativeDPI, d.Layout.NativeDPI)
	v.SetDefault(KeyMaxDPI, d.Layout.MaxDPI)
	v.SetDefault(KeyUpscale, d.Layout.Upscale)
	v.SetDefault(KeyOptimize, d.Layout.Optimize)
	v.SetDefault(KeyHistory, d.History.Enabled)
	v.SetDefault(KeyHistoryDB, d.History.DBPath)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads the effective configuration from v. It never fails: every value
// that is missing or malformed is replaced by its default, and each
// replacement of a malformed value adds a human-readable notice.
func Load(v *viper.Viper) (types.Config, []string) {
	d := Defaults()
	l := &loader{v: v}

	cfg := types.Config{
		Logging: types.LoggingConfig{
			Level:  l.level(KeyLogLevel, d.Logging.Level),
			ToFile: l.boolean(KeyLogToFile, d.Logging.ToFile),
			Dir:    l.str(KeyLogDir, d.Logging.Dir),
			Name:   l.str(KeyLogName, d.Logging.Name),
		},
		Paths: types.PathsConfig{
			InputFolder:  l.str(KeyInputFolder, d.Paths.InputFolder),
			OutputFolder: l.str(KeyOutputFolder, d.Paths.OutputFolder),
			NaturalSort:  l.boolean(KeyNaturalSort, d.Paths.NaturalSort),
		},
		Layout: types.LayoutConfig{
			MarginMM:  l.number(KeyMarginMM, d.Layout.MarginMM, 0, 50),
			GutterMM:  l.number(KeyGutterMM, d.Layout.GutterMM, 0, 50),
			FooterMM:  l.number(KeyFooterMM, d.Layout.FooterMM, 0, 40),
			FontSize:  l.number(KeyFontSize, d.Layout.FontSize, 4, 72),
			NativeDPI: l.number(KeyNativeDPI, d.Layout.NativeDPI, 1, 2400),
			MaxDPI:    l.number(KeyMaxDPI, d.Layout.MaxDPI, 0, 2400),
			Upscale:   l.boolean(KeyUpscale, d.Layout.Upscale),
			Optimize:  l.boolean(KeyOptimize, d.Layout.Optimize),
		},
		History: types.HistoryConfig{
			Enabled: l.boolean(KeyHistory, d.History.Enabled),
			DBPath:  l.str(KeyHistoryDB, d.History.DBPath),
		},
	}
	return cfg, l.notices
}

// ResolvePaths returns cfg with every relative filesystem path joined onto
// base (normally the working directory).
func ResolvePaths(cfg types.Config, base string) types.Config {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	cfg.Paths.InputFolder = abs(cfg.Paths.InputFolder)
	cfg.Paths.OutputFolder = abs(cfg.Paths.OutputFolder)
	cfg.Logging.Dir = abs(cfg.Logging.Dir)
	cfg.History.DBPath = abs(cfg.History.DBPath)
	return cfg
}

// levelNames maps accepted spellings to the canonical level name.
var levelNames = map[string]string{
	"DEBUG":   "DEBUG",
	"INFO":    "INFO",
	"WARNING": "WARNING",
	"WARN":    "WARNING",
	"ERROR":   "ERROR",
}

// NormalizeLevel returns the canonical level name for s and whether s was
// recognised.
func NormalizeLevel(s string) (string, bool) {
	name, ok := levelNames[strings.ToUpper(strings.TrimSpace(s))]
	return name, ok
}

type loader struct {
	v       *viper.Viper
	notices []string
}

func (l *loader) notef(format string, args ...any) {
	l.notices = append(l.notices, fmt.Sprintf(format, args...))
}

func (l *loader) str(key, def string) string {
	raw := l.v.Get(key)
	if raw == nil {
		return def
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		l.notef("%s: %v is not a string, using default %q", key, raw, def)
		return def
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

func (l *loader) level(key, def string) string {
	s := l.str(key, def)
	name, ok := NormalizeLevel(s)
	if !ok {
		l.notef("%s: unknown level %q, using default %s", key, s, def)
		return def
	}
	return name
}

// boolWords are the INI-style spellings cast does not accept.
var boolWords = map[string]bool{
	"yes": true,
	"on":  true,
	"no":  false,
	"off": false,
}

func (l *loader) boolean(key string, def bool) bool {
	raw := l.v.Get(key)
	if raw == nil {
		return def
	}
	if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
		return def
	}
	if s, ok := raw.(string); ok {
		if b, ok := boolWords[strings.ToLower(strings.TrimSpace(s))]; ok {
			return b
		}
	}
	b, err := cast.ToBoolE(raw)
	if err != nil {
		l.notef("%s: %v is not a boolean, using default %t", key, raw, def)
		return def
	}
	return b
}

func (l *loader) number(key string, def, lo, hi float64) float64 {
	raw := l.v.Get(key)
	if raw == nil {
		return def
	}
	if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
		return def
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil {
		l.notef("%s: %v is not a number, using default %g", key, raw, def)
		return def
	}
	if f < lo || f > hi {
		l.notef("%s: %g is outside %g-%g, using default %g", key, f, lo, hi, def)
		return def
	}
	return f
}
