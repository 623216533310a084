// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// LoggingConfig holds settings for the process logger.
type LoggingConfig struct {
	// Level is one of DEBUG, INFO, WARNING, ERROR (default INFO).
	Level string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`

	// ToFile enables the day-stamped log file next to console output (default true).
	ToFile bool `json:"log_to_file" yaml:"log_to_file" mapstructure:"log_to_file"`

	// Dir is the directory for log files (default "logs").
	Dir string `json:"log_dir" yaml:"log_dir" mapstructure:"log_dir"`

	// Name is the logger name printed in every line and used in the log
	// filename (default "LandscapePDF").
	Name string `json:"name" yaml:"name" mapstructure:"name"`
}

// PathsConfig holds the input and output folders.
type PathsConfig struct {
	// InputFolder is scanned recursively for images (default "input").
	InputFolder string `json:"input_folder" yaml:"input_folder" mapstructure:"input_folder"`

	// OutputFolder receives the generated PDFs (default "output").
	OutputFolder string `json:"output_folder" yaml:"output_folder" mapstructure:"output_folder"`

	// NaturalSort orders discovered images with digit runs compared
	// numerically ("2.jpg" before "10.jpg"). Off by default.
	NaturalSort bool `json:"natural_sort" yaml:"natural_sort" mapstructure:"natural_sort"`
}

// LayoutConfig holds page geometry and image placement settings. Lengths are
// in millimetres.
type LayoutConfig struct {
	MarginMM float64 `json:"margin_mm" yaml:"margin_mm" mapstructure:"margin_mm"`
	GutterMM float64 `json:"gutter_mm" yaml:"gutter_mm" mapstructure:"gutter_mm"`
	FooterMM float64 `json:"footer_mm" yaml:"footer_mm" mapstructure:"footer_mm"`

	// FontSize is the page number size in points (default 10).
	FontSize float64 `json:"font_size" yaml:"font_size" mapstructure:"font_size"`

	// NativeDPI converts image pixels to physical size (default 72).
	NativeDPI float64 `json:"native_dpi" yaml:"native_dpi" mapstructure:"native_dpi"`

	// MaxDPI caps the embedded pixel density; larger images are resampled
	// down. Zero disables resampling (default 300).
	MaxDPI float64 `json:"max_dpi" yaml:"max_dpi" mapstructure:"max_dpi"`

	// Upscale allows images smaller than their slot to be enlarged.
	Upscale bool `json:"upscale" yaml:"upscale" mapstructure:"upscale"`

	// Optimize runs the written PDF through pdfcpu's optimizer (default true).
	Optimize bool `json:"optimize" yaml:"optimize" mapstructure:"optimize"`
}

// HistoryConfig holds settings for the generation ledger.
type HistoryConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	DBPath  string `json:"db_path" yaml:"db_path" mapstructure:"db_path"`
}

// Config groups all settings. It is built once at startup and passed by value.
type Config struct {
	Logging LoggingConfig `json:"logging" yaml:"logging" mapstructure:"logging"`
	Paths   PathsConfig   `json:"paths" yaml:"paths" mapstructure:"paths"`
	Layout  LayoutConfig  `json:"layout" yaml:"layout" mapstructure:"layout"`
	History HistoryConfig `json:"history" yaml:"history" mapstructure:"history"`
}
