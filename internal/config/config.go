// Package config provides configuration types and defaults for mindtrail.
package config

import "time"

// Config holds all configuration for mindtrail.
type Config struct {
	Backend     BackendConfig     `yaml:"backend" mapstructure:"backend"`
	Layout      LayoutConfig      `yaml:"layout" mapstructure:"layout"`
	Collision   CollisionConfig   `yaml:"collision" mapstructure:"collision"`
	Viewport    ViewportConfig    `yaml:"viewport" mapstructure:"viewport"`
	Chat        ChatConfig        `yaml:"chat" mapstructure:"chat"`
	Palette     []string          `yaml:"palette" mapstructure:"palette"`
	LogRotation LogRotationConfig `yaml:"log_rotation" mapstructure:"log_rotation"`
}

// BackendConfig holds settings for the knowledge-map backend service.
type BackendConfig struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// LayoutConfig holds tree layout settings.
type LayoutConfig struct {
	CanvasWidth  float64 `yaml:"canvas_width" mapstructure:"canvas_width"`   // Logical canvas width in px
	CanvasHeight float64 `yaml:"canvas_height" mapstructure:"canvas_height"` // Logical canvas height in px
	Padding      float64 `yaml:"padding" mapstructure:"padding"`             // Canvas padding in px
	SiblingGap   float64 `yaml:"sibling_gap" mapstructure:"sibling_gap"`     // Gap weight for same-parent leaves
	SubtreeGap   float64 `yaml:"subtree_gap" mapstructure:"subtree_gap"`     // Gap weight across subtrees
	LabelBudget  int     `yaml:"label_budget" mapstructure:"label_budget"`   // Max label runes before ellipsis
}

// CollisionConfig holds label collision resolver settings.
type CollisionConfig struct {
	MaxPasses int     `yaml:"max_passes" mapstructure:"max_passes"` // Relaxation pass bound
	MarginX   float64 `yaml:"margin_x" mapstructure:"margin_x"`     // Horizontal clearance in px
	MarginY   float64 `yaml:"margin_y" mapstructure:"margin_y"`     // Vertical clearance in px
}

// ViewportConfig holds pan/zoom settings.
type ViewportConfig struct {
	ZoomStep          float64       `yaml:"zoom_step" mapstructure:"zoom_step"`                   // Multiplicative zoom factor
	ZoomMin           float64       `yaml:"zoom_min" mapstructure:"zoom_min"`                     // Lower scale clamp
	ZoomMax           float64       `yaml:"zoom_max" mapstructure:"zoom_max"`                     // Upper scale clamp
	PanStep           float64       `yaml:"pan_step" mapstructure:"pan_step"`                     // Keyboard pan step in px
	FitPadding        float64       `yaml:"fit_padding" mapstructure:"fit_padding"`               // Padding around the tree on fit
	MaxFitScale       float64       `yaml:"max_fit_scale" mapstructure:"max_fit_scale"`           // Hard cap on fit scale
	AnimationDuration time.Duration `yaml:"animation_duration" mapstructure:"animation_duration"` // Transition duration
}

// ChatConfig holds settings for the follow-up chat pane.
type ChatConfig struct {
	Enabled      bool `yaml:"enabled" mapstructure:"enabled"`             // Show the chat pane
	HistoryLimit int  `yaml:"history_limit" mapstructure:"history_limit"` // Messages sent as context (0 = all)
}

// LogRotationConfig holds settings for debug log rotation
// (lumberjack-based automatic rotation).
type LogRotationConfig struct {
	MaxSizeMB  int  `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool `yaml:"compress" mapstructure:"compress"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 60 * time.Second,
		},
		Layout: LayoutConfig{
			CanvasWidth:  1200,
			CanvasHeight: 800,
			Padding:      60,
			SiblingGap:   1.0,
			SubtreeGap:   1.6,
			LabelBudget:  24,
		},
		Collision: CollisionConfig{
			MaxPasses: 10,
			MarginX:   8,
			MarginY:   4,
		},
		Viewport: ViewportConfig{
			ZoomStep:          1.2,
			ZoomMin:           0.3,
			ZoomMax:           3.0,
			PanStep:           40,
			FitPadding:        40,
			MaxFitScale:       3.0,
			AnimationDuration: 300 * time.Millisecond,
		},
		Chat: ChatConfig{
			Enabled:      true,
			HistoryLimit: 20,
		},
		Palette: []string{"#1f77b4", "#9467bd", "#2ca02c", "#ff7f0e", "#17becf", "#e377c2"},
		LogRotation: LogRotationConfig{
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}
