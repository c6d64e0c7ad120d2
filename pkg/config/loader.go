package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadConfig loads and parses a configuration file. The format is chosen by
// extension: .toml uses TOML, everything else YAML.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		cfg, err = ParseConfigTOML(data)
	default:
		cfg, err = ParseConfigYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path when set, otherwise returns a validated Default()
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		if err := validateConfig(cfg); err != nil {
			return nil, fmt.Errorf("invalid default config: %w", err)
		}
		return cfg, nil
	}
	return LoadConfig(path)
}

// validateConfig performs validation on the configuration
func validateConfig(cfg *Config) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return fmt.Errorf("invalid log_format: %s (must be json or text)", cfg.LogFormat)
	}

	if cfg.Canvas.Width <= 0 || cfg.Canvas.Height <= 0 {
		return fmt.Errorf("canvas width and height must be positive, got %vx%v", cfg.Canvas.Width, cfg.Canvas.Height)
	}

	if err := validatePhysics(&cfg.Physics); err != nil {
		return fmt.Errorf("physics validation failed: %w", err)
	}
	if err := validateLayout(&cfg.Layout); err != nil {
		return fmt.Errorf("layout validation failed: %w", err)
	}
	if err := validateInteraction(&cfg.Interaction); err != nil {
		return fmt.Errorf("interaction validation failed: %w", err)
	}
	if err := validateEntry(&cfg.Entry); err != nil {
		return fmt.Errorf("entry validation failed: %w", err)
	}
	if err := validateFrame(&cfg.Frame); err != nil {
		return fmt.Errorf("frame validation failed: %w", err)
	}
	if err := validateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server validation failed: %w", err)
	}
	if cfg.Dataset.Locale == "" {
		return fmt.Errorf("dataset locale cannot be empty")
	}

	return nil
}

// validatePhysics validates the force model
func validatePhysics(p *Physics) error {
	if p.AlphaFloor <= 0 {
		return fmt.Errorf("alpha_floor must be positive so motion never freezes, got %f", p.AlphaFloor)
	}
	if p.AlphaFloor > 1 {
		return fmt.Errorf("alpha_floor must be at most 1, got %f", p.AlphaFloor)
	}
	if p.AlphaDecay <= 0 || p.AlphaDecay >= 1 {
		return fmt.Errorf("alpha_decay must be in (0, 1), got %f", p.AlphaDecay)
	}
	if p.VelocityDecay < 0 || p.VelocityDecay >= 1 {
		return fmt.Errorf("velocity_decay must be in [0, 1), got %f", p.VelocityDecay)
	}
	if p.ResizeAlpha < p.AlphaFloor || p.ResizeAlpha > 1 {
		return fmt.Errorf("resize_alpha must be in [alpha_floor, 1], got %f", p.ResizeAlpha)
	}
	if p.CollisionRadiusEmotion <= 0 || p.CollisionRadiusNeed <= 0 {
		return fmt.Errorf("collision radii must be positive")
	}
	if p.CollisionRadiusNeed < p.CollisionRadiusEmotion {
		return fmt.Errorf("collision_radius_need (%f) must not be smaller than collision_radius_emotion (%f)",
			p.CollisionRadiusNeed, p.CollisionRadiusEmotion)
	}
	if p.CollisionIterations <= 0 {
		return fmt.Errorf("collision_iterations must be positive, got %d", p.CollisionIterations)
	}
	if p.ChargeMaxDistance <= 0 {
		return fmt.Errorf("charge_max_distance must be positive, got %f", p.ChargeMaxDistance)
	}
	if p.DriftStrength <= 0 {
		return fmt.Errorf("drift_strength must be positive, got %f", p.DriftStrength)
	}
	if p.Perturbation < 0 || p.GravityStrength < 0 || p.CenteringStrength < 0 {
		return fmt.Errorf("perturbation, gravity_strength and centering_strength cannot be negative")
	}
	if p.WarmupTicks < 0 {
		return fmt.Errorf("warmup_ticks cannot be negative, got %d", p.WarmupTicks)
	}
	if p.TickInterval.Duration <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", p.TickInterval.Duration)
	}
	return nil
}

// validateLayout validates the need ring geometry
func validateLayout(l *Layout) error {
	if l.RingRadius <= 0 || l.RingRadius > 0.5 {
		return fmt.Errorf("ring_radius must be in (0, 0.5], got %f", l.RingRadius)
	}
	if l.RingStretchX <= 0 {
		return fmt.Errorf("ring_stretch_x must be positive, got %f", l.RingStretchX)
	}
	if l.RotationResume.Duration < 0 {
		return fmt.Errorf("rotation_resume cannot be negative, got %s", l.RotationResume.Duration)
	}
	return nil
}

// validateInteraction validates the selection tuning
func validateInteraction(i *Interaction) error {
	if i.TransitionDuration.Duration <= 0 {
		return fmt.Errorf("transition_duration must be positive, got %s", i.TransitionDuration.Duration)
	}
	if i.ExitFactor <= 0 || i.ExitFactor > 1 {
		return fmt.Errorf("exit_factor must be in (0, 1], got %f", i.ExitFactor)
	}
	if i.ClassifyThreshold < 0 || i.ClassifyThreshold >= 1 {
		return fmt.Errorf("classify_threshold must be in [0, 1), got %f", i.ClassifyThreshold)
	}
	if i.DimmedOpacityFraction < 0 || i.DimmedOpacityFraction > 1 {
		return fmt.Errorf("dimmed_opacity_fraction must be in [0, 1], got %f", i.DimmedOpacityFraction)
	}
	if i.ActiveOpacity < 0 || i.ActiveOpacity > 1 {
		return fmt.Errorf("active_opacity must be in [0, 1], got %f", i.ActiveOpacity)
	}
	if i.HitRadiusEmotion <= 0 || i.HitRadiusNeed <= 0 {
		return fmt.Errorf("hit radii must be positive")
	}
	return nil
}

// validateEntry validates the reveal timeline
func validateEntry(e *Entry) error {
	positive := map[string]Duration{
		"needs_fade_in":          e.NeedsFadeIn,
		"emotion_wave1_duration": e.EmotionWave1Duration,
		"emotion_wave2_duration": e.EmotionWave2Duration,
		"connection_fade":        e.ConnectionFade,
	}
	for name, d := range positive {
		if d.Duration <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d.Duration)
		}
	}
	nonNegative := map[string]Duration{
		"needs_stagger":       e.NeedsStagger,
		"emotion_delay":       e.EmotionDelay,
		"emotion_wave2_delay": e.EmotionWave2Delay,
		"connection_delay":    e.ConnectionDelay,
		"completion_buffer":   e.CompletionBuffer,
		"hint_delay":          e.HintDelay,
		"hint_duration":       e.HintDuration,
	}
	for name, d := range nonNegative {
		if d.Duration < 0 {
			return fmt.Errorf("%s cannot be negative, got %s", name, d.Duration)
		}
	}
	if e.DriftShrink < 0 || e.DriftShrink > 1 {
		return fmt.Errorf("drift_shrink must be in [0, 1], got %f", e.DriftShrink)
	}
	return nil
}

// validateFrame validates the scheduler loop
func validateFrame(f *Frame) error {
	if f.FPS <= 0 || f.FPS > 240 {
		return fmt.Errorf("fps must be in [1, 240], got %d", f.FPS)
	}
	if f.AuxEvery <= 0 {
		return fmt.Errorf("aux_every must be positive, got %d", f.AuxEvery)
	}
	if f.InboxSize <= 0 {
		return fmt.Errorf("inbox_size must be positive, got %d", f.InboxSize)
	}
	return nil
}

// validateServer validates the daemon surfaces
func validateServer(s *Server) error {
	if s.ClientRate <= 0 {
		return fmt.Errorf("client_rate must be positive, got %f", s.ClientRate)
	}
	if s.ClientBurst <= 0 {
		return fmt.Errorf("client_burst must be positive, got %d", s.ClientBurst)
	}
	if s.ClientQueueSize <= 0 {
		return fmt.Errorf("client_queue_size must be positive, got %d", s.ClientQueueSize)
	}
	if s.WriteTimeout.Duration <= 0 {
		return fmt.Errorf("write_timeout must be positive, got %s", s.WriteTimeout.Duration)
	}
	return nil
}
