package config

// Config represents the constellation core configuration
type Config struct {
	LogLevel    string      `yaml:"log_level" toml:"log_level"`
	LogFormat   string      `yaml:"log_format" toml:"log_format"` // json or text
	Seed        int64       `yaml:"seed" toml:"seed"`             // 0 picks a wall-clock seed
	Canvas      Canvas      `yaml:"canvas" toml:"canvas"`
	Physics     Physics     `yaml:"physics" toml:"physics"`
	Layout      Layout      `yaml:"layout" toml:"layout"`
	Interaction Interaction `yaml:"interaction" toml:"interaction"`
	Entry       Entry       `yaml:"entry" toml:"entry"`
	Frame       Frame       `yaml:"frame" toml:"frame"`
	Server      Server      `yaml:"server" toml:"server"`
	Dataset     Dataset     `yaml:"dataset" toml:"dataset"`
}

// Canvas is the initial drawing surface size in CSS pixels
type Canvas struct {
	Width  float64 `yaml:"width" toml:"width"`
	Height float64 `yaml:"height" toml:"height"`
}

// Physics tunes the force-directed layout
type Physics struct {
	GravityStrength        float64  `yaml:"gravity_strength" toml:"gravity_strength"`
	CollisionRadiusEmotion float64  `yaml:"collision_radius_emotion" toml:"collision_radius_emotion"`
	CollisionRadiusNeed    float64  `yaml:"collision_radius_need" toml:"collision_radius_need"`
	CollisionStrength      float64  `yaml:"collision_strength" toml:"collision_strength"`
	CollisionIterations    int      `yaml:"collision_iterations" toml:"collision_iterations"`
	CenteringStrength      float64  `yaml:"centering_strength" toml:"centering_strength"`
	ChargeStrength         float64  `yaml:"charge_strength" toml:"charge_strength"` // negative repels
	ChargeMaxDistance      float64  `yaml:"charge_max_distance" toml:"charge_max_distance"`
	VelocityDecay          float64  `yaml:"velocity_decay" toml:"velocity_decay"`
	AlphaDecay             float64  `yaml:"alpha_decay" toml:"alpha_decay"`
	AlphaFloor             float64  `yaml:"alpha_floor" toml:"alpha_floor"`
	ResizeAlpha            float64  `yaml:"resize_alpha" toml:"resize_alpha"`
	Perturbation           float64  `yaml:"perturbation" toml:"perturbation"`
	DriftSpeed             float64  `yaml:"drift_speed" toml:"drift_speed"`
	DriftStrength          float64  `yaml:"drift_strength" toml:"drift_strength"`
	DriftNoiseScale        float64  `yaml:"drift_noise_scale" toml:"drift_noise_scale"`
	WarmupTicks            int      `yaml:"warmup_ticks" toml:"warmup_ticks"`
	InitialJitter          float64  `yaml:"initial_jitter" toml:"initial_jitter"`
	TickInterval           Duration `yaml:"tick_interval" toml:"tick_interval"` // nominal step for the drift clock and rotation
}

// Layout places the need ring and drives its ambient rotation
type Layout struct {
	RingRadius      float64  `yaml:"ring_radius" toml:"ring_radius"` // fraction of min(width, height)
	RingAngleOffset float64  `yaml:"ring_angle_offset" toml:"ring_angle_offset"`
	RingStretchX    float64  `yaml:"ring_stretch_x" toml:"ring_stretch_x"`
	RingOffsetX     float64  `yaml:"ring_offset_x" toml:"ring_offset_x"` // fraction of width
	RingOffsetY     float64  `yaml:"ring_offset_y" toml:"ring_offset_y"` // fraction of height
	RotationSpeed   float64  `yaml:"rotation_speed" toml:"rotation_speed"` // radians per second
	RotationResume  Duration `yaml:"rotation_resume" toml:"rotation_resume"`
}

// Interaction tunes selection transitions and derived visuals
type Interaction struct {
	TransitionDuration    Duration `yaml:"transition_duration" toml:"transition_duration"`
	ExitFactor            float64  `yaml:"exit_factor" toml:"exit_factor"`
	SelectedBrightness    float64  `yaml:"selected_brightness" toml:"selected_brightness"`
	SelectedSizeScale     float64  `yaml:"selected_size_scale" toml:"selected_size_scale"`
	RelatedBrightness     float64  `yaml:"related_brightness" toml:"related_brightness"`
	DimmedBrightness      float64  `yaml:"dimmed_brightness" toml:"dimmed_brightness"`
	DimmedSizeScale       float64  `yaml:"dimmed_size_scale" toml:"dimmed_size_scale"`
	HoverBrightness       float64  `yaml:"hover_brightness" toml:"hover_brightness"`
	HoverSizeScale        float64  `yaml:"hover_size_scale" toml:"hover_size_scale"`
	SelectedNeedIntensity float64  `yaml:"selected_need_intensity" toml:"selected_need_intensity"`
	DimmedNeedIntensity   float64  `yaml:"dimmed_need_intensity" toml:"dimmed_need_intensity"`
	ActiveOpacity         float64  `yaml:"active_opacity" toml:"active_opacity"`
	DimmedOpacityFraction float64  `yaml:"dimmed_opacity_fraction" toml:"dimmed_opacity_fraction"`
	ClassifyThreshold     float64  `yaml:"classify_threshold" toml:"classify_threshold"`
	HitRadiusEmotion      float64  `yaml:"hit_radius_emotion" toml:"hit_radius_emotion"`
	HitRadiusNeed         float64  `yaml:"hit_radius_need" toml:"hit_radius_need"`
}

// Entry tunes the one-shot reveal timeline
type Entry struct {
	NeedsStagger         Duration `yaml:"needs_stagger" toml:"needs_stagger"`
	NeedsFadeIn          Duration `yaml:"needs_fade_in" toml:"needs_fade_in"`
	EmotionDelay         Duration `yaml:"emotion_delay" toml:"emotion_delay"`
	EmotionWave1Duration Duration `yaml:"emotion_wave1_duration" toml:"emotion_wave1_duration"`
	EmotionWave2Delay    Duration `yaml:"emotion_wave2_delay" toml:"emotion_wave2_delay"`
	EmotionWave2Duration Duration `yaml:"emotion_wave2_duration" toml:"emotion_wave2_duration"`
	ConnectionDelay      Duration `yaml:"connection_delay" toml:"connection_delay"`
	ConnectionFade       Duration `yaml:"connection_fade" toml:"connection_fade"`
	CompletionBuffer     Duration `yaml:"completion_buffer" toml:"completion_buffer"`
	HintEnabled          bool     `yaml:"hint_enabled" toml:"hint_enabled"`
	HintDelay            Duration `yaml:"hint_delay" toml:"hint_delay"`
	HintDuration         Duration `yaml:"hint_duration" toml:"hint_duration"`
	DriftShrink          float64  `yaml:"drift_shrink" toml:"drift_shrink"`     // size lost at full drift
	DriftDistance        float64  `yaml:"drift_distance" toml:"drift_distance"` // outward displacement at full drift, px
}

// Frame tunes the scheduler loop
type Frame struct {
	FPS       int `yaml:"fps" toml:"fps"`
	AuxEvery  int `yaml:"aux_every" toml:"aux_every"` // aux consumers run every Nth frame
	InboxSize int `yaml:"inbox_size" toml:"inbox_size"`
}

// Server configures the daemon surfaces
type Server struct {
	HTTPAddr        string   `yaml:"http_addr" toml:"http_addr"`
	GRPCAddr        string   `yaml:"grpc_addr" toml:"grpc_addr"`
	ClientRate      float64  `yaml:"client_rate" toml:"client_rate"` // inbound pointer commands per second
	ClientBurst     int      `yaml:"client_burst" toml:"client_burst"`
	WriteTimeout    Duration `yaml:"write_timeout" toml:"write_timeout"`
	ClientQueueSize int      `yaml:"client_queue_size" toml:"client_queue_size"`
}

// Dataset locates the constellation data
type Dataset struct {
	Dir           string   `yaml:"dir" toml:"dir"`
	Locale        string   `yaml:"locale" toml:"locale"`
	Watch         bool     `yaml:"watch" toml:"watch"`
	WatchDebounce Duration `yaml:"watch_debounce" toml:"watch_debounce"`
}
