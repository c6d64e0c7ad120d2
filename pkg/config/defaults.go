package config

import "time"

// Default returns the tuned configuration. Tuning these values changes the
// feel of the whole constellation.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "json",
		Canvas:    Canvas{Width: 1280, Height: 800},
		Physics: Physics{
			GravityStrength:        0.08,
			CollisionRadiusEmotion: 14,
			CollisionRadiusNeed:    50,
			CollisionStrength:      0.7,
			CollisionIterations:    2,
			CenteringStrength:      0.015,
			ChargeStrength:         -30,
			ChargeMaxDistance:      200,
			VelocityDecay:          0.4,
			AlphaDecay:             0.0005,
			AlphaFloor:             0.008,
			ResizeAlpha:            0.3,
			Perturbation:           0.08,
			DriftSpeed:             0.15,
			DriftStrength:          0.35,
			DriftNoiseScale:        0.004,
			WarmupTicks:            120,
			InitialJitter:          30,
			TickInterval:           D(16 * time.Millisecond),
		},
		Layout: Layout{
			RingRadius:      0.35,
			RingAngleOffset: 0.3,
			RingStretchX:    1.25,
			RingOffsetX:     0,
			RingOffsetY:     -0.02,
			RotationSpeed:   0.02,
			RotationResume:  D(2 * time.Second),
		},
		Interaction: Interaction{
			TransitionDuration:    D(600 * time.Millisecond),
			ExitFactor:            0.8,
			SelectedBrightness:    1.8,
			SelectedSizeScale:     1.6,
			RelatedBrightness:     1.3,
			DimmedBrightness:      0.35,
			DimmedSizeScale:       0.75,
			HoverBrightness:       1.4,
			HoverSizeScale:        1.25,
			SelectedNeedIntensity: 1.8,
			DimmedNeedIntensity:   0.25,
			ActiveOpacity:         0.7,
			DimmedOpacityFraction: 0.3,
			ClassifyThreshold:     0.1,
			HitRadiusEmotion:      24,
			HitRadiusNeed:         60,
		},
		Entry: Entry{
			NeedsStagger:         D(120 * time.Millisecond),
			NeedsFadeIn:          D(500 * time.Millisecond),
			EmotionDelay:         D(800 * time.Millisecond),
			EmotionWave1Duration: D(900 * time.Millisecond),
			EmotionWave2Delay:    D(600 * time.Millisecond),
			EmotionWave2Duration: D(900 * time.Millisecond),
			ConnectionDelay:      D(2500 * time.Millisecond),
			ConnectionFade:       D(1000 * time.Millisecond),
			CompletionBuffer:     D(200 * time.Millisecond),
			HintEnabled:          true,
			HintDelay:            D(3500 * time.Millisecond),
			HintDuration:         D(3000 * time.Millisecond),
			DriftShrink:          0.5,
			DriftDistance:        120,
		},
		Frame: Frame{
			FPS:       60,
			AuxEvery:  2,
			InboxSize: 256,
		},
		Server: Server{
			HTTPAddr:        ":8080",
			GRPCAddr:        ":50051",
			ClientRate:      30,
			ClientBurst:     10,
			WriteTimeout:    D(5 * time.Second),
			ClientQueueSize: 8,
		},
		Dataset: Dataset{
			Dir:           "data",
			Locale:        "en",
			Watch:         true,
			WatchDebounce: D(200 * time.Millisecond),
		},
	}
}

// FrameInterval is the wall time between frames at the configured FPS
func (f Frame) FrameInterval() time.Duration {
	if f.FPS <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(f.FPS)
}

// TotalDuration is the instant the entry timeline reports completion
func (e Entry) TotalDuration() time.Duration {
	return e.ConnectionDelay.Duration + e.ConnectionFade.Duration + e.CompletionBuffer.Duration
}
