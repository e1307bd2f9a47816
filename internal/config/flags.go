package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagVariant    = flag.String("variant", "", "Scene variant (pbr, classic)")
	flagClouds     = flag.Bool("clouds", false, "Draw the cloud layer")
	flagNoClouds   = flag.Bool("no-clouds", false, "Hide the cloud layer")
	flagMarkers    = flag.Bool("markers", false, "Draw debug axes and the location marker")
	flagNight      = flag.Bool("night", false, "Start with the night texture")
	flagAssets     = flag.String("assets", "", "Asset root directory")
	flagPickAssets = flag.Bool("pick-assets", false, "Choose the asset root with a directory dialog")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// PickAssets reports whether the asset root should be chosen interactively.
func PickAssets() bool {
	return *flagPickAssets
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Debug.ShowFPS = true
	}
	if *flagVariant != "" {
		cfg.Globe.Variant = *flagVariant
	}
	if *flagClouds {
		cfg.Globe.DrawClouds = boolPtr(true)
	}
	if *flagNoClouds {
		cfg.Globe.DrawClouds = boolPtr(false)
	}
	if *flagMarkers {
		cfg.Globe.DebugMarkers = boolPtr(true)
	}
	if *flagNight {
		cfg.Globe.DayTexture = boolPtr(false)
	}
	if *flagAssets != "" {
		cfg.Assets.Root = *flagAssets
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
}

func boolPtr(b bool) *bool { return &b }
