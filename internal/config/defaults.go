package config

const (
	defaultStorageDir   = "~/.local/share/curator/assets"
	defaultLogDir       = "~/.local/share/curator/logs"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
	defaultResizeFilter = "catmullrom"
	defaultJPEGQuality  = 90
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StorageDir: defaultStorageDir,
			LogDir:     defaultLogDir,
		},
		Tools: Tools{
			FFmpegEnabled: true,
			FFmpeg:        "ffmpeg",
			FFprobe:       "ffprobe",
		},
		Imaging: Imaging{
			ResizeFilter: defaultResizeFilter,
			JPEGQuality:  defaultJPEGQuality,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
