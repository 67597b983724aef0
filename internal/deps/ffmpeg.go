package deps

import "curator/internal/config"

// Requirements lists the binaries curator's container support executes,
// honoring configured overrides. When ffmpeg support is disabled the entries
// stay in the list as optional, so status output still shows what a full
// installation would use.
func Requirements(cfg *config.Config) []Requirement {
	ffmpeg := "ffmpeg"
	ffprobe := "ffprobe"
	optional := true
	if cfg != nil {
		ffmpeg = cfg.FFmpegBinary()
		ffprobe = cfg.FFprobeBinary()
		optional = !cfg.Tools.FFmpegEnabled
	}
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     ffmpeg,
			Description: "Remuxing, conversion, and frame extraction for containers",
			Optional:    optional,
		},
		{
			Name:        "FFprobe",
			Command:     ffprobe,
			Description: "Stream inspection for container attributes",
			Optional:    optional,
		},
	}
}
