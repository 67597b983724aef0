// Package ffmpeg reads and transforms audio and video containers by driving
// the ffmpeg and ffprobe binaries.
//
// The package claims matroska, webm, mp4, ogg, wav, and flac streams by
// magic-byte sniff, derives attributes from an ffprobe pass, and strips
// global tags from the essence with a metadata-free remux. Container tags
// surface through the "ffmetadata" namespace; because a remux never
// reproduces the source byte for byte, that namespace carries no raw payload
// and cannot be re-embedded.
//
// Containers like mp4 need seekable input and output, so every invocation
// works through uniquely named temp files rather than pipes.
package ffmpeg
