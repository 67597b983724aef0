// Package mp3 handles MPEG audio essences and their ID3 tags.
//
// The content processor strips the ID3v2 prefix and ID3v1 trailer so the
// essence is frame data only, and estimates duration from the first MPEG-1
// Layer III frame header under a constant-bitrate assumption. Tag values
// surface as attributes, with ID3v2 taking precedence over the trailer.
//
// The ID3 metadata processor parses the same tags into namespace fields via
// github.com/bogem/id3v2 and records the removed tag bytes verbatim, which
// lets Embed restore a stripped stream byte for byte.
package mp3
