package testsupport

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	id3v2 "github.com/bogem/id3v2/v2"
)

// testImage renders a deterministic gradient so encoded fixtures stay stable
// across runs.
func testImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 5), B: uint8((x + y) * 3), A: 255})
		}
	}
	return img
}

// JPEGImage encodes a gradient JPEG of the requested dimensions.
func JPEGImage(t testing.TB, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(width, height), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// PNGImage encodes a gradient PNG of the requested dimensions.
func PNGImage(t testing.TB, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(width, height)); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// GIFImage encodes a gradient GIF of the requested dimensions.
func GIFImage(t testing.TB, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := gif.Encode(&buf, testImage(width, height), nil); err != nil {
		t.Fatalf("encode gif: %v", err)
	}
	return buf.Bytes()
}

// ExifSegment builds a complete JPEG APP1 segment whose EXIF block carries
// model, orientation, and artist IFD0 entries in little-endian TIFF layout.
func ExifSegment(t testing.TB, artist, model string, orientation uint16) []byte {
	t.Helper()

	modelZ := append([]byte(model), 0)
	artistZ := append([]byte(artist), 0)

	const headerLen = 8
	const entryCount = 3
	ifdLen := 2 + entryCount*12 + 4
	dataStart := headerLen + ifdLen

	tiff := make([]byte, 0, dataStart+len(modelZ)+len(artistZ))
	tiff = append(tiff, 'I', 'I', 0x2A, 0x00)
	tiff = binary.LittleEndian.AppendUint32(tiff, headerLen)
	tiff = binary.LittleEndian.AppendUint16(tiff, entryCount)
	tiff = appendIFDEntry(tiff, 0x0110, 2, uint32(len(modelZ)), uint32(dataStart))
	tiff = appendShortEntry(tiff, 0x0112, orientation)
	tiff = appendIFDEntry(tiff, 0x013B, 2, uint32(len(artistZ)), uint32(dataStart+len(modelZ)))
	tiff = binary.LittleEndian.AppendUint32(tiff, 0)
	tiff = append(tiff, modelZ...)
	tiff = append(tiff, artistZ...)

	payload := append([]byte("Exif\x00\x00"), tiff...)
	segment := []byte{0xFF, 0xE1}
	segment = binary.BigEndian.AppendUint16(segment, uint16(len(payload)+2))
	return append(segment, payload...)
}

func appendIFDEntry(buf []byte, tag, typ uint16, count, value uint32) []byte {
	buf = binary.LittleEndian.AppendUint16(buf, tag)
	buf = binary.LittleEndian.AppendUint16(buf, typ)
	buf = binary.LittleEndian.AppendUint32(buf, count)
	return binary.LittleEndian.AppendUint32(buf, value)
}

func appendShortEntry(buf []byte, tag, value uint16) []byte {
	buf = binary.LittleEndian.AppendUint16(buf, tag)
	buf = binary.LittleEndian.AppendUint16(buf, 3)
	buf = binary.LittleEndian.AppendUint32(buf, 1)
	buf = binary.LittleEndian.AppendUint16(buf, value)
	return append(buf, 0, 0)
}

// JPEGWithExif splices an EXIF APP1 segment into a gradient JPEG right
// after the start-of-image marker.
func JPEGWithExif(t testing.TB, width, height int, artist, model string) []byte {
	t.Helper()

	base := JPEGImage(t, width, height)
	segment := ExifSegment(t, artist, model, 1)
	out := make([]byte, 0, len(base)+len(segment))
	out = append(out, base[:2]...)
	out = append(out, segment...)
	return append(out, base[2:]...)
}

// MP3FrameLength is the byte length of one synthesized MPEG frame
// (MPEG-1 Layer III, 128 kbps, 44.1 kHz, no padding).
const MP3FrameLength = 417

// MP3Frames renders n CBR MPEG frames of silence-shaped zero data.
func MP3Frames(t testing.TB, n int) []byte {
	t.Helper()

	frame := make([]byte, MP3FrameLength)
	frame[0], frame[1], frame[2], frame[3] = 0xFF, 0xFB, 0x90, 0x00
	out := make([]byte, 0, n*MP3FrameLength)
	for i := 0; i < n; i++ {
		out = append(out, frame...)
	}
	return out
}

// MP3WithTags prefixes MPEG frames with an ID3v2 tag carrying artist,
// title, and album.
func MP3WithTags(t testing.TB, artist, title, album string, frames int) []byte {
	t.Helper()

	tag := id3v2.NewEmptyTag()
	tag.SetArtist(artist)
	tag.SetTitle(title)
	tag.SetAlbum(album)
	var buf bytes.Buffer
	if _, err := tag.WriteTo(&buf); err != nil {
		t.Fatalf("write id3v2 tag: %v", err)
	}
	buf.Write(MP3Frames(t, frames))
	return buf.Bytes()
}

// AppendID3v1 appends a 128-byte ID3v1 trailer with the given fields.
func AppendID3v1(t testing.TB, data []byte, artist, title, album string) []byte {
	t.Helper()

	trailer := make([]byte, 128)
	copy(trailer[0:3], "TAG")
	copy(trailer[3:33], title)
	copy(trailer[33:63], artist)
	copy(trailer[63:93], album)
	trailer[127] = 0xFF
	out := make([]byte, 0, len(data)+len(trailer))
	out = append(out, data...)
	return append(out, trailer...)
}
