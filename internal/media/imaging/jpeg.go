package imaging

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"curator/internal/media"
)

// JPEG stream markers.
const (
	markerPrefix = 0xFF
	markerSOI    = 0xD8
	markerEOI    = 0xD9
	markerSOS    = 0xDA
	markerAPP1   = 0xE1
	markerTEM    = 0x01
)

var exifHeader = []byte("Exif\x00\x00")

func isJPEG(data []byte) bool {
	return len(data) >= 3 && data[0] == markerPrefix && data[1] == markerSOI && data[2] == markerPrefix
}

// exifSegments locates the APP1 segments carrying EXIF payloads. The scan
// stops at start-of-scan; EXIF lives in the header segments before it.
func exifSegments(data []byte) ([][2]int, error) {
	if !isJPEG(data) {
		return nil, media.Wrap(media.ErrValidation, "imaging", "scan", "not a JPEG stream", nil)
	}
	var spans [][2]int
	pos := 2
	for pos+2 <= len(data) {
		if data[pos] != markerPrefix {
			return nil, media.Wrap(media.ErrValidation, "imaging", "scan",
				fmt.Sprintf("expected marker at offset %d", pos), nil)
		}
		marker := data[pos+1]
		if marker == markerPrefix {
			// fill byte
			pos++
			continue
		}
		if marker == markerEOI || marker == markerSOS {
			return spans, nil
		}
		if marker == markerTEM || (marker >= 0xD0 && marker <= 0xD7) {
			pos += 2
			continue
		}
		if pos+4 > len(data) {
			return nil, media.Wrap(media.ErrValidation, "imaging", "scan", "truncated segment header", nil)
		}
		length := int(binary.BigEndian.Uint16(data[pos+2 : pos+4]))
		end := pos + 2 + length
		if length < 2 || end > len(data) {
			return nil, media.Wrap(media.ErrValidation, "imaging", "scan", "truncated segment", nil)
		}
		if marker == markerAPP1 && bytes.HasPrefix(data[pos+4:end], exifHeader) {
			spans = append(spans, [2]int{pos, end})
		}
		pos = end
	}
	return spans, nil
}

// cutExif removes the EXIF APP1 segments from a JPEG stream and records the
// cuts that restore them byte for byte.
func cutExif(data []byte) ([]byte, []media.Cut, error) {
	spans, err := exifSegments(data)
	if err != nil {
		return nil, nil, err
	}
	if len(spans) == 0 {
		return bytes.Clone(data), nil, nil
	}
	stripped := make([]byte, 0, len(data))
	cuts := make([]media.Cut, 0, len(spans))
	prev := 0
	for _, span := range spans {
		stripped = append(stripped, data[prev:span[0]]...)
		cuts = append(cuts, media.Cut{
			Offset: int64(len(stripped)),
			Block:  bytes.Clone(data[span[0]:span[1]]),
		})
		prev = span[1]
	}
	stripped = append(stripped, data[prev:]...)
	return stripped, cuts, nil
}

// exifFieldsFromSegment parses the tag fields out of a whole APP1 segment as
// recorded in a cut block.
func exifFieldsFromSegment(segment []byte) (map[string]string, error) {
	prefix := 4 + len(exifHeader)
	if len(segment) < prefix {
		return nil, media.Wrap(media.ErrValidation, "imaging", "scan", "APP1 segment too short", nil)
	}
	return parseExifFields(segment[prefix:])
}
