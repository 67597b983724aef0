package imaging

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"strconv"
	"strings"

	"curator/internal/asset"
	"curator/internal/media"
)

// FormatExif names the metadata format handled by ExifProcessor.
const FormatExif = "exif"

// IFD0 tag ids.
const (
	tagImageDescription = 0x010E
	tagMake             = 0x010F
	tagModel            = 0x0110
	tagOrientation      = 0x0112
	tagSoftware         = 0x0131
	tagDateTime         = 0x0132
	tagArtist           = 0x013B
)

const (
	typeASCII = 2
	typeShort = 3
)

var tagNames = map[uint16]string{
	tagImageDescription: "description",
	tagMake:             "make",
	tagModel:            "model",
	tagOrientation:      "orientation",
	tagSoftware:         "software",
	tagDateTime:         "datetime",
	tagArtist:           "artist",
}

// ExifProcessor reads, strips, and re-embeds the EXIF application segments
// of JPEG streams. Re-embedding splices the original segment bytes back, so
// a strip-then-embed round trip is byte exact.
type ExifProcessor struct{}

var (
	_ media.MetadataProcessor = (*ExifProcessor)(nil)
	_ media.Embedder          = (*ExifProcessor)(nil)
)

// NewExifProcessor builds the EXIF metadata processor.
func NewExifProcessor() *ExifProcessor {
	return &ExifProcessor{}
}

// Format returns "exif".
func (p *ExifProcessor) Format() string {
	return FormatExif
}

// Read parses the IFD0 tags of the stream's EXIF payload. The returned
// namespace carries the parsed fields plus the raw segment cuts needed to
// restore the stream byte for byte.
func (p *ExifProcessor) Read(ctx context.Context, r io.ReadSeeker) (asset.Namespace, error) {
	if err := ctx.Err(); err != nil {
		return asset.Namespace{}, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return asset.Namespace{}, media.Wrap(media.ErrValidation, "exif", "read", "read stream", err)
	}
	if !isJPEG(data) {
		return asset.Namespace{}, media.Wrap(media.ErrNoMetadata, "exif", "read", "not a JPEG stream", nil)
	}
	_, cuts, err := cutExif(data)
	if err != nil {
		return asset.Namespace{}, err
	}
	if len(cuts) == 0 {
		return asset.Namespace{}, media.Wrap(media.ErrNoMetadata, "exif", "read", "no exif segments", nil)
	}
	fields, err := exifFieldsFromSegment(cuts[0].Block)
	if err != nil {
		return asset.Namespace{}, err
	}
	raw, err := media.EncodeCuts(cuts)
	if err != nil {
		return asset.Namespace{}, err
	}
	return asset.NewNamespace(fields).WithRaw(raw), nil
}

// Remove returns the stream with its EXIF segments cut out. A JPEG without
// EXIF comes back unchanged.
func (p *ExifProcessor) Remove(ctx context.Context, r io.ReadSeeker) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, media.Wrap(media.ErrValidation, "exif", "remove", "read stream", err)
	}
	if !isJPEG(data) {
		return nil, media.Wrap(media.ErrUnsupportedFormat, "exif", "remove", "not a JPEG stream", nil)
	}
	stripped, _, err := cutExif(data)
	if err != nil {
		return nil, err
	}
	return stripped, nil
}

// Embed splices the namespace's recorded segments back into the essence.
func (p *ExifProcessor) Embed(ctx context.Context, essence []byte, ns asset.Namespace) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cuts, err := media.DecodeCuts(ns.Raw())
	if err != nil {
		return nil, err
	}
	if len(cuts) == 0 {
		return bytes.Clone(essence), nil
	}
	return media.Insert(essence, cuts)
}

// parseExifFields reads the IFD0 entries of a TIFF block (the bytes after
// the Exif header) into flat string fields. Only the ASCII and short tags
// named in tagNames are collected; everything else is skipped.
func parseExifFields(tiff []byte) (map[string]string, error) {
	if len(tiff) < 8 {
		return nil, media.Wrap(media.ErrValidation, "exif", "parse", "truncated TIFF header", nil)
	}
	var order binary.ByteOrder
	switch {
	case tiff[0] == 'I' && tiff[1] == 'I':
		order = binary.LittleEndian
	case tiff[0] == 'M' && tiff[1] == 'M':
		order = binary.BigEndian
	default:
		return nil, media.Wrap(media.ErrValidation, "exif", "parse", "unknown byte order", nil)
	}
	if order.Uint16(tiff[2:4]) != 0x002A {
		return nil, media.Wrap(media.ErrValidation, "exif", "parse", "bad TIFF magic", nil)
	}
	ifdOffset := int(order.Uint32(tiff[4:8]))
	if ifdOffset < 8 || ifdOffset+2 > len(tiff) {
		return nil, media.Wrap(media.ErrValidation, "exif", "parse", "IFD0 offset out of range", nil)
	}

	count := int(order.Uint16(tiff[ifdOffset : ifdOffset+2]))
	fields := make(map[string]string)
	entry := ifdOffset + 2
	for i := 0; i < count; i++ {
		if entry+12 > len(tiff) {
			return nil, media.Wrap(media.ErrValidation, "exif", "parse", "truncated IFD0 entry", nil)
		}
		tag := order.Uint16(tiff[entry : entry+2])
		typ := order.Uint16(tiff[entry+2 : entry+4])
		num := int(order.Uint32(tiff[entry+4 : entry+8]))
		value := tiff[entry+8 : entry+12]
		if name, known := tagNames[tag]; known {
			switch typ {
			case typeASCII:
				if s, ok := asciiValue(tiff, order, num, value); ok && s != "" {
					fields[name] = s
				}
			case typeShort:
				if num >= 1 {
					fields[name] = strconv.Itoa(int(order.Uint16(value[:2])))
				}
			}
		}
		entry += 12
	}
	return fields, nil
}

// asciiValue resolves an ASCII entry. Values up to four bytes live inline;
// longer ones sit at an offset from the TIFF header start.
func asciiValue(tiff []byte, order binary.ByteOrder, num int, value []byte) (string, bool) {
	if num <= 0 {
		return "", false
	}
	var raw []byte
	if num <= 4 {
		raw = value[:num]
	} else {
		off := int(order.Uint32(value))
		if off < 0 || off+num > len(tiff) {
			return "", false
		}
		raw = tiff[off : off+num]
	}
	return strings.TrimRight(string(raw), "\x00 "), true
}
