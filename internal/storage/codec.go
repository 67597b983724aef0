package storage

import (
	"time"

	"github.com/fxamacker/cbor/v2"

	"curator/internal/asset"
	"curator/internal/media"
)

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2) so the same
// asset always produces identical payload bytes.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("storage: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("storage: CBOR decoder initialization failed: " + err.Error())
	}
}

type storedAttributes struct {
	MIMEType string        `cbor:"mime_type,omitempty"`
	Width    int           `cbor:"width,omitempty"`
	Height   int           `cbor:"height,omitempty"`
	Duration time.Duration `cbor:"duration,omitempty"`
	Artist   string        `cbor:"artist,omitempty"`
	Title    string        `cbor:"title,omitempty"`
	Album    string        `cbor:"album,omitempty"`
}

type storedNamespace struct {
	Fields map[string]string `cbor:"fields,omitempty"`
	Raw    []byte            `cbor:"raw,omitempty"`
}

type storedAsset struct {
	Essence    []byte                     `cbor:"essence"`
	Attributes storedAttributes           `cbor:"attributes"`
	Namespaces map[string]storedNamespace `cbor:"namespaces,omitempty"`
}

func encodeAsset(a *asset.Asset) ([]byte, error) {
	attrs := a.Attributes()
	rec := storedAsset{
		Essence: a.EssenceBytes(),
		Attributes: storedAttributes{
			MIMEType: attrs.MIMEType,
			Width:    attrs.Width,
			Height:   attrs.Height,
			Duration: attrs.Duration,
			Artist:   attrs.Artist,
			Title:    attrs.Title,
			Album:    attrs.Album,
		},
	}
	for _, name := range a.Namespaces() {
		ns, ok := a.Namespace(name)
		if !ok {
			continue
		}
		if rec.Namespaces == nil {
			rec.Namespaces = make(map[string]storedNamespace)
		}
		rec.Namespaces[name] = storedNamespace{Fields: ns.Fields(), Raw: ns.Raw()}
	}
	payload, err := encMode.Marshal(rec)
	if err != nil {
		return nil, media.Wrap(media.ErrStorage, "storage", "encode", "marshal asset", err)
	}
	return payload, nil
}

func decodeAsset(payload []byte) (*asset.Asset, error) {
	var rec storedAsset
	if err := decMode.Unmarshal(payload, &rec); err != nil {
		return nil, media.Wrap(media.ErrStorage, "storage", "decode", "unmarshal asset", err)
	}
	a := asset.New(rec.Essence, asset.Attributes{
		MIMEType: rec.Attributes.MIMEType,
		Width:    rec.Attributes.Width,
		Height:   rec.Attributes.Height,
		Duration: rec.Attributes.Duration,
		Artist:   rec.Attributes.Artist,
		Title:    rec.Attributes.Title,
		Album:    rec.Attributes.Album,
	})
	for name, ns := range rec.Namespaces {
		a = a.WithNamespace(name, asset.NewNamespace(ns.Fields).WithRaw(ns.Raw))
	}
	return a, nil
}
