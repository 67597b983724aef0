package asset

import (
	"bytes"
	"maps"
	"sort"

	"golang.org/x/text/unicode/norm"
)

// Namespace holds one metadata format's view of an asset: flat parsed fields
// for querying plus an opaque raw payload the owning processor uses to splice
// the metadata back into the essence byte for byte.
type Namespace struct {
	fields map[string]string
	raw    []byte
}

// NewNamespace builds a namespace from parsed fields. Values are normalized
// to NFC so differently composed encodings of the same text compare equal;
// entries with empty values are dropped.
func NewNamespace(fields map[string]string) Namespace {
	ns := Namespace{}
	for key, value := range fields {
		if key == "" || value == "" {
			continue
		}
		if ns.fields == nil {
			ns.fields = make(map[string]string, len(fields))
		}
		ns.fields[key] = norm.NFC.String(value)
	}
	return ns
}

// WithRaw returns a copy of the namespace carrying the supplied raw payload.
// The slice is copied; the layout is defined by the processor that owns the
// format.
func (n Namespace) WithRaw(raw []byte) Namespace {
	out := n.clone()
	out.raw = bytes.Clone(raw)
	return out
}

// Field returns the value for key, or the empty string when absent.
func (n Namespace) Field(key string) string {
	return n.fields[key]
}

// Keys lists the field names in sorted order.
func (n Namespace) Keys() []string {
	if len(n.fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(n.fields))
	for key := range n.fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Fields returns a copy of the parsed fields.
func (n Namespace) Fields() map[string]string {
	if len(n.fields) == 0 {
		return nil
	}
	return maps.Clone(n.fields)
}

// Raw returns a copy of the processor-defined raw payload.
func (n Namespace) Raw() []byte {
	return bytes.Clone(n.raw)
}

// Len reports the number of parsed fields.
func (n Namespace) Len() int {
	return len(n.fields)
}

// Equal reports whether both namespaces carry the same fields and raw
// payload.
func (n Namespace) Equal(other Namespace) bool {
	return maps.Equal(n.fields, other.fields) && bytes.Equal(n.raw, other.raw)
}

func (n Namespace) clone() Namespace {
	return Namespace{
		fields: maps.Clone(n.fields),
		raw:    bytes.Clone(n.raw),
	}
}
