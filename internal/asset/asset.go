package asset

import (
	"bytes"
	"maps"
	"sort"
)

// Asset pairs essence bytes with attributes and namespaced metadata. Assets
// are immutable: constructors and With helpers copy, and accessors never
// expose internal state for mutation.
type Asset struct {
	essence    []byte
	attrs      Attributes
	namespaces map[string]Namespace
}

// New builds an asset from essence bytes and attributes. The essence slice is
// copied, so callers keep ownership of their buffer.
func New(essence []byte, attrs Attributes) *Asset {
	return &Asset{
		essence: bytes.Clone(essence),
		attrs:   attrs,
	}
}

// Essence returns an independent reader over the essence. Every call yields a
// fresh cursor positioned at the start, so concurrent readers never interfere.
func (a *Asset) Essence() *bytes.Reader {
	return bytes.NewReader(a.essence)
}

// EssenceBytes returns a copy of the essence.
func (a *Asset) EssenceBytes() []byte {
	return bytes.Clone(a.essence)
}

// Size reports the essence length in bytes.
func (a *Asset) Size() int64 {
	return int64(len(a.essence))
}

// MIMEType returns the MIME type recorded in the attributes.
func (a *Asset) MIMEType() string {
	return a.attrs.MIMEType
}

// Attributes returns the typed attribute set.
func (a *Asset) Attributes() Attributes {
	return a.attrs
}

// Namespace returns the metadata namespace registered under name.
func (a *Asset) Namespace(name string) (Namespace, bool) {
	ns, ok := a.namespaces[name]
	return ns, ok
}

// Namespaces lists the attached namespace names in sorted order.
func (a *Asset) Namespaces() []string {
	if len(a.namespaces) == 0 {
		return nil
	}
	names := make([]string, 0, len(a.namespaces))
	for name := range a.namespaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithAttributes returns a copy of the asset with the attributes replaced.
func (a *Asset) WithAttributes(attrs Attributes) *Asset {
	out := a.clone()
	out.attrs = attrs
	return out
}

// WithNamespace returns a copy of the asset with the namespace attached,
// replacing any namespace already stored under the same name.
func (a *Asset) WithNamespace(name string, ns Namespace) *Asset {
	out := a.clone()
	if out.namespaces == nil {
		out.namespaces = make(map[string]Namespace, 1)
	}
	out.namespaces[name] = ns
	return out
}

// WithoutNamespace returns a copy of the asset with the named namespace
// removed. Removing an absent namespace yields an equal asset.
func (a *Asset) WithoutNamespace(name string) *Asset {
	out := a.clone()
	delete(out.namespaces, name)
	if len(out.namespaces) == 0 {
		out.namespaces = nil
	}
	return out
}

// Equal reports deep value equality: essence bytes, attributes, and every
// namespace must match. A nil asset equals nothing.
func (a *Asset) Equal(other *Asset) bool {
	if a == nil || other == nil {
		return false
	}
	if a.attrs != other.attrs {
		return false
	}
	if !bytes.Equal(a.essence, other.essence) {
		return false
	}
	if len(a.namespaces) != len(other.namespaces) {
		return false
	}
	for name, ns := range a.namespaces {
		otherNS, ok := other.namespaces[name]
		if !ok || !ns.Equal(otherNS) {
			return false
		}
	}
	return true
}

func (a *Asset) clone() *Asset {
	return &Asset{
		essence:    a.essence,
		attrs:      a.attrs,
		namespaces: maps.Clone(a.namespaces),
	}
}
