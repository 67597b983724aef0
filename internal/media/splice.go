package media

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"
)

// Cut records a contiguous block removed from a stream and the offset in the
// stripped output where it was taken from. Metadata processors store cut
// lists in a namespace's raw payload so Embed can restore the original bytes
// exactly.
type Cut struct {
	Offset int64  `cbor:"offset"`
	Block  []byte `cbor:"block"`
}

// EncodeCuts serializes a cut list for storage in a namespace raw payload.
func EncodeCuts(cuts []Cut) ([]byte, error) {
	if len(cuts) == 0 {
		return nil, nil
	}
	data, err := cbor.Marshal(cuts)
	if err != nil {
		return nil, Wrap(ErrValidation, "media", "encode cuts", "cannot serialize cut list", err)
	}
	return data, nil
}

// DecodeCuts parses a raw payload produced by EncodeCuts. An empty payload
// decodes to an empty list.
func DecodeCuts(raw []byte) ([]Cut, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var cuts []Cut
	if err := cbor.Unmarshal(raw, &cuts); err != nil {
		return nil, Wrap(ErrValidation, "media", "decode cuts", "malformed cut list", err)
	}
	return cuts, nil
}

// Insert splices the cut blocks back into the stripped essence at their
// recorded offsets and returns the rebuilt stream. Offsets refer to positions
// in the stripped essence and must fall inside it.
func Insert(essence []byte, cuts []Cut) ([]byte, error) {
	if len(cuts) == 0 {
		return bytes.Clone(essence), nil
	}
	ordered := make([]Cut, len(cuts))
	copy(ordered, cuts)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Offset < ordered[j].Offset })

	total := len(essence)
	for _, cut := range ordered {
		total += len(cut.Block)
	}
	out := make([]byte, 0, total)
	var pos int64
	for idx, cut := range ordered {
		if cut.Offset < pos || cut.Offset > int64(len(essence)) {
			return nil, Wrap(ErrValidation, "media", "insert cuts",
				fmt.Sprintf("cut %d offset %d outside stripped stream of %d bytes", idx, cut.Offset, len(essence)), nil)
		}
		out = append(out, essence[pos:cut.Offset]...)
		out = append(out, cut.Block...)
		pos = cut.Offset
	}
	out = append(out, essence[pos:]...)
	return out, nil
}
