package asset

import "time"

// ReservedNamespace is the name under which curator's own attributes would
// appear in serialized form. Metadata processors must not claim it as a
// format name.
const ReservedNamespace = "curator"

// Attributes captures the fields curator derives for every asset regardless
// of format. The zero value is valid; unknown fields stay at their zero
// values.
type Attributes struct {
	MIMEType string
	Width    int
	Height   int
	Duration time.Duration
	Artist   string
	Title    string
	Album    string
}
