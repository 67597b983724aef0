package media

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFormat tags reads and operator applications on data no
	// registered processor claims.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrValidation tags malformed parameters rejected before any media work
	// starts.
	ErrValidation = errors.New("validation error")
	// ErrOperator tags operator applications that failed on otherwise
	// supported input.
	ErrOperator = errors.New("operator failure")
	// ErrStorage tags persistence failures in asset stores.
	ErrStorage = errors.New("storage error")
	// ErrNoMetadata signals that a stream carries no metadata in the
	// processor's format. The read dispatcher treats it as an absent
	// namespace, never as a failure.
	ErrNoMetadata = errors.New("no metadata")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for errors.Is classification. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrOperator
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "media failure"
	}
	return strings.Join(parts, ": ")
}
