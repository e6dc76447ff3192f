package artifact

import (
	"errors"
	"fmt"
)

// Sentinel errors for constructor selection.
var (
	ErrNoConstructor        = errors.New("artifact: constructor not found")
	ErrAmbiguousConstructor = errors.New("artifact: constructor label is ambiguous")
)

// MetadataError reports malformed bundle metadata.
type MetadataError struct {
	Reason string
	Err    error
}

func (e *MetadataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("artifact: %s: %v", e.Reason, e.Err)
	}
	return "artifact: " + e.Reason
}

func (e *MetadataError) Unwrap() error {
	return e.Err
}

// Constructor resolves a constructor by label. It fails if the label does
// not resolve to exactly one constructor.
func (m Metadata) Constructor(label string) (Constructor, error) {
	var found []Constructor
	for _, c := range m.Constructors {
		if c.Label == label {
			found = append(found, c)
		}
	}
	switch len(found) {
	case 0:
		return Constructor{}, fmt.Errorf("%w: %q", ErrNoConstructor, label)
	case 1:
		return found[0], nil
	default:
		return Constructor{}, fmt.Errorf("%w: %q matches %d constructors", ErrAmbiguousConstructor, label, len(found))
	}
}

// ConstructorAt resolves a constructor by position in the metadata.
func (m Metadata) ConstructorAt(index int) (Constructor, error) {
	if index < 0 || index >= len(m.Constructors) {
		return Constructor{}, fmt.Errorf("%w: index %d of %d", ErrNoConstructor, index, len(m.Constructors))
	}
	return m.Constructors[index], nil
}
