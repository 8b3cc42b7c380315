package typedesc

import (
	"errors"

	"xorkevin.dev/kerrors"
)

var (
	// ErrUnsupportedType is returned when a type is outside of the classified
	// algebra
	ErrUnsupportedType errUnsupportedType
	// ErrUnsupportedNesting is returned when containers are nested past the
	// nesting cap or a stream is not a top level type
	ErrUnsupportedNesting errUnsupportedNesting
	// ErrAmbiguousKeyType is returned when a map key is not a string
	ErrAmbiguousKeyType errAmbiguousKeyType
)

type (
	errUnsupportedType    struct{}
	errUnsupportedNesting struct{}
	errAmbiguousKeyType   struct{}
)

func (e errUnsupportedType) Error() string {
	return "Unsupported type"
}

func (e errUnsupportedNesting) Error() string {
	return "Unsupported nesting"
}

func (e errAmbiguousKeyType) Error() string {
	return "Ambiguous key type"
}

type (
	// IllegalDefinition is the declaration a query definition error is
	// reported against
	IllegalDefinition struct {
		Anchor Anchor
	}
)

func (e *IllegalDefinition) Error() string {
	return "Illegal query definition " + e.Anchor.String()
}

// Illegal returns an error of kind anchored at root
func Illegal(root Anchor, kind error, reason string) error {
	return kerrors.WithKind(&IllegalDefinition{Anchor: root}, kind, reason)
}

// AnchorOf returns the anchor of an error returned by [Illegal]
func AnchorOf(err error) (Anchor, bool) {
	var e *IllegalDefinition
	if !errors.As(err, &e) {
		return Anchor{}, false
	}
	return e.Anchor, true
}
