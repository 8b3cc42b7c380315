// Package typedesc classifies go type expressions of query method signatures
// into a closed algebra of descriptors
package typedesc

import (
	"fmt"
	"go/token"
)

type (
	// Kind is the kind of a scalar
	Kind int

	// Shape is the shape of a container
	Shape int
)

const (
	KindUnknown Kind = iota
	KindBool
	KindChar
	KindByte
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindVoid
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindByte:
		return "byte"
	case KindShort:
		return "short"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindVoid:
		return "void"
	default:
		return "unknown"
	}
}

const (
	ShapeUnknown Shape = iota
	ShapeList
	ShapeCollection
	ShapeMap
	ShapeStream
)

func (s Shape) String() string {
	switch s {
	case ShapeList:
		return "slice"
	case ShapeCollection:
		return "iter.Seq"
	case ShapeMap:
		return "map"
	case ShapeStream:
		return "iter.Seq2"
	default:
		return "unknown"
	}
}

type (
	// Descriptor is a classified type
	//
	// It is one of [Primitive], [Boxed], [Reference], [ArrayOf], or [Container].
	Descriptor interface {
		// Rendering is the go source of the type
		Rendering() string
		descriptor()
	}

	// Primitive is a non-nullable scalar
	Primitive struct {
		Kind   Kind
		Name   string
		Source string
	}

	// Boxed is a nullable scalar or void
	Boxed struct {
		Kind   Kind
		Name   string
		Source string
	}

	// Reference is an opaque type recognized by its qualified name
	Reference struct {
		Name   string
		Args   []Descriptor
		Local  bool
		Source string
	}

	// ArrayOf is a byte slice
	ArrayOf struct {
		Component Descriptor
		Source    string
	}

	// Container is a slice, sequence, map, or stream
	Container struct {
		Shape        Shape
		Args         []Descriptor
		NestingLevel int
		Source       string
	}
)

func (d Primitive) Rendering() string { return d.Source }
func (d Boxed) Rendering() string     { return d.Source }
func (d Reference) Rendering() string { return d.Source }
func (d ArrayOf) Rendering() string   { return d.Source }
func (d Container) Rendering() string { return d.Source }

func (d Primitive) descriptor() {}
func (d Boxed) descriptor()     {}
func (d Reference) descriptor() {}
func (d ArrayOf) descriptor()   {}
func (d Container) descriptor() {}

// Elem returns the element type of a slice, sequence, or stream, or the value
// type of a map
func (d Container) Elem() Descriptor {
	if d.Shape == ShapeMap {
		return d.Args[1]
	}
	return d.Args[0]
}

// IsReference reports whether d is the reference type name
func IsReference(d Descriptor, name string) bool {
	r, ok := d.(Reference)
	return ok && r.Name == name
}

// IsVoid reports whether d is void
func IsVoid(d Descriptor) bool {
	b, ok := d.(Boxed)
	return ok && b.Kind == KindVoid
}

type (
	// Anchor is the declaration an error is reported against
	Anchor struct {
		Pos     token.Position
		Element string
	}
)

func (a Anchor) String() string {
	if !a.Pos.IsValid() {
		return a.Element
	}
	return fmt.Sprintf("%s: %s", a.Pos, a.Element)
}
