package typedesc

import (
	"fmt"
	"slices"
	"strings"
)

type (
	// Mapper is an expression template converting a value between its
	// declared type and its wire representation
	//
	// It is one of [StaticCall] or [InstanceCall]. A nil Mapper is the
	// identity.
	Mapper interface {
		// Render renders the mapper applied to the target expression
		Render(target string) string
		// WithArgument returns a copy of the mapper with arg appended to its
		// arguments
		WithArgument(arg string) Mapper
		// Slot is the name of the expression the mapper is rendered against by
		// default
		Slot() string
		mapper()
	}

	// StaticCall renders as Func(target, Args...)
	//
	// Value marks Func as usable as a function value. Conversions and generic
	// functions without explicit instantiation are not.
	StaticCall struct {
		Target string
		Func   string
		Args   []string
		Inner  Mapper
		Value  bool
	}

	// InstanceCall renders as target.Method(Args...)
	InstanceCall struct {
		Target string
		Method string
		Args   []string
		Inner  Mapper
	}
)

func (m StaticCall) Render(target string) string {
	args := make([]string, 0, len(m.Args)+1)
	args = append(args, Render(m.Inner, target))
	args = append(args, m.Args...)
	return m.Func + "(" + strings.Join(args, ", ") + ")"
}

func (m StaticCall) WithArgument(arg string) Mapper {
	m.Args = append(slices.Clip(m.Args), arg)
	return m
}

func (m StaticCall) Slot() string {
	return m.Target
}

func (m StaticCall) String() string {
	return m.Render(m.Target)
}

func (m StaticCall) mapper() {}

func (m InstanceCall) Render(target string) string {
	return Render(m.Inner, target) + "." + m.Method + "(" + strings.Join(m.Args, ", ") + ")"
}

func (m InstanceCall) WithArgument(arg string) Mapper {
	m.Args = append(slices.Clip(m.Args), arg)
	return m
}

func (m InstanceCall) Slot() string {
	return m.Target
}

func (m InstanceCall) String() string {
	return m.Render(m.Target)
}

func (m InstanceCall) mapper() {}

// Render renders m against target, treating nil as the identity
func Render(m Mapper, target string) string {
	if m == nil {
		return target
	}
	return m.Render(target)
}

// Compose returns a mapper applying inner and then outer
func Compose(outer, inner Mapper) Mapper {
	if outer == nil {
		return inner
	}
	if inner == nil {
		return outer
	}
	switch m := outer.(type) {
	case StaticCall:
		m.Inner = Compose(m.Inner, inner)
		return m
	case InstanceCall:
		m.Inner = Compose(m.Inner, inner)
		return m
	default:
		panic(fmt.Sprintf("unknown mapper %T", outer))
	}
}

// Equal reports whether two mappers render identically
func Equal(a, b Mapper) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Slot() == b.Slot() && a.Render(a.Slot()) == b.Render(b.Slot())
}

func isFuncValue(m Mapper) (string, bool) {
	s, ok := m.(StaticCall)
	if !ok || !s.Value || len(s.Args) != 0 || s.Inner != nil {
		return "", false
	}
	return s.Func, true
}

// DecoderFunc renders m as a function value of type func(any) (result, error)
func DecoderFunc(m Mapper, param, result string) string {
	if name, ok := isFuncValue(m); ok {
		return name
	}
	return fmt.Sprintf("func(%s any) (%s, error) { return %s }", param, result, Render(m, param))
}

// EncoderFunc renders m as a function value of type func(arg) any
func EncoderFunc(m Mapper, param, arg string) string {
	if name, ok := isFuncValue(m); ok {
		return name
	}
	return fmt.Sprintf("func(%s %s) any { return %s }", param, arg, Render(m, param))
}
