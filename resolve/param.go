package resolve

import (
	"fmt"

	"xorkevin.dev/cypherforge/typedesc"
)

type (
	// Serializer is the plan for sending a parameter to the driver
	//
	// Native marks values sent as is, which containers copy in bulk.
	Serializer struct {
		Mapper typedesc.Mapper
		Native bool
	}
)

func conversion(fn string) typedesc.StaticCall {
	return typedesc.StaticCall{
		Target: "value",
		Func:   fn,
	}
}

func encoder(name string) typedesc.StaticCall {
	return typedesc.StaticCall{
		Target: "value",
		Func:   pkgRuntime + name,
	}
}

var load = typedesc.InstanceCall{
	Target: "value",
	Method: "Load",
}

func unsupportedParam(root typedesc.Anchor, src string) error {
	return typedesc.Illegal(root, typedesc.ErrUnsupportedType, fmt.Sprintf("Type %s is not supported as a parameter", src))
}

// Parameter plans the serialization of a parameter of type d
func (r Resolver) Parameter(root typedesc.Anchor, d typedesc.Descriptor) (Serializer, error) {
	switch d := d.(type) {
	case typedesc.Primitive:
		return primitiveSerializer(root, d)
	case typedesc.Boxed:
		return boxedSerializer(root, d)
	case typedesc.ArrayOf:
		return Serializer{Native: true}, nil
	case typedesc.Reference:
		return r.referenceSerializer(root, d)
	case typedesc.Container:
		return r.containerSerializer(root, d)
	default:
		return Serializer{}, unsupportedParam(root, d.Rendering())
	}
}

func primitiveSerializer(root typedesc.Anchor, d typedesc.Primitive) (Serializer, error) {
	switch d.Kind {
	case typedesc.KindBool, typedesc.KindLong, typedesc.KindDouble:
		return Serializer{Native: true}, nil
	case typedesc.KindByte, typedesc.KindShort, typedesc.KindInt:
		return Serializer{Mapper: conversion("int64")}, nil
	case typedesc.KindFloat:
		return Serializer{Mapper: conversion("float64")}, nil
	case typedesc.KindChar:
		return Serializer{Mapper: conversion("string")}, nil
	default:
		return Serializer{}, unsupportedParam(root, d.Source)
	}
}

func boxedSerializer(root typedesc.Anchor, d typedesc.Boxed) (Serializer, error) {
	switch d.Kind {
	case typedesc.KindBool, typedesc.KindLong, typedesc.KindDouble:
		return Serializer{Mapper: encoder("FromNullable")}, nil
	case typedesc.KindByte, typedesc.KindShort, typedesc.KindInt:
		return Serializer{Mapper: encoder("FromNullableInteger")}, nil
	case typedesc.KindFloat:
		return Serializer{Mapper: encoder("FromNullableFloat")}, nil
	case typedesc.KindChar:
		m := encoder("FromNullableChar")
		m.Value = true
		return Serializer{Mapper: m}, nil
	default:
		return Serializer{}, unsupportedParam(root, d.Source)
	}
}

func (r Resolver) referenceSerializer(root typedesc.Anchor, d typedesc.Reference) (Serializer, error) {
	if d.Local {
		return Serializer{}, unsupportedParam(root, d.Source)
	}
	switch d.Name {
	case typedesc.NameNullableString:
		return Serializer{Mapper: encoder("FromNullable")}, nil
	case typedesc.NameAtomicBool, typedesc.NameAtomicInt64:
		return Serializer{Mapper: load}, nil
	case typedesc.NameAtomicInt32, typedesc.NameAtomicUint32:
		return Serializer{Mapper: typedesc.Compose(conversion("int64"), load)}, nil
	case typedesc.NameAtomicPointer:
		if len(d.Args) != 1 {
			return Serializer{}, unsupportedParam(root, d.Source)
		}
		elem, err := pointerTo(root, d.Args[0])
		if err != nil {
			return Serializer{}, err
		}
		s, err := r.Parameter(root, elem)
		if err != nil {
			return Serializer{}, err
		}
		return Serializer{Mapper: typedesc.Compose(s.Mapper, load)}, nil
	}
	if len(d.Args) != 0 || !r.Catalog.IsNative(d.Name) {
		return Serializer{}, unsupportedParam(root, d.Source)
	}
	return Serializer{Native: true}, nil
}

func pointerTo(root typedesc.Anchor, d typedesc.Descriptor) (typedesc.Descriptor, error) {
	switch d := d.(type) {
	case typedesc.Primitive:
		return typedesc.Boxed{Kind: d.Kind, Name: d.Name, Source: "*" + d.Source}, nil
	case typedesc.Reference:
		if d.Local || len(d.Args) != 0 {
			return nil, unsupportedParam(root, "*"+d.Source)
		}
		return typedesc.Reference{Name: "*" + d.Name, Source: "*" + d.Source}, nil
	default:
		return nil, unsupportedParam(root, "*"+d.Rendering())
	}
}

func (r Resolver) containerSerializer(root typedesc.Anchor, d typedesc.Container) (Serializer, error) {
	if d.Shape == typedesc.ShapeStream {
		return Serializer{}, unsupportedParam(root, d.Source)
	}
	elem := d.Elem()
	comp, err := r.Parameter(root, elem)
	if err != nil {
		return Serializer{}, err
	}
	var m typedesc.StaticCall
	switch d.Shape {
	case typedesc.ShapeList:
		if comp.Native {
			return Serializer{Mapper: encoder("CopySlice")}, nil
		}
		m = encoder("FromSlice")
	case typedesc.ShapeCollection:
		if comp.Native {
			return Serializer{Mapper: encoder("CollectSeq")}, nil
		}
		m = encoder("FromSeq")
	case typedesc.ShapeMap:
		if comp.Native {
			return Serializer{Native: true}, nil
		}
		m = encoder("FromMap")
	default:
		return Serializer{}, unsupportedParam(root, d.Source)
	}
	return Serializer{
		Mapper: m.WithArgument(typedesc.EncoderFunc(comp.Mapper, fmt.Sprintf("e%d", d.NestingLevel+1), elem.Rendering())),
	}, nil
}
