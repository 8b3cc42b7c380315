package typedesc

import (
	"maps"
	"sync"
)

const (
	PathNeo4j  = "github.com/neo4j/neo4j-go-driver/v5/neo4j"
	PathDBType = PathNeo4j + "/dbtype"
	PathDB     = PathNeo4j + "/db"
	PathIter   = "iter"
	PathAtomic = "sync/atomic"
)

const (
	NameString         = "string"
	NameNullableString = "*string"
	NameAny            = "any"
	NameError          = "error"
	NameTime           = "time.Time"
	NameContext        = "context.Context"

	NameNode          = PathDBType + ".Node"
	NameRelationship  = PathDBType + ".Relationship"
	NamePath          = PathDBType + ".Path"
	NameEntity        = PathDBType + ".Entity"
	NamePoint2D       = PathDBType + ".Point2D"
	NamePoint3D       = PathDBType + ".Point3D"
	NameDate          = PathDBType + ".Date"
	NameLocalTime     = PathDBType + ".LocalTime"
	NameLocalDateTime = PathDBType + ".LocalDateTime"
	NameOffsetTime    = PathDBType + ".Time"
	NameDuration      = PathDBType + ".Duration"
	NameRecord        = "*" + PathDB + ".Record"

	NameAtomicBool    = "*" + PathAtomic + ".Bool"
	NameAtomicInt32   = "*" + PathAtomic + ".Int32"
	NameAtomicInt64   = "*" + PathAtomic + ".Int64"
	NameAtomicUint32  = "*" + PathAtomic + ".Uint32"
	NameAtomicPointer = "*" + PathAtomic + ".Pointer"
)

type (
	// Catalog is the read only set of well known type names
	Catalog struct {
		containers map[string]Shape
		aliases    map[string]string
		natives    map[string]struct{}
	}
)

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c := &Catalog{
		containers: map[string]Shape{
			PathIter + ".Seq":  ShapeCollection,
			PathIter + ".Seq2": ShapeStream,
		},
		aliases: map[string]string{},
		natives: map[string]struct{}{
			NameString:        {},
			NameAny:           {},
			NameTime:          {},
			NamePoint2D:       {},
			NamePoint3D:       {},
			NameDate:          {},
			NameLocalTime:     {},
			NameLocalDateTime: {},
			NameOffsetTime:    {},
			NameDuration:      {},
		},
	}
	for _, i := range []string{
		"Node",
		"Relationship",
		"Path",
		"Entity",
		"Point2D",
		"Point3D",
		"Date",
		"LocalTime",
		"LocalDateTime",
		"Time",
		"Duration",
	} {
		c.aliases[PathNeo4j+"."+i] = PathDBType + "." + i
	}
	c.aliases[PathNeo4j+".Record"] = PathDB + ".Record"
	return c
})

// DefaultCatalog returns the catalog of types understood by the driver
func DefaultCatalog() *Catalog {
	return defaultCatalog()
}

// NewCatalog returns the default catalog with additional reference type names
// treated as natively supported by the driver
func NewCatalog(natives []string) *Catalog {
	d := DefaultCatalog()
	if len(natives) == 0 {
		return d
	}
	c := &Catalog{
		containers: d.containers,
		aliases:    d.aliases,
		natives:    maps.Clone(d.natives),
	}
	for _, i := range natives {
		c.natives[i] = struct{}{}
	}
	return c
}

// Container returns the shape of a generic container type name
func (c *Catalog) Container(name string) (Shape, bool) {
	s, ok := c.containers[name]
	return s, ok
}

// Canonical returns the canonical name of a qualified type name
func (c *Catalog) Canonical(name string) string {
	if k, ok := c.aliases[name]; ok {
		return k
	}
	return name
}

// IsNative reports whether values of the reference type name are sent to the
// driver as is
func (c *Catalog) IsNative(name string) bool {
	_, ok := c.natives[name]
	return ok
}
