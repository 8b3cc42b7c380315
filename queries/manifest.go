package queries

import (
	"bytes"

	"gopkg.in/yaml.v3"
	"xorkevin.dev/kerrors"
)

type (
	// Manifest describes the generated bindings of a package
	Manifest struct {
		Generator  string              `yaml:"generator"`
		Version    string              `yaml:"version"`
		Package    string              `yaml:"package"`
		Interfaces []ManifestInterface `yaml:"interfaces"`
	}

	// ManifestInterface describes a generated implementation
	ManifestInterface struct {
		Interface string           `yaml:"interface"`
		Impl      string           `yaml:"impl"`
		Complete  bool             `yaml:"complete"`
		Methods   []ManifestMethod `yaml:"methods"`
	}

	// ManifestMethod describes a generated query method
	ManifestMethod struct {
		Name       string            `yaml:"name"`
		Kind       string            `yaml:"kind"`
		Tx         string            `yaml:"tx"`
		Template   string            `yaml:"template"`
		Result     string            `yaml:"result,omitempty"`
		Parameters map[string]string `yaml:"parameters,omitempty"`
		Statement  string            `yaml:"statement"`
	}
)

// NewManifest builds the manifest of classified interfaces and their
// implementations
func NewManifest(version string, pkgName string, ifaces []QueriesAnnotatedInterface, impls []ImplSpec) Manifest {
	m := Manifest{
		Generator:  "cypherforge",
		Version:    version,
		Package:    pkgName,
		Interfaces: make([]ManifestInterface, 0, len(ifaces)),
	}
	for n, i := range ifaces {
		mi := ManifestInterface{
			Interface: i.InterfaceName,
			Impl:      impls[n].Impl,
			Complete:  i.Complete,
			Methods:   make([]ManifestMethod, 0, len(i.Methods)),
		}
		for _, j := range i.Methods {
			mm := ManifestMethod{
				Name:      j.Name,
				Kind:      j.QueryKind.String(),
				Tx:        j.TxKind.String(),
				Template:  string(j.Return.Template),
				Result:    j.Return.TypeRendering,
				Statement: j.QueryText,
			}
			if len(j.Parameters) != 0 {
				mm.Parameters = make(map[string]string, len(j.Parameters))
				for _, k := range j.Parameters {
					mm.Parameters[k.WireAlias] = k.DeclaredTypeRendering
				}
			}
			mi.Methods = append(mi.Methods, mm)
		}
		m.Interfaces = append(m.Interfaces, mi)
	}
	return m
}

func encodeManifest(version string, pkgName string, ifaces []QueriesAnnotatedInterface, impls []ImplSpec) ([]byte, error) {
	var b bytes.Buffer
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(NewManifest(version, pkgName, ifaces, impls)); err != nil {
		return nil, kerrors.WithMsg(err, "Failed to encode queries manifest")
	}
	if err := enc.Close(); err != nil {
		return nil, kerrors.WithMsg(err, "Failed to encode queries manifest")
	}
	return b.Bytes(), nil
}
