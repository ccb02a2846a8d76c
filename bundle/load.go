package bundle

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk catalog layout:
//
//	bundles:
//	  - key: week
//	    name: Week pass
//	    tokens: 100
//	    validity:
//	      days: 7
type catalogFile struct {
	Bundles []Definition `yaml:"bundles"`
}

// LoadCatalog decodes a YAML catalog from r.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return NewCatalog()
		}
		return nil, fmt.Errorf("bundle: decode catalog: %w", err)
	}
	return NewCatalog(f.Bundles...)
}

// LoadCatalogFile reads a YAML catalog from path.
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bundle: open catalog: %w", err)
	}
	defer f.Close()

	return LoadCatalog(f)
}
