// Package catalog loads the role catalog: the fixed set of job roles a resume can be compared against.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/skillmatch/backend/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed roles.yaml
var builtinRoles []byte

// file is the on-disk shape of a catalog
type file struct {
	Roles []domain.Role `yaml:"roles"`
}

// Builtin returns the catalog compiled into the binary
func Builtin() (*domain.RoleCatalog, error) {
	return Parse(builtinRoles)
}

// Load returns the catalog at path, or the built-in one when path is empty
func Load(path string) (*domain.RoleCatalog, error) {
	if path == "" {
		return Builtin()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog file %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML catalog. Unknown fields are rejected so typos surface at startup.
func Parse(data []byte) (*domain.RoleCatalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	if len(f.Roles) == 0 {
		return nil, fmt.Errorf("catalog has no roles")
	}

	return domain.NewRoleCatalog(f.Roles)
}
