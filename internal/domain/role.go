package domain

import "fmt"

// Role is a job role from the catalog with the text its skills are extracted from
type Role struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// RoleCatalog is the read-only, ordered set of known roles.
// It is built once at startup and never mutated afterwards.
type RoleCatalog struct {
	roles  []Role
	byName map[string]int
}

// NewRoleCatalog validates the roles and builds a catalog preserving their order
func NewRoleCatalog(roles []Role) (*RoleCatalog, error) {
	c := &RoleCatalog{
		roles:  make([]Role, 0, len(roles)),
		byName: make(map[string]int, len(roles)),
	}
	for i, r := range roles {
		if r.Name == "" {
			return nil, fmt.Errorf("role %d has an empty name", i)
		}
		if _, dup := c.byName[r.Name]; dup {
			return nil, fmt.Errorf("duplicate role %q", r.Name)
		}
		c.byName[r.Name] = len(c.roles)
		c.roles = append(c.roles, r)
	}
	return c, nil
}

// Lookup returns the role with the given name
func (c *RoleCatalog) Lookup(name string) (Role, error) {
	idx, ok := c.byName[name]
	if !ok {
		return Role{}, fmt.Errorf("%w: %q", ErrRoleNotFound, name)
	}
	return c.roles[idx], nil
}

// Roles returns a copy of all roles in catalog order
func (c *RoleCatalog) Roles() []Role {
	out := make([]Role, len(c.roles))
	copy(out, c.roles)
	return out
}

// Names returns the role names in catalog order
func (c *RoleCatalog) Names() []string {
	names := make([]string, len(c.roles))
	for i, r := range c.roles {
		names[i] = r.Name
	}
	return names
}

// Len returns the number of roles
func (c *RoleCatalog) Len() int {
	return len(c.roles)
}
