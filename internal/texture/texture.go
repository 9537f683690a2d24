// Package texture provides the ordered static textures the engine indexes
// positionally during bring-up.
//
// The order is fixed and documented as {start, normal, special, target}.
// Pixel data is carried opaque; no image decoding happens here.
package texture

import (
	"fmt"
	"strings"
)

// Role identifies a texture slot. The numeric value is the index the
// engine uses.
type Role int

const (
	RoleStart Role = iota
	RoleNormal
	RoleSpecial
	RoleTarget
)

// Count is the number of texture slots.
const Count = 4

// Roles returns every role in engine index order.
func Roles() []Role {
	return []Role{RoleStart, RoleNormal, RoleSpecial, RoleTarget}
}

// String returns the manifest name of the role.
func (r Role) String() string {
	switch r {
	case RoleStart:
		return "start"
	case RoleNormal:
		return "normal"
	case RoleSpecial:
		return "special"
	case RoleTarget:
		return "target"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseRole converts a manifest name to a Role.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles() {
		if strings.EqualFold(s, r.String()) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown texture role %q", s)
}

// Texture is one static asset handed to the engine.
type Texture struct {
	Role   Role
	Name   string
	Width  int
	Height int
	MIME   string
	Data   []byte
}

// String returns a short description for logs.
func (t *Texture) String() string {
	if t == nil {
		return "<nil texture>"
	}
	return fmt.Sprintf("%s(%s %dx%d %s, %d bytes)", t.Role, t.Name, t.Width, t.Height, t.MIME, len(t.Data))
}

// Provider loads the ordered texture set.
type Provider interface {
	// LoadOrdered returns exactly Count entries in Roles() order. Entries
	// that could not be loaded are nil and reported in the returned error.
	LoadOrdered() ([]*Texture, error)
}

// Set is a loaded, ordered texture set with bounds-checked access.
type Set []*Texture

// At returns the texture at index i, or nil if i is out of range or the
// slot failed to load.
func (s Set) At(i int) *Texture {
	if i < 0 || i >= len(s) {
		return nil
	}
	return s[i]
}

// Loaded returns the number of non-nil entries.
func (s Set) Loaded() int {
	n := 0
	for _, t := range s {
		if t != nil {
			n++
		}
	}
	return n
}
