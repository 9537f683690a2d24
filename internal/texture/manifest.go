package texture

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultManifestName is the manifest file looked up inside an asset
// directory.
const DefaultManifestName = "textures.yaml"

// Manifest maps texture roles to files.
//
// Example textures.yaml:
//
//	textures:
//	  - role: start
//	    file: startSpace.png
//	    width: 128
//	    height: 128
type Manifest struct {
	Textures []Entry `yaml:"textures"`
}

// Entry describes one texture file.
type Entry struct {
	Role   string `yaml:"role"`
	File   string `yaml:"file"`
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
}

// DefaultManifest returns the manifest used when an asset directory has no
// manifest file.
func DefaultManifest() Manifest {
	return Manifest{Textures: []Entry{
		{Role: RoleStart.String(), File: "startSpace.png"},
		{Role: RoleNormal.String(), File: "space.png"},
		{Role: RoleSpecial.String(), File: "specialSpace.png"},
		{Role: RoleTarget.String(), File: "targetSpace.png"},
	}}
}

// ParseManifest decodes and validates a YAML manifest.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse texture manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// LoadManifest reads the manifest at path. A missing file yields the
// default manifest.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultManifest(), nil
	}
	if err != nil {
		return Manifest{}, fmt.Errorf("read texture manifest: %w", err)
	}
	return ParseManifest(data)
}

// Validate checks that every role is known, appears at most once and has
// a file.
func (m Manifest) Validate() error {
	seen := make(map[Role]bool, Count)
	for i, e := range m.Textures {
		r, err := ParseRole(e.Role)
		if err != nil {
			return fmt.Errorf("texture manifest entry %d: %w", i, err)
		}
		if seen[r] {
			return fmt.Errorf("texture manifest entry %d: duplicate role %s", i, r)
		}
		seen[r] = true
		if e.File == "" {
			return fmt.Errorf("texture manifest entry %d: file is required", i)
		}
		if e.Width < 0 || e.Height < 0 {
			return fmt.Errorf("texture manifest entry %d: negative size", i)
		}
	}
	return nil
}

// Lookup returns the entry for r.
func (m Manifest) Lookup(r Role) (Entry, bool) {
	for _, e := range m.Textures {
		if pr, err := ParseRole(e.Role); err == nil && pr == r {
			return e, true
		}
	}
	return Entry{}, false
}
