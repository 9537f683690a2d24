package texture

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/Iron-Ham/invisiboga/internal/errors"
)

// DirProvider loads textures from a directory described by a manifest.
type DirProvider struct {
	Dir string
	// ManifestName defaults to DefaultManifestName.
	ManifestName string
}

// NewDirProvider creates a DirProvider for dir.
func NewDirProvider(dir, manifestName string) *DirProvider {
	if manifestName == "" {
		manifestName = DefaultManifestName
	}
	return &DirProvider{Dir: dir, ManifestName: manifestName}
}

// LoadOrdered implements Provider. A manifest error fails the whole load;
// per-file errors leave that slot nil.
func (p *DirProvider) LoadOrdered() ([]*Texture, error) {
	manifest, err := LoadManifest(filepath.Join(p.Dir, p.ManifestName))
	if err != nil {
		return make([]*Texture, Count), err
	}

	out := make([]*Texture, Count)
	var errs []error
	for _, role := range Roles() {
		entry, ok := manifest.Lookup(role)
		if !ok {
			errs = append(errs, errors.Wrapf(errors.ErrTextureMissing, "role %s not in manifest", role))
			continue
		}
		tex, err := p.load(role, entry)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out[role] = tex
	}
	return out, errors.Join(errs...)
}

func (p *DirProvider) load(role Role, e Entry) (*Texture, error) {
	path := filepath.Join(p.Dir, e.File)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.Join(errors.ErrTextureMissing, err), "texture %s", role)
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, errors.Wrapf(errors.ErrNotImage, "texture %s (%s is %s)", role, e.File, mtype.String())
	}

	return &Texture{
		Role:   role,
		Name:   strings.TrimSuffix(e.File, filepath.Ext(e.File)),
		Width:  e.Width,
		Height: e.Height,
		MIME:   mtype.String(),
		Data:   data,
	}, nil
}

// PlaceholderMIME is the MIME type of generated placeholder textures.
const PlaceholderMIME = "image/x-raw-rgba"

// PlaceholderProvider generates a solid-colour 1x1 RGBA texture per role.
// It is used when no asset directory is configured.
type PlaceholderProvider struct{}

var placeholderColors = map[Role][4]byte{
	RoleStart:   {0x2e, 0xcc, 0x71, 0xff},
	RoleNormal:  {0xbd, 0xc3, 0xc7, 0xff},
	RoleSpecial: {0xf1, 0xc4, 0x0f, 0xff},
	RoleTarget:  {0xe7, 0x4c, 0x3c, 0xff},
}

var placeholderNames = map[Role]string{
	RoleStart:   "startSpace",
	RoleNormal:  "space",
	RoleSpecial: "specialSpace",
	RoleTarget:  "targetSpace",
}

// LoadOrdered implements Provider.
func (PlaceholderProvider) LoadOrdered() ([]*Texture, error) {
	out := make([]*Texture, Count)
	for _, role := range Roles() {
		c := placeholderColors[role]
		out[role] = &Texture{
			Role:   role,
			Name:   placeholderNames[role],
			Width:  1,
			Height: 1,
			MIME:   PlaceholderMIME,
			Data:   c[:],
		}
	}
	return out, nil
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func() ([]*Texture, error)

// LoadOrdered calls f.
func (f ProviderFunc) LoadOrdered() ([]*Texture, error) { return f() }
