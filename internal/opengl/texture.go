package opengl

import (
	"github.com/pkg/errors"
)

// Texture is an owned 2D or 2D-multisample texture object.
//
// SetSize records the dimensions; storage is (re)allocated by SetData, whose
// format arguments are remembered so Reallocate can repeat the allocation
// after a resize.
type Texture struct {
	api     API
	id      uint32
	target  uint32
	samples int32

	width  int32
	height int32

	internalFormat int32
	format         uint32
	xtype          uint32
}

// NewTexture returns an ungenerated 2D texture.
func NewTexture(api API) *Texture {
	return &Texture{api: api, target: TEXTURE_2D, width: 1, height: 1}
}

// NewMultisampleTexture returns an ungenerated 2D-multisample texture.
func NewMultisampleTexture(api API, samples int) *Texture {
	if samples < 1 {
		samples = 1
	}
	return &Texture{
		api:     api,
		target:  TEXTURE_2D_MULTISAMPLE,
		samples: int32(samples),
		width:   1,
		height:  1,
	}
}

func (t *Texture) ID() uint32     { return t.id }
func (t *Texture) Target() uint32 { return t.target }
func (t *Texture) Samples() int   { return int(t.samples) }

// IsInteger reports whether the last allocation used an integer pixel format.
func (t *Texture) IsInteger() bool {
	return t.format == RED_INTEGER || t.format == RG_INTEGER || t.format == RGBA_INTEGER
}

// Size returns the dimensions set by the last successful SetSize.
func (t *Texture) Size() (int, int) { return int(t.width), int(t.height) }

// Generate creates the GL name. Calling it twice is a no-op.
func (t *Texture) Generate() error {
	if t.id != 0 {
		return nil
	}
	t.id = t.api.GenTexture()
	if t.target == TEXTURE_2D {
		t.api.BindTexture(t.target, t.id)
		t.api.TexParameteri(t.target, TEXTURE_MIN_FILTER, NEAREST)
		t.api.TexParameteri(t.target, TEXTURE_MAG_FILTER, NEAREST)
		t.api.TexParameteri(t.target, TEXTURE_WRAP_S, CLAMP_TO_EDGE)
		t.api.TexParameteri(t.target, TEXTURE_WRAP_T, CLAMP_TO_EDGE)
		t.api.BindTexture(t.target, 0)
	}
	return Check(t.api, "Texture.Generate")
}

// Bind makes the texture current on texture unit `unit`.
func (t *Texture) Bind(unit uint32) {
	t.api.ActiveTexture(TEXTURE0 + unit)
	t.api.BindTexture(t.target, t.id)
}

// SetSize records new dimensions. Both must be at least 1.
func (t *Texture) SetSize(width, height int) error {
	if width < 1 || height < 1 {
		return errors.Wrapf(ErrInvalidSize, "%dx%d", width, height)
	}
	t.width = int32(width)
	t.height = int32(height)
	return nil
}

// SetData allocates level storage at the current size and uploads data, which
// may be nil. Multisample textures ignore level, format, xtype and data.
func (t *Texture) SetData(level, internalFormat int32, format, xtype uint32, data []byte) error {
	if t.id == 0 {
		return errors.Wrap(ErrNotGenerated, "Texture.SetData")
	}
	t.internalFormat = internalFormat
	t.format = format
	t.xtype = xtype

	t.api.BindTexture(t.target, t.id)
	if t.target == TEXTURE_2D_MULTISAMPLE {
		t.api.TexImage2DMultisample(t.target, t.samples, uint32(internalFormat), t.width, t.height, true)
	} else {
		t.api.TexImage2D(t.target, level, internalFormat, t.width, t.height, format, xtype, data)
	}
	t.api.BindTexture(t.target, 0)
	return Check(t.api, "Texture.SetData")
}

// Reallocate repeats the last SetData allocation at the current size with
// undefined contents.
func (t *Texture) Reallocate() error {
	return t.SetData(0, t.internalFormat, t.format, t.xtype, nil)
}

// ReadData copies level `level` into dst, which must be large enough for the
// whole image in the requested format.
func (t *Texture) ReadData(level int32, format, xtype uint32, dst []byte) error {
	if t.id == 0 {
		return errors.Wrap(ErrNotGenerated, "Texture.ReadData")
	}
	if t.target == TEXTURE_2D_MULTISAMPLE {
		return errors.New("Texture.ReadData: multisample textures cannot be read back")
	}
	if len(dst) == 0 {
		return errors.New("Texture.ReadData: empty destination")
	}
	t.api.BindTexture(t.target, t.id)
	t.api.GetTexImage(t.target, level, format, xtype, dst)
	t.api.BindTexture(t.target, 0)
	return Check(t.api, "Texture.ReadData")
}

// Delete releases the GL name.
func (t *Texture) Delete() {
	if t.id == 0 {
		return
	}
	t.api.DeleteTexture(t.id)
	t.id = 0
}
