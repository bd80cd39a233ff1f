package opengl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"histo-viewer/internal/opengl"
	"histo-viewer/internal/opengl/gltest"
)

func TestTextureSetSizeRejectsEmpty(t *testing.T) {
	tex := opengl.NewTexture(gltest.New())
	for _, size := range [][2]int{{0, 1}, {1, 0}, {-4, 4}} {
		assert.ErrorIs(t, tex.SetSize(size[0], size[1]), opengl.ErrInvalidSize)
	}
	w, h := tex.Size()
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
}

func TestTextureLifecycle(t *testing.T) {
	fake := gltest.New()
	tex := opengl.NewTexture(fake)

	assert.ErrorIs(t, tex.SetData(0, opengl.RGBA32F, opengl.RGBA, opengl.FLOAT, nil), opengl.ErrNotGenerated)

	require.NoError(t, tex.Generate())
	require.NoError(t, tex.SetSize(3, 2))
	require.NoError(t, tex.SetData(0, opengl.R32F, opengl.RED, opengl.FLOAT, nil))

	ft := fake.TextureByID(tex.ID())
	require.NotNil(t, ft)
	assert.Equal(t, int32(3), ft.Width)
	assert.Len(t, ft.Data, 3*2*4)

	require.NoError(t, tex.SetSize(5, 5))
	require.NoError(t, tex.Reallocate())
	assert.Equal(t, int32(opengl.R32F), ft.InternalFormat)
	assert.Equal(t, 2, ft.Allocations)
	assert.Len(t, ft.Data, 5*5*4)

	tex.Delete()
	assert.Zero(t, tex.ID())
	assert.Nil(t, fake.TextureByID(ft.ID))
}

func TestTextureReadData(t *testing.T) {
	fake := gltest.New()
	tex := opengl.NewTexture(fake)
	require.NoError(t, tex.Generate())
	require.NoError(t, tex.SetSize(2, 1))
	require.NoError(t, tex.SetData(0, opengl.RGBA8, opengl.RGBA, opengl.UNSIGNED_BYTE, []byte{1, 2, 3, 4, 5, 6, 7, 8}))

	dst := make([]byte, 8)
	require.NoError(t, tex.ReadData(0, opengl.RGBA, opengl.UNSIGNED_BYTE, dst))
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, dst)

	assert.Error(t, tex.ReadData(0, opengl.RGBA, opengl.UNSIGNED_BYTE, nil))
}

func TestMultisampleTexture(t *testing.T) {
	fake := gltest.New()
	tex := opengl.NewMultisampleTexture(fake, 0)
	assert.Equal(t, 1, tex.Samples())

	tex = opengl.NewMultisampleTexture(fake, 8)
	require.NoError(t, tex.Generate())
	require.NoError(t, tex.SetSize(4, 4))
	require.NoError(t, tex.SetData(0, opengl.RGBA32F, 0, 0, nil))

	ft := fake.TextureByID(tex.ID())
	assert.Equal(t, uint32(opengl.TEXTURE_2D_MULTISAMPLE), ft.Target)
	assert.Equal(t, int32(8), ft.Samples)
	assert.Error(t, tex.ReadData(0, opengl.RGBA, opengl.FLOAT, make([]byte, 256)))
}

func TestAttachColorRequiresIndex(t *testing.T) {
	fake := gltest.New()
	fbo := opengl.NewFramebufferObject(fake)
	tex := opengl.NewTexture(fake)
	require.NoError(t, fbo.Generate())
	require.NoError(t, tex.Generate())

	err := fbo.Attach2DTexture(opengl.FramebufferDraw, opengl.AttachColor, tex, opengl.NoColorIndex)
	assert.ErrorIs(t, err, opengl.ErrMissingColorIndex)
	assert.Empty(t, fake.Framebuffers[fbo.ID()].Attachments)

	require.NoError(t, fbo.Attach2DTexture(opengl.FramebufferDraw, opengl.AttachColor, tex, 2))
	assert.Equal(t, tex.ID(), fake.Framebuffers[fbo.ID()].Attachments[opengl.COLOR_ATTACHMENT0+2])
}

func TestAttachBeforeGenerate(t *testing.T) {
	fake := gltest.New()
	fbo := opengl.NewFramebufferObject(fake)
	err := fbo.Attach2DTexture(opengl.FramebufferDraw, opengl.AttachDepth, opengl.NewTexture(fake), opengl.NoColorIndex)
	assert.ErrorIs(t, err, opengl.ErrNotGenerated)
}

func TestAttachReportsIncompleteFramebuffer(t *testing.T) {
	fake := gltest.New()
	fake.FramebufferStatus = func(fb *gltest.Framebuffer) uint32 {
		if _, ok := fb.Attachments[opengl.DEPTH_ATTACHMENT]; !ok {
			return opengl.FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT
		}
		return opengl.FRAMEBUFFER_COMPLETE
	}
	fbo := opengl.NewFramebufferObject(fake)
	color, depth := opengl.NewTexture(fake), opengl.NewTexture(fake)
	require.NoError(t, fbo.Generate())
	require.NoError(t, color.Generate())
	require.NoError(t, depth.Generate())

	err := fbo.Attach2DTexture(opengl.FramebufferDrawAndRead, opengl.AttachColor, color, 0)
	var incomplete *opengl.IncompleteFramebufferError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, fbo.ID(), incomplete.Framebuffer)
	assert.Contains(t, err.Error(), "GL_FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT")

	require.NoError(t, fbo.Attach2DTexture(opengl.FramebufferDrawAndRead, opengl.AttachDepth, depth, opengl.NoColorIndex))
}

func TestFramebufferTargets(t *testing.T) {
	fake := gltest.New()
	fbo := opengl.NewFramebufferObject(fake)
	require.NoError(t, fbo.Generate())

	fbo.Bind(opengl.FramebufferRead)
	assert.Equal(t, fbo.ID(), fake.ReadFramebuffer)
	assert.Zero(t, fake.DrawFramebuffer)

	fbo.Bind(opengl.FramebufferDraw)
	assert.Equal(t, fbo.ID(), fake.DrawFramebuffer)

	fbo.SetDrawBuffers(0, 3)
	assert.Equal(t, []uint32{opengl.COLOR_ATTACHMENT0, opengl.COLOR_ATTACHMENT0 + 3},
		fake.Framebuffers[fbo.ID()].DrawBuffers)
}

func TestCheckDrainsErrorQueue(t *testing.T) {
	fake := gltest.New()
	assert.NoError(t, opengl.Check(fake, "idle"))

	fake.Errors = []uint32{opengl.INVALID_ENUM, opengl.INVALID_VALUE}
	err := opengl.Check(fake, "site")
	var glErr *opengl.GLError
	require.ErrorAs(t, err, &glErr)
	assert.Equal(t, uint32(opengl.INVALID_ENUM), glErr.Code)
	assert.Equal(t, "site: GL_INVALID_ENUM (0x0500)", glErr.Error())
	assert.Empty(t, fake.Errors)
	assert.NoError(t, opengl.Check(fake, "after"))
}

func TestCheckBoundsLostContext(t *testing.T) {
	fake := gltest.New()
	for i := 0; i < 100; i++ {
		fake.Errors = append(fake.Errors, opengl.OUT_OF_MEMORY)
	}
	assert.Error(t, opengl.Check(fake, "lost"))
	assert.Len(t, fake.Errors, 100-16)
}

func TestQueryObject(t *testing.T) {
	fake := gltest.New()
	fake.QueryResults = []uint32{123}
	q := opengl.NewQueryObject(fake)

	assert.ErrorIs(t, q.Begin(), opengl.ErrNotGenerated)
	require.NoError(t, q.Generate())
	require.NoError(t, q.Begin())
	_, err := q.Result()
	assert.Error(t, err, "result while active")
	q.End()

	n, err := q.Result()
	require.NoError(t, err)
	assert.Equal(t, uint32(123), n)

	q.Delete()
	assert.Empty(t, fake.Queries)
}
