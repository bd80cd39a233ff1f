// Package opengl wraps the OpenGL objects owned by the depth-peeling renderer:
// textures, framebuffers, occlusion queries and the full-screen pass quads.
//
// All calls go through the API interface. The go-gl backed implementation
// lives in package glapi; tests use gltest.Fake.
package opengl

// API is the subset of OpenGL 4.1 core used by the renderer. Object creation
// and deletion are single-name variants of the glGen*/glDelete* calls.
type API interface {
	GetError() uint32

	GenTexture() uint32
	DeleteTexture(id uint32)
	ActiveTexture(unit uint32)
	BindTexture(target, id uint32)
	TexParameteri(target, pname uint32, param int32)
	TexImage2D(target uint32, level, internalFormat, width, height int32, format, xtype uint32, data []byte)
	TexImage2DMultisample(target uint32, samples int32, internalFormat uint32, width, height int32, fixedSampleLocations bool)
	GetTexImage(target uint32, level int32, format, xtype uint32, dst []byte)

	GenFramebuffer() uint32
	DeleteFramebuffer(id uint32)
	BindFramebuffer(target, id uint32)
	FramebufferTexture2D(target, attachment, texTarget, texture uint32, level int32)
	CheckFramebufferStatus(target uint32) uint32
	DrawBuffers(buffers []uint32)
	BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int32, mask, filter uint32)

	GenQuery() uint32
	DeleteQuery(id uint32)
	BeginQuery(target, id uint32)
	EndQuery(target uint32)
	// QueryResult blocks until the result of query id is available.
	QueryResult(id uint32) uint32

	GenVertexArray() uint32
	DeleteVertexArray(id uint32)
	BindVertexArray(id uint32)
	DrawArrays(mode uint32, first, count int32)
	// DrawElements draws count indices starting at byte offset of the bound
	// element buffer.
	DrawElements(mode uint32, count int32, xtype uint32, offset int)

	GenBuffer() uint32
	DeleteBuffer(id uint32)
	BindBuffer(target, id uint32)
	BufferData(target uint32, data []byte, usage uint32)
	EnableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset int)

	Enable(capability uint32)
	Disable(capability uint32)
	BlendEquation(mode uint32)
	BlendFunc(src, dst uint32)
	DepthMask(flag bool)
	DepthFunc(fn uint32)
	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	Clear(mask uint32)
	ClearBufferfv(buffer uint32, drawBuffer int32, value []float32)
	ClearBufferuiv(buffer uint32, drawBuffer int32, value []uint32)
}
