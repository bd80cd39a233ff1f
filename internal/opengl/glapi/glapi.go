// Package glapi implements opengl.API on top of go-gl's OpenGL 4.1 core
// bindings. A context must be current on the calling thread.
package glapi

import (
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"histo-viewer/internal/opengl"
)

// API forwards every call to the go-gl bindings.
type API struct{}

var _ opengl.API = API{}

// New loads the GL function pointers for the current context.
func New(log *zap.Logger) (API, error) {
	if err := gl.Init(); err != nil {
		return API{}, errors.Wrap(err, "failed to initialize OpenGL")
	}
	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)
	return API{}, nil
}

func ptr(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}

func (API) GetError() uint32 { return gl.GetError() }

func (API) GenTexture() uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	return id
}

func (API) DeleteTexture(id uint32)       { gl.DeleteTextures(1, &id) }
func (API) ActiveTexture(unit uint32)     { gl.ActiveTexture(unit) }
func (API) BindTexture(target, id uint32) { gl.BindTexture(target, id) }
func (API) TexParameteri(target, pname uint32, param int32) {
	gl.TexParameteri(target, pname, param)
}

func (API) TexImage2D(target uint32, level, internalFormat, width, height int32, format, xtype uint32, data []byte) {
	gl.TexImage2D(target, level, internalFormat, width, height, 0, format, xtype, ptr(data))
}

func (API) TexImage2DMultisample(target uint32, samples int32, internalFormat uint32, width, height int32, fixed bool) {
	gl.TexImage2DMultisample(target, samples, internalFormat, width, height, fixed)
}

func (API) GetTexImage(target uint32, level int32, format, xtype uint32, dst []byte) {
	gl.GetTexImage(target, level, format, xtype, ptr(dst))
}

func (API) GenFramebuffer() uint32 {
	var id uint32
	gl.GenFramebuffers(1, &id)
	return id
}

func (API) DeleteFramebuffer(id uint32)       { gl.DeleteFramebuffers(1, &id) }
func (API) BindFramebuffer(target, id uint32) { gl.BindFramebuffer(target, id) }

func (API) FramebufferTexture2D(target, attachment, texTarget, texture uint32, level int32) {
	gl.FramebufferTexture2D(target, attachment, texTarget, texture, level)
}

func (API) CheckFramebufferStatus(target uint32) uint32 {
	return gl.CheckFramebufferStatus(target)
}

func (API) DrawBuffers(buffers []uint32) {
	if len(buffers) == 0 {
		gl.DrawBuffer(gl.NONE)
		return
	}
	gl.DrawBuffers(int32(len(buffers)), &buffers[0])
}

func (API) BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int32, mask, filter uint32) {
	gl.BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1, mask, filter)
}

func (API) GenQuery() uint32 {
	var id uint32
	gl.GenQueries(1, &id)
	return id
}

func (API) DeleteQuery(id uint32)        { gl.DeleteQueries(1, &id) }
func (API) BeginQuery(target, id uint32) { gl.BeginQuery(target, id) }
func (API) EndQuery(target uint32)       { gl.EndQuery(target) }

func (API) QueryResult(id uint32) uint32 {
	var n uint32
	gl.GetQueryObjectuiv(id, gl.QUERY_RESULT, &n)
	return n
}

func (API) GenVertexArray() uint32 {
	var id uint32
	gl.GenVertexArrays(1, &id)
	return id
}

func (API) DeleteVertexArray(id uint32)                { gl.DeleteVertexArrays(1, &id) }
func (API) BindVertexArray(id uint32)                  { gl.BindVertexArray(id) }
func (API) DrawArrays(mode uint32, first, count int32) { gl.DrawArrays(mode, first, count) }

func (API) DrawElements(mode uint32, count int32, xtype uint32, offset int) {
	gl.DrawElements(mode, count, xtype, gl.PtrOffset(offset))
}

func (API) GenBuffer() uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	return id
}

func (API) DeleteBuffer(id uint32)               { gl.DeleteBuffers(1, &id) }
func (API) BindBuffer(target, id uint32)         { gl.BindBuffer(target, id) }
func (API) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }

func (API) BufferData(target uint32, data []byte, usage uint32) {
	gl.BufferData(target, len(data), ptr(data), usage)
}

func (API) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset int) {
	gl.VertexAttribPointer(index, size, xtype, normalized, stride, gl.PtrOffset(offset))
}

func (API) Enable(capability uint32)           { gl.Enable(capability) }
func (API) Disable(capability uint32)          { gl.Disable(capability) }
func (API) BlendEquation(mode uint32)          { gl.BlendEquation(mode) }
func (API) BlendFunc(src, dst uint32)          { gl.BlendFunc(src, dst) }
func (API) DepthMask(flag bool)                { gl.DepthMask(flag) }
func (API) DepthFunc(fn uint32)                { gl.DepthFunc(fn) }
func (API) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }
func (API) ClearColor(r, g, b, a float32)      { gl.ClearColor(r, g, b, a) }
func (API) Clear(mask uint32)                  { gl.Clear(mask) }

func (API) ClearBufferfv(buffer uint32, drawBuffer int32, value []float32) {
	gl.ClearBufferfv(buffer, drawBuffer, &value[0])
}

func (API) ClearBufferuiv(buffer uint32, drawBuffer int32, value []uint32) {
	gl.ClearBufferuiv(buffer, drawBuffer, &value[0])
}
