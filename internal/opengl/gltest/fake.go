// Package gltest provides an in-memory opengl.API for tests. It tracks object
// names, texture storage, framebuffer attachments and a few pieces of pipeline
// state, and lets tests script occlusion query results and GL errors.
package gltest

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"histo-viewer/internal/opengl"
)

// Texture is the fake's view of a texture object.
type Texture struct {
	ID             uint32
	Target         uint32
	Width, Height  int32
	Samples        int32
	InternalFormat int32
	Format, Type   uint32
	Data           []byte
	Allocations    int
}

// Framebuffer is the fake's view of a framebuffer object.
type Framebuffer struct {
	ID          uint32
	Attachments map[uint32]uint32 // attachment point -> texture
	DrawBuffers []uint32
}

// Fake implements opengl.API. The zero value is not usable; call New.
type Fake struct {
	// QueryResults are returned by successive QueryResult calls. Once
	// exhausted, QueryResult returns 0.
	QueryResults []uint32
	// Errors are returned by successive GetError calls.
	Errors []uint32
	// FramebufferStatus overrides the completeness check when set.
	FramebufferStatus func(fb *Framebuffer) uint32

	Textures     map[uint32]*Texture
	Framebuffers map[uint32]*Framebuffer
	Queries      map[uint32]bool
	VertexArrays map[uint32]bool
	Buffers      map[uint32][]byte

	DrawFramebuffer uint32
	ReadFramebuffer uint32
	ActiveUnit      uint32
	UnitBindings    map[uint32]uint32 // unit -> texture
	Enabled         map[uint32]bool
	BlendEq         uint32
	BlendSrc        uint32
	BlendDst        uint32
	DepthWrite      bool
	ViewportRect    [4]int32

	DrawCalls    int
	QueryBegins  int
	QueryReads   int
	Blits        int
	calls        []string
	nextName     uint32
	boundTexture map[uint32]uint32 // target -> texture
	boundBuffer  map[uint32]uint32 // target -> buffer
}

var _ opengl.API = (*Fake)(nil)

func New() *Fake {
	return &Fake{
		Textures:     map[uint32]*Texture{},
		Framebuffers: map[uint32]*Framebuffer{},
		Queries:      map[uint32]bool{},
		VertexArrays: map[uint32]bool{},
		Buffers:      map[uint32][]byte{},
		UnitBindings: map[uint32]uint32{},
		Enabled:      map[uint32]bool{},
		DepthWrite:   true,
		boundTexture: map[uint32]uint32{},
		boundBuffer:  map[uint32]uint32{},
	}
}

func (f *Fake) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *Fake) gen() uint32 {
	f.nextName++
	return f.nextName
}

// Calls returns the recorded call log.
func (f *Fake) Calls() []string { return f.calls }

// CountCalls counts recorded calls starting with prefix.
func (f *Fake) CountCalls(prefix string) int {
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// ResetCalls clears the call log and draw counters.
func (f *Fake) ResetCalls() {
	f.calls = nil
	f.DrawCalls = 0
	f.QueryBegins = 0
	f.QueryReads = 0
	f.Blits = 0
}

// ── Errors ────────────────────────────────────────────────────────────────────

func (f *Fake) GetError() uint32 {
	if len(f.Errors) == 0 {
		return opengl.NO_ERROR
	}
	code := f.Errors[0]
	f.Errors = f.Errors[1:]
	return code
}

// ── Textures ──────────────────────────────────────────────────────────────────

func (f *Fake) GenTexture() uint32 {
	id := f.gen()
	f.Textures[id] = &Texture{ID: id}
	f.record("GenTexture() %d", id)
	return id
}

func (f *Fake) DeleteTexture(id uint32) {
	delete(f.Textures, id)
	f.record("DeleteTexture(%d)", id)
}

func (f *Fake) ActiveTexture(unit uint32) {
	f.ActiveUnit = unit - opengl.TEXTURE0
}

func (f *Fake) BindTexture(target, id uint32) {
	f.boundTexture[target] = id
	if id != 0 {
		f.UnitBindings[f.ActiveUnit] = id
		if t, ok := f.Textures[id]; ok && t.Target == 0 {
			t.Target = target
		}
	}
}

func (f *Fake) TexParameteri(target, pname uint32, param int32) {}

func (f *Fake) TexImage2D(target uint32, level, internalFormat, width, height int32, format, xtype uint32, data []byte) {
	t := f.Textures[f.boundTexture[target]]
	if t == nil {
		f.Errors = append(f.Errors, opengl.INVALID_OPERATION)
		return
	}
	t.Target = target
	t.Width, t.Height = width, height
	t.InternalFormat = internalFormat
	t.Format, t.Type = format, xtype
	t.Allocations++
	size := int(width) * int(height) * BytesPerPixel(format, xtype)
	t.Data = make([]byte, size)
	copy(t.Data, data)
	f.record("TexImage2D(%d, %dx%d)", t.ID, width, height)
}

func (f *Fake) TexImage2DMultisample(target uint32, samples int32, internalFormat uint32, width, height int32, fixed bool) {
	t := f.Textures[f.boundTexture[target]]
	if t == nil {
		f.Errors = append(f.Errors, opengl.INVALID_OPERATION)
		return
	}
	t.Target = target
	t.Width, t.Height = width, height
	t.Samples = samples
	t.InternalFormat = int32(internalFormat)
	t.Allocations++
	t.Data = nil
	f.record("TexImage2DMultisample(%d, %dx%d, %d)", t.ID, width, height, samples)
}

func (f *Fake) GetTexImage(target uint32, level int32, format, xtype uint32, dst []byte) {
	t := f.Textures[f.boundTexture[target]]
	if t == nil {
		f.Errors = append(f.Errors, opengl.INVALID_OPERATION)
		return
	}
	copy(dst, t.Data)
	f.record("GetTexImage(%d)", t.ID)
}

// ── Framebuffers ──────────────────────────────────────────────────────────────

func (f *Fake) GenFramebuffer() uint32 {
	id := f.gen()
	f.Framebuffers[id] = &Framebuffer{ID: id, Attachments: map[uint32]uint32{}}
	f.record("GenFramebuffer() %d", id)
	return id
}

func (f *Fake) DeleteFramebuffer(id uint32) {
	delete(f.Framebuffers, id)
	f.record("DeleteFramebuffer(%d)", id)
}

func (f *Fake) BindFramebuffer(target, id uint32) {
	switch target {
	case opengl.DRAW_FRAMEBUFFER:
		f.DrawFramebuffer = id
	case opengl.READ_FRAMEBUFFER:
		f.ReadFramebuffer = id
	default:
		f.DrawFramebuffer = id
		f.ReadFramebuffer = id
	}
	f.record("BindFramebuffer(0x%X, %d)", target, id)
}

func (f *Fake) boundFor(target uint32) *Framebuffer {
	if target == opengl.READ_FRAMEBUFFER {
		return f.Framebuffers[f.ReadFramebuffer]
	}
	return f.Framebuffers[f.DrawFramebuffer]
}

func (f *Fake) FramebufferTexture2D(target, attachment, texTarget, texture uint32, level int32) {
	fb := f.boundFor(target)
	if fb == nil {
		f.Errors = append(f.Errors, opengl.INVALID_OPERATION)
		return
	}
	fb.Attachments[attachment] = texture
	f.record("FramebufferTexture2D(%d, 0x%X, %d)", fb.ID, attachment, texture)
}

func (f *Fake) CheckFramebufferStatus(target uint32) uint32 {
	fb := f.boundFor(target)
	if fb == nil {
		return opengl.FRAMEBUFFER_COMPLETE
	}
	if f.FramebufferStatus != nil {
		return f.FramebufferStatus(fb)
	}
	if len(fb.Attachments) == 0 {
		return opengl.FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT
	}
	return opengl.FRAMEBUFFER_COMPLETE
}

func (f *Fake) DrawBuffers(buffers []uint32) {
	if fb := f.Framebuffers[f.DrawFramebuffer]; fb != nil {
		fb.DrawBuffers = append([]uint32(nil), buffers...)
	}
	f.record("DrawBuffers(%v)", buffers)
}

func (f *Fake) BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int32, mask, filter uint32) {
	f.Blits++
	f.record("BlitFramebuffer(%d -> %d, mask 0x%X)", f.ReadFramebuffer, f.DrawFramebuffer, mask)
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (f *Fake) GenQuery() uint32 {
	id := f.gen()
	f.Queries[id] = true
	return id
}

func (f *Fake) DeleteQuery(id uint32) {
	delete(f.Queries, id)
	f.record("DeleteQuery(%d)", id)
}

func (f *Fake) BeginQuery(target, id uint32) {
	f.QueryBegins++
	f.record("BeginQuery(%d)", id)
}

func (f *Fake) EndQuery(target uint32) {
	f.record("EndQuery")
}

func (f *Fake) QueryResult(id uint32) uint32 {
	f.QueryReads++
	if len(f.QueryResults) == 0 {
		return 0
	}
	n := f.QueryResults[0]
	f.QueryResults = f.QueryResults[1:]
	return n
}

// ── Drawing and state ─────────────────────────────────────────────────────────

func (f *Fake) GenVertexArray() uint32 {
	id := f.gen()
	f.VertexArrays[id] = true
	return id
}

func (f *Fake) DeleteVertexArray(id uint32) { delete(f.VertexArrays, id) }
func (f *Fake) BindVertexArray(id uint32)   {}

func (f *Fake) DrawArrays(mode uint32, first, count int32) {
	f.DrawCalls++
	f.record("DrawArrays(%d)", count)
}

func (f *Fake) DrawElements(mode uint32, count int32, xtype uint32, offset int) {
	f.DrawCalls++
	f.record("DrawElements(%d)", count)
}

func (f *Fake) GenBuffer() uint32 {
	id := f.gen()
	f.Buffers[id] = nil
	return id
}

func (f *Fake) DeleteBuffer(id uint32) { delete(f.Buffers, id) }

func (f *Fake) BindBuffer(target, id uint32) { f.boundBuffer[target] = id }

func (f *Fake) BufferData(target uint32, data []byte, usage uint32) {
	id := f.boundBuffer[target]
	if _, ok := f.Buffers[id]; !ok || id == 0 {
		f.Errors = append(f.Errors, opengl.INVALID_OPERATION)
		return
	}
	f.Buffers[id] = append([]byte(nil), data...)
}

func (f *Fake) EnableVertexAttribArray(index uint32) {}

func (f *Fake) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset int) {
}

func (f *Fake) Enable(capability uint32) {
	f.Enabled[capability] = true
	f.record("Enable(0x%X)", capability)
}

func (f *Fake) Disable(capability uint32) {
	f.Enabled[capability] = false
	f.record("Disable(0x%X)", capability)
}

func (f *Fake) BlendEquation(mode uint32) {
	f.BlendEq = mode
	f.record("BlendEquation(0x%X)", mode)
}

func (f *Fake) BlendFunc(src, dst uint32) {
	f.BlendSrc, f.BlendDst = src, dst
	f.record("BlendFunc(0x%X, 0x%X)", src, dst)
}

func (f *Fake) DepthMask(flag bool) { f.DepthWrite = flag }
func (f *Fake) DepthFunc(fn uint32) {}
func (f *Fake) Viewport(x, y, w, h int32) {
	f.ViewportRect = [4]int32{x, y, w, h}
}

func (f *Fake) ClearColor(r, g, b, a float32) {}

func (f *Fake) Clear(mask uint32) {
	f.record("Clear(0x%X)", mask)
}

func (f *Fake) ClearBufferfv(buffer uint32, drawBuffer int32, value []float32) {
	f.record("ClearBufferfv(0x%X, %d, %v)", buffer, drawBuffer, value)
	if buffer != opengl.COLOR {
		return
	}
	t := f.drawBufferTexture(int(drawBuffer))
	if t == nil || len(t.Data) == 0 {
		return
	}
	px := encodeFloats(t, value)
	for off := 0; off+len(px) <= len(t.Data); off += len(px) {
		copy(t.Data[off:], px)
	}
}

func (f *Fake) ClearBufferuiv(buffer uint32, drawBuffer int32, value []uint32) {
	f.record("ClearBufferuiv(0x%X, %d, %v)", buffer, drawBuffer, value)
	t := f.drawBufferTexture(int(drawBuffer))
	if t == nil || len(t.Data) == 0 {
		return
	}
	bpp := BytesPerPixel(t.Format, t.Type)
	px := make([]byte, bpp)
	for i := 0; i*4 < bpp && i < len(value); i++ {
		binary.LittleEndian.PutUint32(px[i*4:], value[i])
	}
	for off := 0; off+bpp <= len(t.Data); off += bpp {
		copy(t.Data[off:], px)
	}
}

// ── Test helpers ──────────────────────────────────────────────────────────────

func (f *Fake) drawBufferTexture(drawBuffer int) *Texture {
	fb := f.Framebuffers[f.DrawFramebuffer]
	if fb == nil || drawBuffer >= len(fb.DrawBuffers) {
		return nil
	}
	return f.Textures[fb.Attachments[fb.DrawBuffers[drawBuffer]]]
}

// WriteUint32 stores v at pixel (x, y) of the texture behind draw buffer
// drawBuffer of the bound draw framebuffer, emulating a fragment write.
func (f *Fake) WriteUint32(drawBuffer, x, y int, v uint32) bool {
	t := f.drawBufferTexture(drawBuffer)
	if t == nil {
		return false
	}
	off := (y*int(t.Width) + x) * BytesPerPixel(t.Format, t.Type)
	if off < 0 || off+4 > len(t.Data) {
		return false
	}
	binary.LittleEndian.PutUint32(t.Data[off:], v)
	return true
}

// WriteFloat32 is WriteUint32 for float textures.
func (f *Fake) WriteFloat32(drawBuffer, x, y int, v float32) bool {
	return f.WriteUint32(drawBuffer, x, y, math.Float32bits(v))
}

// Float32At decodes component c of pixel (x, y) of a float texture.
func Float32At(t *Texture, x, y, c int) float32 {
	off := (y*int(t.Width)+x)*BytesPerPixel(t.Format, t.Type) + 4*c
	return math.Float32frombits(binary.LittleEndian.Uint32(t.Data[off:]))
}

// Uint32At decodes component c of pixel (x, y) of an integer texture.
func Uint32At(t *Texture, x, y, c int) uint32 {
	off := (y*int(t.Width)+x)*BytesPerPixel(t.Format, t.Type) + 4*c
	return binary.LittleEndian.Uint32(t.Data[off:])
}

// TextureByID returns the fake texture or nil.
func (f *Fake) TextureByID(id uint32) *Texture { return f.Textures[id] }

// BytesPerPixel returns the packed pixel size of a format/type pair.
func BytesPerPixel(format, xtype uint32) int {
	var comps int
	switch format {
	case opengl.RED, opengl.RED_INTEGER, opengl.DEPTH_COMPONENT:
		comps = 1
	case opengl.RG:
		comps = 2
	default:
		comps = 4
	}
	if xtype == opengl.UNSIGNED_BYTE {
		return comps
	}
	return comps * 4
}

func encodeFloats(t *Texture, value []float32) []byte {
	bpp := BytesPerPixel(t.Format, t.Type)
	px := make([]byte, bpp)
	if t.Type == opengl.UNSIGNED_BYTE {
		for i := 0; i < bpp && i < len(value); i++ {
			px[i] = byte(value[i] * 255)
		}
		return px
	}
	for i := 0; i*4 < bpp && i < len(value); i++ {
		binary.LittleEndian.PutUint32(px[i*4:], math.Float32bits(value[i]))
	}
	return px
}
