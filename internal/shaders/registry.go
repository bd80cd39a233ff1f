// Package shaders compiles the viewer's GLSL programs and hands them out by
// name. Registry implements opengl.ShaderActivator and opengl.UniformsSource.
package shaders

import (
	"sort"
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"histo-viewer/internal/opengl"
)

// Program is a linked GL program with a uniform location cache.
type Program struct {
	name      string
	id        uint32
	locations map[string]int32
}

func (p *Program) Name() string { return p.name }
func (p *Program) ID() uint32   { return p.id }

// ApplyUniforms uploads every value of u to the active program. Names the
// program does not declare are skipped, as GL does for location -1.
func (p *Program) ApplyUniforms(u opengl.UniformSet) error {
	for name, v := range u {
		val, err := normalize(v)
		if err != nil {
			return errors.Wrapf(err, "%s.%s", p.name, name)
		}
		loc := p.location(name)
		if loc < 0 {
			continue
		}
		upload(loc, val)
	}
	return nil
}

func (p *Program) location(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
	p.locations[name] = loc
	return loc
}

func upload(loc int32, v uniformValue) {
	switch v.kind {
	case kindInt:
		gl.Uniform1i(loc, v.i)
	case kindUint:
		gl.Uniform1ui(loc, v.u)
	case kindFloat:
		gl.Uniform1f(loc, v.floats[0])
	case kindVec2:
		gl.Uniform2fv(loc, 1, &v.floats[0])
	case kindVec3:
		gl.Uniform3fv(loc, 1, &v.floats[0])
	case kindVec4:
		gl.Uniform4fv(loc, 1, &v.floats[0])
	case kindMat4:
		gl.UniformMatrix4fv(loc, 1, false, &v.floats[0])
	}
}

// Registry owns every compiled program.
type Registry struct {
	log      *zap.Logger
	programs map[string]*Program
	defaults map[string]opengl.UniformSet
	current  string
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		log:      log,
		programs: map[string]*Program{},
		defaults: map[string]opengl.UniformSet{},
	}
}

// Register compiles and links a program under name, replacing any program
// already registered with that name.
func (r *Registry) Register(name string, src Source) error {
	id, err := newProgram(src.Vertex, src.Fragment)
	if err != nil {
		r.log.Error("shader program failed", zap.String("program", name), zap.Error(err))
		return errors.Wrapf(err, "program %q", name)
	}
	if old, ok := r.programs[name]; ok {
		gl.DeleteProgram(old.id)
		if r.current == name {
			r.current = ""
		}
	}
	r.programs[name] = &Program{name: name, id: id, locations: map[string]int32{}}
	r.defaults[name] = src.Defaults.Clone()
	r.log.Debug("shader program linked", zap.String("program", name), zap.Uint32("id", id))
	return nil
}

// RegisterBuiltins registers every program returned by Builtins.
func (r *Registry) RegisterBuiltins() error {
	builtins := Builtins()
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := r.Register(name, builtins[name]); err != nil {
			return err
		}
	}
	return nil
}

// Activate makes name the current program. Activating the current program
// again skips glUseProgram.
func (r *Registry) Activate(name string) (opengl.Program, error) {
	p, ok := r.programs[name]
	if !ok {
		return nil, errors.Errorf("unknown shader program %q", name)
	}
	if r.current != name {
		gl.UseProgram(p.id)
		r.current = name
	}
	return p, nil
}

// Uniforms returns the registered defaults of name, or an empty set.
func (r *Registry) Uniforms(name string) opengl.UniformSet {
	if u, ok := r.defaults[name]; ok {
		return u.Clone()
	}
	return opengl.UniformSet{}
}

// Names lists the registered programs in order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.programs))
	for name := range r.programs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Delete releases every program.
func (r *Registry) Delete() {
	for _, p := range r.programs {
		gl.DeleteProgram(p.id)
	}
	r.programs = map[string]*Program{}
	r.current = ""
}

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, errors.Wrap(err, "vertex")
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, errors.Wrap(err, "fragment")
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, errors.Errorf("link failed: %v", strings.TrimRight(log, "\x00"))
	}
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, errors.Errorf("compile failed: %v", strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}
