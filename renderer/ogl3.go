// renderer/ogl3.go
// Copyright(c) 2026 kanview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/kanview/kanview/log"
	"github.com/kanview/kanview/util"

	"github.com/go-gl/gl/v3.3-core/gl"
)

// OpenGL3Device implements the Device interface using the OpenGL 3.3 core
// profile. The OpenGL context must be current on the calling thread when
// it is created and whenever any of its methods are called.
type OpenGL3Device struct {
	lg *log.Logger
	// vertex buffer -> vertex array object that records its layout
	vaos            map[uint32]uint32
	createdTextures map[uint32]int
}

// NewOpenGL3Device loads the OpenGL function pointers; thus, the caller
// must have already created the window and made its context current.
func NewOpenGL3Device(lg *log.Logger) (*OpenGL3Device, error) {
	lg.Info("Starting OpenGL3Device initialization")
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	lg.Infof("OpenGL vendor %s renderer %s version %s", gl.GoStr(gl.GetString(gl.VENDOR)),
		gl.GoStr(gl.GetString(gl.RENDERER)), gl.GoStr(gl.GetString(gl.VERSION)))

	// Glyph coverage and the vertex colors' alpha are both applied by
	// blending.
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)

	lg.Info("Finished OpenGL3Device initialization")
	return &OpenGL3Device{
		lg:              lg,
		vaos:            make(map[uint32]uint32),
		createdTextures: make(map[uint32]int),
	}, nil
}

// Dispose releases any buffers and textures that haven't already been
// deleted.
func (d *OpenGL3Device) Dispose() {
	for vbo := range d.vaos {
		d.DeleteBuffer(vbo)
	}
	for texid := range d.createdTextures {
		d.DeleteTexture(texid)
	}
}

func glError(what string) error {
	if e := gl.GetError(); e != gl.NO_ERROR {
		return fmt.Errorf("%s: OpenGL error 0x%x", what, e)
	}
	return nil
}

func (d *OpenGL3Device) CreateVertexBuffer(capacity int) (uint32, error) {
	var v Vertex
	stride := int32(unsafe.Sizeof(v))

	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, capacity*int(stride), nil, gl.DYNAMIC_DRAW)

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.Position))))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 4, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.Color))))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.UV))))

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if err := glError("vertex buffer"); err != nil {
		gl.DeleteBuffers(1, &vbo)
		gl.DeleteVertexArrays(1, &vao)
		return 0, err
	}

	d.vaos[vbo] = vao
	d.lg.Infof("Created vertex buffer %d: %d vertices, %d bytes", vbo, capacity, capacity*int(stride))
	return vbo, nil
}

func (d *OpenGL3Device) UploadVertices(buffer uint32, v []Vertex) {
	if len(v) == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, buffer)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(v)*int(unsafe.Sizeof(v[0])), unsafe.Pointer(&v[0]))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (d *OpenGL3Device) DrawTriangles(buffer uint32, count int) {
	vao, ok := d.vaos[buffer]
	if !ok {
		d.lg.Errorf("%d: draw from unknown vertex buffer", buffer)
		return
	}
	gl.BindVertexArray(vao)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(count))
	gl.BindVertexArray(0)
}

func (d *OpenGL3Device) DeleteBuffer(buffer uint32) {
	if vao, ok := d.vaos[buffer]; ok {
		gl.DeleteVertexArrays(1, &vao)
		delete(d.vaos, buffer)
	}
	gl.DeleteBuffers(1, &buffer)
}

func (d *OpenGL3Device) CompileShader(stage ShaderStage, source string) (uint32, error) {
	shader := gl.CreateShader(util.Select(stage == StageVertex, uint32(gl.VERTEX_SHADER), uint32(gl.FRAGMENT_SHADER)))
	if shader == 0 {
		return 0, glError("glCreateShader")
	}

	csrc, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &n)
		infoLog := strings.Repeat("\x00", int(n+1))
		gl.GetShaderInfoLog(shader, n, nil, gl.Str(infoLog))
		gl.DeleteShader(shader)
		return 0, &ShaderError{Stage: stage, Log: strings.TrimRight(infoLog, "\x00\n")}
	}
	return shader, nil
}

func (d *OpenGL3Device) LinkProgram(vertex, fragment uint32) (uint32, error) {
	prog := gl.CreateProgram()
	if prog == 0 {
		return 0, glError("glCreateProgram")
	}
	gl.AttachShader(prog, vertex)
	gl.AttachShader(prog, fragment)
	gl.LinkProgram(prog)
	gl.DetachShader(prog, vertex)
	gl.DetachShader(prog, fragment)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var n int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &n)
		infoLog := strings.Repeat("\x00", int(n+1))
		gl.GetProgramInfoLog(prog, n, nil, gl.Str(infoLog))
		gl.DeleteProgram(prog)
		return 0, &ShaderError{Link: true, Log: strings.TrimRight(infoLog, "\x00\n")}
	}
	return prog, nil
}

func (d *OpenGL3Device) DeleteShader(shader uint32) {
	gl.DeleteShader(shader)
}

func (d *OpenGL3Device) DeleteProgram(program uint32) {
	gl.DeleteProgram(program)
}

func (d *OpenGL3Device) UseProgram(program uint32) {
	gl.UseProgram(program)
}

func (d *OpenGL3Device) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (d *OpenGL3Device) SetUniform1f(location int32, v float32) {
	if location != InvalidLocation {
		gl.Uniform1f(location, v)
	}
}

func (d *OpenGL3Device) SetUniform2f(location int32, x, y float32) {
	if location != InvalidLocation {
		gl.Uniform2f(location, x, y)
	}
}

func (d *OpenGL3Device) CreateTexture(width, height int) (uint32, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("%dx%d: invalid texture size", width, height)
	}
	var maxSize int32
	gl.GetIntegerv(gl.MAX_TEXTURE_SIZE, &maxSize)
	if maxSize > 0 && (width > int(maxSize) || height > int(maxSize)) {
		return 0, fmt.Errorf("%dx%d: texture larger than maximum %d", width, height, maxSize)
	}

	var texid uint32
	gl.ActiveTexture(gl.TEXTURE0)
	gl.GenTextures(1, &texid)
	gl.BindTexture(gl.TEXTURE_2D, texid)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	// Rows of single-byte pixels aren't 4-byte aligned in general.
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RED, int32(width), int32(height), 0, gl.RED, gl.UNSIGNED_BYTE, nil)

	if err := glError("texture"); err != nil {
		gl.DeleteTextures(1, &texid)
		return 0, err
	}

	d.createdTextures[texid] = width * height
	total := 0
	for _, b := range d.createdTextures {
		total += b
	}
	d.lg.Infof("Created tex id %d: %d bytes -> %.2f MiB of textures total", texid, width*height,
		float32(total)/(1024*1024))
	return texid, nil
}

func (d *OpenGL3Device) UploadTextureRegion(texture uint32, x, y, w, h int, pixels []byte) {
	if w == 0 || h == 0 {
		return
	}
	if len(pixels) < w*h {
		d.lg.Errorf("%d: %dx%d upload with only %d bytes", texture, w, h, len(pixels))
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, texture)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, int32(x), int32(y), int32(w), int32(h), gl.RED, gl.UNSIGNED_BYTE,
		unsafe.Pointer(&pixels[0]))
}

func (d *OpenGL3Device) BindTexture(texture uint32) {
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, texture)
}

func (d *OpenGL3Device) DeleteTexture(texture uint32) {
	gl.DeleteTextures(1, &texture)
	delete(d.createdTextures, texture)
}

func (d *OpenGL3Device) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (d *OpenGL3Device) Clear(color RGBA) {
	gl.ClearColor(color.R, color.G, color.B, color.A)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

// CheckError reports any OpenGL error that has been raised since the
// last check; it's called once per frame.
func (d *OpenGL3Device) CheckError() error {
	var errs []error
	for range 8 {
		err := glError("frame")
		if err == nil {
			break
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

var _ Device = (*OpenGL3Device)(nil)
