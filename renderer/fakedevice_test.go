// renderer/fakedevice_test.go
// Copyright(c) 2026 kanview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"slices"
	"strings"
)

// fakeDevice is a Device that records what it's asked to do so that the
// tests can check the resulting GPU state without a GPU.
type fakeDevice struct {
	nextID uint32

	shaders  map[uint32]fakeShader
	programs map[uint32]*fakeProgram
	buffers  map[uint32][]Vertex
	textures map[uint32]*fakeTexture

	current      uint32
	boundTexture uint32
	viewport     [2]int
	clear        RGBA

	draws   []fakeDraw
	uploads []fakeUpload
	// Uniform writes to a location that doesn't belong to the current
	// program.
	staleUniformWrites int

	vertexCompiles   int
	fragmentCompiles int
	deletedPrograms  []uint32
	deletedBuffers   []uint32
	deletedTextures  []uint32

	// Sources containing this string fail to compile.
	failCompile string
	failLink    bool
}

type fakeShader struct {
	stage  ShaderStage
	source string
}

type fakeProgram struct {
	source   string
	uniforms map[string]int32
	values1f map[int32]float32
	values2f map[int32][2]float32
}

type fakeTexture struct {
	w, h int
	pix  []byte
}

type fakeDraw struct {
	program  uint32
	texture  uint32
	vertices []Vertex
}

type fakeUpload struct {
	texture    uint32
	x, y, w, h int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		nextID:   1,
		shaders:  make(map[uint32]fakeShader),
		programs: make(map[uint32]*fakeProgram),
		buffers:  make(map[uint32][]Vertex),
		textures: make(map[uint32]*fakeTexture),
	}
}

func (d *fakeDevice) id() uint32 {
	d.nextID++
	return d.nextID - 1
}

func (d *fakeDevice) CreateVertexBuffer(capacity int) (uint32, error) {
	id := d.id()
	d.buffers[id] = make([]Vertex, capacity)
	return id, nil
}

func (d *fakeDevice) UploadVertices(buffer uint32, v []Vertex) {
	copy(d.buffers[buffer], v)
}

func (d *fakeDevice) DrawTriangles(buffer uint32, count int) {
	d.draws = append(d.draws, fakeDraw{
		program:  d.current,
		texture:  d.boundTexture,
		vertices: slices.Clone(d.buffers[buffer][:count]),
	})
}

func (d *fakeDevice) DeleteBuffer(buffer uint32) {
	delete(d.buffers, buffer)
	d.deletedBuffers = append(d.deletedBuffers, buffer)
}

func (d *fakeDevice) CompileShader(stage ShaderStage, source string) (uint32, error) {
	if stage == StageVertex {
		d.vertexCompiles++
	} else {
		d.fragmentCompiles++
	}
	if d.failCompile != "" && strings.Contains(source, d.failCompile) {
		return 0, &ShaderError{Stage: stage, Log: "0:1(1): error: syntax error, unexpected " + d.failCompile}
	}
	id := d.id()
	d.shaders[id] = fakeShader{stage: stage, source: source}
	return id, nil
}

func (d *fakeDevice) LinkProgram(vertex, fragment uint32) (uint32, error) {
	if d.failLink {
		return 0, &ShaderError{Link: true, Log: "error: vertex output out_uv not consumed"}
	}
	id := d.id()
	p := &fakeProgram{
		source:   d.shaders[vertex].source + "\n" + d.shaders[fragment].source,
		uniforms: make(map[string]int32),
		values1f: make(map[int32]float32),
		values2f: make(map[int32][2]float32),
	}
	// Locations are unique across programs so that writes through one
	// program's location while another is current can be detected.
	for i, name := range uniformNames {
		if strings.Contains(p.source, " "+name+";") {
			p.uniforms[name] = int32(id)*16 + int32(i)
		}
	}
	d.programs[id] = p
	return id, nil
}

func (d *fakeDevice) DeleteShader(shader uint32) {
	delete(d.shaders, shader)
}

func (d *fakeDevice) DeleteProgram(program uint32) {
	delete(d.programs, program)
	d.deletedPrograms = append(d.deletedPrograms, program)
}

func (d *fakeDevice) UseProgram(program uint32) {
	d.current = program
}

func (d *fakeDevice) UniformLocation(program uint32, name string) int32 {
	if p, ok := d.programs[program]; ok {
		if loc, ok := p.uniforms[name]; ok {
			return loc
		}
	}
	return InvalidLocation
}

func (d *fakeDevice) owns(location int32) (*fakeProgram, bool) {
	if location == InvalidLocation {
		return nil, false
	}
	p, ok := d.programs[d.current]
	if !ok {
		d.staleUniformWrites++
		return nil, false
	}
	for _, loc := range p.uniforms {
		if loc == location {
			return p, true
		}
	}
	d.staleUniformWrites++
	return nil, false
}

func (d *fakeDevice) SetUniform1f(location int32, v float32) {
	if p, ok := d.owns(location); ok {
		p.values1f[location] = v
	}
}

func (d *fakeDevice) SetUniform2f(location int32, x, y float32) {
	if p, ok := d.owns(location); ok {
		p.values2f[location] = [2]float32{x, y}
	}
}

func (d *fakeDevice) CreateTexture(width, height int) (uint32, error) {
	id := d.id()
	d.textures[id] = &fakeTexture{w: width, h: height, pix: make([]byte, width*height)}
	return id, nil
}

func (d *fakeDevice) UploadTextureRegion(texture uint32, x, y, w, h int, pixels []byte) {
	d.uploads = append(d.uploads, fakeUpload{texture: texture, x: x, y: y, w: w, h: h})
	t := d.textures[texture]
	for row := range h {
		copy(t.pix[(y+row)*t.w+x:(y+row)*t.w+x+w], pixels[row*w:(row+1)*w])
	}
}

func (d *fakeDevice) BindTexture(texture uint32) {
	d.boundTexture = texture
}

func (d *fakeDevice) DeleteTexture(texture uint32) {
	delete(d.textures, texture)
	d.deletedTextures = append(d.deletedTextures, texture)
}

func (d *fakeDevice) Viewport(width, height int) {
	d.viewport = [2]int{width, height}
}

func (d *fakeDevice) Clear(color RGBA) {
	d.clear = color
}

// uniform1f returns the value of the named float uniform of the program.
func (d *fakeDevice) uniform1f(program uint32, name string) (float32, bool) {
	p := d.programs[program]
	v, ok := p.values1f[p.uniforms[name]]
	return v, ok
}

func (d *fakeDevice) uniform2f(program uint32, name string) ([2]float32, bool) {
	p := d.programs[program]
	v, ok := p.values2f[p.uniforms[name]]
	return v, ok
}

var _ Device = (*fakeDevice)(nil)

var testShaderSources = ShaderSources{
	Vertex: "#version 330 core\nuniform vec2 resolution;\nvoid main() {}\n",
	Fragment: [NumShaders]string{
		ShaderColor:   "#version 330 core\nuniform float time;\nuniform vec2 resolution;\nvoid main() {}\n",
		ShaderText:    "#version 330 core\nuniform sampler2D image;\nvoid main() {}\n",
		ShaderRainbow: "#version 330 core\n// rainbow\nuniform float time;\nuniform vec2 resolution;\nvoid main() {}\n",
	},
}
