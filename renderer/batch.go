// renderer/batch.go
// Copyright(c) 2026 kanview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"errors"
	"fmt"

	"github.com/kanview/kanview/log"
	"github.com/kanview/kanview/math"
)

// VertexCapacity is the maximum number of vertices a Batch holds
// between flushes; it's a multiple of both 3 and 6 so that the buffer can
// be filled exactly with either triangles or quads.
const VertexCapacity = 3 * 5 * 1024

var (
	ErrBatchFull     = errors.New("vertex batch is full")
	ErrNoShader      = errors.New("no shader has been selected")
	ErrUnknownShader = errors.New("unknown shader")
)

// Vertex is the layout of the vertices that are uploaded to the GPU: 32
// bytes, with position in pixels (origin at the lower left, y up), an
// RGBA color, and texture coordinates.
type Vertex struct {
	Position [2]float32
	Color    RGBA
	UV       [2]float32
}

// Batch accumulates triangles on the CPU and submits them to the Device
// in a single draw call when Flush is called. It holds one program per
// Shader, all linked against a shared vertex shader, and keeps the
// current program's time and resolution uniforms up to date.
//
// A Batch must only be used from the thread that owns the graphics
// context.
type Batch struct {
	dev Device
	lg  *log.Logger

	buffer   uint32
	programs [NumShaders]uint32

	shader     Shader
	haveShader bool
	locations  [NumUniforms]int32
	time       float64
	resolution [2]float32
	vertices   []Vertex
	stats      Stats
	disposed   bool
}

// NewBatch allocates the vertex buffer and compiles and links the
// programs for all of the shaders in src. On failure, everything that had
// been created is released before the error is returned.
func NewBatch(dev Device, src ShaderSources, lg *log.Logger) (*Batch, error) {
	b := &Batch{
		dev:      dev,
		lg:       lg,
		vertices: make([]Vertex, 0, VertexCapacity),
	}
	for u := range NumUniforms {
		b.locations[u] = InvalidLocation
	}

	var err error
	if b.buffer, err = dev.CreateVertexBuffer(VertexCapacity); err != nil {
		return nil, fmt.Errorf("vertex buffer: %w", err)
	}

	vs, err := dev.CompileShader(StageVertex, src.Vertex)
	if err != nil {
		b.Dispose()
		return nil, nameShaderError(err, "simple")
	}
	defer dev.DeleteShader(vs)

	for s := range NumShaders {
		fs, err := dev.CompileShader(StageFragment, src.Fragment[s])
		if err != nil {
			b.Dispose()
			return nil, nameShaderError(err, s.String())
		}
		prog, err := dev.LinkProgram(vs, fs)
		dev.DeleteShader(fs)
		if err != nil {
			b.Dispose()
			return nil, nameShaderError(err, s.String())
		}
		b.programs[s] = prog
		lg.Debugf("%s: linked program %d", s, prog)
	}

	return b, nil
}

func nameShaderError(err error, name string) error {
	var se *ShaderError
	if errors.As(err, &se) && se.Name == "" {
		se.Name = name
		return se
	}
	return fmt.Errorf("%s: %w", name, err)
}

// Dispose releases the programs and the vertex buffer. It may be called
// more than once.
func (b *Batch) Dispose() {
	if b.disposed {
		return
	}
	b.disposed = true
	for s, prog := range b.programs {
		if prog != 0 {
			b.dev.DeleteProgram(prog)
			b.programs[s] = 0
		}
	}
	if b.buffer != 0 {
		b.dev.DeleteBuffer(b.buffer)
		b.buffer = 0
	}
	b.vertices = b.vertices[:0]
}

// SetShader makes s's program current and resolves its uniform locations
// afresh, then uploads the current time and resolution to them.
// Vertices that are already in the batch are drawn with s's program at
// the next Flush.
func (b *Batch) SetShader(s Shader) error {
	if !s.valid() {
		return fmt.Errorf("%s: %w", s, ErrUnknownShader)
	}

	prog := b.programs[s]
	b.dev.UseProgram(prog)
	b.shader, b.haveShader = s, true
	b.stats.ShaderBinds++

	for u := range NumUniforms {
		b.locations[u] = b.dev.UniformLocation(prog, uniformNames[u])
	}
	b.dev.SetUniform1f(b.locations[UniformTime], float32(b.time))
	b.dev.SetUniform2f(b.locations[UniformResolution], b.resolution[0], b.resolution[1])
	return nil
}

// Shader returns the most recently selected shader; ok is false if
// SetShader has not yet been called.
func (b *Batch) Shader() (s Shader, ok bool) {
	return b.shader, b.haveShader
}

// SetTime sets the time (in seconds) that is passed to the shaders; it
// is uploaded at the next SetShader.
func (b *Batch) SetTime(t float64) {
	b.time = t
}

// SetResolution sets the size of the viewport in pixels; it's used by
// the vertex shader to map pixel coordinates to clip space. Like SetTime,
// it takes effect at the next SetShader.
func (b *Batch) SetResolution(width, height float32) {
	b.resolution = [2]float32{width, height}
}

// BeginFrame sets the viewport, clears it, and records the time and
// resolution for the following SetShader calls.
func (b *Batch) BeginFrame(t float64, width, height int, clear RGBA) {
	b.dev.Viewport(width, height)
	b.dev.Clear(clear)
	b.SetTime(t)
	b.SetResolution(float32(width), float32(height))
}

// BindTexture binds the texture that ShaderText samples from.
func (b *Batch) BindTexture(texture uint32) {
	b.dev.BindTexture(texture)
}

// Len returns the number of vertices that are waiting to be flushed.
func (b *Batch) Len() int {
	return len(b.vertices)
}

func (b *Batch) Cap() int {
	return VertexCapacity
}

// Vertices returns the pending vertices. The returned slice is only
// valid until the next call to a Batch method.
func (b *Batch) Vertices() []Vertex {
	return b.vertices
}

func (b *Batch) reserve(n int) error {
	if len(b.vertices)+n > VertexCapacity {
		return fmt.Errorf("%d pending, %d more requested: %w", len(b.vertices), n, ErrBatchFull)
	}
	return nil
}

func (b *Batch) vertex(p [2]float32, c RGBA, uv [2]float32) {
	b.vertices = append(b.vertices, Vertex{Position: p, Color: c, UV: uv})
}

// EmitTriangle adds a single triangle to the batch; nothing is added if
// there isn't room for all three of its vertices.
func (b *Batch) EmitTriangle(p0, p1, p2 [2]float32, c0, c1, c2 RGBA, uv0, uv1, uv2 [2]float32) error {
	if err := b.reserve(3); err != nil {
		return err
	}
	b.vertex(p0, c0, uv0)
	b.vertex(p1, c1, uv1)
	b.vertex(p2, c2, uv2)
	return nil
}

// EmitQuad adds the quad with corners p0 (lower left), p1 (lower right),
// p2 (upper left), and p3 (upper right) as the two triangles (p0, p1, p2)
// and (p1, p2, p3).
func (b *Batch) EmitQuad(p0, p1, p2, p3 [2]float32, c0, c1, c2, c3 RGBA, uv0, uv1, uv2, uv3 [2]float32) error {
	if err := b.reserve(6); err != nil {
		return err
	}
	b.vertex(p0, c0, uv0)
	b.vertex(p1, c1, uv1)
	b.vertex(p2, c2, uv2)
	b.vertex(p1, c1, uv1)
	b.vertex(p2, c2, uv2)
	b.vertex(p3, c3, uv3)
	return nil
}

// EmitRectGradient adds an axis-aligned rectangle with p at its first
// corner and the given size with a color for each corner. The size may
// be negative in either dimension; text is drawn with negative heights
// so that texture row 0 lands at the top of the glyph.
func (b *Batch) EmitRectGradient(p [2]float32, size [2]float32, c0, c1, c2, c3 RGBA) error {
	return b.emitRect(p, size, c0, c1, c2, c3, [2]float32{}, [2]float32{})
}

// EmitRectGradientCenter is the same as EmitRectGradient but p gives the
// center of the rectangle.
func (b *Batch) EmitRectGradientCenter(p [2]float32, size [2]float32, c0, c1, c2, c3 RGBA) error {
	return b.EmitRectGradient(math.Sub2f(p, math.Scale2f(size, 0.5)), size, c0, c1, c2, c3)
}

// EmitRect adds a single-colored rectangle.
func (b *Batch) EmitRect(p [2]float32, size [2]float32, c RGBA) error {
	return b.EmitRectGradient(p, size, c, c, c, c)
}

func (b *Batch) EmitRectCenter(p [2]float32, size [2]float32, c RGBA) error {
	return b.EmitRectGradientCenter(p, size, c, c, c, c)
}

// EmitImageRect adds a rectangle that samples the texture region with
// its first corner at uvp and the given uv size.
func (b *Batch) EmitImageRect(p [2]float32, size [2]float32, c RGBA, uvp [2]float32, uvs [2]float32) error {
	return b.emitRect(p, size, c, c, c, c, uvp, uvs)
}

func (b *Batch) emitRect(p, size [2]float32, c0, c1, c2, c3 RGBA, uvp, uvs [2]float32) error {
	w, h := size[0], size[1]
	return b.EmitQuad(
		p, math.Add2f(p, [2]float32{w, 0}), math.Add2f(p, [2]float32{0, h}), math.Add2f(p, size),
		c0, c1, c2, c3,
		uvp, math.Add2f(uvp, [2]float32{uvs[0], 0}), math.Add2f(uvp, [2]float32{0, uvs[1]}), math.Add2f(uvp, uvs))
}

// Flush uploads the pending vertices and draws them with the program
// selected by the last call to SetShader. A Flush with nothing pending
// doesn't touch the device.
func (b *Batch) Flush() error {
	n := len(b.vertices)
	if n == 0 {
		return nil
	}
	if !b.haveShader {
		return fmt.Errorf("%d vertices pending: %w", n, ErrNoShader)
	}

	b.dev.UploadVertices(b.buffer, b.vertices)
	b.dev.DrawTriangles(b.buffer, n)

	b.stats.Flushes++
	b.stats.DrawCalls++
	b.stats.Vertices += n
	b.stats.Triangles += n / 3

	b.vertices = b.vertices[:0]
	return nil
}

// Stats returns the statistics accumulated since the last call to
// ResetStats.
func (b *Batch) Stats() Stats {
	return b.stats
}

func (b *Batch) ResetStats() {
	b.stats = Stats{}
}
