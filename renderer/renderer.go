// renderer/renderer.go
// Copyright(c) 2026 kanview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"fmt"
	"log/slog"
)

// ShaderStage identifies the pipeline stage a shader is compiled for.
type ShaderStage int

const (
	StageVertex ShaderStage = iota
	StageFragment
)

func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderStage(%d)", int(s))
	}
}

// InvalidLocation is returned by Device.UniformLocation for uniforms that
// a program doesn't declare (or that the shader compiler optimized
// away). Setting a uniform at InvalidLocation is a no-op.
const InvalidLocation int32 = -1

// Device defines the interface to the GPU that the Batch and GlyphAtlas
// are built on. There is currently a single implementation of it,
// OpenGL3Device, though having these details behind an interface makes it
// possible to test the drawing code without a GPU and would make it
// relatively easy to add other backends.
//
// All handles are owned by the caller that created them and must be
// released with the corresponding Delete method exactly once.
type Device interface {
	// CreateVertexBuffer allocates a dynamic vertex buffer that holds
	// capacity Vertex values with the Vertex attribute layout: 0 =
	// position, 1 = color, 2 = uv.
	CreateVertexBuffer(capacity int) (uint32, error)
	// UploadVertices replaces the first len(v) vertices of the buffer.
	UploadVertices(buffer uint32, v []Vertex)
	// DrawTriangles issues a single triangle-list draw of the first
	// count vertices in the buffer using the current program.
	DrawTriangles(buffer uint32, count int)
	DeleteBuffer(buffer uint32)

	// CompileShader returns a *ShaderError holding the compiler's log if
	// the source doesn't compile.
	CompileShader(stage ShaderStage, source string) (uint32, error)
	// LinkProgram returns a *ShaderError holding the linker's log on
	// failure. The shaders are detached from the program afterward so
	// that the caller can delete them.
	LinkProgram(vertex, fragment uint32) (uint32, error)
	DeleteShader(shader uint32)
	DeleteProgram(program uint32)
	UseProgram(program uint32)
	UniformLocation(program uint32, name string) int32
	SetUniform1f(location int32, v float32)
	SetUniform2f(location int32, x, y float32)

	// CreateTexture returns a single-channel 8-bit texture of the given
	// size with linear filtering and clamp-to-edge wrapping and no
	// initial contents.
	CreateTexture(width, height int) (uint32, error)
	// UploadTextureRegion copies w*h bytes of pixels, stored with a
	// stride of w, into the texture with the upper left at (x, y).
	UploadTextureRegion(texture uint32, x, y, w, h int, pixels []byte)
	BindTexture(texture uint32)
	DeleteTexture(texture uint32)

	Viewport(width, height int)
	Clear(color RGBA)
}

// ShaderError reports a shader that failed to compile or a program that
// failed to link, along with the diagnostic log from the driver.
type ShaderError struct {
	Stage ShaderStage
	Link  bool
	Name  string
	Log   string
}

func (e *ShaderError) Error() string {
	what := e.Stage.String() + " shader compile"
	if e.Link {
		what = "program link"
	}
	if e.Name != "" {
		return fmt.Sprintf("%s: %s failed: %s", e.Name, what, e.Log)
	}
	return fmt.Sprintf("%s failed: %s", what, e.Log)
}

// Stats encapsulates assorted statistics from rendering.
type Stats struct {
	Flushes     int
	DrawCalls   int
	Vertices    int
	Triangles   int
	ShaderBinds int
}

func (s *Stats) String() string {
	return fmt.Sprintf("%d flushes, %d draw calls: %d vertices, %d tris, %d shader binds",
		s.Flushes, s.DrawCalls, s.Vertices, s.Triangles, s.ShaderBinds)
}

func (s *Stats) Merge(o Stats) {
	s.Flushes += o.Flushes
	s.DrawCalls += o.DrawCalls
	s.Vertices += o.Vertices
	s.Triangles += o.Triangles
	s.ShaderBinds += o.ShaderBinds
}

func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("flushes", s.Flushes),
		slog.Int("draw_calls", s.DrawCalls),
		slog.Int("vertices", s.Vertices),
		slog.Int("tris", s.Triangles),
		slog.Int("shader_binds", s.ShaderBinds),
	)
}
