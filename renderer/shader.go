// renderer/shader.go
// Copyright(c) 2026 kanview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"fmt"
	"io/fs"

	"github.com/kanview/kanview/util"
)

// Shader identifies one of the fragment programs the Batch can draw
// with. All of them share the same vertex shader.
type Shader int

const (
	// ShaderColor outputs the interpolated vertex color.
	ShaderColor Shader = iota
	// ShaderText treats the bound single-channel texture as coverage and
	// multiplies it into the vertex color's alpha.
	ShaderText
	// ShaderRainbow ignores the vertex color and produces a hue sweep that
	// animates with the time uniform.
	ShaderRainbow
	NumShaders
)

func (s Shader) String() string {
	switch s {
	case ShaderColor:
		return "color"
	case ShaderText:
		return "text"
	case ShaderRainbow:
		return "rainbow"
	default:
		return fmt.Sprintf("Shader(%d)", int(s))
	}
}

func (s Shader) valid() bool {
	return s >= 0 && s < NumShaders
}

// ParseShader returns the Shader with the given name.
func ParseShader(name string) (Shader, error) {
	for s := range NumShaders {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownShader)
}

// Uniform identifies the per-program uniforms the Batch maintains.
type Uniform int

const (
	UniformTime Uniform = iota
	UniformResolution
	NumUniforms
)

var uniformNames = [NumUniforms]string{
	UniformTime:       "time",
	UniformResolution: "resolution",
}

func (u Uniform) String() string {
	if u >= 0 && u < NumUniforms {
		return uniformNames[u]
	}
	return fmt.Sprintf("Uniform(%d)", int(u))
}

// ShaderSources holds the GLSL for the shared vertex shader and each of
// the fragment programs.
type ShaderSources struct {
	Vertex   string
	Fragment [NumShaders]string
}

const vertexShaderPath = "shaders/simple.vert"

var fragmentShaderPaths = [NumShaders]string{
	ShaderColor:   "shaders/color.frag",
	ShaderText:    "shaders/text.frag",
	ShaderRainbow: "shaders/rainbow.frag",
}

// LoadShaderSources reads the shader sources from fsys; files may be
// stored zstd-compressed with a .zst suffix.
func LoadShaderSources(fsys fs.FS) (ShaderSources, error) {
	var src ShaderSources
	var err error
	if src.Vertex, err = loadShader(fsys, vertexShaderPath); err != nil {
		return ShaderSources{}, err
	}
	for s := range NumShaders {
		if src.Fragment[s], err = loadShader(fsys, fragmentShaderPaths[s]); err != nil {
			return ShaderSources{}, err
		}
	}
	return src, nil
}

func loadShader(fsys fs.FS, path string) (string, error) {
	s, err := util.LoadResourceString(fsys, path)
	if err == nil {
		return s, nil
	}
	if zs, zerr := util.LoadResourceString(fsys, path+".zst"); zerr == nil {
		return zs, nil
	}
	return "", fmt.Errorf("%s: %w", path, err)
}
