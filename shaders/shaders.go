// Package shaders carries the compiled SPIR-V binaries. Run
// `mage build:shaders` to regenerate them from the GLSL sources.
package shaders

import _ "embed"

//go:embed vert.spv
var Vertex []byte

//go:embed frag.spv
var Fragment []byte
