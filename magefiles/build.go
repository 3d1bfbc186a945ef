//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Compiles the GLSL shaders to SPIR-V with glslc.
func (Build) Shaders() error {
	if _, err := executeCmd("glslc", withArgs("shaders/shader.vert", "-o", "shaders/vert.spv"), withStream()); err != nil {
		return err
	}
	if _, err := executeCmd("glslc", withArgs("shaders/shader.frag", "-o", "shaders/frag.spv"), withStream()); err != nil {
		return err
	}
	return nil
}

// Compiles the shaders and then the binary.
func (Build) Orbit() error {
	if err := (Build{}).Shaders(); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("build", "-o", "orbit", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the test suite.
func Test() error {
	if _, err := executeCmd("go", withArgs("test", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs go vet over the module.
func Vet() error {
	if _, err := executeCmd("go", withArgs("vet", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}
