//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Compiles the shaders and runs the demo.
func (Run) Orbit() error {
	if err := (Build{}).Shaders(); err != nil {
		return err
	}
	fmt.Println("Running orbit...")
	if _, err := executeCmd("go", withArgs("run", "."), withStream()); err != nil {
		return err
	}
	return nil
}
