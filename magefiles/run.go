//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

type Run mg.Namespace

// Builds and runs the engine demo with lumen.toml.
func (Run) Engine() error {
	mg.Deps(Build.Engine)
	fmt.Println("Run engine...")
	return sh.RunV(binary("lumen"), "-config", "lumen.toml")
}

// Prints the vertex layout and uniform slots reflected from a shader file.
func (Run) Reflect(path string) error {
	mg.Deps(Build.ShaderInfo)
	return sh.RunV(binary("shaderinfo"), path)
}
