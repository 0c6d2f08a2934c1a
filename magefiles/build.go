//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the engine demo into bin/lumen.
func (Build) Engine() error {
	return goBuild("lumen", ".")
}

// Builds the shader reflection tool into bin/shaderinfo.
func (Build) ShaderInfo() error {
	return goBuild("shaderinfo", "./cmd/shaderinfo")
}

// Runs go mod tidy and go generate.
func (Build) Tidy() error {
	return goTidy()
}
