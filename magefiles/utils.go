//go:build mage

package main

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binDir = "bin"

// glfw and go-gl are cgo packages.
var goEnv = map[string]string{"CGO_ENABLED": "1"}

func binary(name string) string {
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(binDir, name)
}

// goRun runs the go tool, echoing its output when mage runs verbose or stream is set.
func goRun(stream bool, args ...string) error {
	run := sh.RunWith
	if stream || mg.Verbose() {
		run = sh.RunWithV
	}
	if err := run(goEnv, mg.GoCmd(), args...); err != nil {
		return fmt.Errorf("go %s: %w", args[0], err)
	}
	return nil
}

func goBuild(name, pkg string) error {
	return goRun(true, "build", "-o", binary(name), pkg)
}

func goTidy() error {
	for _, args := range [][]string{{"mod", "tidy"}, {"generate", "./..."}} {
		if err := goRun(false, args...); err != nil {
			return err
		}
	}
	return nil
}
