//go:build mage

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binaryName = "faunareel"

// Default target runs Build.
var Default = Build

// Build compiles the faunareel binary into ./bin.
func Build() error {
	mg.Deps(Vet)
	return sh.RunV("go", "build", "-o", filepath.Join("bin", binaryName), "./cmd/faunareel")
}

// Test runs the full test suite.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet over the module.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Install installs the binary with go install.
func Install() error {
	return sh.RunV("go", "install", "./cmd/faunareel")
}

// Clean removes build output and generated run artifacts.
func Clean() error {
	for _, dir := range []string{"bin", "output_audio", "output_images", "output_video", ".cache"} {
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
	}
	return nil
}
