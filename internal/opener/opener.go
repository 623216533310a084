// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package opener shows a folder in the platform's file manager.
package opener

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
)

const (
	binExplorer = "explorer"
	binOpen     = "open"
	binXDGOpen  = "xdg-open"
)

// Opener opens directories in the desktop file manager.
type Opener interface {
	// Name returns the helper binary used ("explorer", "open" or "xdg-open").
	Name() string

	// Available reports whether the helper exists on PATH.
	Available() bool

	// Open launches the helper on dir without waiting for it to exit.
	Open(dir string) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Start(name string, args ...string) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Start launches the command and lets it outlive the caller.
func (o *osExecutor) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

type opener struct {
	bin  string
	exec executor
}

func (o *opener) Name() string { return o.bin }

func (o *opener) Available() bool {
	_, err := o.exec.LookPath(o.bin)
	return err == nil
}

func (o *opener) Open(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", dir, err)
	}
	if !o.Available() {
		return fmt.Errorf("cannot open %s: %s not found on PATH", abs, o.bin)
	}
	if err := o.exec.Start(o.bin, abs); err != nil {
		return fmt.Errorf("running %s %s: %w", o.bin, abs, err)
	}
	return nil
}

var defaultExec = &osExecutor{}

// New returns the Opener for the running platform.
func New() Opener {
	return newOpener(runtime.GOOS, defaultExec)
}

func newOpener(goos string, exec executor) *opener {
	switch goos {
	case "windows":
		return &opener{bin: binExplorer, exec: exec}
	case "darwin":
		return &opener{bin: binOpen, exec: exec}
	default:
		return &opener{bin: binXDGOpen, exec: exec}
	}
}
