//go:build !unix

package runner

import (
	"os"
	"os/exec"
)

func setProcessGroup(*exec.Cmd) {}

// Without process groups the child is killed directly.
func terminate(p *os.Process) error {
	return p.Kill()
}

func killGroup(*os.Process) error {
	return nil
}
