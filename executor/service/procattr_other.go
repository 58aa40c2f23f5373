//go:build !unix

package service

import "os/exec"

func setProcessGroup(cmd *exec.Cmd) {}

func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}

func peakRSSKB(cmd *exec.Cmd) int64 {
	return 0
}
