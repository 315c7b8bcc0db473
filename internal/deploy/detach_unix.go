//go:build unix

package deploy

import (
	"os/exec"
	"syscall"
)

// detach moves the script into its own process group so a terminal
// interrupt reaches worldsmith but not the script.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
