//go:build !windows

package process

import (
	"os/exec"
	"syscall"
	"testing"
	"time"
)

func TestKillProcessGroup_UnknownPID(t *testing.T) {
	t.Parallel()

	// Must not panic. PID 0 would target our own group, so stay far away from it.
	KillProcessGroup(999999999)
}

func TestKillProcessGroup_KillsGroupLeader(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep binary not available")
	}

	cmd := exec.Command("sleep", "30")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		t.Fatalf("starting child: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	KillProcessGroup(cmd.Process.Pid)

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected child to exit with a signal, got clean exit")
		}
	case <-time.After(5 * time.Second):
		_ = cmd.Process.Kill()
		t.Fatal("child still running after KillProcessGroup")
	}
}
