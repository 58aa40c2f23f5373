package service

import (
	"context"
	"os/exec"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/to404hanga/online_judge_engine/executor/materializer"
	"github.com/to404hanga/online_judge_engine/executor/workspace"
	"github.com/to404hanga/online_judge_engine/model"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

func newPythonProgram(t *testing.T, source string) (*workspace.Workspace, *materializer.Program) {
	t.Helper()
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not installed")
	}
	m, err := workspace.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	ws, err := m.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	prog := &materializer.Program{Language: model.LanguagePython, FileName: "main.py", Source: source}
	if err := ws.WriteFile(prog.FileName, []byte(source)); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return ws, prog
}

func TestHostExecuteOutputAndStderr(t *testing.T) {
	ws, prog := newPythonProgram(t, "import sys\nprint(int(input()) * 2)\nprint('warn', file=sys.stderr)\nsys.exit(3)\n")
	e := NewHostExecutor(loggerv2.GetGlobalLogger(), 5)

	out, err := e.Execute(context.Background(), ws, prog, "21\n", 2*time.Second)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.Stdout != "42\n" || strings.TrimSpace(out.Stderr) != "warn" {
		t.Errorf("stdout = %q, stderr = %q", out.Stdout, out.Stderr)
	}
	if out.ExitStatus != ExitNonzero || out.ExitCode != 3 {
		t.Errorf("exit = %v/%d", out.ExitStatus, out.ExitCode)
	}
}

// The detached child keeps every inherited descriptor for 30s. The run must
// still end shortly after the time limit.
func TestHostExecuteKillsDespiteDetachedChild(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("setsid escape is linux specific")
	}
	ws, prog := newPythonProgram(t, `import os, sys, time
if os.fork() == 0:
    os.setsid()
    sys.stderr.write("child detached\n")
    sys.stderr.flush()
    time.sleep(30)
    os._exit(0)
while True:
    pass
`)
	e := NewHostExecutor(loggerv2.GetGlobalLogger(), 5)

	startAt := time.Now()
	out, err := e.Execute(context.Background(), ws, prog, "", time.Second)
	elapsed := time.Since(startAt)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.ExitStatus != ExitKilled {
		t.Errorf("exit status = %v, want %v", out.ExitStatus, ExitKilled)
	}
	if elapsed > 3*time.Second {
		t.Errorf("execute took %s, limit 1s", elapsed)
	}
}
