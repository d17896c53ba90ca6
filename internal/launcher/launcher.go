// Package launcher implements the Child Launcher (§4.1): resolving and
// spawning the delegate binary, wiring stdin passthrough, teeing
// stdout+stderr into a single combined-output log file, and placing
// the child under platform containment so it cannot outlive a
// vanished warden.
package launcher

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/nullforge/warden/internal/config"
	"github.com/nullforge/warden/internal/logger"
)

// Spawned is a running (or just-exited) delegate child, grounded on
// the distilled source's supervisor.rs spawn_copy/tee shape and the
// teacher's process.ConfigureCmd writer wiring.
type Spawned struct {
	cmd      *exec.Cmd
	PID      int
	LogPath  string
	logFile  *os.File
	copyDone chan error
	jobDone  func()
}

// Spawn resolves DelegateBinary via the host search path (no override,
// §4.1 step 1), creates the log file exclusively, and starts the
// delegate with args forwarded verbatim and stdin inherited.
func Spawn(args []string, logPath string) (*Spawned, error) {
	binPath, err := exec.LookPath(config.DelegateBinary)
	if err != nil {
		return nil, fmt.Errorf("launcher: delegate %q not found: %w", config.DelegateBinary, err)
	}

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("launcher: create log file %s: %w", logPath, err)
	}

	cmd := exec.Command(binPath, args...)
	cmd.Stdin = os.Stdin

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		_ = logFile.Close()
		return nil, fmt.Errorf("launcher: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		_ = logFile.Close()
		return nil, fmt.Errorf("launcher: stderr pipe: %w", err)
	}

	applyProcAttrs(cmd)
	enableVirtualTerminalProcessing()

	if err := cmd.Start(); err != nil {
		_ = logFile.Close()
		return nil, fmt.Errorf("launcher: spawn %s: %w", binPath, err)
	}

	jobDone, err := afterSpawn(cmd)
	if err != nil {
		// Containment is best-effort: a missing job object / process
		// group must not abort an already-spawned child.
		logger.Warn("launcher: platform containment setup failed", "error", err)
	}

	out := &syncWriter{f: logFile}
	done := make(chan error, 2)
	go pump(stdout, out, done)
	go pump(stderr, out, done)

	return &Spawned{
		cmd:      cmd,
		PID:      cmd.Process.Pid,
		LogPath:  logPath,
		logFile:  logFile,
		copyDone: done,
		jobDone:  jobDone,
	}, nil
}

// Wait drains both IO pumps until the child closes its output, then
// reaps the child, flushes and closes the log file, releases platform
// containment resources, and returns a platform-conventional exit code
// (§4.7 S4, §8 P3).
func (s *Spawned) Wait() (int, error) {
	for range 2 {
		if err := <-s.copyDone; err != nil {
			logger.Debug("launcher: output copy ended with error", "error", err)
		}
	}
	waitErr := s.cmd.Wait()
	_ = s.logFile.Sync()
	_ = s.logFile.Close()
	if s.jobDone != nil {
		s.jobDone()
	}
	return exitCodeOf(s.cmd.ProcessState, waitErr), waitErr
}

func pump(r io.Reader, w io.Writer, done chan<- error) {
	buf := make([]byte, 8192)
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				done <- werr
				return
			}
		}
		if rerr != nil {
			if rerr == io.EOF {
				done <- nil
			} else {
				done <- rerr
			}
			return
		}
	}
}

// syncWriter serializes concurrent writers (stdout pump, stderr pump)
// into one file handle so the combined log is a byte-exact
// interleaving in read order, never a torn write (§6 Log file, I3).
type syncWriter struct {
	mu sync.Mutex
	f  *os.File
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Write(p)
}
