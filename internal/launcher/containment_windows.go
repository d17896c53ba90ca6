//go:build windows

package launcher

import (
	"fmt"
	"os/exec"
	"unsafe"

	"golang.org/x/sys/windows"
)

// afterSpawn creates a job object with JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE
// and assigns the just-started child to it, so closing the job handle
// (warden exiting, crashing, or being killed) forcefully tears the
// child down too — the Windows analogue of the Unix process-group +
// Pdeathsig pairing in procattrs_linux.go.
func afterSpawn(cmd *exec.Cmd) (func(), error) {
	job, err := windows.CreateJobObject(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("launcher: CreateJobObject: %w", err)
	}

	info := windows.JOBOBJECT_EXTENDED_LIMIT_INFORMATION{
		BasicLimitInformation: windows.JOBOBJECT_BASIC_LIMIT_INFORMATION{
			LimitFlags: windows.JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE,
		},
	}
	if _, err := windows.SetInformationJobObject(
		job,
		windows.JobObjectExtendedLimitInformation,
		uintptr(unsafe.Pointer(&info)),
		uint32(unsafe.Sizeof(info)),
	); err != nil {
		_ = windows.CloseHandle(job)
		return nil, fmt.Errorf("launcher: SetInformationJobObject: %w", err)
	}

	procHandle, err := windows.OpenProcess(windows.PROCESS_SET_QUOTA|windows.PROCESS_TERMINATE, false, uint32(cmd.Process.Pid))
	if err != nil {
		_ = windows.CloseHandle(job)
		return nil, fmt.Errorf("launcher: OpenProcess: %w", err)
	}
	if err := windows.AssignProcessToJobObject(job, procHandle); err != nil {
		_ = windows.CloseHandle(procHandle)
		_ = windows.CloseHandle(job)
		return nil, fmt.Errorf("launcher: AssignProcessToJobObject: %w", err)
	}

	return func() {
		_ = windows.CloseHandle(procHandle)
		_ = windows.CloseHandle(job)
	}, nil
}

// enableVirtualTerminalProcessing turns on ANSI escape interpretation
// for the warden's own stdout console (§4.1). It does not touch the
// stderr console mode, and it has no effect on delegate output, which
// goes through pipes into the log file.
func enableVirtualTerminalProcessing() {
	h, err := windows.GetStdHandle(windows.STD_OUTPUT_HANDLE)
	if err != nil {
		return
	}
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return
	}
	_ = windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING)
}
