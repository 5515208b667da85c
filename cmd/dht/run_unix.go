//go:build !windows

package main

import "syscall"

// execReplace replaces the current process image with path, exactly as
// the teacher's ShellCmd.Run does for its container engine (shell.go):
// args[0] is conventionally path itself.
func execReplace(path string, args []string, env []string) error {
	return syscall.Exec(path, args, env)
}
