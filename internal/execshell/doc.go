// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner with lifecycle logging and converts
// non-zero exit codes into CommandFailedError values. OSCommandRunner is the
// default runner backed by os/exec; tests substitute recording runners.
package execshell
