// Package cli wires the commit-guard and dirsync Cobra commands to the shared
// configuration loader and structured logger, and maps failures onto process
// exit codes.
package cli
