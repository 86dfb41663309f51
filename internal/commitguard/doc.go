// Package commitguard implements guarded commits restricted to named paths.
//
// Service classifies every requested path as missing, pristine or eligible
// before any mutation, then resets the index, stages exactly the requested
// paths and commits them. CommandBuilder exposes the workflow as the
// commit-guard Cobra command.
package commitguard
