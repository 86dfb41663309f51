// Package gitrepo contains helpers for interrogating and manipulating Git repositories.
//
// RepositoryManager resolves the work tree root, classifies paths through
// ls-files and porcelain status, and performs the reset, stage and commit
// sequence used by guarded commits. All operations run through a GitExecutor.
package gitrepo
