// Package dirsync mirrors a documentation directory between its canonical
// location and an in-repository working copy.
//
// ResolvePlan turns flags, an environment snapshot and computed defaults into
// a Plan. Service.Synchronize checks the source, applies the safety gate for
// targets outside <repository>/docs and runs a single rsync transfer.
// Service.Persist records DOCS_SOURCE and DOCS_CATEGORY in the shell start-up
// file.
package dirsync
