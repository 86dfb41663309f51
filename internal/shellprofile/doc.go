// Package shellprofile persists exported variables in shell start-up files.
//
// Patcher only rewrites lines that assign a recognized variable name and never
// restructures the rest of the file, so repeated applications are idempotent.
package shellprofile
