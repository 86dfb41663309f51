// Package prompt provides operator confirmation and terminal detection.
package prompt
