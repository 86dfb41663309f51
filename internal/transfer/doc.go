// Package transfer mirrors directories through rsync.
package transfer
