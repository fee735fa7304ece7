// Package memory provides in-memory implementations of the driven ports.
// They back tests and dry runs where nothing should touch the filesystem.
package memory
