// Package format renders byte counts, durations and progress bars for chat
// status messages.
package format
