// Package tui is the interactive alias table.
//
// Model renders a table.Controller and maps keys to its operations. Store
// calls run as bubbletea commands, off the event loop. Prompts the
// controller asks from those goroutines reach the model through Prompter and
// are shown as a modal, one at a time.
package tui
