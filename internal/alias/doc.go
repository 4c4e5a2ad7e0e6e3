// Package alias defines the relay address record and the values derived from it.
//
// This package contains types and pure functions only. Every other internal
// package imports alias; alias imports nothing internal.
//
// Key design constraints:
//   - The remote store is the source of truth; an Alias is the last known server state
//   - BlockingMode is a view over (enabled, block_list_emails), never stored
//   - All JSON tags use snake_case, matching the relay API
//   - Row keys are the decimal string form of ID
package alias
