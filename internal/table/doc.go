// Package table implements the alias table controller: an in-memory,
// sortable, editable view of relay aliases kept consistent with the relay
// API.
//
// The controller owns no terminal code. It asks a Prompter for confirmation
// and values and talks to a Store for data, so the same operations back the
// interactive UI and the scriptable subcommands.
//
// # Consistency
//
// The in-memory set is a cache of the last known server state:
//   - Load replaces it wholesale, or leaves it untouched on failure
//   - Edits replace one record with the server's response, never the delta
//   - Deletes remove locally only after the remote delete succeeded
//   - A failed operation never changes local state
//
// # Concurrency
//
// All state is guarded by one mutex so a UI can render while a store call
// is outstanding. At most one mutation per alias is in flight (ErrBusy), and
// a mutation response that arrives after a newer Load is discarded
// (ErrSuperseded).
package table
