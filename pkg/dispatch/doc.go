// Package dispatch routes single lines of user input: recognized
// slash commands mutate the session, anything else is a chat turn sent
// to the completion client.
//
// Invariants:
// - Blank lines are no-ops; unknown slash commands are reported.
// - A rejected command leaves the session unchanged.
// - The read loop exits only on /exit or end-of-input, flushing the
//   active agent's history first.
package dispatch
