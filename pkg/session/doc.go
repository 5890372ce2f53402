// Package session holds the mutable state of one interactive chat
// session: the active agent, its in-memory history, the registry of
// known agents, and the provider/model selection.
//
// Invariants:
// - The active agent is always a member of the registry.
// - "main" is always registered and can never be deleted.
// - History grows by exactly two turns per successful chat round; a
//   failed round leaves it untouched.
// - History is flushed to the store only at agent boundaries (fork,
//   subfork, switch, delete of the active agent, exit), never after an
//   individual chat turn. Turns between boundaries are lost on abnormal
//   termination; that durability trade-off is deliberate.
package session
