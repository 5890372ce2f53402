// Package store persists per-agent conversation history as JSONL files.
//
// Invariants:
// - Agent identifiers are sanitized before any file access; the same raw
//   input always maps to the same file.
// - Save replaces the whole history atomically; re-flushing is idempotent.
// - Read and write failures degrade (empty history, false return) and are
//   reported as warnings, never as fatal errors.
//
// Usage:
//
//	st, _ := store.New("/tmp/weft/agents", printer)
//	st.Save("main", []store.Turn{{Role: store.RoleUser, Content: "hello"}})
//	turns := st.Load("main")
//	_ = turns
package store
