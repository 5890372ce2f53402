package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/weftlabs/weft/pkg/provider"
	"github.com/weftlabs/weft/pkg/store"
)

// Rejections for agent operations. Always reported to the user, never
// fatal, and the session state is left unchanged.
var (
	ErrExists   = errors.New("agent already exists")
	ErrNotFound = errors.New("agent does not exist")
	ErrReserved = errors.New("agent is reserved")
)

// Completer is the completion client the chat path calls into.
type Completer interface {
	Complete(ctx context.Context, sel *provider.Selection, turns []store.Turn) (string, bool)
}

// Session is the single mutable record behind the dispatch loop. All
// methods assume single-threaded dispatch; wrap the whole object in one
// mutex before adding concurrent callers, since fallback reassignment
// and flush/load sequencing are not safe under concurrent dispatch.
type Session struct {
	Active    string
	History   []store.Turn
	Selection provider.Selection

	agents   map[string]struct{}
	store    *store.Store
	registry *provider.Registry
}

// Status is a snapshot of the session for display.
type Status struct {
	Provider string
	Model    string
	Agent    string
	Turns    int
}

// New creates a session with "main" active, its history loaded from the
// store, and the registry seeded with every persisted agent.
func New(st *store.Store, reg *provider.Registry) *Session {
	agents := map[string]struct{}{store.Reserved: {}}
	for _, id := range st.List() {
		agents[id] = struct{}{}
	}

	s := &Session{
		Active:  store.Reserved,
		History: st.Load(store.Reserved),
		Selection: provider.Selection{
			Provider: reg.Primary,
			Model:    reg.DefaultModel(reg.Primary),
		},
		agents:   agents,
		store:    st,
		registry: reg,
	}

	log.Info().
		Str("agent", s.Active).
		Int("turns", len(s.History)).
		Int("agents", len(agents)).
		Msg("Session initialized")

	return s
}

// Registered reports whether the sanitized form of raw is a known agent.
func (s *Session) Registered(raw string) bool {
	_, ok := s.agents[store.Sanitize(raw)]
	return ok
}

// Flush writes the active agent's in-memory history to the store.
func (s *Session) Flush() bool {
	return s.store.Save(s.Active, s.History)
}

// Fork flushes the active agent and starts a fresh, empty agent under
// the sanitized id.
func (s *Session) Fork(raw string) error {
	id := store.Sanitize(raw)
	if _, ok := s.agents[id]; ok {
		return fmt.Errorf("%q: %w", id, ErrExists)
	}

	s.Flush()
	s.Active = id
	s.History = nil
	s.agents[id] = struct{}{}

	log.Info().Str("agent", id).Msg("Forked new agent")
	return nil
}

// Subfork flushes the active agent and starts a new agent under the
// sanitized id carrying an independent copy of the current history. The
// copy is persisted immediately.
func (s *Session) Subfork(raw string) error {
	id := store.Sanitize(raw)
	if _, ok := s.agents[id]; ok {
		return fmt.Errorf("%q: %w", id, ErrExists)
	}

	s.Flush()

	copied := make([]store.Turn, len(s.History))
	copy(copied, s.History)

	s.Active = id
	s.History = copied
	s.agents[id] = struct{}{}
	s.store.Save(id, copied)

	log.Info().Str("agent", id).Int("turns", len(copied)).Msg("Subforked agent")
	return nil
}

// Switch flushes the active agent and makes the sanitized id active,
// loading its history from the store.
func (s *Session) Switch(raw string) error {
	id := store.Sanitize(raw)
	if _, ok := s.agents[id]; !ok {
		return fmt.Errorf("%q: %w", id, ErrNotFound)
	}

	s.Flush()
	s.Active = id
	s.History = s.store.Load(id)

	log.Info().Str("agent", id).Int("turns", len(s.History)).Msg("Switched agent")
	return nil
}

// Delete removes the sanitized id from the registry and the store.
// Deleting "main" is rejected. Deleting the active agent falls back to
// "main", reloading its history; wasActive reports that case so the
// caller can emit the distinct notice.
func (s *Session) Delete(raw string) (wasActive bool, err error) {
	id := store.Sanitize(raw)
	if id == store.Reserved {
		return false, fmt.Errorf("%q: %w", id, ErrReserved)
	}
	if _, ok := s.agents[id]; !ok {
		return false, fmt.Errorf("%q: %w", id, ErrNotFound)
	}

	s.store.Remove(id)
	delete(s.agents, id)

	if s.Active == id {
		s.Active = store.Reserved
		s.History = s.store.Load(store.Reserved)
		log.Info().Str("agent", id).Msg("Deleted active agent, reverted to main")
		return true, nil
	}

	log.Info().Str("agent", id).Msg("Deleted agent")
	return false, nil
}

// List returns the registered agent identifiers in lexicographic order.
func (s *Session) List() []string {
	ids := make([]string, 0, len(s.agents))
	for id := range s.agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SelectProvider makes name the selected provider and resets the model
// to that provider's default.
func (s *Session) SelectProvider(name string) error {
	if !s.registry.Has(name) {
		return &provider.ConfigError{Provider: name, Reason: "unknown provider"}
	}
	s.Selection.Provider = name
	s.Selection.Model = s.registry.DefaultModel(name)
	log.Info().Str("provider", name).Str("model", s.Selection.Model).Msg("Provider selected")
	return nil
}

// SelectModel makes name the selected model. The name must exist under
// the currently selected provider.
func (s *Session) SelectModel(name string) error {
	if !s.registry.HasModel(s.Selection.Provider, name) {
		return &provider.ConfigError{
			Provider: s.Selection.Provider,
			Reason:   fmt.Sprintf("no model %q configured", name),
		}
	}
	s.Selection.Model = name
	log.Info().Str("provider", s.Selection.Provider).Str("model", name).Msg("Model selected")
	return nil
}

// Models returns the model keys available under the selected provider.
func (s *Session) Models() []string {
	return s.registry.Models(s.Selection.Provider)
}

// RemoteModel returns the remote name for a model key of the selected
// provider.
func (s *Session) RemoteModel(model string) string {
	return s.registry.RemoteModel(s.Selection.Provider, model)
}

// Status reports the current selection, active agent and history size.
func (s *Session) Status() Status {
	return Status{
		Provider: s.Selection.Provider,
		Model:    s.Selection.Model,
		Agent:    s.Active,
		Turns:    len(s.History),
	}
}

// Chat runs one conversation round: the in-memory history plus the new
// user line go to the completer, and on success both the user line and
// the assistant reply are appended. A failed round records nothing.
func (s *Session) Chat(ctx context.Context, completer Completer, line string) (string, bool) {
	now := time.Now()
	userTurn := store.Turn{Role: store.RoleUser, Content: line, At: now}

	turns := make([]store.Turn, 0, len(s.History)+1)
	turns = append(turns, s.History...)
	turns = append(turns, userTurn)

	content, ok := completer.Complete(ctx, &s.Selection, turns)
	if !ok {
		return "", false
	}

	s.History = append(s.History,
		userTurn,
		store.Turn{Role: store.RoleAssistant, Content: content, At: time.Now()},
	)
	return content, true
}
