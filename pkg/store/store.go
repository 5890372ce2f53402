package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/weftlabs/weft/internal/ui"
)

// Role values carried by persisted turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Reserved is the agent that always exists and cannot be deleted.
const Reserved = "main"

// Turn is a single conversation entry. Roles are stored explicitly
// rather than inferred from position.
type Turn struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at,omitempty"`
}

// Sanitize normalizes a raw agent identifier: lower-cased, with every
// character outside [a-z0-9_-] replaced by '_'. Sanitize is idempotent.
func Sanitize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToLower(raw) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Store reads and writes one JSONL history file per agent.
type Store struct {
	dir string
	ui  *ui.Printer
}

// New creates a Store rooted at dir, creating it if needed.
func New(dir string, printer *ui.Printer) (*Store, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, ".weft", "agents")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create agents directory: %w", err)
	}

	log.Info().Str("dir", dir).Msg("Agent store initialized")

	return &Store{dir: dir, ui: printer}, nil
}

// Dir returns the storage directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(agentID string) string {
	return filepath.Join(s.dir, Sanitize(agentID)+".jsonl")
}

// Load reads the persisted history for agentID. A missing file yields an
// empty history. Unreadable files and unparseable lines degrade to what
// could be read, with a warning; load failures are never fatal.
func (s *Store) Load(agentID string) []Turn {
	path := s.path(agentID)

	file, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Str("agent", agentID).Err(err).Msg("Failed to open history file")
			s.ui.Notice("warning: could not read history for %q: %v", agentID, err)
		}
		return nil
	}
	defer file.Close()

	var turns []Turn
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" {
			continue
		}

		var turn Turn
		if err := json.Unmarshal([]byte(line), &turn); err != nil {
			log.Warn().Str("agent", agentID).Int("line", lineNum).Err(err).Msg("Skipping unparseable history line")
			s.ui.Notice("warning: skipping corrupt history line %d for %q", lineNum, agentID)
			continue
		}
		turns = append(turns, turn)
	}

	if err := scanner.Err(); err != nil {
		log.Warn().Str("agent", agentID).Err(err).Msg("Failed to read history file")
		s.ui.Notice("warning: could not read history for %q: %v", agentID, err)
	}

	log.Debug().Str("agent", agentID).Int("turns", len(turns)).Msg("History loaded")
	return turns
}

// Save replaces the persisted history for agentID with history. It writes
// a temp file and renames it into place so a failed save never truncates
// the previous artifact. Returns false on failure, with a warning.
func (s *Store) Save(agentID string, history []Turn) bool {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		log.Error().Str("agent", agentID).Err(err).Msg("Failed to create agents directory")
		s.ui.Notice("warning: could not save history for %q: %v", agentID, err)
		return false
	}

	path := s.path(agentID)
	tempPath := path + ".tmp"

	if err := s.writeAll(tempPath, history); err != nil {
		os.Remove(tempPath)
		log.Error().Str("agent", agentID).Err(err).Msg("Failed to write history file")
		s.ui.Notice("warning: could not save history for %q: %v", agentID, err)
		return false
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		log.Error().Str("agent", agentID).Err(err).Msg("Failed to replace history file")
		s.ui.Notice("warning: could not save history for %q: %v", agentID, err)
		return false
	}

	log.Debug().Str("agent", agentID).Int("turns", len(history)).Msg("History saved")
	return true
}

func (s *Store) writeAll(path string, history []Turn) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create history file: %w", err)
	}

	for _, turn := range history {
		data, err := json.Marshal(turn)
		if err != nil {
			file.Close()
			return fmt.Errorf("failed to marshal turn: %w", err)
		}
		if _, err := file.Write(append(data, '\n')); err != nil {
			file.Close()
			return fmt.Errorf("failed to write turn: %w", err)
		}
	}

	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("failed to sync history file: %w", err)
	}
	return file.Close()
}

// Remove deletes the persisted history for agentID. Removing an agent
// that was never saved is not an error.
func (s *Store) Remove(agentID string) bool {
	path := s.path(agentID)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn().Str("agent", agentID).Err(err).Msg("Failed to delete history file")
		s.ui.Notice("warning: could not delete history for %q: %v", agentID, err)
		return false
	}
	log.Debug().Str("agent", agentID).Msg("History deleted")
	return true
}

// List returns the sanitized identifiers of all persisted agents in
// lexicographic order.
func (s *Store) List() []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Msg("Failed to read agents directory")
		}
		return nil
	}

	var agents []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		agents = append(agents, strings.TrimSuffix(name, ".jsonl"))
	}

	sort.Strings(agents)
	return agents
}
