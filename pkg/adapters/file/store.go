package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/gss/pkg/domain"
)

// Store implements ports.HistoryStore using the local filesystem.
// Each session is one JSON document in the base directory. Callers must serialise writes
// per session (session.Manager does).
type Store struct {
	BasePath string
}

// document is the on-disk layout of one session.
type document struct {
	SessionID string                `json:"session_id"`
	Entries   []domain.HistoryEntry `json:"entries"`
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".gss/history".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".gss", "history")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(sessionID string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("sessionID cannot be empty")
	}
	if strings.ContainsAny(sessionID, `/\`) || sessionID == "." || sessionID == ".." {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidSessionID, sessionID)
	}
	return filepath.Join(s.BasePath, sessionID+".json"), nil
}

// Append adds the entry to the session document.
func (s *Store) Append(ctx context.Context, sessionID string, entry domain.HistoryEntry) error {
	doc, err := s.read(sessionID)
	if err != nil {
		return err
	}
	doc.Entries = append(doc.Entries, entry)
	return s.write(sessionID, doc)
}

// List returns the session's entries in chronological order.
func (s *Store) List(ctx context.Context, sessionID string) ([]domain.HistoryEntry, error) {
	doc, err := s.read(sessionID)
	if err != nil {
		return nil, err
	}
	if doc.Entries == nil {
		return []domain.HistoryEntry{}, nil
	}
	return doc.Entries, nil
}

// Trim rewrites the document with the newest keep entries.
func (s *Store) Trim(ctx context.Context, sessionID string, keep int) error {
	doc, err := s.read(sessionID)
	if err != nil {
		return err
	}
	if keep < 0 {
		keep = 0
	}
	if len(doc.Entries) <= keep {
		return nil
	}
	if keep == 0 {
		return s.Clear(ctx, sessionID)
	}
	doc.Entries = doc.Entries[len(doc.Entries)-keep:]
	return s.write(sessionID, doc)
}

// Clear removes the session file.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	filePath, err := s.path(sessionID)
	if err != nil {
		return err
	}

	err = os.Remove(filePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete history file: %w", err)
	}
	return nil
}

// Sessions returns all session IDs that have a history file.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, "tmp-") {
			continue
		}
		sessions = append(sessions, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(sessions)
	return sessions, nil
}

func (s *Store) read(sessionID string) (*document, error) {
	filePath, err := s.path(sessionID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &document{SessionID: sessionID}, nil
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	return &doc, nil
}

// write persists the document atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) write(sessionID string, doc *document) error {
	destPath, err := s.path(sessionID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure history directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	// Same directory keeps us on one filesystem, which rename requires.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+sessionID+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // No-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists. We must remove it first.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing history file for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
