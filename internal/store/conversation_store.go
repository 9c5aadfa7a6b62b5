package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xxxsen/pitchcoach/internal/model"
	apperr "github.com/xxxsen/pitchcoach/internal/pkg/errors"
)

const (
	transcriptFile = "transcript.json"
	pitchFile      = "pitch.json"
	stagingDir     = ".staging"
)

// ConversationStore keeps one directory per conversation under a flat data
// dir: the raw uploaded files plus transcript.json and pitch.json. New
// conversations are built in a staging dir and published with one rename, so
// readers never observe a half-written conversation.
type ConversationStore struct {
	dir string
}

func NewConversationStore(dir string) (*ConversationStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("conversation store dir is required")
	}
	if err := os.MkdirAll(filepath.Join(dir, stagingDir), 0o755); err != nil {
		return nil, fmt.Errorf("init conversation store: %w", err)
	}
	return &ConversationStore{dir: dir}, nil
}

func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, "/\\") && !strings.HasPrefix(id, ".")
}

// Stage opens a staging area for a new conversation. Nothing under it is
// readable through the store until Publish.
func (s *ConversationStore) Stage(id string) (*Staging, error) {
	if !validID(id) {
		return nil, fmt.Errorf("invalid conversation id: %q", id)
	}
	dir := filepath.Join(s.dir, stagingDir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &Staging{id: id, dir: dir, store: s}, nil
}

func (s *ConversationStore) Exists(id string) bool {
	if !validID(id) {
		return false
	}
	info, err := os.Stat(filepath.Join(s.dir, id))
	return err == nil && info.IsDir()
}

func (s *ConversationStore) GetTranscript(id string) ([]model.TranscriptSegment, error) {
	var segments []model.TranscriptSegment
	if err := s.readJSON(id, transcriptFile, &segments); err != nil {
		return nil, err
	}
	return segments, nil
}

func (s *ConversationStore) GetPitch(id string) (*model.PitchData, error) {
	var pitch model.PitchData
	if err := s.readJSON(id, pitchFile, &pitch); err != nil {
		return nil, err
	}
	if len(pitch.Steps) != len(pitch.Embeddings) {
		return nil, fmt.Errorf("%w: pitch data corrupt for %s: %d steps, %d embeddings",
			apperr.ErrInternal, id, len(pitch.Steps), len(pitch.Embeddings))
	}
	return &pitch, nil
}

func (s *ConversationStore) readJSON(id, name string, dst interface{}) error {
	if !validID(id) {
		return fmt.Errorf("%w: conversation %s", apperr.ErrNotFound, id)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, id, name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: conversation %s", apperr.ErrNotFound, id)
		}
		return fmt.Errorf("read %s for %s: %w", name, id, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s for %s: %w", name, id, err)
	}
	return nil
}

// SweepStaging removes staging dirs older than maxAge, the leftovers of
// uploads that died mid-pipeline. Returns how many were removed.
func (s *ConversationStore) SweepStaging(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, stagingDir))
	if err != nil {
		return 0, fmt.Errorf("read staging dir: %w", err)
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.dir, stagingDir, entry.Name())); err != nil {
			return removed, fmt.Errorf("remove stale staging %s: %w", entry.Name(), err)
		}
		removed++
	}
	return removed, nil
}

// Staging is the write side of one not-yet-published conversation.
type Staging struct {
	id    string
	dir   string
	store *ConversationStore
}

func (st *Staging) SaveRawFile(name string, data []byte) error {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return fmt.Errorf("invalid raw file name: %q", name)
	}
	return os.WriteFile(filepath.Join(st.dir, base), data, 0o644)
}

func (st *Staging) SaveTranscript(segments []model.TranscriptSegment) error {
	return st.writeJSON(transcriptFile, segments)
}

func (st *Staging) SavePitch(pitch model.PitchData) error {
	if len(pitch.Steps) != len(pitch.Embeddings) {
		return fmt.Errorf("pitch steps/embeddings length mismatch: %d vs %d",
			len(pitch.Steps), len(pitch.Embeddings))
	}
	return st.writeJSON(pitchFile, pitch)
}

func (st *Staging) writeJSON(name string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return os.WriteFile(filepath.Join(st.dir, name), data, 0o644)
}

// Publish atomically moves the staged conversation into the readable tree.
func (st *Staging) Publish() error {
	if err := os.Rename(st.dir, filepath.Join(st.store.dir, st.id)); err != nil {
		return fmt.Errorf("publish conversation %s: %w", st.id, err)
	}
	return nil
}

// Discard drops the staging dir; safe to call after Publish.
func (st *Staging) Discard() {
	_ = os.RemoveAll(st.dir)
}
