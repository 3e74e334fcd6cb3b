package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// SessionSpec describes a recorded session directory to materialize under a
// collected root. Empty strings and nil audio mean the file is absent.
type SessionSpec struct {
	Lang     string
	Category string
	ID       string
	Prefix   string
	Suffix   string
	RefAudio []byte
	Turns    []TurnSpec
}

type TurnSpec struct {
	User      string
	Assistant string
	Audio     []byte
}

// Option mutates a SessionSpec.
type Option func(*SessionSpec)

func WithLang(lang string) Option { return func(s *SessionSpec) { s.Lang = lang } }
func WithCategory(category string) Option { return func(s *SessionSpec) { s.Category = category } }
func WithSystem(prefix, suffix string) Option {
	return func(s *SessionSpec) { s.Prefix, s.Suffix = prefix, suffix }
}
func WithRefAudio(data []byte) Option { return func(s *SessionSpec) { s.RefAudio = data } }
func WithTurns(turns ...TurnSpec) Option {
	return func(s *SessionSpec) { s.Turns = append(s.Turns, turns...) }
}

// NewSessionSpec returns a two-turn zh session with reference and assistant audio.
func NewSessionSpec(id string, opts ...Option) SessionSpec {
	spec := SessionSpec{
		Lang:     "zh",
		Category: "story",
		ID:       id,
		Prefix:   "You are a helpful voice assistant.",
		Suffix:   "Answer briefly.",
		RefAudio: []byte("ref-" + id),
	}
	for _, opt := range opts {
		opt(&spec)
	}
	if spec.Turns == nil {
		spec.Turns = []TurnSpec{
			{User: "hello", Assistant: "hi there", Audio: []byte("a0-" + id)},
			{User: "tell me more", Assistant: "sure", Audio: []byte("a1-" + id)},
		}
	}
	return spec
}

// WriteSession writes spec under root and returns the session directory.
func WriteSession(t *testing.T, root string, spec SessionSpec) string {
	t.Helper()
	dir := filepath.Join(root, spec.Lang, spec.Category, spec.ID)
	mustMkdir(t, dir)

	writeIf(t, filepath.Join(dir, "system_prefix.txt"), []byte(spec.Prefix), spec.Prefix != "")
	writeIf(t, filepath.Join(dir, "system_suffix.txt"), []byte(spec.Suffix), spec.Suffix != "")
	writeIf(t, filepath.Join(dir, "system_ref_audio.mp3"), spec.RefAudio, spec.RefAudio != nil)

	for i, turn := range spec.Turns {
		writeIf(t, filepath.Join(dir, fmt.Sprintf("%03d_user_audio0.asr.txt", i)), []byte(turn.User+"\n"), turn.User != "")
		writeIf(t, filepath.Join(dir, fmt.Sprintf("%03d_assistant.txt", i)), []byte(turn.Assistant+"\n"), turn.Assistant != "")
		writeIf(t, filepath.Join(dir, fmt.Sprintf("%03d_assistant_audio0.mp3", i)), turn.Audio, turn.Audio != nil)
	}
	return dir
}

// WriteFile writes data at path, creating parents.
func WriteFile(t *testing.T, path string, data []byte) {
	t.Helper()
	mustMkdir(t, filepath.Dir(path))
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func writeIf(t *testing.T, path string, data []byte, ok bool) {
	t.Helper()
	if ok {
		WriteFile(t, path, data)
	}
}

func mustMkdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating %s: %v", dir, err)
	}
}
