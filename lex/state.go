package lex

import (
	"github.com/google/uuid"
)

// SessionState is the per-session key-value store tokenizers persist
// resumption data in. Keys are object identities: every tokenizer
// instance owns a distinct key (see NewStateKey), so multiple cooperating
// tokenizers in one chain never collide.
type SessionState struct {
	m map[string]any
}

// Get retrieves the value stored under key, if any.
func (s *SessionState) Get(key string) (any, bool) {
	v, ok := s.m[key]
	return v, ok
}

// Set stores v under key.
func (s *SessionState) Set(key string, v any) {
	if s.m == nil {
		s.m = map[string]any{}
	}
	s.m[key] = v
}

// Delete removes the value stored under key.
func (s *SessionState) Delete(key string) {
	delete(s.m, key)
}

// NewStateKey mints a key no other tokenizer instance will ever share.
func NewStateKey() string {
	return uuid.NewString()
}
