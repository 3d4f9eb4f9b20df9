package testfixtures

import (
	"strconv"
	"sync"
)

// TokenSequence hands out predictable session ids and tokens ("token-1",
// "token-2", ...) and remembers every value it issued.
type TokenSequence struct {
	mu     sync.Mutex
	prefix string
	issued []string
}

// NewTokenSequence starts a sequence. An empty prefix means "token".
func NewTokenSequence(prefix string) *TokenSequence {
	if prefix == "" {
		prefix = "token"
	}
	return &TokenSequence{prefix: prefix}
}

// Next issues the following value.
func (s *TokenSequence) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	value := s.prefix + "-" + strconv.Itoa(len(s.issued)+1)
	s.issued = append(s.issued, value)
	return value
}

// NextFunc adapts the sequence to the generator signature services expect.
// A nil sequence yields empty strings, which the session store rejects.
func (s *TokenSequence) NextFunc() func() string {
	if s == nil {
		return func() string { return "" }
	}
	return s.Next
}

// Issued returns every value handed out so far, oldest first.
func (s *TokenSequence) Issued() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.issued...)
}
