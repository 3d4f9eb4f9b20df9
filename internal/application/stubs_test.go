package application

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

type settingsRepositoryStub struct {
	mu      sync.Mutex
	values  map[string]string
	listErr error
	putErr  error
}

func newSettingsRepositoryStub(values map[string]string) *settingsRepositoryStub {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &settingsRepositoryStub{values: copied}
}

func (s *settingsRepositoryStub) ListSettings(context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out, nil
}

func (s *settingsRepositoryStub) GetSetting(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return "", s.listErr
	}
	value, ok := s.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (s *settingsRepositoryStub) PutSetting(_ context.Context, key, value string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.values[key] = value
	return nil
}

func (s *settingsRepositoryStub) InsertMissingSettings(_ context.Context, values map[string]string, _ time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return 0, s.putErr
	}
	added := 0
	for k, v := range values {
		if _, ok := s.values[k]; ok {
			continue
		}
		s.values[k] = v
		added++
	}
	return added, nil
}

type sessionRepositoryStub struct {
	mu          sync.Mutex
	sessions    map[string]Session
	getErr      error
	createErr   error
	deleteCalls []time.Time
}

func newSessionRepositoryStub() *sessionRepositoryStub {
	return &sessionRepositoryStub{sessions: make(map[string]Session)}
}

func (s *sessionRepositoryStub) CreateSession(_ context.Context, session Session) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return Session{}, s.createErr
	}
	s.sessions[session.Token] = session
	return session, nil
}

func (s *sessionRepositoryStub) GetSession(_ context.Context, token string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return Session{}, s.getErr
	}
	session, ok := s.sessions[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	return session, nil
}

func (s *sessionRepositoryStub) DeleteExpiredSessions(_ context.Context, reference time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls = append(s.deleteCalls, reference)
	var removed int64
	for token, session := range s.sessions {
		if !session.ExpiresAt.After(reference) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed, nil
}

type guessRepositoryStub struct {
	mu        sync.Mutex
	guesses   []Guess
	nextID    int64
	createErr error
	listErr   error
}

func (s *guessRepositoryStub) CreateGuess(_ context.Context, guess Guess) (Guess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return Guess{}, s.createErr
	}
	s.nextID++
	guess.ID = s.nextID
	s.guesses = append(s.guesses, guess)
	return guess, nil
}

func (s *guessRepositoryStub) GetGuess(_ context.Context, id int64) (Guess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.guesses {
		if g.ID == id {
			return g, nil
		}
	}
	return Guess{}, ErrNotFound
}

func (s *guessRepositoryStub) ListGuesses(context.Context) ([]Guess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := append([]Guess(nil), s.guesses...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

var errStubFailure = errors.New("stub failure")

func fakeVerify(hash, password string) error {
	if hash == "hash:"+password {
		return nil
	}
	return ErrInvalidCredentials
}

func fakeHash(password string) (string, error) {
	return "hash:" + password, nil
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
