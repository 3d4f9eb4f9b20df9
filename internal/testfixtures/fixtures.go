package testfixtures

import (
	"fmt"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/example/baby-pool/internal/application"
	"github.com/example/baby-pool/internal/persistence"
)

var (
	guessCounter   uint64
	sessionCounter uint64
)

// referenceTime sits a month before DueDate so every fixture date is inside
// the guessing window.
var referenceTime = time.Date(2025, time.December, 1, 9, 0, 0, 0, time.UTC)

// DueDate is the due date used by SettingsFixture.
const DueDate = "2025-12-31"

// ReferenceTime returns the canonical "now" used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ---------------------------- Settings fixtures ----------------------------

// SettingsFixture is a complete settings registry.
type SettingsFixture struct {
	Values    map[string]string
	UpdatedAt time.Time
}

// SettingsOption configures the generated settings fixture.
type SettingsOption func(*SettingsFixture)

// NewSettingsFixture returns a 30 minute / 60 minute pool due on DueDate.
// The password hash is a placeholder; override it with WithSitePasswordHash
// when the test authenticates.
func NewSettingsFixture(opts ...SettingsOption) SettingsFixture {
	fixture := SettingsFixture{
		Values: map[string]string{
			application.KeyTimeBlockMinutes: "30",
			application.KeyMaxBlockMinutes:  "60",
			application.KeyDueDate:          DueDate,
			application.KeyAllowSurprise:    "true",
			application.KeyDuplicatePolicy:  string(application.DuplicatesAllow),
			application.KeySiteTitle:        "Baby Pool",
			application.KeySitePasswordHash: "unset",
		},
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSetting overrides one key.
func WithSetting(key, value string) SettingsOption {
	return func(f *SettingsFixture) {
		f.Values[key] = value
	}
}

// WithoutSetting removes one key.
func WithoutSetting(key string) SettingsOption {
	return func(f *SettingsFixture) {
		delete(f.Values, key)
	}
}

// WithGranularity sets the block length and the selection ceiling.
func WithGranularity(blockMinutes, maxMinutes int) SettingsOption {
	return func(f *SettingsFixture) {
		f.Values[application.KeyTimeBlockMinutes] = strconv.Itoa(blockMinutes)
		f.Values[application.KeyMaxBlockMinutes] = strconv.Itoa(maxMinutes)
	}
}

// WithSitePasswordHash stores an already hashed site password.
func WithSitePasswordHash(hash string) SettingsOption {
	return WithSetting(application.KeySitePasswordHash, hash)
}

// Map returns a copy of the registry values.
func (f SettingsFixture) Map() map[string]string {
	out := make(map[string]string, len(f.Values))
	for k, v := range f.Values {
		out[k] = v
	}
	return out
}

// Persistence converts the fixture to stored rows ordered by key.
func (f SettingsFixture) Persistence() []persistence.Setting {
	keys := make([]string, 0, len(f.Values))
	for k := range f.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]persistence.Setting, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, persistence.Setting{Key: k, Value: f.Values[k], UpdatedAt: f.UpdatedAt})
	}
	return rows
}

// Application parses the fixture into the settings view services consume.
func (f SettingsFixture) Application() (application.Settings, error) {
	return application.ParseSettings(f.Map())
}

// ------------------------------ Guess fixtures ------------------------------

// GuessFixture is a deterministic guess that can be materialised as stored
// data or as a submission.
type GuessFixture struct {
	Name       string
	Email      string
	Gender     string
	BirthDate  string
	BirthTime  string
	TimeBlocks []string
	Pounds     int
	Ounces     int
	Kilograms  float64
	CreatedAt  time.Time
}

// GuessOption configures the generated guess fixture.
type GuessOption func(*GuessFixture)

// NewGuessFixture returns a single-time guess of 7 lb 8 oz on 2025-12-20.
// Each call gets a distinct name and a later CreatedAt.
func NewGuessFixture(opts ...GuessOption) GuessFixture {
	idx := atomic.AddUint64(&guessCounter, 1)
	fixture := GuessFixture{
		Name:      fmt.Sprintf("Guesser %03d", idx),
		Gender:    string(application.GenderGirl),
		BirthDate: "2025-12-20",
		BirthTime: "09:00",
		Pounds:    7,
		Ounces:    8,
		Kilograms: 3.40,
		CreatedAt: referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithGuessName overrides the guesser's name.
func WithGuessName(name string) GuessOption {
	return func(f *GuessFixture) { f.Name = name }
}

// WithGuessEmail sets the optional contact address.
func WithGuessEmail(email string) GuessOption {
	return func(f *GuessFixture) { f.Email = email }
}

// WithGuessGender overrides the predicted gender.
func WithGuessGender(gender string) GuessOption {
	return func(f *GuessFixture) { f.Gender = gender }
}

// WithGuessDate overrides the predicted birth date.
func WithGuessDate(date string) GuessOption {
	return func(f *GuessFixture) { f.BirthDate = date }
}

// WithGuessTime predicts a single time of day.
func WithGuessTime(hhmm string) GuessOption {
	return func(f *GuessFixture) {
		f.BirthTime = hhmm
		f.TimeBlocks = nil
	}
}

// WithGuessBlocks predicts a block of consecutive slots.
func WithGuessBlocks(times ...string) GuessOption {
	return func(f *GuessFixture) {
		f.BirthTime = ""
		f.TimeBlocks = append([]string(nil), times...)
	}
}

// WithGuessWeight sets both weight units.
func WithGuessWeight(pounds, ounces int, kilograms float64) GuessOption {
	return func(f *GuessFixture) {
		f.Pounds = pounds
		f.Ounces = ounces
		f.Kilograms = kilograms
	}
}

// WithGuessCreatedAt overrides the submission timestamp.
func WithGuessCreatedAt(t time.Time) GuessOption {
	return func(f *GuessFixture) { f.CreatedAt = t }
}

// Persistence converts the fixture into a storable row.
func (f GuessFixture) Persistence() persistence.Guess {
	guess := persistence.Guess{
		Name:            f.Name,
		Gender:          f.Gender,
		BirthDate:       f.BirthDate,
		WeightPounds:    f.Pounds,
		WeightOunces:    f.Ounces,
		WeightKilograms: f.Kilograms,
		CreatedAt:       f.CreatedAt,
	}
	if f.Email != "" {
		email := f.Email
		guess.Email = &email
	}
	if len(f.TimeBlocks) > 0 {
		guess.TimeBlocks = append([]string(nil), f.TimeBlocks...)
	} else {
		bt := f.BirthTime
		guess.BirthTime = &bt
	}
	return guess
}

// Input converts the fixture into a submission carrying both weight units.
func (f GuessFixture) Input() application.GuessInput {
	pounds, ounces, kg := f.Pounds, f.Ounces, f.Kilograms
	input := application.GuessInput{
		Name:      f.Name,
		Email:     f.Email,
		Gender:    f.Gender,
		BirthDate: f.BirthDate,
		Pounds:    &pounds,
		Ounces:    &ounces,
		Kilograms: &kg,
	}
	if len(f.TimeBlocks) > 0 {
		input.TimeBlocks = append([]string(nil), f.TimeBlocks...)
	} else {
		input.BirthTime = f.BirthTime
	}
	return input
}

// ----------------------------- Session fixtures -----------------------------

// SessionFixture represents an issued session.
type SessionFixture struct {
	ID        string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a session valid for 24 hours from ReferenceTime.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	fixture := SessionFixture{
		ID:        fmt.Sprintf("session-%03d", idx),
		Token:     fmt.Sprintf("token-%03d", idx),
		CreatedAt: referenceTime,
		ExpiresAt: referenceTime.Add(24 * time.Hour),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionToken overrides the token.
func WithSessionToken(token string) SessionOption {
	return func(f *SessionFixture) { f.Token = token }
}

// WithSessionExpiry overrides the expiry.
func WithSessionExpiry(t time.Time) SessionOption {
	return func(f *SessionFixture) { f.ExpiresAt = t }
}

// Persistence converts the fixture into a storable row.
func (f SessionFixture) Persistence() persistence.Session {
	return persistence.Session{ID: f.ID, Token: f.Token, CreatedAt: f.CreatedAt, ExpiresAt: f.ExpiresAt}
}

// Application converts the fixture into the service model.
func (f SessionFixture) Application() application.Session {
	return application.Session{ID: f.ID, Token: f.Token, CreatedAt: f.CreatedAt, ExpiresAt: f.ExpiresAt}
}
