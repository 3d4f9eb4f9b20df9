package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/baby-pool/internal/slots"
)

// Setting keys understood by the pool.
const (
	KeyTimeBlockMinutes    = "time_block_minutes"
	KeyMaxBlockMinutes     = "max_block_selection_minutes"
	KeyDueDate             = "due_date"
	KeyAllowSurprise       = "allow_surprise"
	KeyDuplicatePolicy     = "duplicate_policy"
	KeySitePasswordHash    = "site_password_hash"
	KeySiteTitle           = "site_title"
	defaultSiteTitle       = "Baby Pool"
	defaultDuplicatePolicy = DuplicatesAllow
)

var secretKeys = map[string]struct{}{
	KeySitePasswordHash: {},
}

// IsSecretSetting reports whether key must never be exposed publicly.
func IsSecretSetting(key string) bool {
	_, ok := secretKeys[key]
	return ok
}

// DuplicatePolicy decides what happens to guesses predicting an already
// predicted date, time and gender.
type DuplicatePolicy string

const (
	// DuplicatesAllow accepts duplicates and reports them.
	DuplicatesAllow DuplicatePolicy = "allow"
	// DuplicatesReject refuses duplicates with a validation error.
	DuplicatesReject DuplicatePolicy = "reject"
)

// Settings is a parsed, read-only view of the settings registry.
type Settings struct {
	Rules           slots.Rules
	AllowSurprise   bool
	DuplicatePolicy DuplicatePolicy
	PasswordHash    string
	Title           string
}

// SettingsProvider hands out the settings in force for one operation.
type SettingsProvider interface {
	Snapshot(ctx context.Context) (Settings, error)
}

// StaticSettings is a SettingsProvider that always returns the same settings.
type StaticSettings Settings

// Snapshot implements SettingsProvider.
func (s StaticSettings) Snapshot(context.Context) (Settings, error) {
	return Settings(s), nil
}

// ParseSettings converts raw key/value pairs into Settings. Unknown keys are ignored.
func ParseSettings(values map[string]string) (Settings, error) {
	settings := Settings{
		AllowSurprise:   true,
		DuplicatePolicy: defaultDuplicatePolicy,
		Title:           defaultSiteTitle,
	}
	var errs []error

	if raw, ok := values[KeyTimeBlockMinutes]; ok {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", KeyTimeBlockMinutes, err))
		}
		settings.Rules.GranularityMinutes = n
	} else {
		errs = append(errs, fmt.Errorf("%s: missing", KeyTimeBlockMinutes))
	}

	if raw, ok := values[KeyMaxBlockMinutes]; ok {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", KeyMaxBlockMinutes, err))
		}
		settings.Rules.MaxBlockMinutes = n
	} else {
		errs = append(errs, fmt.Errorf("%s: missing", KeyMaxBlockMinutes))
	}

	if raw, ok := values[KeyDueDate]; ok {
		due, err := slots.ParseDate(strings.TrimSpace(raw))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", KeyDueDate, err))
		}
		settings.Rules.DueDate = due
	} else {
		errs = append(errs, fmt.Errorf("%s: missing", KeyDueDate))
	}

	if raw, ok := values[KeyAllowSurprise]; ok {
		allow, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", KeyAllowSurprise, err))
		}
		settings.AllowSurprise = allow
	}

	if raw, ok := values[KeyDuplicatePolicy]; ok {
		policy := DuplicatePolicy(strings.ToLower(strings.TrimSpace(raw)))
		switch policy {
		case DuplicatesAllow, DuplicatesReject:
			settings.DuplicatePolicy = policy
		default:
			errs = append(errs, fmt.Errorf("%s: unknown policy %q", KeyDuplicatePolicy, raw))
		}
	}

	if raw, ok := values[KeySiteTitle]; ok && strings.TrimSpace(raw) != "" {
		settings.Title = strings.TrimSpace(raw)
	}
	settings.PasswordHash = values[KeySitePasswordHash]

	if len(errs) == 0 {
		if err := settings.Rules.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return Settings{}, fmt.Errorf("invalid settings: %w", errors.Join(errs...))
	}
	return settings, nil
}
