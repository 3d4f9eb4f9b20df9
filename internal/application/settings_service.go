package application

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// SettingsRepository persists the key/value settings registry.
type SettingsRepository interface {
	ListSettings(ctx context.Context) (map[string]string, error)
	GetSetting(ctx context.Context, key string) (string, error)
	PutSetting(ctx context.Context, key, value string, updatedAt time.Time) error
	InsertMissingSettings(ctx context.Context, values map[string]string, updatedAt time.Time) (int, error)
}

// SeedDefaults are the values written to an empty registry on first start.
type SeedDefaults struct {
	TimeBlockMinutes int
	MaxBlockMinutes  int
	DueDate          string
	AllowSurprise    bool
	SitePassword     string
}

// SettingsService reads and administers the settings registry.
type SettingsService struct {
	repo   SettingsRepository
	hasher func(string) (string, error)
	now    func() time.Time
	logger *slog.Logger
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(repo SettingsRepository, now func() time.Time) *SettingsService {
	return NewSettingsServiceWithLogger(repo, now, nil)
}

// NewSettingsServiceWithLogger constructs a SettingsService with a specified logger.
func NewSettingsServiceWithLogger(repo SettingsRepository, now func() time.Time, logger *slog.Logger) *SettingsService {
	if now == nil {
		now = time.Now
	}
	return &SettingsService{
		repo:   repo,
		hasher: HashSitePassword,
		now:    now,
		logger: defaultLogger(logger),
	}
}

func (s *SettingsService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SettingsService", operation, attrs...)
}

// Public returns every setting except secrets.
func (s *SettingsService) Public(ctx context.Context) (map[string]string, error) {
	values, err := s.repo.ListSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	public := make(map[string]string, len(values))
	for key, value := range values {
		if IsSecretSetting(key) {
			continue
		}
		public[key] = value
	}
	return public, nil
}

// Get returns one stored setting. Secret keys are never returned.
func (s *SettingsService) Get(ctx context.Context, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", invalid("key", ReasonRequired)
	}
	if IsSecretSetting(key) {
		return "", invalid(key, ReasonReadOnly)
	}
	value, err := s.repo.GetSetting(ctx, key)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

// Snapshot implements SettingsProvider by parsing the stored registry.
func (s *SettingsService) Snapshot(ctx context.Context) (Settings, error) {
	values, err := s.repo.ListSettings(ctx)
	if err != nil {
		return Settings{}, fmt.Errorf("list settings: %w", err)
	}
	return ParseSettings(values)
}

// Set stores one setting. Known keys are validated against the rest of the registry.
func (s *SettingsService) Set(ctx context.Context, key, value string) (err error) {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	logger := s.loggerWith(ctx, "Set", "key", key)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "setting rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "setting updated")
	}()

	if key == "" {
		return invalid("key", ReasonRequired)
	}
	if IsSecretSetting(key) {
		return invalid(key, ReasonReadOnly)
	}

	if isKnownSetting(key) {
		current, lerr := s.repo.ListSettings(ctx)
		if lerr != nil {
			return fmt.Errorf("list settings: %w", lerr)
		}
		current[key] = value
		if _, perr := ParseSettings(current); perr != nil {
			return invalidf(key, ReasonInvalid, "%v", perr)
		}
	}

	return s.repo.PutSetting(ctx, key, value, s.now().UTC())
}

// SetSitePassword replaces the shared password.
func (s *SettingsService) SetSitePassword(ctx context.Context, password string) error {
	if strings.TrimSpace(password) == "" {
		return invalid("password", ReasonRequired)
	}
	hash, err := s.hasher(password)
	if err != nil {
		return fmt.Errorf("hash site password: %w", err)
	}
	if err := s.repo.PutSetting(ctx, KeySitePasswordHash, hash, s.now().UTC()); err != nil {
		return err
	}
	s.loggerWith(ctx, "SetSitePassword").InfoContext(ctx, "site password replaced")
	return nil
}

// Seed writes defaults for every key not yet stored and returns how many were added.
func (s *SettingsService) Seed(ctx context.Context, defaults SeedDefaults) (int, error) {
	current, err := s.repo.ListSettings(ctx)
	if err != nil {
		return 0, fmt.Errorf("list settings: %w", err)
	}

	values := map[string]string{
		KeyTimeBlockMinutes: strconv.Itoa(defaults.TimeBlockMinutes),
		KeyMaxBlockMinutes:  strconv.Itoa(defaults.MaxBlockMinutes),
		KeyAllowSurprise:    strconv.FormatBool(defaults.AllowSurprise),
		KeyDuplicatePolicy:  string(defaultDuplicatePolicy),
		KeySiteTitle:        defaultSiteTitle,
	}

	if _, ok := current[KeyDueDate]; !ok {
		if strings.TrimSpace(defaults.DueDate) == "" {
			return 0, fmt.Errorf("seed settings: %s must be configured before first start", KeyDueDate)
		}
		values[KeyDueDate] = strings.TrimSpace(defaults.DueDate)
	}
	if _, ok := current[KeySitePasswordHash]; !ok {
		if strings.TrimSpace(defaults.SitePassword) == "" {
			return 0, fmt.Errorf("seed settings: site password must be configured before first start")
		}
		hash, err := s.hasher(defaults.SitePassword)
		if err != nil {
			return 0, fmt.Errorf("hash site password: %w", err)
		}
		values[KeySitePasswordHash] = hash
	}

	merged := make(map[string]string, len(values))
	for k, v := range values {
		merged[k] = v
	}
	for k, v := range current {
		merged[k] = v
	}
	if _, err := ParseSettings(merged); err != nil {
		return 0, fmt.Errorf("seed settings: %w", err)
	}

	added, err := s.repo.InsertMissingSettings(ctx, values, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("seed settings: %w", err)
	}
	s.loggerWith(ctx, "Seed", "added", added).InfoContext(ctx, "settings seeded")
	return added, nil
}

func isKnownSetting(key string) bool {
	switch key {
	case KeyTimeBlockMinutes, KeyMaxBlockMinutes, KeyDueDate, KeyAllowSurprise, KeyDuplicatePolicy, KeySiteTitle:
		return true
	default:
		return false
	}
}
