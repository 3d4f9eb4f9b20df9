package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/baby-pool/internal/application"
)

// ServiceFactory builds pool services around a shared test clock, token
// sequence and time zone.
type ServiceFactory struct {
	Clock    *Clock
	Tokens   *TokenSequence
	Location *time.Location
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:    NewClock(time.Time{}),
		Tokens:   NewTokenSequence(""),
		Location: time.UTC,
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.Tokens == nil {
		factory.Tokens = NewTokenSequence("")
	}
	if factory.Location == nil {
		factory.Location = time.UTC
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithTokens overrides the session id and token sequence.
func WithTokens(tokens *TokenSequence) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Tokens = tokens
	}
}

// WithLocation sets the pool time zone.
func WithLocation(loc *time.Location) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Location = loc
	}
}

// NewSettingsService builds a settings service on repo.
func (f *ServiceFactory) NewSettingsService(repo application.SettingsRepository, logger *slog.Logger) *application.SettingsService {
	return application.NewSettingsServiceWithLogger(repo, f.Clock.NowFunc(), logger)
}

// AuthServiceDeps captures dependencies for constructing an auth service.
type AuthServiceDeps struct {
	Settings       application.SettingsProvider
	Sessions       application.SessionRepository
	PasswordVerify application.PasswordVerifier
	TokenGenerator func() string
	Now            func() time.Time
	SessionTTL     time.Duration
	Logger         *slog.Logger
}

// NewAuthService builds an auth service using the supplied dependencies.
// Session ids and tokens both come from the factory sequence unless
// overridden.
func (f *ServiceFactory) NewAuthService(deps AuthServiceDeps) *application.AuthService {
	token := deps.TokenGenerator
	if token == nil {
		token = f.Tokens.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewAuthServiceWithLogger(
		deps.Settings,
		deps.Sessions,
		deps.PasswordVerify,
		f.Tokens.NextFunc(),
		token,
		now,
		deps.SessionTTL,
		deps.Logger,
	)
}

// GuessServiceDeps captures dependencies for constructing a guess service.
type GuessServiceDeps struct {
	Guesses  application.GuessRepository
	Settings application.SettingsProvider
	Now      func() time.Time
	Logger   *slog.Logger
}

// NewGuessService builds a guess service using the supplied dependencies.
func (f *ServiceFactory) NewGuessService(deps GuessServiceDeps) *application.GuessService {
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewGuessServiceWithLogger(deps.Guesses, deps.Settings, now, f.Location, deps.Logger)
}

// NewCalendarService builds a calendar service over guesses.
func (f *ServiceFactory) NewCalendarService(guesses application.GuessRepository, logger *slog.Logger) *application.CalendarService {
	return application.NewCalendarServiceWithLogger(guesses, f.Location, logger)
}
