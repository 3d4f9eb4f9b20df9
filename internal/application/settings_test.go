package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseSettingValues() map[string]string {
	return map[string]string{
		KeyTimeBlockMinutes: "30",
		KeyMaxBlockMinutes:  "60",
		KeyDueDate:          "2025-12-31",
		KeySitePasswordHash: "hash:secret",
	}
}

func TestParseSettings(t *testing.T) {
	t.Parallel()

	t.Run("applies defaults for optional keys", func(t *testing.T) {
		t.Parallel()

		settings, err := ParseSettings(baseSettingValues())
		require.NoError(t, err)
		assert.Equal(t, 30, settings.Rules.GranularityMinutes)
		assert.Equal(t, 60, settings.Rules.MaxBlockMinutes)
		assert.Equal(t, "2025-12-31", settings.Rules.DueDate.String())
		assert.True(t, settings.AllowSurprise)
		assert.Equal(t, DuplicatesAllow, settings.DuplicatePolicy)
		assert.Equal(t, "Baby Pool", settings.Title)
		assert.Equal(t, "hash:secret", settings.PasswordHash)
	})

	t.Run("reads toggles", func(t *testing.T) {
		t.Parallel()

		values := baseSettingValues()
		values[KeyAllowSurprise] = "false"
		values[KeyDuplicatePolicy] = "Reject"
		values[KeySiteTitle] = "Pool for Baby B"
		values["unrelated"] = "kept"

		settings, err := ParseSettings(values)
		require.NoError(t, err)
		assert.False(t, settings.AllowSurprise)
		assert.Equal(t, DuplicatesReject, settings.DuplicatePolicy)
		assert.Equal(t, "Pool for Baby B", settings.Title)
	})

	tests := []struct {
		name   string
		mutate func(map[string]string)
	}{
		{name: "missing due date", mutate: func(v map[string]string) { delete(v, KeyDueDate) }},
		{name: "bad due date", mutate: func(v map[string]string) { v[KeyDueDate] = "31/12/2025" }},
		{name: "bad granularity", mutate: func(v map[string]string) { v[KeyTimeBlockMinutes] = "half an hour" }},
		{name: "ceiling below granularity", mutate: func(v map[string]string) { v[KeyMaxBlockMinutes] = "15" }},
		{name: "bad toggle", mutate: func(v map[string]string) { v[KeyAllowSurprise] = "maybe" }},
		{name: "bad policy", mutate: func(v map[string]string) { v[KeyDuplicatePolicy] = "warn" }},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			values := baseSettingValues()
			tc.mutate(values)
			_, err := ParseSettings(values)
			assert.Error(t, err)
		})
	}
}

func TestSettingsService(t *testing.T) {
	t.Parallel()

	now := func() time.Time { return time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC) }

	t.Run("public listing hides the password hash", func(t *testing.T) {
		t.Parallel()

		svc := NewSettingsService(newSettingsRepositoryStub(baseSettingValues()), now)
		public, err := svc.Public(context.Background())
		require.NoError(t, err)
		assert.NotContains(t, public, KeySitePasswordHash)
		assert.Equal(t, "2025-12-31", public[KeyDueDate])
	})

	t.Run("get returns one value but never a secret", func(t *testing.T) {
		t.Parallel()

		svc := NewSettingsService(newSettingsRepositoryStub(baseSettingValues()), now)
		due, err := svc.Get(context.Background(), " "+KeyDueDate+" ")
		require.NoError(t, err)
		assert.Equal(t, "2025-12-31", due)

		_, err = svc.Get(context.Background(), "banner")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = svc.Get(context.Background(), KeySitePasswordHash)
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, ReasonReadOnly, vErr.Reason)

		_, err = svc.Get(context.Background(), "")
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, ReasonRequired, vErr.Reason)
	})

	t.Run("snapshot parses stored values", func(t *testing.T) {
		t.Parallel()

		svc := NewSettingsService(newSettingsRepositoryStub(baseSettingValues()), now)
		settings, err := svc.Snapshot(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, settings.Rules.MaxSlots())
	})

	t.Run("set validates known keys", func(t *testing.T) {
		t.Parallel()

		repo := newSettingsRepositoryStub(baseSettingValues())
		svc := NewSettingsService(repo, now)

		require.NoError(t, svc.Set(context.Background(), KeyMaxBlockMinutes, "90"))
		assert.Equal(t, "90", repo.values[KeyMaxBlockMinutes])

		err := svc.Set(context.Background(), KeyMaxBlockMinutes, "10")
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, KeyMaxBlockMinutes, vErr.Field)
		assert.Equal(t, "90", repo.values[KeyMaxBlockMinutes])

		err = svc.Set(context.Background(), KeySitePasswordHash, "plain")
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, ReasonReadOnly, vErr.Reason)

		require.NoError(t, svc.Set(context.Background(), "banner", "Welcome"))
		assert.Equal(t, "Welcome", repo.values["banner"])
	})

	t.Run("set site password stores a hash", func(t *testing.T) {
		t.Parallel()

		repo := newSettingsRepositoryStub(baseSettingValues())
		svc := NewSettingsService(repo, now)
		svc.hasher = fakeHash

		require.NoError(t, svc.SetSitePassword(context.Background(), "new-secret"))
		assert.Equal(t, "hash:new-secret", repo.values[KeySitePasswordHash])
		assert.Error(t, svc.SetSitePassword(context.Background(), "  "))
	})

	t.Run("seed fills only missing keys", func(t *testing.T) {
		t.Parallel()

		repo := newSettingsRepositoryStub(map[string]string{KeyTimeBlockMinutes: "15"})
		svc := NewSettingsService(repo, now)
		svc.hasher = fakeHash

		added, err := svc.Seed(context.Background(), SeedDefaults{
			TimeBlockMinutes: 30,
			MaxBlockMinutes:  60,
			DueDate:          "2025-12-31",
			AllowSurprise:    true,
			SitePassword:     "secret",
		})
		require.NoError(t, err)
		assert.Equal(t, 6, added)
		assert.Equal(t, "15", repo.values[KeyTimeBlockMinutes])
		assert.Equal(t, "hash:secret", repo.values[KeySitePasswordHash])

		again, err := svc.Seed(context.Background(), SeedDefaults{TimeBlockMinutes: 30, MaxBlockMinutes: 60})
		require.NoError(t, err)
		assert.Zero(t, again)
	})

	t.Run("seed requires due date and password on first start", func(t *testing.T) {
		t.Parallel()

		svc := NewSettingsService(newSettingsRepositoryStub(nil), now)
		svc.hasher = fakeHash

		_, err := svc.Seed(context.Background(), SeedDefaults{TimeBlockMinutes: 30, MaxBlockMinutes: 60, SitePassword: "secret"})
		assert.ErrorContains(t, err, KeyDueDate)
		_, err = svc.Seed(context.Background(), SeedDefaults{TimeBlockMinutes: 30, MaxBlockMinutes: 60, DueDate: "2025-12-31"})
		assert.ErrorContains(t, err, "site password")
	})
}
