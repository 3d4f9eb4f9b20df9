package persistence

import "time"

// Setting is one row of the settings registry.
type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// Guess is a stored prediction. Exactly one of BirthTime and TimeBlocks is set.
type Guess struct {
	ID              int64
	Name            string
	Email           *string
	Gender          string
	BirthDate       string
	BirthTime       *string
	TimeBlocks      []string
	WeightPounds    int
	WeightOunces    int
	WeightKilograms float64
	CreatedAt       time.Time
}

// Session is an issued site session.
type Session struct {
	ID        string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}
