package application

import (
	"time"

	"github.com/example/baby-pool/internal/slots"
	"github.com/example/baby-pool/internal/weight"
)

// Gender is the predicted sex of the baby.
type Gender string

const (
	GenderBoy      Gender = "boy"
	GenderGirl     Gender = "girl"
	GenderSurprise Gender = "surprise"
)

// Guess is a stored prediction.
type Guess struct {
	ID        int64
	Name      string
	Email     string
	Gender    Gender
	BirthDate slots.Date
	Time      slots.TimeSpec
	Weight    weight.Weight
	CreatedAt time.Time
}

// GuessInput is an unvalidated submission. Times are "HH:MM" strings; block
// entries may also carry their date as "YYYY-MM-DDTHH:MM".
type GuessInput struct {
	Name       string
	Email      string
	Gender     string
	BirthDate  string
	BirthTime  string
	TimeBlocks []string
	Pounds     *int
	Ounces     *int
	Kilograms  *float64
}

// SubmitResult is returned for an accepted guess.
type SubmitResult struct {
	ID         int64
	IsBlock    bool
	Duplicates []int64
}

// Session is an issued site session.
type Session struct {
	ID        string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// AuthenticateResult carries the session issued for a correct password.
type AuthenticateResult struct {
	Session Session
}
