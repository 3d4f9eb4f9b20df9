package application

import (
	"errors"
	"math"
	"net/mail"
	"strings"

	"github.com/example/baby-pool/internal/slots"
	"github.com/example/baby-pool/internal/weight"
)

// Validation field names, matching the submission payload.
const (
	FieldName         = "name"
	FieldEmail        = "email"
	FieldGender       = "gender"
	FieldBirthDate    = "birthDate"
	FieldBirthTime    = "birthTime"
	FieldTimeBlocks   = "timeBlocks"
	FieldWeight       = "weight"
	FieldWeightPounds = "weightPounds"
	FieldWeightOunces = "weightOunces"
	FieldWeightKg     = "weightKg"
)

// validateGuess checks input in submission order and returns the first failure.
func validateGuess(input GuessInput, settings Settings, today slots.Date) (Guess, error) {
	var guess Guess

	guess.Name = strings.TrimSpace(input.Name)
	if guess.Name == "" {
		return Guess{}, invalid(FieldName, ReasonRequired)
	}

	gender, err := parseGender(input.Gender, settings.AllowSurprise)
	if err != nil {
		return Guess{}, err
	}
	guess.Gender = gender

	rawDate := strings.TrimSpace(input.BirthDate)
	if rawDate == "" {
		return Guess{}, invalid(FieldBirthDate, ReasonRequired)
	}
	date, err := slots.ParseDate(rawDate)
	if err != nil {
		return Guess{}, invalidf(FieldBirthDate, ReasonInvalid, "%v", err)
	}
	if !settings.Rules.InWindow(date, today) {
		return Guess{}, invalidf(FieldBirthDate, ReasonOutOfRange, "must be between %s and %s", today, settings.Rules.DueDate)
	}
	guess.BirthDate = date

	spec, err := parseTimeSpec(input, date, settings.Rules)
	if err != nil {
		return Guess{}, err
	}
	guess.Time = spec

	w, err := parseWeight(input)
	if err != nil {
		return Guess{}, err
	}
	guess.Weight = w

	if email := strings.TrimSpace(input.Email); email != "" {
		addr, err := mail.ParseAddress(email)
		if err != nil {
			return Guess{}, invalidf(FieldEmail, ReasonInvalid, "%v", err)
		}
		guess.Email = addr.Address
	}

	return guess, nil
}

func parseGender(raw string, allowSurprise bool) (Gender, error) {
	switch gender := Gender(strings.ToLower(strings.TrimSpace(raw))); gender {
	case GenderBoy, GenderGirl:
		return gender, nil
	case GenderSurprise:
		if !allowSurprise {
			return "", invalid(FieldGender, ReasonDisabled)
		}
		return gender, nil
	case "":
		return "", invalid(FieldGender, ReasonRequired)
	default:
		return "", invalidf(FieldGender, ReasonInvalid, "unknown gender %q", raw)
	}
}

func parseTimeSpec(input GuessInput, date slots.Date, rules slots.Rules) (slots.TimeSpec, error) {
	single := strings.TrimSpace(input.BirthTime)
	blocks := make([]string, 0, len(input.TimeBlocks))
	for _, raw := range input.TimeBlocks {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			blocks = append(blocks, trimmed)
		}
	}

	switch {
	case single != "" && len(blocks) > 0:
		return slots.TimeSpec{}, invalid(FieldTimeBlocks, ReasonConflict)
	case single == "" && len(blocks) == 0:
		return slots.TimeSpec{}, invalid(FieldBirthTime, ReasonRequired)
	case single != "":
		tod, err := slots.ParseTimeOfDay(single)
		if err != nil {
			return slots.TimeSpec{}, invalidf(FieldBirthTime, ReasonInvalid, "%v", err)
		}
		return slots.Single(tod), nil
	}

	times := make([]slots.TimeOfDay, 0, len(blocks))
	for _, raw := range blocks {
		var tod slots.TimeOfDay
		if strings.ContainsAny(raw, "T ") {
			slot, err := slots.ParseSlot(raw)
			if err != nil {
				return slots.TimeSpec{}, invalidf(FieldTimeBlocks, ReasonInvalid, "%v", err)
			}
			if slot.Date != date {
				return slots.TimeSpec{}, invalidf(FieldTimeBlocks, ReasonMultipleDates, "%s is not on %s", raw, date)
			}
			tod = slot.Time
		} else {
			parsed, err := slots.ParseTimeOfDay(raw)
			if err != nil {
				return slots.TimeSpec{}, invalidf(FieldTimeBlocks, ReasonInvalid, "%v", err)
			}
			tod = parsed
		}
		if !rules.Aligned(tod) {
			return slots.TimeSpec{}, invalidf(FieldTimeBlocks, ReasonMisaligned, "%s is not a %d minute slot", tod, rules.GranularityMinutes)
		}
		times = append(times, tod)
	}

	spec, err := slots.Block(times...)
	if err != nil {
		if errors.Is(err, slots.ErrDuplicateTime) {
			return slots.TimeSpec{}, invalidf(FieldTimeBlocks, ReasonDuplicate, "%v", err)
		}
		return slots.TimeSpec{}, invalidf(FieldTimeBlocks, ReasonInvalid, "%v", err)
	}
	if err := rules.CheckSlotCount(spec.Len()); err != nil {
		return slots.TimeSpec{}, invalidf(FieldTimeBlocks, ReasonExceedsMaxDuration, "%v", err)
	}
	return spec, nil
}

func parseWeight(input GuessInput) (weight.Weight, error) {
	hasImperial := input.Pounds != nil || input.Ounces != nil
	hasMetric := input.Kilograms != nil
	if !hasImperial && !hasMetric {
		return weight.Weight{}, invalid(FieldWeight, ReasonRequired)
	}

	var lbs, oz int
	if hasImperial {
		if input.Pounds != nil {
			lbs = *input.Pounds
		}
		if input.Ounces != nil {
			oz = *input.Ounces
		}
		if lbs < 0 || lbs > weight.MaxPounds {
			return weight.Weight{}, invalid(FieldWeightPounds, ReasonOutOfRange)
		}
		if oz < 0 || oz >= weight.OuncesPerPound {
			return weight.Weight{}, invalid(FieldWeightOunces, ReasonOutOfRange)
		}
		if lbs == 0 && oz == 0 {
			return weight.Weight{}, invalid(FieldWeight, ReasonOutOfRange)
		}
	}

	var kg float64
	if hasMetric {
		kg = *input.Kilograms
		if math.IsNaN(kg) || math.IsInf(kg, 0) || kg <= 0 || kg > weight.MaxKilograms {
			return weight.Weight{}, invalid(FieldWeightKg, ReasonOutOfRange)
		}
	}

	switch {
	case hasImperial && hasMetric:
		w := weight.Weight{Pounds: lbs, Ounces: oz, Kilograms: math.Round(kg*100) / 100}
		if !w.Consistent() {
			return weight.Weight{}, invalidf(FieldWeight, ReasonInconsistent, "%d lb %d oz is not %.2f kg", lbs, oz, kg)
		}
		return w, nil
	case hasImperial:
		return weight.FromPoundsOunces(lbs, oz), nil
	default:
		w := weight.FromKilograms(kg)
		if w.IsZero() {
			return weight.Weight{}, invalidf(FieldWeightKg, ReasonOutOfRange, "%v kg rounds to %s", kg, w)
		}
		return w, nil
	}
}

// ConvertWeight validates one weight given in either unit system and returns
// it with the other system derived. Supplying both systems checks that they
// agree.
func ConvertWeight(pounds, ounces *int, kilograms *float64) (weight.Weight, error) {
	return parseWeight(GuessInput{Pounds: pounds, Ounces: ounces, Kilograms: kilograms})
}
