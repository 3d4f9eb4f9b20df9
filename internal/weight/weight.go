// Package weight converts birth weights between pounds/ounces and kilograms.
package weight

import (
	"fmt"
	"math"
)

// KilogramsPerPound is the fixed conversion factor used everywhere in the pool.
const KilogramsPerPound = 0.453592

// OuncesPerPound is the number of ounces in one pound.
const OuncesPerPound = 16

// Tolerance is the largest kilogram difference accepted between the two
// representations of one weight: half an ounce plus the two-decimal rounding.
const Tolerance = 0.02

// MaxKilograms and MaxPounds bound a plausible birth weight.
const (
	MaxKilograms = 20.0
	MaxPounds    = 44
)

// Weight stores both unit systems side by side.
type Weight struct {
	Pounds    int
	Ounces    int
	Kilograms float64
}

// PoundsOuncesToKg converts an imperial weight to kilograms rounded to two decimals.
func PoundsOuncesToKg(lbs, oz int) float64 {
	total := float64(lbs) + float64(oz)/OuncesPerPound
	return round2(total * KilogramsPerPound)
}

// KgToPoundsOunces converts kilograms to whole pounds and rounded ounces.
// Sixteen rounded ounces carry into the next pound. Values beyond
// math.MaxInt32 pounds saturate there.
func KgToPoundsOunces(kg float64) (int, int) {
	total := kg / KilogramsPerPound
	if total >= math.MaxInt32 {
		return math.MaxInt32, 0
	}
	lbs := math.Floor(total)
	oz := math.Round((total - lbs) * OuncesPerPound)
	if oz >= OuncesPerPound {
		lbs++
		oz = 0
	}
	return int(lbs), int(oz)
}

// FromPoundsOunces builds a Weight deriving the kilogram value.
func FromPoundsOunces(lbs, oz int) Weight {
	return Weight{Pounds: lbs, Ounces: oz, Kilograms: PoundsOuncesToKg(lbs, oz)}
}

// FromKilograms builds a Weight deriving the imperial value.
func FromKilograms(kg float64) Weight {
	lbs, oz := KgToPoundsOunces(kg)
	return Weight{Pounds: lbs, Ounces: oz, Kilograms: round2(kg)}
}

// IsZero reports whether either representation rounds to nothing.
func (w Weight) IsZero() bool {
	return w.Kilograms == 0 || (w.Pounds == 0 && w.Ounces == 0)
}

// Consistent reports whether the imperial and metric values describe the same weight.
func (w Weight) Consistent() bool {
	return math.Abs(PoundsOuncesToKg(w.Pounds, w.Ounces)-w.Kilograms) <= Tolerance
}

// String renders the weight as "7 lb 8 oz / 3.40 kg".
func (w Weight) String() string {
	return fmt.Sprintf("%d lb %d oz / %.2f kg", w.Pounds, w.Ounces, w.Kilograms)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
