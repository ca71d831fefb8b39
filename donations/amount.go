// Package donations holds the donation amount model: the predefined tiers,
// the dual-mode amount selection used by the donation form, and the single
// bounds check shared by every validation boundary.
package donations

import (
	"fmt"
	"strconv"
)

const (
	// MinAmount is the smallest accepted donation, in cents ($3).
	MinAmount = 300
	// MaxAmount is the largest accepted donation, in cents ($100,000).
	MaxAmount = 10000000

	// MinCustomDollars and MaxCustomDollars bound the free-form entry field
	// at keystroke level, in whole dollars.
	MinCustomDollars = 3
	MaxCustomDollars = 100000
)

// Tier is a predefined monthly donation option.
type Tier struct {
	Value  string // stable identifier, e.g. "monthly-10"
	Label  string // display label, e.g. "$10"
	Amount int64  // cents
}

// Tiers are the one-click donation options offered by the form.
var Tiers = []Tier{
	{Value: "monthly-10", Label: "$10", Amount: 1000},
	{Value: "monthly-20", Label: "$20", Amount: 2000},
	{Value: "monthly-50", Label: "$50", Amount: 5000},
}

// TierByValue returns the tier with the given identifier, or nil.
func TierByValue(value string) *Tier {
	for i := range Tiers {
		if Tiers[i].Value == value {
			return &Tiers[i]
		}
	}
	return nil
}

// ErrAmountOutOfRange is returned by ValidateAmount for amounts outside the
// accepted donation range.
var ErrAmountOutOfRange = fmt.Errorf("invalid amount, must be between $3 and $100,000")

// ValidateAmount checks that a donation amount in cents is within the
// accepted range. It is the consolidated bounds check: the HTTP boundary,
// the form resolution and the subscription creator all call it, so the rule
// cannot drift between copies.
func ValidateAmount(cents int64) error {
	if cents < MinAmount || cents > MaxAmount {
		return ErrAmountOutOfRange
	}
	return nil
}

// AmountForm models the dual-mode amount selection of the donation form: a
// tier selection and a free-form dollar entry, mutually exclusive at any
// instant. Selecting a tier overwrites the custom field with the tier's
// dollar value; entering a custom value deselects the tier.
type AmountForm struct {
	selected string
	custom   string
}

// SelectTier selects a predefined tier by identifier and mirrors its dollar
// value into the custom field (one-way sync, last write wins). Unknown
// identifiers clear the selection without touching the custom field.
func (f *AmountForm) SelectTier(value string) {
	tier := TierByValue(value)
	if tier == nil {
		f.selected = ""
		return
	}
	f.selected = value
	f.custom = strconv.FormatInt(tier.Amount/100, 10)
}

// EnterCustom feeds a keystroke-level value into the free-form field. Only
// the empty string or an integer within [MinCustomDollars, MaxCustomDollars]
// is admitted; any other value leaves the field unchanged. Admitting a value
// deselects the tier.
func (f *AmountForm) EnterCustom(value string) {
	if value != "" {
		dollars, err := strconv.ParseInt(value, 10, 64)
		if err != nil || dollars < MinCustomDollars || dollars > MaxCustomDollars {
			return
		}
	}
	f.custom = value
	f.selected = ""
}

// Custom returns the current free-form field content.
func (f *AmountForm) Custom() string {
	return f.custom
}

// Selected returns the currently selected tier identifier, or "".
func (f *AmountForm) Selected() string {
	return f.selected
}

// Resolve collapses the two modes into a single amount in cents: the custom
// value takes precedence if non-empty, then the selected tier, else 0.
func (f *AmountForm) Resolve() int64 {
	if f.custom != "" {
		dollars, err := strconv.ParseInt(f.custom, 10, 64)
		if err != nil {
			return 0
		}
		return dollars * 100
	}
	if tier := TierByValue(f.selected); tier != nil {
		return tier.Amount
	}
	return 0
}
