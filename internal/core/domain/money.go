package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MinorUnitScale is the number of fractional digits carried by an Amount.
// All amounts are stored as integers scaled to the smallest currency unit.
const MinorUnitScale = 2

// Amount is an exact monetary value in minor currency units (e.g., cents).
// The zero value is a zero amount. Arithmetic and comparison are exact;
// no binary floating point is ever involved.
type Amount struct {
	minor int64
}

// ZeroAmount is the additive identity.
var ZeroAmount = Amount{}

// NewAmountFromMinor builds an Amount from a count of minor units.
func NewAmountFromMinor(minor int64) Amount {
	return Amount{minor: minor}
}

// ParseAmount parses a decimal string such as "1000.00" or "12.5" into an
// Amount. Values with more than MinorUnitScale fractional digits are rejected
// rather than rounded, so precision loss at the boundary is impossible.
func ParseAmount(s string) (Amount, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Amount{}, fmt.Errorf("amount is empty")
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	scaled := d.Shift(MinorUnitScale)
	if !scaled.IsInteger() {
		return Amount{}, fmt.Errorf("amount %q has more than %d fractional digits", s, MinorUnitScale)
	}
	return Amount{minor: scaled.IntPart()}, nil
}

// MustParseAmount is ParseAmount for literals in tests and fixtures.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Minor returns the amount in minor units.
func (a Amount) Minor() int64 { return a.minor }

func (a Amount) Add(b Amount) Amount { return Amount{minor: a.minor + b.minor} }
func (a Amount) Sub(b Amount) Amount { return Amount{minor: a.minor - b.minor} }
func (a Amount) Neg() Amount         { return Amount{minor: -a.minor} }

// Abs returns the magnitude of the amount.
func (a Amount) Abs() Amount {
	if a.minor < 0 {
		return Amount{minor: -a.minor}
	}
	return a
}

// Equal reports exact equality of the scaled integer values.
func (a Amount) Equal(b Amount) bool { return a.minor == b.minor }

// Cmp returns -1, 0 or +1 comparing a against b.
func (a Amount) Cmp(b Amount) int {
	switch {
	case a.minor < b.minor:
		return -1
	case a.minor > b.minor:
		return 1
	default:
		return 0
	}
}

func (a Amount) IsZero() bool     { return a.minor == 0 }
func (a Amount) IsPositive() bool { return a.minor > 0 }
func (a Amount) IsNegative() bool { return a.minor < 0 }

// Decimal returns the exact decimal representation, for display-boundary use.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(a.minor, -MinorUnitScale)
}

// String renders the amount with the full minor-unit scale, e.g. "1000.00".
func (a Amount) String() string {
	return a.Decimal().StringFixed(MinorUnitScale)
}

// MarshalJSON renders the amount as a quoted decimal string, matching the
// wire contract: amounts travel as decimal strings, never binary floats.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts either a quoted decimal string ("1000.00") or a bare
// JSON number. Numbers are parsed from their literal text, so integer and
// fixed-point literals stay exact.
func (a *Amount) UnmarshalJSON(data []byte) error {
	text := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		text = s
	}
	parsed, err := ParseAmount(text)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
