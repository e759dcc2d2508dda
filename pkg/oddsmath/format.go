package oddsmath

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrInvalidOdds is returned when text cannot be read as a price above 1.0.
	ErrInvalidOdds = errors.New("invalid odds")

	// ErrUnknownFormat is returned by ParseFormat for unrecognised format names.
	ErrUnknownFormat = errors.New("unknown odds format")
)

// Placeholder is rendered in place of odds that are not a valid price.
const Placeholder = "—"

const (
	fractionMaxDenominator = 1000
	fractionMaxIterations  = 100
	fractionEpsilon        = 1e-9

	// Above this a float64 no longer resolves the fractional part of the
	// price, so fractional odds are rendered as a whole number.
	fractionMaxWhole = 1e15
)

// Format is an odds notation
type Format int

const (
	Decimal Format = iota
	American
	Fractional
)

// Formats lists every notation in display order
var Formats = []Format{Decimal, American, Fractional}

func (f Format) String() string {
	switch f {
	case Decimal:
		return "decimal"
	case American:
		return "american"
	case Fractional:
		return "fractional"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// ParseFormat resolves a notation name such as "decimal", "american" or "fractional"
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "decimal", "dec", "eu":
		return Decimal, nil
	case "american", "us", "moneyline":
		return American, nil
	case "fractional", "frac", "uk":
		return Fractional, nil
	default:
		return Decimal, fmt.Errorf("%q: %w", name, ErrUnknownFormat)
	}
}

// MarshalText implements encoding.TextMarshaler so formats travel as names in JSON
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Parse reads text written in the given notation and returns decimal odds.
// The result is always a valid price (> 1).
func Parse(text string, format Format) (float64, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, fmt.Errorf("empty odds: %w", ErrInvalidOdds)
	}

	var (
		decimal float64
		err     error
	)
	switch format {
	case Decimal:
		decimal, err = parseDecimal(s)
	case American:
		decimal, err = parseAmerican(s)
	case Fractional:
		decimal, err = parseFractional(s)
	default:
		return 0, fmt.Errorf("%v: %w", format, ErrUnknownFormat)
	}
	if err != nil {
		return 0, err
	}

	if !IsValidDecimal(decimal) {
		return 0, fmt.Errorf("%q is not a price above 1.0: %w", s, ErrInvalidOdds)
	}
	return decimal, nil
}

// ParseAny tries decimal, then American, then fractional notation and returns
// the first successful reading.
func ParseAny(text string) (float64, bool) {
	for _, format := range Formats {
		if d, err := Parse(text, format); err == nil {
			return d, true
		}
	}
	return 0, false
}

func parseDecimal(s string) (float64, error) {
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("decimal odds %q: %w", s, ErrInvalidOdds)
	}
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, fmt.Errorf("decimal odds %q is not finite: %w", s, ErrInvalidOdds)
	}
	return d, nil
}

// parseAmerican accepts an optionally signed integer; thousands separators are ignored
func parseAmerican(s string) (float64, error) {
	s = strings.ReplaceAll(s, ",", "")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("american odds %q: %w", s, ErrInvalidOdds)
	}
	return AmericanToDecimal(n)
}

// parseFractional accepts "num/den" with den > 0
func parseFractional(s string) (float64, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return 0, fmt.Errorf("fractional odds %q must look like num/den: %w", s, ErrInvalidOdds)
	}

	num, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) || num < 0 {
		return 0, fmt.Errorf("fractional numerator %q: %w", parts[0], ErrInvalidOdds)
	}
	den, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || math.IsNaN(den) || math.IsInf(den, 0) || den <= 0 {
		return 0, fmt.Errorf("fractional denominator %q: %w", parts[1], ErrInvalidOdds)
	}

	return 1.0 + num/den, nil
}

// FormatOdds renders decimal odds in the given notation. Anything that is not a
// valid price renders as Placeholder.
func FormatOdds(decimal float64, format Format) string {
	if !IsValidDecimal(decimal) {
		return Placeholder
	}

	switch format {
	case American:
		american, _ := DecimalToAmerican(decimal)
		if american > 0 {
			return fmt.Sprintf("+%d", american)
		}
		return fmt.Sprintf("%d", american)
	case Fractional:
		num, den := approxFraction(decimal-1.0, fractionMaxDenominator, fractionMaxIterations)
		return fmt.Sprintf("%d/%d", num, den)
	default:
		return fmt.Sprintf("%.3f", decimal)
	}
}

// approxFraction finds the best rational approximation of x whose denominator
// does not exceed maxDen, using continued fraction convergents.
func approxFraction(x float64, maxDen int64, maxIter int) (int64, int64) {
	if x >= fractionMaxWhole {
		return int64(saturateInt(math.Round(x))), 1
	}

	a := math.Floor(x)
	h0, k0 := int64(1), int64(0)
	h1, k1 := int64(a), int64(1)

	for i := 0; i < maxIter; i++ {
		frac := x - a
		if math.Abs(frac) < fractionEpsilon {
			break
		}
		x = 1.0 / frac
		a = math.Floor(x)

		h2 := h0 + int64(a)*h1
		k2 := k0 + int64(a)*k1
		if k2 > maxDen {
			break
		}
		h0, k0, h1, k1 = h1, k1, h2, k2
	}

	return h1, k1
}

// Complement returns the no-vig price of the opposite side: d / (d - 1).
// It is NaN when d is not a valid price.
func Complement(decimal float64) float64 {
	if !IsValidDecimal(decimal) {
		return math.NaN()
	}
	return decimal / (decimal - 1.0)
}
