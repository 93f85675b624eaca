package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// Money is a decimal amount held in hundredths, so NUMERIC(n,2) columns round-trip exactly.
// It is exchanged as a two-decimal string ("75.00"); JSON numbers and strings are accepted on input.
type Money int64

var ErrInvalidAmount = errors.New("invalid amount")

// ParseMoney reads "75", "75.5" or "75.50". More than two decimals is rejected.
func ParseMoney(s string) (Money, error) {
	raw := strings.TrimSpace(s)
	neg := strings.HasPrefix(raw, "-")
	if neg {
		raw = raw[1:]
	} else {
		raw = strings.TrimPrefix(raw, "+")
	}

	whole, frac, _ := strings.Cut(raw, ".")
	if (whole == "" && frac == "") || len(frac) > 2 || !isDigits(whole) || !isDigits(frac) {
		return 0, fmt.Errorf("%w %q", ErrInvalidAmount, s)
	}
	if whole == "" {
		whole = "0"
	}
	frac += strings.Repeat("0", 2-len(frac))

	n, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w %q", ErrInvalidAmount, s)
	}
	if neg {
		n = -n
	}
	return Money(n), nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (m Money) String() string {
	sign := ""
	n := int64(m)
	if n < 0 {
		sign = "-"
		n = -n
	}
	return fmt.Sprintf("%s%d.%02d", sign, n/100, n%100)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Money) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}
	v, err := ParseMoney(raw)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// NumericValue encodes m for NUMERIC parameters
func (m Money) NumericValue() (pgtype.Numeric, error) {
	return pgtype.Numeric{Int: big.NewInt(int64(m)), Exp: -2, Valid: true}, nil
}

// TextValue covers the simple query protocol, where parameters are sent as text
func (m Money) TextValue() (pgtype.Text, error) {
	return pgtype.Text{String: m.String(), Valid: true}, nil
}

// ScanNumeric reads a NUMERIC column; values with a non-zero third decimal are rejected
func (m *Money) ScanNumeric(n pgtype.Numeric) error {
	if !n.Valid {
		return fmt.Errorf("%w: NULL", ErrInvalidAmount)
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite || n.Int == nil {
		return fmt.Errorf("%w: not a finite number", ErrInvalidAmount)
	}

	v := new(big.Int).Set(n.Int)
	exp := int64(n.Exp) + 2
	switch {
	case exp > 0:
		v.Mul(v, new(big.Int).Exp(big.NewInt(10), big.NewInt(exp), nil))
	case exp < 0:
		div := new(big.Int).Exp(big.NewInt(10), big.NewInt(-exp), nil)
		var rem big.Int
		v.QuoRem(v, div, &rem)
		if rem.Sign() != 0 {
			return fmt.Errorf("%w: more than two decimals", ErrInvalidAmount)
		}
	}
	if !v.IsInt64() {
		return fmt.Errorf("%w: out of range", ErrInvalidAmount)
	}
	*m = Money(v.Int64())
	return nil
}
