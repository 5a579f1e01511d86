// Package radicacion defines filing numbers ("radicación") and the
// per-(tenant, category, year) counters they are built from.
//
// A filing number has the fixed layout
//
//	{tenantCode}-{categoryCode}-{year}-{counter}
//
// where both codes are 1-16 characters of A-Z and 0-9, year has exactly four
// digits, and counter is a positive decimal zero-padded to four digits.
// Counters above 9999 are written in full, so the width grows instead of
// wrapping. Example: T1-CL-2024-0001.
package radicacion

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/tramites/backend/internal/domain/shared"
)

const (
	// Separator joins the four components of a filing number
	Separator = "-"
	// CounterWidth is the minimum number of digits of the counter component
	CounterWidth = 4
	// MaxCodeLength bounds tenant and category codes
	MaxCodeLength = 16

	minYear = 1000
	maxYear = 9999
)

var (
	codePattern    = regexp.MustCompile(`^[A-Z0-9]{1,16}$`)
	yearPattern    = regexp.MustCompile(`^[0-9]{4}$`)
	counterPattern = regexp.MustCompile(`^[0-9]{4,}$`)
)

// ErrMalformedNumber is returned when a string is not a canonical filing number
var ErrMalformedNumber = shared.NewDomainError("MALFORMED_FILING_NUMBER", "Filing number is malformed")

// Number is the decoded form of a filing number
type Number struct {
	TenantCode   string
	CategoryCode string
	Year         int
	Counter      int64
}

// ValidCode reports whether s can be used as a tenant or category code
func ValidCode(s string) bool {
	return codePattern.MatchString(s)
}

// Validate checks that every component can be formatted
func (n Number) Validate() error {
	if !ValidCode(n.TenantCode) {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("invalid tenant code %q", n.TenantCode))
	}
	if !ValidCode(n.CategoryCode) {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("invalid category code %q", n.CategoryCode))
	}
	if n.Year < minYear || n.Year > maxYear {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("year %d out of range", n.Year))
	}
	if n.Counter < 1 {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("counter must be positive, got %d", n.Counter))
	}
	return nil
}

// String renders the number without validation. Use Format for untrusted input.
func (n Number) String() string {
	return fmt.Sprintf("%s%s%s%s%04d%s%0*d",
		n.TenantCode, Separator,
		n.CategoryCode, Separator,
		n.Year, Separator,
		CounterWidth, n.Counter,
	)
}

// Format renders a validated filing number
func Format(n Number) (string, error) {
	if err := n.Validate(); err != nil {
		return "", err
	}
	return n.String(), nil
}

// Parse decodes a canonical filing number. It accepts exactly the strings
// Format produces, so Parse(Format(n)) == n and no two numbers share a string.
func Parse(s string) (Number, error) {
	parts := strings.Split(s, Separator)
	if len(parts) != 4 {
		return Number{}, ErrMalformedNumber
	}
	tenantCode, categoryCode, yearPart, counterPart := parts[0], parts[1], parts[2], parts[3]

	if !ValidCode(tenantCode) || !ValidCode(categoryCode) {
		return Number{}, ErrMalformedNumber
	}
	if !yearPattern.MatchString(yearPart) || !counterPattern.MatchString(counterPart) {
		return Number{}, ErrMalformedNumber
	}
	// Wider than the padding means the value did not fit, so no leading zero.
	if len(counterPart) > CounterWidth && counterPart[0] == '0' {
		return Number{}, ErrMalformedNumber
	}

	year, err := strconv.Atoi(yearPart)
	if err != nil || year < minYear {
		return Number{}, ErrMalformedNumber
	}
	counter, err := strconv.ParseInt(counterPart, 10, 64)
	if err != nil || counter < 1 {
		return Number{}, ErrMalformedNumber
	}

	return Number{
		TenantCode:   tenantCode,
		CategoryCode: categoryCode,
		Year:         year,
		Counter:      counter,
	}, nil
}

// Normalize cleans user input before parsing: surrounding and inner
// whitespace is dropped and letters are upper-cased.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
