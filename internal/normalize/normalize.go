// =============================================================================
// Fixed Assets Register - Field Normalizers
// =============================================================================
//
// This package converts raw cell values into canonical strings:
//   - Cell values of any type -> trimmed text (Stringify)
//   - Ledger dates in several shapes -> DD-MM-YYYY (NormalizeDate)
//   - Inventory numbers -> six-digit serials (DeriveSerial)
//
// All functions are pure.
//
// =============================================================================

package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CELL VALUES
// =============================================================================

// Stringify returns the trimmed text form of a cell value and whether the
// value is present. nil and blank strings are absent. Numbers are rendered
// without exponent or trailing zeros, so 1537.99 stays "1537.99" and
// 1110300.0 becomes "1110300".
func Stringify(value any) (string, bool) {
	var s string
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		s = v
	case float64:
		s = decimal.NewFromFloat(v).String()
	case float32:
		s = decimal.NewFromFloat32(v).String()
	case int:
		s = strconv.Itoa(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	case int32:
		s = strconv.FormatInt(int64(v), 10)
	case uint64:
		s = strconv.FormatUint(v, 10)
	case bool:
		s = strconv.FormatBool(v)
	case time.Time:
		s = v.Format(DateLayout)
	case decimal.Decimal:
		s = v.String()
	case fmt.Stringer:
		s = v.String()
	default:
		s = fmt.Sprint(v)
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// =============================================================================
// DATES
// =============================================================================

// DateLayout is the canonical ledger date format, DD-MM-YYYY.
const DateLayout = "02-01-2006"

// datePattern checks digit grouping only, not calendar validity.
var datePattern = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)

// BadDateFormatError is returned when a date string cannot be corrected
// into DD-MM-YYYY.
type BadDateFormatError struct {
	Value string
}

// Error implements the error interface.
func (e *BadDateFormatError) Error() string {
	return fmt.Sprintf("invalid date format: %q (expected DD-MM-YYYY)", e.Value)
}

// IsCanonicalDate reports whether s has the DD-MM-YYYY shape.
func IsCanonicalDate(s string) bool {
	return datePattern.MatchString(s)
}

// NormalizeDate reconciles a ledger date into DD-MM-YYYY.
//
// RULES (in order):
//  1. Absent value -> "".
//  2. time.Time -> formatted directly.
//  3. Text already in DD-MM-YYYY -> unchanged.
//  4. Otherwise only the part before the first comma or space is kept
//     ("19/12/2023, 21-12-2023", "30.06.2023 (13.07.2023)"), dots and
//     slashes become dashes and the shape is checked again.
//
// Day and month are never reordered: "07.31.2023" gives "07-31-2023".
func NormalizeDate(value any) (string, error) {
	if t, ok := value.(time.Time); ok {
		return t.Format(DateLayout), nil
	}

	s, ok := Stringify(value)
	if !ok {
		return "", nil
	}
	if IsCanonicalDate(s) {
		return s, nil
	}

	corrected := correctDate(s)
	if !IsCanonicalDate(corrected) {
		return "", &BadDateFormatError{Value: s}
	}
	return corrected, nil
}

// correctDate keeps the first date of a dual-date literal and unifies the
// separators.
func correctDate(s string) string {
	if i := strings.IndexAny(s, ", "); i >= 0 {
		s = s[:i]
	}
	return strings.NewReplacer(".", "-", "/", "-").Replace(s)
}

// =============================================================================
// SERIALS
// =============================================================================

// serialLength is the number of trailing inventory-number characters that
// identify a physical asset.
const serialLength = 6

// DeriveSerial returns the last six characters of an inventory number when
// all of them are decimal digits. Anything else marks an asset still under
// construction whose cost is not known yet.
func DeriveSerial(inventoryNumber string) (string, bool) {
	inventoryNumber = strings.TrimSpace(inventoryNumber)
	if len(inventoryNumber) < serialLength {
		return "", false
	}
	serial := inventoryNumber[len(inventoryNumber)-serialLength:]
	for i := 0; i < len(serial); i++ {
		if serial[i] < '0' || serial[i] > '9' {
			return "", false
		}
	}
	return serial, true
}
