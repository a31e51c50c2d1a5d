package model

import (
    "errors"
    "strconv"
    "unicode"
)

// ErrBadSeatCode is returned when a seat code string cannot be parsed
// back into its index and section parts.
var ErrBadSeatCode = errors.New("malformed seat code")

// SeatCode identifies one purchasable seat within an event as a
// structured value: a 1-based index into a section plus the section
// name.  The code is only formatted to a display string ("12VIP") at
// the boundary; internal logic works with the structured form.
type SeatCode struct {
    Index   uint32 // 1..section capacity
    Section string // section name, must not start with a digit
}

// String formats the seat code the way it is stored and rendered,
// index first followed by the section name.
func (sc SeatCode) String() string {
    return strconv.FormatUint(uint64(sc.Index), 10) + sc.Section
}

// ParseSeatCode parses a display string such as "12VIP" into a
// SeatCode.  The string must consist of one or more leading digits
// followed by a non-empty section name whose first rune is not a
// digit.  Anything else returns ErrBadSeatCode.
func ParseSeatCode(s string) (SeatCode, error) {
    i := 0
    for i < len(s) && s[i] >= '0' && s[i] <= '9' {
        i++
    }
    if i == 0 || i == len(s) {
        return SeatCode{}, ErrBadSeatCode
    }
    idx, err := strconv.ParseUint(s[:i], 10, 32)
    if err != nil || idx == 0 {
        return SeatCode{}, ErrBadSeatCode
    }
    section := s[i:]
    for _, r := range section {
        if unicode.IsSpace(r) {
            return SeatCode{}, ErrBadSeatCode
        }
    }
    return SeatCode{Index: uint32(idx), Section: section}, nil
}
