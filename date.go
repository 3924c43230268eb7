package tally

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	date "github.com/joyt/godate"
)

// TallyDateLayout is the fixed wire format of every Tally date.
const TallyDateLayout = "20060102"

var (
	wireDate     = regexp.MustCompile(`^\d{8}$`)
	isoDate      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dayFirstDate = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)
)

// ToTallyDate converts input to the YYYYMMDD wire format. Accepted shapes, in
// order: time.Time, an 8 digit string (returned unchanged), YYYY-MM-DD,
// DD/MM/YYYY or DD-MM-YYYY, then anything the generic layout detector
// understands. Everything else yields a *DateParseError.
func ToTallyDate(input any) (string, error) {
	switch v := input.(type) {
	case time.Time:
		if v.IsZero() {
			return "", &DateParseError{Input: "zero time"}
		}
		return v.Format(TallyDateLayout), nil
	case *time.Time:
		if v == nil {
			return "", &DateParseError{Input: "<nil>"}
		}
		return ToTallyDate(*v)
	case string:
		return stringToTallyDate(v)
	case nil:
		return "", &DateParseError{Input: "<nil>"}
	default:
		return stringToTallyDate(fmt.Sprint(v))
	}
}

// TallyDateOrDefault is ToTallyDate for callers that prefer a default over a
// failure, typically time.Now().
func TallyDateOrDefault(input any, def time.Time) string {
	s, err := ToTallyDate(input)
	if err != nil {
		return def.Format(TallyDateLayout)
	}
	return s
}

func stringToTallyDate(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	switch {
	case s == "":
		return "", &DateParseError{Input: raw}
	case wireDate.MatchString(s):
		return s, nil
	case isoDate.MatchString(s):
		return strings.ReplaceAll(s, "-", ""), nil
	}
	if m := dayFirstDate.FindStringSubmatch(s); m != nil {
		return m[3] + pad2(m[2]) + pad2(m[1]), nil
	}

	t, _, err := date.ParseAndGetLayout(s)
	if err != nil {
		return "", &DateParseError{Input: raw, Err: err}
	}
	return t.Format(TallyDateLayout), nil
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// FromTallyDate splits a YYYYMMDD wire date into a calendar date (UTC).
func FromTallyDate(s string) (time.Time, error) {
	if len(s) != 8 {
		return time.Time{}, ErrInvalidTallyDate
	}
	year, yerr := strconv.Atoi(s[0:4])
	month, merr := strconv.Atoi(s[4:6])
	day, derr := strconv.Atoi(s[6:8])
	if yerr != nil || merr != nil || derr != nil {
		return time.Time{}, ErrInvalidTallyDate
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}
