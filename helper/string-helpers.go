package helper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/relloyd/sparkify-dwh/constants"
)

var reTrue = regexp.MustCompile("(?i)^true$")

// CsvToStringSliceTrimSpaces converts a string of the form 'f1, f2,f3' into a slice of values.
// An empty input gives an empty slice.
func CsvToStringSliceTrimSpaces(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	tokens := strings.Split(s, ",")
	for x := range tokens {
		tokens[x] = strings.TrimSpace(tokens[x])
	}
	return tokens
}

// GetTrueFalseStringAsBool trims spaces from s and returns true if it matches "true" in any case.
func GetTrueFalseStringAsBool(s string) bool {
	return reTrue.MatchString(strings.TrimSpace(s))
}

// GetStringFromInterface will convert a driver value to a string.
// Whole floats are printed without a decimal point so that 0.0 and 0 compare equal.
func GetStringFromInterface(input interface{}) string {
	switch v := input.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.UTC().Format(constants.TimeFormatYearSecondsTZ)
	default:
		return fmt.Sprint(v)
	}
}

// NormaliseNumber returns the canonical decimal form of v when v looks like a number,
// so that "0", 0, int64(0) and "0.00" are all "0".
// Anything else comes back as its plain string form.
func NormaliseNumber(v interface{}) string {
	s := strings.TrimSpace(GetStringFromInterface(v))
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return s
}

// InterfaceToString converts a row of driver values for printing.
func InterfaceToString(src []interface{}) []string {
	retval := make([]string, len(src))
	for i, v := range src {
		retval[i] = GetStringFromInterface(v)
	}
	return retval
}

// Split returns t, u when s is of the form t c u, else s, "".
func Split(s string, c string) (string, string) {
	i := strings.Index(s, c)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+len(c):]
}
