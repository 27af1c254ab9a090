package utils

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MaxYuan is the largest whole-yuan amount whose cents fit in an int64
const MaxYuan = (math.MaxInt64 - 99) / 100

var (
	yuanPattern  = regexp.MustCompile(`^(\d+)(?:\.(\d{1,2}))?$`)
	controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

// ParseYuanToCents converts a user-entered yuan amount such as "12.5" or
// "￥1,234.56" into integer cents. At most two decimals are accepted.
func ParseYuanToCents(s string) (int64, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimLeft(clean, "￥¥")
	clean = strings.ReplaceAll(clean, ",", "")

	m := yuanPattern.FindStringSubmatch(clean)
	if m == nil {
		return 0, fmt.Errorf("invalid amount: %q", s)
	}

	yuan, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount: %q", s)
	}
	if yuan > MaxYuan {
		return 0, fmt.Errorf("amount out of range: %q", s)
	}
	frac := m[2]
	if len(frac) == 1 {
		frac += "0"
	}
	var fen int64
	if frac != "" {
		fen, _ = strconv.ParseInt(frac, 10, 64)
	}
	return yuan*100 + fen, nil
}

// SanitizeString removes control characters and surrounding whitespace
func SanitizeString(s string) string {
	return strings.TrimSpace(controlChars.ReplaceAllString(s, ""))
}
