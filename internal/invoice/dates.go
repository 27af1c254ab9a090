package invoice

import (
	"regexp"
	"time"
)

var datePattern = regexp.MustCompile(`\d{4}年\d{1,2}月\d{1,2}日`)

const chineseDateLayout = "2006年1月2日"

// parseDate finds the first YYYY年M月D日 date in line. ok is false when no
// date is printed or the printed date does not exist in the calendar.
func parseDate(line string) (time.Time, bool) {
	m := datePattern.FindString(line)
	if m == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(chineseDateLayout, m)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
