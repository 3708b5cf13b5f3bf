package finance

import (
	"strconv"
	"time"
)

// MonthName is how reports store their month ("January" ... "December").
func MonthName(m time.Month) string {
	return m.String()
}

// Period returns the report month and year a moment falls into.
func Period(t time.Time) (string, string) {
	return MonthName(t.Month()), strconv.Itoa(t.Year())
}

func ParseMonth(name string) (time.Month, error) {
	for m := time.January; m <= time.December; m++ {
		if m.String() == name {
			return m, nil
		}
	}
	return 0, ErrInvalidMonth
}

// NextPeriod is the month after month/year, moving to January of the next year after December.
func NextPeriod(month, year string) (string, string, error) {
	m, err := ParseMonth(month)
	if err != nil {
		return "", "", err
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return "", "", err
	}
	if m == time.December {
		return MonthName(time.January), strconv.Itoa(y + 1), nil
	}
	return MonthName(m + 1), year, nil
}
