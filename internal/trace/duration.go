package trace

import "fmt"

// FormatDuration renders a day count for display using 30-day months and
// 12-month years, so exactly 30 days reads "1 month" and 395 days reads
// "1 year, 1 month".
func FormatDuration(days int) string {
	if days < 30 {
		return plural(days, "day")
	}

	months := days / 30
	remDays := days % 30
	if months < 12 {
		if remDays > 0 {
			return plural(months, "month") + ", " + plural(remDays, "day")
		}
		return plural(months, "month")
	}

	years := months / 12
	remMonths := months % 12
	if remMonths > 0 {
		return plural(years, "year") + ", " + plural(remMonths, "month")
	}
	return plural(years, "year")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
