package filter

import (
	"strings"
	"time"
)

// dateLayouts are tried in order by toTime
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// helperFunctions are available to every expression. Timestamps in items are
// strings as sent by the API, so the date helpers accept both strings and
// time.Time. contains, startsWith and endsWith are expr operators, so the
// case-insensitive string helpers use other names.
func helperFunctions() map[string]any {
	return map[string]any{
		"daysSince": func(v any) int {
			t := toTime(v)
			if t.IsZero() {
				return -1
			}
			return int(time.Since(t).Hours() / 24)
		},
		"daysAgo": func(days int) time.Time {
			return time.Now().AddDate(0, 0, -days)
		},
		"parseDate": func(v any) time.Time {
			return toTime(v)
		},
		"hasSubstr": func(str, substr string) bool {
			return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
		},
		"hasPrefix": func(str, prefix string) bool {
			return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
		},
		"hasSuffix": func(str, suffix string) bool {
			return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
		},
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		"now":   time.Now,
	}
}

func toTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t != nil {
			return *t
		}
	case string:
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}
