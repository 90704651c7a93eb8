// Package filter evaluates expr-lang expressions against API items.
//
// Items are exposed under their remote field names, with helpers for the
// usual string and date checks:
//
//	is_private && hasSubstr(full_name, "api")
//	state == "OPEN" && daysSince(updated_on) > 30
//	lower(title) startsWith "wip"
//
// hasSubstr, hasPrefix and hasSuffix ignore case; expr's own contains,
// startsWith and endsWith operators do not.
package filter
