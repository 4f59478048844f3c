package reminder

import "log/slog"

// InQuietHours reports whether the given wall-clock hour falls inside
// the suppression window [start, end). Windows may wrap past midnight,
// e.g. 22→8 covers 22:00 through 07:59.
//
// A missing bound means no quiet hours are configured. An invalid pair
// (equal bounds, or a bound outside 0–23) should have been rejected at
// the write boundary; the evaluator warns and treats it as "not in
// quiet hours" so a corrupted record can neither black out
// notifications nor crash a sweep.
func InQuietHours(start, end *int, hour int) bool {
	if start == nil || end == nil {
		return false
	}
	s, e := *start, *end
	if s < 0 || s > 23 || e < 0 || e > 23 || s == e {
		slog.Warn("invalid quiet hours window", "start", s, "end", e)
		return false
	}
	if s < e {
		return hour >= s && hour < e
	}
	// Window wraps past midnight.
	return hour >= s || hour < e
}
