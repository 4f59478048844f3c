package reminder

import "testing"

func hour(h int) *int {
	return &h
}

func TestInQuietHoursSameDayWindow(t *testing.T) {
	// Window 1→6 suppresses 01:00 through 05:59.
	for now := 0; now < 24; now++ {
		want := now >= 1 && now < 6
		if got := InQuietHours(hour(1), hour(6), now); got != want {
			t.Errorf("InQuietHours(1, 6, %d) = %v, want %v", now, got, want)
		}
	}
}

func TestInQuietHoursWrapsMidnight(t *testing.T) {
	// Window 22→8 suppresses 22:00 through 07:59.
	for now := 0; now < 24; now++ {
		want := now >= 22 || now < 8
		if got := InQuietHours(hour(22), hour(8), now); got != want {
			t.Errorf("InQuietHours(22, 8, %d) = %v, want %v", now, got, want)
		}
	}
}

func TestInQuietHoursAllWindows(t *testing.T) {
	for start := 0; start < 24; start++ {
		for end := 0; end < 24; end++ {
			if start == end {
				continue
			}
			for now := 0; now < 24; now++ {
				var want bool
				if start < end {
					want = now >= start && now < end
				} else {
					want = now >= start || now < end
				}
				if got := InQuietHours(hour(start), hour(end), now); got != want {
					t.Fatalf("InQuietHours(%d, %d, %d) = %v, want %v", start, end, now, got, want)
				}
			}
		}
	}
}

func TestInQuietHoursMissingBounds(t *testing.T) {
	for now := 0; now < 24; now++ {
		if InQuietHours(nil, hour(6), now) {
			t.Errorf("nil start should never suppress (now=%d)", now)
		}
		if InQuietHours(hour(22), nil, now) {
			t.Errorf("nil end should never suppress (now=%d)", now)
		}
		if InQuietHours(nil, nil, now) {
			t.Errorf("no window should never suppress (now=%d)", now)
		}
	}
}

func TestInQuietHoursDegenerateWindow(t *testing.T) {
	// Equal bounds are rejected at the write boundary; a record that
	// slipped through must never suppress.
	for now := 0; now < 24; now++ {
		if InQuietHours(hour(22), hour(22), now) {
			t.Errorf("equal window should never suppress (now=%d)", now)
		}
	}
}

func TestInQuietHoursOutOfRange(t *testing.T) {
	if InQuietHours(hour(24), hour(3), 1) {
		t.Error("out-of-range start should never suppress")
	}
	if InQuietHours(hour(3), hour(-1), 4) {
		t.Error("out-of-range end should never suppress")
	}
}
