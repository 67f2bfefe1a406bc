package rules

import "time"

// MarketClock decides whether the regular session is open. The wall clock is
// injectable through WithNow.
type MarketClock struct {
	loc      *time.Location
	opensAt  time.Duration
	closesAt time.Duration
	now      func() time.Time
}

// NewMarketClock returns a clock for a session running from opensAt to
// closesAt (offsets from local midnight) in loc.
func NewMarketClock(loc *time.Location, opensAt, closesAt time.Duration) *MarketClock {
	if loc == nil {
		loc = time.UTC
	}
	return &MarketClock{
		loc:      loc,
		opensAt:  opensAt,
		closesAt: closesAt,
		now:      time.Now,
	}
}

// WithNow returns a copy of the clock that reads time from now.
func (c *MarketClock) WithNow(now func() time.Time) *MarketClock {
	cp := *c
	cp.now = now
	return &cp
}

func (c *MarketClock) Location() *time.Location { return c.loc }

// Now is the current time in the market timezone.
func (c *MarketClock) Now() time.Time {
	return c.now().In(c.loc)
}

// Today is midnight of the current market day.
func (c *MarketClock) Today() time.Time {
	return MarketDay(c.Now())
}

// IsMarketOpen reports whether the session is open right now.
func (c *MarketClock) IsMarketOpen(isHoliday bool) bool {
	return c.IsOpenAt(c.Now(), isHoliday)
}

// IsOpenAt reports whether the session is open at t: a weekday, not a
// holiday, and opensAt <= time of day < closesAt.
func (c *MarketClock) IsOpenAt(t time.Time, isHoliday bool) bool {
	if isHoliday {
		return false
	}
	t = t.In(c.loc)
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	tod := time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second
	return tod >= c.opensAt && tod < c.closesAt
}

// MarketDay truncates t to midnight in its own location.
func MarketDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
