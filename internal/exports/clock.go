package exports

import (
	"sync"
	"time"
)

// Clock supplies the export timestamp. The zero value uses the wall clock in
// the Brazilian local zone.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

var (
	defaultLocOnce sync.Once
	defaultLoc     *time.Location
)

func (c Clock) now() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Location
	if loc == nil {
		loc = saoPaulo()
	}
	return now().In(loc)
}

func saoPaulo() *time.Location {
	defaultLocOnce.Do(func() {
		loc, err := time.LoadLocation("America/Sao_Paulo")
		if err != nil {
			loc = time.FixedZone("BRT", -3*60*60)
		}
		defaultLoc = loc
	})
	return defaultLoc
}
