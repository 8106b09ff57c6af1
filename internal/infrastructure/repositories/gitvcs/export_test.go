package gitvcs

import (
	"testing"
	"time"
)

// FreezeClock makes every commit signature use the given time until the test ends.
func FreezeClock(t *testing.T, at time.Time) {
	t.Helper()
	previous := nowFunc
	nowFunc = func() time.Time { return at }
	t.Cleanup(func() { nowFunc = previous })
}
