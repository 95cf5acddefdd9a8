package attendance

import "time"

// SetNowFunc pins the package clock and returns a restore func.
func SetNowFunc(fn func() time.Time) (restore func()) {
	orig := nowFunc
	nowFunc = fn
	return func() { nowFunc = orig }
}
