package smoketest

import "errors"

var (
	ErrSmokeTestFailed = errors.New("smoke test failed")
)
