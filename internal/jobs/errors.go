package jobs

import "errors"

var (
	// ErrBatchFailed reports that every league in a fan-out batch failed;
	// partial failures are summarized instead.
	ErrBatchFailed = errors.New("jobs: every league in the batch failed")

	// ErrLeagueNotFound reports an advice request for a league outside the
	// user's scope.
	ErrLeagueNotFound = errors.New("jobs: league not found")
)
