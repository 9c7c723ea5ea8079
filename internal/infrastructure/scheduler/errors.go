package scheduler

import "errors"

var (
	// ErrJobNotFound is returned when a job name is not registered
	ErrJobNotFound = errors.New("job not found")

	// ErrDuplicateJob is returned when a job name is registered twice
	ErrDuplicateJob = errors.New("job already registered")

	// ErrInvalidSchedule wraps cron expression parse failures
	ErrInvalidSchedule = errors.New("invalid cron schedule")

	// ErrJobRunning is returned by RunNow while the same job is executing
	ErrJobRunning = errors.New("job is already running")
)
