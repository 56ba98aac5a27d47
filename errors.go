package awful

import (
	"errors"

	"github.com/imagvfx/awful/lib/container"
)

var (
	// ErrNoScheduler is returned when a call is made without a scheduler.
	ErrNoScheduler = errors.New("no scheduler defined")

	// ErrClosed is returned when a call is made to a closed scheduler.
	ErrClosed = errors.New("scheduler closed")

	// ErrInvalidResource is returned when a job asks for processors
	// the scheduler can never give.
	ErrInvalidResource = errors.New("invalid resource request")

	// ErrInvalidJob is returned when a job cannot be run at all.
	ErrInvalidJob = errors.New("invalid job")

	// ErrInvalidTransition is returned when a job's status would go backward.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotFound is returned when a job doesn't exist in the scheduler.
	ErrNotFound = container.ErrNotFound
)
