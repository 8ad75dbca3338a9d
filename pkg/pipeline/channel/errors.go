package channel

import "github.com/pkg/errors"

var (
	// ErrWriteAfterClose is returned when a Writer pushes after it closed the channel.
	ErrWriteAfterClose = errors.New("push on closed channel")
	// ErrAlreadyClosed is returned when a Writer closes the channel twice.
	ErrAlreadyClosed = errors.New("channel already closed")
	// ErrReadAfterClose is returned when a Reader reads again after it already observed the closure.
	ErrReadAfterClose = errors.New("read after closure was observed")
	// ErrSubscribed is returned when pulling from a Reader that is consumed by a subscription.
	ErrSubscribed = errors.New("reader is consumed by a subscription")
	// ErrAlreadySubscribed is returned when subscribing twice to the same Reader.
	ErrAlreadySubscribed = errors.New("reader already has a subscription")
	// ErrShutdown is returned by any blocked or later operation once the channel has been shut down.
	ErrShutdown = errors.New("channel shut down")
)

// IsProtocolViolation reports whether err was caused by a misuse of a channel endpoint.
func IsProtocolViolation(err error) bool {
	return errors.Is(err, ErrWriteAfterClose) ||
		errors.Is(err, ErrAlreadyClosed) ||
		errors.Is(err, ErrReadAfterClose) ||
		errors.Is(err, ErrSubscribed) ||
		errors.Is(err, ErrAlreadySubscribed)
}
