// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox

import "code.hybscloud.com/iox"

// ErrWouldBlock indicates a non-blocking operation could not proceed
// immediately (queue full for a producer, queue empty for a consumer).
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency with
// callers that already branch on iox's semantic error classifiers.
var ErrWouldBlock = iox.ErrWouldBlock

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal, not a failure.
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}

// PushResult is the outcome of a producer send operation.
type PushResult int

const (
	// PushSuccess indicates the message was published.
	PushSuccess PushResult = iota
	// PushTimeout indicates a blocking push's deadline expired.
	PushTimeout
	// PushChannelClosed indicates the consumer has disconnected.
	PushChannelClosed
	// PushInvalidSize indicates the payload violates size constraints.
	PushInvalidSize
	// PushQueueFull indicates the ring had no free slot.
	PushQueueFull
)

func (r PushResult) String() string {
	switch r {
	case PushSuccess:
		return "Success"
	case PushTimeout:
		return "Timeout"
	case PushChannelClosed:
		return "ChannelClosed"
	case PushInvalidSize:
		return "InvalidSize"
	case PushQueueFull:
		return "QueueFull"
	default:
		return "Unknown"
	}
}

// PopResult is the outcome of a consumer receive operation.
type PopResult int

const (
	// PopSuccess indicates a message was returned.
	PopSuccess PopResult = iota
	// PopTimeout indicates a blocking pop's deadline expired.
	PopTimeout
	// PopChannelClosed indicates the producer has disconnected and no
	// further messages remain.
	PopChannelClosed
	// PopEmpty indicates the ring had no message available.
	PopEmpty
)

func (r PopResult) String() string {
	switch r {
	case PopSuccess:
		return "Success"
	case PopTimeout:
		return "Timeout"
	case PopChannelClosed:
		return "ChannelClosed"
	case PopEmpty:
		return "Empty"
	default:
		return "Unknown"
	}
}

// ChannelError is the outcome of a Broker channel-management operation.
type ChannelError int

const (
	// ErrSuccess indicates the operation completed.
	ErrSuccess ChannelError = iota
	// ErrNameExists indicates the requested channel name is already registered.
	ErrNameExists
	// ErrInvalidConfig indicates normalization could not produce a valid config.
	ErrInvalidConfig
	// ErrAllocationFailed indicates the ring's backing buffer could not be allocated.
	ErrAllocationFailed
)

func (e ChannelError) String() string {
	switch e {
	case ErrSuccess:
		return "Success"
	case ErrNameExists:
		return "NameExists"
	case ErrInvalidConfig:
		return "InvalidConfig"
	case ErrAllocationFailed:
		return "AllocationFailed"
	default:
		return "Unknown"
	}
}
