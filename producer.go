// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox

import (
	"encoding/binary"
	"sync"
	"time"

	"code.hybscloud.com/atomix"
)

// Forever disables the deadline check in [Producer.BlockingPush] and
// [Consumer.BlockingPop]/[Consumer.BatchPop].
const Forever time.Duration = -1

// maxSizeGuard is the overflow guard from spec.md §4.2: a payload size must
// never come within 12 bytes of the uint64 range's top, which in practice
// this module never approaches given MaxMessageSize's 16MiB ceiling — the
// check exists for fidelity to the contract, not because it can fire here.
const maxSizeGuard = ^uint64(0) - 12

func validMessageSize(n, max uint64) bool {
	return n > 0 && n <= max && n <= maxSizeGuard
}

// ReservationView is a writable, zero-copy view into one unpublished ring
// slot, returned by [Producer.Reserve]. The caller writes at most
// len(Bytes()) bytes into it, then calls [Producer.Commit] or
// [Producer.Rollback].
type ReservationView struct {
	buf []byte
}

// Bytes returns the writable payload region. Its length equals the
// channel's MaxMessageSize.
func (v ReservationView) Bytes() []byte { return v.buf }

// ProducerStats holds relaxed, observational send counters. They are not
// synchronization points — only cumulative totals for diagnostics.
type ProducerStats struct {
	MessagesSent uint64
	BytesSent    uint64
	FailedPushes uint64
}

// Producer is the send-side handle of a channel.
//
// A Producer is single-owner: exactly one goroutine must use it at a time.
// Nothing enforces this: Go has no move semantics to forbid aliasing at
// compile time, and the handle carries no closed flag, so operations called
// after [Producer.Close] are not rejected and still act on the ring.
//
// Grounded on the teacher's SPSC[T].Enqueue claim-and-publish shape,
// generalized with a reserve/commit split, byte-length framing, and
// consumer-liveness tracking the teacher's same-process generic queue has
// no analogue for.
type Producer struct {
	handle *ringHandle
	ring   *Ring

	reserving  bool
	reservedAt uint64

	messagesSent atomix.Uint64
	bytesSent    atomix.Uint64
	failedPushes atomix.Uint64

	closeOnce sync.Once
}

// IsConnected reports whether the peer Consumer is still alive.
func (p *Producer) IsConnected() bool {
	return p.ring.consumerAlive.LoadRelaxed()
}

// Capacity returns the channel's slot count.
func (p *Producer) Capacity() uint64 { return p.ring.capacity }

// MaxMessageSize returns the largest payload a single message may carry.
func (p *Producer) MaxMessageSize() uint64 { return p.ring.maxMessageSize }

// AvailableSlots returns an approximate count of free slots.
func (p *Producer) AvailableSlots() uint64 {
	w := p.ring.writeCursor.LoadRelaxed()
	r := p.ring.readCursor.LoadAcquire()
	return p.ring.capacity - 1 - (w - r)
}

// GetConfig returns the channel's normalized configuration.
func (p *Producer) GetConfig() ChannelConfig {
	return ChannelConfig{Capacity: p.ring.capacity, MaxMessageSize: p.ring.maxMessageSize}
}

// GetStats returns a snapshot of this producer's send counters.
func (p *Producer) GetStats() ProducerStats {
	return ProducerStats{
		MessagesSent: p.messagesSent.LoadRelaxed(),
		BytesSent:    p.bytesSent.LoadRelaxed(),
		FailedPushes: p.failedPushes.LoadRelaxed(),
	}
}

// Reserve claims one unpublished slot for zero-copy writing. Preconditions
// are checked in spec.md §4.2's order; any failure returns (zero value,
// false) and leaves ring state unchanged.
func (p *Producer) Reserve(bytes uint64) (ReservationView, bool) {
	if bytes == 0 {
		return ReservationView{}, false
	}
	if bytes > p.ring.maxMessageSize {
		return ReservationView{}, false
	}
	if bytes > maxSizeGuard {
		return ReservationView{}, false
	}
	if p.reserving {
		return ReservationView{}, false
	}
	if !p.ring.consumerAlive.LoadRelaxed() {
		return ReservationView{}, false
	}

	w := p.ring.writeCursor.LoadRelaxed()
	r := p.ring.readCursor.LoadAcquire()
	if w-r >= p.ring.capacity-1 {
		return ReservationView{}, false
	}

	p.reserving = true
	p.reservedAt = w

	slot := p.ring.slot(w)
	payload := slot[lengthPrefixSize : lengthPrefixSize+p.ring.maxMessageSize]
	return ReservationView{buf: payload}, true
}

// Commit publishes the active reservation with actualBytes of payload
// already written into the view returned by Reserve. Returns false,
// leaving ring state unchanged, if there is no active reservation or
// actualBytes is out of range.
func (p *Producer) Commit(actualBytes uint64) bool {
	if !p.reserving {
		return false
	}
	if actualBytes == 0 || actualBytes > p.ring.maxMessageSize {
		return false
	}

	w := p.reservedAt
	slot := p.ring.slot(w)
	binary.LittleEndian.PutUint32(slot[:lengthPrefixSize], uint32(actualBytes))

	p.ring.writeCursor.StoreRelease(w + 1)
	p.ring.writeSignal.notify()

	p.messagesSent.AddAcqRel(1)
	p.bytesSent.AddAcqRel(actualBytes)

	p.reserving = false
	return true
}

// Rollback discards the active reservation without advancing the ring.
// Idempotent when no reservation is active.
func (p *Producer) Rollback() {
	p.reserving = false
}

// publishOne performs validation, consumer-liveness, and queue-full checks,
// then writes and publishes data as one non-blocking step. It does not
// touch failedPushes — callers attribute failures at their own level so a
// retrying BlockingPush doesn't inflate the counter per spin iteration.
func (p *Producer) publishOne(data []byte) PushResult {
	n := uint64(len(data))
	if !validMessageSize(n, p.ring.maxMessageSize) {
		return PushInvalidSize
	}
	if !p.ring.consumerAlive.LoadRelaxed() {
		return PushChannelClosed
	}

	w := p.ring.writeCursor.LoadRelaxed()
	r := p.ring.readCursor.LoadAcquire()
	if w-r >= p.ring.capacity-1 {
		return PushQueueFull
	}

	slot := p.ring.slot(w)
	binary.LittleEndian.PutUint32(slot[:lengthPrefixSize], uint32(n))
	copy(slot[lengthPrefixSize:], data)

	p.ring.writeCursor.StoreRelease(w + 1)
	p.ring.writeSignal.notify()

	p.messagesSent.AddAcqRel(1)
	p.bytesSent.AddAcqRel(n)
	return PushSuccess
}

// TryPush sends data without blocking.
func (p *Producer) TryPush(data []byte) PushResult {
	res := p.publishOne(data)
	if res != PushSuccess {
		p.failedPushes.AddAcqRel(1)
	}
	return res
}

// BlockingPush sends data, blocking up to timeout (or indefinitely if
// timeout is [Forever]) while the ring is full. It uses the hybrid
// spin-then-park wait from spec.md §5 against a steady-clock deadline.
func (p *Producer) BlockingPush(data []byte, timeout time.Duration) PushResult {
	n := uint64(len(data))
	if !validMessageSize(n, p.ring.maxMessageSize) {
		p.failedPushes.AddAcqRel(1)
		return PushInvalidSize
	}
	if !p.ring.consumerAlive.LoadRelaxed() {
		p.failedPushes.AddAcqRel(1)
		return PushChannelClosed
	}

	hasDeadline := timeout != Forever
	var deadline time.Time
	if hasDeadline {
		deadline = time.Now().Add(timeout)
	}

	for {
		res := p.publishOne(data)
		if res != PushQueueFull {
			if res != PushSuccess {
				p.failedPushes.AddAcqRel(1)
			}
			return res
		}

		if !hasDeadline {
			p.ring.readSignal.waitInfinite()
			continue
		}
		if expired := p.ring.readSignal.waitFinite(deadline); expired {
			p.failedPushes.AddAcqRel(1)
			return PushTimeout
		}
	}
}

// BatchPush submits messages, amortizing the consumer-liveness check and
// the wake notification across the whole batch. It fails fast: if any
// message is invalid, nothing is published and it returns 0. Otherwise it
// publishes as many messages as fit, stopping at the first full slot, and
// returns the count actually published.
func (p *Producer) BatchPush(messages [][]byte) int {
	for _, m := range messages {
		if !validMessageSize(uint64(len(m)), p.ring.maxMessageSize) {
			return 0
		}
	}
	if len(messages) == 0 {
		return 0
	}
	if !p.ring.consumerAlive.LoadRelaxed() {
		return 0
	}

	w := p.ring.writeCursor.LoadRelaxed()
	r := p.ring.readCursor.LoadAcquire()

	published := 0
	var bytesWritten uint64
	for _, m := range messages {
		if w-r >= p.ring.capacity-1 {
			break
		}
		slot := p.ring.slot(w)
		binary.LittleEndian.PutUint32(slot[:lengthPrefixSize], uint32(len(m)))
		copy(slot[lengthPrefixSize:], m)
		w++
		published++
		bytesWritten += uint64(len(m))
	}

	if published > 0 {
		p.ring.writeCursor.StoreRelease(w)
		p.ring.writeSignal.notify()
		p.messagesSent.AddAcqRel(uint64(published))
		p.bytesSent.AddAcqRel(bytesWritten)
	}
	return published
}

// Close marks the producer dead, notifying any blocked Consumer. Safe to
// call multiple times; only the first call has an effect. This is the
// explicit drop point spec.md's destructor-based signalling becomes in a
// language without deterministic destruction — callers must call Close
// (directly or via defer) when done with the handle.
func (p *Producer) Close() {
	p.closeOnce.Do(func() {
		p.ring.writeCursor.AddAcqRel(0) // full-barrier fence, per spec.md §4.2's drop contract
		p.ring.producerAlive.StoreRelease(false)
		p.ring.writeSignal.notify()
		p.handle.release()
	})
}
