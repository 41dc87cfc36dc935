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

// ConsumerStats holds relaxed, observational receive counters.
type ConsumerStats struct {
	MessagesReceived uint64
	BytesReceived    uint64
	FailedPops       uint64
}

// Consumer is the receive-side handle of a channel.
//
// Single-owner like [Producer]; see its doc comment for the ownership
// contract. Symmetric grounding: the teacher's SPSC[T].Dequeue claim shape,
// generalized to byte-framed slots and producer-liveness tracking.
type Consumer struct {
	handle *ringHandle
	ring   *Ring

	generation uint64 // bumped on every pop; invalidates prior Message views

	messagesReceived atomix.Uint64
	bytesReceived    atomix.Uint64
	failedPops       atomix.Uint64

	closeOnce sync.Once
}

// IsConnected reports whether the peer Producer is still alive.
func (c *Consumer) IsConnected() bool {
	return c.ring.producerAlive.LoadRelaxed()
}

// Capacity returns the channel's slot count.
func (c *Consumer) Capacity() uint64 { return c.ring.capacity }

// MaxMessageSize returns the largest payload a single message may carry.
func (c *Consumer) MaxMessageSize() uint64 { return c.ring.maxMessageSize }

// AvailableMessages returns an approximate count of messages ready to pop.
func (c *Consumer) AvailableMessages() uint64 {
	w := c.ring.writeCursor.LoadAcquire()
	r := c.ring.readCursor.LoadRelaxed()
	return w - r
}

// GetConfig returns the channel's normalized configuration.
func (c *Consumer) GetConfig() ChannelConfig {
	return ChannelConfig{Capacity: c.ring.capacity, MaxMessageSize: c.ring.maxMessageSize}
}

// GetStats returns a snapshot of this consumer's receive counters.
func (c *Consumer) GetStats() ConsumerStats {
	return ConsumerStats{
		MessagesReceived: c.messagesReceived.LoadRelaxed(),
		BytesReceived:    c.bytesReceived.LoadRelaxed(),
		FailedPops:       c.failedPops.LoadRelaxed(),
	}
}

// receiveOne performs the non-blocking receive step: empty/closed check,
// slot read, cursor advance, and notify. It does not touch failedPops.
func (c *Consumer) receiveOne() (PopResult, Message) {
	r := c.ring.readCursor.LoadRelaxed()
	w := c.ring.writeCursor.LoadAcquire()

	if r == w {
		if !c.ring.producerAlive.LoadRelaxed() {
			return PopChannelClosed, Message{}
		}
		return PopEmpty, Message{}
	}

	slot := c.ring.slot(r)
	n := binary.LittleEndian.Uint32(slot[:lengthPrefixSize])
	data := slot[lengthPrefixSize : lengthPrefixSize+uint64(n)]

	c.ring.readCursor.StoreRelease(r + 1)
	c.ring.readSignal.notify()

	c.generation++
	c.messagesReceived.AddAcqRel(1)
	c.bytesReceived.AddAcqRel(uint64(n))

	return PopSuccess, Message{data: data, generation: c.generation, owner: &c.generation}
}

// TryPop receives one message without blocking.
func (c *Consumer) TryPop() (PopResult, Message) {
	res, msg := c.receiveOne()
	if res != PopSuccess && res != PopEmpty {
		c.failedPops.AddAcqRel(1)
	}
	return res, msg
}

// BlockingPop receives one message, blocking up to timeout (or
// indefinitely if timeout is [Forever]) while the ring is empty.
func (c *Consumer) BlockingPop(timeout time.Duration) (PopResult, Message) {
	if res, msg := c.receiveOne(); res == PopSuccess || res == PopChannelClosed {
		if res != PopSuccess {
			c.failedPops.AddAcqRel(1)
		}
		return res, msg
	}

	hasDeadline := timeout != Forever
	var deadline time.Time
	if hasDeadline {
		deadline = time.Now().Add(timeout)
	}

	for {
		if !hasDeadline {
			c.ring.writeSignal.waitInfinite()
		} else if expired := c.ring.writeSignal.waitFinite(deadline); expired {
			c.failedPops.AddAcqRel(1)
			return PopTimeout, Message{}
		}

		res, msg := c.receiveOne()
		if res == PopSuccess || res == PopChannelClosed {
			if res != PopSuccess {
				c.failedPops.AddAcqRel(1)
			}
			return res, msg
		}
		// Empty again (spurious wake or producer still catching up) — retry.
	}
}

// BatchPop drains up to maxCount messages. If timeout is positive or
// [Forever], it first performs a single [Consumer.BlockingPop] for the
// initial message; on Timeout or ChannelClosed it returns immediately with
// whatever was collected. It then drains non-blockingly up to maxCount,
// issuing exactly one notification on read_cursor if anything was popped.
// A timeout of exactly zero skips the blocking phase and only drains what
// is already available.
func (c *Consumer) BatchPop(maxCount int, timeout time.Duration) (PopResult, []Message) {
	if maxCount == 0 {
		return PopEmpty, nil
	}

	out := make([]Message, 0, maxCount)
	batchGen := c.generation

	if timeout > 0 || timeout == Forever {
		res, msg := c.BlockingPop(timeout)
		switch res {
		case PopTimeout, PopChannelClosed:
			return res, out
		case PopSuccess:
			// receiveOne already bumped c.generation for this message; every
			// further message drained below must share it, not invalidate it.
			batchGen = c.generation
			out = append(out, msg)
		}
	}

	for len(out) < maxCount {
		r := c.ring.readCursor.LoadRelaxed()
		w := c.ring.writeCursor.LoadAcquire()
		if r == w {
			break
		}

		slot := c.ring.slot(r)
		n := binary.LittleEndian.Uint32(slot[:lengthPrefixSize])
		data := slot[lengthPrefixSize : lengthPrefixSize+uint64(n)]

		c.ring.readCursor.StoreRelease(r + 1)
		if len(out) == 0 {
			// First message of a purely non-blocking batch: establish the
			// shared generation every message in this call will carry.
			c.generation++
			batchGen = c.generation
		}
		c.messagesReceived.AddAcqRel(1)
		c.bytesReceived.AddAcqRel(uint64(n))

		out = append(out, Message{data: data, generation: batchGen, owner: &c.generation})
	}

	if len(out) > 0 {
		c.ring.readSignal.notify()
		return PopSuccess, out
	}
	if !c.ring.producerAlive.LoadRelaxed() {
		return PopChannelClosed, out
	}
	return PopEmpty, out
}

// Close marks the consumer dead, notifying any blocked Producer. Safe to
// call multiple times; only the first call has an effect.
func (c *Consumer) Close() {
	c.closeOnce.Do(func() {
		c.ring.readCursor.AddAcqRel(0) // full-barrier fence, per spec.md §4.3's drop contract
		c.ring.consumerAlive.StoreRelease(false)
		c.ring.readSignal.notify()
		c.generation++ // invalidates outstanding Message views
		c.handle.release()
	})
}
