// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mailbox provides named, in-process, single-producer
// single-consumer byte-message channels.
//
// A channel is a fixed-capacity ring of length-prefixed byte slots, looked
// up by name through the process-global [Broker]. Each request for a
// channel returns a [Producer]/[Consumer] handle pair bound to the same
// underlying ring; the pair is single-owner on each side — exactly one
// goroutine sends, exactly one goroutine receives.
//
// # Quick Start
//
//	b := mailbox.GetBroker()
//	cfg := mailbox.ChannelConfig{Capacity: 1024, MaxMessageSize: 4096}
//	errCode, producer, consumer := b.RequestChannel("events", cfg)
//	if errCode != mailbox.ErrSuccess {
//	    // handle ErrNameExists / ErrInvalidConfig / ErrAllocationFailed
//	}
//	defer producer.Close()
//	defer consumer.Close()
//
// # Basic Usage
//
// Non-blocking send and receive:
//
//	res := producer.TryPush([]byte("hello"))
//	if res == mailbox.PushQueueFull {
//	    // backpressure — retry later
//	}
//
//	res, msg := consumer.TryPop()
//	if res == mailbox.PopSuccess {
//	    process(msg.Data())
//	}
//
// Blocking send and receive, with a deadline or [Forever]:
//
//	res := producer.BlockingPush(payload, 5*time.Second)
//	res, msg := consumer.BlockingPop(mailbox.Forever)
//
// # Common Patterns
//
// Pipeline stage:
//
//	go func() { // producer goroutine
//	    for data := range input {
//	        for producer.BlockingPush(data, time.Second) == mailbox.PushTimeout {
//	        }
//	    }
//	    producer.Close()
//	}()
//
//	go func() { // consumer goroutine
//	    for {
//	        res, msg := consumer.BlockingPop(mailbox.Forever)
//	        if res == mailbox.PopChannelClosed {
//	            return
//	        }
//	        if res == mailbox.PopSuccess {
//	            process(msg.Data())
//	        }
//	    }
//	}()
//
// Zero-copy send, avoiding an intermediate allocation for the payload:
//
//	view, ok := producer.Reserve(256)
//	if ok {
//	    n := copy(view.Bytes(), encodedPayload)
//	    producer.Commit(uint64(n))
//	}
//
// Batch amortization, coalescing the wake notification across many
// messages:
//
//	sent := producer.BatchPush(pending)
//	res, msgs := consumer.BatchPop(64, 10*time.Millisecond)
//
// # Message Lifetime
//
// [Message] is a zero-copy view into the ring's backing buffer, not an
// owned copy. It stays valid only until the next pop on the same
// [Consumer] — call [Message.Data] immediately, or copy it out, before
// popping again. [Message.Valid] reports whether a view has already been
// superseded.
//
// # Error Handling
//
// [Producer] and [Consumer] operations return typed result enums
// ([PushResult], [PopResult]) rather than error values — these are hot-path
// signals, not failures, and the corpus convention (see
// [code.hybscloud.com/iox]'s ErrWouldBlock) of treating "would block" as a
// non-failure condition extends naturally to a named enum here.
// [Broker.RequestChannel] returns a [ChannelError] for the slower,
// cold-path registry operations instead.
//
//	res := producer.TryPush(data)
//	switch res {
//	case mailbox.PushSuccess:
//	case mailbox.PushQueueFull:
//	    // backpressure
//	case mailbox.PushChannelClosed:
//	    // peer gone
//	case mailbox.PushInvalidSize:
//	    // payload too large or empty
//	}
//
// [IsWouldBlock], [IsSemantic], and [IsNonFailure] are exported for callers
// that bridge into error-based code elsewhere in a larger system; they
// delegate to the same [code.hybscloud.com/iox] classifiers this package's
// teacher lineage uses.
//
// # Capacity and Sizing
//
// Capacity rounds up to the next power of two and clamps to [8, 524288].
// MaxMessageSize clamps to [64, 16777216] without rounding:
//
//	mailbox.ChannelConfig{Capacity: 1000}   // actual capacity: 1024
//	mailbox.ChannelConfig{Capacity: 3}      // actual capacity: 8 (minimum)
//
// Per-channel message and byte counts are available via
// [Producer.GetStats] and [Consumer.GetStats]; [Broker.Stats] reports only
// channel lifecycle totals, not per-channel throughput, for the same reason
// the lock-free queues this package descends from omit Length: an accurate
// live count would require expensive cross-core synchronization that no
// caller in this domain actually needs.
//
// # Thread Safety
//
// Exactly one goroutine may use a given [Producer]; exactly one goroutine
// may use a given [Consumer]. The [Broker] itself is safe for concurrent
// use by any number of goroutines — RequestChannel, HasChannel,
// RemoveChannel, and Stats all take the registry lock internally.
//
// Violating the single-owner constraint on a Producer or Consumer causes
// undefined behavior: the ring's cursors are updated with relaxed loads and
// release stores that assume a single writer on each side.
//
// # Race Detection
//
// Go's race detector cannot observe the happens-before relationship
// established by the ring's acquire/release cursor protocol — it tracks
// explicit synchronization primitives (mutex, channel, WaitGroup), not
// memory-ordering-tagged atomics on separate variables. Tests that stress
// this protocol directly are skipped at run time when [RaceEnabled] is
// true.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/atomix] for atomics with explicit
// memory ordering, [code.hybscloud.com/spin] for the bounded busy-spin
// phase of a blocking wait, and [code.hybscloud.com/iox] for semantic error
// classification.
package mailbox
