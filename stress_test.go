// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Concurrent producer/consumer tests excluded from race detection.
//
// Go's race detector tracks explicit synchronization primitives (mutex,
// channels, WaitGroup) but cannot observe the happens-before relationship
// this package's ring establishes through acquire/release cursor stores on
// separate atomix variables. The algorithm is correct; the detector would
// report a false positive here, same rationale as the teacher's own
// lockfree_test.go.

package mailbox_test

import (
	"sync"
	"testing"
	"time"

	"github.com/Rustbeard86/OmniMailbox"
)

// TestConcurrentProducerConsumerNoLoss exercises spec.md §8's no-loss
// property under real goroutine concurrency: every message sent by the
// producer goroutine is received, in order, by the consumer goroutine.
func TestConcurrentProducerConsumerNoLoss(t *testing.T) {
	if mailbox.RaceEnabled {
		t.Skip("skip: ring cursor protocol uses cross-variable memory ordering")
	}

	b := mailbox.GetBroker()
	errCode, producer, consumer := b.RequestChannel("concurrent-no-loss", mailbox.ChannelConfig{Capacity: 64, MaxMessageSize: 64})
	if errCode != mailbox.ErrSuccess {
		t.Fatalf("RequestChannel: got %v, want Success", errCode)
	}
	defer b.RemoveChannel("concurrent-no-loss")

	const total = 10_000

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		defer producer.Close()
		for i := range total {
			payload := []byte{byte(i), byte(i >> 8)}
			for producer.BlockingPush(payload, time.Second) == mailbox.PushTimeout {
			}
		}
	}()

	received := make([]int, 0, total)
	go func() {
		defer wg.Done()
		defer consumer.Close()
		for len(received) < total {
			res, msg := consumer.BlockingPop(time.Second)
			if res != mailbox.PopSuccess {
				t.Errorf("BlockingPop: got %v, want Success", res)
				return
			}
			data := msg.Data()
			received = append(received, int(data[0])|int(data[1])<<8)
		}
	}()

	wg.Wait()

	if len(received) != total {
		t.Fatalf("received count: got %d, want %d", len(received), total)
	}
	for i, v := range received {
		if v != i {
			t.Fatalf("received[%d]: got %d, want %d (order violated)", i, v, i)
		}
	}
}

// TestConcurrentBatchTransferNoLoss exercises the batch path under real
// concurrency: a producer goroutine submitting in batches against a
// consumer goroutine draining in batches must not lose or reorder messages.
func TestConcurrentBatchTransferNoLoss(t *testing.T) {
	if mailbox.RaceEnabled {
		t.Skip("skip: ring cursor protocol uses cross-variable memory ordering")
	}

	b := mailbox.GetBroker()
	errCode, producer, consumer := b.RequestChannel("concurrent-batch", mailbox.ChannelConfig{Capacity: 32, MaxMessageSize: 16})
	if errCode != mailbox.ErrSuccess {
		t.Fatalf("RequestChannel: got %v, want Success", errCode)
	}
	defer b.RemoveChannel("concurrent-batch")

	const batches = 200
	const batchSize = 5

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		defer producer.Close()
		seq := 0
		for range batches {
			batch := make([][]byte, batchSize)
			for j := range batch {
				batch[j] = []byte{byte(seq)}
				seq++
			}
			sent := 0
			for sent < len(batch) {
				sent += producer.BatchPush(batch[sent:])
			}
		}
	}()

	received := make([]int, 0, batches*batchSize)
	go func() {
		defer wg.Done()
		defer consumer.Close()
		for len(received) < batches*batchSize {
			res, msgs := consumer.BatchPop(batchSize, time.Second)
			if res == mailbox.PopTimeout {
				t.Error("BatchPop timed out before collecting every message")
				return
			}
			for _, msg := range msgs {
				received = append(received, int(msg.Data()[0]))
			}
		}
	}()

	wg.Wait()

	if len(received) != batches*batchSize {
		t.Fatalf("received count: got %d, want %d", len(received), batches*batchSize)
	}
	for i, v := range received {
		if v != i%256 {
			t.Fatalf("received[%d]: got %d, want %d (order violated)", i, v, i%256)
		}
	}
}
