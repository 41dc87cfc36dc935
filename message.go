// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox

// Message is a zero-copy view of one popped payload. It borrows bytes
// directly from the ring's backing buffer.
//
// Its validity ends at the next [Consumer.TryPop]/[Consumer.BatchPop] call
// on the same Consumer, or when the Consumer is closed. Unlike the
// teacher's QueuePtr, which transfers ownership of a pointer to the
// consumer permanently, a Message is a borrow the consumer must stop using
// before advancing past its slot — so validity is checked dynamically via
// a generation counter rather than assumed.
type Message struct {
	data       []byte
	generation uint64
	owner      *uint64
}

// Data returns the message's payload bytes, or nil if the consumer has
// since popped again (so this view's slot may have been overwritten) or
// been closed.
func (m Message) Data() []byte {
	if m.owner != nil && *m.owner != m.generation {
		return nil
	}
	return m.data
}

// Valid reports whether the consumer has neither popped again nor been
// closed since this view was returned.
func (m Message) Valid() bool {
	return m.owner == nil || *m.owner == m.generation
}
