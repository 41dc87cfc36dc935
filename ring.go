// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox

import (
	"errors"
	"fmt"

	"code.hybscloud.com/atomix"
)

// lengthPrefixSize is the size in bytes of a slot's length prefix.
const lengthPrefixSize = 4

// Ring is a fixed-capacity, single-producer single-consumer slot array.
//
// Ring is the lock-free engine shared by a [Producer]/[Consumer] pair. It
// exposes no operations beyond construction and the slot helpers trusted
// handle code uses directly; all send/receive policy lives in the handles.
//
// Based on the teacher's Lamport ring buffer (cached-index SPSC[T]),
// generalized from a typed element array to a length-prefixed byte-slot
// array so a single slot can hold a variably-sized message.
type Ring struct {
	_             pad
	writeCursor   atomix.Uint64 // producer-owned; single writer
	_             pad
	readCursor    atomix.Uint64 // consumer-owned; single writer
	_             pad
	producerAlive atomix.Bool // producer-owned; single writer
	_             pad
	consumerAlive atomix.Bool // consumer-owned; single writer
	_             pad

	capacity       uint64 // power of two, in [8, 524288]
	capMask        uint64 // capacity - 1
	maxMessageSize uint64 // in [64, 16777216]
	slotSize       uint64 // alignUp(4+maxMessageSize, 8)
	buffer         []byte // capacity * slotSize bytes, zeroed

	writeSignal cursorSignal // edge-coalesced notify for write_cursor
	readSignal  cursorSignal // edge-coalesced notify for read_cursor
}

// newRing allocates a Ring for an already-normalized (capacity,
// maxMessageSize) pair. capacity must be a power of two.
func newRing(capacity, maxMessageSize uint64) (*Ring, error) {
	if capacity == 0 || capacity&(capacity-1) != 0 {
		return nil, fmt.Errorf("mailbox: capacity %d is not a power of two", capacity)
	}

	slotSize := alignUp(lengthPrefixSize+maxMessageSize, 8)

	r, err := allocateRing(capacity, maxMessageSize, slotSize)
	if err != nil {
		return nil, err
	}

	r.producerAlive.StoreRelease(true)
	r.consumerAlive.StoreRelease(true)
	return r, nil
}

// allocateRing performs the actual buffer allocation, recovering from a
// panic raised by make (such as a length the runtime cannot allocate) so the
// Broker can report AllocationFailed, per spec.md §4.4 step 5 and §7's
// allocation-failure row. Go's allocator has no fallible-alloc API; running
// out of memory inside the runtime is a fatal error, which recover does not
// catch.
func allocateRing(capacity, maxMessageSize, slotSize uint64) (r *Ring, err error) {
	defer func() {
		if p := recover(); p != nil {
			r, err = nil, errors.New("mailbox: ring allocation failed")
		}
	}()

	buf := make([]byte, capacity*slotSize)
	return &Ring{
		capacity:       capacity,
		capMask:        capacity - 1,
		maxMessageSize: maxMessageSize,
		slotSize:       slotSize,
		buffer:         buf,
		writeSignal:    newCursorSignal(),
		readSignal:     newCursorSignal(),
	}, nil
}

// slot returns the slotSize-byte region for cursor position idx.
func (r *Ring) slot(idx uint64) []byte {
	off := (idx & r.capMask) * r.slotSize
	return r.buffer[off : off+r.slotSize]
}

// Capacity returns the ring's slot count.
func (r *Ring) Capacity() uint64 { return r.capacity }

// MaxMessageSize returns the largest payload a single slot may hold.
func (r *Ring) MaxMessageSize() uint64 { return r.maxMessageSize }
