// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox

import (
	"time"

	"code.hybscloud.com/spin"
)

// spinIterations is the bounded busy-spin budget for a finite wait, per
// spec.md §5: "~1–2 µs worth of iterations, target ~1000 iterations each
// performing two atomic loads and a predicate check." Here each spin
// iteration only checks the deadline; the predicate check lives in the
// caller's retry loop (publishOne/receiveOne) — this just supplies the
// spin-then-park primitive.
const spinIterations = 1000

// cursorSignal is the atomic wait/notify primitive spec.md §5/§9 calls for,
// emulated with an edge-coalesced buffered(1) channel (this host lacks a
// futex-equivalent on a plain atomic). A notify that lands before a
// waiter's select is not lost — it sits in the channel until drained —
// and spurious wakeups are tolerated by design: every waiter re-checks its
// own predicate after waking, exactly as spec.md requires.
//
// Grounded on the readable/writable readiness-channel pattern used for a
// byte-oriented SPSC ring elsewhere in the corpus, layered under the
// teacher's bounded spin.Wait{} for the hot first phase of any finite wait.
type cursorSignal struct {
	ch chan struct{}
}

func newCursorSignal() cursorSignal {
	return cursorSignal{ch: make(chan struct{}, 1)}
}

// notify wakes at most one waiter. Safe to call with no waiter present.
func (s *cursorSignal) notify() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// waitInfinite parks until notified. Used only when the caller's timeout
// is infinite; spec.md §5 specifies no spin phase in that case.
func (s *cursorSignal) waitInfinite() {
	<-s.ch
}

// waitFinite spends a bounded busy-spin budget, then parks on the signal
// against the remaining time until deadline. expired reports whether the
// deadline passed with no notification.
func (s *cursorSignal) waitFinite(deadline time.Time) (expired bool) {
	sw := spin.Wait{}
	for i := 0; i < spinIterations; i++ {
		if !time.Now().Before(deadline) {
			return true
		}
		sw.Once()
	}

	remaining := time.Until(deadline)
	if remaining <= 0 {
		return true
	}
	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-s.ch:
		return false
	case <-timer.C:
		return true
	}
}
