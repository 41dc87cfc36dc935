// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox_test

import (
	"testing"

	"github.com/Rustbeard86/OmniMailbox"
)

// TestMessageInvalidatedByNextPop exercises the borrow-with-generation-check
// lifetime rule from message.go: a Message view becomes invalid as soon as
// the same Consumer pops again.
func TestMessageInvalidatedByNextPop(t *testing.T) {
	b := mailbox.GetBroker()
	errCode, producer, consumer := b.RequestChannel("message-lifetime", mailbox.ChannelConfig{Capacity: 8, MaxMessageSize: 64})
	if errCode != mailbox.ErrSuccess {
		t.Fatalf("RequestChannel: got %v, want Success", errCode)
	}
	t.Cleanup(func() {
		producer.Close()
		consumer.Close()
		b.RemoveChannel("message-lifetime")
	})

	producer.TryPush([]byte("first"))
	producer.TryPush([]byte("second"))

	_, first := consumer.TryPop()
	if !first.Valid() {
		t.Fatalf("first.Valid() immediately after pop: got false, want true")
	}

	consumer.TryPop() // second pop — invalidates first

	if first.Valid() {
		t.Errorf("first.Valid() after a second pop: got true, want false")
	}
	if got := first.Data(); got != nil {
		t.Errorf("first.Data() after a second pop: got %v, want nil", got)
	}
}

// TestMessageValidWithNoOwnerIsAlwaysValid covers the zero-value Message
// produced on a failed pop — it carries no owner pointer and must never
// report itself invalidated by unrelated activity.
func TestMessageValidWithNoOwnerIsAlwaysValid(t *testing.T) {
	var m mailbox.Message
	if !m.Valid() {
		t.Errorf("zero-value Message.Valid(): got false, want true")
	}
	if got := m.Data(); got != nil {
		t.Errorf("zero-value Message.Data(): got %v, want nil", got)
	}
}
