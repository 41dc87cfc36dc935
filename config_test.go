// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox_test

import (
	"testing"

	"github.com/Rustbeard86/OmniMailbox"
)

func TestChannelConfigNormalizeRoundsCapacity(t *testing.T) {
	tests := []struct {
		name       string
		in         mailbox.ChannelConfig
		wantCap    uint64
		wantMaxMsg uint64
	}{
		{"zero uses defaults", mailbox.ChannelConfig{}, 1024, 4096},
		{"rounds up to next pow2", mailbox.ChannelConfig{Capacity: 1000, MaxMessageSize: 256}, 1024, 256},
		{"already pow2 stays", mailbox.ChannelConfig{Capacity: 1024, MaxMessageSize: 64}, 1024, 64},
		{"below minimum clamps up", mailbox.ChannelConfig{Capacity: 3, MaxMessageSize: 1}, 8, 64},
		{"above maximum clamps down", mailbox.ChannelConfig{Capacity: 10_000_000, MaxMessageSize: 1 << 30}, 524288, 16777216},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mailbox.GetBroker()
			name := "config-test-" + tt.name
			errCode, producer, consumer := b.RequestChannel(name, tt.in)
			if errCode != mailbox.ErrSuccess {
				t.Fatalf("RequestChannel: got %v, want Success", errCode)
			}
			defer b.RemoveChannel(name)
			defer producer.Close()
			defer consumer.Close()

			if got := producer.Capacity(); got != tt.wantCap {
				t.Errorf("Capacity: got %d, want %d", got, tt.wantCap)
			}
			if got := producer.MaxMessageSize(); got != tt.wantMaxMsg {
				t.Errorf("MaxMessageSize: got %d, want %d", got, tt.wantMaxMsg)
			}
		})
	}
}

func TestDefaultChannelConfig(t *testing.T) {
	cfg := mailbox.DefaultChannelConfig()
	if cfg.Capacity != 1024 {
		t.Errorf("Capacity: got %d, want 1024", cfg.Capacity)
	}
	if cfg.MaxMessageSize != 4096 {
		t.Errorf("MaxMessageSize: got %d, want 4096", cfg.MaxMessageSize)
	}
}
