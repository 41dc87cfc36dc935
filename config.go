// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox

const (
	minCapacity = 8
	maxCapacity = 524288

	minMaxMessageSize = 64
	maxMaxMessageSize = 16777216

	defaultCapacity       = 1024
	defaultMaxMessageSize = 4096
)

// ChannelConfig configures a channel created by [Broker.RequestChannel].
//
// A zero Capacity or MaxMessageSize is first replaced by its default (1024
// or 4096). Capacity is then clamped to [8, 524288] and rounded up to the
// next power of 2. MaxMessageSize is clamped to [64, 16777216] and is not
// rounded.
// Normalization always precedes validation, and clamping always precedes
// rounding — rounding an unclamped value could overflow past the clamp's
// own upper bound.
type ChannelConfig struct {
	Capacity       uint64
	MaxMessageSize uint64
}

// DefaultChannelConfig returns the default configuration: capacity 1024,
// max message size 4096.
func DefaultChannelConfig() ChannelConfig {
	return ChannelConfig{
		Capacity:       defaultCapacity,
		MaxMessageSize: defaultMaxMessageSize,
	}
}

// normalize clamps and rounds cfg per the table above, then validates the
// result. It returns ErrInvalidConfig if no valid configuration could be
// produced.
func (cfg ChannelConfig) normalize() (ChannelConfig, ChannelError) {
	capacity := cfg.Capacity
	if capacity == 0 {
		capacity = defaultCapacity
	}
	if capacity < minCapacity {
		capacity = minCapacity
	}
	if capacity > maxCapacity {
		capacity = maxCapacity
	}
	capacity = roundToPow2(capacity)

	maxMsg := cfg.MaxMessageSize
	if maxMsg == 0 {
		maxMsg = defaultMaxMessageSize
	}
	if maxMsg < minMaxMessageSize {
		maxMsg = minMaxMessageSize
	}
	if maxMsg > maxMaxMessageSize {
		maxMsg = maxMaxMessageSize
	}

	out := ChannelConfig{Capacity: capacity, MaxMessageSize: maxMsg}
	if out.Capacity < minCapacity || out.Capacity > maxCapacity || out.Capacity&(out.Capacity-1) != 0 {
		return ChannelConfig{}, ErrInvalidConfig
	}
	return out, ErrSuccess
}
