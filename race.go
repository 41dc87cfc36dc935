// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package mailbox

// RaceEnabled is true when the race detector is active.
// Used by tests to skip concurrent tests whose memory ordering crosses
// variables the race detector cannot reason about.
const RaceEnabled = true
