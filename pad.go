// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mailbox

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// roundToPow2 rounds n up to the next power of 2; any n below 2 yields 2.
func roundToPow2(n uint64) uint64 {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// alignUp rounds n up to the next multiple of align. align must be a power of 2.
func alignUp(n, align uint64) uint64 {
	return (n + align - 1) &^ (align - 1)
}
