// Copyright 2021 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package swarm

import "crypto/rand"

// RandomAddress returns an address read from a cryptographically secure
// random source.
func RandomAddress() (Address, error) {
	b := make([]byte, HashSize)
	if _, err := rand.Read(b); err != nil {
		return ZeroAddress, err
	}
	return Address{b: b}, nil
}
