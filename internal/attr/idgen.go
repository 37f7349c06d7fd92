// Copyright 2022 The Mellium Contributors.
// Use of this source code is governed by the BSD 2-clause
// license that can be found in the LICENSE file.

package attr

import (
	"crypto/rand"
	"encoding/hex"
	"io"
)

// IDLen is the length of generated stanza IDs.
const IDLen = 16

// RandomID returns a new random hex encoded identifier of length IDLen.
// It panics if the system source of randomness fails.
func RandomID() string {
	return readID(rand.Reader)
}

func readID(r io.Reader) string {
	var b [IDLen / 2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		panic("attr: could not read random ID: " + err.Error())
	}
	return hex.EncodeToString(b[:])
}
