// Package common holds small utilities shared by the client packages.
package common

// WipeByteArray overwrites the buffer with zeros so sensitive material
// (passwords) does not linger in memory. Safe on nil.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
