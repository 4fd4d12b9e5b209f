package aru

// sizeOfAtomicWord is verified by a unit test.
const (
	// sizeOfCacheLine is the size of a CPU cache line.
	// 64 bytes is standard for x86-64; 128 bytes covers Apple Silicon and
	// other ARM64 parts with room to spare. We pad to the larger value.
	sizeOfCacheLine = 128

	// sizeOfAtomicWord is the size of the atomic words padded below.
	sizeOfAtomicWord = 8
)
