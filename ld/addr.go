package ld

import "strconv"

// FileAddr is an absolute byte offset into an LD container. The zero address
// is reserved as a sentinel meaning "not present": optional substructure
// pointers hold it when the substructure is absent, and it terminates the
// channel descriptor list.
type FileAddr uint32

// IsZero reports whether the address is the "not present" sentinel.
func (a FileAddr) IsZero() bool {
	return a == 0
}

// Add derives the address n bytes past a, e.g. the address of a pointer
// field within a record whose base address is a.
func (a FileAddr) Add(n uint32) FileAddr {
	return a + FileAddr(n)
}

// Offset returns the address as an absolute seek offset.
func (a FileAddr) Offset() int64 {
	return int64(a)
}

// String formats the address in hexadecimal.
func (a FileAddr) String() string {
	return "0x" + strconv.FormatUint(uint64(a), 16)
}
