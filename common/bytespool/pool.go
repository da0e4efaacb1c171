// Package bytespool recycles connection buffers in power-of-two size
// classes.
package bytespool

import "sync"

// Size classes run from MinSize to MaxSize, doubling each step.
const (
	MinSize = 512
	MaxSize = 64 * 1024

	numClasses = 8
)

var classes [numClasses]sync.Pool

func init() {
	for i := range classes {
		size := MinSize << i
		classes[i].New = func() any {
			b := make([]byte, size)
			return &b
		}
	}
}

// class returns the index of the smallest class holding size bytes, or -1
// when size is larger than MaxSize.
func class(size int) int {
	for i := range numClasses {
		if size <= MinSize<<i {
			return i
		}
	}
	return -1
}

// Alloc returns a slice of length size. Sizes above MaxSize are allocated
// directly and never pooled.
func Alloc(size int) []byte {
	if size < 0 {
		size = 0
	}
	idx := class(size)
	if idx < 0 {
		return make([]byte, size)
	}
	b := *classes[idx].Get().(*[]byte)
	return b[:size]
}

// Free returns a slice obtained from Alloc. Slices whose capacity is not
// exactly a class size are dropped.
func Free(b []byte) {
	c := cap(b)
	idx := class(c)
	if idx < 0 || c != MinSize<<idx {
		return
	}
	b = b[:c]
	classes[idx].Put(&b)
}
