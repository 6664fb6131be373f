package pool

import "sync"

// Frame slice pool. Frames are uint16 pixel arrays; the parallel pipeline
// draws one frame slice per in-flight frame.
var uint16SlicePool = sync.Pool{
	New: func() any { return &[]uint16{} },
}

// GetUint16Slice retrieves a uint16 slice of exactly size elements from the pool.
//
// The contents are not cleared. The caller must call the returned cleanup
// function once the slice is no longer referenced:
//
//	frame, cleanup := pool.GetUint16Slice(rows * cols)
//	defer cleanup()
func GetUint16Slice(size int) ([]uint16, func()) {
	ptr, _ := uint16SlicePool.Get().(*[]uint16)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]uint16, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { uint16SlicePool.Put(ptr) }
}
