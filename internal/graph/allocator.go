package graph

import "sort"

const defaultAlignment = 8

// freeBlock is a gap in the arena available for reuse, identified by its
// byte offset and length.
type freeBlock struct {
	offset int
	length int
}

// Allocator plans byte offsets for tensors within a single growable arena
// using first-fit with coalescing, deferring the actual backing
// allocation until Realize is called exactly once. All offsets it hands
// out before Realize remain valid afterward; nothing moves.
type Allocator struct {
	free     []freeBlock // kept sorted ascending by offset
	peak     int
	used     int
	realized bool
	runtime  Runtime
}

// NewAllocator returns an empty allocator with no backing buffer yet; rt
// performs the single deferred allocation when Realize runs.
func NewAllocator(rt Runtime) *Allocator {
	return &Allocator{runtime: rt}
}

func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	rem := n % align
	if rem == 0 {
		return n
	}
	return n + (align - rem)
}

// Alloc reserves size bytes within the arena and returns their offset,
// preferring the earliest free block that fits (first-fit) and falling
// back to extending the arena's high-water mark. It may be called any
// number of times before Realize; calling it afterward is a programming
// error.
func (a *Allocator) Alloc(size int) (int, error) {
	assertNotRealized(a.realized, "Alloc")

	size = alignUp(size, defaultAlignment)
	if size == 0 {
		size = defaultAlignment
	}

	for i, blk := range a.free {
		if blk.length >= size {
			offset := blk.offset
			if blk.length == size {
				a.free = append(a.free[:i], a.free[i+1:]...)
			} else {
				a.free[i] = freeBlock{offset: blk.offset + size, length: blk.length - size}
			}
			a.used += size
			return offset, nil
		}
	}

	// Tail-extend: if the highest-offset free block abuts the current
	// high-water mark, consume it first instead of growing past it.
	if n := len(a.free); n > 0 {
		last := a.free[n-1]
		if last.offset+last.length == a.peak {
			offset := last.offset
			a.free = a.free[:n-1]
			extra := size - last.length
			a.peak += extra
			a.used += size
			return offset, nil
		}
	}

	offset := a.peak
	a.peak += size
	a.used += size
	return offset, nil
}

// Free releases a previously allocated [offset, offset+size) range back
// into the arena, coalescing it with adjacent free blocks.
func (a *Allocator) Free(offset, size int) error {
	assertNotRealized(a.realized, "Free")

	size = alignUp(size, defaultAlignment)
	if size == 0 {
		size = defaultAlignment
	}
	a.used -= size
	if a.used < 0 {
		a.used = 0
	}

	idx := sort.Search(len(a.free), func(i int) bool { return a.free[i].offset >= offset })
	a.free = append(a.free, freeBlock{})
	copy(a.free[idx+1:], a.free[idx:])
	a.free[idx] = freeBlock{offset: offset, length: size}

	a.coalesceAt(idx)
	return nil
}

// coalesceAt merges the free block at idx with its immediate neighbors
// when they are byte-adjacent.
func (a *Allocator) coalesceAt(idx int) {
	if idx+1 < len(a.free) {
		cur := a.free[idx]
		next := a.free[idx+1]
		if cur.offset+cur.length == next.offset {
			a.free[idx].length += next.length
			a.free = append(a.free[:idx+1], a.free[idx+2:]...)
		}
	}
	if idx > 0 {
		prev := a.free[idx-1]
		cur := a.free[idx]
		if prev.offset+prev.length == cur.offset {
			a.free[idx-1].length += cur.length
			a.free = append(a.free[:idx], a.free[idx+1:]...)
		}
	}
}

// Realize performs the single backing allocation of peak bytes, via rt,
// and returns the resulting buffer. It may be called only once; every
// offset handed out by Alloc so far remains valid within the returned
// buffer. Further Alloc/Free calls after Realize are a programming error.
func (a *Allocator) Realize() ([]byte, error) {
	assertNotRealized(a.realized, "Realize")
	buf, err := a.runtime.Alloc(a.peak)
	if err != nil {
		return nil, err
	}
	a.realized = true
	return buf, nil
}

// Stats reports current bytes in use and the high-water mark reached so far.
func (a *Allocator) Stats() (used, peak int) {
	return a.used, a.peak
}
