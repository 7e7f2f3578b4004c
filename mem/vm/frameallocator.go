package vm

import "fmt"

// A FrameAllocator tracks which physical frames are free. The reserved frame
// is never free.
type FrameAllocator struct {
	free    []bool
	numFree int
}

// NewFrameAllocator creates an allocator where every frame except the
// reserved one is free.
func NewFrameAllocator(numFrames int) *FrameAllocator {
	a := &FrameAllocator{
		free: make([]bool, numFrames),
	}

	for i := range a.free {
		if i == ReservedFrame {
			continue
		}

		a.free[i] = true
		a.numFree++
	}

	return a
}

// AllocateFree marks the lowest-numbered free frame as occupied and returns
// it. The bool return value is false if all the frames are occupied.
func (a *FrameAllocator) AllocateFree() (int, bool) {
	if a.numFree == 0 {
		return 0, false
	}

	for i := ReservedFrame + 1; i < len(a.free); i++ {
		if a.free[i] {
			a.free[i] = false
			a.numFree--

			return i, true
		}
	}

	panic("free frame count is inconsistent")
}

// Release marks a frame as free again.
func (a *FrameAllocator) Release(frame int) error {
	if frame == ReservedFrame {
		return fmt.Errorf("frame %d is reserved", frame)
	}

	if frame < 0 || frame >= len(a.free) {
		return fmt.Errorf("frame %d out of range [0, %d)", frame, len(a.free))
	}

	if !a.free[frame] {
		a.free[frame] = true
		a.numFree++
	}

	return nil
}

// IsFree tells if a frame can be allocated.
func (a *FrameAllocator) IsFree(frame int) bool {
	if frame < 0 || frame >= len(a.free) {
		return false
	}

	return a.free[frame]
}

// NumFree returns the number of frames that can be allocated.
func (a *FrameAllocator) NumFree() int {
	return a.numFree
}

// NumFrames returns the number of frames, including the reserved one.
func (a *FrameAllocator) NumFrames() int {
	return len(a.free)
}
