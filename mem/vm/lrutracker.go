package vm

import (
	"fmt"

	"github.com/google/btree"
)

// visit records when a frame was last used. Visits are ordered by time, and
// by frame number when the times are equal.
type visit struct {
	time  uint64
	frame int
}

func visitLess(a, b visit) bool {
	if a.time != b.time {
		return a.time < b.time
	}

	return a.frame < b.frame
}

// An LRUTracker remembers the last time each occupied frame was used and picks
// the least recently used one as the victim.
type LRUTracker struct {
	visitTree *btree.BTreeG[visit]
	lastUsed  []uint64
	tracked   []bool
}

// NewLRUTracker creates a tracker for numFrames frames. No frame is a victim
// candidate until it is touched.
func NewLRUTracker(numFrames int) *LRUTracker {
	return &LRUTracker{
		visitTree: btree.NewG(2, visitLess),
		lastUsed:  make([]uint64, numFrames),
		tracked:   make([]bool, numFrames),
	}
}

// Touch records that a frame is used at the given time.
func (t *LRUTracker) Touch(frame int, time uint64) {
	t.frameMustBeTrackable(frame)

	if t.tracked[frame] {
		t.visitTree.Delete(visit{time: t.lastUsed[frame], frame: frame})
	}

	t.lastUsed[frame] = time
	t.tracked[frame] = true
	t.visitTree.ReplaceOrInsert(visit{time: time, frame: frame})
}

// Forget removes a frame from the victim candidates.
func (t *LRUTracker) Forget(frame int) {
	if frame < 0 || frame >= len(t.tracked) || !t.tracked[frame] {
		return
	}

	t.visitTree.Delete(visit{time: t.lastUsed[frame], frame: frame})
	t.tracked[frame] = false
	t.lastUsed[frame] = 0
}

// SelectVictim returns the frame with the oldest last use. Among frames used
// at the same time, the lowest-numbered one is selected. The frame stays a
// candidate until it is touched again or forgotten.
func (t *LRUTracker) SelectVictim() (int, error) {
	oldest, found := t.visitTree.Min()
	if !found {
		return 0, fmt.Errorf("%w: %d frames, none of them occupied",
			ErrNoEvictableFrame, len(t.tracked))
	}

	return oldest.frame, nil
}

// LastUsed returns the last time a frame was touched. The bool return value
// is false if the frame is not tracked.
func (t *LRUTracker) LastUsed(frame int) (uint64, bool) {
	if frame < 0 || frame >= len(t.tracked) || !t.tracked[frame] {
		return 0, false
	}

	return t.lastUsed[frame], true
}

// NumTracked returns the number of frames that can be selected as victims.
func (t *LRUTracker) NumTracked() int {
	return t.visitTree.Len()
}

func (t *LRUTracker) frameMustBeTrackable(frame int) {
	if frame == ReservedFrame {
		panic("the reserved frame cannot be tracked")
	}

	if frame < 0 || frame >= len(t.tracked) {
		panic(fmt.Sprintf("frame %d out of range [0, %d)", frame, len(t.tracked)))
	}
}
