package body

import "fmt"

// Handle refers to a body in a Set. A handle goes stale once its body is
// removed; the slot may be reused but with a new generation.
type Handle struct {
	Index      uint32
	Generation uint32
}

// NilHandle never resolves.
var NilHandle Handle

func (h Handle) IsNil() bool { return h.Generation == 0 }

func (h Handle) String() string {
	return fmt.Sprintf("%d#%d", h.Index, h.Generation)
}

type slot struct {
	body       *RigidBody
	generation uint32
}

// Set is an arena of bodies addressed by generational handles. It is not safe
// for concurrent use; the engine owns it from a single goroutine.
type Set struct {
	slots []slot
	free  []uint32
	count int
}

func NewSet() *Set {
	return &Set{}
}

// Insert adds b and returns its handle.
func (s *Set) Insert(b *RigidBody) (Handle, error) {
	if !b.handle.IsNil() {
		return NilHandle, ErrAlreadyInSet
	}

	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		idx = uint32(len(s.slots))
		s.slots = append(s.slots, slot{})
	}

	sl := &s.slots[idx]
	sl.generation++
	sl.body = b
	s.count++

	b.handle = Handle{Index: idx, Generation: sl.generation}
	return b.handle, nil
}

// Remove drops the body behind h and invalidates every copy of h.
func (s *Set) Remove(h Handle) error {
	b, ok := s.Get(h)
	if !ok {
		return fmt.Errorf("remove %s: %w", h, ErrBodyNotFound)
	}
	sl := &s.slots[h.Index]
	sl.body = nil
	sl.generation++
	s.free = append(s.free, h.Index)
	s.count--
	b.handle = NilHandle
	return nil
}

// Get resolves h, failing for nil, out-of-range or stale handles.
func (s *Set) Get(h Handle) (*RigidBody, bool) {
	if h.IsNil() || int(h.Index) >= len(s.slots) {
		return nil, false
	}
	sl := s.slots[h.Index]
	if sl.generation != h.Generation || sl.body == nil {
		return nil, false
	}
	return sl.body, true
}

func (s *Set) Contains(h Handle) bool {
	_, ok := s.Get(h)
	return ok
}

func (s *Set) Len() int { return s.count }

// Bodies appends the live bodies to dst in slot order.
func (s *Set) Bodies(dst []*RigidBody) []*RigidBody {
	for _, sl := range s.slots {
		if sl.body != nil {
			dst = append(dst, sl.body)
		}
	}
	return dst
}

// Each visits live bodies in slot order until fn returns false.
func (s *Set) Each(fn func(h Handle, b *RigidBody) bool) {
	for _, sl := range s.slots {
		if sl.body == nil {
			continue
		}
		if !fn(sl.body.handle, sl.body) {
			return
		}
	}
}
