package pluto

import "fmt"

// Range selects a frame range for iteration and reduction: the half-open
// interval [Start, Stop) with the given step. The zero value selects all
// frames. Negative Start and Stop are resolved like frame indices.
type Range struct {
	Start, Stop, Step int
}

// normalizeRange resolves a Range against the simulation's frame count.
func (s *Simulation) normalizeRange(r Range) (start, stop, step int, err error) {
	start, stop, step = r.Start, r.Stop, r.Step
	if step == 0 {
		step = 1
	}
	if step < 0 {
		return 0, 0, 0, fmt.Errorf("%w: negative step %d", ErrIndexOutOfRange, step)
	}
	if start != 0 {
		if start, err = s.ResolveIndex(start); err != nil {
			return 0, 0, 0, err
		}
	}
	// Stop is exclusive; zero means "to the end".
	switch {
	case stop == 0 || stop == s.Len():
		stop = s.Len()
	default:
		if stop, err = s.ResolveIndex(stop); err != nil {
			return 0, 0, 0, err
		}
	}
	return start, stop, step, nil
}

// Iterator walks a frame range in index order, one frame per Next call. It
// follows the scanner pattern:
//
//	it, err := sim.Iter(pluto.Range{}, false)
//	for it.Next() {
//	    fr := it.Frame()
//	    ...
//	}
//	if err := it.Err(); err != nil { ... }
//
// Each call to Simulation.Iter returns a fresh iterator, so a range can be
// walked any number of times.
type Iterator struct {
	sim  *Simulation
	keep bool

	next, stop, step int
	cur              *Frame
	err              error
}

// Iter returns an iterator over the given frame range. With keep=true
// frames go through the simulation's frame cache; with keep=false each
// frame is an independent instance the caller may Close as soon as it is
// done with it, keeping the long-lived cache unpolluted.
func (s *Simulation) Iter(r Range, keep bool) (*Iterator, error) {
	start, stop, step, err := s.normalizeRange(r)
	if err != nil {
		return nil, err
	}
	return &Iterator{sim: s, keep: keep, next: start, stop: stop, step: step}, nil
}

// Len returns the number of frames the iterator will yield in total.
func (it *Iterator) Len() int {
	remaining := it.stop - it.next
	if remaining <= 0 {
		return 0
	}
	return (remaining + it.step - 1) / it.step
}

// Next advances to the next frame. It returns false when the range is
// exhausted or an error occurred; check Err afterwards.
func (it *Iterator) Next() bool {
	if it.err != nil || it.next >= it.stop {
		return false
	}
	var fr *Frame
	var err error
	if it.keep {
		fr, err = it.sim.Get(it.next)
	} else {
		fr, err = it.sim.Load(it.next)
	}
	if err != nil {
		it.err = err
		return false
	}
	it.cur = fr
	it.next += it.step
	return true
}

// Frame returns the current frame.
func (it *Iterator) Frame() *Frame { return it.cur }

// Err returns the first error encountered while iterating.
func (it *Iterator) Err() error { return it.err }
