package pluto

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ReduceFunc maps one frame to a fixed-length slice of values. Scalar
// reductions return a length-1 slice. The shape of the reduction result is
// inferred from the first invocation and must stay the same for every
// frame.
type ReduceFunc func(*Frame) ([]float64, error)

// Reduce applies f to every frame of the range, in index order, and
// assembles the results into a dense array: shape [frames] for scalar
// reductions, [frames, k] otherwise. Frames are loaded outside the frame
// cache and released as soon as f returns.
func (s *Simulation) Reduce(f ReduceFunc, r Range) (*Array, error) {
	indices, err := s.rangeIndices(r)
	if err != nil {
		return nil, err
	}

	results := make([][]float64, len(indices))
	for slot, idx := range indices {
		v, err := s.reduceFrame(f, idx)
		if err != nil {
			return nil, err
		}
		results[slot] = v
	}
	return assembleReduction(results)
}

// ReduceParallel is Reduce with the frames distributed over a bounded pool
// of workers. Every worker holds its own Frame instance with its own file
// handles, so no decoded array is shared across goroutines. The output
// array is ordered by frame index regardless of completion order. A
// failure on any frame fails the whole reduction; partial results are
// discarded.
func (s *Simulation) ReduceParallel(f ReduceFunc, r Range, workers int) (*Array, error) {
	indices, err := s.rangeIndices(r)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// Results are buffered per slot; completion order only affects timing.
	results := make([][]float64, len(indices))
	var g errgroup.Group
	g.SetLimit(workers)
	for slot, idx := range indices {
		g.Go(func() error {
			v, err := s.reduceFrame(f, idx)
			if err != nil {
				return err
			}
			results[slot] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return assembleReduction(results)
}

// reduceFrame runs f on an independent frame instance and releases the
// frame's arrays afterwards.
func (s *Simulation) reduceFrame(f ReduceFunc, idx int) ([]float64, error) {
	fr, err := s.Load(idx)
	if err != nil {
		return nil, err
	}
	defer fr.Close() //nolint:errcheck // munmap of a read-only mapping

	v, err := f(fr)
	if err != nil {
		return nil, fmt.Errorf("reduce of frame %d failed: %w", idx, err)
	}
	if len(v) == 0 {
		return nil, fmt.Errorf("reduce of frame %d produced no values", idx)
	}
	// The frame's arrays are released on return; detach the result from any
	// mapped backing.
	return append([]float64(nil), v...), nil
}

func (s *Simulation) rangeIndices(r Range) ([]int, error) {
	start, stop, step, err := s.normalizeRange(r)
	if err != nil {
		return nil, err
	}
	var indices []int
	for i := start; i < stop; i += step {
		indices = append(indices, i)
	}
	return indices, nil
}

// assembleReduction stacks per-frame results into one dense array, checking
// that every frame produced the shape implied by the first.
func assembleReduction(results [][]float64) (*Array, error) {
	if len(results) == 0 {
		return &Array{Shape: []int{0}, Strides: []int{1}}, nil
	}
	k := len(results[0])
	data := make([]float64, 0, len(results)*k)
	for slot, v := range results {
		if len(v) != k {
			return nil, fmt.Errorf("reduce result length changed from %d to %d at slot %d", k, len(v), slot)
		}
		data = append(data, v...)
	}

	shape := []int{len(results)}
	if k > 1 {
		shape = append(shape, k)
	}
	return &Array{Shape: shape, Strides: stridesFor(shape, RowMajor), Data: data}, nil
}
