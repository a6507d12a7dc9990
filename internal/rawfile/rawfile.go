// Package rawfile provides read-only views of byte ranges of data files,
// memory-mapped where the platform supports it and read into a buffer
// otherwise. A Region keeps its backing resource open until Close is
// called; release is explicit, never finalizer-driven.
package rawfile

// Region is a read-only view of a byte range of a file. Data must not be
// used after Close.
type Region struct {
	Data []byte

	release func() error
}

// Close releases the mapping or buffer. It is safe to call Close more than
// once.
func (r *Region) Close() error {
	rel := r.release
	r.release = nil
	r.Data = nil
	if rel == nil {
		return nil
	}
	return rel()
}
