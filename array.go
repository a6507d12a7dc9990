package pluto

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"unsafe"

	"github.com/scigolib/pluto/internal/rawfile"
)

// hostLittleEndian reports the native byte order of the running host.
var hostLittleEndian = func() bool {
	var x uint16 = 1
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()

// Array is a dense variable array decoded from a data file. Data is the
// flat backing in on-disk element order; Shape and Strides describe the
// logical indexing under the owning grid's convention.
//
// When the on-disk encoding matches the host (8-byte little-endian elements
// on a little-endian host), Data aliases a memory-mapped region that stays
// open until the owning frame evicts the array; the array must not be used
// after eviction. In every other case Data is an owned copy.
type Array struct {
	Shape   []int
	Strides []int
	Data    []float64

	region *rawfile.Region
}

// Len returns the total number of elements.
func (a *Array) Len() int { return len(a.Data) }

// At returns the element at the given logical index. It panics if the
// number of indices does not match the rank or an index is out of bounds,
// like the dense types in gonum/mat.
func (a *Array) At(idx ...int) float64 {
	if len(idx) != len(a.Shape) {
		panic(fmt.Sprintf("pluto: %d indices for rank-%d array", len(idx), len(a.Shape)))
	}
	flat := 0
	for i, x := range idx {
		if x < 0 || x >= a.Shape[i] {
			panic(fmt.Sprintf("pluto: index %d out of range for axis of length %d", x, a.Shape[i]))
		}
		flat += x * a.Strides[i]
	}
	return a.Data[flat]
}

// release closes the memory-mapped backing, if any. The Data slice becomes
// invalid for mapped arrays.
func (a *Array) release() error {
	if a.region == nil {
		return nil
	}
	reg := a.region
	a.region = nil
	a.Data = nil
	return reg.Close()
}

// stridesFor computes element strides for a shape: last index fastest for
// RowMajor, first index fastest for ColumnMajor. Either way the element at
// stride distance 1 is adjacent on disk.
func stridesFor(shape []int, order IndexOrder) []int {
	strides := make([]int, len(shape))
	if order == RowMajor {
		s := 1
		for i := len(shape) - 1; i >= 0; i-- {
			strides[i] = s
			s *= shape[i]
		}
	} else {
		s := 1
		for i := 0; i < len(shape); i++ {
			strides[i] = s
			s *= shape[i]
		}
	}
	return strides
}

// decodeFloats interprets raw bytes as count IEEE floating point elements of
// the given width and byte order, widened to float64. When the encoding
// matches the host the returned slice aliases raw and aliased is true;
// otherwise a converted copy is returned.
func decodeFloats(raw []byte, count, elemSize int, order binary.ByteOrder) (data []float64, aliased bool) {
	if elemSize == 8 && order == binary.ByteOrder(binary.LittleEndian) && hostLittleEndian && len(raw) > 0 {
		return unsafe.Slice((*float64)(unsafe.Pointer(&raw[0])), count), true
	}

	data = make([]float64, count)
	switch elemSize {
	case 8:
		for i := 0; i < count; i++ {
			data[i] = math.Float64frombits(order.Uint64(raw[i*8:]))
		}
	case 4:
		for i := 0; i < count; i++ {
			data[i] = float64(math.Float32frombits(order.Uint32(raw[i*4:])))
		}
	default:
		panic(fmt.Sprintf("pluto: unsupported element size %d", elemSize))
	}
	return data, false
}

// LoadRaw decodes a standalone binary file of IEEE floating point values.
// shape may be nil for a flat 1D result; otherwise its element product must
// match the file extent. The result always owns its data.
func LoadRaw(path string, shape []int, elemSize int, order binary.ByteOrder) (*Array, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("data file stat failed: %w", err)
	}
	if elemSize != 4 && elemSize != 8 {
		return nil, fmt.Errorf("%w: element size %d", ErrFormat, elemSize)
	}
	if fi.Size()%int64(elemSize) != 0 {
		return nil, fmt.Errorf("%w: %s: size %d not a multiple of element size %d", ErrFormat, path, fi.Size(), elemSize)
	}
	count := int(fi.Size() / int64(elemSize))
	if shape == nil {
		shape = []int{count}
	} else {
		n := 1
		for _, d := range shape {
			n *= d
		}
		if n != count {
			return nil, fmt.Errorf("%w: %s: shape %v does not match %d elements", ErrFormat, path, shape, count)
		}
	}

	reg, err := rawfile.Map(path, 0, fi.Size())
	if err != nil {
		return nil, err
	}
	defer reg.Close() //nolint:errcheck // data is copied out below

	data, aliased := decodeFloats(reg.Data, count, elemSize, order)
	if aliased {
		data = append([]float64(nil), data...)
	}
	return &Array{Shape: shape, Strides: stridesFor(shape, RowMajor), Data: data}, nil
}
