package memory

// Allocator decides how much of the available memory each request receives.
// The returned slice is parallel to requested.
type Allocator interface {
	Allocate(available int64, requested []int64) []int64
}

// ScalingAllocator grants every request in full when they fit and otherwise
// scales each request down in proportion to the available total.
type ScalingAllocator struct{}

func (ScalingAllocator) Allocate(available int64, requested []int64) []int64 {
	ret := make([]int64, len(requested))
	var total int64
	for _, size := range requested {
		total += size
	}
	if total <= available {
		copy(ret, requested)
		return ret
	}
	if available <= 0 {
		return ret
	}
	ratio := float64(available) / float64(total)
	for i, size := range requested {
		ret[i] = int64(float64(size) * ratio)
	}
	return ret
}
