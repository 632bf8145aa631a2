package minigame_test

// sequenceRand replays the given values, repeating the last one when exhausted
type sequenceRand struct {
	ints   []int
	floats []float64
}

func (r *sequenceRand) IntN(n int) int {
	value := r.ints[0]
	if len(r.ints) > 1 {
		r.ints = r.ints[1:]
	}
	if value >= n {
		panic("sequenceRand: value out of range")
	}
	return value
}

func (r *sequenceRand) Float64() float64 {
	value := r.floats[0]
	if len(r.floats) > 1 {
		r.floats = r.floats[1:]
	}
	return value
}
