package planner

import "math/rand/v2"

// Sampler produces candidate points for the planner
type Sampler interface {
	Sample() Point
}

// UniformSampler draws points uniformly from [0, width) x [0, height)
type UniformSampler struct {
	rnd    *rand.Rand
	width  float64
	height float64
}

// NewUniformSampler creates a sampler whose sequence is fixed by seed
func NewUniformSampler(width, height float64, seed int64) *UniformSampler {
	return &UniformSampler{
		rnd:    rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)),
		width:  width,
		height: height,
	}
}

// Sample returns the next random point
func (s *UniformSampler) Sample() Point {
	return Point{
		X: s.rnd.Float64() * s.width,
		Y: s.rnd.Float64() * s.height,
	}
}

// SamplerFunc adapts a plain function to the Sampler interface
type SamplerFunc func() Point

// Sample calls f
func (f SamplerFunc) Sample() Point {
	return f()
}
