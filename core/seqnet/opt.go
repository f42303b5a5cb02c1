package seqnet

import "math"

// Optimizer applies one update step to parameter groups given their
// accumulated gradients. Both slices alias layer storage and are
// updated in place.
type Optimizer interface {
	Step(params, grads [][]float64)
}

// SGD is plain stochastic gradient descent.
type SGD struct {
	LearningRate float64
}

func (s SGD) Step(params, grads [][]float64) {
	for gi := range params {
		p, g := params[gi], grads[gi]
		for i := range p {
			p[i] -= s.LearningRate * g[i]
		}
	}
}

// Adam keeps per-parameter first and second moment estimates. State
// grows lazily to match the parameter groups it is stepped with, so a
// single Adam value must not be shared between networks.
type Adam struct {
	LearningRate float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64

	t int
	m [][]float64
	v [][]float64
}

// NewAdam returns an Adam optimizer with the usual defaults.
func NewAdam(learningRate float64) *Adam {
	return &Adam{
		LearningRate: learningRate,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-8,
	}
}

func (a *Adam) Step(params, grads [][]float64) {
	if a.m == nil {
		a.m = make([][]float64, len(params))
		a.v = make([][]float64, len(params))
		for i, p := range params {
			a.m[i] = make([]float64, len(p))
			a.v[i] = make([]float64, len(p))
		}
	}
	a.t++
	c1 := 1 - math.Pow(a.Beta1, float64(a.t))
	c2 := 1 - math.Pow(a.Beta2, float64(a.t))
	for gi := range params {
		p, g, m, v := params[gi], grads[gi], a.m[gi], a.v[gi]
		for i := range p {
			m[i] = a.Beta1*m[i] + (1-a.Beta1)*g[i]
			v[i] = a.Beta2*v[i] + (1-a.Beta2)*g[i]*g[i]
			mHat := m[i] / c1
			vHat := v[i] / c2
			p[i] -= a.LearningRate * mHat / (math.Sqrt(vHat) + a.Epsilon)
		}
	}
}
