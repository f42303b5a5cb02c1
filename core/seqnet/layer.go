package seqnet

import "math"

// Layer is a differentiable network stage. Backward must be called
// directly after a Forward for the same sample; parameter gradients
// accumulate across calls until ZeroGrads.
type Layer interface {
	Forward(x []float64) []float64
	// Backward consumes dL/d(output), accumulates parameter
	// gradients and returns dL/d(input).
	Backward(grad []float64) []float64
	// Params and Grads return slices aliasing the layer's parameter
	// and gradient storage, in matching order.
	Params() [][]float64
	Grads() [][]float64
	ZeroGrads()
	InSize() int
	OutSize() int
}

// Activation is an elementwise nonlinearity with its derivative taken
// at the pre-activation value.
type Activation interface {
	Name() string
	Activate(x float64) float64
	Derivative(x float64) float64
}

// Linear is the identity activation.
type Linear struct{}

func (Linear) Name() string                 { return "linear" }
func (Linear) Activate(x float64) float64   { return x }
func (Linear) Derivative(x float64) float64 { return 1 }

// ReLU rectifier.
type ReLU struct{}

func (ReLU) Name() string { return "relu" }
func (ReLU) Activate(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}
func (ReLU) Derivative(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}

// Tanh activation.
type Tanh struct{}

func (Tanh) Name() string               { return "tanh" }
func (Tanh) Activate(x float64) float64 { return math.Tanh(x) }
func (Tanh) Derivative(x float64) float64 {
	t := math.Tanh(x)
	return 1 - t*t
}

// Sigmoid activation.
type Sigmoid struct{}

func (Sigmoid) Name() string { return "sigmoid" }
func (Sigmoid) Activate(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
func (Sigmoid) Derivative(x float64) float64 {
	s := 1 / (1 + math.Exp(-x))
	return s * (1 - s)
}

func activationByName(name string) (Activation, bool) {
	switch name {
	case "linear":
		return Linear{}, true
	case "relu":
		return ReLU{}, true
	case "tanh":
		return Tanh{}, true
	case "sigmoid":
		return Sigmoid{}, true
	}
	return nil, false
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }
