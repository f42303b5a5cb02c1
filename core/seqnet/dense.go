package seqnet

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Dense is a fully connected layer with an elementwise activation.
type Dense struct {
	in, out int
	act     Activation

	weights *mat.Dense    // out x in
	bias    *mat.VecDense // out

	gradWeights *mat.Dense
	gradBias    *mat.VecDense

	// Saved forward state for backprop.
	input  *mat.VecDense
	preAct []float64

	dx *mat.VecDense
	wx *mat.VecDense
}

// NewDense builds a Dense layer with Xavier-initialized weights drawn
// from rng.
func NewDense(in, out int, act Activation, rng *rand.Rand) *Dense {
	scale := math.Sqrt(2.0 / float64(in+out))
	w := make([]float64, out*in)
	for i := range w {
		w[i] = (rng.Float64()*2 - 1) * scale
	}
	return &Dense{
		in:          in,
		out:         out,
		act:         act,
		weights:     mat.NewDense(out, in, w),
		bias:        mat.NewVecDense(out, nil),
		gradWeights: mat.NewDense(out, in, nil),
		gradBias:    mat.NewVecDense(out, nil),
		input:       mat.NewVecDense(in, nil),
		preAct:      make([]float64, out),
		dx:          mat.NewVecDense(in, nil),
		wx:          mat.NewVecDense(out, nil),
	}
}

func (d *Dense) Forward(x []float64) []float64 {
	copy(d.input.RawVector().Data, x)
	d.wx.MulVec(d.weights, d.input)
	out := make([]float64, d.out)
	for i := 0; i < d.out; i++ {
		d.preAct[i] = d.wx.AtVec(i) + d.bias.AtVec(i)
		out[i] = d.act.Activate(d.preAct[i])
	}
	return out
}

func (d *Dense) Backward(grad []float64) []float64 {
	dpre := mat.NewVecDense(d.out, nil)
	for i := 0; i < d.out; i++ {
		dpre.SetVec(i, grad[i]*d.act.Derivative(d.preAct[i]))
	}
	d.gradWeights.RankOne(d.gradWeights, 1, dpre, d.input)
	d.gradBias.AddVec(d.gradBias, dpre)
	d.dx.MulVec(d.weights.T(), dpre)
	out := make([]float64, d.in)
	copy(out, d.dx.RawVector().Data)
	return out
}

func (d *Dense) Params() [][]float64 {
	return [][]float64{d.weights.RawMatrix().Data, d.bias.RawVector().Data}
}

func (d *Dense) Grads() [][]float64 {
	return [][]float64{d.gradWeights.RawMatrix().Data, d.gradBias.RawVector().Data}
}

func (d *Dense) ZeroGrads() {
	zero(d.gradWeights.RawMatrix().Data)
	zero(d.gradBias.RawVector().Data)
}

func (d *Dense) InSize() int  { return d.in }
func (d *Dense) OutSize() int { return d.out }

// Activation returns the layer's nonlinearity.
func (d *Dense) Activation() Activation { return d.act }

func zero(s []float64) {
	for i := range s {
		s[i] = 0
	}
}
