package seqnet

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// GRU is a gated recurrent unit unrolled over a fixed number of
// timesteps. Forward consumes the whole flattened sequence
// (steps*features values) and returns the final hidden state;
// Backward propagates through all timesteps. Each Forward starts from
// a zero hidden state, so the layer is stateless across samples.
type GRU struct {
	in     int // features per timestep
	hidden int
	steps  int

	// Gate weights: update (z), reset (r), candidate (c).
	wz, wr, wc *mat.Dense // hidden x in
	uz, ur, uc *mat.Dense // hidden x hidden
	bz, br, bc *mat.VecDense

	gwz, gwr, gwc *mat.Dense
	guz, gur, guc *mat.Dense
	gbz, gbr, gbc *mat.VecDense

	// Per-step forward state kept for backprop.
	xs    [][]float64 // inputs
	hPrev [][]float64 // hidden state entering the step
	zs    [][]float64 // update gate output
	rs    [][]float64 // reset gate output
	cs    [][]float64 // candidate output
	rhs   [][]float64 // reset gate applied to hPrev

	scratch *mat.VecDense // hidden-sized matvec buffer
}

// NewGRU builds an unrolled GRU with Xavier-initialized weights drawn
// from rng.
func NewGRU(in, hidden, steps int, rng *rand.Rand) *GRU {
	g := &GRU{
		in:     in,
		hidden: hidden,
		steps:  steps,
		wz:     initDense(hidden, in, rng),
		wr:     initDense(hidden, in, rng),
		wc:     initDense(hidden, in, rng),
		uz:     initDense(hidden, hidden, rng),
		ur:     initDense(hidden, hidden, rng),
		uc:     initDense(hidden, hidden, rng),
		bz:     mat.NewVecDense(hidden, nil),
		br:     mat.NewVecDense(hidden, nil),
		bc:     mat.NewVecDense(hidden, nil),
		gwz:    mat.NewDense(hidden, in, nil),
		gwr:    mat.NewDense(hidden, in, nil),
		gwc:    mat.NewDense(hidden, in, nil),
		guz:    mat.NewDense(hidden, hidden, nil),
		gur:    mat.NewDense(hidden, hidden, nil),
		guc:    mat.NewDense(hidden, hidden, nil),
		gbz:    mat.NewVecDense(hidden, nil),
		gbr:    mat.NewVecDense(hidden, nil),
		gbc:    mat.NewVecDense(hidden, nil),

		scratch: mat.NewVecDense(hidden, nil),
	}
	g.xs = makeSteps(steps, in)
	g.hPrev = makeSteps(steps, hidden)
	g.zs = makeSteps(steps, hidden)
	g.rs = makeSteps(steps, hidden)
	g.cs = makeSteps(steps, hidden)
	g.rhs = makeSteps(steps, hidden)
	return g
}

func initDense(r, c int, rng *rand.Rand) *mat.Dense {
	scale := math.Sqrt(2.0 / float64(r+c))
	data := make([]float64, r*c)
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * scale
	}
	return mat.NewDense(r, c, data)
}

func makeSteps(steps, size int) [][]float64 {
	out := make([][]float64, steps)
	for i := range out {
		out[i] = make([]float64, size)
	}
	return out
}

func (g *GRU) Forward(x []float64) []float64 {
	h := make([]float64, g.hidden)
	for t := 0; t < g.steps; t++ {
		copy(g.xs[t], x[t*g.in:(t+1)*g.in])
		copy(g.hPrev[t], h)

		xt := mat.NewVecDense(g.in, g.xs[t])
		hp := mat.NewVecDense(g.hidden, g.hPrev[t])

		// z_t = sigmoid(Wz x_t + Uz h_prev + bz)
		g.gatePre(g.wz, xt, g.uz, hp, g.bz, g.zs[t])
		applySigmoid(g.zs[t])

		// r_t = sigmoid(Wr x_t + Ur h_prev + br)
		g.gatePre(g.wr, xt, g.ur, hp, g.br, g.rs[t])
		applySigmoid(g.rs[t])

		// c_t = tanh(Wc x_t + Uc (r_t . h_prev) + bc)
		for i := 0; i < g.hidden; i++ {
			g.rhs[t][i] = g.rs[t][i] * g.hPrev[t][i]
		}
		rh := mat.NewVecDense(g.hidden, g.rhs[t])
		g.gatePre(g.wc, xt, g.uc, rh, g.bc, g.cs[t])
		for i := range g.cs[t] {
			g.cs[t][i] = math.Tanh(g.cs[t][i])
		}

		// h_t = (1 - z_t) . h_prev + z_t . c_t
		for i := 0; i < g.hidden; i++ {
			h[i] = (1-g.zs[t][i])*g.hPrev[t][i] + g.zs[t][i]*g.cs[t][i]
		}
	}
	return h
}

// gatePre writes W*x + U*v + b into dst.
func (g *GRU) gatePre(w *mat.Dense, x *mat.VecDense, u *mat.Dense, v *mat.VecDense, b *mat.VecDense, dst []float64) {
	g.scratch.MulVec(w, x)
	copy(dst, g.scratch.RawVector().Data)
	g.scratch.MulVec(u, v)
	for i := range dst {
		dst[i] += g.scratch.AtVec(i) + b.AtVec(i)
	}
}

func applySigmoid(s []float64) {
	for i := range s {
		s[i] = sigmoid(s[i])
	}
}

func (g *GRU) Backward(grad []float64) []float64 {
	dx := make([]float64, g.steps*g.in)
	dh := make([]float64, g.hidden)
	copy(dh, grad)

	dzPre := mat.NewVecDense(g.hidden, nil)
	drPre := mat.NewVecDense(g.hidden, nil)
	dcPre := mat.NewVecDense(g.hidden, nil)
	ucBack := mat.NewVecDense(g.hidden, nil)
	tmpH := mat.NewVecDense(g.hidden, nil)
	tmpIn := mat.NewVecDense(g.in, nil)

	for t := g.steps - 1; t >= 0; t-- {
		z, r, c, hp := g.zs[t], g.rs[t], g.cs[t], g.hPrev[t]

		// Through h_t = (1-z) . h_prev + z . c.
		for i := 0; i < g.hidden; i++ {
			dz := dh[i] * (c[i] - hp[i])
			dc := dh[i] * z[i]
			dzPre.SetVec(i, dz*z[i]*(1-z[i]))
			dcPre.SetVec(i, dc*(1-c[i]*c[i]))
		}

		// Candidate recurrent path: Uc^T dcPre flows into r . h_prev.
		ucBack.MulVec(g.uc.T(), dcPre)
		for i := 0; i < g.hidden; i++ {
			dr := ucBack.AtVec(i) * hp[i]
			drPre.SetVec(i, dr*r[i]*(1-r[i]))
		}

		xt := mat.NewVecDense(g.in, g.xs[t])
		hpVec := mat.NewVecDense(g.hidden, hp)
		rh := mat.NewVecDense(g.hidden, g.rhs[t])

		g.gwz.RankOne(g.gwz, 1, dzPre, xt)
		g.guz.RankOne(g.guz, 1, dzPre, hpVec)
		g.gbz.AddVec(g.gbz, dzPre)

		g.gwr.RankOne(g.gwr, 1, drPre, xt)
		g.gur.RankOne(g.gur, 1, drPre, hpVec)
		g.gbr.AddVec(g.gbr, drPre)

		g.gwc.RankOne(g.gwc, 1, dcPre, xt)
		g.guc.RankOne(g.guc, 1, dcPre, rh)
		g.gbc.AddVec(g.gbc, dcPre)

		// dL/dx_t through all three gates.
		dxt := dx[t*g.in : (t+1)*g.in]
		tmpIn.MulVec(g.wz.T(), dzPre)
		addTo(dxt, tmpIn.RawVector().Data)
		tmpIn.MulVec(g.wr.T(), drPre)
		addTo(dxt, tmpIn.RawVector().Data)
		tmpIn.MulVec(g.wc.T(), dcPre)
		addTo(dxt, tmpIn.RawVector().Data)

		// dL/dh_prev: direct carry, both sigmoid gates, and the
		// candidate path gated by r.
		next := make([]float64, g.hidden)
		for i := 0; i < g.hidden; i++ {
			next[i] = dh[i]*(1-z[i]) + ucBack.AtVec(i)*r[i]
		}
		tmpH.MulVec(g.uz.T(), dzPre)
		addTo(next, tmpH.RawVector().Data)
		tmpH.MulVec(g.ur.T(), drPre)
		addTo(next, tmpH.RawVector().Data)
		dh = next
	}
	return dx
}

func addTo(dst, src []float64) {
	for i := range dst {
		dst[i] += src[i]
	}
}

func (g *GRU) Params() [][]float64 {
	return [][]float64{
		g.wz.RawMatrix().Data, g.uz.RawMatrix().Data, g.bz.RawVector().Data,
		g.wr.RawMatrix().Data, g.ur.RawMatrix().Data, g.br.RawVector().Data,
		g.wc.RawMatrix().Data, g.uc.RawMatrix().Data, g.bc.RawVector().Data,
	}
}

func (g *GRU) Grads() [][]float64 {
	return [][]float64{
		g.gwz.RawMatrix().Data, g.guz.RawMatrix().Data, g.gbz.RawVector().Data,
		g.gwr.RawMatrix().Data, g.gur.RawMatrix().Data, g.gbr.RawVector().Data,
		g.gwc.RawMatrix().Data, g.guc.RawMatrix().Data, g.gbc.RawVector().Data,
	}
}

func (g *GRU) ZeroGrads() {
	for _, s := range g.Grads() {
		zero(s)
	}
}

func (g *GRU) InSize() int  { return g.steps * g.in }
func (g *GRU) OutSize() int { return g.hidden }

// Hidden returns the hidden state width.
func (g *GRU) Hidden() int { return g.hidden }

// Steps returns the number of unrolled timesteps.
func (g *GRU) Steps() int { return g.steps }

// Features returns the per-timestep input width.
func (g *GRU) Features() int { return g.in }
