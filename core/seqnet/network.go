package seqnet

// Network chains layers with a loss and an optimizer.
type Network struct {
	layers []Layer
	loss   Loss
	opt    Optimizer
}

// New builds a network. The optimizer may be nil for inference-only
// use.
func New(layers []Layer, loss Loss, opt Optimizer) *Network {
	return &Network{layers: layers, loss: loss, opt: opt}
}

// Forward runs a full forward pass for one sample.
func (n *Network) Forward(x []float64) []float64 {
	curr := x
	for _, l := range n.layers {
		curr = l.Forward(curr)
	}
	return curr
}

// Layers exposes the layer chain.
func (n *Network) Layers() []Layer { return n.layers }

// Train performs one optimization step on a single sample and returns
// its loss.
func (n *Network) Train(x, y []float64) float64 {
	return n.TrainBatch([][]float64{x}, [][]float64{y})
}

// TrainBatch accumulates gradients over the batch, averages them and
// applies a single optimizer step. Returns the mean sample loss.
func (n *Network) TrainBatch(xs, ys [][]float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var total float64
	for i := range xs {
		pred := n.Forward(xs[i])
		total += n.loss.Forward(pred, ys[i])
		grad := make([]float64, len(pred))
		n.loss.Backward(pred, ys[i], grad)
		curr := grad
		for li := len(n.layers) - 1; li >= 0; li-- {
			curr = n.layers[li].Backward(curr)
		}
	}

	batch := float64(len(xs))
	var params, grads [][]float64
	for _, l := range n.layers {
		params = append(params, l.Params()...)
		grads = append(grads, l.Grads()...)
	}
	for _, g := range grads {
		for i := range g {
			g[i] /= batch
		}
	}
	n.opt.Step(params, grads)
	for _, l := range n.layers {
		l.ZeroGrads()
	}
	return total / batch
}

// Evaluate returns the mean loss over a dataset without updating
// parameters.
func (n *Network) Evaluate(xs, ys [][]float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var total float64
	for i := range xs {
		total += n.loss.Forward(n.Forward(xs[i]), ys[i])
	}
	return total / float64(len(xs))
}
