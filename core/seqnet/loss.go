package seqnet

// Loss scores a prediction against a target and provides the gradient
// of the score with respect to the prediction.
type Loss interface {
	Forward(pred, target []float64) float64
	Backward(pred, target, grad []float64)
}

// MSE is mean squared error.
type MSE struct{}

func (MSE) Forward(pred, target []float64) float64 {
	var sum float64
	for i := range pred {
		d := pred[i] - target[i]
		sum += d * d
	}
	return sum / float64(len(pred))
}

// Backward writes dL/dpred = 2/n (pred - target) into grad.
func (MSE) Backward(pred, target, grad []float64) {
	factor := 2.0 / float64(len(pred))
	for i := range pred {
		grad[i] = factor * (pred[i] - target[i])
	}
}
