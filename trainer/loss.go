package trainer

import "github.com/bayronik/emulator/tensor"

// mse computes the mean squared error over all elements of a batch.
func mse(pred, tgt *tensor.Tensor) float64 {
	var s float64
	for i, p := range pred.Data {
		d := float64(p) - float64(tgt.Data[i])
		s += d * d
	}
	return s / float64(len(pred.Data))
}

// mseWithGrad additionally returns the loss gradient with respect to the
// prediction, d(mse)/d(pred) = 2(pred-tgt)/N.
func mseWithGrad(pred, tgt *tensor.Tensor) (float64, *tensor.Tensor) {
	grad := tensor.New(pred.Shape...)
	n := float64(len(pred.Data))
	var s float64
	for i, p := range pred.Data {
		d := float64(p) - float64(tgt.Data[i])
		s += d * d
		grad.Data[i] = float32(2 * d / n)
	}
	return s / n, grad
}
