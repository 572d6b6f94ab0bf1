// Package trainer provides high-level training orchestration for field-map
// models. It drives the epoch loop over a dataset, scores validation loss,
// and persists best-so-far and final parameter snapshots.
package trainer
