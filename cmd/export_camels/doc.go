// Package main provides the export program. It freezes a trained snapshot
// into a portable graph by tracing one forward pass on a canonical 256x256
// probe, for consumption outside the training environment.
package main
