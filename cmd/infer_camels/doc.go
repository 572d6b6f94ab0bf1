// Package main provides the inference program. It executes an exported
// portable graph on one dark-matter map from a flat-array archive and
// writes the predicted total-matter map as a .npy file.
package main
