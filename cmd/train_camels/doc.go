// Package main provides the training program for the field-map emulator.
// It maps dark-matter-only projected mass maps to total-matter maps over a
// CAMELS archive pair, tracking validation loss and persisting the
// best-so-far and final parameter snapshots.
package main
