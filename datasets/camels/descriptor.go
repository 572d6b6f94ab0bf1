// Package camels implements the field-map stores over CAMELS projected mass
// map archives: the flat-array (.npy) backend, the self-describing (.hdf5)
// backend and the optional simulation parameter table.
package camels

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bayronik/emulator/datasets"
)

// Input maps are dark matter, targets are total matter.
const (
	FieldInput  = "Mcdm"
	FieldTarget = "Mtot"
)

// ErrConfig marks a fatal construction error: missing archive files or
// archives whose sample counts disagree.
var ErrConfig = errors.New("archive configuration invalid")

// Descriptor identifies one pair of co-registered map archives.
type Descriptor struct {
	Root        string  // directory holding the archives
	Suite       string  // simulation suite, e.g. IllustrisTNG
	DatasetType string  // simulation set, e.g. CV, LH
	Redshift    float64 // redshift slice, self-describing backend only
	Cache       bool    // load the whole archive into memory at open
}

// NPYPaths resolves the flat-array archive pair. The flat archives are only
// published for the z=0.00 slice, so the template hardcodes it.
func (d Descriptor) NPYPaths() (in, tgt string) {
	in = filepath.Join(d.Root, fmt.Sprintf("Maps_%s_%s_%s_z=0.00.npy", FieldInput, d.Suite, d.DatasetType))
	tgt = filepath.Join(d.Root, fmt.Sprintf("Maps_%s_%s_%s_z=0.00.npy", FieldTarget, d.Suite, d.DatasetType))
	return in, tgt
}

// HDF5Paths resolves the self-describing archive pair, with the redshift
// formatted to two decimal places.
func (d Descriptor) HDF5Paths() (in, tgt string) {
	in = filepath.Join(d.Root, fmt.Sprintf("Maps_%s_%s_%s_z=%.2f.hdf5", FieldInput, d.Suite, d.DatasetType, d.Redshift))
	tgt = filepath.Join(d.Root, fmt.Sprintf("Maps_%s_%s_%s_z=%.2f.hdf5", FieldTarget, d.Suite, d.DatasetType, d.Redshift))
	return in, tgt
}

// Open selects a backend by which archive files exist. The flat-array pair
// wins when both kinds are present.
func Open(d Descriptor) (datasets.Store, error) {
	if in, tgt := d.NPYPaths(); exists(in) && exists(tgt) {
		return OpenNPY(d)
	}
	if in, tgt := d.HDF5Paths(); exists(in) && exists(tgt) {
		return OpenHDF5(d)
	}
	npyIn, npyTgt := d.NPYPaths()
	h5In, h5Tgt := d.HDF5Paths()
	return nil, fmt.Errorf("%w: no archive pair for suite %s set %s under %s; place either {%s, %s} or {%s, %s}",
		ErrConfig, d.Suite, d.DatasetType, d.Root,
		filepath.Base(npyIn), filepath.Base(npyTgt), filepath.Base(h5In), filepath.Base(h5Tgt))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
