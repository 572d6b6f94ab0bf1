package camels

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const paramFile = `Omega_m sigma_8 A_SN1 A_AGN1
0.30 0.80 1.00 0.25
0.25 0.90 0.50 1.00
0.35 0.70 2.00 0.50
`

func TestLoadParams(t *testing.T) {
	d := testDescriptor(t)
	path := filepath.Join(d.Root, "params_IllustrisTNG_CV.txt")
	require.NoError(t, os.WriteFile(path, []byte(paramFile), 0644))

	p := LoadParams(d)
	require.NotNil(t, p)
	require.Equal(t, []string{"Omega_m", "sigma_8", "A_SN1", "A_AGN1"}, p.Columns)
	require.Equal(t, 3, p.Len())
	require.Equal(t, []float64{0.30, 0.25, 0.35}, p.Column("Omega_m"))
	require.Nil(t, p.Column("h"))
}

func TestLoadParamsAbsenceIsNotFatal(t *testing.T) {
	p := LoadParams(testDescriptor(t))
	require.Nil(t, p)
}

func TestParamColumnStats(t *testing.T) {
	p := &ParamTable{
		Columns: []string{"sigma_8"},
		Rows:    [][]float64{{0.8}, {0.9}, {0.7}},
	}
	min, max, mean, ok := p.ColumnStats("sigma_8")
	require.True(t, ok)
	require.Equal(t, 0.7, min)
	require.Equal(t, 0.9, max)
	require.InDelta(t, 0.8, mean, 1e-12)

	_, _, _, ok = p.ColumnStats("missing")
	require.False(t, ok)
}

func TestReadParamsRejectsRaggedRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params_X_Y.txt")
	require.NoError(t, os.WriteFile(path, []byte("a b\n1.0\n"), 0644))
	_, err := readParams(path)
	require.Error(t, err)
}
