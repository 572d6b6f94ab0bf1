package camels

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// ParamTable holds the cosmological and feedback parameters of each
// simulation instance, one row per instance.
type ParamTable struct {
	Columns []string
	Rows    [][]float64
}

// LoadParams loads the optional companion parameter table
// params_<Suite>_<Type>.txt. Not every caller needs it, so a missing file is
// only a logged warning and returns nil.
func LoadParams(d Descriptor) *ParamTable {
	path := filepath.Join(d.Root, fmt.Sprintf("params_%s_%s.txt", d.Suite, d.DatasetType))
	t, err := readParams(path)
	if err != nil {
		log.Printf("camels: no parameter table: %v", err)
		return nil
	}
	return t
}

func readParams(path string) (*ParamTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var t ParamTable
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(strings.TrimPrefix(sc.Text(), "#"))
		if len(fields) == 0 {
			continue
		}
		if t.Columns == nil {
			t.Columns = fields
			continue
		}
		row := make([]float64, len(fields))
		for i, s := range fields {
			if row[i], err = strconv.ParseFloat(s, 64); err != nil {
				return nil, fmt.Errorf("parameter table %s row %d: %v", path, len(t.Rows)+1, err)
			}
		}
		if len(row) != len(t.Columns) {
			return nil, fmt.Errorf("parameter table %s row %d has %d values, want %d",
				path, len(t.Rows)+1, len(row), len(t.Columns))
		}
		t.Rows = append(t.Rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if t.Columns == nil {
		return nil, fmt.Errorf("parameter table %s is empty", path)
	}
	return &t, nil
}

// Len reports the number of instances in the table.
func (t *ParamTable) Len() int {
	return len(t.Rows)
}

// Column returns the values of a named column, or nil if absent.
func (t *ParamTable) Column(name string) []float64 {
	for j, c := range t.Columns {
		if c != name {
			continue
		}
		col := make([]float64, len(t.Rows))
		for i, row := range t.Rows {
			col[i] = row[j]
		}
		return col
	}
	return nil
}

// ColumnStats reports the min, max and mean of a named column.
func (t *ParamTable) ColumnStats(name string) (min, max, mean float64, ok bool) {
	col := t.Column(name)
	if len(col) == 0 {
		return 0, 0, 0, false
	}
	return floats.Min(col), floats.Max(col), floats.Sum(col) / float64(len(col)), true
}
