package inference

import (
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// wire format: zlib-compressed JSON with weights as base64 little-endian
// float32, so the artifact is self-contained and readable outside Go.
const weightFormat = "f32le-b64"

type wireGraph struct {
	Producer    string     `json:"producer"`
	Format      string     `json:"weight_format"`
	InputShape  []int      `json:"input_shape"`
	OutputShape []int      `json:"output_shape"`
	Nodes       []wireNode `json:"nodes"`
}

type wireNode struct {
	Kind        string `json:"kind"`
	InChannels  int    `json:"in_channels,omitempty"`
	OutChannels int    `json:"out_channels,omitempty"`
	KernelSize  int    `json:"kernel_size,omitempty"`
	Stride      int    `json:"stride,omitempty"`
	Pad         int    `json:"pad,omitempty"`
	Weight      string `json:"weight,omitempty"`
	Bias        string `json:"bias,omitempty"`
	OutShape    []int  `json:"out_shape"`
}

// WriteFile serializes the graph, overwriting any prior export at path.
func (g *Graph) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating export directory for %s: %w", path, err)
	}
	w := wireGraph{
		Producer:    g.Producer,
		Format:      weightFormat,
		InputShape:  g.InputShape,
		OutputShape: g.OutputShape,
	}
	for _, n := range g.Nodes {
		w.Nodes = append(w.Nodes, wireNode{
			Kind:        n.Kind,
			InChannels:  n.InChannels,
			OutChannels: n.OutChannels,
			KernelSize:  n.KernelSize,
			Stride:      n.Stride,
			Pad:         n.Pad,
			Weight:      encodeFloats(n.Weight),
			Bias:        encodeFloats(n.Bias),
			OutShape:    n.OutShape,
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating graph file %s: %w", path, err)
	}
	zw := zlib.NewWriter(f)
	if err := json.NewEncoder(zw).Encode(&w); err != nil {
		f.Close()
		return fmt.Errorf("encoding graph %s: %w", path, err)
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("encoding graph %s: %w", path, err)
	}
	return f.Close()
}

// LoadGraph reads a serialized graph back.
func LoadGraph(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening graph %s: %w", path, err)
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("graph %s is not a compressed graph: %w", path, err)
	}
	defer zr.Close()

	var w wireGraph
	if err := json.NewDecoder(zr).Decode(&w); err != nil {
		return nil, fmt.Errorf("decoding graph %s: %w", path, err)
	}
	if w.Format != weightFormat {
		return nil, fmt.Errorf("graph %s uses weight format %q, want %q", path, w.Format, weightFormat)
	}

	g := &Graph{
		Producer:    w.Producer,
		InputShape:  w.InputShape,
		OutputShape: w.OutputShape,
	}
	for i, n := range w.Nodes {
		weight, err := decodeFloats(n.Weight)
		if err != nil {
			return nil, fmt.Errorf("graph %s node %d weight: %w", path, i, err)
		}
		bias, err := decodeFloats(n.Bias)
		if err != nil {
			return nil, fmt.Errorf("graph %s node %d bias: %w", path, i, err)
		}
		g.Nodes = append(g.Nodes, Node{
			Kind:        n.Kind,
			InChannels:  n.InChannels,
			OutChannels: n.OutChannels,
			KernelSize:  n.KernelSize,
			Stride:      n.Stride,
			Pad:         n.Pad,
			Weight:      weight,
			Bias:        bias,
			OutShape:    n.OutShape,
		})
	}
	return g, nil
}

func encodeFloats(v []float32) string {
	if len(v) == 0 {
		return ""
	}
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

func decodeFloats(s string) ([]float32, error) {
	if s == "" {
		return nil, nil
	}
	buf, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("payload of %d bytes is not float32-aligned", len(buf))
	}
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return v, nil
}
