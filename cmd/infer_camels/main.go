package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/bayronik/emulator/compute"
	"github.com/bayronik/emulator/datasets"
	"github.com/bayronik/emulator/inference"
	"github.com/bayronik/emulator/tensor"
)

func main() {
	graphPath := flag.String("graph", "weights/traced_unet_model.json.z", "portable graph file")
	mapsPath := flag.String("maps", "", "flat-array archive of dark matter maps")
	index := flag.Int("index", 0, "map index within the archive")
	outPath := flag.String("out", "prediction.npy", "output file for the predicted map (log-density)")
	flag.Parse()

	if *mapsPath == "" {
		log.Fatal("missing -maps archive")
	}

	g, err := inference.LoadGraph(*graphPath)
	if err != nil {
		log.Fatal(err)
	}
	g.Workers = compute.Detect().Workers

	field, h, w, err := readMap(*mapsPath, *index)
	if err != nil {
		log.Fatal(err)
	}
	in := datasets.PrepareInput(field, h, w)

	out, err := g.Apply(tensor.FromSlice(in.Data, 1, 1, h, w))
	if err != nil {
		log.Fatal(err)
	}

	pred := mat.NewDense(h, w, nil)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pred.Set(y, x, float64(out.Data[y*w+x]))
		}
	}
	f, err := os.Create(*outPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := npyio.Write(f, pred); err != nil {
		f.Close()
		log.Fatal(err)
	}
	if err := f.Close(); err != nil {
		log.Fatal(err)
	}
	log.Printf("predicted map %d of %s written to %s", *index, *mapsPath, *outPath)
}

// readMap loads one (height, width) map from a (count, height, width)
// flat-array archive.
func readMap(path string, index int) ([]float32, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, 0, 0, err
	}
	dims := r.Header.Descr.Shape
	if len(dims) != 3 {
		log.Fatalf("%s has rank %d, want (count, height, width)", path, len(dims))
	}
	count, h, w := dims[0], dims[1], dims[2]
	if index < 0 || index >= count {
		log.Fatalf("index %d out of range, %s holds %d maps", index, path, count)
	}

	plane := h * w
	if strings.Contains(r.Header.Descr.Type, "f8") {
		wide := make([]float64, count*plane)
		if err := r.Read(&wide); err != nil {
			return nil, 0, 0, err
		}
		data := make([]float32, plane)
		for i, v := range wide[index*plane : (index+1)*plane] {
			data[i] = float32(v)
		}
		return data, h, w, nil
	}
	data := make([]float32, count*plane)
	if err := r.Read(&data); err != nil {
		return nil, 0, 0, err
	}
	return data[index*plane : (index+1)*plane], h, w, nil
}
