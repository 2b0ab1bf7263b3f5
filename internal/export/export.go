// Package export writes recorded runs as CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/coupled/internal/physics"
	"github.com/san-kum/coupled/internal/sim"
)

// Format selects an output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Header is the CSV column order. Positions are displacements from the
// reference positions.
var Header = []string{"t", "x1", "x2", "v1", "v2", "energy", "energy_ratio"}

type Data struct {
	Integrator    string             `json:"integrator"`
	SubSteps      int                `json:"substeps"`
	FrameDt       float64            `json:"frame_dt"`
	Frames        int                `json:"frames"`
	Params        physics.Params     `json:"params"`
	MaxDrift      float64            `json:"max_drift"`
	DriftExceeded bool               `json:"drift_exceeded"`
	Metrics       map[string]float64 `json:"metrics,omitempty"`
	Samples       []Sample           `json:"samples"`
}

type Sample struct {
	T           float64 `json:"t"`
	X1          float64 `json:"x1"`
	X2          float64 `json:"x2"`
	V1          float64 `json:"v1"`
	V2          float64 `json:"v2"`
	Energy      float64 `json:"energy"`
	EnergyRatio float64 `json:"energy_ratio"`
}

// NewData flattens a run recorded with parameters p.
func NewData(p physics.Params, res *sim.Result) Data {
	d := Data{
		Integrator:    res.Integrator,
		SubSteps:      res.SubSteps,
		FrameDt:       res.FrameDt,
		Frames:        res.FramesTaken,
		Params:        p,
		MaxDrift:      res.MaxDrift,
		DriftExceeded: res.DriftExceeded,
		Metrics:       res.Metrics,
		Samples:       make([]Sample, len(res.States)),
	}
	for i, s := range res.States {
		d.Samples[i] = Sample{
			T:           res.Times[i],
			X1:          s.X1,
			X2:          s.X2,
			V1:          s.V1,
			V2:          s.V2,
			Energy:      physics.Energy(s, p),
			EnergyRatio: res.EnergyRatios[i],
		}
	}
	return d
}

func WriteCSV(w io.Writer, d Data) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, s := range d.Samples {
		row := []string{
			formatFloat(s.T),
			formatFloat(s.X1),
			formatFloat(s.X2),
			formatFloat(s.V1),
			formatFloat(s.V2),
			formatFloat(s.Energy),
			formatFloat(s.EnergyRatio),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON encodes d with indentation. encoding/json cannot represent NaN
// or Inf, so a diverged run must be written as CSV.
func WriteJSON(w io.Writer, d Data) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

func Write(w io.Writer, f Format, d Data) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, d)
	case FormatJSON:
		return WriteJSON(w, d)
	}
	return fmt.Errorf("unknown export format %q", f)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
