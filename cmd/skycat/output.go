package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/skycat"
)

// starJSON is the wire form of a catalog star. Missing magnitudes are null.
type starJSON struct {
	ID     string   `json:"id"`
	Zone   int      `json:"zone"`
	Number int      `json:"number"`
	RA     float64  `json:"ra"`
	Dec    float64  `json:"dec"`
	Mag    *float64 `json:"mag"`
	MagErr *float64 `json:"mag_err"`
}

type neighborJSON struct {
	Star       starJSON `json:"star"`
	Separation float64  `json:"separation"`
}

func optional(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func toStarJSON(s skycat.StarEntry) starJSON {
	return starJSON{
		ID:     string(s.ID),
		Zone:   int(s.Zone),
		Number: int(s.Number),
		RA:     s.RA,
		Dec:    s.Dec,
		Mag:    optional(s.Mag),
		MagErr: optional(s.MagErr),
	}
}

func toNeighborsJSON(ns []skycat.Neighbor) []neighborJSON {
	out := make([]neighborJSON, len(ns))
	for i, n := range ns {
		out[i] = neighborJSON{Star: toStarJSON(n.Star), Separation: n.Separation}
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeNeighborsText prints one neighbor per line, nearest first.
func writeNeighborsText(w io.Writer, ns []skycat.Neighbor) {
	for _, n := range ns {
		fmt.Fprintf(w, "%s\t%.8f\t%.8f\t%s\t%.6f\n", n.Star.ID, n.Star.RA, n.Star.Dec, formatMag(n.Star.Mag), n.Separation)
	}
}

func formatMag(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.3f", v)
}
