package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/skycat"
)

var batchCmd = &cobra.Command{
	Use:   "batch [file.csv]",
	Short: "Run nearest queries for every ra,dec row of a CSV file (or stdin)",
	Long: "batch reads ra,dec pairs in degrees, one per row, and writes one CSV row per " +
		"neighbor: row,ra,dec,id,star_ra,star_dec,mag,separation. Rows that fail are " +
		"reported with an error column and never abort the batch.",
	Args:   cobra.MaximumNArgs(1),
	PreRun: bindQueryFlags,
	RunE:   runBatch,
}

func init() {
	addQueryFlags(batchCmd)
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	points, err := parsePoints(in)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	cat, cfg, err := openCatalog(ctx)
	if err != nil {
		return err
	}
	defer cat.Close()

	results := cat.NearestMany(ctx, points, cfg.MaxResults, cfg.ExpandRadius, queryOptions(cfg)...)
	return writeBatch(cmd.OutOrStdout(), points, results)
}

// parsePoints reads ra,dec rows. A first row that does not parse is treated
// as a header.
func parsePoints(r io.Reader) ([]skycat.Point, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var points []skycat.Point
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return points, nil
		}
		if err != nil {
			return nil, err
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("line %d: want ra,dec, got %d fields", line, len(rec))
		}
		ra, errRA := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		dec, errDec := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err := errors.Join(errRA, errDec); err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		points = append(points, skycat.Point{RA: ra, Dec: dec})
	}
}

func writeBatch(w io.Writer, points []skycat.Point, results []skycat.BatchResult) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"row", "ra", "dec", "id", "star_ra", "star_dec", "mag", "separation", "error"})

	ff := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	for i, res := range results {
		row := strconv.Itoa(i + 1)
		p := points[i]
		if res.Err != nil {
			_ = cw.Write([]string{row, ff(p.RA), ff(p.Dec), "", "", "", "", "", res.Err.Error()})
			continue
		}
		for _, n := range res.Neighbors {
			_ = cw.Write([]string{
				row, ff(p.RA), ff(p.Dec),
				string(n.Star.ID), ff(n.Star.RA), ff(n.Star.Dec), formatMag(n.Star.Mag),
				strconv.FormatFloat(n.Separation, 'f', 6, 64), "",
			})
		}
	}
	cw.Flush()
	return cw.Error()
}
