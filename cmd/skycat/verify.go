package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/skycat"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that every zone and index file of the catalog is present and consistent",
	Args:  cobra.NoArgs,
	RunE:  runVerify,
}

func init() {
	verifyCmd.Flags().Bool("deep", false, "also check that every index entry lies within its zone file")
	verifyCmd.Flags().Bool("scan", false, "decode every cell and report the number of stars")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	var extra []skycat.Option
	if deep, _ := cmd.Flags().GetBool("deep"); deep {
		extra = append(extra, skycat.WithVerifyIndexes())
	}

	cat, _, err := openCatalog(ctx, extra...)
	if err != nil {
		fmt.Fprintf(out, "✗ %v\n", err)
		return err
	}
	defer cat.Close()

	m := cat.Manifest()
	fmt.Fprintf(out, "✓ %s: %d zones × %d buckets\n", m.Name, m.Zones, m.Buckets)

	scan, _ := cmd.Flags().GetBool("scan")
	if !scan {
		return nil
	}

	var stars, failed int
	for z := 1; z <= m.Zones; z++ {
		for b := 1; b <= m.Buckets; b++ {
			entries, err := cat.ReadBucket(ctx, skycat.ZoneID(z), skycat.BucketID(b))
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				fmt.Fprintf(out, "✗ zone %d bucket %d: %v\n", z, b, err)
				failed++
				continue
			}
			stars += len(entries)
		}
	}
	fmt.Fprintf(out, "✓ %d stars decoded\n", stars)
	if failed > 0 {
		return fmt.Errorf("%d cells failed to decode", failed)
	}
	return nil
}
