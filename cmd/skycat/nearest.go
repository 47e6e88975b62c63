package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var nearestCmd = &cobra.Command{
	Use:    "nearest <ra> <dec>",
	Short:  "Find the catalog stars nearest to a sky position (degrees)",
	Args:   cobra.ExactArgs(2),
	PreRun: bindQueryFlags,
	RunE:   runNearest,
}

func init() {
	addQueryFlags(nearestCmd)
	nearestCmd.Flags().Bool("json", false, "print JSON")
	rootCmd.AddCommand(nearestCmd)
}

func runNearest(cmd *cobra.Command, args []string) error {
	ra, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid ra %q: %w", args[0], err)
	}
	dec, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid dec %q: %w", args[1], err)
	}

	ctx := cmd.Context()
	cat, cfg, err := openCatalog(ctx)
	if err != nil {
		return err
	}
	defer cat.Close()

	res, err := cat.Nearest(ctx, ra, dec, cfg.MaxResults, cfg.ExpandRadius, queryOptions(cfg)...)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(cmd.OutOrStdout(), toNeighborsJSON(res))
	}
	writeNeighborsText(cmd.OutOrStdout(), res)
	return nil
}
