package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/skycat"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <id>...",
	Short: "Resolve catalog identifiers such as \"UCAC4 231-154752\"",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLookup,
}

func init() {
	lookupCmd.Flags().Bool("json", false, "print JSON")
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cat, _, err := openCatalog(ctx)
	if err != nil {
		return err
	}
	defer cat.Close()

	asJSON, _ := cmd.Flags().GetBool("json")

	ids := make([]skycat.CatalogID, len(args))
	for i, id := range args {
		ids[i] = skycat.CatalogID(id)
	}
	stars, err := cat.LookupMany(ctx, ids)
	if err != nil {
		return err
	}

	if asJSON {
		out := make([]starJSON, len(stars))
		for i, s := range stars {
			out[i] = toStarJSON(s)
		}
		return writeJSON(cmd.OutOrStdout(), out)
	}
	for _, star := range stars {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.8f\t%.8f\t%s\t%s\n", star.ID, star.RA, star.Dec, formatMag(star.Mag), formatMag(star.MagErr))
	}
	return nil
}
