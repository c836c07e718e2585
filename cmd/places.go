package main

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var placesLimit int

var placesCmd = &cobra.Command{
	Use:   "places [id]",
	Short: "List saved places, or show one by id",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if len(args) == 1 {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return eris.Wrapf(err, "parse place id %q", args[0])
			}
			place, err := st.GetPlace(ctx, id)
			if err != nil {
				return eris.Wrap(err, "get place")
			}
			return enc.Encode(place)
		}

		places, err := st.ListPlaces(ctx, placesLimit)
		if err != nil {
			return eris.Wrap(err, "list places")
		}
		return enc.Encode(places)
	},
}

func init() {
	placesCmd.Flags().IntVar(&placesLimit, "limit", 50, "maximum places to list")
	rootCmd.AddCommand(placesCmd)
}
