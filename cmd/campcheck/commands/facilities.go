package commands

import (
	"fmt"
	"os"
	"strings"

	"campcheck/internal/facilities"
	"campcheck/internal/report"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var searchLimit *int

func init() {
	searchLimit = facilitiesSearchCmd.Flags().IntP("limit", "n", 10, "The maximum number of matches to show.")

	facilitiesCmd.AddCommand(facilitiesImportCmd)
	facilitiesCmd.AddCommand(facilitiesSearchCmd)
	rootCmd.AddCommand(facilitiesCmd)
}

var facilitiesCmd = &cobra.Command{
	Use:   "facilities",
	Short: "Manages the directory of campground names.",
}

var facilitiesImportCmd = &cobra.Command{
	Use:   "import <facilities.json>",
	Short: "Imports a facilities export of the Recreation Information Database (RIDB).",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		g := getGlobals(cmd.Context())

		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer file.Close()

		parsed, err := facilities.ParseRIDB(file)
		if err != nil {
			return err
		}

		store, database, err := openStore(cmd.Context(), g)
		if err != nil {
			return err
		}
		defer database.Close()

		err = store.Import(cmd.Context(), parsed)
		if err != nil {
			return err
		}
		count, err := store.Count(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "imported %d facilities, the directory now has %d.\n", len(parsed), count)
		return nil
	},
}

var facilitiesSearchCmd = &cobra.Command{
	Use:   "search <name>...",
	Short: "Finds the park ids of campgrounds with a similar name.",
	Args:  usageArgs(cobra.MinimumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		g := getGlobals(cmd.Context())

		store, database, err := openStore(cmd.Context(), g)
		if err != nil {
			return err
		}
		defer database.Close()

		matches, err := store.Search(cmd.Context(), strings.Join(args, " "), *searchLimit)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "the directory is empty, run 'campcheck facilities import' first.")
			return nil
		}

		t := report.NewTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Park ID", "Name", "Similarity"})
		for _, m := range matches {
			t.AppendRow(table.Row{m.ID, m.Name, fmt.Sprintf("%.2f", m.Score)})
		}
		t.Render()
		return nil
	},
}
