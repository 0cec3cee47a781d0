package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect and maintain the local database",
}

var storeStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-bucket entry counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		stats, err := deps.Store.Stats()
		if err != nil {
			return fmt.Errorf("reading store stats: %w", err)
		}

		printSimpleTable(cmd.OutOrStdout(), []string{"BUCKET", "ENTRIES", "BYTES"}, func(add func(...string)) {
			for _, bs := range stats {
				add(bs.Name, fmt.Sprintf("%d", bs.Count), fmt.Sprintf("%d", bs.Bytes))
			}
		})
		fmt.Fprintf(cmd.OutOrStdout(), "\nDatabase: %s\n", deps.Store.Path())
		return nil
	},
}

var storeClearFlags struct {
	Bucket string
	Yes    bool
}

var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete local data",
	Long: `Delete local data. With --bucket, clears one bucket; otherwise clears
everything. Destructive — requires --yes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !storeClearFlags.Yes {
			return fmt.Errorf("refusing to delete data without --yes")
		}

		deps, err := buildDeps()
		if err != nil {
			return err
		}
		defer deps.Close()

		if storeClearFlags.Bucket != "" {
			if err := deps.Store.ClearBucket(storeClearFlags.Bucket); err != nil {
				return fmt.Errorf("clearing bucket %s: %w", storeClearFlags.Bucket, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleared bucket %s\n", storeClearFlags.Bucket)
			return nil
		}
		if err := deps.Store.ClearAll(); err != nil {
			return fmt.Errorf("clearing store: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Cleared all local data")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storeStatsCmd)
	storeCmd.AddCommand(storeClearCmd)

	f := storeClearCmd.Flags()
	f.StringVar(&storeClearFlags.Bucket, "bucket", "", "clear only this bucket")
	f.BoolVar(&storeClearFlags.Yes, "yes", false, "confirm deletion")
}
