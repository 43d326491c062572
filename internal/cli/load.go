package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/shopchat-core/internal/catalog"
)

var loadCmd = &cobra.Command{
	Use:   "load <catalog.json>",
	Short: "Load a product catalog file into the index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		engine := newSearchEngine()

		exists, err := engine.IndexExists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("index %q does not exist, run setup first", cfg.Elasticsearch.Index)
		}

		svcs := newServices(ctx)
		defer svcs.Close()

		loader := catalog.NewLoader(engine, svcs, logger)
		loader.ShowProgress = true

		result, err := loader.LoadFile(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("\nIndexed %d products", result.Indexed)
		if result.Skipped > 0 {
			fmt.Printf(" (%d malformed records skipped)", result.Skipped)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
