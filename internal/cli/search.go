package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/shopchat-core/internal/core/services"
)

var (
	searchTopK int
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "One-shot hybrid retrieval without conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svcs := newServices(ctx)
		defer svcs.Close()

		retriever := services.NewHybridRetriever(newSearchEngine(), svcs, retrieverConfig(), retryPolicy(), logger)

		topK := searchTopK
		if topK <= 0 {
			topK = cfg.Retrieval.TopK
		}
		result, err := retriever.Retrieve(ctx, args[0], topK)
		if err != nil {
			return err
		}

		if searchJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(result)
		}

		if result.Empty() {
			fmt.Println("No matching products.")
			return nil
		}

		fmt.Printf("%d results (%s mode, %d total hits)\n\n", len(result.Results), result.Mode, result.TotalHits)
		for i, rp := range result.Results {
			fmt.Printf("%2d. %-30s %10s  [%s, score %.4f]\n",
				i+1, rp.Product.Name, services.FormatPrice(rp.Product.Price), rp.Method, rp.Score)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top", "k", 0, "number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print the raw retrieval result as JSON")
	rootCmd.AddCommand(searchCmd)
}
