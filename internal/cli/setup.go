package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/shopchat-core/internal/adapters/driven/elastic"
	"github.com/custodia-labs/shopchat-core/internal/core/domain"
)

var setupTeardown bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Provision the product index in Elasticsearch",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		engine := newSearchEngine()

		if err := engine.HealthCheck(ctx); err != nil {
			return fmt.Errorf("elasticsearch is not reachable: %w", err)
		}

		dims := 0
		if cfg.Method() == domain.EmbeddingDense {
			svcs := newServices(ctx)
			defer svcs.Close()
			if embedder := svcs.EmbeddingService(); embedder != nil {
				dims = embedder.Dimensions()
			}
			if dims == 0 {
				return fmt.Errorf("dense mode needs a configured embedding provider")
			}
		}

		provisioner := elastic.NewProvisioner(engine, dims)
		if setupTeardown {
			if err := provisioner.Teardown(ctx); err != nil {
				return err
			}
			fmt.Println("Existing index removed")
		}

		created, err := provisioner.Provision(ctx, cfg.Method())
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("Created index %q (%s mode)\n", cfg.Elasticsearch.Index, cfg.Method())
		} else {
			fmt.Printf("Index %q already exists\n", cfg.Elasticsearch.Index)
		}
		return nil
	},
}

func init() {
	setupCmd.Flags().BoolVar(&setupTeardown, "recreate", false, "delete the index first and provision it from scratch")
	rootCmd.AddCommand(setupCmd)
}
