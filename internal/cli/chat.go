package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/shopchat-core/internal/core/domain"
	"github.com/custodia-labs/shopchat-core/internal/core/services"
)

var (
	chatSession    string
	chatShowChecks bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive conversation about the catalog",
	Long: `Starts an interactive loop. Each question is answered from the
catalog only. Type "clear" to reset the conversation and "exit" to
quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svcs := newServices(ctx)
		defer svcs.Close()

		retriever := services.NewHybridRetriever(newSearchEngine(), svcs, retrieverConfig(), retryPolicy(), logger)
		chat := services.NewChatService(ctx, services.ChatConfig{
			Retriever:    retriever,
			Reformulator: services.NewQueryReformulator(svcs, logger),
			Assembler:    services.NewContextAssembler(cfg.Chat.MaxContextDocs),
			Generator: services.NewResponseGenerator(svcs, services.GeneratorConfig{
				Temperature: cfg.Chat.Temperature,
				MaxTokens:   cfg.Chat.MaxTokens,
				Controlled:  cfg.Chat.Controlled,
			}, logger),
			Validator:       services.NewResponseValidator(cfg.Chat.MaxResponseWords, nil),
			SessionStore:    newSessionStore(),
			SessionID:       chatSession,
			MaxHistoryTurns: cfg.Chat.MaxHistoryTurns,
			TopK:            cfg.Retrieval.TopK,
			Logger:          logger,
		})

		fmt.Println("Ask about products (exit to quit, clear to reset):")
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				return scanner.Err()
			}
			question := strings.TrimSpace(scanner.Text())

			switch question {
			case "":
				continue
			case "exit", "quit":
				return nil
			case "clear":
				if err := chat.ClearHistory(ctx); err != nil {
					fmt.Printf("could not clear history: %v\n", err)
				} else {
					fmt.Println("Conversation cleared.")
				}
				continue
			}

			resp, err := chat.Ask(ctx, question)
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrRetrievalFailed):
					fmt.Println("Search is unavailable right now, please try again.")
				case errors.Is(err, domain.ErrGenerationFailed):
					fmt.Println("Could not generate an answer, please try again.")
				default:
					fmt.Printf("error: %v\n", err)
				}
				continue
			}

			fmt.Println(resp.Answer)
			if (chatShowChecks || cfg.Chat.Controlled) && !resp.Validation.Passed() {
				fmt.Printf("[checks failed: %s]\n", strings.Join(resp.Validation.Failed(), ", "))
			}
		}
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "", "session id for persistent history (requires redis)")
	chatCmd.Flags().BoolVar(&chatShowChecks, "checks", false, "print failed response checks")
	rootCmd.AddCommand(chatCmd)
}
