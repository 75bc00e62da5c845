package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ternarybob/onboard/internal/app"
	"github.com/ternarybob/onboard/internal/common"
	"github.com/ternarybob/onboard/internal/services/chat"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question from the terminal",
	Long: `Answers a single question, or starts an interactive session reading one
question per line from stdin when no question is given. The session keeps
conversation history until the command exits.`,
	RunE: runAsk,
}

var (
	askRole    string
	askRaw     bool
	askDocs    string
	askVerbose bool
)

func init() {
	askCmd.Flags().StringVar(&askRole, "role", "", "Business role of the new hire")
	askCmd.Flags().BoolVar(&askRaw, "raw", false, "Return matched document text without calling the model")
	askCmd.Flags().StringVar(&askDocs, "docs", "", "Documents directory (overrides config)")
	askCmd.Flags().BoolVarP(&askVerbose, "verbose", "v", false, "Print intent, matched document and score")
}

func runAsk(cmd *cobra.Command, args []string) error {
	common.ApplyFlagOverrides(config, 0, "", askDocs)
	if askRaw {
		config.Chat.ComposeAnswers = false
	}

	application, err := app.New(config, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer application.Close()

	session := application.Sessions.GetOrCreate("")
	if askRole != "" {
		session.SetBusinessRole(askRole)
	}

	if len(args) > 0 {
		return askOnce(cmd.Context(), application, session, strings.Join(args, " "), os.Stdout)
	}
	return askInteractive(cmd.Context(), application, session, os.Stdin, os.Stdout)
}

func askOnce(ctx context.Context, application *app.App, session *chat.Session, question string, out io.Writer) error {
	answer, err := application.OnboardingService.HandleQuery(ctx, question, session)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, answer.Text)
	if askVerbose {
		fmt.Fprintf(out, "\n[intent=%s document=%q signal=%s score=%.3f]\n",
			answer.Intent, answer.DocumentID, answer.Signal, answer.Score)
	}
	return nil
}

func askInteractive(ctx context.Context, application *app.App, session *chat.Session, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Ask a question (Ctrl+D to exit)")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if err := askOnce(ctx, application, session, question, out); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
}
