package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/connectfour-go/internal/client"
	"github.com/mcoot/connectfour-go/internal/dependencies/random"
	"github.com/mcoot/connectfour-go/internal/model"
	"github.com/mcoot/connectfour-go/internal/protocol"
)

// BotOptions configures the bot command
type BotOptions struct {
	Count      int
	Prefix     string
	Strategy   string
	Games      int
	Rematch    bool
	RetryDelay time.Duration
}

func newBotCmd() *cobra.Command {
	opts := BotOptions{
		Count:      2,
		Prefix:     "bot",
		Strategy:   "random",
		Games:      1,
		Rematch:    true,
		RetryDelay: client.DefaultRetryDelay,
	}

	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Connect automated players to a server",
		Long: `bot connects a number of automated players to the server's game endpoint.
Each registers as <prefix>-<n>, asks for games and plays until it has finished
--games games (0 plays until interrupted). A summary is printed at the end.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			summaries, err := RunBots(ctx, cfg.WebSocketURL(), opts, logger)
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(summaries)
			return err
		},
	}

	cmd.Flags().IntVarP(&opts.Count, "count", "n", opts.Count, "Number of bots")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", opts.Prefix, "Username prefix")
	cmd.Flags().StringVar(&opts.Strategy, "strategy", opts.Strategy,
		"Move strategy: "+strings.Join(model.ValidBotStrategies(), ", "))
	cmd.Flags().IntVar(&opts.Games, "games", opts.Games, "Games each bot plays before leaving (0 for no limit)")
	cmd.Flags().BoolVar(&opts.Rematch, "rematch", opts.Rematch, "Ask for another game after each result")
	cmd.Flags().DurationVar(&opts.RetryDelay, "retry-delay", opts.RetryDelay, "Wait before asking again when no opponent is available")

	return cmd
}

// RunBots connects opts.Count agents to url and runs them until they finish
// or ctx ends. Summaries are returned in bot order.
func RunBots(ctx context.Context, url string, opts BotOptions, logger *slog.Logger) ([]client.Summary, error) {
	if opts.Count < 1 {
		return nil, fmt.Errorf("--count must be at least 1")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rnd := random.New()
	codec := protocol.NewMsgpackCodec()

	summaries := make([]client.Summary, opts.Count)
	errs := make([]error, opts.Count)

	strategy, err := client.NewStrategy(opts.Strategy, rnd)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	for i := range opts.Count {
		conn, err := client.Dial(ctx, url, codec)
		if err != nil {
			cancel()
			wg.Wait()
			return summaries[:i], err
		}

		agent := client.NewAgent(client.AgentConfig{
			Username:   fmt.Sprintf("%s-%d", opts.Prefix, i+1),
			Strategy:   strategy,
			MaxGames:   opts.Games,
			Rematch:    opts.Rematch,
			RetryDelay: opts.RetryDelay,
		}, conn, logger)

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { _ = conn.Close() }()
			summaries[i], errs[i] = agent.Run(ctx)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil && !errors.Is(err, context.Canceled) {
			return summaries, err
		}
	}
	return summaries, nil
}
