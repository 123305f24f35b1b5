// Command chessd is a demonstration transport binding the session registry
// to the outside world: a tiny HTTP+WebSocket server exposing the command
// surface spec.md §6 describes as transport-agnostic. It exists to show the
// registry and session actor running end to end, not as the shipped
// production transport.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/benediktms/chesstty/pkg/config"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"github.com/spf13/cobra"
)

var version = build.NewVersion(0, 1, 0)

func main() {
	root := &cobra.Command{
		Use:     "chessd",
		Short:   "chesstty session daemon",
		Version: fmt.Sprintf("%v", version),
	}

	var addr string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "run the session daemon HTTP/WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), addr)
		},
	}
	serve.Flags().StringVar(&addr, "addr", ":8080", "address to listen on")
	root.AddCommand(serve)

	var enginePath string
	analyze := &cobra.Command{
		Use:   "analyze <game-id>",
		Short: "run the post-game analysis pipeline over a finished game and persist the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), args[0], enginePath)
		},
	}
	analyze.Flags().StringVar(&enginePath, "engine", config.AnalysisEnginePath(), "UCI engine binary to analyze with")
	root.AddCommand(analyze)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		logw.Exitf(ctx, "chessd: %v", err)
	}
}

func runServe(ctx context.Context, addr string) error {
	logw.Infof(ctx, "chessd starting on %v (data dir=%v, db=%v, socket=%v)",
		addr, config.LegacyDataDir(), config.DBPath(), config.SocketPath())

	srv, err := NewServer(ctx)
	if err != nil {
		return fmt.Errorf("chessd: build server: %w", err)
	}
	defer srv.Close()

	return srv.ListenAndServe(ctx, addr)
}

// runAnalyze loads a finished game by ID and re-runs the analysis pipeline
// over it on demand, independent of the enqueue-on-finish path in NewServer.
func runAnalyze(ctx context.Context, gameID, enginePath string) error {
	if enginePath == "" {
		return fmt.Errorf("chessd: no analysis engine configured (pass --engine or set CHESSTTY_ANALYSIS_ENGINE)")
	}

	stores, err := openStores(config.DBPath())
	if err != nil {
		return fmt.Errorf("chessd: open stores: %w", err)
	}
	defer stores.Close()

	game, ok, err := stores.Games.Load(gameID)
	if err != nil {
		return fmt.Errorf("chessd: load game %v: %w", gameID, err)
	}
	if !ok {
		return fmt.Errorf("chessd: no finished game %v on record", gameID)
	}

	result, err := runAnalysisPipeline(ctx, stores, enginePath, gameID, game.Moves)
	if err != nil {
		return err
	}

	logw.Infof(ctx, "chessd: analysis for %v complete (%d plies reviewed)", gameID, len(result.Positions))
	return nil
}
