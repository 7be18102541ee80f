package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/speccanvas/speccanvas/analyze"
	"github.com/speccanvas/speccanvas/export"
	"github.com/speccanvas/speccanvas/server"
	"github.com/speccanvas/speccanvas/session"
	"github.com/speccanvas/speccanvas/spec"
)

// serveCmd runs the HTTP API around a session, optionally seeded from a
// snapshot file.
func serveCmd(configPath *string) *cobra.Command {
	var snapshotPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the editor HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			if snapshotPath == "" {
				snapshotPath = cfg.Snapshot.Path
			}
			g, err := loadGraph(snapshotPath)
			if err != nil {
				return err
			}

			sess := session.New(g)
			metrics := server.NewMetrics()
			scorer := analyze.NewRemoteScorer(a.client, a.logger,
				analyze.WithFallbackHook(func() { metrics.AnalysisFallbacks.Inc() }))

			trigger := session.NewTrigger(sess, scorer,
				session.WithSettle(cfg.Analysis.Settle),
				session.WithAnalysisTimeout(cfg.Analysis.Timeout),
				session.WithTriggerLogger(a.logger),
				session.WithOnScore(func(s *spec.Score) {
					a.publisher.ScoreComputed(s, sess.ContentHash(), scorer.HasRemote())
				}))
			defer trigger.Close()

			srv := server.New(server.Config{
				Session:   sess,
				Trigger:   trigger,
				Scorer:    scorer,
				Generator: a.generator,
				Publisher: a.publisher,
				Metrics:   metrics,
				Logger:    a.logger,
			})

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "Snapshot file to seed the session (overrides config)")
	return cmd
}

// scoreCmd scores a snapshot file once and prints the result.
func scoreCmd(configPath *string) *cobra.Command {
	var heuristicOnly bool

	cmd := &cobra.Command{
		Use:   "score <snapshot.json>",
		Short: "Score a spec snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			g, err := loadGraph(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Analysis.Timeout)
			defer cancel()

			var s *spec.Score
			if heuristicOnly {
				s = analyze.LocalScorer{}.Analyze(ctx, g)
			} else {
				s = a.scorer.Analyze(ctx, g)
			}
			a.publisher.ScoreComputed(s, g.ContentHash(), !heuristicOnly && a.scorer.HasRemote())

			printScore(cmd, s)
			return nil
		},
	}

	cmd.Flags().BoolVar(&heuristicOnly, "heuristic", false, "Skip the model even if configured")
	return cmd
}

// exportCmd renders a snapshot in the requested format.
func exportCmd(configPath *string) *cobra.Command {
	var (
		formatName string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "export <snapshot.json>",
		Short: "Export a spec snapshot as json, markdown, or prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGraph(args[0])
			if err != nil {
				return err
			}

			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}

			data, err := export.Render(format, g, nil)
			if err != nil {
				return err
			}

			if outPath == "" {
				cmd.OutOrStdout().Write(data)
				return nil
			}
			return os.WriteFile(outPath, data, 0644)
		},
	}

	cmd.Flags().StringVarP(&formatName, "format", "f", "markdown", "Output format (json, markdown, prompt)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")
	return cmd
}

// generateCmd fills one node field in a snapshot file.
func generateCmd(configPath *string) *cobra.Command {
	var (
		nodeID    string
		fieldName string
		write     bool
	)

	cmd := &cobra.Command{
		Use:   "generate <snapshot.json>",
		Short: "Generate content for one node field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			g, err := loadGraph(args[0])
			if err != nil {
				return err
			}

			field := spec.ParseFieldKind(fieldName)
			if field == "" {
				return fmt.Errorf("unknown field: %s", fieldName)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Analysis.Timeout)
			defer cancel()

			value, err := a.generator.Generate(ctx, g, nodeID, field)
			if err != nil {
				return err
			}
			a.publisher.FieldGenerated(nodeID, field, string(value.Source))

			if !write {
				rendered, err := json.MarshalIndent(value, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", rendered)
				return nil
			}

			value.Apply(g.NodeByID(nodeID))
			data, err := export.WriteJSON(g, nil)
			if err != nil {
				return err
			}
			return os.WriteFile(args[0], data, 0644)
		},
	}

	cmd.Flags().StringVar(&nodeID, "node", "", "Node ID to generate for")
	cmd.Flags().StringVar(&fieldName, "field", "", "Field to generate (intent, behavior, inputs, outputs, examples, constraints)")
	cmd.MarkFlagRequired("node")
	cmd.MarkFlagRequired("field")
	cmd.Flags().BoolVar(&write, "write", false, "Apply the value and rewrite the snapshot file")
	return cmd
}

// watchCmd watches a snapshot file, rescoring whenever it settles.
func watchCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <snapshot.json>",
		Short: "Watch a snapshot file and rescore on change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			g, err := loadGraph(args[0])
			if err != nil {
				return err
			}

			sess := session.New(g)
			trigger := session.NewTrigger(sess, a.scorer,
				session.WithSettle(cfg.Analysis.Settle),
				session.WithAnalysisTimeout(cfg.Analysis.Timeout),
				session.WithTriggerLogger(a.logger),
				session.WithOnScore(func(s *spec.Score) {
					a.publisher.ScoreComputed(s, sess.ContentHash(), a.scorer.HasRemote())
					printScore(cmd, s)
				}))
			defer trigger.Close()

			watcher, err := session.NewWatcher(session.WatcherConfig{
				Path:          args[0],
				DebounceDelay: cfg.Snapshot.Debounce,
				Logger:        a.logger,
			}, sess, trigger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Score the initial state before waiting for changes.
			printScore(cmd, trigger.Refresh(ctx))

			return watcher.Start(ctx)
		},
	}
	return cmd
}

func printScore(cmd *cobra.Command, s *spec.Score) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Overall: %d\n", s.Overall)
	fmt.Fprintf(out, "  Completeness: %d\n", s.Completeness.Score)
	fmt.Fprintf(out, "  Ambiguity:    %d\n", s.Ambiguity.Score)
	fmt.Fprintf(out, "  Consistency:  %d\n", s.Consistency.Score)
	fmt.Fprintf(out, "  Groundedness: %d\n", s.Groundedness.Score)

	for _, issue := range s.Issues {
		loc := ""
		if issue.NodeID != "" {
			loc = " [" + issue.NodeID + "]"
		}
		fmt.Fprintf(out, "%s%s: %s\n", issue.Severity, loc, issue.Message)
	}
	for _, suggestion := range s.Suggestions {
		fmt.Fprintf(out, "suggestion: %s\n", suggestion)
	}
}
