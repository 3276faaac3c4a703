package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/tacit-sh/tacit/internal/config"
	"github.com/tacit-sh/tacit/internal/errors"
	"github.com/tacit-sh/tacit/internal/ops"
	"github.com/tacit-sh/tacit/internal/rank"
	"github.com/tacit-sh/tacit/internal/vector"
	"github.com/tacit-sh/tacit/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "tacit",
		Usage:   "Completion feedback and context relevance tracking",
		Version: Version,
		Commands: []*cli.Command{
			statsCmd(db),
			feedbackCmd(db),
			rankCmd(db, cfg),
			reportCmd(db, cfg),
			purgeCmd(db, cfg),
			deleteCmd(db),
			webCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// statsCmd creates the stats command.
func statsCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show acceptance rates and activity per path",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Maximum paths per section"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Stats(db, ops.StatsInput{
				Limit: c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// feedbackCmd creates the feedback command.
func feedbackCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "feedback",
		Usage: "List recorded completion feedback, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Filter by file path"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.FeedbackList(db, ops.FeedbackListInput{
				Path:   c.String("path"),
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// rankCmd creates the rank command.
func rankCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "rank",
		Usage:     "Rank tracked paths by predicted relevance",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 10, Usage: "Maximum paths to return"},
		},
		Action: func(c *cli.Context) error {
			input := ops.RankInput{
				Limit: c.Int("limit"),
			}
			if c.NArg() > 0 {
				input.Query = c.Args().First()
			}

			// A query needs the workspace vector store; without one the
			// ranking falls back to activity signals only.
			var store *vector.Store
			if input.Query != "" {
				if s, err := openWorkspaceStore(cfg); err == nil {
					store = s
					defer store.Close()
				}
			}

			output, err := ops.Rank(context.Background(), db, store, rank.FromConfig(cfg), input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// reportCmd creates the report command.
func reportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Print a markdown summary of feedback and activity",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Maximum paths per section"},
			&cli.BoolFlag{Name: "json", Usage: "Emit JSON instead of raw markdown"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Report(db, rank.FromConfig(cfg), ops.ReportInput{
				Limit: c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}
			if c.Bool("json") {
				return outputJSON(output)
			}
			fmt.Println(output.Markdown)
			return nil
		},
	}
}

// purgeCmd creates the purge command.
func purgeCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "Delete feedback records older than the retention window",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "retention-days", Usage: "Override configured retention (days)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Purge(db, cfg, ops.PurgeInput{
				RetentionDays: c.Int("retention-days"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Forget everything recorded for a path",
		ArgsUsage: "<path>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("path argument is required"))
			}
			output, err := ops.Delete(db, nil, ops.DeleteInput{
				Path: c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// webCmd creates the web command.
func webCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Run the local dashboard",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 8321, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(db, cfg, Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// Helper functions

// openWorkspaceStore opens the vector store for the current directory's
// workspace.
func openWorkspaceStore(cfg *config.Config) (*vector.Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	workDir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return vector.Open(filepath.Join(homeDir, ".tacit"), workDir, vector.FromConfig(cfg))
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if tErr, ok := err.(*errors.TacitError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", tErr.Code, tErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
