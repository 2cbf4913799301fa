package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/grille/internal"
	"github.com/starford/grille/internal/clueindex"
	"github.com/starford/grille/internal/grid"
	"github.com/starford/grille/internal/puzzle"
	pkgconfig "github.com/starford/grille/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

func validate(_ context.Context, cmd *cli.Command) error {
	files := cmd.Args().Slice()
	if len(files) == 0 {
		return fmt.Errorf("at least one puzzle file is required")
	}
	failed := 0
	for _, name := range files {
		if err := validateFile(name); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d puzzle(s) invalid", failed, len(files))
	}
	return nil
}

func validateFile(name string) error {
	data, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	p, err := puzzle.Parse(data, filepath.Ext(name))
	if err != nil {
		return err
	}
	if _, err := grid.Build(p.Rows(), p.Cols(), p.Entries, nil); err != nil {
		return err
	}
	if _, err := clueindex.New(p); err != nil {
		return err
	}
	fmt.Printf("%s: ok (%s, %dx%d, %d entries, solutions: %t)\n",
		name, p.ID, p.Cols(), p.Rows(), len(p.Entries), p.HasSolutions())
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "grille",
		Usage:  "Interactive crossword engine with a file-backed puzzle catalog, play sessions and live events",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "mcp",
				Usage:  "Serve the puzzle and play tools over MCP on stdio",
				Action: runMCP,
			},
			{
				Name:      "validate",
				Usage:     "Check puzzle files without starting the server",
				ArgsUsage: "<file> [file...]",
				Action:    validate,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
