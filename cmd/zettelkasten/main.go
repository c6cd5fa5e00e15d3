package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vonshlovens/zettelkasten/internal/config"
	"github.com/vonshlovens/zettelkasten/internal/export"
	"github.com/vonshlovens/zettelkasten/internal/scanner"
	"github.com/vonshlovens/zettelkasten/internal/watcher"
	"github.com/vonshlovens/zettelkasten/internal/zettel"
)

var (
	cfgFile string
	verbose bool
	version = "dev"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "zettelkasten",
		Short:   "Ingest a Markdown zettel corpus into a normalized, searchable form",
		Long:    `Parses a directory of Markdown zettels, runs them through the migration/consistency pipeline, and exposes the result for filtering, search, caching, and export.`,
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	rootCmd.AddCommand(
		parseCmd(),
		scanCmd(),
		filterCmd(),
		searchCmd(),
		cacheCmd(),
		watchCmd(),
		exportCmd(),
		migrateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// parseCmd implements the `parse_file` operation of spec.md §6: a single
// file, run through the full pipeline, emitted as JSON.
func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse and normalize a single zettel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			note, err := zettel.ParseFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}
			zettel.ProcessNote(note)
			return printJSON(note)
		},
	}
}

// scanCmd implements `load_all`.
func scanCmd() *cobra.Command {
	var extensions []string

	cmd := &cobra.Command{
		Use:   "scan <dir>",
		Short: "Parse and normalize every zettel under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			notes, err := scanner.LoadAll(cmd.Context(), args[0], extensions)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "scanned %d notes\n", len(notes))
			return printJSON(notes)
		},
	}
	cmd.Flags().StringSliceVar(&extensions, "ext", nil, "file extensions to include (default .md)")
	return cmd
}

// filterCmd implements `load_filtered`. Conditions are given as repeated
// key=value flags; values are parsed as bool, then int, then left as string.
func filterCmd() *cobra.Command {
	var extensions []string
	var conditions []string

	cmd := &cobra.Command{
		Use:   "filter <dir>",
		Short: "Load zettels whose metadata matches every given condition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eq, err := parseConditions(conditions)
			if err != nil {
				return err
			}
			notes, err := scanner.LoadFiltered(cmd.Context(), args[0], extensions, eq)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "matched %d notes\n", len(notes))
			return printJSON(notes)
		},
	}
	cmd.Flags().StringSliceVar(&extensions, "ext", nil, "file extensions to include (default .md)")
	cmd.Flags().StringSliceVar(&conditions, "where", nil, "metadata equality filter, key=value (repeatable)")
	return cmd
}

// searchCmd implements `search`.
func searchCmd() *cobra.Command {
	var extensions []string

	cmd := &cobra.Command{
		Use:   "search <dir> <query>",
		Short: "Case-insensitive substring search over headings, bodies, title, and tags",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			notes, err := scanner.Search(cmd.Context(), args[0], args[1], extensions)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "found %d notes\n", len(notes))
			return printJSON(notes)
		},
	}
	cmd.Flags().StringSliceVar(&extensions, "ext", nil, "file extensions to include (default .md)")
	return cmd
}

// cacheCmd groups the warm-cache operations of spec.md §4.8/§4.9:
// `load_cached` and `refresh_cache`.
func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Metadata cache operations",
	}
	cmd.AddCommand(cacheRefreshCmd(), cacheLoadCmd())
	return cmd
}

func cacheRefreshCmd() *cobra.Command {
	var extensions []string
	var cachePath string

	cmd := &cobra.Command{
		Use:   "refresh <dir>",
		Short: "Re-walk dir, reparse stale/new files, drop deleted entries, and save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := resolveCachePath(cachePath, args[0])
			summary, err := scanner.RefreshCache(cmd.Context(), args[0], extensions, path)
			if err != nil {
				return err
			}
			if summary == "" {
				fmt.Println("no changes")
			} else {
				fmt.Println(summary)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&extensions, "ext", nil, "file extensions to include (default .md)")
	cmd.Flags().StringVar(&cachePath, "cache", "", "cache file path (default <dir>/.zettelkasten-cache)")
	return cmd
}

func cacheLoadCmd() *cobra.Command {
	var extensions []string
	var cachePath string
	var conditions []string

	cmd := &cobra.Command{
		Use:   "load <dir>",
		Short: "Warm-or-cold load via the metadata cache, filtered by --where",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eq, err := parseConditions(conditions)
			if err != nil {
				return err
			}
			path := resolveCachePath(cachePath, args[0])
			notes, err := scanner.LoadCached(cmd.Context(), args[0], extensions, eq, path)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "loaded %d notes\n", len(notes))
			return printJSON(notes)
		},
	}
	cmd.Flags().StringSliceVar(&extensions, "ext", nil, "file extensions to include (default .md)")
	cmd.Flags().StringVar(&cachePath, "cache", "", "cache file path (default <dir>/.zettelkasten-cache)")
	cmd.Flags().StringSliceVar(&conditions, "where", nil, "metadata equality filter, key=value (repeatable)")
	return cmd
}

// watchCmd watches a corpus directory and refreshes the cache on every
// settled burst of filesystem changes, per internal/watcher's debounced
// batching.
func watchCmd() *cobra.Command {
	var extensions []string
	var cachePath string
	var debounceMs int

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Watch a corpus and refresh the metadata cache on change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			path := resolveCachePath(cachePath, dir)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			w, err := watcher.New(dir, extensions, debounceMs, nil, nil)
			if err != nil {
				return fmt.Errorf("failed to create watcher: %w", err)
			}
			if err := w.Start(ctx); err != nil {
				return fmt.Errorf("failed to start watcher: %w", err)
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				w.Flush()
				cancel()
			}()

			slog.Info("watching corpus", "path", dir, "cache", path)
			fmt.Println("Watching for changes. Press Ctrl+C to stop.")

			w.Run(ctx, time.Duration(debounceMs)*time.Millisecond, func(batch []watcherEvent) {
				summary, err := scanner.RefreshCache(context.Background(), dir, extensions, path)
				if err != nil {
					slog.Error("cache refresh failed", "error", err)
					return
				}
				if summary != "" {
					fmt.Println(summary)
				}
			})

			w.Stop()
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&extensions, "ext", nil, "file extensions to include (default .md)")
	cmd.Flags().StringVar(&cachePath, "cache", "", "cache file path (default <dir>/.zettelkasten-cache)")
	cmd.Flags().IntVar(&debounceMs, "debounce-ms", 500, "event debounce window in milliseconds")
	return cmd
}

// exportCmd pushes the processed corpus into the configured Postgres sink.
func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Push the normalized corpus into the configured Postgres sink",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.Export == nil {
				return fmt.Errorf("no export.database configured")
			}

			database, err := export.New(ctx, &cfg.Export.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to export database: %w", err)
			}
			defer database.Close()

			engine := export.NewEngine(database, cfg)
			if err := engine.FullExport(ctx); err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			fmt.Println("Export completed successfully.")
			return nil
		},
	}
}

// migrateCmd runs the export sink's schema migrations.
func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run the export sink's database migrations",
	}

	migrationsDir := ""
	cmd.Flags().StringVar(&migrationsDir, "dir", "migrations", "migrations directory")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.Export == nil {
			return fmt.Errorf("no export.database configured")
		}

		database, err := export.New(ctx, &cfg.Export.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to export database: %w", err)
		}
		defer database.Close()

		if !filepath.IsAbs(migrationsDir) {
			exe, _ := os.Executable()
			exeDir := filepath.Dir(exe)
			if _, err := os.Stat(filepath.Join(exeDir, migrationsDir)); err == nil {
				migrationsDir = filepath.Join(exeDir, migrationsDir)
			} else {
				cwd, _ := os.Getwd()
				migrationsDir = filepath.Join(cwd, migrationsDir)
			}
		}

		if err := database.RunMigrations(ctx, migrationsDir); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		fmt.Println("Migrations completed successfully.")
		return nil
	}

	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// resolveCachePath mirrors config.Load's default: <dir>/.zettelkasten-cache
// unless an explicit --cache path was given.
func resolveCachePath(explicit, dir string) string {
	if explicit != "" {
		return explicit
	}
	return filepath.Join(dir, ".zettelkasten-cache")
}

// parseConditions turns repeated "key=value" strings into a scanner.MetadataEq,
// parsing each value as bool, then int, then falling back to string — and
// rejecting anything it can't express as one of those three scalar kinds
// (spec.md §7: unknown filter value types are a type error before scanning
// begins).
func parseConditions(conditions []string) (scanner.MetadataEq, error) {
	eq := make(scanner.MetadataEq, len(conditions))
	for _, c := range conditions {
		key, raw, ok := strings.Cut(c, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --where %q, expected key=value", c)
		}

		var parsed any
		switch raw {
		case "true":
			parsed = true
		case "false":
			parsed = false
		default:
			if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
				parsed = i
			} else {
				parsed = raw
			}
		}

		v, err := zettel.ScalarFromAny(parsed)
		if err != nil {
			return nil, err
		}
		eq[key] = v
	}
	return eq, nil
}

type watcherEvent = watcher.FileEvent
