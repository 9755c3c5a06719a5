package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/sarifnav/internal/config"
	"github.com/standardbeagle/sarifnav/internal/debug"
	naverrors "github.com/standardbeagle/sarifnav/internal/errors"
	"github.com/standardbeagle/sarifnav/internal/display"
	"github.com/standardbeagle/sarifnav/internal/session"
	"github.com/standardbeagle/sarifnav/internal/version"
)

func main() {
	app := &cli.App{
		Name:                   "sarifnav",
		Usage:                  "Normalize and navigate static-analysis result logs",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path",
				Value:   ".sarifnav.kdl",
			},
			&cli.StringFlag{
				Name:  "roots-file",
				Usage: "Override the persisted root-paths file",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Write debug output to a log file",
			},
		},
		Commands: []*cli.Command{
			loadCommand(),
			rootsCommand(),
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				logPath, err := debug.InitDebugLogFile()
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "debug log: %s\n", logPath)
			}
			return nil
		},
		After: func(c *cli.Context) error {
			debug.CloseDebugLog()
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// signalContext cancels on SIGINT/SIGTERM so a mid-sweep abort still leaves
// the resolver's learned state intact.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func loadCommand() *cli.Command {
	return &cli.Command{
		Name:      "load",
		Usage:     "Normalize one or more result logs and print diagnostics",
		ArgsUsage: "<log.sarif> [more logs...]",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Additional root search path (repeatable, not persisted)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, compact, json",
				Value:   "text",
			},
			&cli.BoolFlag{
				Name:  "no-prompt",
				Usage: "Disable the interactive resolution fallback",
			},
			&cli.BoolFlag{
				Name:  "show-rules",
				Usage: "Show rule ids after each message",
			},
			&cli.BoolFlag{
				Name:  "watch-roots",
				Usage: "Keep running and re-resolve when the persisted roots change",
			},
		},
		Action: runLoad,
	}
}

func runLoad(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("no log files given", 1)
	}

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	store, err := config.NewRootStore(c.String("roots-file"))
	if err != nil {
		return err
	}
	roots, err := store.Load()
	if err != nil {
		return err
	}
	roots = append(roots, c.StringSlice("root")...)

	cwd, _ := os.Getwd()
	formatter := display.NewFormatter(display.FormatterOptions{
		Format:     c.String("format"),
		ShowRules:  c.Bool("show-rules"),
		RelativeTo: cwd,
	})

	opts := session.Options{
		Roots:      roots,
		Sink:       formatter,
		MaxPerFile: cfg.Diagnostics.MaxPerFile,
		Include:    cfg.Resolution.Include,
		Exclude:    cfg.Resolution.Exclude,
	}
	if cfg.Resolution.PromptEnabled && !c.Bool("no-prompt") {
		opts.Prompter = newStdinPrompter()
	}
	sess := session.New(opts)

	ctx, cancel := signalContext()
	defer cancel()

	paths := make([]string, c.NArg())
	for i := 0; i < c.NArg(); i++ {
		abs, err := filepath.Abs(c.Args().Get(i))
		if err != nil {
			return err
		}
		paths[i] = abs
	}

	errs := sess.LoadLogs(ctx, paths)
	if len(errs) == len(paths) {
		return naverrors.NewMultiError(errs)
	}
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	fmt.Print(formatter.Format())
	mapped, unmapped := sess.Index().Counts()
	fmt.Printf("\n%d results (%d mapped, %d unmapped)\n", mapped+unmapped, mapped, unmapped)

	if c.Bool("watch-roots") {
		watcher, err := config.NewRootWatcher(store, func(roots []string) {
			sess.SetRoots(roots)
			fmt.Print(formatter.Format())
		})
		if err != nil {
			return err
		}
		if err := watcher.Start(); err != nil {
			return err
		}
		defer watcher.Stop()
		fmt.Fprintln(os.Stderr, "watching root paths; Ctrl-C to exit")
		<-ctx.Done()
	}

	return nil
}

func rootsCommand() *cli.Command {
	return &cli.Command{
		Name:  "roots",
		Usage: "Manage the persisted root search paths",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Print the persisted root search paths",
				Action: func(c *cli.Context) error {
					store, err := config.NewRootStore(c.String("roots-file"))
					if err != nil {
						return err
					}
					roots, err := store.Load()
					if err != nil {
						return err
					}
					for _, root := range roots {
						fmt.Println(root)
					}
					return nil
				},
			},
			{
				Name:      "add",
				Usage:     "Persist a root search path",
				ArgsUsage: "<dir>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("expected one directory", 1)
					}
					abs, err := filepath.Abs(c.Args().First())
					if err != nil {
						return err
					}
					store, err := config.NewRootStore(c.String("roots-file"))
					if err != nil {
						return err
					}
					added, err := store.Add(abs)
					if err != nil {
						return err
					}
					if !added {
						fmt.Println("already present")
					}
					return nil
				},
			},
			{
				Name:      "remove",
				Usage:     "Remove a persisted root search path",
				ArgsUsage: "<dir>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("expected one directory", 1)
					}
					abs, err := filepath.Abs(c.Args().First())
					if err != nil {
						return err
					}
					store, err := config.NewRootStore(c.String("roots-file"))
					if err != nil {
						return err
					}
					removed, err := store.Remove(abs)
					if err != nil {
						return err
					}
					if !removed {
						fmt.Println("not present")
					}
					return nil
				},
			},
		},
	}
}
