package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/five82/worldwise/internal/app"
	"github.com/five82/worldwise/internal/cities"
	"github.com/five82/worldwise/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "worldwise: %v\n", err)
		return 1
	}
	return 0
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "worldwise",
		Usage:     "Keep track of the cities you have visited",
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file (TOML or YAML)",
				Sources: cli.EnvVars("WORLDWISE_CONFIG"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return app.Run(ctx, app.Options{ConfigPath: cmd.String("config")})
		},
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list visited cities",
				Action: withEnv(func(ctx context.Context, cmd *cli.Command, env *app.Env) error {
					return app.List(ctx, env.Store, cmd.Root().Writer)
				}),
			},
			{
				Name:      "show",
				Usage:     "show one city",
				ArgsUsage: "ID",
				Action: withEnv(func(ctx context.Context, cmd *cli.Command, env *app.Env) error {
					id, err := idArg(cmd)
					if err != nil {
						return err
					}
					return app.Show(ctx, env.Store, id, cmd.Root().Writer)
				}),
			},
			{
				Name:  "add",
				Usage: "add a visited city",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "city name", Required: true},
					&cli.StringFlag{Name: "country", Usage: "country name"},
					&cli.StringFlag{Name: "emoji", Usage: "country flag emoji"},
					&cli.StringFlag{Name: "date", Usage: "visit date (YYYY-MM-DD, defaults to today)"},
					&cli.StringFlag{Name: "notes", Usage: "notes about the visit"},
					&cli.FloatFlag{Name: "lat", Usage: "latitude", Required: true},
					&cli.FloatFlag{Name: "lng", Usage: "longitude", Required: true},
				},
				Action: withEnv(func(ctx context.Context, cmd *cli.Command, env *app.Env) error {
					draft, err := draftFromFlags(cmd, time.Now())
					if err != nil {
						return err
					}
					return app.Add(ctx, env.Store, draft, cmd.Root().Writer)
				}),
			},
			{
				Name:      "rm",
				Aliases:   []string{"remove"},
				Usage:     "delete a city",
				ArgsUsage: "ID",
				Action: withEnv(func(ctx context.Context, cmd *cli.Command, env *app.Env) error {
					id, err := idArg(cmd)
					if err != nil {
						return err
					}
					return app.Remove(ctx, env.Store, id, cmd.Root().Writer)
				}),
			},
			{
				Name:  "countries",
				Usage: "list the countries you have visited",
				Action: withEnv(func(ctx context.Context, cmd *cli.Command, env *app.Env) error {
					return app.Countries(ctx, env.Store, cmd.Root().Writer)
				}),
			},
			{
				Name:  "logs",
				Usage: "print recent application log entries",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "lines", Aliases: []string{"n"}, Usage: "number of entries, 0 for all", Value: 50},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := config.Load(cmd.String("config"))
					if err != nil {
						return fmt.Errorf("load config: %w", err)
					}
					return app.Logs(cfg.LogFile, int(cmd.Int("lines")), cmd.Root().Writer)
				},
			},
			{
				Name:  "serve",
				Usage: "run the development cities backend",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "listen address"},
					&cli.StringFlag{Name: "db", Usage: "SQLite database path"},
					&cli.StringFlag{Name: "seed", Usage: "json-server style seed file loaded into an empty database"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := config.Load(cmd.String("config"))
					if err != nil {
						return fmt.Errorf("load config: %w", err)
					}
					if cmd.IsSet("addr") {
						cfg.Server.Addr = cmd.String("addr")
					}
					if cmd.IsSet("db") {
						cfg.Server.DBPath = cmd.String("db")
					}
					if cmd.IsSet("seed") {
						cfg.Server.SeedPath = cmd.String("seed")
					}
					if err := cfg.Server.Validate(); err != nil {
						return fmt.Errorf("validate server flags: %w", err)
					}
					return app.Serve(ctx, cfg, cmd.Root().ErrWriter)
				},
			},
		},
	}
}

// withEnv wires the store for a one-shot subcommand and tears it down after.
func withEnv(fn func(ctx context.Context, cmd *cli.Command, env *app.Env) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		env, err := app.Setup(app.Options{ConfigPath: cmd.String("config")})
		if err != nil {
			return err
		}
		defer env.Close()
		return fn(ctx, cmd, env)
	}
}

func idArg(cmd *cli.Command) (cities.ID, error) {
	if cmd.NArg() != 1 {
		return 0, fmt.Errorf("%s: expected exactly one city ID", cmd.Name)
	}
	return cities.ParseID(cmd.Args().First())
}

func draftFromFlags(cmd *cli.Command, now time.Time) (cities.Draft, error) {
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	if raw := cmd.String("date"); raw != "" {
		parsed, err := cities.ParseDate(raw)
		if err != nil {
			return cities.Draft{}, fmt.Errorf("--date: %w", err)
		}
		date = parsed
	}
	draft := cities.Draft{
		Name:     cmd.String("name"),
		Country:  cmd.String("country"),
		Emoji:    cmd.String("emoji"),
		Date:     date,
		Notes:    cmd.String("notes"),
		Position: cities.Position{Lat: cmd.Float("lat"), Lng: cmd.Float("lng")},
	}
	if err := draft.Validate(); err != nil {
		return cities.Draft{}, fmt.Errorf("invalid city: %w", err)
	}
	return draft, nil
}
