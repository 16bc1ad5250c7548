// Package cli is the hrmsync command line: it edits the local employee
// store and migrates it to the intake server.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli"

	"hrmsync/internal/domain/attachments"
	"hrmsync/internal/domain/localstore"
	"hrmsync/internal/platform/config"
	"hrmsync/internal/platform/kv"
)

type metadata struct {
	ctx     context.Context
	cancel  context.CancelFunc
	cfg     config.ClientConfig
	kv      kv.Storage
	closer  io.Closer
	store   *localstore.Store
	verbose bool
	r       io.Reader
	w       io.Writer
	e       io.Writer
}

func getMetadata(c *cli.Context) *metadata {
	return c.App.Metadata["env"].(*metadata)
}

// NewApp builds the command line application. version is reported by
// --version; r feeds prompts that are not read from a terminal.
func NewApp(version string, r io.Reader, w, e io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "hrmsync"
	app.Usage = "manage the local employee store and migrate it to the server"
	app.Version = version
	app.Writer = w
	app.ErrWriter = e
	app.Metadata = map[string]interface{}{}

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " log debug output",
		},
		cli.StringFlag{
			Name:  "store, s",
			Value: "",
			Usage: " local storage backend `KIND` [memory|sqlite|leveldb]",
		},
		cli.StringFlag{
			Name:  "path, p",
			Value: "",
			Usage: " local storage `PATH`",
		},
		cli.StringFlag{
			Name:  "server",
			Value: "",
			Usage: " intake server base `URL`",
		},
		cli.StringFlag{
			Name:  "token",
			Value: "",
			Usage: " bearer `TOKEN`, defaults to the one saved by login",
		},
	}
	app.Commands = commands()

	app.Before = func(c *cli.Context) error {
		verbose := c.GlobalBool("verbose")
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(e, &slog.HandlerOptions{Level: level})))

		switch c.Args().Get(0) {
		case "", "help", "h":
			return nil
		}

		cfg := config.LoadClient()
		if v := c.GlobalString("store"); v != "" {
			cfg.StoreKind = v
		}
		if v := c.GlobalString("path"); v != "" {
			cfg.StorePath = v
		}
		if v := c.GlobalString("server"); v != "" {
			cfg.ServerURL = v
		}
		if v := c.GlobalString("token"); v != "" {
			cfg.Token = v
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		storage, closer, err := kv.Open(ctx, cfg.StoreKind, cfg.StorePath, cfg.QuotaBytes)
		if err != nil {
			cancel()
			return fmt.Errorf("open %s store: %w", cfg.StoreKind, err)
		}
		if verbose {
			fmt.Fprintf(e, "using %s store: %s\n", cfg.StoreKind, cfg.StorePath)
		}

		store := localstore.New(storage, localstore.Options{
			MaxSizeBytes:      cfg.MaxFileBytes,
			PreservedKeys:     cfg.PreservedKeys,
			DefaultQuotaBytes: cfg.QuotaBytes,
			Attachments:       attachments.Options{MaxSizeBytes: cfg.MaxFileBytes},
		})
		store.StartQuotaRefresher(ctx, 10*time.Minute)

		c.App.Metadata["env"] = &metadata{
			ctx:     ctx,
			cancel:  cancel,
			cfg:     cfg,
			kv:      storage,
			closer:  closer,
			store:   store,
			verbose: verbose,
			r:       r,
			w:       w,
			e:       e,
		}
		return nil
	}

	app.After = func(c *cli.Context) error {
		m, ok := c.App.Metadata["env"].(*metadata)
		if !ok {
			return nil
		}
		m.cancel()
		return m.closer.Close()
	}

	return app
}

// Run executes the application with os.Args and exits non-zero on failure.
func Run(version string) {
	app := NewApp(version, os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}
