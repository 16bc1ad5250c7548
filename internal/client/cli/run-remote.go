package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli"

	"hrmsync/internal/client/remote"
	"hrmsync/internal/domain/migration"
)

const (
	tokenKey = "token"
	userKey  = "user"
)

var errNotLoggedIn = errors.New("not logged in: run login or pass --token")

// remoteClient authenticates with the configured token or, failing that, the
// one saved by login.
func (m *metadata) remoteClient() (*remote.Client, error) {
	token := m.cfg.Token
	if token == "" {
		saved, ok, err := m.kv.Get(m.ctx, tokenKey)
		if err != nil {
			return nil, err
		}
		if ok {
			token = saved
		}
	}
	if token == "" {
		return nil, errNotLoggedIn
	}
	return remote.New(m.cfg.ServerURL, token, m.cfg.RequestTimeout), nil
}

func runLogin(c *cli.Context) error {
	m := getMetadata(c)
	email := strings.TrimSpace(c.String("email"))
	if email == "" {
		return errors.New("login: --email is required")
	}
	password, err := promptPassword(m.r, m.e, c.Bool("password-stdin"))
	if err != nil {
		return err
	}

	result, err := remote.New(m.cfg.ServerURL, "", m.cfg.RequestTimeout).Login(m.ctx, email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	user, err := json.Marshal(result.User)
	if err != nil {
		return err
	}
	if err := m.kv.Set(m.ctx, tokenKey, result.Token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if err := m.kv.Set(m.ctx, userKey, string(user)); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	fmt.Fprintf(m.w, "logged in as %s (%s)\n", email, result.User.Role)
	return nil
}

func runMigrate(c *cli.Context) error {
	m := getMetadata(c)
	client, err := m.remoteClient()
	if err != nil {
		return err
	}

	opts := migration.Options{Workers: c.Int("workers"), RateLimit: c.Float64("rate")}
	if opts.Workers <= 0 {
		opts.Workers = m.cfg.Workers
	}
	if opts.RateLimit < 0 {
		opts.RateLimit = m.cfg.RatePerSecond
	}

	ctx, stop := signal.NotifyContext(m.ctx, os.Interrupt)
	defer stop()
	summary := migration.NewOrchestrator(m.store, client, opts).Migrate(ctx)

	if path := c.String("report"); path != "" {
		if err := writeReport(path, summary); err != nil {
			return err
		}
		if m.verbose {
			fmt.Fprintf(m.e, "report written to %s\n", path)
		}
	}

	if c.Bool("json") {
		if err := printJSON(m.w, summary); err != nil {
			return err
		}
	} else {
		printSummary(m, summary)
	}

	if !summary.Success && summary.Message != migration.MessageNoData {
		return errors.New(summary.Message)
	}
	return nil
}

func writeReport(path string, summary migration.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := migration.WriteReportPDF(f, summary); err != nil {
		_ = f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}

func printSummary(m *metadata, summary migration.Summary) {
	fmt.Fprintln(m.w, summary.Message)
	if len(summary.Details) == 0 {
		return
	}
	tw := tabwriter.NewWriter(m.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LOCAL ID\tNAME\tSERVER ID\tSTATUS\tERROR")
	for _, d := range summary.Details {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.EmployeeID, d.Name, d.NewID, d.Status, d.Error)
	}
	_ = tw.Flush()
}

func runRemoteList(c *cli.Context) error {
	m := getMetadata(c)
	client, err := m.remoteClient()
	if err != nil {
		return err
	}
	page, err := client.ListEmployees(m.ctx, c.Int("limit"), c.Int("offset"))
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(m.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SERVER ID\tLOCAL ID\tNAME\tEMAIL\tENTRIES")
	for _, e := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s %s\t%s\t%d\n", e.ID, e.SourceID, e.FirstName, e.LastName, e.Email, e.Entries)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(m.w, "%d of %d\n", len(page.Items), page.Total)
	return nil
}
