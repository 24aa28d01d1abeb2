package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bank-admin/pkg/account"
	"bank-admin/pkg/admin"
	"bank-admin/pkg/config"
	"bank-admin/pkg/logging"
	"bank-admin/pkg/metrics"
	"bank-admin/pkg/textui"

	"github.com/urfave/cli"
)

// application holds the terminal streams shared by every command.
type application struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// loadConfig loads the env file and configuration from the global flags.
func (a *application) loadConfig(c *cli.Context, overrides config.Overrides) (*config.Config, error) {
	if err := config.LoadEnvFile(c.GlobalString(flagEnvFile)); err != nil {
		return nil, err
	}
	overrides.APIBase = c.GlobalString(flagAPIBase)
	overrides.LogLevel = c.GlobalString(flagLogLevel)
	overrides.Mirror = c.GlobalString(flagMirror)
	return config.Load(c.GlobalString(flagConfig), overrides)
}

// setupLogger installs the global logger. One-shot commands stay quiet
// unless --log-level is given.
func setupLogger(c *cli.Context, cfg *config.Config, quiet bool) error {
	if quiet && c.GlobalString(flagLogLevel) == "" {
		logging.SetGlobal(logging.NewNoOpLogger())
		return nil
	}
	logger, err := logging.FromConfig(cfg.Log)
	if err != nil {
		return fmt.Errorf("error creating logger: %w", err)
	}
	logging.SetGlobal(logger)
	return nil
}

// open prepares a one-shot command.
func (a *application) open(c *cli.Context) (*stack, *config.Config, error) {
	cfg, err := a.loadConfig(c, config.Overrides{})
	if err != nil {
		return nil, nil, err
	}
	if err := setupLogger(c, cfg, true); err != nil {
		return nil, nil, err
	}
	st, err := buildStack(cfg, metrics.NoOpCollector{})
	if err != nil {
		return nil, nil, err
	}
	return st, cfg, nil
}

// report prints n and maps an error notice onto errReported.
func (a *application) report(n *admin.Notice) error {
	if textui.PrintNotice(a.stdout, a.stderr, n) {
		return errReported
	}
	return nil
}

func parseID(c *cli.Context) (int64, error) {
	arg := strings.TrimSpace(c.Args().First())
	if arg == "" {
		return 0, fmt.Errorf("%s: account ID is required", c.Command.Name)
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid account id %q", arg)
	}
	return id, nil
}

func (a *application) cmdStatus(c *cli.Context) error {
	st, _, err := a.open(c)
	if err != nil {
		return err
	}
	defer st.close()

	check := st.service.CheckBackend(context.Background())
	fmt.Fprintln(a.stdout, check.Status)
	return a.report(check.Notice)
}

func (a *application) cmdList(c *cli.Context) error {
	st, cfg, err := a.open(c)
	if err != nil {
		return err
	}
	defer st.close()

	ctx := context.Background()
	if check := st.service.CheckBackend(ctx); !check.Reachable {
		fmt.Fprintln(a.stderr, check.Status)
		return a.report(check.Notice)
	}

	listing := st.service.Load(ctx)
	if !listing.OK {
		fmt.Fprintln(a.stderr, listing.Status)
		return a.report(listing.Notice)
	}
	if err := textui.PrintTable(a.stdout, listing.Accounts); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, textui.SummaryLine(listing.Summary, cfg.Currency))
	return nil
}

func (a *application) cmdShow(c *cli.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	st, _, err := a.open(c)
	if err != nil {
		return err
	}
	defer st.close()

	acc, out := st.service.View(context.Background(), id)
	if acc == nil {
		return a.report(out.Notice)
	}
	return textui.PrintDetail(a.stdout, *acc)
}

// finish prints the outcome of a form submission.
func (a *application) finish(out admin.Outcome) error {
	textui.PrintFieldErrors(a.stderr, out.FieldErrors)
	if err := a.report(out.Notice); err != nil {
		return err
	}
	if !out.FieldErrors.Empty() {
		return errReported
	}
	return nil
}

func (a *application) cmdCreate(c *cli.Context) error {
	st, _, err := a.open(c)
	if err != nil {
		return err
	}
	defer st.close()

	out := st.service.Create(context.Background(), account.CreateForm{
		OwnerName:      c.String(flagOwner),
		Email:          c.String(flagEmail),
		InitialDeposit: c.String(flagDeposit),
	})
	return a.finish(out)
}

// cmdUpdate starts from the stored owner and email, like the edit
// screen, and replaces whichever flags were given.
func (a *application) cmdUpdate(c *cli.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if !c.IsSet(flagOwner) && !c.IsSet(flagEmail) {
		return fmt.Errorf("update: nothing to change; pass --%s or --%s", flagOwner, flagEmail)
	}
	st, _, err := a.open(c)
	if err != nil {
		return err
	}
	defer st.close()

	ctx := context.Background()
	form, out := st.service.StartEdit(ctx, id)
	if out.Notice != nil {
		return a.report(out.Notice)
	}
	if c.IsSet(flagOwner) {
		form.OwnerName = c.String(flagOwner)
	}
	if c.IsSet(flagEmail) {
		form.Email = c.String(flagEmail)
	}
	return a.finish(st.service.Update(ctx, id, form))
}

func (a *application) cmdDelete(c *cli.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if !c.Bool(flagYes) {
		ok, err := textui.Confirm(a.stdin, a.stdout, admin.ConfirmPrompt(id))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.stdout, "Aborted.")
			return nil
		}
	}

	st, _, err := a.open(c)
	if err != nil {
		return err
	}
	defer st.close()

	return a.report(st.service.Delete(context.Background(), id).Notice)
}
