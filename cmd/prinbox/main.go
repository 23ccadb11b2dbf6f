package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/shhac/prinbox/internal/alarm"
	"github.com/shhac/prinbox/internal/background"
	"github.com/shhac/prinbox/internal/bus"
	"github.com/shhac/prinbox/internal/config"
	"github.com/shhac/prinbox/internal/github"
	"github.com/shhac/prinbox/internal/inbox"
	"github.com/shhac/prinbox/internal/logger"
	"github.com/shhac/prinbox/internal/notify"
	"github.com/shhac/prinbox/internal/snooze"
	"github.com/shhac/prinbox/internal/store"
	"github.com/shhac/prinbox/internal/ui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var cli struct {
	Version kong.VersionFlag `help:"Print version and exit."`

	Run  RunCmd  `cmd:"" help:"Open the notification inbox." default:"1"`
	Auth AuthCmd `cmd:"" help:"Check the GitHub token and upstream access."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("prinbox"),
		kong.Description("A GitHub pull request notification inbox for the terminal."),
		kong.UsageOnError(),
		kong.Vars{"version": fmt.Sprintf("prinbox %s (commit: %s, built: %s)", version, commit, date)},
	)
	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// RunCmd wires the services together and runs the TUI.
type RunCmd struct{}

func (r *RunCmd) Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// "auto" leaves lipgloss to detect the terminal background.
	switch cfg.Theme {
	case "light":
		lipgloss.SetHasDarkBackground(false)
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	}

	log, err := logger.New(config.LogPath(), cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = log.Sync() }()

	token := cfg.ResolveToken()
	if token == "" {
		return fmt.Errorf("%w: set GITHUB_TOKEN or add \"token\" to %s",
			github.ErrNoToken, config.DefaultConfigDir())
	}
	client, err := github.NewClient(token)
	if err != nil {
		return err
	}

	st, err := store.NewStore(config.DatabasePath(), log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	user, err := client.GetUser(ctx)
	if err != nil {
		return fmt.Errorf("verify token: %w", err)
	}
	log.Info("authenticated", zap.String("login", user.Login))

	b := bus.New()
	sched := alarm.NewScheduler()
	defer sched.Stop()
	dispatcher := notify.NewDispatcher(log)
	snoozer := snooze.NewManager(st, sched, dispatcher, b, log)
	labels := store.NewLabelSource(st, client)

	newReconciler := func(cfg *config.Config) ui.InboxService {
		return inbox.NewReconciler(client, labels, st, log, user.Login, cfg.Filters(), cfg.PerPage)
	}

	svc := background.NewService(client, st, dispatcher, snoozer, b, log, user.Login, cfg.PollInterval())
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start background service: %w", err)
	}
	defer svc.Stop()

	events, unsubscribe := b.Subscribe()
	defer unsubscribe()

	app := ui.NewApp(ui.Deps{
		Inbox:   newReconciler(cfg),
		Store:   st,
		Threads: client,
		Snoozer: snoozer,
		Events:  events,
		Config:  cfg,
		Log:     log,
		Rebuild: newReconciler,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

// AuthCmd probes each upstream source and reports what the token can reach.
// With a token argument it validates first and stores the token on success.
type AuthCmd struct {
	Token string `arg:"" optional:"" help:"Personal access token to validate and save."`
}

func (a *AuthCmd) Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	token := a.Token
	if token == "" {
		token = cfg.ResolveToken()
	}
	if token == "" {
		return fmt.Errorf("%w: set GITHUB_TOKEN or add \"token\" to %s",
			github.ErrNoToken, config.DefaultConfigDir())
	}
	client, err := github.NewClient(token)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	d := client.RunDiagnostics(ctx)
	if !d.User.OK {
		printProbe("user", d.User)
		if d.User.Status == 401 {
			return fmt.Errorf("token rejected: generate a classic token with notifications and repo scopes")
		}
		return fmt.Errorf("could not reach GitHub")
	}

	fmt.Printf("Authenticated as %s\n", d.Login)
	printProbe("notifications", d.Notifications)
	printProbe("authored search", d.Authored)
	printProbe("graphql search", d.GraphQL)

	if a.Token != "" {
		cfg.Token = a.Token
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
		fmt.Println("Token saved.")
	}

	if !d.Notifications.OK || !d.Authored.OK || !d.GraphQL.OK {
		return fmt.Errorf("some sources are unavailable; the inbox degrades to what is reachable")
	}
	return nil
}

func printProbe(name string, p github.SourceProbe) {
	if p.OK {
		fmt.Printf("  %-16s ok (%d items)\n", name, p.Count)
		return
	}
	if p.Status != 0 {
		fmt.Printf("  %-16s failed (HTTP %d): %s\n", name, p.Status, p.Err)
		return
	}
	fmt.Printf("  %-16s failed: %s\n", name, p.Err)
}
