// Package app initializes and runs the interactive terminal client.
// It configures logging, the API transport, the session and collection
// stores, and handles graceful shutdown.
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/patric-chuzhbe/shrtclient/internal/aboutstore"
	"github.com/patric-chuzhbe/shrtclient/internal/apiclient"
	"github.com/patric-chuzhbe/shrtclient/internal/config"
	"github.com/patric-chuzhbe/shrtclient/internal/errclass"
	"github.com/patric-chuzhbe/shrtclient/internal/logger"
	"github.com/patric-chuzhbe/shrtclient/internal/models"
	"github.com/patric-chuzhbe/shrtclient/internal/notifier"
	"github.com/patric-chuzhbe/shrtclient/internal/session"
	"github.com/patric-chuzhbe/shrtclient/internal/sessionstorage"
	"github.com/patric-chuzhbe/shrtclient/internal/urlstore"
)

// App wires the configuration, transport, stores and the notification sink
// of one running client session.
type App struct {
	cfg           *config.Config
	client        *apiclient.Client
	session       *session.Store
	urls          *urlstore.Store
	about         *aboutstore.Store
	notifications *notifier.Notifier

	output *os.File
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing logger
// - setting up the API transport and the notification sink
// - constructing the session, URL collection, and about stores
func New() (*App, error) {
	app := &App{
		output: os.Stdout,
	}

	var err error
	app.cfg, err = config.New()
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	app.notifications = notifier.New(app.cfg.NotificationCapacity)

	app.client = apiclient.New(
		app.cfg.APIBaseURL,
		app.cfg.RequestTimeout,
		apiclient.WithNotifier(app.notifications),
	)

	app.session = session.New(app.client, sessionstorage.NewMemory())
	app.client.SetTokenSource(app.session.Token)

	app.urls = urlstore.New(app.client)
	app.about = aboutstore.New(app.client)

	return app, nil
}

// Run starts the interactive loop. It returns when the user exits or a
// termination signal arrives.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infoln("client started", "APIBaseURL", a.cfg.APIBaseURL)

	a.notifications.Listen(func(message string) {
		fmt.Fprintln(a.output, "!", message)
	})

	a.session.AuthState().Subscribe(func(authenticated bool) {
		if authenticated {
			fmt.Fprintln(a.output, "signed in")
		} else {
			fmt.Fprintln(a.output, "signed out")
		}
	})

	a.urls.URLs().Subscribe(func(listing models.URLList) {
		a.renderListing(listing)
	})

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	fmt.Fprint(a.output, "shrtclient> ")
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(a.output)
			logger.Log.Infoln("Received shutdown signal. Exiting...")
			return nil

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if a.dispatch(ctx, strings.Fields(strings.TrimSpace(line))) {
				return nil
			}
			fmt.Fprint(a.output, "shrtclient> ")
		}
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	a.notifications.Close()
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}

// dispatch executes one command line and reports whether the loop should end.
func (a *App) dispatch(ctx context.Context, args []string) bool {
	if len(args) == 0 {
		return false
	}

	switch args[0] {
	case "help":
		fmt.Fprintln(a.output, "Available commands: help, register <email> <username> <password>, "+
			"login <email> <password>, logout, whoami, list, get <id>, add <url>, "+
			"delete <id>, about, about-edit <text>, exit")

	case "register":
		if len(args) < 4 {
			fmt.Fprintln(a.output, "Usage: register <email> <username> <password>")
			return false
		}
		_, err := a.session.Register(ctx, args[1], args[2], args[3])
		if err != nil {
			// Auth-flow failures are suppressed from notifications
			// and surfaced inline instead.
			fmt.Fprintln(a.output, "Registration failed:", userMessage(err))
		}

	case "login":
		if len(args) < 3 {
			fmt.Fprintln(a.output, "Usage: login <email> <password>")
			return false
		}
		_, err := a.session.Login(ctx, args[1], args[2])
		if err != nil {
			fmt.Fprintln(a.output, "Login failed:", userMessage(err))
		}

	case "logout":
		a.session.Logout()

	case "whoami":
		a.renderIdentity()

	case "list":
		// Rendering happens through the collection broadcast.
		if _, err := a.urls.FetchAll(ctx); err != nil {
			logger.Log.Debugln("list failed:", err)
		}

	case "get":
		if len(args) < 2 {
			fmt.Fprintln(a.output, "Usage: get <id>")
			return false
		}
		record, err := a.urls.FetchOne(ctx, args[1])
		if err != nil {
			return false
		}
		fmt.Fprintf(a.output, "%s -> %s (created by %s at %s)\n",
			record.ShortCode, record.OriginalURL, record.CreatedByUsername, record.CreatedAt)

	case "add":
		if len(args) < 2 {
			fmt.Fprintln(a.output, "Usage: add <url>")
			return false
		}
		id, err := a.urls.Create(ctx, args[1])
		if err == nil {
			fmt.Fprintln(a.output, "created:", id)
		}

	case "delete":
		if len(args) < 2 {
			fmt.Fprintln(a.output, "Usage: delete <id>")
			return false
		}
		if err := a.urls.Delete(ctx, args[1]); err == nil {
			fmt.Fprintln(a.output, "deleted:", args[1])
		}

	case "about":
		about, err := a.about.Get(ctx)
		if err != nil {
			return false
		}
		fmt.Fprintln(a.output, about.Description)
		fmt.Fprintf(a.output, "Last updated (in UTC): %s by %s\n", about.LastUpdated, about.UpdatedByUserName)

	case "about-edit":
		if !a.session.IsAdmin() {
			fmt.Fprintln(a.output, "Only administrators may edit the about page")
			return false
		}
		if len(args) < 2 {
			fmt.Fprintln(a.output, "Usage: about-edit <text>")
			return false
		}
		if err := a.about.Update(ctx, strings.Join(args[1:], " ")); err == nil {
			fmt.Fprintln(a.output, "about page updated")
		}

	case "exit":
		return true

	default:
		fmt.Fprintln(a.output, "Unknown command; type `help`")
	}

	return false
}

func (a *App) renderIdentity() {
	if !a.session.IsAuthenticated() {
		fmt.Fprintln(a.output, "not signed in")
		return
	}

	identity := a.session.CurrentIdentity()
	if identity == nil {
		fmt.Fprintln(a.output, "signed in, identity not resolved yet")
		return
	}

	fmt.Fprintf(a.output, "%s <%s> role=%s\n", identity.Username, identity.Email, identity.Role)
}

func (a *App) renderListing(listing models.URLList) {
	fmt.Fprintf(a.output, "%d short URL(s):\n", len(listing))
	for _, record := range listing {
		switch record.Projection {
		case models.ProjectionFull:
			fmt.Fprintf(a.output, "  [%s] %s -> %s (by %s)\n",
				record.ID, record.ShortCode, record.OriginalURL, record.CreatedByUsername)
		default:
			fmt.Fprintf(a.output, "  %s -> %s (by %s)\n",
				record.ShortCode, record.OriginalURL, record.CreatedByUsername)
		}
	}
}

// userMessage extracts the classified, user-facing message of a failed call,
// falling back to the raw error text.
func userMessage(err error) string {
	classified := &errclass.Error{}
	if errors.As(err, &classified) {
		return classified.Classification.Message
	}

	return err.Error()
}
