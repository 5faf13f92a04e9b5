// Command deskctl shows a desk record in the terminal and runs its actions
// through the same form controllers the server uses.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/donation-desk/internal/form"
	"github.com/garyjia/donation-desk/internal/interfaces/client"
	"github.com/garyjia/donation-desk/pkg/utils"
)

type options struct {
	baseURL string
	token   string
	doctype string
	name    string
	action  string
	lang    string
	timeout time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.baseURL, "url", "http://localhost:8080", "desk base URL")
	flag.StringVar(&opts.token, "token", os.Getenv("DESK_TOKEN"), "session token (defaults to $DESK_TOKEN)")
	flag.StringVar(&opts.doctype, "doctype", "Donation", "document type")
	flag.StringVar(&opts.name, "name", "", "document name, e.g. DON-2026-00001")
	flag.StringVar(&opts.action, "action", "", "action slug to run, e.g. generate-invoice")
	flag.StringVar(&opts.lang, "lang", "en", "language for desk messages")
	flag.DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")
	flag.Parse()

	if opts.name == "" {
		fmt.Fprintln(os.Stderr, "deskctl: -name is required")
		flag.Usage()
		os.Exit(2)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{Level: "warn", OutputPath: "stderr", Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "deskctl: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdout, logger); err != nil {
		fmt.Fprintf(os.Stderr, "deskctl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer, logger *zap.Logger) error {
	desk := client.New(opts.baseURL, opts.token, opts.timeout)

	translator, err := form.NewCatalog(opts.lang)
	if err != nil {
		return err
	}

	kv := sugared{logger.Sugar()}
	registry := form.NewRegistry(kv)
	form.NewDonationController(desk, translator, kv).Register(registry)

	rec, err := desk.FetchRecord(ctx, opts.doctype, opts.name)
	if err != nil {
		return err
	}

	view, err := registry.OpenView(ctx, rec, func(ctx context.Context) (*form.Record, error) {
		return desk.FetchRecord(ctx, opts.doctype, opts.name)
	})
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	view.Observe(func(kind, detail string) {
		switch kind {
		case "freeze":
			fmt.Fprintf(out, "... %s\n", detail)
		case "unfreeze":
			fmt.Fprintln(out, "... done")
		case "reload":
			fmt.Fprintln(out, "... reloading")
		case "error":
			fmt.Fprintf(out, "!! %s\n", detail)
		}
	})

	printRecord(out, view)

	if opts.action == "" {
		return nil
	}

	fmt.Fprintf(out, "\nrunning %s\n", opts.action)
	if err := view.Activate(ctx, opts.action); err != nil {
		return err
	}

	fmt.Fprintln(out)
	printRecord(out, view)
	return nil
}

func printRecord(out io.Writer, view *form.RecordingView) {
	rec := view.Record()
	fmt.Fprintf(out, "%s %s (docstatus %d)\n", rec.Doctype, rec.Name, rec.DocStatus)

	keys := make([]string, 0, len(rec.Fields))
	for k := range rec.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "  %-16s %v\n", k, rec.Fields[k])
	}

	actions := view.Actions()
	if len(actions) == 0 {
		fmt.Fprintln(out, "no actions")
		return
	}
	fmt.Fprintln(out, "actions:")
	for _, a := range actions {
		fmt.Fprintf(out, "  %-18s %s\n", a.Slug, a.Label)
	}
}

// sugared adapts a zap sugared logger to the key-value form.Logger
type sugared struct {
	*zap.SugaredLogger
}

func (s sugared) Info(msg string, keysAndValues ...interface{}) {
	s.Infow(msg, keysAndValues...)
}

func (s sugared) Error(msg string, keysAndValues ...interface{}) {
	s.Errorw(msg, keysAndValues...)
}
