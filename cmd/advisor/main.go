package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"routine-advisor/internal/assistant"
	"routine-advisor/internal/catalog"
	"routine-advisor/internal/config"
	"routine-advisor/internal/logging"
	"routine-advisor/internal/prompts"
	"routine-advisor/internal/store"
	"routine-advisor/internal/widget"
)

// app is the wired client shared by all subcommands.
type app struct {
	cfg        config.ClientConfig
	log        *logrus.Logger
	storage    store.Storage
	widget     *widget.Widget
	catalogErr error
}

func newApp(ctx context.Context, webSearch *bool) (*app, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	// The terminal is the UI, so logs only go to LOG_FILE.
	log, err := logging.New(cfg.Log, io.Discard)
	if err != nil {
		return nil, errors.Wrap(err, "set up logging")
	}
	p, err := prompts.Load(cfg.PromptsFile)
	if err != nil {
		return nil, errors.Wrap(err, "load prompts")
	}
	storage, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "open storage")
	}

	hc := &http.Client{}
	if cfg.TimeoutSeconds > 0 {
		hc.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	web := cfg.WebSearch
	if webSearch != nil {
		web = *webSearch
	}
	w := widget.New(widget.Options{
		Storage:   storage,
		Client:    &assistant.Client{URL: cfg.WorkerURL(), HTTPClient: hc},
		Prompts:   p,
		WebSearch: web,
		Log:       log,
	})
	a := &app{cfg: cfg, log: log, storage: storage, widget: w}
	a.catalogErr = w.Init(ctx, cfg.Catalog)
	return a, nil
}

func (a *app) close() {
	if err := a.storage.Close(); err != nil {
		a.log.WithError(err).Warn("closing storage failed")
	}
}

// requireCatalog stops commands that cannot work without products.
func (a *app) requireCatalog() error {
	if a.catalogErr != nil {
		return errors.Wrap(a.catalogErr, catalog.LoadFailedMessage)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
