package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"animerec/internal/catalog"
	"animerec/internal/config"
	"animerec/internal/domain"
	"animerec/internal/embedding/tfidf"
	"animerec/internal/history"
	"animerec/internal/logging"
	"animerec/internal/service"
	"animerec/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath     string
		catalogPath string
		query       string
		id          int
		genres      string
		k           int
		format      string
	)
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/animerec/config.yaml if not provided)")
	flag.StringVar(&catalogPath, "catalog", "", "Path to the catalog CSV (overrides config)")
	flag.StringVar(&query, "query", "", "Title to recommend for; prints results and exits instead of starting the TUI")
	flag.IntVar(&id, "id", 0, "Item identifier to recommend for; like -query but reaches items with a shadowed name")
	flag.StringVar(&genres, "genres", "", "Free genre text to search; prints results and exits")
	flag.IntVar(&k, "k", 0, "Number of recommendations (0 uses the configured default)")
	flag.StringVar(&format, "format", "text", "One-shot output format: text or json")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if catalogPath != "" {
		cfg.Catalog.Path = catalogPath
	}

	interactive := query == "" && id == 0 && genres == ""
	logger, closeLog, err := newLogger(cfg.Log, interactive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	cols := catalog.Columns{
		ID:       cfg.Catalog.Columns.ID,
		Name:     cfg.Catalog.Columns.Name,
		Category: cfg.Catalog.Columns.Category,
		Rating:   cfg.Catalog.Columns.Rating,
		Members:  cfg.Catalog.Columns.Members,
	}
	cat, err := catalog.LoadFile(cfg.Catalog.Path, cols, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Catalog.Path).Msg("catalog load failed")
	}
	snap, err := service.BuildSnapshot(cat, tfidf.NewVectorizer(), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("index build failed")
	}
	svc := service.NewRecommendService(snap, cfg.Recommend.DefaultK, logger)

	if !interactive {
		os.Exit(runOnce(svc, oneShot{Name: query, ID: id, Genres: genres}, k, format, os.Stdout))
	}

	opts := tui.Options{K: k, TopN: cfg.Recommend.TopN}
	if cfg.History.File != "" {
		store := history.NewFileStore(cfg.History.File)
		opts.History, err = store.Load(cfg.History.Capacity)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.History.File).Msg("history load failed")
		}
		opts.Sink = store
	} else {
		opts.History = history.New(cfg.History.Capacity)
	}

	m := tui.New(svc, opts)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		logger.Fatal().Err(err).Msg("tui failed")
	}
}

// oneShot is the query given on the command line. The first non-empty
// field in ID, Name, Genres order is used.
type oneShot struct {
	Name   string
	ID     int
	Genres string
}

// runOnce answers a single query and returns the process exit code.
func runOnce(svc *service.RecommendService, q oneShot, k int, format string, out io.Writer) int {
	var (
		res domain.Result
		err error
	)
	switch {
	case q.ID != 0:
		res, err = svc.RecommendByID(q.ID, k)
	case q.Name != "":
		res, err = svc.Recommend(q.Name, k)
	default:
		res, err = svc.SearchGenres(q.Genres, k)
	}
	if errors.Is(err, domain.ErrNotFound) {
		fmt.Fprintln(os.Stderr, tui.NotFoundMessage)
		return 2
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if err := writeResult(out, res, format); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// newLogger opens the configured log destination. Interactive sessions
// without a log file only log warnings so the TUI screen stays clean.
func newLogger(cfg config.LogConfig, interactive bool) (zerolog.Logger, func(), error) {
	lc := logging.Config{Level: cfg.Level, Format: cfg.Format, Output: os.Stderr}
	closeFn := func() {}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), closeFn, err
		}
		lc.Output = f
		closeFn = func() { _ = f.Close() }
	} else if interactive && logging.ParseLevel(cfg.Level) < zerolog.WarnLevel {
		lc.Level = "warn"
	}
	return logging.New(lc), closeFn, nil
}
