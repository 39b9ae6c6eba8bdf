package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docrag"
	"github.com/fwojciec/docrag/answer"
	"github.com/fwojciec/docrag/classify"
	"github.com/fwojciec/docrag/config"
	"github.com/fwojciec/docrag/crawl"
	"github.com/fwojciec/docrag/excelize"
	"github.com/fwojciec/docrag/fs"
	"github.com/fwojciec/docrag/gemini"
	"github.com/fwojciec/docrag/goquery"
	"github.com/fwojciec/docrag/htmltomarkdown"
	dochttp "github.com/fwojciec/docrag/http"
	"github.com/fwojciec/docrag/ingest"
	"github.com/fwojciec/docrag/minio"
	"github.com/fwojciec/docrag/readability"
	"github.com/fwojciec/docrag/rod"
	docslog "github.com/fwojciec/docrag/slog"
	"github.com/fwojciec/docrag/sqlite"
	"github.com/fwojciec/docrag/trafilatura"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	_ = godotenv.Load()

	m := NewMain()
	err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database backing the local corpus service.
	DB *sqlite.DB

	// Getenv looks up configuration overrides. Nil means os.LookupEnv.
	Getenv config.LookupFunc

	// Collaborators used instead of the real ones when set.
	Embedder  docrag.Embedder
	Generator docrag.Generator
	Crawler   docrag.Crawler
	Tokens    docrag.TokenCounter

	closers []func() error
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{}
}

// Close releases everything opened by Run.
func (m *Main) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		errs = append(errs, m.closers[i]())
	}
	m.closers = nil

	if m.DB != nil {
		errs = append(errs, m.DB.Close())
		m.DB = nil
	}
	return errors.Join(errs...)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docrag"),
		kong.Description("Crawl documentation into searchable corpora and ask questions about it."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docrag --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	cfg, err := m.loadConfig(cli, cmd)
	if err != nil {
		return err
	}
	deps.Config = cfg
	deps.Logger = newLogger(stderr, cfg, cli.Verbose)

	defer func() { _ = m.Close() }()
	if err := m.wire(ctx, cmd, deps); err != nil {
		return err
	}

	return kongCtx.Run(deps)
}

// loadConfig reads the config file and applies command flags on top.
func (m *Main) loadConfig(cli *CLI, cmd string) (*config.Config, error) {
	lookup := m.Getenv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	cfg, err := config.LoadEnv(cli.Config, lookup)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var flags *CrawlFlags
	switch cmd {
	case "crawl":
		flags = &cli.Crawl.CrawlFlags
	case "add":
		flags = &cli.Add.CrawlFlags
	}
	if flags == nil {
		return cfg, nil
	}

	if flags.Fetcher != "" {
		cfg.Crawl.Fetcher = flags.Fetcher
	}
	if flags.Sitemap {
		cfg.Crawl.Sitemap = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg *config.Config, verbose bool) *slog.Logger {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil || verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// wire builds the services the command needs.
func (m *Main) wire(ctx context.Context, cmd string, deps *Dependencies) error {
	cfg, logger := deps.Config, deps.Logger

	// Per-call logging decorators are on for the server and in debug mode.
	decorate := cmd == "serve" || logger.Enabled(ctx, slog.LevelDebug)

	if err := os.MkdirAll(filepath.Dir(cfg.Database), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	m.DB = sqlite.NewDB(cfg.Database)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(deps.Stderr, "Hint: Set DOCRAG_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", cfg.Database, err)
	}

	registry, err := fs.OpenRegistry(cfg.Registry)
	if err != nil {
		return fmt.Errorf("failed to open corpus registry at %q: %w", cfg.Registry, err)
	}
	deps.Registry = registry

	needsModel := cmd != "list" && cmd != "delete"
	needsStaging := cmd == "crawl" || cmd == "add" || cmd == "upload" || cmd == "serve"

	embedder, generator := m.Embedder, m.Generator
	if needsModel && (embedder == nil || generator == nil) {
		if cfg.GeminiAPIKey == "" {
			fmt.Fprintln(deps.Stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
			return fmt.Errorf("GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
		}
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		if embedder == nil {
			e := gemini.NewEmbedder(client, cfg.EmbeddingModel)
			e.Dimensions = int32(cfg.EmbeddingDimensions)
			embedder = e
		}
		if generator == nil {
			generator = gemini.NewGenerator(client, cfg.Model)
		}
	}
	if decorate && generator != nil {
		generator = docslog.NewLoggingGenerator(generator, logger)
	}

	var staging docrag.StagingStore
	if needsStaging {
		if staging, err = openStaging(ctx, cfg); err != nil {
			return err
		}
		if decorate {
			staging = docslog.NewLoggingStagingStore(staging, logger)
		}
	}

	local := sqlite.NewCorpusService(m.DB, staging, embedder)
	local.Logger = logger
	var corpora docrag.CorpusService = local
	if decorate {
		corpora = docslog.NewLoggingCorpusService(local, logger)
	}
	deps.Corpora = corpora

	if staging != nil {
		deps.Ingester = &ingest.Workflow{
			Staging:            staging,
			Corpora:            corpora,
			Registry:           registry,
			BatchSize:          cfg.Ingest.BatchSize,
			CleanupConcurrency: cfg.Ingest.CleanupConcurrency,
			ImportOptions:      cfg.Ingest.ImportOptions(),
			Logger:             logger,
		}
	}

	if generator != nil {
		var classifier docrag.CorpusClassifier = &classify.Generative{Generator: generator}
		if cfg.Classifier == "keyword" {
			classifier = classify.Keyword{}
		}
		deps.Asker = &answer.Orchestrator{
			Registry:   registry,
			Corpora:    corpora,
			Generator:  generator,
			Classifier: classifier,
			TopK:       cfg.TopK,
			Logger:     logger,
		}
	}

	deps.Files = newLoader()

	switch cmd {
	case "crawl", "add", "serve":
		crawler, err := m.crawler(cfg, logger, decorate)
		if err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed, or use --fetcher http")
			return err
		}
		if decorate {
			crawler = docslog.NewLoggingCrawler(crawler, logger)
		}
		deps.Crawler = crawler
	}

	switch cmd {
	case "crawl", "add", "upload":
		deps.Tokens = m.tokenCounter(logger)
	}
	return nil
}

// openStaging returns the S3 staging store when S3 is configured and a
// local directory store otherwise.
func openStaging(ctx context.Context, cfg *config.Config) (docrag.StagingStore, error) {
	s3 := minio.Config(cfg.S3)
	if !s3.Enabled() {
		return fs.NewStagingStore(cfg.StagingDir)
	}

	if err := s3.Validate(); err != nil {
		return nil, err
	}
	store, err := minio.NewStagingStore(s3)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// crawler builds the crawler for the configured fetcher.
func (m *Main) crawler(cfg *config.Config, logger *slog.Logger, decorate bool) (docrag.Crawler, error) {
	if m.Crawler != nil {
		return m.Crawler, nil
	}

	base := crawl.Crawler{
		Parser:      goquery.NewParser(),
		RateLimiter: crawl.NewDomainLimiter(cfg.Crawl.Rate),
		RetryDelays: crawl.DefaultRetryDelays(),
		Logger:      logger,
	}
	if cfg.Crawl.Sitemap {
		var sitemaps docrag.SitemapService = dochttp.NewSitemapService(nil)
		if decorate {
			sitemaps = docslog.NewLoggingSitemapService(sitemaps, logger)
		}
		base.Sitemaps = sitemaps
	}

	var static docrag.Fetcher = dochttp.NewFetcher()
	m.closers = append(m.closers, static.Close)
	if decorate {
		static = docslog.NewLoggingFetcher(static, logger)
	}
	if cfg.Crawl.Fetcher == "http" {
		base.Fetcher = static
		return &base, nil
	}

	rf, err := rod.NewFetcher()
	if err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	m.closers = append(m.closers, rf.Close)
	var browser docrag.Fetcher = rf
	if decorate {
		browser = docslog.NewLoggingFetcher(browser, logger)
	}
	if cfg.Crawl.Fetcher == "browser" {
		base.Fetcher = browser
		return &base, nil
	}

	return &crawl.AutoCrawler{
		Crawler:   base,
		Static:    static,
		Browser:   browser,
		Extractor: trafilatura.NewExtractor(),
	}, nil
}

// tokenCounter returns the local Gemini tokenizer, or nil when it is not
// available so summaries fall back to an estimate.
func (m *Main) tokenCounter(logger *slog.Logger) docrag.TokenCounter {
	if m.Tokens != nil {
		return m.Tokens
	}
	tc, err := gemini.NewTokenCounter(gemini.DefaultTokenizerModel)
	if err != nil {
		logger.Debug("token counter unavailable", "err", err)
		return nil
	}
	return tc
}

// newLoader returns the upload loader with every supported file type.
func newLoader() *fs.Loader {
	l := fs.NewLoader()
	html := &fs.HTMLParser{
		Extractor: trafilatura.NewExtractor(),
		Fallback:  readability.NewExtractor(),
		Converter: htmltomarkdown.NewConverter(),
	}
	l.Register(".html", html)
	l.Register(".htm", html)
	l.Register(".xlsx", &excelize.Parser{})
	return l
}
