package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/docrag"
	"github.com/fwojciec/docrag/config"
	"github.com/fwojciec/docrag/fs"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Config *config.Config
	Logger *slog.Logger

	Registry docrag.CorpusRegistry
	Corpora  docrag.CorpusService
	Ingester docrag.Ingester
	Asker    docrag.Asker
	Crawler  docrag.Crawler
	Files    *fs.Loader

	// Tokens counts tokens for import summaries. Optional; without it the
	// count is estimated from the text size.
	Tokens docrag.TokenCounter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `help:"Path to the YAML config file" default:"docrag.yaml" env:"DOCRAG_CONFIG"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Crawl  CrawlCmd  `cmd:"" help:"Crawl a documentation site into a new corpus"`
	Add    AddCmd    `cmd:"" help:"Crawl a documentation site into an existing corpus"`
	Upload UploadCmd `cmd:"" help:"Upload files (.txt, .md, .html, .xlsx) into a corpus"`
	Ask    AskCmd    `cmd:"" help:"Ask a question about indexed documentation"`
	List   ListCmd   `cmd:"" help:"List corpora"`
	Delete DeleteCmd `cmd:"" help:"Delete a corpus and its indexed text"`
	Serve  ServeCmd  `cmd:"" help:"Run the HTTP API"`
}

// CrawlFlags are shared by commands that crawl a site.
type CrawlFlags struct {
	MaxPages int    `short:"n" help:"Maximum pages to visit (default from config)"`
	Fetcher  string `help:"Page fetcher: http, browser or auto (default from config)"`
	Sitemap  bool   `help:"Also seed the crawl with the site's sitemap"`
}

func (f CrawlFlags) maxPages(cfg *config.Config) int {
	if f.MaxPages > 0 {
		return f.MaxPages
	}
	return cfg.Crawl.MaxPages
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	URL         string `arg:"" help:"Documentation URL to start from"`
	Label       string `short:"l" required:"" help:"Corpus label"`
	Description string `short:"d" help:"Corpus description"`

	CrawlFlags `embed:""`
}

// AddCmd is the "add" subcommand.
type AddCmd struct {
	Label string `arg:"" help:"Label of an existing corpus"`
	URL   string `arg:"" help:"Documentation URL to start from"`

	CrawlFlags `embed:""`
}

// UploadCmd is the "upload" subcommand.
type UploadCmd struct {
	Label       string   `arg:"" help:"Corpus label (created if it does not exist)"`
	Files       []string `arg:"" type:"existingfile" help:"Files to upload"`
	Description string   `short:"d" help:"Corpus description, used when the corpus is created"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Question string   `arg:"" help:"Question to ask"`
	Corpus   []string `short:"c" name:"corpus" help:"Search only these corpora (repeatable); default picks corpora automatically"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct{}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	Label string `arg:"" help:"Corpus label"`
	Force bool   `help:"Confirm deletion"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Port int `help:"Port to listen on (default from config)"`
}

func (d *Dependencies) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Logger
}
