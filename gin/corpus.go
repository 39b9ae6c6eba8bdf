package gin

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/fwojciec/docrag"
	"github.com/gin-gonic/gin"
)

type scrapeRequest struct {
	URL         string `json:"url"`
	Label       string `json:"label"`
	Description string `json:"description"`
	MaxPages    int    `json:"max_pages"`
}

type importResponse struct {
	Label         string `json:"label"`
	Handle        string `json:"handle"`
	Submitted     int    `json:"submitted"`
	Imported      int    `json:"imported"`
	Bytes         int    `json:"bytes"`
	FailedBatches []int  `json:"failed_batches"`
}

func newImportResponse(label string, o *docrag.ImportOutcome) importResponse {
	failed := []int{}
	for _, b := range o.FailedBatches() {
		failed = append(failed, b.Index)
	}
	return importResponse{
		Label:         label,
		Handle:        o.Handle,
		Submitted:     o.Submitted,
		Imported:      o.Imported,
		Bytes:         o.Bytes,
		FailedBatches: failed,
	}
}

type corpusResponse struct {
	Label      string `json:"label"`
	Handle     string `json:"handle"`
	Registered bool   `json:"registered"`
}

// handleScrape crawls a site into a new (or same-label) corpus.
func (s *Server) handleScrape(c *gin.Context) {
	var req scrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.Error(c, docrag.Errorf(docrag.EINVALID, "invalid JSON body: %v", err))
		return
	}
	label := strings.TrimSpace(req.Label)
	if label == "" {
		s.Error(c, docrag.Errorf(docrag.EINVALID, "label required"))
		return
	}

	units, err := s.scrape(c.Request.Context(), req.URL, req.MaxPages)
	if err != nil {
		s.Error(c, err)
		return
	}

	outcome, err := s.Ingester.IngestAsNewCorpus(c.Request.Context(), label, req.Description, units)
	if err != nil {
		s.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, newImportResponse(label, outcome))
}

// handleScrapeInto crawls a site into an existing corpus.
func (s *Server) handleScrapeInto(c *gin.Context) {
	label := c.Param("label")
	if _, ok := s.Registry.Lookup(label); !ok {
		s.Error(c, docrag.Errorf(docrag.ENOTFOUND, "corpus %q not found", label))
		return
	}

	var req scrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.Error(c, docrag.Errorf(docrag.EINVALID, "invalid JSON body: %v", err))
		return
	}

	units, err := s.scrape(c.Request.Context(), req.URL, req.MaxPages)
	if err != nil {
		s.Error(c, err)
		return
	}

	outcome, err := s.Ingester.IngestIntoCorpus(c.Request.Context(), label, units)
	if err != nil {
		s.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, newImportResponse(label, outcome))
}

func (s *Server) scrape(ctx context.Context, seedURL string, maxPages int) ([]docrag.TextUnit, error) {
	if strings.TrimSpace(seedURL) == "" {
		return nil, docrag.Errorf(docrag.EINVALID, "url required")
	}
	if maxPages < 0 {
		return nil, docrag.Errorf(docrag.EINVALID, "max_pages must not be negative")
	}

	result, err := s.Crawler.Crawl(ctx, seedURL, s.maxPages(maxPages))
	if err != nil {
		return nil, err
	}
	return result.Scraped()
}

// handleUpload ingests uploaded files into a new (or same-label) corpus.
func (s *Server) handleUpload(c *gin.Context) {
	label := strings.TrimSpace(c.PostForm("label"))
	if label == "" {
		s.Error(c, docrag.Errorf(docrag.EINVALID, "label required"))
		return
	}

	units, err := s.loadUploads(c)
	if err != nil {
		s.Error(c, err)
		return
	}

	outcome, err := s.Ingester.IngestAsNewCorpus(c.Request.Context(), label, c.PostForm("description"), units)
	if err != nil {
		s.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, newImportResponse(label, outcome))
}

// handleUploadInto ingests uploaded files into an existing corpus.
func (s *Server) handleUploadInto(c *gin.Context) {
	label := c.Param("label")
	if _, ok := s.Registry.Lookup(label); !ok {
		s.Error(c, docrag.Errorf(docrag.ENOTFOUND, "corpus %q not found", label))
		return
	}

	units, err := s.loadUploads(c)
	if err != nil {
		s.Error(c, err)
		return
	}

	outcome, err := s.Ingester.IngestIntoCorpus(c.Request.Context(), label, units)
	if err != nil {
		s.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, newImportResponse(label, outcome))
}

// loadUploads parses every file in the multipart "files" field. A file
// that cannot be parsed fails the whole request.
func (s *Server) loadUploads(c *gin.Context) ([]docrag.TextUnit, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, docrag.Errorf(docrag.EINVALID, "multipart form required: %v", err)
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return nil, docrag.Errorf(docrag.EINVALID, "no files uploaded")
	}

	units := make([]docrag.TextUnit, 0, len(headers))
	for _, fh := range headers {
		data, err := s.readUpload(fh)
		if err != nil {
			return nil, err
		}
		u, err := s.Files.Load(fh.Filename, data)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, nil
}

func (s *Server) readUpload(fh *multipart.FileHeader) ([]byte, error) {
	limit := s.maxUploadBytes()
	if fh.Size > limit {
		return nil, docrag.Errorf(docrag.EINVALID, "file %s exceeds %d bytes", fh.Filename, limit)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload %s: %w", fh.Filename, err)
	}
	defer func() { _ = f.Close() }()

	return io.ReadAll(io.LimitReader(f, limit))
}

// handleListCorpora returns registered corpora in label order followed by
// corpora the service holds that no label points to.
func (s *Server) handleListCorpora(c *gin.Context) {
	registered := make(map[string]bool)
	out := []corpusResponse{}
	for _, label := range s.Registry.Labels() {
		handle, ok := s.Registry.Lookup(label)
		if !ok {
			continue
		}
		registered[handle] = true
		out = append(out, corpusResponse{Label: label, Handle: handle, Registered: true})
	}

	all, err := s.Corpora.ListCorpora(c.Request.Context())
	if err != nil {
		s.logger().Warn("listing service corpora failed", "error", err)
		c.JSON(http.StatusOK, out)
		return
	}
	for _, corpus := range all {
		if registered[corpus.Handle] {
			continue
		}
		out = append(out, corpusResponse{Label: corpus.Label, Handle: corpus.Handle})
	}
	c.JSON(http.StatusOK, out)
}

// handleDeleteCorpus deletes the corpus behind label and removes the label.
// A corpus the service no longer knows about is still unregistered.
func (s *Server) handleDeleteCorpus(c *gin.Context) {
	label := c.Param("label")
	handle, ok := s.Registry.Lookup(label)
	if !ok {
		s.Error(c, docrag.Errorf(docrag.ENOTFOUND, "corpus %q not found", label))
		return
	}

	if err := s.Corpora.DeleteCorpus(c.Request.Context(), handle); err != nil && docrag.ErrorCode(err) != docrag.ENOTFOUND {
		s.Error(c, err)
		return
	}
	if err := s.Registry.Unregister(c.Request.Context(), label); err != nil {
		s.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": label, "handle": handle})
}
