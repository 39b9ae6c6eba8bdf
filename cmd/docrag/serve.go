package main

import (
	docgin "github.com/fwojciec/docrag/gin"
	"github.com/gin-gonic/gin"
)

// Run executes the serve command. It blocks until the context is cancelled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	gin.SetMode(gin.ReleaseMode)

	s := docgin.NewServer()
	s.Crawler = deps.Crawler
	s.Ingester = deps.Ingester
	s.Asker = deps.Asker
	s.Registry = deps.Registry
	s.Corpora = deps.Corpora
	s.Files = deps.Files
	s.MaxPages = deps.Config.Crawl.MaxPages
	s.Logger = deps.logger()

	addr := deps.Config.Addr()
	if c.Port > 0 {
		deps.Config.Port = c.Port
		addr = deps.Config.Addr()
	}
	return s.Serve(deps.Ctx, addr)
}
