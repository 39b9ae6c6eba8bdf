package gin

import (
	"net/http"

	"github.com/fwojciec/docrag"
	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	Query   string   `json:"query"`
	Mode    string   `json:"mode"`
	Corpora []string `json:"corpora"`
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.Error(c, docrag.Errorf(docrag.EINVALID, "invalid JSON body: %v", err))
		return
	}

	mode, err := docrag.ParseMode(req.Mode)
	if err != nil {
		s.Error(c, err)
		return
	}

	answer, err := s.Asker.Ask(c.Request.Context(), docrag.Question{
		Query:  req.Query,
		Mode:   mode,
		Labels: req.Corpora,
	})
	if err != nil {
		s.Error(c, err)
		return
	}
	if answer.Handles == nil {
		answer.Handles = []string{}
	}
	c.JSON(http.StatusOK, answer)
}
