package gin

import (
	"net/http"

	"github.com/fwojciec/docrag"
	"github.com/gin-gonic/gin"
)

var codes = map[string]int{
	docrag.ECONFLICT:    http.StatusConflict,
	docrag.EINVALID:     http.StatusBadRequest,
	docrag.ENOTFOUND:    http.StatusNotFound,
	docrag.EUNAVAILABLE: http.StatusServiceUnavailable,
	docrag.EINTERNAL:    http.StatusInternalServerError,
}

// ErrorStatusCode returns the HTTP status for an application error code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// Error writes err as a JSON error response. Only the application error
// message reaches the client; internal details stay in the request log.
func (s *Server) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(ErrorStatusCode(docrag.ErrorCode(err)), gin.H{"error": docrag.ErrorMessage(err)})
}
