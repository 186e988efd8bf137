package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/cricket-stats-service/internal/intent"
	"github.com/maxviazov/cricket-stats-service/internal/service"
	"github.com/maxviazov/cricket-stats-service/pkg/response"
)

// QueryHandler carries free-text questions to the query service. Every
// well-formed request gets a 200: "no such query" is an answer, not an error.
type QueryHandler struct {
	svc service.QueryService
}

func NewQueryHandler(svc service.QueryService) *QueryHandler { return &QueryHandler{svc: svc} }

func (h *QueryHandler) Register(r *gin.RouterGroup) {
	g := r.Group(QueryPath)
	g.POST("", h.ask)
	g.GET("", h.askByParam)
	g.GET("/examples", h.examples)
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Query  string `json:"query"`
	Answer string `json:"answer"`
}

func (h *QueryHandler) ask(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.WriteError(c, service.NewInvalidInputError([]service.FieldError{
			{Field: "body", Message: "must be a JSON object with a query field"},
		}))
		return
	}
	h.answer(c, req.Query)
}

func (h *QueryHandler) askByParam(c *gin.Context) {
	h.answer(c, c.Query("q"))
}

func (h *QueryHandler) answer(c *gin.Context, q string) {
	answer := h.svc.Answer(c.Request.Context(), q)
	response.WriteData(c, http.StatusOK, queryResponse{Query: q, Answer: answer})
}

func (h *QueryHandler) examples(c *gin.Context) {
	response.WriteData(c, http.StatusOK, gin.H{"examples": intent.Examples})
}
