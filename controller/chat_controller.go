package controller

import (
	"net/http"

	"agriqa/models"
	"agriqa/services"

	"github.com/gin-gonic/gin"
)

// ChatController handles the HTTP requests for the Q&A API. It depends on the
// QueryService to perform the actual resolution work.
type ChatController struct {
	queryService services.QueryService
}

// NewChatController is a constructor function that creates a new
// ChatController. This is called from main.go to inject the service
// dependency.
func NewChatController(service services.QueryService) *ChatController {
	return &ChatController{queryService: service}
}

// Root is the Gin handler for GET /api/.
func (c *ChatController) Root(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Agri-Climate Q&A System",
		"status":  "operational",
	})
}

// SubmitQuery is the Gin handler for the POST /api/chat/query endpoint.
// It parses the request, calls the service layer, and returns the HTTP
// response. Absent data never produces an error here: the pipeline degrades
// to a fallback answer, so the only failure a caller can see is a
// persistence problem.
func (c *ChatController) SubmitQuery(ctx *gin.Context) {
	var req models.ChatQueryRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	response, err := c.queryService.SubmitQuery(ctx.Request.Context(), req)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process query"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// GetHistory is the Gin handler for the GET /api/chat/history/:sessionId
// endpoint.
func (c *ChatController) GetHistory(ctx *gin.Context) {
	sessionID := ctx.Param("sessionId")

	response, err := c.queryService.GetHistory(ctx.Request.Context(), sessionID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve chat history"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// ListDatasets is the Gin handler for the GET /api/datasets endpoint.
func (c *ChatController) ListDatasets(ctx *gin.Context) {
	datasets := c.queryService.Registry()
	ctx.JSON(http.StatusOK, models.DatasetListResponse{
		Datasets: datasets,
		Total:    len(datasets),
	})
}

// Health is the Gin handler for the GET /api/health endpoint. A degraded
// dependency is reported in the body, not as a failure status.
func (c *ChatController) Health(ctx *gin.Context) {
	databaseStatus := "healthy"
	if err := c.queryService.Ping(ctx.Request.Context()); err != nil {
		databaseStatus = "unhealthy"
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status": "operational",
		"services": gin.H{
			"database": databaseStatus,
			"gemini":   "configured",
			"data_api": "available",
		},
	})
}
