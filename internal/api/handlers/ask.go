package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yshiba/webqa/internal/models"
	"github.com/yshiba/webqa/internal/services"
	"github.com/yshiba/webqa/pkg/utils"
)

type AskHandler struct {
	answerService *services.AnswerService
	cache         models.QACache
	logger        *logrus.Logger
}

func NewAskHandler(
	answerService *services.AnswerService,
	cache models.QACache,
	logger *logrus.Logger,
) *AskHandler {
	return &AskHandler{
		answerService: answerService,
		cache:         cache,
		logger:        logger,
	}
}

// HandleAsk answers a question, running the full pipeline on a cache miss
func (h *AskHandler) HandleAsk(c *gin.Context) {
	startTime := time.Now()

	var req models.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Invalid ask request")
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Question cannot be empty", nil)
		return
	}

	if len(question) > 2000 {
		utils.ErrorResponse(c, http.StatusBadRequest, "Question too long (max 2000 characters)", nil)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"question":   question,
		"ip_address": c.ClientIP(),
	}).Info("Processing ask request")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	result, err := h.answerService.Ask(ctx, question)
	if err != nil {
		h.logger.WithError(err).Error("Failed to answer question")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to answer question", err)
		return
	}

	responseTime := time.Since(startTime)

	h.logger.WithFields(logrus.Fields{
		"from_cache":    result.FromCache,
		"response_time": responseTime.Milliseconds(),
	}).Info("Question answered")

	utils.SuccessResponse(c, http.StatusOK, "Question answered", models.AskResponse{
		Question:     question,
		Answer:       result.Answer,
		SourceURL:    result.SourceURL,
		FromCache:    result.FromCache,
		ResponseTime: int(responseTime.Milliseconds()),
	})
}

// HandleCachedAnswer looks up the cache only, never triggering fresh work
func (h *AskHandler) HandleCachedAnswer(c *gin.Context) {
	question := strings.TrimSpace(c.Query("question"))
	if question == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Query parameter 'question' is required", nil)
		return
	}

	answer, found, err := h.cache.LookupAnswer(question)
	if err != nil {
		h.logger.WithError(err).Error("Answer cache lookup failed")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Cache lookup failed", err)
		return
	}

	if !found {
		utils.ErrorResponse(c, http.StatusNotFound, "No cached answer for this question", nil)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Cached answer found", models.AskResponse{
		Question:  question,
		Answer:    answer.AnswerText,
		SourceURL: answer.SourceURL,
		FromCache: true,
	})
}
