// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plantops/timeclock/common/log"
	"github.com/plantops/timeclock/common/log/tag"
	"github.com/plantops/timeclock/config"
	"github.com/plantops/timeclock/engine"
)

type ginHandler struct {
	config config.Config
	logger log.Logger
	svc    Service
}

func newGinHandler(cfg config.Config, eng *engine.Engine, logger log.Logger) *ginHandler {
	svc := NewServiceImpl(cfg, eng, logger)
	return &ginHandler{
		config: cfg,
		logger: logger,
		svc:    svc,
	}
}

func (h *ginHandler) ClockIn(c *gin.Context) {
	var req ClockInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequestSchema(c)
		return
	}
	h.logger.Debug("received ClockIn API request", tag.Value(h.toJson(req)))

	resp, errResp := h.svc.ClockIn(c.Request.Context(), req)
	if errResp != nil {
		c.JSON(errResp.StatusCode, errResp.Error)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ginHandler) ClockOut(c *gin.Context) {
	var req ClockOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequestSchema(c)
		return
	}
	h.logger.Debug("received ClockOut API request", tag.Value(h.toJson(req)))

	resp, errResp := h.svc.ClockOut(c.Request.Context(), req)
	if errResp != nil {
		c.JSON(errResp.StatusCode, errResp.Error)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ginHandler) SubmitConfirmation(c *gin.Context) {
	var req engine.DialogData
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequestSchema(c)
		return
	}
	h.logger.Debug("received SubmitConfirmation API request", tag.Value(h.toJson(req)))

	resp, errResp := h.svc.SubmitConfirmation(c.Request.Context(), req)
	if errResp != nil {
		c.JSON(errResp.StatusCode, errResp.Error)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ginHandler) CancelReview(c *gin.Context) {
	var req engine.DialogData
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequestSchema(c)
		return
	}
	h.logger.Debug("received CancelReview API request", tag.Value(h.toJson(req)))

	resp, errResp := h.svc.CancelReview(c.Request.Context(), req)
	if errResp != nil {
		c.JSON(errResp.StatusCode, errResp.Error)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ginHandler) RetryOverhead(c *gin.Context) {
	var req EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequestSchema(c)
		return
	}
	h.logger.Debug("received RetryOverhead API request", tag.Value(h.toJson(req)))

	resp, errResp := h.svc.RetryOverhead(c.Request.Context(), req)
	if errResp != nil {
		c.JSON(errResp.StatusCode, errResp.Error)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ginHandler) RetryDraft(c *gin.Context) {
	var req EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequestSchema(c)
		return
	}
	h.logger.Debug("received RetryDraft API request", tag.Value(h.toJson(req)))

	resp, errResp := h.svc.RetryDraft(c.Request.Context(), req)
	if errResp != nil {
		c.JSON(errResp.StatusCode, errResp.Error)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ginHandler) DeleteDraft(c *gin.Context) {
	var req DeleteDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequestSchema(c)
		return
	}
	h.logger.Debug("received DeleteDraft API request", tag.Value(h.toJson(req)))

	resp, errResp := h.svc.DeleteDraft(c.Request.Context(), req)
	if errResp != nil {
		c.JSON(errResp.StatusCode, errResp.Error)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ginHandler) ListDrafts(c *gin.Context) {
	resp, errResp := h.svc.ListDrafts(c.Request.Context(), c.Query("class"))
	if errResp != nil {
		c.JSON(errResp.StatusCode, errResp.Error)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ginHandler) ListTimers(c *gin.Context) {
	resp, errResp := h.svc.ListTimers(c.Request.Context())
	if errResp != nil {
		c.JSON(errResp.StatusCode, errResp.Error)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ginHandler) ListOrders(c *gin.Context) {
	resp, errResp := h.svc.ListOrders(c.Request.Context(), c.Query("search"))
	if errResp != nil {
		c.JSON(errResp.StatusCode, errResp.Error)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ginHandler) Reload(c *gin.Context) {
	if errResp := h.svc.Reload(c.Request.Context()); errResp != nil {
		c.JSON(errResp.StatusCode, errResp.Error)
		return
	}
	c.Status(http.StatusOK)
}

func (h *ginHandler) toJson(req any) string {
	str, err := json.Marshal(req)
	if err != nil {
		h.logger.Error("error when serializing request", tag.Error(err), tag.DefaultValue(req))
		return ""
	}
	return string(str)
}

func invalidRequestSchema(c *gin.Context) {
	detail := "invalid request schema"
	c.JSON(http.StatusBadRequest, ApiErrorResponse{
		Detail: &detail,
	})
}
