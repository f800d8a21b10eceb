// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/plantops/timeclock/common/log"
	"github.com/plantops/timeclock/common/log/tag"
	"github.com/plantops/timeclock/config"
	"github.com/plantops/timeclock/engine"
)

const PathClockIn = "/api/v1/timeclock/clock-in"
const PathClockOut = "/api/v1/timeclock/clock-out"
const PathSubmitConfirmation = "/api/v1/timeclock/confirmation/submit"
const PathCancelReview = "/api/v1/timeclock/confirmation/cancel"
const PathRetryOverhead = "/api/v1/timeclock/overhead/retry"
const PathRetryDraft = "/api/v1/timeclock/drafts/retry"
const PathDeleteDraft = "/api/v1/timeclock/drafts/delete"
const PathListDrafts = "/api/v1/timeclock/drafts"
const PathListTimers = "/api/v1/timeclock/timers"
const PathListOrders = "/api/v1/timeclock/orders"
const PathReload = "/api/v1/timeclock/reload"
const PathMetrics = "/metrics"

type defaultSever struct {
	rootCtx    context.Context
	cfg        config.Config
	logger     log.Logger
	engine     *gin.Engine
	httpServer *http.Server
}

func NewDefaultAPIServerWithGin(
	rootCtx context.Context, cfg config.Config, eng *engine.Engine, logger log.Logger,
) Server {
	ginEngine := gin.Default()

	handler := newGinHandler(cfg, eng, logger)

	ginEngine.POST(PathClockIn, handler.ClockIn)
	ginEngine.POST(PathClockOut, handler.ClockOut)
	ginEngine.POST(PathSubmitConfirmation, handler.SubmitConfirmation)
	ginEngine.POST(PathCancelReview, handler.CancelReview)
	ginEngine.POST(PathRetryOverhead, handler.RetryOverhead)
	ginEngine.POST(PathRetryDraft, handler.RetryDraft)
	ginEngine.POST(PathDeleteDraft, handler.DeleteDraft)
	ginEngine.POST(PathReload, handler.Reload)
	ginEngine.GET(PathListDrafts, handler.ListDrafts)
	ginEngine.GET(PathListTimers, handler.ListTimers)
	ginEngine.GET(PathListOrders, handler.ListOrders)
	ginEngine.GET(PathMetrics, gin.WrapH(promhttp.Handler()))

	svrCfg := cfg.ApiService.HttpServer
	httpServer := &http.Server{
		Addr:              svrCfg.Address,
		ReadTimeout:       svrCfg.ReadTimeout,
		WriteTimeout:      svrCfg.WriteTimeout,
		ReadHeaderTimeout: svrCfg.ReadHeaderTimeout,
		IdleTimeout:       svrCfg.IdleTimeout,
		MaxHeaderBytes:    svrCfg.MaxHeaderBytes,
		TLSConfig:         svrCfg.TLSConfig,
		Handler:           ginEngine,
		BaseContext: func(listener net.Listener) context.Context {
			// for graceful shutdown
			return rootCtx
		},
	}

	return &defaultSever{
		rootCtx:    rootCtx,
		cfg:        cfg,
		logger:     logger,
		engine:     ginEngine,
		httpServer: httpServer,
	}
}

func (s defaultSever) Start() error {
	go func() {
		err := s.httpServer.ListenAndServe()
		s.logger.Info("Http Server for API service is closed", tag.Error(err))
	}()

	return nil
}

func (s defaultSever) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
