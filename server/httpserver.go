package server

import (
	"context"
	"net/http"
	"time"

	"github.com/cubefs/cubefs/blobstore/common/profile"
	"github.com/cubefs/cubefs/blobstore/common/rpc"
	"github.com/cubefs/cubefs/blobstore/util/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kvcachestore/master/metrics"
)

const (
	defaultShutdownTimeoutS      = 10
	defaultReadRequestTimeoutS   = 30
	defaultWriteResponseTimeoutS = 30
	capacitySampleInterval       = 5 * time.Second
)

type HttpServer struct {
	httpServer *http.Server
	stopSample chan struct{}

	*Server
}

func NewHttpServer(server *Server) *HttpServer {
	return &HttpServer{Server: server, stopSample: make(chan struct{})}
}

func (h *HttpServer) Serve(addr string) {
	ph := profile.NewProfileHandler(addr)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      rpc.MiddlewareHandlerWith(h.newHandler(), ph),
		ReadTimeout:  defaultReadRequestTimeoutS * time.Second,
		WriteTimeout: defaultWriteResponseTimeoutS * time.Second,
	}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server exits:", err)
		}
	}()
	h.httpServer = httpServer

	if h.Server.cfg.EnableMetricReporting {
		go h.sampleLoop()
	}

	log.Info("http server is running at:", addr)
}

func (h *HttpServer) Stop() {
	close(h.stopSample)

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeoutS*time.Second)
	defer cancel()

	h.httpServer.Shutdown(ctx)
}

func (h *HttpServer) newHandler() *rpc.Router {
	rpc.GET("/stats", h.Stats, rpc.OptArgsQuery())
	if h.Server.cfg.EnableMetricReporting {
		metricsHandler := promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})
		rpc.GET("/metrics", func(c *rpc.Context) {
			metricsHandler.ServeHTTP(c.Writer, c.Request)
		})
	}

	return rpc.DefaultRouter
}

func (h *HttpServer) Stats(c *rpc.Context) {
	c.RespondStatus(http.StatusOK)
}

// sampleLoop periodically refreshes the used-ratio/per-segment gauges,
// since they are an aggregate scan over every mounted allocator rather than
// something worth recomputing on every op.
func (h *HttpServer) sampleLoop() {
	ticker := time.NewTicker(capacitySampleInterval)
	defer ticker.Stop()
	for {
		select {
		case <-h.stopSample:
			return
		case <-ticker.C:
			h.Server.sampleCapacity()
		}
	}
}
