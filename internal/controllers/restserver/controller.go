// Package restserver serves simulation runs over HTTP.
package restserver

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"sync"

	"github.com/chrissnell/hydrosphere/internal/log"
	"github.com/chrissnell/hydrosphere/internal/storage"
	"github.com/chrissnell/hydrosphere/pkg/config"
	"github.com/chrissnell/hydrosphere/pkg/hydrosphere"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Runner executes and stores simulation runs.
type Runner interface {
	Execute(ctx context.Context, params hydrosphere.Parameters, opts hydrosphere.Options) (*storage.RunRecord, *hydrosphere.Result, error)
	Store() storage.RunStore
}

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.RESTServerData
	Server     http.Server
	FS         fs.FS
	runner     Runner
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// NewController creates a new REST server controller
func NewController(ctx context.Context, wg *sync.WaitGroup, rc config.RESTServerData, runner Runner, logger *zap.SugaredLogger) (*Controller, error) {
	if runner == nil {
		return nil, fmt.Errorf("REST server requires a run manager")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if rc.MaxSteps < 0 {
		return nil, fmt.Errorf("rest.max_steps must not be negative, got %d", rc.MaxSteps)
	}

	// If a ListenAddr was not provided, listen on all interfaces
	if rc.ListenAddr == "" {
		logger.Info("rest.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		rc.ListenAddr = "0.0.0.0"
	}

	if rc.Port == 0 {
		logger.Info("rest.port not provided; defaulting to 8080")
		rc.Port = 8080
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: rc,
		FS:         GetAssets(),
		runner:     runner,
		logger:     logger,
	}

	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.Port)
	ctrl.Server.Handler = ctrl.setupRouter()

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	c.logger.Infof("Starting REST server on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		var err error
		if c.restConfig.Cert != "" && c.restConfig.Key != "" {
			err = c.Server.ListenAndServeTLS(c.restConfig.Cert, c.restConfig.Key)
		} else {
			err = c.Server.ListenAndServe()
		}
		if err != http.ErrServerClosed {
			c.logger.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		c.logger.Info("Shutting down the REST server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// Handler returns the router, for embedding or tests.
func (c *Controller) Handler() http.Handler {
	return c.Server.Handler
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(log.HTTPMiddleware(c.logger))

	router.HandleFunc("/runs", c.handlers.CreateRun).Methods(http.MethodPost)
	router.HandleFunc("/runs", c.handlers.ListRuns).Methods(http.MethodGet)
	router.HandleFunc("/runs/{id}", c.handlers.GetRun).Methods(http.MethodGet)
	router.HandleFunc("/runs/{id}/plot.png", c.handlers.GetRunPlot).Methods(http.MethodGet)
	router.HandleFunc("/defaults", c.handlers.GetDefaults).Methods(http.MethodGet)

	// Static file serving
	router.PathPrefix("/").Handler(http.FileServer(http.FS(c.FS)))

	return router
}
