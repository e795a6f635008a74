// Package restserver exposes the ray tracer and the trace archive over
// HTTP for rendering clients.
package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/seismotools/raypath/internal/database"
	"github.com/seismotools/raypath/internal/log"
	"github.com/seismotools/raypath/internal/types"
	"github.com/seismotools/raypath/pkg/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Controller represents the REST server controller
type Controller struct {
	ctx            context.Context
	wg             *sync.WaitGroup
	configProvider config.ConfigProvider
	restConfig     config.RESTServerData
	Server         http.Server
	DB             *gorm.DB
	DBEnabled      bool
	Models         map[string]config.ModelData
	distributor    chan<- types.TraceRecord
	logger         *zap.SugaredLogger
	handlers       *Handlers
}

// NewController creates a new REST server controller. The distributor
// channel receives every trace computed through the API so the storage
// manager can archive it; pass nil to disable archiving.
func NewController(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, rc config.RESTServerData, distributor chan<- types.TraceRecord, logger *zap.SugaredLogger) (*Controller, error) {
	ctrl := &Controller{
		ctx:            ctx,
		wg:             wg,
		configProvider: configProvider,
		restConfig:     rc,
		distributor:    distributor,
		logger:         logger,
	}

	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %v", err)
	}

	// Index configured models by name for the trace and model endpoints
	ctrl.Models = make(map[string]config.ModelData)
	for _, m := range cfgData.Models {
		ctrl.Models[m.Name] = m
	}
	if len(ctrl.Models) == 0 {
		logger.Info("no seismic models configured; only inline-model traces will be served")
	}

	// If a Postgres archive was configured, set up a GORM DB handle so
	// that the handlers can retrieve archived traces
	if cfgData.Storage.Postgres != nil && cfgData.Storage.Postgres.ConnectionString != "" {
		ctrl.DB, err = database.CreateConnection(cfgData.Storage.Postgres.ConnectionString)
		if err != nil {
			return nil, fmt.Errorf("REST server could not connect to database: %v", err)
		}
		ctrl.DBEnabled = true
	}

	if rc.DefaultListenAddr == "" {
		logger.Info("rest.default_listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		rc.DefaultListenAddr = "0.0.0.0"
	}
	if rc.HTTPPort == 0 {
		logger.Info("rest.http_port not provided; defaulting to 8080")
		rc.HTTPPort = 8080
	}
	ctrl.restConfig = rc

	ctrl.handlers = NewHandlers(ctrl)

	router := ctrl.setupRouter()
	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.DefaultListenAddr, rc.HTTPPort)
	ctrl.Server.Handler = router

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	log.Info("Starting REST server controller...")
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.restConfig.TLSCertPath != "" && c.restConfig.TLSKeyPath != "" {
			if err := c.Server.ListenAndServeTLS(c.restConfig.TLSCertPath, c.restConfig.TLSKeyPath); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				log.Errorf("REST server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the REST server...")
		c.Server.Shutdown(context.Background())
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	router.Use(c.requestLogMiddleware)

	router.HandleFunc("/trace", c.handlers.PostTrace).Methods(http.MethodPost)
	router.HandleFunc("/models", c.handlers.GetModels).Methods(http.MethodGet)
	router.HandleFunc("/models/{name}", c.handlers.GetModel).Methods(http.MethodGet)

	// Archive endpoints only work when a Postgres archive is configured;
	// the handlers answer 503 otherwise
	router.HandleFunc("/traces", c.handlers.GetTraces).Methods(http.MethodGet)
	router.HandleFunc("/traces/{id}", c.handlers.GetTrace).Methods(http.MethodGet)

	router.HandleFunc("/health", c.handlers.GetHealth).Methods(http.MethodGet)

	return router
}

// requestLogMiddleware logs every request with method, path and duration
func (c *Controller) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		c.logger.Debugf("%s %s (%v)", r.Method, r.URL.Path, time.Since(start))
	})
}
