package server

import (
	"context"
	"net/http"
	"time"

	"github.com/coverlane/coverlane/internal/client"
	clientdomain "github.com/coverlane/coverlane/internal/client/domain"
	"github.com/coverlane/coverlane/internal/config"
	"github.com/coverlane/coverlane/internal/contract"
	contractdomain "github.com/coverlane/coverlane/internal/contract/domain"
	"github.com/coverlane/coverlane/internal/observability"
	obsmiddleware "github.com/coverlane/coverlane/internal/observability/logger"
	obstracing "github.com/coverlane/coverlane/internal/observability/tracing"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	client.Module,
	contract.Module,
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, obsCfg observability.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if len(cfg.CORSAllowedOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
		corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-Request-Id")
		r.Use(cors.New(corsCfg))
	}
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	clientSvc   clientdomain.Service
	contractSvc contractdomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	ClientSvc   clientdomain.Service
	ContractSvc contractdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		log:         p.Log.Named("server"),
		clientSvc:   p.ClientSvc,
		contractSvc: p.ContractSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Clients --------
	api.POST("/clients/persons", s.CreatePerson)
	api.POST("/clients/companies", s.CreateCompany)
	api.GET("/clients", s.ListClients)
	api.GET("/clients/:id", s.GetClientByID)
	api.PUT("/clients/:id", s.UpdateClient)
	api.DELETE("/clients/:id", s.DeleteClient)

	// -------- Contracts --------
	api.POST("/clients/:id/contracts", s.CreateContract)
	api.GET("/clients/:id/contracts", s.ListActiveContracts)
	api.GET("/clients/:id/contracts/total-cost", s.GetTotalCost)
	api.GET("/contracts/:contractId", s.GetContractByID)
	api.PUT("/contracts/:contractId/cost", s.UpdateContractCost)
	api.PATCH("/contracts/:contractId/cost", s.UpdateContractCost)
	api.DELETE("/contracts/:contractId", s.DeleteContract)
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
