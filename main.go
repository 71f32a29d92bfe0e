package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/kasuganosora/hidechase/api/rest"
	"github.com/kasuganosora/hidechase/config"
	"github.com/kasuganosora/hidechase/game/ai"
	"github.com/kasuganosora/hidechase/game/sight"
	"github.com/kasuganosora/hidechase/game/world"
	mw "github.com/kasuganosora/hidechase/middleware"
	"github.com/kasuganosora/hidechase/scheduler"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; admin endpoints are disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()

	// ---- World ----
	tuning := ai.TuningFrom(cfg)
	scene := world.NewDemoScene(cfg.World, tuning.Layers, logger)
	go scene.World.Run()
	defer scene.World.Stop()
	logger.Info("world initialized",
		zap.Int("width", cfg.World.Width),
		zap.Int("depth", cfg.World.Depth),
		zap.Int("obstacles", len(scene.World.Obstacles())))

	// ---- Agent ----
	hider := ai.NewConcealment(tuning, scene.World, scene.Grid, logger)
	ctrl := ai.NewController(tuning, scene.Agent, hider, sched, logger)
	bridge := sight.NewBridge(logger)
	bridge.Register(ctrl.ID, 0, ctrl)
	defer ctrl.Stop()

	sensor := world.NewSensor(scene.Agent, scene.Target, scene.Grid, cfg.Sensor.Radius, bridge, logger)
	sched.AddTicker("sensor", time.Duration(cfg.Sensor.CheckMs)*time.Millisecond, func() {
		sensor.Check()
	})
	logger.Info("agent started",
		zap.String("agent", ctrl.ID),
		zap.Float64("search_radius", tuning.SearchRadius))

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(logger), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(ctx, rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	agentH := apirest.NewAgentHandler(logger)
	agentH.Add(apirest.AgentBinding{Controller: ctrl, Bridge: bridge, Target: scene.Target, Sensor: sensor})
	adminH := apirest.NewAdminHandler(sched, agentH, logger)

	api := r.Group("/api")
	{
		api.GET("/agents", agentH.List)
		api.GET("/agents/:id", agentH.Get)

		adminG := api.Group("/admin")
		adminG.Use(apirest.AdminAuth(cfg.Server.AdminKey))
		adminG.POST("/agents/:id/sight", agentH.Sight)
		adminG.GET("/metrics", adminH.Metrics)
		adminG.GET("/scheduler", adminH.ListSchedulerTasks)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}
	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
}
