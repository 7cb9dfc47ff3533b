package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	branchdomain "github.com/smallbiznis/streakscore/internal/branch/domain"
	"github.com/smallbiznis/streakscore/internal/config"
	leaderboarddomain "github.com/smallbiznis/streakscore/internal/leaderboard/domain"
	ledgerdomain "github.com/smallbiznis/streakscore/internal/ledger/domain"
	memberdomain "github.com/smallbiznis/streakscore/internal/member/domain"
	"github.com/smallbiznis/streakscore/internal/observability"
	obscontext "github.com/smallbiznis/streakscore/internal/observability/context"
	obsmiddleware "github.com/smallbiznis/streakscore/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/streakscore/internal/observability/metrics"
	obstracing "github.com/smallbiznis/streakscore/internal/observability/tracing"
	scoredomain "github.com/smallbiznis/streakscore/internal/score/domain"
	summarydomain "github.com/smallbiznis/streakscore/internal/summary/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.String("addr", srv.Addr), zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", srv.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	leaderboardSvc leaderboarddomain.Service
	branchSvc      branchdomain.Service
	scoreSvc       scoredomain.Service
	summarySvc     summarydomain.Service
	ledgerSvc      ledgerdomain.Service
	memberSvc      memberdomain.Service
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	LeaderboardSvc leaderboarddomain.Service
	BranchSvc      branchdomain.Service
	ScoreSvc       scoredomain.Service
	SummarySvc     summarydomain.Service
	LedgerSvc      ledgerdomain.Service
	MemberSvc      memberdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		leaderboardSvc: p.LeaderboardSvc,
		branchSvc:      p.BranchSvc,
		scoreSvc:       p.ScoreSvc,
		summarySvc:     p.SummarySvc,
		ledgerSvc:      p.LedgerSvc,
		memberSvc:      p.MemberSvc,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")

	api.GET("/leaderboard/:day", s.GetLeaderboard)
	api.GET("/branches/scores/:day", s.ListBranchScores)

	users := api.Group("/users/:user_id", userContext())
	users.GET("", s.GetMember)
	users.GET("/scores/:day", s.GetDailyScore)
	users.GET("/streak/:day", s.GetStreak)
	users.GET("/summaries/:day", s.GetDailySummary)
	users.GET("/entries/:day", s.ListEntries)
}

// userContext tags the request context with the path user so request logs
// carry it.
func userContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.Param("user_id"))
		c.Request = c.Request.WithContext(obscontext.WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
