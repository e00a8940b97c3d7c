package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"github.com/aprovatotal/validador-questoes-backend/internal/auth"
	"github.com/aprovatotal/validador-questoes-backend/internal/config"
	"github.com/aprovatotal/validador-questoes-backend/internal/handler"
	"github.com/aprovatotal/validador-questoes-backend/internal/middleware"
	"github.com/aprovatotal/validador-questoes-backend/internal/repository"
	"github.com/aprovatotal/validador-questoes-backend/internal/service"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	cfg    *config.Config
	logger *zap.Logger
	log    *logrus.Logger
}

func NewServer(db *sqlx.DB, cfg *config.Config, logger *zap.Logger) *Server {
	router := gin.Default()

	s := &Server{
		router: router,
		db:     db,
		cfg:    cfg,
		logger: logger,
		log:    logrus.StandardLogger(),
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	tokens := auth.NewTokenManager(
		[]byte(s.cfg.JWT.AccessSecret),
		[]byte(s.cfg.JWT.RefreshSecret),
		s.cfg.AccessTTL(),
		s.cfg.RefreshTTL(),
	)

	// Repositories
	userRepo := repository.NewUserRepository(s.db, s.logger)
	disciplineRepo := repository.NewDisciplineRepository(s.db, s.logger)
	questionRepo := repository.NewQuestionRepository(s.db, s.logger)
	trackingRepo := repository.NewTrackingRepository(s.db, questionRepo, s.logger)
	catalogRepo := repository.NewCatalogRepository(s.db, s.logger)
	dashboardRepo := repository.NewDashboardRepository(s.db, s.logger)

	// Services and handlers
	authService := service.NewAuthService(userRepo, tokens, s.logger)
	authHandler := handler.NewAuthHandler(authService, s.cfg, s.log)
	userHandler := handler.NewUserHandler(userRepo, s.log)
	disciplineHandler := handler.NewDisciplineHandler(disciplineRepo, s.log)
	questionHandler := handler.NewQuestionHandler(questionRepo, disciplineRepo, s.log)
	trackingHandler := handler.NewTrackingHandler(trackingRepo, s.log)
	catalogHandler := handler.NewCatalogHandler(catalogRepo, s.log)
	dashboardHandler := handler.NewDashboardHandler(dashboardRepo, s.log)

	authRequired := middleware.AuthMiddleware(tokens, userRepo, s.logger)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Authentication routes. Refresh takes its token in the body; everything
	// else protected expects a bearer access token.
	authGroup := s.router.Group("/auth")
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/register", authRequired, authHandler.Register)
	authGroup.PATCH("/admin/change-password", authRequired, authHandler.AdminChangePassword)

	protected := s.router.Group("/")
	protected.Use(authRequired)
	{
		protected.GET("/users", userHandler.List)
		protected.PATCH("/users/:uuid/deactivate", userHandler.Deactivate)
		protected.PATCH("/users/:uuid/activate", userHandler.Activate)

		protected.GET("/disciplines", disciplineHandler.List)

		protected.POST("/questions", questionHandler.Create)
		protected.GET("/questions", questionHandler.List)
		protected.GET("/questions/approved", questionHandler.ListApproved)
		protected.GET("/questions/:uuid", questionHandler.Get)
		protected.PATCH("/questions/:uuid", questionHandler.Update)
		protected.PATCH("/questions/:uuid/approve", questionHandler.Approve)
		protected.DELETE("/questions/:uuid", questionHandler.Delete)

		protected.GET("/modules", catalogHandler.ListModules)
		protected.GET("/subjects", catalogHandler.ListSubjects)

		protected.POST("/trackings", trackingHandler.Create)
		protected.GET("/trackings", trackingHandler.List)
		protected.GET("/trackings/:uuid", trackingHandler.Get)
		protected.GET("/trackings/:uuid/with-questions", trackingHandler.GetWithQuestions)

		protected.GET("/dashboard/stats", dashboardHandler.Stats)
	}
}

func (s *Server) Run(addr string) {
	s.log.Infof("Server starting on port %s...", addr)
	if err := s.router.Run(addr); err != nil {
		s.log.Fatalf("Server failed to start: %v", err)
	}
}
