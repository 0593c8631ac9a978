package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/opsdeck/opsdeck/internal/alert"
	alertdomain "github.com/opsdeck/opsdeck/internal/alert/domain"
	alertservice "github.com/opsdeck/opsdeck/internal/alert/service"
	"github.com/opsdeck/opsdeck/internal/config"
	"github.com/opsdeck/opsdeck/internal/credential"
	credentialdomain "github.com/opsdeck/opsdeck/internal/credential/domain"
	"github.com/opsdeck/opsdeck/internal/dashboard"
	dashboarddomain "github.com/opsdeck/opsdeck/internal/dashboard/domain"
	"github.com/opsdeck/opsdeck/internal/incident"
	incidentdomain "github.com/opsdeck/opsdeck/internal/incident/domain"
	"github.com/opsdeck/opsdeck/internal/observability"
	"github.com/opsdeck/opsdeck/internal/observability/tracing"
	"github.com/opsdeck/opsdeck/internal/project"
	projectdomain "github.com/opsdeck/opsdeck/internal/project/domain"
	"github.com/opsdeck/opsdeck/internal/providers/storage"
	"github.com/opsdeck/opsdeck/internal/purchase"
	purchasedomain "github.com/opsdeck/opsdeck/internal/purchase/domain"
	"github.com/opsdeck/opsdeck/internal/subscription"
	subscriptiondomain "github.com/opsdeck/opsdeck/internal/subscription/domain"
	"github.com/opsdeck/opsdeck/internal/tool"
	tooldomain "github.com/opsdeck/opsdeck/internal/tool/domain"
	"github.com/opsdeck/opsdeck/internal/usage"
	usagedomain "github.com/opsdeck/opsdeck/internal/usage/domain"
	"github.com/opsdeck/opsdeck/internal/userrole"
	userroledomain "github.com/opsdeck/opsdeck/internal/userrole/domain"
	"github.com/opsdeck/opsdeck/internal/wallet"
	walletdomain "github.com/opsdeck/opsdeck/internal/wallet/domain"
)

var Module = fx.Module("http.server",
	observability.Module,
	storage.Module,
	fx.Provide(registerGin),
	tool.Module,
	subscription.Module,
	wallet.Module,
	usage.Module,
	project.Module,
	credential.Module,
	incident.Module,
	purchase.Module,
	userrole.Module,
	alert.Module,
	alertservice.Module,
	dashboard.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, metrics *observability.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(tracing.GinMiddleware())
	r.Use(RequestLogger(log))
	r.Use(observability.GinMiddleware(metrics))
	r.Use(PrincipalMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, metrics *observability.Metrics) *gin.Engine {
	return NewEngine(log, metrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
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

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	log             *zap.Logger
	genID           *snowflake.Node
	metrics         *observability.Metrics
	toolSvc         tooldomain.Service
	subscriptionSvc subscriptiondomain.Service
	walletSvc       walletdomain.Service
	usageSvc        usagedomain.Service
	projectSvc      projectdomain.Service
	credentialSvc   credentialdomain.Service
	incidentSvc     incidentdomain.Service
	purchaseSvc     purchasedomain.Service
	userRoleSvc     userroledomain.Service
	alertSvc        alertdomain.Service
	dashboardSvc    dashboarddomain.Service
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	Log             *zap.Logger
	GenID           *snowflake.Node
	Metrics         *observability.Metrics `optional:"true"`
	ToolSvc         tooldomain.Service
	SubscriptionSvc subscriptiondomain.Service
	WalletSvc       walletdomain.Service
	UsageSvc        usagedomain.Service
	ProjectSvc      projectdomain.Service
	CredentialSvc   credentialdomain.Service
	IncidentSvc     incidentdomain.Service
	PurchaseSvc     purchasedomain.Service
	UserRoleSvc     userroledomain.Service
	AlertSvc        alertdomain.Service
	DashboardSvc    dashboarddomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		log:             p.Log.Named("server"),
		genID:           p.GenID,
		metrics:         p.Metrics,
		toolSvc:         p.ToolSvc,
		subscriptionSvc: p.SubscriptionSvc,
		walletSvc:       p.WalletSvc,
		usageSvc:        p.UsageSvc,
		projectSvc:      p.ProjectSvc,
		credentialSvc:   p.CredentialSvc,
		incidentSvc:     p.IncidentSvc,
		purchaseSvc:     p.PurchaseSvc,
		userRoleSvc:     p.UserRoleSvc,
		alertSvc:        p.AlertSvc,
		dashboardSvc:    p.DashboardSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/api/v1")

	// -------- Tools --------
	v1.GET("/tools", s.ListTools)
	v1.POST("/tools", s.CreateTool)
	v1.GET("/tools/:id", s.GetToolDetail)
	v1.PATCH("/tools/:id", s.UpdateTool)

	// -------- Subscriptions --------
	v1.GET("/subscriptions", s.ListSubscriptions)
	v1.POST("/subscriptions", s.CreateSubscription)

	// -------- Wallets --------
	v1.GET("/wallets", s.ListWallets)
	v1.POST("/wallets", s.CreateWallet)
	v1.GET("/wallets/:id", s.GetWalletDetail)
	v1.POST("/wallets/:id/topups", s.AddTopup)
	v1.PATCH("/wallets/:id/threshold", s.UpdateWalletThreshold)

	// -------- Usage --------
	v1.GET("/usage", s.ListUsage)
	v1.PUT("/usage", s.LogUsage)

	// -------- Projects --------
	v1.GET("/projects", s.ListProjects)
	v1.POST("/projects", s.CreateProject)
	v1.POST("/projects/:id/tools", s.MapProjectTool)

	// -------- Credentials --------
	v1.GET("/credentials", s.ListCredentials)
	v1.POST("/credentials", s.CreateCredential)
	v1.POST("/credentials/:id/rotated", s.MarkCredentialRotated)

	// -------- Incidents --------
	v1.GET("/incidents", s.ListIncidents)
	v1.POST("/incidents", s.LogIncident)
	v1.POST("/incidents/:id/resolve", s.ResolveIncident)

	// -------- Purchases --------
	v1.GET("/purchases", s.ListPurchases)
	v1.POST("/purchases", s.CreatePurchase)
	v1.PUT("/purchases/:id", s.UpdatePurchase)
	v1.DELETE("/purchases/:id", s.DeletePurchase)
	v1.POST("/receipts", s.UploadReceipt)

	// -------- Identity --------
	v1.GET("/me", s.Me)
	v1.GET("/roles", s.ListRoles)
	v1.PUT("/roles", s.AssignRole)

	// -------- Derived views --------
	v1.GET("/alerts", s.ListAlerts)
	v1.GET("/dashboard", s.GetDashboard)
}
