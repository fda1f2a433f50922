package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yeremiapane/table-ordering/config"
	"github.com/yeremiapane/table-ordering/controllers"
	"github.com/yeremiapane/table-ordering/domain"
	"github.com/yeremiapane/table-ordering/middlewares"
	"github.com/yeremiapane/table-ordering/realtime"
	"github.com/yeremiapane/table-ordering/services"
	"github.com/yeremiapane/table-ordering/utils"
)

// Deps is everything the HTTP layer needs, built once in main.
type Deps struct {
	Config *config.Config
	Log    logrus.FieldLogger
	DB     *gorm.DB
	Tokens *utils.TokenIssuer
	Hub    *realtime.Hub

	Menu        *services.MenuService
	Tables      *services.TableService
	Sessions    *services.SessionService
	Orders      *services.OrderService
	Assignments *services.AssignmentService
	Auth        *services.AuthService
}

const limiterTTL = 10 * time.Minute

func SetupRouter(d Deps) *gin.Engine {
	cfg := d.Config
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(requestid.New())
	r.Use(middlewares.Logger(d.Log))
	r.Use(middlewares.SecurityHeaders(cfg.IsProduction()))
	r.Use(middlewares.CORS(cfg.CORS.Origins))

	apiLimiter := middlewares.NewRateLimiter("api", cfg.Rate.APIRPS, cfg.Rate.APIBurst, limiterTTL)
	orderLimiter := middlewares.NewRateLimiter("order", cfg.Rate.OrderRPS, cfg.Rate.OrderBurst, limiterTTL)
	authLimiter := middlewares.NewRateLimiter("auth", cfg.Rate.AuthRPS, cfg.Rate.AuthBurst, limiterTTL)
	sessionLimiter := middlewares.NewRateLimiter("session", cfg.Rate.SessionRPS, cfg.Rate.SessionBurst, limiterTTL)

	healthCtrl := controllers.NewHealthController(d.DB, cfg.Env)
	menuCtrl := controllers.NewMenuController(d.Menu)
	tableCtrl := controllers.NewTableController(d.Tables, d.Orders)
	sessionCtrl := controllers.NewSessionController(d.Sessions)
	orderCtrl := controllers.NewOrderController(d.Orders)
	assignmentCtrl := controllers.NewTableAssignmentController(d.Assignments)
	authCtrl := controllers.NewAuthController(d.Auth)
	realtimeCtrl := controllers.NewRealtimeController(d.Hub, d.Log)

	authenticate := middlewares.Authenticate(d.Tokens)
	staff := middlewares.Authorize(domain.RoleKitchen, domain.RoleWaiter, domain.RoleAdmin)
	admin := middlewares.Authorize(domain.RoleAdmin)

	r.GET("/health", healthCtrl.Health)

	api := r.Group(cfg.APIPrefix)
	api.GET("/health", healthCtrl.Health)

	// The websocket sits outside the request rate limit; a client holds one
	// long-lived connection.
	api.GET("/ws", middlewares.QueryTokenAuth(d.Tokens), realtimeCtrl.Connect)

	api.Use(apiLimiter.RateLimit())

	menu := api.Group("/menu")
	{
		menu.GET("", menuCtrl.GetMenu)
		menu.GET("/categories", menuCtrl.GetCategories)
		menu.GET("/:id", menuCtrl.GetMenuItem)
	}

	tables := api.Group("/tables")
	{
		tables.GET("", tableCtrl.GetAllTables)
		tables.GET("/:tableNumber", tableCtrl.GetTable)
		tables.GET("/:tableNumber/orders", tableCtrl.GetTableOrders)
		tables.GET("/:tableNumber/unpaid-total", tableCtrl.GetUnpaidTotal)
		tables.POST("/:tableNumber/mark-paid", authenticate, staff, tableCtrl.MarkPaid)
		tables.POST("/:tableNumber/call-waiter", tableCtrl.CallWaiter)
	}

	sessions := api.Group("/sessions")
	{
		sessions.POST("", sessionLimiter.RateLimit(), middlewares.OptionalAuth(d.Tokens), sessionCtrl.CreateSession)
		sessions.POST("/cleanup", authenticate, admin, sessionCtrl.Cleanup)
		sessions.GET("/table/:tableNumber", sessionCtrl.GetTableSessions)
		sessions.GET("/:id", sessionCtrl.GetSession)
		sessions.GET("/:id/orders", sessionCtrl.GetSessionOrders)
		sessions.POST("/:id/heartbeat", sessionCtrl.Heartbeat)
		sessions.DELETE("/:id", sessionCtrl.EndSession)
	}

	orders := api.Group("/orders")
	{
		orders.POST("", orderLimiter.RateLimit(), orderCtrl.CreateOrder)
		orders.GET("", authenticate, staff, orderCtrl.GetAllOrders)
		orders.GET("/:id", orderCtrl.GetOrder)
		orders.PATCH("/:id/status", authenticate, staff, orderCtrl.UpdateOrderStatus)
		orders.DELETE("/:id", orderCtrl.CancelOrder)
	}

	assignments := api.Group("/table-assignments", authenticate)
	{
		assignments.GET("", staff, assignmentCtrl.GetAssignments)
		assignments.GET("/my-tables", middlewares.Authorize(domain.RoleWaiter), assignmentCtrl.GetMyTables)
		assignments.GET("/waiters", admin, assignmentCtrl.GetWaiters)
		assignments.PATCH("/:tableId/assign", admin, assignmentCtrl.Assign)
		assignments.PATCH("/:tableId/unassign", admin, assignmentCtrl.Unassign)
	}

	auth := api.Group("/auth")
	{
		auth.POST("/register", authLimiter.RateLimit(), authenticate, admin, authCtrl.Register)
		auth.POST("/register-customer", authLimiter.RateLimit(), authCtrl.RegisterCustomer)
		auth.POST("/login", authLimiter.RateLimit(), authCtrl.Login)
		auth.GET("/me", authenticate, authCtrl.Me)
		auth.GET("/users", authenticate, admin, authCtrl.ListUsers)
	}

	api.GET("/ws/stats", authenticate, admin, realtimeCtrl.Stats)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Route not found",
			"path":  c.Request.URL.Path,
		})
	})

	return r
}
