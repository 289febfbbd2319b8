package handler

import (
	"bankoffice/internal/auth"
	"bankoffice/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// SetupRouter 配置路由
func SetupRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *gin.Engine {
	mode := cfg.Server.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)

	r := gin.New()

	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(MetricsMiddleware())
	r.Use(CORSMiddleware())

	h := NewHandler(db, rdb, cfg)

	api := r.Group("/api/v1")
	api.Use(BasicAuthMiddleware(h.userService))
	{
		api.GET("/me", h.Me)
		api.PUT("/me/password", h.ChangePassword)

		// 资金操作
		movement := api.Group("/movement")
		{
			movement.POST("/deposit", RequireCapability(auth.CapDeposit), h.Deposit)
			movement.POST("/withdraw", RequireCapability(auth.CapWithdraw), h.Withdraw)
			movement.POST("/transfer", RequireCapability(auth.CapTransfer), h.Transfer)
		}

		accounts := api.Group("/accounts")
		{
			accounts.GET("", RequireCapability(auth.CapViewAccounts), h.ListAccounts)
			accounts.POST("", RequireCapability(auth.CapOpenAccount), h.OpenAccount)
			accounts.GET("/:number", RequireCapability(auth.CapViewAccounts), h.GetAccount)
			accounts.PATCH("/:number", RequireCapability(auth.CapUpdateAccount), h.UpdateAccount)
			accounts.DELETE("/:number", RequireCapability(auth.CapDeleteAccount), h.DeleteAccount)
			accounts.GET("/:number/transactions", RequireCapability(auth.CapViewHistory), h.ListTransactions)
		}

		api.GET("/transfers/:group_id", RequireCapability(auth.CapViewHistory), h.GetTransfer)
		api.GET("/transactions/:no", RequireCapability(auth.CapViewHistory), h.GetTransaction)

		outbox := api.Group("/outbox", RequireCapability(auth.CapManageOutbox))
		{
			outbox.GET("", h.ListOutbox)
			outbox.POST("/:id/requeue", h.RequeueOutbox)
		}

		clients := api.Group("/clients")
		{
			clients.GET("", RequireCapability(auth.CapViewClients), h.ListClients)
			clients.POST("", RequireCapability(auth.CapManageClients), h.CreateClient)
			clients.GET("/:id", RequireCapability(auth.CapViewClients), h.GetClient)
			clients.PATCH("/:id", RequireCapability(auth.CapManageClients), h.UpdateClient)
			clients.DELETE("/:id", RequireCapability(auth.CapManageClients), h.DeleteClient)
		}

		employees := api.Group("/employees")
		{
			employees.GET("", RequireCapability(auth.CapViewEmployees), h.ListEmployees)
			employees.POST("", RequireCapability(auth.CapManageStaff), h.CreateEmployee)
			employees.GET("/:id", RequireCapability(auth.CapViewEmployees), h.GetEmployee)
			employees.PATCH("/:id", RequireCapability(auth.CapManageStaff), h.UpdateEmployee)
			employees.DELETE("/:id", RequireCapability(auth.CapManageStaff), h.DeleteEmployee)
		}

		branches := api.Group("/branches")
		{
			branches.GET("", RequireCapability(auth.CapViewBranches), h.ListBranches)
			branches.POST("", RequireCapability(auth.CapManageBranch), h.CreateBranch)
			branches.GET("/:id", RequireCapability(auth.CapViewBranches), h.GetBranch)
			branches.PATCH("/:id", RequireCapability(auth.CapManageBranch), h.UpdateBranch)
			branches.DELETE("/:id", RequireCapability(auth.CapManageBranch), h.DeleteBranch)
		}

		users := api.Group("/users", RequireCapability(auth.CapManageUsers))
		{
			users.GET("", h.ListUsers)
			users.POST("", h.CreateUser)
			users.GET("/:id", h.GetUser)
			users.PATCH("/:id", h.UpdateUser)
			users.DELETE("/:id", h.DeleteUser)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
