package handler

import (
	"errors"
	"log"
	"strconv"
	"time"

	"bankoffice/internal/auth"
	"bankoffice/internal/infrastructure/metrics"
	"bankoffice/internal/model"
	"bankoffice/internal/service"
	"bankoffice/pkg/response"

	"github.com/gin-gonic/gin"
)

const currentUserKey = "currentUser"

// LoggerMiddleware 日志中间件
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if query != "" {
			path = path + "?" + query
		}

		log.Printf("[HTTP] %d | %13v | %15s | %-7s %s",
			status,
			latency,
			c.ClientIP(),
			c.Request.Method,
			path,
		)
	}
}

// MetricsMiddleware 按路由模板统计请求数，未匹配的路由记为 unmatched
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// RecoveryMiddleware 恢复中间件，防止 panic 导致服务崩溃
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[PANIC] %v", err)
				response.ServerError(c, "服务器内部错误")
			}
		}()
		c.Next()
	}
}

// CORSMiddleware 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// BasicAuthMiddleware 每个请求都带用户名密码，校验通过后把用户放进上下文
func BasicAuthMiddleware(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok || username == "" {
			response.Unauthorized(c, "需要登录")
			return
		}

		user, err := users.Authenticate(c.Request.Context(), username, password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				log.Printf("[Auth] 认证失败: username=%s, ip=%s", username, c.ClientIP())
				response.Unauthorized(c, err.Error())
				return
			}
			log.Printf("[Auth] 查询用户失败: %v", err)
			response.ServerError(c, "认证服务不可用")
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// RequireCapability 当前用户的角色必须拥有该权限
func RequireCapability(capability auth.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || !auth.Can(user.Role, capability) {
			response.Forbidden(c, "没有权限执行该操作")
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *model.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}
