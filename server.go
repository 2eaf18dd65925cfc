package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

// customErrorLogger is a custom Gin middleware that logs only errors
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only log when there are errors
		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

// correlationIdMiddleware generates (or propagates) a correlation id once per
// request and attaches it to the request context and response headers.
func correlationIdMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Writer.Header().Set("X-Correlation-Id", cid)
		c.Next()
	}
}

// cashierMiddleware lifts optional register/cashier headers sent by the POS
// front-end into the request context.
func cashierMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if name := strings.TrimSpace(c.GetHeader("x-cashier-name")); name != "" {
			ctx = utils.SetCashierNameInContext(ctx, name)
		}
		if registerId := strings.TrimSpace(c.GetHeader("x-register-id")); registerId != "" {
			ctx = utils.SetRegisterIdInContext(ctx, registerId)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func newRouter(logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(correlationIdMiddleware())
	r.Use(cashierMiddleware())

	corsConfig := cors.DefaultConfig()
	// Production-safe CORS:
	// - In production, require explicit allowlist via CORS_ALLOWED_ORIGINS (comma-separated).
	// - In non-production, allow all (developer convenience).
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			// Safer default: deny all if not configured in production.
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization", "X-Cashier-Name", "X-Register-Id")
	corsConfig.AddExposeHeaders("Content-Length", "X-Correlation-Id")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	api := r.Group("/api")
	{
		api.POST("/documents", createDocumentHandler())
		api.GET("/documents", listDocumentsHandler())
		api.GET("/documents/:id", getDocumentHandler())
		api.POST("/documents/:id/convert", convertDocumentHandler())
		api.POST("/documents/:id/duplicate", duplicateDocumentHandler())
		api.POST("/documents/:id/pay", payDocumentHandler())

		api.POST("/returns", createReturnHandler())
		api.GET("/returns", listReturnsHandler())
		api.GET("/returns/:id", getReturnHandler())
		api.POST("/returns/:id/cancel", cancelReturnHandler())
		api.GET("/invoices/:id/returnable", getReturnableHandler())

		api.POST("/products", createProductHandler())
		api.GET("/products", listProductsHandler())
		api.GET("/products/:id", getProductHandler())
		api.PUT("/products/:id", updateProductHandler())

		api.POST("/customers", createCustomerHandler())
		api.GET("/customers", listCustomersHandler())
		api.GET("/customers/:id", getCustomerHandler())
		api.PUT("/customers/:id", updateCustomerHandler())

		api.POST("/pos/checkout", posCheckoutHandler())

		api.POST("/shifts/open", openShiftHandler())
		api.POST("/shifts/close", closeShiftHandler())
		api.GET("/shifts/current", currentShiftHandler())

		api.GET("/settings", getSettingsHandler())
		api.PUT("/settings", updateSettingsHandler())

		api.GET("/vat-breakdown/:id", vatBreakdownHandler())
	}

	r.NoRoute(customNotFoundHandler)
	return r
}

func main() {
	// Missing .env is fine; env vars may come from the environment directly.
	_ = godotenv.Load()

	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	if _, err := config.LoadSettings(); err != nil {
		logger.WithFields(logrus.Fields{"field": "settings"}).Panic("could not load settings: " + err.Error())
	}

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: newRouter(logger),
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	logger.WithFields(logrus.Fields{
		"info": "Listening",
	}).Info("connect to http://localhost:", port, "/api")
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	// Drain HTTP requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
