package serverApp

import (
	"context"
	"net/url"
	"strings"
	"sync"

	database "paysofter-checkout/internal/pkg/db"
	"paysofter-checkout/internal/pkg/middleware"
	"paysofter-checkout/internal/pkg/paysofter"
	"paysofter-checkout/internal/pkg/rabbitmq"
	"paysofter-checkout/internal/pkg/redis"
	s3aws "paysofter-checkout/internal/pkg/storage/s3"
	"paysofter-checkout/internal/repository"
	settlementRepo "paysofter-checkout/internal/repository/settlement"

	checkoutHandler "paysofter-checkout/internal/handler/checkout"
	checkoutService "paysofter-checkout/internal/service/checkout"

	"paysofter-checkout/docs"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Setup initializes the HTTP server with middleware and routes
func Setup(
	engine *gin.Engine,
	ctx context.Context,
	wg *sync.WaitGroup,
	db *database.Database,
	redisClient redis.IRedis,
	rb *rabbitmq.ConnectionManager,
	publisher *rabbitmq.Publisher,
	s3 s3aws.Is3,
	ps paysofter.IClient,
	baseURL string,
) {
	InitMiddleware(engine)

	// Set swagger host dynamically from APP_BASE_URL
	if parsed, err := url.Parse(baseURL); err == nil {
		docs.SwaggerInfo.Host = parsed.Host
		if strings.HasPrefix(baseURL, "https") {
			docs.SwaggerInfo.Schemes = []string{"https"}
		} else {
			docs.SwaggerInfo.Schemes = []string{"http"}
		}
	}

	// Swagger UI
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	engine.GET("/health", func(c *gin.Context) {
		rabbitmqHealth := "unhealthy"
		redisHealth := "unhealthy"
		databaseHealth := "unhealthy"
		rbCon := rb.GetConnection()

		if db != nil && !db.IsCloseConnection() {
			databaseHealth = "healthy"
		}

		if rbCon != nil && !rbCon.IsClosed() {
			rabbitmqHealth = "healthy"
		}
		if redisClient != nil {
			if _, err := redisClient.Get("health"); err == nil || err == redis.NilType {
				redisHealth = "healthy"
			}
		}
		c.JSON(200, gin.H{
			"status": 200,
			"service": gin.H{
				"rabbitmq": gin.H{
					"status": rabbitmqHealth,
				},
				"redis": gin.H{
					"status": redisHealth,
				},
				"database": gin.H{
					"status": databaseHealth,
				},
			},
		})
	})

	e := engine.Group(BasePath())
	InitRoutes(e, ctx, wg, db, redisClient, publisher, s3, ps)
}

// BasePath returns the base API path
func BasePath() string {
	return "/api"
}

// InitMiddleware initializes global middleware
func InitMiddleware(e *gin.Engine) {
	e.Use(middleware.CorsMiddleware())
	e.Use(middleware.RequestInit())
	e.Use(middleware.ResponseInit())
}

func InitRoutes(
	e *gin.RouterGroup,
	ctx context.Context,
	wg *sync.WaitGroup,
	db *database.Database,
	redisClient redis.IRedis,
	publisher *rabbitmq.Publisher,
	s3 s3aws.Is3,
	ps paysofter.IClient,
) {

	// setup repo
	rp := repository.IRepository{
		Settlement: settlementRepo.NewRepo(db),
	}

	// fund sessions live in redis so abandoned checkouts expire on their own
	var store checkoutService.IFundSessionStore
	if redisClient != nil {
		store = checkoutService.NewRedisFundSessionStore(redisClient, 0)
	} else {
		store = checkoutService.NewMemoryFundSessionStore()
	}

	// === Checkout ===
	CheckoutService := checkoutService.NewService(ctx, rp, ps, store, publisher, s3, checkoutService.EngineOptions{})
	CheckoutHandler := checkoutHandler.NewHandler(ctx, CheckoutService)
	CheckoutHandler.NewRoutes(e)
}
