package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/culturepass/cp-stock/config"
	proapp_offer "github.com/culturepass/cp-stock/internal/module/proapp/offer"
	proapp_stock "github.com/culturepass/cp-stock/internal/module/proapp/stock"
	proapp_stockform "github.com/culturepass/cp-stock/internal/module/proapp/stockform"
	"github.com/culturepass/cp-stock/internal/pkg/jwt"
	internalMiddleware "github.com/culturepass/cp-stock/internal/pkg/middleware"
	"github.com/culturepass/cp-stock/internal/pkg/session"
	"github.com/culturepass/cp-stock/pkg/applogger"
	"github.com/culturepass/cp-stock/pkg/gctasks"
	"github.com/culturepass/cp-stock/pkg/kafka"
	"github.com/culturepass/cp-stock/pkg/middleware"
	"github.com/culturepass/cp-stock/pkg/monitoring"
	"github.com/culturepass/cp-stock/pkg/pubsub"
	"github.com/culturepass/cp-stock/pkg/redis"
	"github.com/culturepass/cp-stock/pkg/server"
	"github.com/culturepass/cp-stock/pkg/validator"
)

var c *config.Config

func init() {
	c = config.Get()
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := applogger.GetLogrus()

	mon := monitoring.NewOpenTelemetry(
		c.Application.Name,
		c.Application.Environment,
		c.Monitoring.OTLPEndpoint,
	)

	mon.Start(ctx)

	validate := validator.Get()

	hc := http.DefaultClient

	jsonWebToken := jwt.NewJSONWebToken(c.JWT.PrivateKey, c.JWT.PublicKey)

	publisher := pubsub.PublisherFromConfluentKafkaProducer(logger, kafka.NewProducer())

	rc := redis.GetClient()
	if err := rc.Ping(context.Background()).Err(); err != nil {
		logger.WithContext(ctx).WithError(err).Error()
	}

	cloudTask := gctasks.NewGCTasks(logger, c.GCP.ProjectID, c.GCP.TasksLocation, c.GCP.ServiceAccount)

	sess := session.NewRedisSessionStore(logger, rc)

	proSessionMiddleware := internalMiddleware.NewProSessionMiddleware(jsonWebToken, sess)

	router := mux.NewRouter()
	router.Use(
		otelmux.Middleware(c.Application.Name),
		middleware.HTTPResponseTraceInjection,
		middleware.NewHTTPRequestLogger(logger, c.Application.Debug, http.StatusInternalServerError).Middleware,
	)

	// pro's app
	proappOfferRepo := proapp_offer.NewOfferRepository(c.CatalogAPI.BaseURL, c.CatalogAPI.APIKey, logger, hc)
	proappStockRepo := proapp_stock.NewStockRepository(c.CatalogAPI.BaseURL, c.CatalogAPI.APIKey, logger, hc)
	proappStockFormUseCase := proapp_stockform.NewStockFormUseCase(proapp_stockform.StockFormUseCaseProperty{
		Logger:          logger,
		Timeout:         c.Application.Timeout,
		BaseURL:         c.Application.BaseURL,
		OfferRepository: proappOfferRepo,
		StockRepository: proappStockRepo,
		Publisher:       publisher,
		CloudTask:       cloudTask,
	})
	proapp_stockform.InitHTTPHandler(router, proSessionMiddleware, validate, proappStockFormUseCase)

	handler := middleware.SetChain(
		router,
		cors.New(cors.Options{
			AllowedOrigins:   c.CORS.AllowedOrigins,
			AllowedMethods:   c.CORS.AllowedMethods,
			AllowedHeaders:   c.CORS.AllowedHeaders,
			ExposedHeaders:   c.CORS.ExposedHeaders,
			MaxAge:           c.CORS.MaxAge,
			AllowCredentials: c.CORS.AllowCredentials,
		}).Handler,
	)

	srv := &server.Server{
		Server: http.Server{
			Addr:    fmt.Sprintf(":%d", c.Application.Port),
			Handler: handler,
		},
		Logger: logger,
	}

	go func() {
		srv.ListenAndServe()
	}()

	sigterm := make(chan os.Signal, 1)
	signal.Notify(sigterm, syscall.SIGINT, syscall.SIGTERM)
	<-sigterm

	srv.Shutdown(ctx)
	publisher.Close()
	cloudTask.Close()
	rc.Close()
	mon.Stop(ctx)
}
