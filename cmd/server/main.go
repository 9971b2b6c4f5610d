package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/davilamx/comandas/internal/category"
	"github.com/davilamx/comandas/internal/config"
	"github.com/davilamx/comandas/internal/feed"
	"github.com/davilamx/comandas/internal/httpx"
	"github.com/davilamx/comandas/internal/order"
	"github.com/davilamx/comandas/internal/product"
	"github.com/davilamx/comandas/internal/user"
)

func newRouter(
	secret string,
	orders order.Repository,
	products product.Repository,
	categories category.Repository,
	users user.Repository,
	broker *feed.Broker,
	pub feed.Publisher,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger())

	store := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("comandas_sess", store))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.POST("/login", loginHandler(users))
	r.POST("/logout", logoutHandler())

	// reads and the push stream are open so kitchen display terminals can
	// follow the board without a session
	r.GET("/products", listProductsHandler(products))
	r.GET("/categories", listCategoriesHandler(categories))
	r.GET("/orders", listOrdersHandler(orders))
	r.GET("/orders/events", orderEventsHandler(broker))

	staff := r.Group("/", httpx.RequireRole())
	{
		staff.POST("/orders", createOrderHandler(orders, pub))
		staff.PUT("/orders", updateOrderHandler(orders, pub))
		staff.DELETE("/orders", deleteOrderHandler(orders, pub))
	}

	admin := r.Group("/", httpx.RequireRole(string(user.RoleAdmin)))
	{
		admin.POST("/products", createProductHandler(products))
		admin.PUT("/products", updateProductHandler(products))
		admin.DELETE("/products", deleteProductHandler(products))
		admin.POST("/categories", createCategoryHandler(categories))
		admin.DELETE("/categories", deleteCategoryHandler(categories, products))
		admin.GET("/users", listUsersHandler(users))
		admin.POST("/users", createUserHandler(users))
		admin.DELETE("/users", deleteUserHandler(users))
	}

	return r
}

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("[main] postgres: %v", err)
	}
	defer pool.Close()

	broker := feed.NewBroker()
	listener := &feed.Listener{DB: pool, Broker: broker, Channel: cfg.FeedChannel}
	go listener.Run(ctx)

	pub := &feed.PGPublisher{DB: pool, Channel: cfg.FeedChannel}

	r := newRouter(cfg.SessionSecret,
		order.NewPGRepo(pool),
		product.NewPGRepo(pool),
		category.NewPGRepo(pool),
		user.NewPGRepo(pool),
		broker, pub)

	srv := &http.Server{Addr: cfg.ServerAddr, Handler: r}
	go func() {
		log.Printf("[main] listening on %s", cfg.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("[main] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
