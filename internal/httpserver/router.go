package httpserver

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookworm/internal/apiclient"
	"bookworm/internal/domain"
	"bookworm/internal/service/session"
)

// SessionManager is the authentication surface the router needs.
type SessionManager interface {
	Login(ctx context.Context, username, password string) error
	Logout(ctx context.Context)
	State() session.State
	Identity() domain.Identity
	Do(ctx context.Context, req apiclient.Request, out interface{}) error
}

// CartStore is the cart surface the router needs.
type CartStore interface {
	Lines(ctx context.Context) ([]domain.CartLine, error)
	Count(ctx context.Context) (int, error)
	AddLine(ctx context.Context, line domain.CartLine) (bool, error)
	ReplaceLine(ctx context.Context, line domain.CartLine) error
	RemoveLine(ctx context.Context, bookID string) error
	Clear(ctx context.Context) error
}

// CheckoutService submits the cart as an order.
type CheckoutService interface {
	Submit(ctx context.Context, ownerID int64) error
}

// CatalogService is the read-side book and review surface.
type CatalogService interface {
	ListBooks(ctx context.Context, q apiclient.BookListQuery) (domain.Page[domain.Book], error)
	GetBook(ctx context.Context, bookID string) (domain.Book, error)
	FeaturedBooks(ctx context.Context, sortBy string, topK int) ([]domain.Book, error)
	TopDiscountedBooks(ctx context.Context, topK int) ([]domain.Book, error)
	ListReviews(ctx context.Context, bookID string, q apiclient.ReviewListQuery) (domain.Page[domain.Review], error)
	CreateReview(ctx context.Context, bookID string, in apiclient.ReviewInput) (domain.Review, error)
}

// Deps carries the service dependencies for route handlers.
type Deps struct {
	Session  SessionManager
	Cart     CartStore
	Checkout CheckoutService
	Catalog  CatalogService
}

func (d Deps) validate() error {
	if d.Session == nil {
		return errors.New("httpserver: Session dependency is required")
	}
	if d.Cart == nil {
		return errors.New("httpserver: Cart dependency is required")
	}
	if d.Checkout == nil {
		return errors.New("httpserver: Checkout dependency is required")
	}
	if d.Catalog == nil {
		return errors.New("httpserver: Catalog dependency is required")
	}
	return nil
}

// buildRouter wires routes for the gateway.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	sessionRoutes := router.Group("/session")
	{
		sessionRoutes.GET("", sessionStateHandler(deps.Session))
		sessionRoutes.POST("/login", loginHandler(deps.Session))
		sessionRoutes.POST("/logout", logoutHandler(deps.Session))
		sessionRoutes.GET("/profile", profileHandler(deps.Session))
	}

	cartRoutes := router.Group("/cart")
	{
		cartRoutes.GET("", cartGetHandler(deps.Cart))
		cartRoutes.DELETE("", cartClearHandler(deps.Cart))
		cartRoutes.GET("/count", cartCountHandler(deps.Cart))
		cartRoutes.POST("/lines", cartAddLineHandler(deps.Cart))
		cartRoutes.PUT("/lines/:bookID", cartReplaceLineHandler(deps.Cart))
		cartRoutes.DELETE("/lines/:bookID", cartRemoveLineHandler(deps.Cart))
		cartRoutes.POST("/checkout", checkoutHandler(deps.Session, deps.Checkout))
	}

	bookRoutes := router.Group("/books")
	{
		bookRoutes.GET("", listBooksHandler(deps.Catalog))
		bookRoutes.GET("/featured", featuredBooksHandler(deps.Catalog))
		bookRoutes.GET("/top-discounted", topDiscountedHandler(deps.Catalog))
		bookRoutes.GET("/:bookID", getBookHandler(deps.Catalog))
		bookRoutes.GET("/:bookID/reviews", listReviewsHandler(deps.Catalog))
		bookRoutes.POST("/:bookID/reviews", createReviewHandler(deps.Catalog))
	}

	return router, nil
}
