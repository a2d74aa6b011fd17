package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/qkart/storefront/internal/domain"
	"github.com/qkart/storefront/internal/usecase"
	"go.uber.org/zap"
)

// Version is reported by the health check
const Version = "1.0.0"

const msgCheckoutLogin = "You must be logged in to access the checkout page"

// Handler holds dependencies for HTTP handlers
type Handler struct {
	views      *usecase.ViewRegistry
	sessions   domain.SessionStore
	sessionTTL time.Duration
	logger     *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(views *usecase.ViewRegistry, sessions domain.SessionStore, sessionTTL time.Duration, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		views:      views,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		logger:     logger.Named("http"),
	}
}

type searchRequest struct {
	Value string `json:"value"`
}

type addToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

type quantityRequest struct {
	Quantity *int `json:"qty" binding:"required"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "storefront-bff",
		"version": Version,
		"views":   h.views.Len(),
	})
}

// Login stores the user's credentials in a session. An existing session id
// in the request header is reused so the visitor keeps their session.
func (h *Handler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and token are required"})
		return
	}

	ctx := c.Request.Context()
	id := c.GetHeader(SessionHeader)
	if id != "" {
		if _, err := h.sessions.Get(ctx, id); err != nil {
			id = ""
		}
	}
	if id == "" {
		id = uuid.NewString()
	}

	session := &domain.Session{
		ID:        id,
		Username:  req.Username,
		Token:     req.Token,
		Balance:   req.Balance,
		CreatedAt: time.Now(),
	}
	if err := h.sessions.Save(ctx, session, h.sessionTTL); err != nil {
		h.logger.Error("save session failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create session"})
		return
	}

	h.logger.Info("user logged in", zap.String("user", session.Username), zap.String("session_id", id))
	c.Header(SessionHeader, id)
	c.JSON(http.StatusCreated, gin.H{
		"sessionId": id,
		"username":  session.Username,
		"balance":   session.Balance,
	})
}

// Logout forgets the session and its storefront view
func (h *Handler) Logout(c *gin.Context) {
	id := c.GetHeader(SessionHeader)
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": SessionHeader + " header is required"})
		return
	}

	if err := h.sessions.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("delete session failed", zap.String("session_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not end session"})
		return
	}
	h.views.Drop(id)

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// GetStorefront loads the storefront on first use and returns its state.
// ?refresh=true reloads the catalog and cart.
func (h *Handler) GetStorefront(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var err error
	if c.Query("refresh") == "true" {
		err = view.Load(ctx)
	} else {
		err = view.EnsureLoaded(ctx)
	}
	if err != nil {
		h.respondError(c, view, err)
		return
	}

	c.JSON(http.StatusOK, view.Snapshot())
}

// Search records search box input. The search itself runs once the input
// has been quiet for the debounce delay; the result shows up in the next
// GetStorefront.
func (h *Handler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	view, ok := h.loadedView(c)
	if !ok {
		return
	}

	view.OnSearchInput(req.Value)
	c.JSON(http.StatusAccepted, gin.H{"status": "scheduled", "value": req.Value})
}

// AddToCart adds one unit of a product from the catalog
func (h *Handler) AddToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId is required"})
		return
	}

	view, ok := h.loadedView(c)
	if !ok {
		return
	}

	if err := view.AddToCart(c.Request.Context(), req.ProductID); err != nil {
		h.respondError(c, view, err)
		return
	}
	c.JSON(http.StatusOK, view.Snapshot())
}

// SetQuantity sets the quantity of a cart item; zero removes it
func (h *Handler) SetQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "qty is required"})
		return
	}

	view, ok := h.loadedView(c)
	if !ok {
		return
	}

	if err := view.SetQuantity(c.Request.Context(), c.Param("productId"), *req.Quantity); err != nil {
		h.respondError(c, view, err)
		return
	}
	c.JSON(http.StatusOK, view.Snapshot())
}

// Checkout returns the order details of the current cart
func (h *Handler) Checkout(c *gin.Context) {
	view, ok := h.loadedView(c)
	if !ok {
		return
	}
	if !view.Session().Authenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgCheckoutLogin})
		return
	}

	checkout, err := view.Checkout()
	if err != nil {
		h.respondError(c, view, err)
		return
	}
	c.JSON(http.StatusOK, checkout)
}

// view resolves the request's session and returns its storefront view.
// Without a session header an anonymous session is created and its id is
// returned in the response header.
func (h *Handler) view(c *gin.Context) (*usecase.StorefrontView, bool) {
	ctx := c.Request.Context()
	id := c.GetHeader(SessionHeader)

	if id == "" {
		session := &domain.Session{ID: uuid.NewString(), CreatedAt: time.Now()}
		if err := h.sessions.Save(ctx, session, h.sessionTTL); err != nil {
			h.logger.Error("save anonymous session failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create session"})
			return nil, false
		}
		c.Header(SessionHeader, session.ID)
		return h.views.Get(session), true
	}

	session, err := h.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			h.views.Drop(id)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session not found or expired"})
			return nil, false
		}
		h.logger.Error("load session failed", zap.String("session_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load session"})
		return nil, false
	}

	c.Header(SessionHeader, session.ID)
	return h.views.Get(session), true
}

// loadedView is view followed by a first-time load
func (h *Handler) loadedView(c *gin.Context) (*usecase.StorefrontView, bool) {
	view, ok := h.view(c)
	if !ok {
		return nil, false
	}
	if err := view.EnsureLoaded(c.Request.Context()); err != nil {
		h.respondError(c, view, err)
		return nil, false
	}
	return view, true
}

// respondError writes err with its status and the notifications it raised
func (h *Handler) respondError(c *gin.Context, view *usecase.StorefrontView, err error) {
	status, message := statusFor(err)
	_ = c.Error(err)
	c.JSON(status, gin.H{
		"error":         message,
		"notifications": view.DrainNotifications(),
	})
}

// statusFor maps an error to an HTTP status and a user-facing message
func statusFor(err error) (int, string) {
	var serverErr *domain.ServerError
	switch {
	case errors.Is(err, domain.ErrNotLoggedIn):
		return http.StatusUnauthorized, usecase.MsgLoginRequired
	case errors.Is(err, domain.ErrAlreadyInCart):
		return http.StatusConflict, usecase.MsgAlreadyInCart
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, domain.ErrInvalidRequest.Error()
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusBadRequest, domain.ErrEmptyCart.Error()
	case errors.As(err, &serverErr):
		return http.StatusBadGateway, serverErr.Message
	case errors.Is(err, domain.ErrConnectivity):
		return http.StatusServiceUnavailable, domain.ErrConnectivity.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "shop API timed out"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
