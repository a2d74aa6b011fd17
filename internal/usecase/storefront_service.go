package usecase

import (
	"context"
	"errors"
	"net/http"

	"github.com/qkart/storefront/internal/domain"
	"go.uber.org/zap"
)

// User-facing messages for failures without a usable server message
const (
	MsgCatalogUnavailable = "Something went wrong. Check the backend console for more details"
	MsgSearchUnavailable  = "Could not fetch the products. Check that the backend server is working"
	MsgCartUnavailable    = "Could not fetch cart details. Check that the backend is running, reachable and returns valid JSON."
	MsgCartUpdateFailed   = "Could not update the cart. Check that the backend is running, reachable and returns valid JSON."
	MsgLoginRequired      = "Please log in to add item to the cart"
	MsgAlreadyInCart      = "Item already in cart"
	MsgNoProductsFound    = "No products found"
)

// CartOptions modifies AddOrUpdateCartItem
type CartOptions struct {
	// PreventDuplicate rejects the call when the product is already in the
	// cart. Set by the catalog's add button, not by the cart's +/- controls.
	PreventDuplicate bool
}

// SearchResult is the outcome of a catalog search
type SearchResult struct {
	Products []domain.Product
	// NotFound is set when the API reported no matches
	NotFound bool
	// Fallback is set when the API failed and Products is the full catalog
	Fallback bool
}

// StorefrontService wraps the shop API calls the storefront makes and
// turns their failures into notifications.
type StorefrontService struct {
	client domain.ShopClient
	logger *zap.Logger
}

// NewStorefrontService creates a new storefront service
func NewStorefrontService(client domain.ShopClient, logger *zap.Logger) *StorefrontService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StorefrontService{
		client: client,
		logger: logger.Named("storefront"),
	}
}

// FetchCatalog returns the full catalog. A 5xx surfaces the server's
// message; any other failure surfaces a generic message.
func (s *StorefrontService) FetchCatalog(ctx context.Context, notifier domain.Notifier) ([]domain.Product, error) {
	products, err := s.client.ListProducts(ctx)
	if err != nil {
		if msg, ok := serverMessage(err, isServerFailure); ok {
			notifyError(notifier, msg)
		} else {
			notifyError(notifier, MsgCatalogUnavailable)
		}
		s.logger.Warn("fetch catalog failed", zap.Error(err))
		return nil, err
	}

	s.logger.Debug("catalog fetched", zap.Int("products", len(products)))
	return products, nil
}

// SearchCatalog searches the catalog. A 404 is an empty result, not an
// error. A 5xx surfaces the server's message and falls back to fullCatalog.
// Any other failure surfaces a generic message and returns the error.
func (s *StorefrontService) SearchCatalog(ctx context.Context, notifier domain.Notifier, query string, fullCatalog []domain.Product) (SearchResult, error) {
	products, err := s.client.SearchProducts(ctx, query)
	if err == nil {
		return SearchResult{Products: products, NotFound: len(products) == 0}, nil
	}

	if errors.Is(err, domain.ErrNotFound) {
		s.logger.Debug("search found nothing", zap.String("query", query))
		return SearchResult{Products: []domain.Product{}, NotFound: true}, nil
	}

	if msg, ok := serverMessage(err, isServerFailure); ok {
		notifyError(notifier, msg)
		s.logger.Warn("search failed, showing full catalog", zap.String("query", query), zap.Error(err))
		return SearchResult{Products: fullCatalog, Fallback: true}, nil
	}

	notifyError(notifier, MsgSearchUnavailable)
	s.logger.Warn("search failed", zap.String("query", query), zap.Error(err))
	return SearchResult{}, err
}

// FetchCart returns the session's cart entries. Without a token there is
// no cart and it returns nil, nil. A 400 surfaces the server's message; any
// other failure surfaces a generic message. Failures return nil entries.
func (s *StorefrontService) FetchCart(ctx context.Context, notifier domain.Notifier, session *domain.Session) ([]domain.CartEntry, error) {
	if !session.Authenticated() {
		return nil, nil
	}

	entries, err := s.client.GetCart(ctx, session.Token)
	if err != nil {
		if msg, ok := serverMessage(err, func(status int) bool { return status == http.StatusBadRequest }); ok {
			notifyError(notifier, msg)
		} else {
			notifyError(notifier, MsgCartUnavailable)
		}
		s.logger.Warn("fetch cart failed", zap.String("user", session.Username), zap.Error(err))
		return nil, err
	}
	return entries, nil
}

// AddOrUpdateCartItem sets the quantity of productID in the session's cart
// and returns the refreshed line items. A quantity of zero removes the item.
// Without a token, or when opts.PreventDuplicate is set and the product is
// already in items, it warns and returns without calling the API.
func (s *StorefrontService) AddOrUpdateCartItem(
	ctx context.Context,
	notifier domain.Notifier,
	session *domain.Session,
	items []domain.CartLineItem,
	catalog []domain.Product,
	productID string,
	qty int,
	opts CartOptions,
) ([]domain.CartLineItem, error) {
	if !session.Authenticated() {
		notifyWarning(notifier, MsgLoginRequired)
		return nil, domain.ErrNotLoggedIn
	}
	if opts.PreventDuplicate && IsProductInCart(items, productID) {
		notifyWarning(notifier, MsgAlreadyInCart)
		return nil, domain.ErrAlreadyInCart
	}
	if productID == "" || qty < 0 {
		return nil, domain.ErrInvalidRequest
	}

	entries, err := s.client.UpdateCart(ctx, session.Token, domain.CartUpdate{ProductID: productID, Quantity: qty})
	if err != nil {
		if msg, ok := serverMessage(err, func(int) bool { return true }); ok {
			notifyError(notifier, msg)
		} else {
			notifyError(notifier, MsgCartUpdateFailed)
		}
		s.logger.Warn("cart update failed",
			zap.String("user", session.Username),
			zap.String("product_id", productID),
			zap.Int("qty", qty),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("cart updated",
		zap.String("user", session.Username),
		zap.String("product_id", productID),
		zap.Int("qty", qty))
	return JoinCartWithCatalog(entries, catalog), nil
}

// serverMessage returns the server-provided message of err when err is a
// *domain.ServerError whose status satisfies match.
func serverMessage(err error, match func(status int) bool) (string, bool) {
	var serverErr *domain.ServerError
	if errors.As(err, &serverErr) && match(serverErr.Status) {
		return serverErr.Message, true
	}
	return "", false
}

func isServerFailure(status int) bool {
	return status >= 500
}
