package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/qkart/storefront/internal/domain"
	"github.com/qkart/storefront/internal/infrastructure/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ViewOptions configures a StorefrontView
type ViewOptions struct {
	Debounce         time.Duration
	Scheduler        Scheduler
	SearchTimeout    time.Duration
	MaxSnack         int
	PreventDuplicate bool
}

// ViewState is a display-ready snapshot of a storefront view
type ViewState struct {
	Loading         bool                  `json:"loading"`
	LoggedIn        bool                  `json:"loggedIn"`
	Username        string                `json:"username,omitempty"`
	Products        []domain.Product      `json:"products"`
	NoProductsFound bool                  `json:"noProductsFound"`
	CartItems       []domain.CartLineItem `json:"cartItems"`
	Total           int64                 `json:"total"`
	Notifications   []domain.Notification `json:"notifications"`
}

// StorefrontView is the per-session state behind the products page: the
// catalog, the filtered view of it, the reconciled cart and the debounced
// search input.
type StorefrontView struct {
	svc       *StorefrontService
	session   *domain.Session
	snacks    *SnackQueue
	debouncer *Debouncer
	searches  Sequencer
	logger    *zap.Logger

	searchTimeout time.Duration
	baseCtx       context.Context
	cancel        context.CancelFunc

	mu       sync.RWMutex
	loaded   bool
	loading  bool
	catalog  []domain.Product
	filtered []domain.Product
	notFound bool
	items    []domain.CartLineItem
}

// NewStorefrontView creates a view for session, which may be nil for an
// anonymous visitor.
func NewStorefrontView(svc *StorefrontService, session *domain.Session, opts ViewOptions) *StorefrontView {
	if opts.SearchTimeout <= 0 {
		opts.SearchTimeout = 10 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	v := &StorefrontView{
		svc:           svc,
		session:       session,
		snacks:        NewSnackQueue(opts.MaxSnack, opts.PreventDuplicate),
		logger:        svc.logger.Named("view"),
		searchTimeout: opts.SearchTimeout,
		baseCtx:       ctx,
		cancel:        cancel,
		catalog:       []domain.Product{},
		filtered:      []domain.Product{},
	}
	v.debouncer = NewDebouncer(opts.Debounce, opts.Scheduler, v.debouncedSearch)
	return v
}

// Session returns the view's session, nil when anonymous
func (v *StorefrontView) Session() *domain.Session {
	return v.session
}

// Load fetches the catalog and the cart concurrently, then reconciles the
// cart against the catalog. Only a catalog failure is returned; a cart
// failure has already been notified. A failed fetch keeps the previous
// catalog or cart.
func (v *StorefrontView) Load(ctx context.Context) error {
	v.mu.Lock()
	v.loading = true
	v.mu.Unlock()

	var (
		products []domain.Product
		entries  []domain.CartEntry
		cartErr  error
		g        errgroup.Group
	)
	g.Go(func() error {
		var err error
		products, err = v.svc.FetchCatalog(ctx, v.snacks)
		return err
	})
	g.Go(func() error {
		entries, cartErr = v.svc.FetchCart(ctx, v.snacks, v.session)
		return nil
	})
	err := g.Wait()

	v.mu.Lock()
	defer v.mu.Unlock()

	v.loading = false
	if err == nil {
		v.loaded = true
		v.catalog = products
		v.filtered = products
		v.notFound = false
	}
	if cartErr == nil {
		v.items = JoinCartWithCatalog(entries, v.catalog)
	}
	return err
}

// EnsureLoaded loads the view unless a load has already succeeded
func (v *StorefrontView) EnsureLoaded(ctx context.Context) error {
	v.mu.RLock()
	loaded := v.loaded
	v.mu.RUnlock()
	if loaded {
		return nil
	}
	return v.Load(ctx)
}

// OnSearchInput records a keystroke in the search box. The search request
// fires once the input has been quiet for the debounce delay.
func (v *StorefrontView) OnSearchInput(text string) {
	v.debouncer.Trigger(text)
}

// SearchPending reports whether a debounced search has yet to fire
func (v *StorefrontView) SearchPending() bool {
	return v.debouncer.Pending()
}

// Search runs a search immediately. A response that arrives after a newer
// search was issued is discarded with domain.ErrStaleResponse, along with
// any notification it raised.
func (v *StorefrontView) Search(ctx context.Context, text string) error {
	seq := v.searches.Next()

	v.mu.RLock()
	catalog := v.catalog
	v.mu.RUnlock()

	var raised []domain.Notification
	collect := NotifierFunc(func(n domain.Notification) { raised = append(raised, n) })
	result, err := v.svc.SearchCatalog(ctx, collect, text, catalog)

	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.searches.IsLatest(seq) {
		metrics.RecordSearchEvent("stale")
		v.logger.Debug("discarding stale search response", zap.String("query", text), zap.Uint64("seq", seq))
		return domain.ErrStaleResponse
	}
	for _, n := range raised {
		v.snacks.Notify(n)
	}
	if err != nil {
		return err
	}
	v.filtered = result.Products
	v.notFound = result.NotFound
	return nil
}

func (v *StorefrontView) debouncedSearch(text string) {
	ctx, cancel := context.WithTimeout(v.baseCtx, v.searchTimeout)
	defer cancel()

	if err := v.Search(ctx, text); err != nil {
		v.logger.Debug("debounced search not applied", zap.String("query", text), zap.Error(err))
	}
}

// AddToCart adds one of productID from the catalog, refusing duplicates
func (v *StorefrontView) AddToCart(ctx context.Context, productID string) error {
	return v.updateCart(ctx, productID, 1, CartOptions{PreventDuplicate: true})
}

// SetQuantity sets the cart quantity of productID; zero removes it
func (v *StorefrontView) SetQuantity(ctx context.Context, productID string, qty int) error {
	return v.updateCart(ctx, productID, qty, CartOptions{})
}

func (v *StorefrontView) updateCart(ctx context.Context, productID string, qty int, opts CartOptions) error {
	v.mu.RLock()
	items := v.items
	catalog := v.catalog
	v.mu.RUnlock()

	updated, err := v.svc.AddOrUpdateCartItem(ctx, v.snacks, v.session, items, catalog, productID, qty, opts)
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.items = updated
	v.mu.Unlock()
	return nil
}

// CartItems returns the reconciled line items, including zero quantities.
// It is nil when there is no cart.
func (v *StorefrontView) CartItems() []domain.CartLineItem {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.items
}

// Checkout returns the order details for the current cart
func (v *StorefrontView) Checkout() (*domain.Checkout, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return CheckoutSummary(v.items)
}

// Notify queues a notification on the view
func (v *StorefrontView) Notify(n domain.Notification) {
	v.snacks.Notify(n)
}

// DrainNotifications returns and clears the pending notifications
func (v *StorefrontView) DrainNotifications() []domain.Notification {
	return v.snacks.Drain()
}

// Snapshot returns the current state and drains pending notifications
func (v *StorefrontView) Snapshot() ViewState {
	v.mu.RLock()
	visible := VisibleItems(v.items)
	state := ViewState{
		Loading:         v.loading,
		LoggedIn:        v.session.Authenticated(),
		Products:        v.filtered,
		NoProductsFound: v.loaded && !v.loading && (v.notFound || len(v.filtered) == 0),
		CartItems:       visible,
		Total:           CartTotal(visible),
	}
	v.mu.RUnlock()

	if v.session != nil {
		state.Username = v.session.Username
	}
	state.Notifications = v.snacks.Drain()
	return state
}

// Close cancels any pending search and abandons in-flight ones
func (v *StorefrontView) Close() {
	v.debouncer.Stop()
	v.cancel()
}
