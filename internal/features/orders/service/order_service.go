package service

import (
	"context"
	"fmt"
	"sort"

	"merchant-orders/internal/core/config"
	"merchant-orders/internal/core/logger"
	"merchant-orders/internal/core/metrics"
	"merchant-orders/internal/core/validation"
	"merchant-orders/internal/features/orders/domain"
	"merchant-orders/internal/features/orders/ports"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// OrderService merges the order feeds of every configured provider into one
// sorted, paginated view. It keeps no state between calls.
type OrderService struct {
	// providers is kept in registration order so failures are reported deterministically.
	providers []ports.OrderProvider
	bySource  map[domain.Source]ports.OrderProvider
	config    config.AggregationConfig
	validator *validation.Validator
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(providers []ports.OrderProvider, cfg config.AggregationConfig) *OrderService {
	bySource := make(map[domain.Source]ports.OrderProvider, len(providers))
	for _, p := range providers {
		bySource[p.Name()] = p
	}
	return &OrderService{
		providers: providers,
		bySource:  bySource,
		config:    cfg,
		validator: validation.New(),
	}
}

// Sources returns the names of the configured providers.
func (s *OrderService) Sources() []domain.Source {
	sources := make([]domain.Source, 0, len(s.providers))
	for _, p := range s.providers {
		sources = append(sources, p.Name())
	}
	return sources
}

// providerResult is the outcome of one provider call during a fan-out.
type providerResult struct {
	page *domain.OrderPage
	err  error
}

// GetOrders fans out to the selected providers concurrently, merges their orders,
// sorts them newest first and returns the requested page of the merged view.
// Individual provider failures are reported in the result; only the failure of
// every selected provider is returned as an *domain.AggregationError.
func (s *OrderService) GetOrders(ctx context.Context, query domain.OrdersQuery) (*domain.OrdersResult, error) {
	query, err := s.normalize(query)
	if err != nil {
		return nil, err
	}

	selected, err := s.selectProviders(query.Source)
	if err != nil {
		return nil, err
	}

	// Every provider is asked for the same window, large enough to cover the requested page.
	window := max(s.config.FetchSize, query.Page*query.Limit)

	results := make([]providerResult, len(selected))
	var g errgroup.Group

	for i, p := range selected {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, s.config.ProviderTimeout())
			defer cancel()

			page, err := fetchWindow(callCtx, p, query.Status, window)
			results[i] = providerResult{page: page, err: err}

			// Caller cancellation discards the whole fan-out.
			return ctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("order aggregation cancelled: %w", err)
	}

	var (
		merged   []domain.NormalizedOrder
		failures []domain.ProviderFailure
		totals   = make(map[domain.Source]int)
		total    int
	)

	for i, r := range results {
		name := selected[i].Name()
		if r.err != nil {
			failures = append(failures, domain.ProviderFailure{Provider: string(name), Error: r.err.Error()})
			logger.ForProvider(ctx, string(name)).Warn("Provider excluded from merged feed",
				zap.Int("window", window),
				zap.String("status", query.Status),
				zap.Error(r.err),
			)
			continue
		}
		merged = append(merged, r.page.Orders...)
		totals[name] = r.page.TotalCount
		total += r.page.TotalCount
	}

	if len(failures) == len(selected) {
		metrics.AggregationsTotal.WithLabelValues("failed").Inc()
		return nil, &domain.AggregationError{Failures: failures}
	}

	SortOrders(merged)
	summary := summarize(merged, totals, total)
	filtered := filterByStatus(merged, query.Status)
	summary.Filtered = len(filtered)
	data := paginate(filtered, query.Page, query.Limit)

	outcome := "complete"
	if len(failures) > 0 {
		outcome = "partial"
	}
	metrics.AggregationsTotal.WithLabelValues(outcome).Inc()

	logger.FromContext(ctx).Info("Merged order feed",
		zap.Int("page", query.Page),
		zap.Int("limit", query.Limit),
		zap.String("status", query.Status),
		zap.String("source", query.Source),
		zap.Int("fetched", len(merged)),
		zap.Int("returned", len(data)),
		zap.Int("total", total),
		zap.Int("failed_providers", len(failures)),
	)

	return &domain.OrdersResult{
		Data:       data,
		Pagination: newPagination(query.Page, query.Limit, total),
		Summary:    summary,
		Failures:   failures,
	}, nil
}

// fetchWindow reads consecutive pages from p, each no larger than the provider
// accepts, until want orders are collected or the provider runs out.
func fetchWindow(ctx context.Context, p ports.OrderProvider, status string, want int) (*domain.OrderPage, error) {
	size := want
	if limit := p.MaxPageSize(); limit > 0 {
		size = min(want, limit)
	}

	window := &domain.OrderPage{Orders: []domain.NormalizedOrder{}}
	for page := 1; ; page++ {
		res, err := p.ListOrders(ctx, domain.ListQuery{Page: page, PageSize: size, Status: status})
		if err != nil {
			return nil, err
		}
		window.Orders = append(window.Orders, res.Orders...)
		window.TotalCount = res.TotalCount
		window.ProviderPage = page

		if len(res.Orders) < size || len(window.Orders) >= want {
			break
		}
	}

	// Some providers only report the size of the page they served.
	window.TotalCount = max(window.TotalCount, len(window.Orders))
	return window, nil
}

// GetOrder fetches one order from one provider, with its raw fields attached.
func (s *OrderService) GetOrder(ctx context.Context, source, orderID string) (*domain.NormalizedOrder, error) {
	p, ok := s.bySource[domain.Source(source)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownSource, source)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.config.ProviderTimeout())
	defer cancel()

	return p.GetOrder(callCtx, orderID)
}

// normalize applies paging defaults and rejects invalid parameters before any provider call.
func (s *OrderService) normalize(query domain.OrdersQuery) (domain.OrdersQuery, error) {
	if violations := s.validator.Struct(query); violations != nil {
		return query, toValidationErrors(violations)
	}

	if query.Page < 1 {
		query.Page = defaultPage
	}
	if query.Limit < 1 {
		query.Limit = defaultLimit
	}
	if s.config.MaxPageSize > 0 && query.Limit > s.config.MaxPageSize {
		query.Limit = s.config.MaxPageSize
	}
	if query.Status == "" {
		query.Status = domain.All
	}
	if query.Source == "" {
		query.Source = domain.All
	}
	return query, nil
}

func (s *OrderService) selectProviders(source string) ([]ports.OrderProvider, error) {
	if source == domain.All {
		if len(s.providers) == 0 {
			return nil, fmt.Errorf("%w: no providers configured", domain.ErrUnknownSource)
		}
		return s.providers, nil
	}
	p, ok := s.bySource[domain.Source(source)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownSource, source)
	}
	return []ports.OrderProvider{p}, nil
}

// SortOrders sorts orders newest first. Orders without a creation time go last;
// ties are broken by source and then id so the order is deterministic.
func SortOrders(orders []domain.NormalizedOrder) {
	sort.SliceStable(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		if aZero, bZero := a.CreatedAt.IsZero(), b.CreatedAt.IsZero(); aZero != bZero {
			return bZero
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.ID < b.ID
	})
}

func filterByStatus(orders []domain.NormalizedOrder, status string) []domain.NormalizedOrder {
	if status == domain.All {
		return orders
	}
	filtered := make([]domain.NormalizedOrder, 0, len(orders))
	for _, o := range orders {
		if string(o.Status) == status {
			filtered = append(filtered, o)
		}
	}
	return filtered
}

// paginate returns orders[(page-1)*limit : page*limit], clamped to the slice.
func paginate(orders []domain.NormalizedOrder, page, limit int) []domain.NormalizedOrder {
	start := (page - 1) * limit
	if start >= len(orders) {
		return []domain.NormalizedOrder{}
	}
	end := min(start+limit, len(orders))
	return orders[start:end]
}

func newPagination(page, limit, total int) domain.Pagination {
	totalPages := (total + limit - 1) / limit
	return domain.Pagination{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: page,
		HasMore:     page < totalPages,
	}
}

func summarize(orders []domain.NormalizedOrder, totals map[domain.Source]int, total int) domain.Summary {
	summary := domain.Summary{
		Total:           total,
		Fetched:         len(orders),
		ByStatus:        make(map[domain.OrderStatus]int, len(domain.OrderStatuses)),
		ByPaymentStatus: make(map[domain.PaymentStatus]int),
		BySource:        make(map[domain.Source]int),
		ProviderTotals:  totals,
	}
	for _, status := range domain.OrderStatuses {
		summary.ByStatus[status] = 0
	}
	for _, o := range orders {
		summary.ByStatus[o.Status]++
		summary.ByPaymentStatus[o.PaymentStatus]++
		summary.BySource[o.Source]++
	}
	return summary
}

