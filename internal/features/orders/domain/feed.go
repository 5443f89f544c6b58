package domain

// OrdersQuery is the caller's request for the merged order feed.
type OrdersQuery struct {
	// Page is 1-based.
	Page int `query:"page" validate:"gte=0"`
	// Limit is the page size.
	Limit int `query:"limit" validate:"gte=0"`
	// Status is a normalized status or All.
	Status string `query:"status" validate:"omitempty,oneof=all new processing shipped delivered cancelled"`
	// Source is a provider name or All.
	Source string `query:"source"`
}

// Pagination describes the slice of the merged feed that was returned.
type Pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	CurrentPage int  `json:"currentPage"`
	HasMore     bool `json:"hasMore"`
}

// Summary holds dashboard counters computed over every order fetched for a request.
type Summary struct {
	// Total is the sum of the providers' reported totals.
	Total int `json:"total"`
	// Fetched is the number of orders merged before the status filter and paging.
	Fetched int `json:"fetched"`
	// Filtered is the number of fetched orders matching the status filter.
	// Total can exceed it when a provider has no native status filter.
	Filtered        int                   `json:"filtered"`
	ByStatus        map[OrderStatus]int   `json:"byStatus"`
	ByPaymentStatus map[PaymentStatus]int `json:"byPaymentStatus"`
	BySource        map[Source]int        `json:"bySource"`
	ProviderTotals  map[Source]int        `json:"providerTotals"`
}

// OrdersResult is one page of the merged order feed.
type OrdersResult struct {
	Data       []NormalizedOrder `json:"data"`
	Pagination Pagination        `json:"pagination"`
	Summary    Summary           `json:"summary"`
	// Failures lists the providers that failed while others succeeded.
	Failures []ProviderFailure `json:"failures,omitempty"`
}
