package domain

// PagingInfo is the pagination block every list endpoint returns.
type PagingInfo struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalItems int  `json:"total_items"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// Page is the paginated list envelope used by catalog and review reads.
type Page[T any] struct {
	Data   []T        `json:"data"`
	Paging PagingInfo `json:"paging"`
}
