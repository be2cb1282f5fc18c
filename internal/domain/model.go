package domain

// PageRequest holds pagination, sorting, and filtering parameters.
// A PageIndex of 0 requests every row as a single page.
type PageRequest struct {
	PageIndex int
	PageSize  int
	Sort      string
	Filter    map[string]string
}
