package models

// Page is one page of a paginated backend collection. The backend wraps
// paged responses in a Spring Data envelope; only the fields the UI needs
// are decoded. A new Page always replaces the previous one wholesale.
type Page[T any] struct {
	Content       []T  `json:"content"`
	Number        int  `json:"number"`
	TotalPages    int  `json:"totalPages"`
	TotalElements int  `json:"totalElements"`
	First         bool `json:"first"`
	Last          bool `json:"last"`
}
