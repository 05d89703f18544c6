package model

// ListParams carries pagination and free-text search for list endpoints.
type ListParams struct {
	Limit  int
	Offset int
	Search string
}

// TitleFilter narrows a title listing.
type TitleFilter struct {
	ListParams
	Category string // category slug
	Genre    string // genre slug
	Name     string // substring of the title name
	Year     int
}

// Page is one slice of a listing plus the total match count.
type Page[T any] struct {
	Count   int64 `json:"count"`
	Results []T   `json:"results"`
}
