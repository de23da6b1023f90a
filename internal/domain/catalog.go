package domain

import "encoding/json"

// Credentials are the static catalog API credentials
type Credentials struct {
	User     string
	Password string
}

// Token is a short-lived bearer credential issued by the catalog auth endpoint
type Token string

// SearchQuery holds the search parameters forwarded to the catalog.
// Optional fields are empty when absent.
type SearchQuery struct {
	Query string
	Page  string
	Price string
}

// RawSearchResponse is the catalog search payload before shaping
type RawSearchResponse struct {
	BusquedaID json.RawMessage   `json:"busqueda_id"`
	Data       []json.RawMessage `json:"data"`
}

// SearchResult is a single shaped search hit
type SearchResult struct {
	ID       json.RawMessage   `json:"id"`
	Producto json.RawMessage   `json:"producto"`
	Precios  []json.RawMessage `json:"precios"`
	Img      json.RawMessage   `json:"img"`
	Link     json.RawMessage   `json:"link"`
}

// SearchResponse is the shaped search payload returned to the widget
type SearchResponse struct {
	BusquedaID json.RawMessage `json:"busqueda_id"`
	Resultados []SearchResult  `json:"resultados"`
}
