package tupi

import (
	"encoding/json"
	"fmt"

	"github.com/neuralgenius/tupi-proxy/internal/domain"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Product attributes that stay inside the catalog: availability, combo flag,
// validity dates, composition, fair info, dimensions and category hierarchy.
var excludedProductFields = []string{
	"es_disponible",
	"es_combo",
	"vigencia_desde",
	"vencimiento",
	"composicion",
	"feria",
	"peso",
	"largo",
	"alto",
	"ancho",
	"rubro",
	"familia",
	"linea",
}

const (
	priceRoutingField    = "cod_feria"
	priceVisibilityField = "mostrar"
)

// ShapeSearchResults projects a raw search payload onto the widget schema.
// Each hit keeps only id, producto, precios, img and link; hidden prices are
// dropped and the routing code is removed from the visible ones.
func ShapeSearchResults(raw *domain.RawSearchResponse) domain.SearchResponse {
	if raw == nil {
		return domain.SearchResponse{Resultados: []domain.SearchResult{}}
	}

	return domain.SearchResponse{
		BusquedaID: raw.BusquedaID,
		Resultados: lo.Map(raw.Data, func(item json.RawMessage, _ int) domain.SearchResult {
			return shapeSearchItem(item)
		}),
	}
}

func shapeSearchItem(item json.RawMessage) domain.SearchResult {
	parsed := gjson.ParseBytes(item)

	visible := lo.Filter(arrayField(parsed, "precios"), func(price gjson.Result, _ int) bool {
		visibility, _ := lastField(price, priceVisibilityField)
		return visibility.Type == gjson.True
	})

	return domain.SearchResult{
		ID:       rawField(parsed, "id"),
		Producto: rawField(parsed, "producto"),
		Precios: lo.Map(visible, func(price gjson.Result, _ int) json.RawMessage {
			return stripFields(price, priceRoutingField)
		}),
		Img:  rawField(parsed, "img"),
		Link: rawField(parsed, "link"),
	}
}

// ShapeProduct removes the internal attributes from a product record and
// strips routing and visibility flags from every price. Prices are not
// filtered here. Fields not listed as excluded pass through untouched.
func ShapeProduct(raw json.RawMessage) (json.RawMessage, error) {
	parsed := gjson.ParseBytes(raw)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("%w: product payload is not a JSON object", domain.ErrUpstreamFailure)
	}

	shaped := parsed.Raw
	for _, field := range excludedProductFields {
		var err error
		if shaped, err = deleteAll(shaped, field); err != nil {
			return nil, fmt.Errorf("failed to drop product field %q: %w", field, err)
		}
	}

	// Decoders keep the last occurrence of a repeated key, so that is the
	// value that gets shaped and put back.
	precios, found := lastField(gjson.Parse(shaped), "precios")
	if !found {
		return json.RawMessage(shaped), nil
	}

	replacement := precios.Raw
	if precios.IsArray() {
		stripped, err := json.Marshal(lo.Map(precios.Array(), func(price gjson.Result, _ int) json.RawMessage {
			return stripFields(price, priceRoutingField, priceVisibilityField)
		}))
		if err != nil {
			return nil, fmt.Errorf("failed to encode product prices: %w", err)
		}
		replacement = string(stripped)
	}

	shaped, err := deleteAll(shaped, "precios")
	if err != nil {
		return nil, fmt.Errorf("failed to replace product prices: %w", err)
	}
	shaped, err = sjson.SetRaw(shaped, "precios", replacement)
	if err != nil {
		return nil, fmt.Errorf("failed to replace product prices: %w", err)
	}

	return json.RawMessage(shaped), nil
}

// stripFields returns the raw JSON of value without the given keys.
// Non-object values are returned unchanged.
func stripFields(value gjson.Result, fields ...string) json.RawMessage {
	if !value.IsObject() {
		return json.RawMessage(value.Raw)
	}

	out := value.Raw
	for _, field := range fields {
		if next, err := deleteAll(out, field); err == nil {
			out = next
		}
	}
	return json.RawMessage(out)
}

// deleteAll removes every occurrence of a top-level key. sjson.Delete only
// drops the first one.
func deleteAll(object, key string) (string, error) {
	for gjson.Get(object, key).Exists() {
		next, err := sjson.Delete(object, key)
		if err != nil {
			return object, err
		}
		if next == object {
			return object, fmt.Errorf("key %q could not be removed", key)
		}
		object = next
	}
	return object, nil
}

// lastField returns the last value stored under key in an object
func lastField(object gjson.Result, key string) (gjson.Result, bool) {
	var (
		value gjson.Result
		found bool
	)
	object.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			value, found = v, true
		}
		return true
	})
	return value, found
}

// rawField returns the raw JSON of key, or nil (encoded as null) when absent
func rawField(parsed gjson.Result, key string) json.RawMessage {
	value := parsed.Get(key)
	if !value.Exists() {
		return nil
	}
	return json.RawMessage(value.Raw)
}

// arrayField returns the elements of key when it holds an array
func arrayField(parsed gjson.Result, key string) []gjson.Result {
	value := parsed.Get(key)
	if !value.IsArray() {
		return nil
	}
	return value.Array()
}
