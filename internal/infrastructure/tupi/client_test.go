package tupi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/neuralgenius/tupi-proxy/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserAgent = "Neural Genius"

func newTestClient(baseURL string) *Client {
	return NewClient(baseURL, testUserAgent, 5*time.Second, zerolog.Nop())
}

func TestNewClient(t *testing.T) {
	client := newTestClient("https://api.example.com/v1/")

	assert.NotNil(t, client)
	assert.Equal(t, "https://api.example.com/v1", client.baseURL)
	assert.Equal(t, testUserAgent, client.userAgent)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
}

func TestAuthenticate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "widget", r.PostForm.Get("user"))
		assert.Equal(t, "s3cret&x", r.PostForm.Get("password"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"abc123"}`))
	}))
	defer server.Close()

	token, err := newTestClient(server.URL).Authenticate(context.Background(), domain.Credentials{
		User:     "widget",
		Password: "s3cret&x",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.Token("abc123"), token)
}

func TestAuthenticate_Failures(t *testing.T) {
	tests := map[string]struct {
		status  int
		body    string
		wantErr error
	}{
		"missing token field": {
			status:  http.StatusOK,
			body:    `{"message":"bad credentials"}`,
			wantErr: domain.ErrAuthFailed,
		},
		"empty token": {
			status:  http.StatusOK,
			body:    `{"token":""}`,
			wantErr: domain.ErrAuthFailed,
		},
		"unauthorized without json": {
			status:  http.StatusUnauthorized,
			body:    `Unauthorized`,
			wantErr: domain.ErrAuthFailed,
		},
		"unauthorized json without token": {
			status:  http.StatusUnauthorized,
			body:    `{"error":"invalid"}`,
			wantErr: domain.ErrAuthFailed,
		},
		"malformed json": {
			status:  http.StatusOK,
			body:    `not json`,
			wantErr: domain.ErrUpstreamFailure,
		},
		"server error": {
			status:  http.StatusBadGateway,
			body:    `{"token":"ignored"}`,
			wantErr: domain.ErrUpstreamFailure,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			t.Cleanup(server.Close)

			token, err := newTestClient(server.URL).Authenticate(context.Background(), domain.Credentials{})

			assert.Empty(t, token)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthenticate_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := newTestClient(server.URL).Authenticate(context.Background(), domain.Credentials{})

	assert.ErrorIs(t, err, domain.ErrUpstreamFailure)
}

func TestSearch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/buscar", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "*/*", r.Header.Get("Accept"))
		assert.Equal(t, testUserAgent, r.Header.Get("User-Agent"))

		query := r.URL.Query()
		assert.Equal(t, "leche entera", query.Get("query"))
		assert.Equal(t, "2", query.Get("pagina"))
		assert.Equal(t, "asc", query.Get("precio"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"busqueda_id":77,"data":[{"id":1,"producto":"Leche"}]}`))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).Search(context.Background(), "tok", domain.SearchQuery{
		Query: "leche entera",
		Page:  "2",
		Price: "asc",
	})

	require.NoError(t, err)
	assert.JSONEq(t, `77`, string(result.BusquedaID))
	require.Len(t, result.Data, 1)
	assert.JSONEq(t, `{"id":1,"producto":"Leche"}`, string(result.Data[0]))
}

func TestSearch_OmitsAbsentParameters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		assert.Equal(t, "arroz", query.Get("query"))
		assert.False(t, query.Has("pagina"), "pagina should not be sent")
		assert.False(t, query.Has("precio"), "precio should not be sent")
		assert.NotContains(t, r.URL.RawQuery, "undefined")

		w.Write([]byte(`{"busqueda_id":"b-1","data":[]}`))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).Search(context.Background(), "tok", domain.SearchQuery{Query: "arroz"})

	require.NoError(t, err)
	assert.Empty(t, result.Data)
}

func TestSearch_Errors(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("boom"))
		},
		"not found": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		},
		"invalid json": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("invalid json"))
		},
	}

	for name, handler := range tests {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(handler)
			t.Cleanup(server.Close)

			result, err := newTestClient(server.URL).Search(context.Background(), "tok", domain.SearchQuery{Query: "x"})

			assert.Nil(t, result)
			assert.ErrorIs(t, err, domain.ErrUpstreamFailure)
		})
	}
}

func TestSearch_NoRetry(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Search(context.Background(), "tok", domain.SearchQuery{Query: "x"})

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestSearch_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	result, err := newTestClient(server.URL).Search(ctx, "tok", domain.SearchQuery{Query: "x"})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrUpstreamFailure)
}

func TestGetProduct_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/producto", r.URL.Path)
		assert.Equal(t, "123", r.URL.Query().Get("id"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		w.Write([]byte(`{"id":123,"producto":"Yerba","peso":1}`))
	}))
	defer server.Close()

	product, err := newTestClient(server.URL).GetProduct(context.Background(), "tok", "123")

	require.NoError(t, err)
	assert.JSONEq(t, `{"id":123,"producto":"Yerba","peso":1}`, string(product))
}

func TestGetProduct_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>oops</html>"))
	}))
	defer server.Close()

	product, err := newTestClient(server.URL).GetProduct(context.Background(), "tok", "1")

	assert.Nil(t, product)
	assert.ErrorIs(t, err, domain.ErrUpstreamFailure)
	assert.Contains(t, err.Error(), "failed to decode response")
}

func TestGetProduct_RequestCreationError(t *testing.T) {
	client := newTestClient("://invalid-url")

	product, err := client.GetProduct(context.Background(), "tok", "1")

	assert.Nil(t, product)
	assert.Error(t, err)
}

func TestReadLimitedBody(t *testing.T) {
	t.Run("reads within limit", func(t *testing.T) {
		body, err := readLimitedBody(strings.NewReader("short content"), 1000)
		require.NoError(t, err)
		assert.Equal(t, "short content", string(body))
	})

	t.Run("truncates beyond limit", func(t *testing.T) {
		body, err := readLimitedBody(strings.NewReader(strings.Repeat("0123456789", 100)), 100)
		require.NoError(t, err)
		assert.Len(t, body, 100)
	})
}
