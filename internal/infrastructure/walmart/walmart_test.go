package walmart

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/basketcost/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchPage = `<!doctype html>
<html><body>
<div class="results">
  <div data-automation-id="search-product">
    <span data-automation-id="product-brand"> Great Value </span>
    <span data-automation-id="product-title">
      Great Value <b>Long Grain</b> Brown Rice, 32 oz
    </span>
    <div class="price">
      <span data-automation-id="price-characteristic" content="2">$2</span>
      <span data-automation-id="price-mantissa" content="48">48</span>
    </div>
    <div data-automation-id="product-variant"> 2 lb bag </div>
  </div>
  <div data-automation-id="search-product">
    <span data-automation-id="product-title">Second card</span>
  </div>
</div>
</body></html>`

func TestParseProduct(t *testing.T) {
	p, err := ParseProduct(strings.NewReader(searchPage))
	require.NoError(t, err)

	assert.Equal(t, "Great ValueLong GrainBrown Rice, 32 oz", p.ScrapedName)
	assert.Equal(t, "Great Value", p.Brand)
	assert.Equal(t, 2.48, p.Price)
	require.NotNil(t, p.UnitSize)
	assert.Equal(t, "2 lb bag", *p.UnitSize)
}

func card(inner string) string {
	return `<html><body><div data-automation-id="search-product">` + inner + `</div></body></html>`
}

func TestParseProduct_Prices(t *testing.T) {
	title := `<span data-automation-id="product-title">Oats</span>`

	tests := []struct {
		name    string
		price   string
		want    float64
		wantErr bool
	}{
		{
			name:  "dollars from text when content missing",
			price: `<span data-automation-id="price-characteristic">3</span><span data-automation-id="price-mantissa" content="97"></span>`,
			want:  3.97,
		},
		{
			name:  "mantissa element absent defaults to 00",
			price: `<span data-automation-id="price-characteristic" content="5"></span>`,
			want:  5.00,
		},
		{
			name:    "mantissa without content attribute",
			price:   `<span data-automation-id="price-characteristic" content="5"></span><span data-automation-id="price-mantissa">99</span>`,
			wantErr: true,
		},
		{
			name:    "no dollars",
			price:   `<span data-automation-id="price-mantissa" content="99"></span>`,
			wantErr: true,
		},
		{
			name:    "unparsable dollars",
			price:   `<span data-automation-id="price-characteristic">$4</span>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseProduct(strings.NewReader(card(title + tt.price)))
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrNoProductCard)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Price)
		})
	}
}

func TestParseProduct_Missing(t *testing.T) {
	t.Run("no card", func(t *testing.T) {
		_, err := ParseProduct(strings.NewReader(`<html><body><p>No results</p></body></html>`))
		assert.ErrorIs(t, err, domain.ErrNoProductCard)
	})

	t.Run("no title", func(t *testing.T) {
		_, err := ParseProduct(strings.NewReader(card(`<span data-automation-id="price-characteristic" content="1"></span>`)))
		assert.ErrorIs(t, err, domain.ErrNoProductCard)
	})

	t.Run("optional parts absent", func(t *testing.T) {
		p, err := ParseProduct(strings.NewReader(card(
			`<span data-automation-id="product-title">Soda</span><span data-automation-id="price-characteristic" content="7"></span>`,
		)))
		require.NoError(t, err)
		assert.Equal(t, "", p.Brand)
		assert.Nil(t, p.UnitSize)
	})

	t.Run("card must be a div", func(t *testing.T) {
		_, err := ParseProduct(strings.NewReader(`<section data-automation-id="search-product"><span data-automation-id="product-title">X</span></section>`))
		assert.ErrorIs(t, err, domain.ErrNoProductCard)
	})
}

func TestClient_SearchProduct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Brown Rice", r.URL.Query().Get("q"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte(searchPage))
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL, UserAgent: "test-agent", Timeout: time.Second})
	p, err := c.SearchProduct(context.Background(), "Brown Rice")
	require.NoError(t, err)
	assert.Equal(t, 2.48, p.Price)
}

func TestClient_SearchProduct_Errors(t *testing.T) {
	t.Run("non-200", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		c := NewClient(Config{BaseURL: server.URL})
		_, err := c.SearchProduct(context.Background(), "Oats")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "403")
	})

	t.Run("page without card", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html></html>"))
		}))
		defer server.Close()

		c := NewClient(Config{BaseURL: server.URL})
		_, err := c.SearchProduct(context.Background(), "Oats")
		assert.ErrorIs(t, err, domain.ErrNoProductCard)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		c := NewClient(Config{BaseURL: "http://127.0.0.1:0", MinInterval: time.Hour})
		_, err := c.SearchProduct(ctx, "Oats")
		assert.Error(t, err)
	})
}
