package tenancy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestWithShopIDAndShopIDFromContext(t *testing.T) {
	id := uuid.New()
	ctx := WithShopID(context.Background(), id)

	got, ok := ShopIDFromContext(ctx)
	if !ok {
		t.Fatalf("expected shop id to be present")
	}
	if got != id {
		t.Fatalf("expected %s, got %s", id, got)
	}
}

func TestShopIDFromContextMissing(t *testing.T) {
	if _, ok := ShopIDFromContext(context.Background()); ok {
		t.Fatalf("expected missing shop id to return false")
	}

	ctx := WithShopID(context.Background(), uuid.Nil)
	if _, ok := ShopIDFromContext(ctx); ok {
		t.Fatalf("expected nil shop id to return false")
	}
}

func TestMiddlewareParsesHeader(t *testing.T) {
	id := uuid.New()
	var got uuid.UUID
	var ok bool

	h := Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got, ok = ShopIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/chat", nil)
	req.Header.Set(HeaderShopID, id.String())
	h.ServeHTTP(httptest.NewRecorder(), req)

	if !ok || got != id {
		t.Fatalf("header not propagated: ok=%v got=%s", ok, got)
	}
}

func TestMiddlewareRejectsMalformedHeader(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodPost, "/chat", nil)
	req.Header.Set(HeaderShopID, "not-a-uuid")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestMiddlewarePassesThroughWithoutHeader(t *testing.T) {
	called := false
	h := Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := ShopIDFromContext(r.Context()); ok {
			t.Fatal("no shop id expected")
		}
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/chat", nil))
	if !called {
		t.Fatal("handler should run without the header")
	}
}
