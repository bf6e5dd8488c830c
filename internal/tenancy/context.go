package tenancy

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey string

const shopKey ctxKey = "barber.shop_id"

// HeaderShopID is the HTTP header carrying the tenant on chat requests.
const HeaderShopID = "X-Barbershop-Id"

// WithShopID stores the barbershop id in context.
func WithShopID(ctx context.Context, shopID uuid.UUID) context.Context {
	return context.WithValue(ctx, shopKey, shopID)
}

// ShopIDFromContext extracts the barbershop id if present.
func ShopIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	val := ctx.Value(shopKey)
	if val == nil {
		return uuid.Nil, false
	}
	shopID, ok := val.(uuid.UUID)
	return shopID, ok && shopID != uuid.Nil
}

// Middleware resolves the tenant from the X-Barbershop-Id header. A missing
// header passes through untagged (the handler may take the id from the
// body); a malformed one is rejected.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(HeaderShopID)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		shopID, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "Invalid barbershop id", http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithShopID(r.Context(), shopID)))
	})
}
