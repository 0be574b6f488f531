package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ferixo/storefront/internal/models"
)

func TestListRecentOrders(t *testing.T) {
	db := InitTestDB(t)
	h := &OrderHandler{DB: db}

	named := models.User{Name: "Asha", Email: "asha@example.com"}
	require.NoError(t, db.Create(&named).Error)
	emailOnly := models.User{Email: "quiet@example.com"}
	require.NoError(t, db.Create(&emailOnly).Error)

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	orders := []models.Order{
		{
			UserID: named.ID, IdempotencyKey: "k1", Items: json.RawMessage(`{}`),
			FinalAmount: 5398, Status: models.OrderPaid, CreatedAt: base,
		},
		{
			UserID: named.ID, IdempotencyKey: "k2", Items: json.RawMessage(`{}`),
			FinalAmount: 1299, Status: models.OrderRefunded, CreatedAt: base.Add(time.Hour),
		},
		{
			UserID: emailOnly.ID, IdempotencyKey: "k3", Items: json.RawMessage(`{}`),
			FinalAmount: 749, Status: models.OrderPending, CreatedAt: base.Add(2 * time.Hour),
		},
	}
	for i := range orders {
		require.NoError(t, db.Create(&orders[i]).Error)
	}

	rec, c := doJSONRequest(t, http.MethodGet, "/api/v1/admin/orders", nil)
	require.NoError(t, h.ListRecent(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []ledgerEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 3)

	// Newest first.
	require.Equal(t, orders[2].ID, entries[0].ID)
	require.Equal(t, "quiet@example.com", entries[0].Customer)
	require.Equal(t, "SALE_IN", entries[0].Type)

	require.Equal(t, "Asha", entries[1].Customer)
	require.Equal(t, "REFUND_OUT", entries[1].Type)
	require.Equal(t, models.OrderRefunded, entries[1].Status)

	require.Equal(t, "SALE_IN", entries[2].Type)
	require.Equal(t, float64(5398), entries[2].Total)
	require.Equal(t, "10 Mar 2026", entries[2].Date)
}

func TestListRecentOrdersGuestFallback(t *testing.T) {
	db := InitTestDB(t)
	h := &OrderHandler{DB: db}

	// A user row with no name or email renders as a guest.
	blank := models.User{}
	require.NoError(t, db.Create(&blank).Error)
	order := models.Order{
		UserID: blank.ID, IdempotencyKey: "k-guest", Items: json.RawMessage(`{}`),
		FinalAmount: 100, Status: models.OrderPending,
	}
	require.NoError(t, db.Create(&order).Error)

	rec, c := doJSONRequest(t, http.MethodGet, "/api/v1/admin/orders", nil)
	require.NoError(t, h.ListRecent(c))

	var entries []ledgerEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	require.Equal(t, "Guest Customer", entries[0].Customer)
}
