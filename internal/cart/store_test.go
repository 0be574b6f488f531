package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ferixo/storefront/internal/pricing"
)

type memStorage struct {
	data  []byte
	saves int
}

func (m *memStorage) Load() ([]byte, error) { return m.data, nil }

func (m *memStorage) Save(data []byte) error {
	m.data = data
	m.saves++
	return nil
}

type stubVerifier struct {
	coupon   *pricing.Coupon
	err      error
	calls    int
	inFlight func()
}

func (v *stubVerifier) Verify(ctx context.Context, code string) (*pricing.Coupon, error) {
	v.calls++
	if v.inFlight != nil {
		v.inFlight()
	}
	if v.err != nil {
		return nil, v.err
	}
	return v.coupon, nil
}

func tee() pricing.LineItem {
	return pricing.LineItem{ProductID: 1, Name: "Tour Tee", UnitPrice: 1299, Quantity: 1, Size: "M"}
}

func TestAddItemMergesByIdentity(t *testing.T) {
	s := NewStore(nil, nil, pricing.DefaultPolicy())

	require.NoError(t, s.AddItem(tee()))
	require.NoError(t, s.AddItem(tee()))

	items := s.Items()
	require.Len(t, items, 1)
	require.Equal(t, uint(2), items[0].Quantity)

	// Same product in a different size is a separate line.
	large := tee()
	large.Size = "L"
	require.NoError(t, s.AddItem(large))
	require.Len(t, s.Items(), 2)
}

func TestAddItemQuantityFloor(t *testing.T) {
	s := NewStore(nil, nil, pricing.DefaultPolicy())

	item := tee()
	item.Quantity = 0
	require.NoError(t, s.AddItem(item))
	require.Equal(t, uint(1), s.Items()[0].Quantity)
}

func TestUpdateQuantityClampsToOne(t *testing.T) {
	s := NewStore(nil, nil, pricing.DefaultPolicy())
	require.NoError(t, s.AddItem(tee()))

	key := tee().Key()
	require.NoError(t, s.UpdateQuantity(key, 3))
	require.Equal(t, uint(3), s.Items()[0].Quantity)

	// Decrementing past 1 leaves the line at 1, never removes it.
	require.NoError(t, s.UpdateQuantity(key, 0))
	require.Equal(t, uint(1), s.Items()[0].Quantity)

	require.ErrorIs(t, s.UpdateQuantity("99||", 2), ErrItemNotFound)
}

func TestRemoveItem(t *testing.T) {
	s := NewStore(nil, nil, pricing.DefaultPolicy())
	require.NoError(t, s.AddItem(tee()))

	require.NoError(t, s.RemoveItem(tee().Key()))
	require.Empty(t, s.Items())
	require.ErrorIs(t, s.RemoveItem(tee().Key()), ErrItemNotFound)
}

func TestTotalsRecomputedOnMutation(t *testing.T) {
	s := NewStore(nil, nil, pricing.DefaultPolicy())

	require.NoError(t, s.AddItem(tee()))
	require.Equal(t, float64(1299), s.Totals().Subtotal)

	require.NoError(t, s.UpdateQuantity(tee().Key(), 2))
	require.Equal(t, float64(2598), s.Totals().Subtotal)

	require.NoError(t, s.Clear())
	require.Equal(t, pricing.Totals{}, s.Totals())
}

func TestApplyCoupon(t *testing.T) {
	v := &stubVerifier{coupon: &pricing.Coupon{Code: "SUMMER25", DiscountPercent: 25, MaxDiscount: 500}}
	s := NewStore(nil, v, pricing.DefaultPolicy())

	item := tee()
	item.UnitPrice = 3000
	require.NoError(t, s.AddItem(item))

	require.NoError(t, s.ApplyCoupon(context.Background(), "summer25"))
	require.Equal(t, 1, v.calls)
	require.Equal(t, float64(500), s.Totals().Discount)
	require.Equal(t, float64(2500), s.Totals().FinalAmount)

	require.NoError(t, s.RemoveCoupon())
	require.Nil(t, s.Coupon())
	require.Equal(t, float64(0), s.Totals().Discount)
}

func TestApplyCouponVerifierError(t *testing.T) {
	v := &stubVerifier{err: errors.New("invalid or inactive coupon")}
	s := NewStore(nil, v, pricing.DefaultPolicy())
	require.NoError(t, s.AddItem(tee()))

	require.Error(t, s.ApplyCoupon(context.Background(), "NOPE"))
	require.Nil(t, s.Coupon())
	require.Equal(t, float64(0), s.Totals().Discount)
}

func TestApplyCouponRefusesWhileVerifyInFlight(t *testing.T) {
	v := &stubVerifier{coupon: &pricing.Coupon{Code: "SUMMER25", DiscountPercent: 25}}
	s := NewStore(nil, v, pricing.DefaultPolicy())

	// A second apply issued while the first verify is still pending is refused.
	var reentrant error
	v.inFlight = func() {
		reentrant = s.ApplyCoupon(context.Background(), "SUMMER25")
	}

	require.NoError(t, s.ApplyCoupon(context.Background(), "SUMMER25"))
	require.ErrorIs(t, reentrant, ErrVerifyInFlight)
	require.Equal(t, 1, v.calls)
	require.Equal(t, "SUMMER25", s.Coupon().Code)
}

func TestPersistenceRoundTrip(t *testing.T) {
	storage := &memStorage{}
	v := &stubVerifier{coupon: &pricing.Coupon{Code: "SUMMER25", DiscountPercent: 25, MaxDiscount: 500}}

	s := NewStore(storage, v, pricing.DefaultPolicy())
	require.NoError(t, s.AddItem(tee()))
	require.NoError(t, s.ApplyCoupon(context.Background(), "SUMMER25"))
	require.Equal(t, 2, storage.saves)

	// A fresh store over the same storage hydrates items, coupon and totals.
	restored := NewStore(storage, v, pricing.DefaultPolicy())
	require.Len(t, restored.Items(), 1)
	require.Equal(t, "SUMMER25", restored.Coupon().Code)
	require.Equal(t, s.Totals(), restored.Totals())
}

func TestCorruptStateStartsEmpty(t *testing.T) {
	storage := &memStorage{data: []byte("{not json")}
	s := NewStore(storage, nil, pricing.DefaultPolicy())
	require.Empty(t, s.Items())
	require.Nil(t, s.Coupon())
}
