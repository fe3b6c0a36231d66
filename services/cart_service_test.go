package services

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/Injajul/Foodify2/entity"
	"github.com/Injajul/Foodify2/pkg/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// expectedTotal prices the stored cart against the live catalog.
func expectedTotal(t *testing.T, e *testEnv, userID uint) decimal.Decimal {
	t.Helper()
	c, err := e.carts.FindByUser(context.Background(), userID)
	require.NoError(t, err)
	products, err := e.products.ProductsByIDs(context.Background(), c.ProductIDs())
	require.NoError(t, err)
	sum := decimal.Zero
	for _, g := range c.Groups {
		for _, it := range g.Items {
			sum = sum.Add(products[it.ProductID].Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
	}
	assert.True(t, sum.Equal(c.TotalAmount), "stored total %s drifted from %s", c.TotalAmount, sum)
	return sum
}

func TestCart_TotalFollowsEveryMutation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	buyer := e.user(t, entity.RoleBuyer)
	seller := e.user(t, entity.RoleSeller)
	pizza := e.restaurant(t, seller.ID, "Pizza")
	burger := e.restaurant(t, seller.ID, "Burger")
	marg := e.product(t, pizza.ID, "Margherita", "9.50")
	bread := e.product(t, pizza.ID, "Garlic Bread", "4.25")
	classic := e.product(t, burger.ID, "Classic", "8.99")

	steps := []func() (*CartView, error){
		func() (*CartView, error) { return e.cart.AddItem(ctx, buyer.ID, pizza.ID, marg.ID, 2) },
		func() (*CartView, error) { return e.cart.AddItem(ctx, buyer.ID, pizza.ID, bread.ID, 1) },
		func() (*CartView, error) { return e.cart.AddItem(ctx, buyer.ID, burger.ID, classic.ID, 3) },
		func() (*CartView, error) { return e.cart.SetQuantity(ctx, buyer.ID, burger.ID, classic.ID, 1) },
		func() (*CartView, error) { return e.cart.RemoveItem(ctx, buyer.ID, pizza.ID, bread.ID) },
		func() (*CartView, error) { return e.cart.AddItem(ctx, buyer.ID, pizza.ID, marg.ID, 1) },
	}
	for i, step := range steps {
		view, err := step()
		require.NoError(t, err, "step %d", i)
		want := expectedTotal(t, e, buyer.ID)
		assert.Truef(t, want.Equal(view.TotalAmount.Decimal), "step %d: view total %s, want %s", i, view.TotalAmount, want)
	}

	view, err := e.cart.GetCart(ctx, buyer.ID)
	require.NoError(t, err)
	// 3 x 9.50 + 1 x 8.99
	assertDecEqual(t, "37.49", view.TotalAmount)
	require.Len(t, view.Groups, 2)
	assert.Equal(t, "Pizza", view.Groups[0].RestaurantName)
	assert.Equal(t, "Margherita", view.Groups[0].Items[0].Name)
}

func TestCart_RepricesFromCatalogOnNextMutation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	buyer := e.user(t, entity.RoleBuyer)
	rest := e.restaurant(t, e.user(t, entity.RoleSeller).ID, "Pizza")
	marg := e.product(t, rest.ID, "Margherita", "10.00")
	bread := e.product(t, rest.ID, "Bread", "2.00")

	_, err := e.cart.AddItem(ctx, buyer.ID, rest.ID, marg.ID, 2)
	require.NoError(t, err)

	e.setPrice(t, marg.ID, "12.00")

	got, err := e.cart.GetCart(ctx, buyer.ID)
	require.NoError(t, err)
	assertDecEqual(t, "24", got.TotalAmount)

	view, err := e.cart.AddItem(ctx, buyer.ID, rest.ID, bread.ID, 1)
	require.NoError(t, err)
	assertDecEqual(t, "26", view.TotalAmount)
	expectedTotal(t, e, buyer.ID)
}

func TestCart_AddSameProductIncrementsQuantity(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	buyer := e.user(t, entity.RoleBuyer)
	rest := e.restaurant(t, e.user(t, entity.RoleSeller).ID, "Pizza")
	marg := e.product(t, rest.ID, "Margherita", "9.50")

	_, err := e.cart.AddItem(ctx, buyer.ID, rest.ID, marg.ID, 1)
	require.NoError(t, err)
	view, err := e.cart.AddItem(ctx, buyer.ID, rest.ID, marg.ID, 2)
	require.NoError(t, err)

	require.Len(t, view.Groups, 1)
	require.Len(t, view.Groups[0].Items, 1)
	assert.Equal(t, 3, view.Groups[0].Items[0].Quantity)
	assertDecEqual(t, "28.5", view.TotalAmount)
}

func TestCart_AddNormalizesQuantity(t *testing.T) {
	e := newTestEnv(t)
	buyer := e.user(t, entity.RoleBuyer)
	rest := e.restaurant(t, e.user(t, entity.RoleSeller).ID, "Pizza")
	marg := e.product(t, rest.ID, "Margherita", "5")

	view, err := e.cart.AddItem(context.Background(), buyer.ID, rest.ID, marg.ID, -4)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Groups[0].Items[0].Quantity)
}

func TestCart_QuantityIsCapped(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	buyer := e.user(t, entity.RoleBuyer)
	rest := e.restaurant(t, e.user(t, entity.RoleSeller).ID, "Pizza")
	marg := e.product(t, rest.ID, "Margherita", "5")

	_, err := e.cart.AddItem(ctx, buyer.ID, rest.ID, marg.ID, math.MaxInt)
	assertKind(t, apperr.KindValidation, err)
	assert.False(t, e.hasCart(t, buyer.ID))

	view, err := e.cart.AddItem(ctx, buyer.ID, rest.ID, marg.ID, entity.MaxItemQuantity)
	require.NoError(t, err)
	assert.Equal(t, entity.MaxItemQuantity, view.Groups[0].Items[0].Quantity)

	// the increment would pass the cap; the line stays as it was
	_, err = e.cart.AddItem(ctx, buyer.ID, rest.ID, marg.ID, 1)
	assertKind(t, apperr.KindValidation, err)

	_, err = e.cart.SetQuantity(ctx, buyer.ID, rest.ID, marg.ID, entity.MaxItemQuantity+1)
	assertKind(t, apperr.KindValidation, err)
	_, err = e.cart.SetQuantity(ctx, buyer.ID, rest.ID, marg.ID, math.MaxInt/100)
	assertKind(t, apperr.KindValidation, err)

	view, err = e.cart.GetCart(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MaxItemQuantity, view.Groups[0].Items[0].Quantity)
	assertDecEqual(t, "495", view.TotalAmount)
}

func TestCart_AddValidatesProduct(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	buyer := e.user(t, entity.RoleBuyer)
	seller := e.user(t, entity.RoleSeller)
	pizza := e.restaurant(t, seller.ID, "Pizza")
	burger := e.restaurant(t, seller.ID, "Burger")
	marg := e.product(t, pizza.ID, "Margherita", "9.50")
	soldOut := e.product(t, pizza.ID, "Special", "15")
	e.setAvailable(t, soldOut.ID, false)

	_, err := e.cart.AddItem(ctx, buyer.ID, pizza.ID, 9999, 1)
	assertKind(t, apperr.KindNotFound, err)

	_, err = e.cart.AddItem(ctx, buyer.ID, burger.ID, marg.ID, 1)
	assertKind(t, apperr.KindValidation, err)

	_, err = e.cart.AddItem(ctx, buyer.ID, pizza.ID, soldOut.ID, 1)
	assertKind(t, apperr.KindValidation, err)

	assert.False(t, e.hasCart(t, buyer.ID))
}

func TestCart_RemovingLastItemDropsGroupAndKeepsEmptyCart(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	buyer := e.user(t, entity.RoleBuyer)
	seller := e.user(t, entity.RoleSeller)
	pizza := e.restaurant(t, seller.ID, "Pizza")
	burger := e.restaurant(t, seller.ID, "Burger")
	marg := e.product(t, pizza.ID, "Margherita", "9.50")
	classic := e.product(t, burger.ID, "Classic", "8.99")

	_, err := e.cart.AddItem(ctx, buyer.ID, pizza.ID, marg.ID, 1)
	require.NoError(t, err)
	_, err = e.cart.AddItem(ctx, buyer.ID, burger.ID, classic.ID, 1)
	require.NoError(t, err)

	view, err := e.cart.RemoveItem(ctx, buyer.ID, pizza.ID, marg.ID)
	require.NoError(t, err)
	require.Len(t, view.Groups, 1)
	assert.Equal(t, burger.ID, view.Groups[0].RestaurantID)

	view, err = e.cart.RemoveItem(ctx, buyer.ID, burger.ID, classic.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Groups)
	assert.True(t, view.TotalAmount.IsZero())

	assert.True(t, e.hasCart(t, buyer.ID), "cart row survives with zero groups")
	got, err := e.cart.GetCart(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Groups)
	assert.True(t, got.TotalAmount.IsZero())
}

func TestCart_SetQuantityZeroEqualsRemove(t *testing.T) {
	ctx := context.Background()
	run := func(t *testing.T, viaSetQuantity bool) *CartView {
		e := newTestEnv(t)
		buyer := e.user(t, entity.RoleBuyer)
		rest := e.restaurant(t, e.user(t, entity.RoleSeller).ID, "Pizza")
		marg := e.product(t, rest.ID, "Margherita", "9.50")
		bread := e.product(t, rest.ID, "Bread", "3")
		_, err := e.cart.AddItem(ctx, buyer.ID, rest.ID, marg.ID, 2)
		require.NoError(t, err)
		_, err = e.cart.AddItem(ctx, buyer.ID, rest.ID, bread.ID, 1)
		require.NoError(t, err)

		if viaSetQuantity {
			_, err = e.cart.SetQuantity(ctx, buyer.ID, rest.ID, marg.ID, 0)
		} else {
			_, err = e.cart.RemoveItem(ctx, buyer.ID, rest.ID, marg.ID)
		}
		require.NoError(t, err)
		v, err := e.cart.GetCart(ctx, buyer.ID)
		require.NoError(t, err)
		v.ID = 0
		return v
	}

	a := run(t, true)
	b := run(t, false)
	assert.Equal(t, b.Groups, a.Groups)
	assert.True(t, a.TotalAmount.Equal(b.TotalAmount.Decimal))
	assertDecEqual(t, "3", a.TotalAmount)
}

func TestCart_SetQuantityOverwrites(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	buyer := e.user(t, entity.RoleBuyer)
	rest := e.restaurant(t, e.user(t, entity.RoleSeller).ID, "Pizza")
	marg := e.product(t, rest.ID, "Margherita", "2.50")

	_, err := e.cart.AddItem(ctx, buyer.ID, rest.ID, marg.ID, 3)
	require.NoError(t, err)
	view, err := e.cart.SetQuantity(ctx, buyer.ID, rest.ID, marg.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, view.Groups[0].Items[0].Quantity)
	assertDecEqual(t, "12.5", view.TotalAmount)
}

func TestCart_MissingTargetsAreNotFound(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	buyer := e.user(t, entity.RoleBuyer)
	rest := e.restaurant(t, e.user(t, entity.RoleSeller).ID, "Pizza")
	marg := e.product(t, rest.ID, "Margherita", "9.50")
	bread := e.product(t, rest.ID, "Bread", "3")

	_, err := e.cart.RemoveItem(ctx, buyer.ID, rest.ID, marg.ID)
	assertKind(t, apperr.KindNotFound, err)
	_, err = e.cart.SetQuantity(ctx, buyer.ID, rest.ID, marg.ID, 2)
	assertKind(t, apperr.KindNotFound, err)

	_, err = e.cart.AddItem(ctx, buyer.ID, rest.ID, marg.ID, 1)
	require.NoError(t, err)

	_, err = e.cart.RemoveItem(ctx, buyer.ID, rest.ID+100, marg.ID)
	assertKind(t, apperr.KindNotFound, err)
	_, err = e.cart.SetQuantity(ctx, buyer.ID, rest.ID, bread.ID, 2)
	assertKind(t, apperr.KindNotFound, err)
}

func TestCart_GetWithoutCartIsCanonicalEmpty(t *testing.T) {
	e := newTestEnv(t)
	view, err := e.cart.GetCart(context.Background(), e.user(t, entity.RoleBuyer).ID)
	require.NoError(t, err)
	assert.NotNil(t, view.Groups)
	assert.Empty(t, view.Groups)
	assert.True(t, view.TotalAmount.IsZero())
}

func TestCart_ConcurrentAddsDoNotLoseUpdates(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	buyer := e.user(t, entity.RoleBuyer)
	rest := e.restaurant(t, e.user(t, entity.RoleSeller).ID, "Pizza")
	marg := e.product(t, rest.ID, "Margherita", "1.25")

	const n = 12
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.cart.AddItem(ctx, buyer.ID, rest.ID, marg.ID, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	view, err := e.cart.GetCart(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, view.Groups, 1)
	assert.Equal(t, n, view.Groups[0].Items[0].Quantity)
	assertDecEqual(t, "15", view.TotalAmount)
	expectedTotal(t, e, buyer.ID)
}

func TestCart_PurgeProduct(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.user(t, entity.RoleBuyer)
	bob := e.user(t, entity.RoleBuyer)
	seller := e.user(t, entity.RoleSeller)
	pizza := e.restaurant(t, seller.ID, "Pizza")
	burger := e.restaurant(t, seller.ID, "Burger")
	marg := e.product(t, pizza.ID, "Margherita", "9.50")
	classic := e.product(t, burger.ID, "Classic", "8.00")

	_, err := e.cart.AddItem(ctx, alice.ID, pizza.ID, marg.ID, 1)
	require.NoError(t, err)
	_, err = e.cart.AddItem(ctx, bob.ID, pizza.ID, marg.ID, 2)
	require.NoError(t, err)
	_, err = e.cart.AddItem(ctx, bob.ID, burger.ID, classic.ID, 1)
	require.NoError(t, err)

	require.NoError(t, e.cart.PurgeProduct(ctx, marg.ID))

	assert.False(t, e.hasCart(t, alice.ID), "cart left empty is deleted")
	view, err := e.cart.GetCart(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, view.Groups, 1)
	assert.Equal(t, burger.ID, view.Groups[0].RestaurantID)
	assertDecEqual(t, "8", view.TotalAmount)
	expectedTotal(t, e, bob.ID)
}

func TestCart_VanishedProductDroppedOnNextMutation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	buyer := e.user(t, entity.RoleBuyer)
	rest := e.restaurant(t, e.user(t, entity.RoleSeller).ID, "Pizza")
	marg := e.product(t, rest.ID, "Margherita", "9.50")
	bread := e.product(t, rest.ID, "Bread", "3")

	_, err := e.cart.AddItem(ctx, buyer.ID, rest.ID, marg.ID, 1)
	require.NoError(t, err)
	require.NoError(t, e.db.Delete(&entity.Product{}, marg.ID).Error)

	view, err := e.cart.AddItem(ctx, buyer.ID, rest.ID, bread.ID, 1)
	require.NoError(t, err)
	require.Len(t, view.Groups[0].Items, 1)
	assert.Equal(t, bread.ID, view.Groups[0].Items[0].ProductID)
	assertDecEqual(t, "3", view.TotalAmount)
}
