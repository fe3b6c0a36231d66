package services

import (
	"context"
	"sync"
	"testing"

	"github.com/Injajul/Foodify2/entity"
	"github.com/Injajul/Foodify2/pkg/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intentOf(t *testing.T, e *testEnv, orderID uint) string {
	t.Helper()
	return e.loadOrder(t, orderID).PaymentIntentID
}

func TestPaymentSucceeded_PreparesOrderAndDeletesCart(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	f := placeOrder(t, e)
	pi := intentOf(t, e, f.order.ID)

	require.NoError(t, e.reconciler.Handle(ctx, &payment.Event{Type: payment.EventPaymentSucceeded, PaymentIntentID: pi}))

	o := e.loadOrder(t, f.order.ID)
	assert.Equal(t, entity.PaymentSucceeded, o.PaymentStatus)
	assert.Equal(t, entity.OrderPreparing, o.OrderStatus)
	for _, g := range o.Groups {
		assert.Equal(t, entity.OrderPreparing, g.Status)
	}
	assert.False(t, e.hasCart(t, f.buyer.ID))
}

func TestPaymentSucceeded_Idempotent(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	f := placeOrder(t, e)
	pi := intentOf(t, e, f.order.ID)

	require.NoError(t, e.reconciler.PaymentSucceeded(ctx, pi))
	once := e.loadOrder(t, f.order.ID)

	require.NoError(t, e.reconciler.PaymentSucceeded(ctx, pi))
	twice := e.loadOrder(t, f.order.ID)

	assert.Equal(t, once.PaymentStatus, twice.PaymentStatus)
	assert.Equal(t, once.OrderStatus, twice.OrderStatus)
	assert.Equal(t, once.Version, twice.Version, "second delivery writes nothing")
	assert.False(t, e.hasCart(t, f.buyer.ID))
}

func TestPaymentSucceeded_DoesNotTouchNewCart(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	f := placeOrder(t, e)
	pi := intentOf(t, e, f.order.ID)
	require.NoError(t, e.reconciler.PaymentSucceeded(ctx, pi))

	// the buyer starts shopping again; a replayed event must leave it alone
	p := e.product(t, f.pizza.ID, "Dessert", "3")
	_, err := e.cart.AddItem(ctx, f.buyer.ID, f.pizza.ID, p.ID, 1)
	require.NoError(t, err)

	require.NoError(t, e.reconciler.PaymentSucceeded(ctx, pi))
	assert.True(t, e.hasCart(t, f.buyer.ID))
}

func TestPaymentFailed_CancelsOrderKeepsCart(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	f := placeOrder(t, e)
	pi := intentOf(t, e, f.order.ID)

	require.NoError(t, e.reconciler.Handle(ctx, &payment.Event{Type: payment.EventPaymentFailed, PaymentIntentID: pi}))

	o := e.loadOrder(t, f.order.ID)
	assert.Equal(t, entity.PaymentFailed, o.PaymentStatus)
	assert.Equal(t, entity.OrderCancelled, o.OrderStatus)
	for _, g := range o.Groups {
		assert.Equal(t, entity.OrderCancelled, g.Status)
	}

	cart, err := e.cart.GetCart(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Groups, 2)

	// replay is a no-op
	require.NoError(t, e.reconciler.PaymentFailed(ctx, pi))
	assert.Equal(t, o.Version, e.loadOrder(t, f.order.ID).Version)
}

func TestPaymentFailed_StaleAfterSuccessIgnored(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	f := placeOrder(t, e)
	pi := intentOf(t, e, f.order.ID)

	require.NoError(t, e.reconciler.PaymentSucceeded(ctx, pi))
	require.NoError(t, e.reconciler.PaymentFailed(ctx, pi))

	o := e.loadOrder(t, f.order.ID)
	assert.Equal(t, entity.PaymentSucceeded, o.PaymentStatus)
	assert.Equal(t, entity.OrderPreparing, o.OrderStatus)
}

func TestPaymentSucceeded_AfterFailureRevivesOrder(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	f := placeOrder(t, e)
	pi := intentOf(t, e, f.order.ID)

	require.NoError(t, e.reconciler.PaymentFailed(ctx, pi))
	require.NoError(t, e.reconciler.PaymentSucceeded(ctx, pi))

	o := e.loadOrder(t, f.order.ID)
	assert.Equal(t, entity.PaymentSucceeded, o.PaymentStatus)
	assert.Equal(t, entity.OrderPreparing, o.OrderStatus)
	assert.False(t, e.hasCart(t, f.buyer.ID))
}

func TestPaymentSucceeded_AfterCustomerCancelIgnored(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	f := placeOrder(t, e)
	pi := intentOf(t, e, f.order.ID)

	_, err := e.order.CancelOrder(ctx, f.order.ID, f.buyer.ID)
	require.NoError(t, err)
	require.NoError(t, e.reconciler.PaymentSucceeded(ctx, pi))

	o := e.loadOrder(t, f.order.ID)
	assert.Equal(t, entity.PaymentRefunded, o.PaymentStatus)
	assert.Equal(t, entity.OrderCancelled, o.OrderStatus)
	assert.True(t, e.hasCart(t, f.buyer.ID))
}

func TestPaymentSucceeded_RacingCustomerCancel(t *testing.T) {
	for i := 0; i < 10; i++ {
		e := newTestEnv(t)
		ctx := context.Background()
		f := placeOrder(t, e)
		pi := intentOf(t, e, f.order.ID)

		var (
			wg        sync.WaitGroup
			cancelErr error
			paidErr   error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, cancelErr = e.order.CancelOrder(ctx, f.order.ID, f.buyer.ID)
		}()
		go func() {
			defer wg.Done()
			paidErr = e.reconciler.PaymentSucceeded(ctx, pi)
		}()
		wg.Wait()

		// cancel is allowed both before and after payment, so it always wins
		require.NoError(t, cancelErr)
		require.NoError(t, paidErr)

		o := e.loadOrder(t, f.order.ID)
		assert.Equal(t, entity.PaymentRefunded, o.PaymentStatus)
		assert.Equal(t, entity.OrderCancelled, o.OrderStatus)
		for _, g := range o.Groups {
			assert.Equal(t, entity.OrderCancelled, g.Status)
		}

		e.pay.mu.Lock()
		refunds := append([]string(nil), e.pay.refunds...)
		e.pay.mu.Unlock()
		assert.Equal(t, []string{pi}, refunds)

		// a late success must not touch the order or issue a second refund
		require.NoError(t, e.reconciler.PaymentSucceeded(ctx, pi))
		again := e.loadOrder(t, f.order.ID)
		assert.Equal(t, entity.PaymentRefunded, again.PaymentStatus)
		assert.Equal(t, entity.OrderCancelled, again.OrderStatus)
		assert.Equal(t, o.Version, again.Version)
		e.pay.mu.Lock()
		assert.Len(t, e.pay.refunds, 1)
		e.pay.mu.Unlock()
	}
}

func TestReconcile_UnknownIntentAndEventAreAcknowledged(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	assert.NoError(t, e.reconciler.PaymentSucceeded(ctx, "pi_unknown"))
	assert.NoError(t, e.reconciler.PaymentFailed(ctx, "pi_unknown"))
	assert.NoError(t, e.reconciler.Handle(ctx, &payment.Event{Type: "charge.refunded", PaymentIntentID: "pi_x"}))
	assert.NoError(t, e.reconciler.Handle(ctx, &payment.Event{Type: payment.EventPaymentSucceeded}))
}
