package checkout_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Roshan7869/Didi-ki-rasoi/internal/cart"
	"github.com/Roshan7869/Didi-ki-rasoi/internal/checkout"
	"github.com/Roshan7869/Didi-ki-rasoi/internal/menu"
	"github.com/Roshan7869/Didi-ki-rasoi/internal/notify"
)

type MockOpener struct {
	mock.Mock
}

func (m *MockOpener) Open(ctx context.Context, link string) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

var (
	milkCoffee = menu.Item{ID: "milk-coffee", Name: "Milk Coffee", Price: 12, Category: "Drinks", PrepTimeMinutes: 5}
	vegThali   = menu.Item{ID: "veg-thali", Name: "Veg Thali", Price: 60, Category: "Thali & Snacks", PrepTimeMinutes: 20}
)

type fixture struct {
	carts    cart.Service
	tracker  *checkout.Tracker
	opener   *MockOpener
	events   *recorder
	checkout checkout.Service
}

// newFixture builds carts against the full menu and checks out against checkoutMenu,
// which lets a test change availability between adding and ordering.
func newFixture(t *testing.T, checkoutMenu []menu.Item, delay time.Duration) *fixture {
	t.Helper()

	orderingCatalog, err := menu.NewCatalog([]menu.Item{milkCoffee, vegThali})
	require.NoError(t, err)
	if checkoutMenu == nil {
		checkoutMenu = []menu.Item{milkCoffee, vegThali}
	}
	checkoutCatalog, err := menu.NewCatalog(checkoutMenu)
	require.NoError(t, err)

	events := &recorder{}
	carts := cart.NewService(orderingCatalog, cart.NewMemoryRepository(0), events, nil)
	tracker := checkout.NewTracker(time.Hour, time.Hour, events)
	t.Cleanup(tracker.Close)
	opener := new(MockOpener)

	return &fixture{
		carts:    carts,
		tracker:  tracker,
		opener:   opener,
		events:   events,
		checkout: checkout.NewService(checkoutCatalog, carts, tracker, checkout.NewComposer(orderConfig, ist), opener, events, nil, delay),
	}
}

func (f *fixture) fill(t *testing.T, session string) {
	t.Helper()
	ctx := context.Background()

	for _, id := range []string{"milk-coffee", "milk-coffee", "veg-thali"} {
		_, err := f.carts.Add(ctx, session, id, "")
		require.NoError(t, err)
	}
}

func TestCheckout_Success(t *testing.T) {
	f := newFixture(t, nil, 0)
	f.fill(t, "s1")
	f.opener.On("Open", mock.Anything, mock.MatchedBy(func(link string) bool {
		return len(link) > 0
	})).Return(nil).Once()

	receipt, err := f.checkout.Checkout(context.Background(), "s1")
	require.NoError(t, err)

	assert.NotEmpty(t, receipt.OrderID)
	assert.Equal(t, 84, receipt.Total)
	assert.Equal(t, 3, receipt.ItemCount)
	assert.Equal(t, 25, receipt.EstimatedMinutes)
	assert.Contains(t, receipt.Message, "Milk Coffee x2 - ₹24")
	assert.Contains(t, receipt.Message, "*Total: ₹84*")
	assert.Contains(t, receipt.Link, "https://wa.me/7440683678?text=")

	assert.True(t, f.carts.Cart(context.Background(), "s1").IsEmpty())
	assert.Equal(t, checkout.StatusSucceeded, f.checkout.Status("s1").Status)
	assert.Contains(t, f.events.kinds(), notify.KindOrderPlaced)
	assert.NotContains(t, f.events.kinds(), notify.KindCartCleared)
	f.opener.AssertExpectations(t)
}

func TestCheckout_EmptyCartFailsWithoutHandOff(t *testing.T) {
	f := newFixture(t, nil, 0)

	receipt, err := f.checkout.Checkout(context.Background(), "s1")
	require.Error(t, err)
	assert.Nil(t, receipt)

	var empty checkout.EmptyCartError
	assert.ErrorAs(t, err, &empty)
	assert.True(t, checkout.IsValidationError(err))

	state := f.checkout.Status("s1")
	assert.Equal(t, checkout.StatusFailed, state.Status)
	assert.Equal(t, "your cart is empty", state.Message)
	assert.Contains(t, f.events.kinds(), notify.KindOrderFailed)
	f.opener.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)
}

func TestCheckout_UnavailableItemsFailWithoutHandOff(t *testing.T) {
	off := false
	soldOut := vegThali
	soldOut.Available = &off

	f := newFixture(t, []menu.Item{milkCoffee, soldOut}, 0)
	f.fill(t, "s1")

	_, err := f.checkout.Checkout(context.Background(), "s1")

	var unavailable *checkout.UnavailableItemsError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, []string{"Veg Thali"}, unavailable.Names)
	assert.Equal(t, checkout.StatusFailed, f.checkout.Status("s1").Status)
	assert.Equal(t, 2, f.carts.Cart(context.Background(), "s1").Len(), "cart must survive a failed checkout")
	f.opener.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)
}

func TestCheckout_SingleFlight(t *testing.T) {
	f := newFixture(t, nil, 0)
	f.fill(t, "s1")

	release := make(chan struct{})
	f.opener.On("Open", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := f.checkout.Checkout(context.Background(), "s1")
		done <- err
	}()

	require.Eventually(t, func() bool {
		return f.checkout.Status("s1").Status == checkout.StatusSubmitting
	}, time.Second, 5*time.Millisecond)

	receipt, err := f.checkout.Checkout(context.Background(), "s1")
	assert.Nil(t, receipt)
	assert.ErrorIs(t, err, checkout.ErrSubmissionInFlight)
	assert.Equal(t, checkout.StatusSubmitting, f.checkout.Status("s1").Status)

	close(release)
	require.NoError(t, <-done)

	f.opener.AssertNumberOfCalls(t, "Open", 1)
	assert.Equal(t, checkout.StatusSucceeded, f.checkout.Status("s1").Status)
}

func TestCheckout_WaitsForSubmitDelay(t *testing.T) {
	f := newFixture(t, nil, 50*time.Millisecond)
	f.fill(t, "s1")
	f.opener.On("Open", mock.Anything, mock.Anything).Return(nil).Once()

	start := time.Now()
	_, err := f.checkout.Checkout(context.Background(), "s1")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestCheckout_CancelledDuringDelay(t *testing.T) {
	f := newFixture(t, nil, time.Hour)
	f.fill(t, "s1")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.checkout.Checkout(ctx, "s1")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, checkout.IsValidationError(err))

	assert.Equal(t, checkout.StatusFailed, f.checkout.Status("s1").Status)
	assert.Equal(t, 2, f.carts.Cart(context.Background(), "s1").Len())
	f.opener.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)
}

func TestCheckout_HandOffFailureKeepsCart(t *testing.T) {
	f := newFixture(t, nil, 0)
	f.fill(t, "s1")
	f.opener.On("Open", mock.Anything, mock.Anything).Return(errors.New("no browser")).Once()

	_, err := f.checkout.Checkout(context.Background(), "s1")
	require.Error(t, err)

	state := f.checkout.Status("s1")
	assert.Equal(t, checkout.StatusFailed, state.Status)
	assert.Contains(t, state.Message, "no browser")
	assert.Equal(t, 2, f.carts.Cart(context.Background(), "s1").Len())
}

func TestCheckout_KeepsItemsAddedWhileSubmitting(t *testing.T) {
	f := newFixture(t, nil, 20*time.Millisecond)
	f.fill(t, "s1")

	// The shopper adds another thali after the order was snapshotted but before hand-off.
	f.opener.On("Open", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			_, err := f.carts.Add(context.Background(), "s1", "veg-thali", "")
			require.NoError(t, err)
		}).
		Return(nil).Once()

	receipt, err := f.checkout.Checkout(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, receipt.ItemCount)

	left := f.carts.Cart(context.Background(), "s1")
	require.Equal(t, 1, left.Len())
	line, ok := left.Find(cart.Key{ItemID: "veg-thali"})
	require.True(t, ok)
	assert.Equal(t, 1, line.Quantity)
}
