package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ugurtm/ugur-backend/internal/domain"
	"github.com/ugurtm/ugur-backend/internal/repo"
)

// bookingFixture creates a trip owned by a driver with one leg.
func bookingFixture(t *testing.T, r repo.Repos) (domain.User, domain.Ugur, domain.UgurRoute) {
	t.Helper()
	driver := mustUser(t, r, asDriver)
	u := mustUgur(t, r, driver)
	rt := mustRoute(t, r, u.ID, mustPlace(t, r, "Bk A"), mustPlace(t, r, "Bk B"), day(2025, 6, 1))
	return driver, u, rt
}

func TestBookingRepo_Create(t *testing.T) {
	r, _ := newTestRepos(t)
	ctx := context.Background()

	_, _, rt := bookingFixture(t, r)
	passenger := mustUser(t, r)

	got, err := r.Bookings.Create(ctx, domain.Booking{
		RouteID:     rt.ID,
		PassengerID: passenger.ID,
		SeatsBooked: 2,
		Status:      domain.BookingPending,
	})

	require.NoError(t, err)
	assert.NotZero(t, got.ID)
	assert.Equal(t, domain.BookingPending, got.Status)
	assert.Equal(t, 2, got.SeatsBooked)
}

func TestBookingRepo_Create_DuplicatePair(t *testing.T) {
	r, _ := newTestRepos(t)
	ctx := context.Background()

	_, _, rt := bookingFixture(t, r)
	passenger := mustUser(t, r)
	b := domain.Booking{RouteID: rt.ID, PassengerID: passenger.ID, SeatsBooked: 1, Status: domain.BookingPending}

	_, err := r.Bookings.Create(ctx, b)
	require.NoError(t, err)
	_, err = r.Bookings.Create(ctx, b)

	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorContains(t, err, "passenger already booked this route")
}

func TestBookingRepo_Create_ZeroSeats(t *testing.T) {
	r, _ := newTestRepos(t)

	_, _, rt := bookingFixture(t, r)
	_, err := r.Bookings.Create(context.Background(), domain.Booking{
		RouteID: rt.ID, PassengerID: mustUser(t, r).ID, SeatsBooked: 0, Status: domain.BookingPending,
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBookingRepo_SeatsHeld_IgnoresCancelled(t *testing.T) {
	r, _ := newTestRepos(t)
	ctx := context.Background()

	_, _, rt := bookingFixture(t, r)
	for _, seats := range []int{1, 2} {
		_, err := r.Bookings.Create(ctx, domain.Booking{
			RouteID: rt.ID, PassengerID: mustUser(t, r).ID, SeatsBooked: seats, Status: domain.BookingPending,
		})
		require.NoError(t, err)
	}
	cancelled, err := r.Bookings.Create(ctx, domain.Booking{
		RouteID: rt.ID, PassengerID: mustUser(t, r).ID, SeatsBooked: 3, Status: domain.BookingPending,
	})
	require.NoError(t, err)
	_, err = r.Bookings.UpdateStatus(ctx, cancelled.ID, domain.BookingPending, domain.BookingCancelled)
	require.NoError(t, err)

	held, err := r.Bookings.SeatsHeld(ctx, rt.ID)

	require.NoError(t, err)
	assert.Equal(t, 3, held)
}

func TestBookingRepo_SeatsHeld_NoBookings(t *testing.T) {
	r, _ := newTestRepos(t)

	_, _, rt := bookingFixture(t, r)
	held, err := r.Bookings.SeatsHeld(context.Background(), rt.ID)

	require.NoError(t, err)
	assert.Zero(t, held)
}

func TestBookingRepo_ListVisible(t *testing.T) {
	r, _ := newTestRepos(t)
	ctx := context.Background()

	driver, _, rt := bookingFixture(t, r)
	passenger := mustUser(t, r)
	outsider := mustUser(t, r)
	b, err := r.Bookings.Create(ctx, domain.Booking{
		RouteID: rt.ID, PassengerID: passenger.ID, SeatsBooked: 1, Status: domain.BookingPending,
	})
	require.NoError(t, err)
	page := domain.NewPaginationParams(nil, nil)

	for name, userID := range map[string]int64{"passenger": passenger.ID, "driver": driver.ID} {
		got, total, err := r.Bookings.ListVisible(ctx, userID, false, page)
		require.NoError(t, err, name)
		assert.Equal(t, int64(1), total, name)
		require.Len(t, got, 1, name)
		assert.Equal(t, b.ID, got[0].ID, name)
	}

	_, total, err := r.Bookings.ListVisible(ctx, outsider.ID, false, page)
	require.NoError(t, err)
	assert.Zero(t, total)

	_, total, err = r.Bookings.ListVisible(ctx, outsider.ID, true, page)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, int64(1))
}

func TestBookingRepo_ListByUgur(t *testing.T) {
	r, _ := newTestRepos(t)
	ctx := context.Background()

	_, u, rt := bookingFixture(t, r)
	second := mustRoute(t, r, u.ID, rt.ToPlace, rt.FromPlace, day(2025, 6, 2))
	for _, routeID := range []int64{rt.ID, second.ID} {
		_, err := r.Bookings.Create(ctx, domain.Booking{
			RouteID: routeID, PassengerID: mustUser(t, r).ID, SeatsBooked: 1, Status: domain.BookingConfirmed,
		})
		require.NoError(t, err)
	}

	got, err := r.Bookings.ListByUgur(ctx, u.ID)

	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestBookingRepo_UpdateStatus_NotFound(t *testing.T) {
	r, _ := newTestRepos(t)

	_, err := r.Bookings.UpdateStatus(context.Background(), -1, domain.BookingPending, domain.BookingConfirmed)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingRepo_UpdateStatus_StaleFromConflicts(t *testing.T) {
	r, _ := newTestRepos(t)
	ctx := context.Background()

	_, _, rt := bookingFixture(t, r)
	b, err := r.Bookings.Create(ctx, domain.Booking{
		RouteID: rt.ID, PassengerID: mustUser(t, r).ID, SeatsBooked: 1, Status: domain.BookingConfirmed,
	})
	require.NoError(t, err)

	// Two writers both read "confirmed"; the first one wins.
	completed, err := r.Bookings.UpdateStatus(ctx, b.ID, domain.BookingConfirmed, domain.BookingCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCompleted, completed.Status)

	_, err = r.Bookings.UpdateStatus(ctx, b.ID, domain.BookingConfirmed, domain.BookingCancelled)
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := r.Bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCompleted, got.Status)
}
