package repo_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/ugurtm/ugur-backend/internal/domain"
	"github.com/ugurtm/ugur-backend/internal/repo"
	"github.com/ugurtm/ugur-backend/testutil"
)

// newTestTx opens a transaction against the test database that is rolled
// back when the test finishes, giving free per-test isolation.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})
	return tx
}

// newTestRepos returns every repository bound to one rolled-back transaction.
func newTestRepos(t *testing.T) (repo.Repos, pgx.Tx) {
	t.Helper()
	tx := newTestTx(t)
	return repo.NewRepos(tx), tx
}

// randomPhone returns a valid phone number unlikely to collide with rows
// created by concurrently running test packages.
func randomPhone() string {
	return fmt.Sprintf("+993%08d", rand.IntN(100_000_000))
}

func mustUser(t *testing.T, r repo.Repos, mutate ...func(*domain.User)) domain.User {
	t.Helper()
	u := domain.User{
		Phone:        randomPhone(),
		FirstName:    "Aman",
		LastName:     "Amanow",
		PasswordHash: "x",
		IsPassenger:  true,
	}
	for _, m := range mutate {
		m(&u)
	}
	got, err := r.Users.Create(context.Background(), u)
	require.NoError(t, err, "create user fixture")
	return got
}

func asDriver(u *domain.User) { u.IsDriver = true }

func mustPlace(t *testing.T, r repo.Repos, name string) domain.Place {
	t.Helper()
	p, err := r.Places.GetOrCreate(context.Background(), name)
	require.NoError(t, err, "create place fixture")
	return p
}

func mustUgur(t *testing.T, r repo.Repos, owner domain.User) domain.Ugur {
	t.Helper()
	u, err := r.Ugurs.Create(context.Background(), domain.Ugur{
		OwnerID:  owner.ID,
		DriverID: &owner.ID,
		Type:     domain.UgurTypeDriver,
	})
	require.NoError(t, err, "create ugur fixture")
	return u
}

func mustRoute(t *testing.T, r repo.Repos, ugurID int64, from, to domain.Place, date time.Time) domain.UgurRoute {
	t.Helper()
	rt, err := r.Routes.Create(context.Background(), domain.UgurRoute{
		UgurID:         ugurID,
		FromPlace:      from,
		ToPlace:        to,
		DepartureDate:  date,
		AvailableSeats: domain.DefaultAvailableSeats,
	})
	require.NoError(t, err, "create route fixture")
	return rt
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
