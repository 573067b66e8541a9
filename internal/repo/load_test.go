package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ugurtm/ugur-backend/internal/domain"
)

func TestLoadRepo_Create_Unattached(t *testing.T) {
	r, _ := newTestRepos(t)
	ctx := context.Background()

	sender := mustUser(t, r)
	got, err := r.Loads.Create(ctx, domain.Load{
		SenderID:      sender.ID,
		Description:   "Halylar",
		ReceiverName:  "Ogulgerek",
		ReceiverPhone: "+99365123456",
		WeightKg:      ptr(12.5),
		Status:        domain.LoadSearching,
	})

	require.NoError(t, err)
	assert.NotZero(t, got.ID)
	assert.Equal(t, domain.LoadSearching, got.Status)
	assert.Nil(t, got.FromPlace())
	assert.Nil(t, got.ToPlace())
}

func TestLoadRepo_PlacesFromTripFirstLeg(t *testing.T) {
	r, _ := newTestRepos(t)
	ctx := context.Background()

	u := mustUgur(t, r, mustUser(t, r, asDriver))
	a, b, c := mustPlace(t, r, "Ld A"), mustPlace(t, r, "Ld B"), mustPlace(t, r, "Ld C")
	mustRoute(t, r, u.ID, b, c, day(2025, 6, 2))
	mustRoute(t, r, u.ID, a, b, day(2025, 6, 1))

	got, err := r.Loads.Create(ctx, domain.Load{SenderID: mustUser(t, r).ID, UgurID: &u.ID, Status: domain.LoadAssigned})

	require.NoError(t, err)
	require.NotNil(t, got.FromPlace())
	assert.Equal(t, "Ld B", got.FromPlace().Name, "first leg added, not earliest departure")
	assert.Equal(t, "Ld C", got.ToPlace().Name)
}

func TestLoadRepo_PlacesFromAttachedRoute(t *testing.T) {
	r, _ := newTestRepos(t)
	ctx := context.Background()

	u := mustUgur(t, r, mustUser(t, r, asDriver))
	a, b, c := mustPlace(t, r, "Lr A"), mustPlace(t, r, "Lr B"), mustPlace(t, r, "Lr C")
	mustRoute(t, r, u.ID, a, b, day(2025, 6, 1))
	second := mustRoute(t, r, u.ID, b, c, day(2025, 6, 2))

	created, err := r.Loads.Create(ctx, domain.Load{
		SenderID: mustUser(t, r).ID, UgurID: &u.ID, RouteID: &second.ID, Status: domain.LoadAssigned,
	})
	require.NoError(t, err)

	got, err := r.Loads.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lr B", got.FromPlace().Name, "the attached leg wins over the first leg")
	assert.Equal(t, "Lr C", got.ToPlace().Name)
}

func TestLoadRepo_TripDeletion_DetachesLoad(t *testing.T) {
	r, _ := newTestRepos(t)
	ctx := context.Background()

	u := mustUgur(t, r, mustUser(t, r, asDriver))
	rt := mustRoute(t, r, u.ID, mustPlace(t, r, "Sn A"), mustPlace(t, r, "Sn B"), day(2025, 6, 1))
	l, err := r.Loads.Create(ctx, domain.Load{
		SenderID: mustUser(t, r).ID, UgurID: &u.ID, RouteID: &rt.ID, Status: domain.LoadAssigned,
	})
	require.NoError(t, err)

	require.NoError(t, r.Ugurs.Delete(ctx, u.ID))

	got, err := r.Loads.GetByID(ctx, l.ID)
	require.NoError(t, err, "the load survives its trip")
	assert.Nil(t, got.UgurID)
	assert.Nil(t, got.RouteID)
	assert.Equal(t, domain.LoadAssigned, got.Status)
}

func TestLoadRepo_Save(t *testing.T) {
	r, _ := newTestRepos(t)
	ctx := context.Background()

	l, err := r.Loads.Create(ctx, domain.Load{SenderID: mustUser(t, r).ID, Status: domain.LoadSearching})
	require.NoError(t, err)

	u := mustUgur(t, r, mustUser(t, r, asDriver))
	l.UgurID = &u.ID
	l.Status = domain.LoadAssigned
	l.Price = ptr(50.0)

	got, err := r.Loads.Save(ctx, l, domain.LoadSearching)

	require.NoError(t, err)
	require.NotNil(t, got.UgurID)
	assert.Equal(t, u.ID, *got.UgurID)
	assert.Equal(t, domain.LoadAssigned, got.Status)
	require.NotNil(t, got.Price)
	assert.InDelta(t, 50.0, *got.Price, 0.001)

	l.ID = -1
	_, err = r.Loads.Save(ctx, l, domain.LoadAssigned)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoadRepo_Save_StaleFromConflicts(t *testing.T) {
	r, _ := newTestRepos(t)
	ctx := context.Background()

	l, err := r.Loads.Create(ctx, domain.Load{SenderID: mustUser(t, r).ID, Status: domain.LoadSearching})
	require.NoError(t, err)

	l.Status = domain.LoadCancelled
	_, err = r.Loads.Save(ctx, l, domain.LoadSearching)
	require.NoError(t, err)

	l.Status = domain.LoadAssigned
	_, err = r.Loads.Save(ctx, l, domain.LoadSearching)
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := r.Loads.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LoadCancelled, got.Status)
}

func TestLoadRepo_ListPaged_PlaceFilter(t *testing.T) {
	r, _ := newTestRepos(t)
	ctx := context.Background()

	u := mustUgur(t, r, mustUser(t, r, asDriver))
	a, b, c := mustPlace(t, r, "Lf A"), mustPlace(t, r, "Lf B"), mustPlace(t, r, "Lf C")
	mustRoute(t, r, u.ID, a, b, day(2025, 6, 1))
	mustRoute(t, r, u.ID, b, c, day(2025, 6, 2))
	sender := mustUser(t, r)

	match, err := r.Loads.Create(ctx, domain.Load{SenderID: sender.ID, UgurID: &u.ID, Status: domain.LoadAssigned})
	require.NoError(t, err)
	_, err = r.Loads.Create(ctx, domain.Load{SenderID: sender.ID, Status: domain.LoadSearching})
	require.NoError(t, err)

	got, total, err := r.Loads.ListPaged(ctx, domain.LoadFilter{ToPlaceID: &c.ID}, domain.NewPaginationParams(nil, nil))

	require.NoError(t, err)
	assert.Equal(t, int64(1), total, "any leg of the trip matches")
	require.Len(t, got, 1)
	assert.Equal(t, match.ID, got[0].ID)
	require.NotNil(t, got[0].FromPlace())
	assert.Equal(t, "Lf A", got[0].FromPlace().Name)
}

func TestLoadRepo_ListPaged_StatusFilter(t *testing.T) {
	r, _ := newTestRepos(t)
	ctx := context.Background()

	sender := mustUser(t, r)
	u := mustUgur(t, r, mustUser(t, r, asDriver))
	_, err := r.Loads.Create(ctx, domain.Load{SenderID: sender.ID, Status: domain.LoadSearching})
	require.NoError(t, err)
	inTransit, err := r.Loads.Create(ctx, domain.Load{SenderID: sender.ID, UgurID: &u.ID, Status: domain.LoadInTransit})
	require.NoError(t, err)

	status := domain.LoadInTransit
	got, _, err := r.Loads.ListPaged(ctx, domain.LoadFilter{Status: &status, UgurID: &u.ID}, domain.NewPaginationParams(nil, nil))

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, inTransit.ID, got[0].ID)
}
