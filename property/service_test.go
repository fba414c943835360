package property_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hostwise "github.com/hostwise/hostwise-go"
	"github.com/hostwise/hostwise-go/fake"
	"github.com/hostwise/hostwise-go/property"
)

func seedProperties(n int) []hostwise.Property {
	out := make([]hostwise.Property, n)
	for i := range out {
		status := hostwise.PropertyStatusActive
		if i%2 == 1 {
			status = hostwise.PropertyStatusInactive
		}
		out[i] = hostwise.Property{
			ID:          fmt.Sprintf("prop-%d", i),
			Name:        fmt.Sprintf("Unit %d", i),
			Type:        hostwise.PropertyTypeApartment,
			Status:      status,
			NightlyRate: decimal.NewFromInt(100),
		}
	}
	return out
}

func TestList_CachesAndInvalidatesOnCreate(t *testing.T) {
	store := fake.NewPropertyStore(seedProperties(10)...)
	svc := property.New(store)
	ctx := context.Background()

	first, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, first, 10)

	// warm cache, no second fetch
	_, err = svc.List(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, store.ListCalls())

	_, err = svc.Create(ctx, hostwise.PropertyInput{
		Name:   "Unit 10",
		Type:   hostwise.PropertyTypeHouse,
		Status: hostwise.PropertyStatusActive,
	})
	require.NoError(t, err)

	// the write dropped the cache, so the next read refetches and sees
	// the new row
	after, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, after, 11)
	assert.Equal(t, 2, store.ListCalls())
}

func TestList_ForceRefresh(t *testing.T) {
	store := fake.NewPropertyStore(seedProperties(3)...)
	svc := property.New(store)
	ctx := context.Background()

	_, err := svc.List(ctx, false)
	require.NoError(t, err)
	_, err = svc.List(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, store.ListCalls())
}

func TestList_BackendErrorWrapped(t *testing.T) {
	store := fake.NewPropertyStore()
	cause := errors.New("row api down")
	store.SetError(cause)
	svc := property.New(store)

	_, err := svc.List(context.Background(), false)

	var perr *hostwise.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "list", perr.Op)
	assert.Equal(t, "property", perr.Kind)
	assert.ErrorIs(t, err, cause)
}

func TestGetByID_WarmCacheServesWithoutRemoteCall(t *testing.T) {
	store := fake.NewPropertyStore(seedProperties(3)...)
	svc := property.New(store)
	ctx := context.Background()

	_, err := svc.List(ctx, false)
	require.NoError(t, err)

	p, err := svc.GetByID(ctx, "prop-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Unit 1", p.Name)
	assert.Equal(t, 1, store.ListCalls())
}

func TestGetByID_AbsentIsNilNil(t *testing.T) {
	store := fake.NewPropertyStore(seedProperties(2)...)
	svc := property.New(store)

	p, err := svc.GetByID(context.Background(), "no-such-id")

	assert.NoError(t, err)
	assert.Nil(t, p)
}

func TestListByStatus_WarmCacheFilters(t *testing.T) {
	store := fake.NewPropertyStore(seedProperties(4)...)
	svc := property.New(store)
	ctx := context.Background()

	_, err := svc.List(ctx, false)
	require.NoError(t, err)

	active, err := svc.ListByStatus(ctx, hostwise.PropertyStatusActive)
	require.NoError(t, err)
	assert.Len(t, active, 2)
	for _, p := range active {
		assert.Equal(t, hostwise.PropertyStatusActive, p.Status)
	}
	assert.Equal(t, 1, store.ListCalls())
}

func TestListByStatus_ColdCacheQueriesRemotely(t *testing.T) {
	store := fake.NewPropertyStore(seedProperties(4)...)
	svc := property.New(store)

	active, err := svc.ListByStatus(context.Background(), hostwise.PropertyStatusActive)

	require.NoError(t, err)
	assert.Len(t, active, 2)
	// scoped query, not a full list fetch
	assert.Equal(t, 0, store.ListCalls())
}

func TestUpdate_InvalidatesOnSuccessOnly(t *testing.T) {
	store := fake.NewPropertyStore(seedProperties(2)...)
	svc := property.New(store)
	ctx := context.Background()

	_, err := svc.List(ctx, false)
	require.NoError(t, err)

	store.SetError(errors.New("conflict"))
	name := "Renamed"
	_, err = svc.Update(ctx, "prop-0", hostwise.PropertyPatch{Name: &name})
	require.Error(t, err)
	store.SetError(nil)

	// failed write left the cache warm
	_, err = svc.List(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, store.ListCalls())

	updated, err := svc.Update(ctx, "prop-0", hostwise.PropertyPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	refreshed, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, store.ListCalls())
	assert.Equal(t, "Renamed", refreshed[0].Name)
}

func TestDelete_Invalidates(t *testing.T) {
	store := fake.NewPropertyStore(seedProperties(3)...)
	svc := property.New(store)
	ctx := context.Background()

	_, err := svc.List(ctx, false)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "prop-1"))

	after, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, after, 2)
}

func TestList_LimitApplied(t *testing.T) {
	store := fake.NewPropertyStore(seedProperties(8)...)
	svc := property.New(store, property.WithListLimit(5))

	records, err := svc.List(context.Background(), false)

	require.NoError(t, err)
	assert.Len(t, records, 5)
}
