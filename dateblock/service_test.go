package dateblock_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hostwise "github.com/hostwise/hostwise-go"
	"github.com/hostwise/hostwise-go/dateblock"
	"github.com/hostwise/hostwise-go/fake"
)

func day(d int) hostwise.Date {
	return hostwise.Date{Year: 2025, Month: time.July, Day: d}
}

func seedBlocks() []hostwise.DateBlock {
	return []hostwise.DateBlock{
		{ID: "blk-0", PropertyID: "prop-a", StartDate: day(1), EndDate: day(3), Reason: hostwise.BlockReasonMaintenance},
		{ID: "blk-1", PropertyID: "prop-a", StartDate: day(10), EndDate: day(12), Reason: hostwise.BlockReasonPersonalUse},
		{ID: "blk-2", PropertyID: "prop-b", StartDate: day(11), EndDate: day(20), Reason: hostwise.BlockReasonOther},
	}
}

func TestList_InvalidateOnCreate(t *testing.T) {
	store := fake.NewDateBlockStore(seedBlocks()...)
	svc := dateblock.New(store)
	ctx := context.Background()

	first, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, first, 3)

	_, err = svc.Create(ctx, hostwise.DateBlockInput{
		PropertyID: "prop-b",
		StartDate:  day(25),
		EndDate:    day(27),
		Reason:     hostwise.BlockReasonMaintenance,
	})
	require.NoError(t, err)

	after, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, after, 4)
	assert.Equal(t, 2, store.ListCalls())
}

func TestListInRange_Overlap(t *testing.T) {
	store := fake.NewDateBlockStore(seedBlocks()...)
	svc := dateblock.New(store)
	ctx := context.Background()

	_, err := svc.List(ctx, false)
	require.NoError(t, err)

	// blk-1 (10..12) and blk-2 (11..20) overlap [12, 15]
	blocks, err := svc.ListInRange(ctx, day(12), day(15))
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, "blk-1", blocks[0].ID)
	assert.Equal(t, "blk-2", blocks[1].ID)
}

func TestListByProperty_WarmCache(t *testing.T) {
	store := fake.NewDateBlockStore(seedBlocks()...)
	svc := dateblock.New(store)
	ctx := context.Background()

	_, err := svc.List(ctx, false)
	require.NoError(t, err)

	forA, err := svc.ListByProperty(ctx, "prop-a")
	require.NoError(t, err)
	assert.Len(t, forA, 2)
	assert.Equal(t, 1, store.ListCalls())
}

func TestGetByID_AbsentIsNilNil(t *testing.T) {
	store := fake.NewDateBlockStore(seedBlocks()...)
	svc := dateblock.New(store)

	b, err := svc.GetByID(context.Background(), "blk-99")

	assert.NoError(t, err)
	assert.Nil(t, b)
}

func TestDelete_Invalidates(t *testing.T) {
	store := fake.NewDateBlockStore(seedBlocks()...)
	svc := dateblock.New(store)
	ctx := context.Background()

	_, err := svc.List(ctx, false)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "blk-0"))

	after, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, after, 2)
}

func TestCreate_ErrorWrapped(t *testing.T) {
	store := fake.NewDateBlockStore()
	cause := errors.New("row api down")
	store.SetError(cause)
	svc := dateblock.New(store)

	_, err := svc.Create(context.Background(), hostwise.DateBlockInput{
		PropertyID: "prop-a",
		StartDate:  day(1),
		EndDate:    day(2),
		Reason:     hostwise.BlockReasonOther,
	})

	var perr *hostwise.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "create", perr.Op)
	assert.Equal(t, "date_block", perr.Kind)
	assert.ErrorIs(t, err, cause)
}
