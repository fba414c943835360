package transaction_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hostwise "github.com/hostwise/hostwise-go"
	"github.com/hostwise/hostwise-go/fake"
	"github.com/hostwise/hostwise-go/transaction"
)

func day(d int) hostwise.Date {
	return hostwise.Date{Year: 2025, Month: time.June, Day: d}
}

func seedTransactions() []hostwise.Transaction {
	mk := func(i int, propertyID string, typ hostwise.TransactionType, amount string, d int) hostwise.Transaction {
		return hostwise.Transaction{
			ID:         fmt.Sprintf("txn-%d", i),
			PropertyID: propertyID,
			Type:       typ,
			Category:   hostwise.TransactionCategoryOther,
			Amount:     decimal.RequireFromString(amount),
			Date:       day(d),
		}
	}
	return []hostwise.Transaction{
		mk(0, "prop-a", hostwise.TransactionTypeIncome, "1200.50", 1),
		mk(1, "prop-a", hostwise.TransactionTypeExpense, "75.25", 3),
		mk(2, "prop-a", hostwise.TransactionTypeIncome, "800.00", 10),
		mk(3, "prop-b", hostwise.TransactionTypeExpense, "300.00", 5),
	}
}

func TestList_InvalidateOnCreate(t *testing.T) {
	store := fake.NewTransactionStore(seedTransactions()...)
	svc := transaction.New(store)
	ctx := context.Background()

	first, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, first, 4)

	_, err = svc.Create(ctx, hostwise.TransactionInput{
		PropertyID: "prop-b",
		Type:       hostwise.TransactionTypeIncome,
		Category:   hostwise.TransactionCategoryRent,
		Amount:     decimal.NewFromInt(950),
		Date:       day(12),
	})
	require.NoError(t, err)

	after, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, after, 5)
	assert.Equal(t, 2, store.ListCalls())
}

func TestListByType_WarmCache(t *testing.T) {
	store := fake.NewTransactionStore(seedTransactions()...)
	svc := transaction.New(store)
	ctx := context.Background()

	_, err := svc.List(ctx, false)
	require.NoError(t, err)

	income, err := svc.ListByType(ctx, hostwise.TransactionTypeIncome)
	require.NoError(t, err)
	assert.Len(t, income, 2)
	assert.Equal(t, 1, store.ListCalls())
}

func TestListInRange_InclusiveBounds(t *testing.T) {
	store := fake.NewTransactionStore(seedTransactions()...)
	svc := transaction.New(store)

	records, err := svc.ListInRange(context.Background(), day(3), day(5))

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "txn-1", records[0].ID)
	assert.Equal(t, "txn-3", records[1].ID)
}

func TestSummarize_SingleProperty(t *testing.T) {
	store := fake.NewTransactionStore(seedTransactions()...)
	svc := transaction.New(store)

	sum, err := svc.Summarize(context.Background(), "prop-a", day(1), day(30))

	require.NoError(t, err)
	assert.Equal(t, 3, sum.Count)
	assert.True(t, sum.Income.Equal(decimal.RequireFromString("2000.50")), "income %s", sum.Income)
	assert.True(t, sum.Expenses.Equal(decimal.RequireFromString("75.25")), "expenses %s", sum.Expenses)
	assert.True(t, sum.Net.Equal(decimal.RequireFromString("1925.25")), "net %s", sum.Net)
}

func TestSummarize_AllProperties(t *testing.T) {
	store := fake.NewTransactionStore(seedTransactions()...)
	svc := transaction.New(store)

	sum, err := svc.Summarize(context.Background(), "", day(1), day(30))

	require.NoError(t, err)
	assert.Equal(t, 4, sum.Count)
	assert.True(t, sum.Net.Equal(decimal.RequireFromString("1625.25")), "net %s", sum.Net)
}

func TestSummarize_EmptyWindow(t *testing.T) {
	store := fake.NewTransactionStore(seedTransactions()...)
	svc := transaction.New(store)

	sum, err := svc.Summarize(context.Background(), "prop-a", day(20), day(25))

	require.NoError(t, err)
	assert.Equal(t, 0, sum.Count)
	assert.True(t, sum.Income.IsZero())
	assert.True(t, sum.Expenses.IsZero())
	assert.True(t, sum.Net.IsZero())
}

func TestListByProperty_ColdCache(t *testing.T) {
	store := fake.NewTransactionStore(seedTransactions()...)
	svc := transaction.New(store)

	forB, err := svc.ListByProperty(context.Background(), "prop-b")

	require.NoError(t, err)
	assert.Len(t, forB, 1)
	assert.Equal(t, 0, store.ListCalls())
}

func TestDelete_ErrorWrapped(t *testing.T) {
	store := fake.NewTransactionStore(seedTransactions()...)
	cause := errors.New("row api down")
	store.SetError(cause)
	svc := transaction.New(store)

	err := svc.Delete(context.Background(), "txn-0")

	var perr *hostwise.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "delete", perr.Op)
	assert.ErrorIs(t, err, cause)
}
