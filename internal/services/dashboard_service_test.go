package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbm "bizdesk/internal/models/db_models"
	resp "bizdesk/internal/models/response_models"
)

func txn(id, amount, currency string) dbm.Transaction {
	return dbm.Transaction{ID: id, UserID: "abc", Amount: decimal.RequireFromString(amount), Currency: currency}
}

func TestSummarize_ExactDecimalTotals(t *testing.T) {
	txns := []dbm.Transaction{txn("a", "0.10", "USD"), txn("b", "0.20", "USD")}
	s := Summarize(txns)
	assert.Equal(t, int64(2), s.Count)
	assert.True(t, s.Total.Equal(decimal.RequireFromString("0.30")), s.Total.String())
	assert.Equal(t, "USD", s.Currency)

	empty := Summarize(nil)
	assert.Zero(t, empty.Count)
	assert.True(t, empty.Total.IsZero())
	assert.Empty(t, empty.Currency)
}

func TestSummarize_AddingTransactionIncrementsCountAndTotal(t *testing.T) {
	base := []dbm.Transaction{txn("a", "97", "USD"), txn("b", "12.35", "USD"), txn("c", "1500", "USD")}
	extra := txn("d", "49.99", "USD")

	before := Summarize(base)
	after := Summarize(append(append([]dbm.Transaction{}, base...), extra))

	assert.Equal(t, before.Count+1, after.Count)
	assert.True(t, after.Total.Equal(before.Total.Add(extra.Amount)))
}

func TestSummarize_MixedCurrencyDropsCurrency(t *testing.T) {
	s := Summarize([]dbm.Transaction{txn("a", "1", "USD"), txn("b", "1", "EUR"), txn("c", "1", "USD")})
	assert.Equal(t, int64(3), s.Count)
	assert.Empty(t, s.Currency)
}

func TestWatch_EmitsOnChange(t *testing.T) {
	txns := newFakeTxnRepo()
	feed := newFakeFeed()
	svc := NewDashboardService(nil, txns, feed, testLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates := svc.Watch(ctx, "abc")

	first := receive(t, updates)
	assert.Zero(t, first.Count)

	require.NoError(t, txns.MergeUpsert(ctx, &dbm.Transaction{ID: "abc_1", UserID: "abc", Amount: decimal.NewFromInt(97), Currency: "USD"}))
	require.NoError(t, feed.Publish(ctx, "abc"))

	second := receive(t, updates)
	assert.Equal(t, int64(1), second.Count)
	assert.True(t, second.Total.Equal(decimal.NewFromInt(97)))

	cancel()
	assert.Eventually(t, func() bool {
		_, open := <-updates
		return !open
	}, time.Second, 10*time.Millisecond)
}

func TestWatch_ErrorEmitsZeroSummary(t *testing.T) {
	txns := newFakeTxnRepo()
	txns.err = errors.New("connection reset")
	svc := NewDashboardService(nil, txns, newFakeFeed(), testLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := receive(t, svc.Watch(ctx, "abc"))
	assert.Zero(t, got.Count)
	assert.True(t, got.Total.IsZero())
}

func receive(t *testing.T, ch <-chan resp.PurchaseSummary) resp.PurchaseSummary {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("no summary received")
		return resp.PurchaseSummary{}
	}
}
