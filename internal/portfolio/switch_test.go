package portfolio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/rta-portal/internal/events"
	"github.com/hongminglow/rta-portal/internal/models"
	"github.com/hongminglow/rta-portal/internal/storage"
)

func TestSwitchSettlesBothLegs(t *testing.T) {
	svc, store, rec := newService(t)
	ctx := context.Background()
	buy(t, svc, "SCH002", "1285")

	res, err := svc.Switch(ctx, investor, SwitchRequest{SourceFolioNumber: "F001", TargetSchemeID: "SCH001", Units: ptr(dec("40"))})
	require.NoError(t, err)

	out, in := res.Redemption, res.Purchase
	assert.Equal(t, models.TxSwitchRedemption, out.Type)
	assert.Equal(t, "T002", out.TransactionID)
	assert.Equal(t, "F001", out.FolioNumber)
	assertDec(t, "-40", out.Units)
	assertDec(t, "514", out.Amount)

	assert.Equal(t, models.TxSwitchPurchase, in.Type)
	assert.Equal(t, "T003", in.TransactionID)
	assert.Equal(t, "F002", in.FolioNumber)
	assert.Equal(t, "SCH001", in.SchemeID)
	assertDec(t, "514", in.Amount)
	assertDec(t, "3.4210", in.Units)
	assert.Equal(t, SwitchPlan, in.Plan)
	assert.Equal(t, SwitchPaymentMode, in.PaymentMode)

	assert.Equal(t, in.TransactionID, out.LinkedTransactionID)
	assert.Equal(t, out.TransactionID, in.LinkedTransactionID)

	from, err := store.FindFolio(ctx, "F001")
	require.NoError(t, err)
	assertDec(t, "60", from.TotalUnits)
	assertDec(t, "771", from.TotalInvestment)
	assert.Equal(t, 2, from.TransactionCount)

	to, err := store.FindFolio(ctx, "F002")
	require.NoError(t, err)
	assert.Equal(t, investor, to.InvestorID)
	assertDec(t, "3.4210", to.TotalUnits)
	assertDec(t, "514", to.TotalInvestment)
	assertDec(t, "150.2485", to.AverageCostPerUnit)
	assert.Equal(t, 1, to.TransactionCount)

	history, err := svc.History(ctx, investor, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "T003", history[0].TransactionID)
	assert.Equal(t, "T002", history[0].LinkedTransactionID)
	assert.Equal(t, "T003", history[1].LinkedTransactionID)

	got := rec.Events()
	require.Len(t, got, 3)
	for _, evt := range got {
		assert.Equal(t, events.TransactionCompleted, evt.Type)
	}
}

func TestSwitchAllUnitsIntoExistingFolio(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()
	buy(t, svc, "SCH001", "15025")
	buy(t, svc, "SCH002", "1285")

	res, err := svc.Switch(ctx, investor, SwitchRequest{SourceFolioNumber: "F002", TargetSchemeID: "SCH001", AllUnits: true})
	require.NoError(t, err)
	assert.Equal(t, "F001", res.Purchase.FolioNumber)
	assertDec(t, "1285", res.Purchase.Amount)

	from, err := store.FindFolio(ctx, "F002")
	require.NoError(t, err)
	assert.Equal(t, models.FolioClosed, from.Status)
	assert.True(t, from.TotalUnits.IsZero())

	to, err := store.FindFolio(ctx, "F001")
	require.NoError(t, err)
	assertDec(t, "16310", to.TotalInvestment)
	assert.Equal(t, 2, to.TransactionCount)
}

func TestSwitchRules(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()
	buy(t, svc, "SCH002", "1285")

	cases := []struct {
		name string
		req  SwitchRequest
	}{
		{"no selector", SwitchRequest{SourceFolioNumber: "F001", TargetSchemeID: "SCH001"}},
		{"two selectors", SwitchRequest{SourceFolioNumber: "F001", TargetSchemeID: "SCH001", Units: ptr(dec("1")), AllUnits: true}},
		{"missing target", SwitchRequest{SourceFolioNumber: "F001", AllUnits: true}},
		{"same scheme", SwitchRequest{SourceFolioNumber: "F001", TargetSchemeID: "SCH002", AllUnits: true}},
		{"insufficient units", SwitchRequest{SourceFolioNumber: "F001", TargetSchemeID: "SCH001", Units: ptr(dec("100.0001"))}},
		{"below target minimum", SwitchRequest{SourceFolioNumber: "F001", TargetSchemeID: "SCH001", Units: ptr(dec("10"))}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.Switch(ctx, investor, c.req)
			require.Error(t, err)
			assert.True(t, IsRuleError(err), "got %v", err)
		})
	}

	_, err := svc.Switch(ctx, "I999", SwitchRequest{SourceFolioNumber: "F001", TargetSchemeID: "SCH001", AllUnits: true})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Switch(ctx, investor, SwitchRequest{SourceFolioNumber: "F001", TargetSchemeID: "SCH404", AllUnits: true})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// A rejected purchase leg must leave the source folio untouched.
	folio, err := store.FindFolio(ctx, "F001")
	require.NoError(t, err)
	assertDec(t, "100", folio.TotalUnits)
	folios, err := store.ListFolios(ctx, investor)
	require.NoError(t, err)
	assert.Len(t, folios, 1)
	history, err := svc.History(ctx, investor, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
