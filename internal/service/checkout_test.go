package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pontdesarts/lovelock/internal/model"
	"github.com/pontdesarts/lovelock/internal/pricing"
	"github.com/pontdesarts/lovelock/internal/repository"
)

func newCheckoutFixture() (*CheckoutService, *fakeLockStore, *fakePromoStore, *fakeProvider) {
	locks := newFakeLockStore()
	promos := newFakePromoStore()
	provider := &fakeProvider{}
	svc := NewCheckoutService(locks, promos, &fakeProfileStore{}, provider, time.Hour)
	return svc, locks, promos, provider
}

func newPurchaseReq(id uint64) CheckoutRequest {
	return CheckoutRequest{
		Kind:        model.TxNewPurchase,
		LockID:      id,
		Zone:        model.ZoneStandard,
		Finish:      model.FinishGold,
		ContentText: "A & B forever",
		BuyerID:     "user-1",
		BuyerEmail:  "one@example.com",
	}
}

func TestCreateSessionNewPurchase(t *testing.T) {
	svc, locks, _, provider := newCheckoutFixture()

	url, err := svc.CreateSession(context.Background(), newPurchaseReq(42))
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/cs_test_1", url)

	require.Len(t, locks.upserts, 1)
	up := locks.upserts[0]
	assert.Equal(t, uint64(42), up.ID)
	assert.Equal(t, "user-1", up.OwnerID)
	assert.Equal(t, int64(4998), up.PriceCents)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), up.PendingUntil, 5*time.Second)

	require.Len(t, provider.requests, 1)
	sr := provider.requests[0]
	assert.Equal(t, model.TxNewPurchase, sr.Kind)
	assert.Equal(t, int64(4998), sr.AmountCents)
	assert.Equal(t, model.ZoneStandard, sr.Metadata["zone"])
	assert.Equal(t, model.FinishGold, sr.Metadata["finish"])
	assert.Equal(t, "A & B forever", sr.Metadata["content_text"])
}

func TestCreateSessionRejectsGoldenNumber(t *testing.T) {
	svc, locks, _, provider := newCheckoutFixture()

	_, err := svc.CreateSession(context.Background(), newPurchaseReq(7))
	assert.ErrorIs(t, err, repository.ErrSlotUnavailable)
	// Rejected before any reservation or provider call.
	assert.Empty(t, locks.upserts)
	assert.Empty(t, provider.requests)
}

func TestCreateSessionValidation(t *testing.T) {
	svc, _, _, _ := newCheckoutFixture()
	ctx := context.Background()

	bad := newPurchaseReq(42)
	bad.Kind = "GIFT_CARD"
	_, err := svc.CreateSession(ctx, bad)
	assert.ErrorIs(t, err, pricing.ErrInvalidConfiguration)

	bad = newPurchaseReq(0)
	_, err = svc.CreateSession(ctx, bad)
	assert.ErrorIs(t, err, pricing.ErrInvalidConfiguration)

	bad = newPurchaseReq(model.MaxLockID + 1)
	_, err = svc.CreateSession(ctx, bad)
	assert.ErrorIs(t, err, pricing.ErrInvalidConfiguration)

	bad = newPurchaseReq(42)
	bad.BuyerID = ""
	_, err = svc.CreateSession(ctx, bad)
	assert.ErrorIs(t, err, pricing.ErrInvalidConfiguration)

	bad = newPurchaseReq(42)
	bad.Zone = "MOON"
	_, err = svc.CreateSession(ctx, bad)
	assert.ErrorIs(t, err, pricing.ErrInvalidConfiguration)
}

func TestCreateSessionProviderFailureRollsBackHold(t *testing.T) {
	svc, locks, _, provider := newCheckoutFixture()
	provider.err = errProviderDown

	_, err := svc.CreateSession(context.Background(), newPurchaseReq(42))
	assert.ErrorIs(t, err, ErrPaymentProvider)

	// The hold was written and then deleted right away, not left for
	// the reaper.
	require.Len(t, locks.upserts, 1)
	assert.Equal(t, []uint64{42}, locks.deletions)
	_, getErr := locks.GetByID(context.Background(), 42)
	assert.ErrorIs(t, getErr, repository.ErrLockNotFound)
}

func TestCreateSessionRetryOverwritesOwnHold(t *testing.T) {
	svc, locks, _, _ := newCheckoutFixture()
	ctx := context.Background()

	_, err := svc.CreateSession(ctx, newPurchaseReq(42))
	require.NoError(t, err)
	// Same buyer abandoning and retrying gets a fresh hold, not an
	// error.
	_, err = svc.CreateSession(ctx, newPurchaseReq(42))
	require.NoError(t, err)
	assert.Len(t, locks.upserts, 2)
}

func TestCreateSessionPromoCode(t *testing.T) {
	svc, locks, promos, provider := newCheckoutFixture()
	promos.codes["LOVE50"] = &model.PromoCode{Code: "LOVE50", PercentOff: 50, Active: true}

	req := newPurchaseReq(42)
	req.PromoCode = "LOVE50"
	_, err := svc.CreateSession(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int64(2499), locks.upserts[0].PriceCents)
	assert.Equal(t, int64(2499), provider.requests[0].AmountCents)
	assert.Equal(t, "LOVE50", provider.requests[0].Metadata["promo_code"])
	// Redemption is deferred to the webhook.
	assert.Empty(t, promos.redeemed)
}

func TestCreateSessionUnknownPromo(t *testing.T) {
	svc, locks, _, _ := newCheckoutFixture()

	req := newPurchaseReq(42)
	req.PromoCode = "NOPE"
	_, err := svc.CreateSession(context.Background(), req)
	assert.ErrorIs(t, err, pricing.ErrInvalidConfiguration)
	assert.Empty(t, locks.upserts)
}

func TestCreateSessionBoost(t *testing.T) {
	svc, locks, _, provider := newCheckoutFixture()
	locks.activeLock(42, "user-1")

	req := CheckoutRequest{Kind: model.TxBoost, LockID: 42, BoostTier: model.BoostSpark,
		BuyerID: "user-1", BuyerEmail: "one@example.com"}
	_, err := svc.CreateSession(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, provider.requests, 1)
	assert.Equal(t, int64(499), provider.requests[0].AmountCents)
	assert.Equal(t, model.BoostSpark, provider.requests[0].Metadata["boost_tier"])
	// No write before payment confirmation.
	assert.Empty(t, locks.boosts)
}

func TestCreateSessionBoostRequiresOwnership(t *testing.T) {
	svc, locks, _, _ := newCheckoutFixture()
	locks.activeLock(42, "someone-else")

	req := CheckoutRequest{Kind: model.TxBoost, LockID: 42, BoostTier: model.BoostSpark, BuyerID: "user-1"}
	_, err := svc.CreateSession(context.Background(), req)
	assert.ErrorIs(t, err, repository.ErrSlotUnavailable)
}

func TestCreateSessionResale(t *testing.T) {
	svc, locks, _, provider := newCheckoutFixture()
	l := locks.activeLock(777, "seller-1")
	price := int64(25000)
	l.GoldenAssetPriceCents = &price

	req := CheckoutRequest{Kind: model.TxResale, LockID: 777, BuyerID: "buyer-2", BuyerEmail: "two@example.com"}
	_, err := svc.CreateSession(context.Background(), req)
	require.NoError(t, err)

	sr := provider.requests[0]
	assert.Equal(t, int64(25000), sr.AmountCents)
	assert.Equal(t, "5000", sr.Metadata["commission_cents"])
	assert.Equal(t, "20000", sr.Metadata["seller_cents"])
	assert.Equal(t, "seller-1", sr.Metadata["seller_id"])
}

func TestCreateSessionResaleRejections(t *testing.T) {
	svc, locks, _, _ := newCheckoutFixture()
	ctx := context.Background()

	// Not listed.
	locks.activeLock(100001, "seller-1")
	_, err := svc.CreateSession(ctx, CheckoutRequest{Kind: model.TxResale, LockID: 100001, BuyerID: "buyer-2"})
	assert.ErrorIs(t, err, repository.ErrSlotUnavailable)

	// Buying your own listing.
	l := locks.activeLock(100002, "buyer-2")
	price := int64(5000)
	l.GoldenAssetPriceCents = &price
	_, err = svc.CreateSession(ctx, CheckoutRequest{Kind: model.TxResale, LockID: 100002, BuyerID: "buyer-2"})
	assert.ErrorIs(t, err, repository.ErrSlotUnavailable)

	// Banned lock, even if a listing price survived.
	l = locks.activeLock(100003, "seller-1")
	l.Status = model.StatusBanned
	l.GoldenAssetPriceCents = &price
	_, err = svc.CreateSession(ctx, CheckoutRequest{Kind: model.TxResale, LockID: 100003, BuyerID: "buyer-2"})
	assert.ErrorIs(t, err, repository.ErrSlotUnavailable)
}

func TestCreateSessionMediaUpgrade(t *testing.T) {
	svc, locks, _, provider := newCheckoutFixture()
	locks.activeLock(42, "user-1")

	req := CheckoutRequest{Kind: model.TxMediaUpgrade, LockID: 42,
		MediaType: model.MediaVideo, BuyerID: "user-1"}
	_, err := svc.CreateSession(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(1999), provider.requests[0].AmountCents)
	assert.Equal(t, model.MediaVideo, provider.requests[0].Metadata["media_type"])
}

func TestCreateSessionMediaUnlock(t *testing.T) {
	svc, locks, _, provider := newCheckoutFixture()
	ctx := context.Background()

	// Unlocking a lock without media is refused.
	locks.activeLock(42, "owner-1")
	_, err := svc.CreateSession(ctx, CheckoutRequest{Kind: model.TxMediaUnlock, LockID: 42, BuyerID: "visitor-1"})
	assert.ErrorIs(t, err, repository.ErrSlotUnavailable)

	media := model.MediaPhoto
	locks.locks[42].MediaType = &media
	_, err = svc.CreateSession(ctx, CheckoutRequest{Kind: model.TxMediaUnlock, LockID: 42, BuyerID: "visitor-1"})
	require.NoError(t, err)
	assert.Equal(t, pricing.MediaUnlockFeeCents, provider.requests[0].AmountCents)
}
