package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/pontdesarts/lovelock/internal/goldenset"
	"github.com/pontdesarts/lovelock/internal/model"
	"github.com/pontdesarts/lovelock/internal/payment"
	"github.com/pontdesarts/lovelock/internal/pricing"
	"github.com/pontdesarts/lovelock/internal/repository"
)

// ErrPaymentProvider wraps upstream session-creation failures so
// handlers can map them to 502 without inspecting provider internals.
var ErrPaymentProvider = errors.New("payment provider error")

// CheckoutRequest is the decoded checkout-initiation body plus the
// identity extracted from the caller's token.
type CheckoutRequest struct {
	Kind         string
	LockID       uint64
	Zone         string
	Finish       string
	MediaType    string
	ContentText  string
	CustomNumber bool
	IsPrivate    bool
	BoostTier    string
	PromoCode    string
	BuyerID      string
	BuyerEmail   string
}

// CheckoutService validates a checkout request, writes the reservation
// hold for new purchases and opens the hosted payment session.
type CheckoutService struct {
	locks    LockStore
	promos   PromoStore
	profiles ProfileStore
	provider payment.Provider
	holdTTL  time.Duration
}

// NewCheckoutService wires a CheckoutService. holdTTL is the
// reservation hold window (one hour in production).
func NewCheckoutService(locks LockStore, promos PromoStore, profiles ProfileStore, provider payment.Provider, holdTTL time.Duration) *CheckoutService {
	return &CheckoutService{locks: locks, promos: promos, profiles: profiles, provider: provider, holdTTL: holdTTL}
}

// CreateSession runs the per-kind pricing rules, performs any
// reservation side effect and returns the hosted checkout URL.
//
// Only NEW_PURCHASE writes before payment: the slot is upserted PENDING
// with a one-hour hold, then the provider session is opened. When the
// provider refuses the session the hold is deleted immediately rather
// than left for the reaper, so a failed call leaves no dangling
// reservation. All other kinds are validated against current lock state
// and carry no side effect until the webhook confirms payment.
func (s *CheckoutService) CreateSession(ctx context.Context, req CheckoutRequest) (string, error) {
	if !model.ValidTxKind(req.Kind) {
		return "", pricing.ErrInvalidConfiguration
	}
	if req.LockID == 0 || req.LockID > model.MaxLockID {
		return "", pricing.ErrInvalidConfiguration
	}
	if req.BuyerID == "" {
		return "", pricing.ErrInvalidConfiguration
	}

	if s.profiles != nil {
		// Mirror the identity record; losing it only degrades emails.
		if err := s.profiles.Upsert(ctx, &model.Profile{UserID: req.BuyerID, Email: req.BuyerEmail}); err != nil {
			log.Printf("checkout: profile upsert for %s failed: %v", req.BuyerID, err)
		}
	}

	switch req.Kind {
	case model.TxNewPurchase:
		return s.newPurchase(ctx, req)
	case model.TxBoost:
		return s.boost(ctx, req)
	case model.TxResale:
		return s.resale(ctx, req)
	case model.TxMediaUpgrade:
		return s.mediaUpgrade(ctx, req)
	case model.TxMediaUnlock:
		return s.mediaUnlock(ctx, req)
	}
	return "", pricing.ErrInvalidConfiguration
}

func (s *CheckoutService) newPurchase(ctx context.Context, req CheckoutRequest) (string, error) {
	// Golden assets never go through first-come allocation; reject
	// before any write. The availability endpoint applies the same
	// predicate so the two surfaces agree.
	if goldenset.Contains(req.LockID) {
		return "", repository.ErrSlotUnavailable
	}

	amount, err := pricing.Quote(req.Zone, req.Finish, req.MediaType, req.CustomNumber, req.IsPrivate)
	if err != nil {
		return "", err
	}

	meta := map[string]string{
		metaZone:      req.Zone,
		metaFinish:    req.Finish,
		metaContent:   req.ContentText,
		metaIsPrivate: boolMeta(req.IsPrivate),
	}
	if req.MediaType != "" {
		meta[metaMediaType] = req.MediaType
	}
	if req.PromoCode != "" {
		promo, err := s.promos.GetActive(ctx, req.PromoCode)
		if err != nil {
			if errors.Is(err, repository.ErrPromoNotFound) {
				return "", pricing.ErrInvalidConfiguration
			}
			return "", err
		}
		if !promo.Usable(time.Now().UTC()) {
			return "", pricing.ErrInvalidConfiguration
		}
		amount = pricing.ApplyPercentOff(amount, promo.PercentOff)
		meta[metaPromoCode] = promo.Code
	}

	var mediaType *string
	if req.MediaType != "" {
		mediaType = &req.MediaType
	}
	pendingUntil := time.Now().UTC().Add(s.holdTTL)
	if err := s.locks.UpsertPending(ctx, repository.PendingLock{
		ID:           req.LockID,
		OwnerID:      req.BuyerID,
		Zone:         req.Zone,
		Finish:       req.Finish,
		PriceCents:   amount,
		IsPrivate:    req.IsPrivate,
		ContentText:  req.ContentText,
		MediaType:    mediaType,
		PendingUntil: pendingUntil,
	}); err != nil {
		return "", err
	}

	url, err := s.openSession(ctx, req, amount,
		fmt.Sprintf("Love lock #%d (%s, %s)", req.LockID, req.Zone, req.Finish), meta)
	if err != nil {
		// Roll the hold back right away instead of leaving the number
		// blocked for an hour; the upsert is idempotent so a retried
		// checkout recreates it.
		if _, delErr := s.locks.DeletePending(ctx, req.LockID); delErr != nil {
			log.Printf("checkout: rollback of pending lock %d failed: %v", req.LockID, delErr)
		}
		return "", err
	}
	return url, nil
}

func (s *CheckoutService) boost(ctx context.Context, req CheckoutRequest) (string, error) {
	amount, err := pricing.BoostPrice(req.BoostTier)
	if err != nil {
		return "", err
	}
	lock, err := s.locks.GetByID(ctx, req.LockID)
	if err != nil {
		return "", err
	}
	if model.StateOf(lock, time.Now().UTC()) != model.StateActive ||
		lock.OwnerID == nil || *lock.OwnerID != req.BuyerID {
		return "", repository.ErrSlotUnavailable
	}
	return s.openSession(ctx, req, amount,
		fmt.Sprintf("Boost %s for lock #%d", req.BoostTier, req.LockID),
		map[string]string{metaBoostTier: req.BoostTier})
}

func (s *CheckoutService) resale(ctx context.Context, req CheckoutRequest) (string, error) {
	lock, err := s.locks.GetByID(ctx, req.LockID)
	if err != nil {
		return "", err
	}
	if !lock.ForResale() || lock.Status == model.StatusBanned {
		return "", repository.ErrSlotUnavailable
	}
	if lock.OwnerID != nil && *lock.OwnerID == req.BuyerID {
		return "", repository.ErrSlotUnavailable
	}
	amount := *lock.GoldenAssetPriceCents
	commission, seller := pricing.ResaleSplit(amount)
	meta := map[string]string{
		"commission_cents": strconv.FormatInt(commission, 10),
		"seller_cents":     strconv.FormatInt(seller, 10),
	}
	if lock.OwnerID != nil {
		meta["seller_id"] = *lock.OwnerID
	}
	return s.openSession(ctx, req, amount,
		fmt.Sprintf("Golden asset #%d", req.LockID), meta)
}

func (s *CheckoutService) mediaUpgrade(ctx context.Context, req CheckoutRequest) (string, error) {
	amount, err := pricing.MediaPrice(req.MediaType)
	if err != nil {
		return "", err
	}
	lock, err := s.locks.GetByID(ctx, req.LockID)
	if err != nil {
		return "", err
	}
	if model.StateOf(lock, time.Now().UTC()) != model.StateActive ||
		lock.OwnerID == nil || *lock.OwnerID != req.BuyerID {
		return "", repository.ErrSlotUnavailable
	}
	return s.openSession(ctx, req, amount,
		fmt.Sprintf("%s upgrade for lock #%d", req.MediaType, req.LockID),
		map[string]string{metaMediaType: req.MediaType})
}

func (s *CheckoutService) mediaUnlock(ctx context.Context, req CheckoutRequest) (string, error) {
	lock, err := s.locks.GetByID(ctx, req.LockID)
	if err != nil {
		return "", err
	}
	if model.StateOf(lock, time.Now().UTC()) != model.StateActive || lock.MediaType == nil {
		return "", repository.ErrSlotUnavailable
	}
	return s.openSession(ctx, req, pricing.MediaUnlockFeeCents,
		fmt.Sprintf("Unlock media on lock #%d", req.LockID), nil)
}

func (s *CheckoutService) openSession(ctx context.Context, req CheckoutRequest, amount int64, description string, extra map[string]string) (string, error) {
	sess, err := s.provider.CreateCheckoutSession(ctx, payment.SessionRequest{
		Kind:        req.Kind,
		LockID:      req.LockID,
		BuyerID:     req.BuyerID,
		BuyerEmail:  req.BuyerEmail,
		AmountCents: amount,
		Description: description,
		Metadata:    extra,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}
	return sess.URL, nil
}

func boolMeta(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
