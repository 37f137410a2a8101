package service

import (
	"context"
	"errors"
	"time"

	"github.com/pontdesarts/lovelock/internal/model"
	"github.com/pontdesarts/lovelock/internal/payment"
	"github.com/pontdesarts/lovelock/internal/queue"
	"github.com/pontdesarts/lovelock/internal/repository"
)

// fakeLockStore is an in-memory LockStore recording every mutation so
// tests can assert on exactly which writes happened.
type fakeLockStore struct {
	locks map[uint64]*model.Lock

	upserts     []repository.PendingLock
	activations []repository.ActivatedLock
	deletions   []uint64
	transfers   map[uint64]string
	boosts      map[uint64]time.Time
	mediaSets   map[uint64]string
	unlocks     map[uint64]int64
	reapIDs     []uint64

	upsertErr   error
	activateErr error
	deleteErr   error
	reapErr     error
}

func newFakeLockStore() *fakeLockStore {
	return &fakeLockStore{
		locks:     make(map[uint64]*model.Lock),
		transfers: make(map[uint64]string),
		boosts:    make(map[uint64]time.Time),
		mediaSets: make(map[uint64]string),
		unlocks:   make(map[uint64]int64),
	}
}

func (f *fakeLockStore) GetByID(_ context.Context, id uint64) (*model.Lock, error) {
	l, ok := f.locks[id]
	if !ok {
		return nil, repository.ErrLockNotFound
	}
	return l, nil
}

func (f *fakeLockStore) UpsertPending(_ context.Context, p repository.PendingLock) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, p)
	until := p.PendingUntil
	f.locks[p.ID] = &model.Lock{
		ID: p.ID, OwnerID: &p.OwnerID, Zone: p.Zone, Finish: p.Finish,
		Status: model.StatusPending, PriceCents: p.PriceCents,
		IsPrivate: p.IsPrivate, ContentText: p.ContentText,
		MediaType: p.MediaType, PendingUntil: &until,
	}
	return nil
}

func (f *fakeLockStore) ActivateOrRestore(_ context.Context, a repository.ActivatedLock) error {
	if f.activateErr != nil {
		return f.activateErr
	}
	f.activations = append(f.activations, a)
	f.locks[a.ID] = &model.Lock{
		ID: a.ID, OwnerID: &a.OwnerID, Zone: a.Zone, Finish: a.Finish,
		Status: model.StatusActive, PriceCents: a.PriceCents,
		IsPrivate: a.IsPrivate, ContentText: a.ContentText, MediaType: a.MediaType,
	}
	return nil
}

func (f *fakeLockStore) DeletePending(_ context.Context, id uint64) (bool, error) {
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	f.deletions = append(f.deletions, id)
	l, ok := f.locks[id]
	if !ok || l.Status != model.StatusPending {
		return false, nil
	}
	delete(f.locks, id)
	return true, nil
}

func (f *fakeLockStore) ReapExpired(_ context.Context) ([]uint64, error) {
	if f.reapErr != nil {
		return nil, f.reapErr
	}
	for _, id := range f.reapIDs {
		delete(f.locks, id)
	}
	return f.reapIDs, nil
}

func (f *fakeLockStore) Transfer(_ context.Context, id uint64, newOwnerID string) error {
	l, ok := f.locks[id]
	if !ok || !l.ForResale() {
		return repository.ErrSlotUnavailable
	}
	f.transfers[id] = newOwnerID
	l.OwnerID = &newOwnerID
	l.GoldenAssetPriceCents = nil
	return nil
}

func (f *fakeLockStore) SetBoost(_ context.Context, id uint64, tier string, until time.Time) error {
	l, ok := f.locks[id]
	if !ok || l.Status != model.StatusActive {
		return repository.ErrSlotUnavailable
	}
	f.boosts[id] = until
	l.BoostTier = &tier
	l.BoostUntil = &until
	return nil
}

func (f *fakeLockStore) SetMediaType(_ context.Context, id uint64, mediaType string) error {
	l, ok := f.locks[id]
	if !ok || l.Status != model.StatusActive {
		return repository.ErrSlotUnavailable
	}
	f.mediaSets[id] = mediaType
	l.MediaType = &mediaType
	return nil
}

func (f *fakeLockStore) AddMediaUnlock(_ context.Context, id uint64, feeCents int64) error {
	l, ok := f.locks[id]
	if !ok || l.Status != model.StatusActive {
		return repository.ErrSlotUnavailable
	}
	f.unlocks[id] += feeCents
	return nil
}

// activeLock seeds an ACTIVE lock owned by ownerID.
func (f *fakeLockStore) activeLock(id uint64, ownerID string) *model.Lock {
	l := &model.Lock{ID: id, OwnerID: &ownerID, Zone: model.ZoneStandard,
		Finish: model.FinishBronze, Status: model.StatusActive, PriceCents: 2999}
	f.locks[id] = l
	return l
}

type fakeTxStore struct {
	created []*model.Transaction
	err     error
}

func (f *fakeTxStore) Create(_ context.Context, t *model.Transaction) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, t)
	return nil
}

// ledgerEntry mirrors one webhook_events row: claimed, maybe
// completed, maybe stale (claimed long ago by a run that died).
type ledgerEntry struct {
	completed bool
	stale     bool
}

// fakeEventLedger mirrors the two-phase ledger: the first claim of an
// id wins, repeats report duplicate unless the earlier claim went
// stale without completing.
type fakeEventLedger struct {
	entries  map[string]*ledgerEntry
	claimErr error
}

func newFakeEventLedger() *fakeEventLedger {
	return &fakeEventLedger{entries: make(map[string]*ledgerEntry)}
}

func (f *fakeEventLedger) Claim(_ context.Context, provider, eventID, _ string) (bool, error) {
	if f.claimErr != nil {
		return false, f.claimErr
	}
	key := provider + "/" + eventID
	e, ok := f.entries[key]
	if !ok {
		f.entries[key] = &ledgerEntry{}
		return true, nil
	}
	if !e.completed && e.stale {
		e.stale = false
		return true, nil
	}
	return false, nil
}

func (f *fakeEventLedger) Complete(_ context.Context, provider, eventID string) error {
	if e, ok := f.entries[provider+"/"+eventID]; ok {
		e.completed = true
	}
	return nil
}

func (f *fakeEventLedger) Unclaim(_ context.Context, provider, eventID string) error {
	key := provider + "/" + eventID
	if e, ok := f.entries[key]; ok && !e.completed {
		delete(f.entries, key)
	}
	return nil
}

type fakePromoStore struct {
	codes    map[string]*model.PromoCode
	redeemed []string
}

func newFakePromoStore() *fakePromoStore {
	return &fakePromoStore{codes: make(map[string]*model.PromoCode)}
}

func (f *fakePromoStore) GetActive(_ context.Context, code string) (*model.PromoCode, error) {
	p, ok := f.codes[code]
	if !ok {
		return nil, repository.ErrPromoNotFound
	}
	return p, nil
}

func (f *fakePromoStore) Redeem(_ context.Context, code string) (bool, error) {
	if _, ok := f.codes[code]; !ok {
		return false, nil
	}
	f.redeemed = append(f.redeemed, code)
	return true, nil
}

type fakeProfileStore struct {
	upserts []*model.Profile
}

func (f *fakeProfileStore) Upsert(_ context.Context, p *model.Profile) error {
	f.upserts = append(f.upserts, p)
	return nil
}

type fakeNotifier struct {
	events []queue.PurchaseConfirmedEvent
	err    error
}

func (f *fakeNotifier) PublishPurchaseConfirmed(_ context.Context, ev queue.PurchaseConfirmedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

// fakeProvider records the session requests it was asked to open.
type fakeProvider struct {
	requests []payment.SessionRequest
	err      error
}

var errProviderDown = errors.New("provider down")

func (f *fakeProvider) CreateCheckoutSession(_ context.Context, req payment.SessionRequest) (*payment.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.requests = append(f.requests, req)
	return &payment.Session{ID: "cs_test_1", URL: "https://pay.example/cs_test_1"}, nil
}
