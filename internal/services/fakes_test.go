package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	dbm "bizdesk/internal/models/db_models"
	mem "bizdesk/pkg/memcache"
)

type fakeTxnRepo struct {
	mu      sync.Mutex
	rows    map[string]*dbm.Transaction
	merges  int
	applies int
	err     error
}

func newFakeTxnRepo() *fakeTxnRepo {
	return &fakeTxnRepo{rows: make(map[string]*dbm.Transaction)}
}

func (f *fakeTxnRepo) MergeUpsert(_ context.Context, txn *dbm.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.merges++
	cp := *txn
	if existing, ok := f.rows[txn.ID]; ok {
		cp.Status = existing.Status
	}
	f.rows[txn.ID] = &cp
	return nil
}

func (f *fakeTxnRepo) ApplyStatus(_ context.Context, txn *dbm.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.applies++
	existing, ok := f.rows[txn.ID]
	if txn.Status == dbm.TxnStatusFailed {
		if ok && existing.Status == dbm.TxnStatusPending {
			existing.Status = txn.Status
			existing.ProcessorRef = txn.ProcessorRef
			existing.PaymentMethod = txn.PaymentMethod
		}
		return nil
	}
	if !ok {
		cp := *txn
		f.rows[txn.ID] = &cp
		return nil
	}
	if existing.Status == dbm.TxnStatusRefunded {
		return nil
	}
	existing.Status = txn.Status
	existing.ProcessorRef = txn.ProcessorRef
	existing.PaymentMethod = txn.PaymentMethod
	return nil
}

func (f *fakeTxnRepo) FindByID(_ context.Context, id string) (*dbm.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.rows[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, f.err
}

func (f *fakeTxnRepo) ListByUser(_ context.Context, userID string) ([]dbm.Transaction, error) {
	return f.list(func(t *dbm.Transaction) bool { return t.UserID == userID })
}

func (f *fakeTxnRepo) ListByEmail(_ context.Context, email string) ([]dbm.Transaction, error) {
	return f.list(func(t *dbm.Transaction) bool { return t.Email == email })
}

func (f *fakeTxnRepo) list(match func(*dbm.Transaction) bool) ([]dbm.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []dbm.Transaction
	for _, t := range f.rows {
		if match(t) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeProcessor struct {
	method     dbm.PaymentMethod
	configured bool
	session    *CheckoutSession
	createErr  error
	captureErr error
	event      *WebhookEvent
	verifyErr  error

	checkouts []CheckoutParams
	captures  []string
}

func (p *fakeProcessor) Method() dbm.PaymentMethod { return p.method }
func (p *fakeProcessor) Configured() bool          { return p.configured }

func (p *fakeProcessor) CreateCheckout(_ context.Context, params CheckoutParams) (*CheckoutSession, error) {
	p.checkouts = append(p.checkouts, params)
	if p.createErr != nil {
		return nil, p.createErr
	}
	return p.session, nil
}

func (p *fakeProcessor) Capture(_ context.Context, ref string) error {
	p.captures = append(p.captures, ref)
	return p.captureErr
}

func (p *fakeProcessor) VerifyWebhook(context.Context, []byte, http.Header) (*WebhookEvent, error) {
	if p.verifyErr != nil {
		return nil, p.verifyErr
	}
	return p.event, nil
}

type fakeFeed struct {
	*hub
	mu        sync.Mutex
	published []string
}

func newFakeFeed() *fakeFeed { return &fakeFeed{hub: newHub()} }

func (f *fakeFeed) Publish(_ context.Context, userID string) error {
	f.mu.Lock()
	f.published = append(f.published, userID)
	f.mu.Unlock()
	f.hub.notify(userID)
	return nil
}

type fakeEventRepo struct {
	events map[string]*dbm.PaymentEvent
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[string]*dbm.PaymentEvent)}
}

func (f *fakeEventRepo) Upsert(_ context.Context, e *dbm.PaymentEvent) error {
	cp := *e
	f.events[e.EventID] = &cp
	return nil
}

type fakeUserRepo struct {
	users map[string]*dbm.User
}

func newFakeUserRepo(users ...dbm.User) *fakeUserRepo {
	f := &fakeUserRepo{users: make(map[string]*dbm.User)}
	for i := range users {
		u := users[i]
		f.users[u.ID] = &u
	}
	return f
}

func (f *fakeUserRepo) Create(_ context.Context, u *dbm.User) error {
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*dbm.User, error) {
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*dbm.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) List(context.Context, int, int) ([]dbm.User, error) {
	out := make([]dbm.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) SetPasswordHash(_ context.Context, id, hash string) error {
	if u, ok := f.users[id]; ok {
		u.PasswordHash = hash
	}
	return nil
}

type fakeUploadRepo struct {
	rows map[uuid.UUID]*dbm.Upload
	now  func() time.Time
}

func newFakeUploadRepo(now func() time.Time) *fakeUploadRepo {
	return &fakeUploadRepo{rows: make(map[uuid.UUID]*dbm.Upload), now: now}
}

func (f *fakeUploadRepo) Create(_ context.Context, u *dbm.Upload) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = f.now().Unix()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.rows[u.ID] = &cp
	return nil
}

func (f *fakeUploadRepo) Confirm(_ context.Context, id uuid.UUID, url string) error {
	if r, ok := f.rows[id]; ok {
		r.State = dbm.UploadStateConfirmed
		r.FileURL = url
		r.UpdatedAt = f.now().Unix()
	}
	return nil
}

func (f *fakeUploadRepo) MarkDeleting(_ context.Context, id uuid.UUID) error {
	if r, ok := f.rows[id]; ok {
		r.State = dbm.UploadStateDeleting
		r.UpdatedAt = f.now().Unix()
	}
	return nil
}

func (f *fakeUploadRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.rows, id)
	return nil
}

func (f *fakeUploadRepo) FindByID(_ context.Context, id uuid.UUID) (*dbm.Upload, error) {
	if r, ok := f.rows[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeUploadRepo) ListByUser(_ context.Context, userID string) ([]dbm.Upload, error) {
	var out []dbm.Upload
	for _, r := range f.rows {
		if r.UserID == userID && r.State == dbm.UploadStateConfirmed {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeUploadRepo) List(_ context.Context, userID string, _, _ int) ([]dbm.Upload, error) {
	var out []dbm.Upload
	for _, r := range f.rows {
		if r.State == dbm.UploadStateConfirmed && (userID == "" || r.UserID == userID) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeUploadRepo) ListStale(_ context.Context, state dbm.UploadState, before int64, _ int) ([]dbm.Upload, error) {
	var out []dbm.Upload
	for _, r := range f.rows {
		if r.State == state && r.UpdatedAt < before {
			out = append(out, *r)
		}
	}
	return out, nil
}

type fakeStorage struct {
	objects   map[string][]byte
	putErr    error
	deleteErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	if s.putErr != nil {
		return "", s.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.objects[key] = data
	return "https://files.test/" + key, nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.objects, key)
	return nil
}

func (s *fakeStorage) URL(_ context.Context, key string) (string, error) {
	if _, ok := s.objects[key]; !ok {
		return "", errors.New("no such key")
	}
	return "https://files.test/" + key, nil
}

type sentMail struct {
	To, Subject, CTA string
}

type fakeMail struct {
	sent []sentMail
}

func (m *fakeMail) SendMailToNotifyUser(to, subject, _, _, ctaURL string) error {
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, CTA: ctaURL})
	return nil
}

func newMemoryOrders() OrderStore {
	return NewMemoryOrderStore(mem.NewOrderTokens(), time.Hour)
}

var testLogger = zap.NewNop()
