package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbm "bizdesk/internal/models/db_models"
	"bizdesk/internal/models/request_models"
	"bizdesk/pkg/utils"
)

type fakeSupportRepo struct {
	counters map[string]int64
	tickets  map[uuid.UUID]*dbm.SupportTicket
	feedback []dbm.TicketFeedback
}

func newFakeSupportRepo() *fakeSupportRepo {
	return &fakeSupportRepo{counters: map[string]int64{}, tickets: map[uuid.UUID]*dbm.SupportTicket{}}
}

func (f *fakeSupportRepo) NextTicketSeq(_ context.Context, userID string) (int64, error) {
	f.counters[userID]++
	return f.counters[userID], nil
}

func (f *fakeSupportRepo) CreateTicket(_ context.Context, t *dbm.SupportTicket) error {
	t.ID = uuid.New()
	cp := *t
	f.tickets[t.ID] = &cp
	return nil
}

func (f *fakeSupportRepo) FindTicket(_ context.Context, id uuid.UUID) (*dbm.SupportTicket, error) {
	if t, ok := f.tickets[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeSupportRepo) ListTicketsByUser(_ context.Context, userID string) ([]dbm.SupportTicket, error) {
	var out []dbm.SupportTicket
	for _, t := range f.tickets {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeSupportRepo) ListTickets(_ context.Context, status string, _, _ int) ([]dbm.SupportTicket, error) {
	var out []dbm.SupportTicket
	for _, t := range f.tickets {
		if status == "" || string(t.Status) == status {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeSupportRepo) UpdateTicketStatus(_ context.Context, id uuid.UUID, status dbm.TicketStatus) (bool, error) {
	t, ok := f.tickets[id]
	if !ok {
		return false, nil
	}
	t.Status = status
	return true, nil
}

func (f *fakeSupportRepo) AddFeedback(_ context.Context, fb *dbm.TicketFeedback) error {
	f.feedback = append(f.feedback, *fb)
	return nil
}

func (f *fakeSupportRepo) ListFeedback(_ context.Context, ticketID uuid.UUID) ([]dbm.TicketFeedback, error) {
	var out []dbm.TicketFeedback
	for _, fb := range f.feedback {
		if fb.TicketID == ticketID {
			out = append(out, fb)
		}
	}
	return out, nil
}

func TestSupport_TicketNumbersIncrementPerUser(t *testing.T) {
	repo := newFakeSupportRepo()
	users := newFakeUserRepo(dbm.User{ID: "u1", DisplayName: "John Doe", Email: "john@example.com"})
	svc := NewSupportService(repo, users, &fakeMail{}, testLogger)
	caller := Caller{UserID: "u1", Role: dbm.RoleUser}

	first, err := svc.CreateTicket(context.Background(), caller, request_models.CreateTicketRequest{Message: "help"})
	require.NoError(t, err)
	second, err := svc.CreateTicket(context.Background(), caller, request_models.CreateTicketRequest{Message: "again"})
	require.NoError(t, err)

	assert.Equal(t, "JO001", first.TicketNo)
	assert.Equal(t, "JO002", second.TicketNo)
	assert.Equal(t, dbm.TicketStatusOpen, first.Status)
}

func TestSupport_FeedbackMailsOwnerAndRespectsOwnership(t *testing.T) {
	repo := newFakeSupportRepo()
	users := newFakeUserRepo(
		dbm.User{ID: "u1", DisplayName: "John Doe", Email: "john@example.com"},
		dbm.User{ID: "adm", DisplayName: "Ada", Email: "ada@example.com", Role: dbm.RoleAdmin},
	)
	mail := &fakeMail{}
	svc := NewSupportService(repo, users, mail, testLogger)
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, Caller{UserID: "u1"}, request_models.CreateTicketRequest{Message: "help"})
	require.NoError(t, err)

	admin := Caller{UserID: "adm", Role: dbm.RoleAdmin}
	fb, err := svc.AddFeedback(ctx, admin, ticket.ID, "on it")
	require.NoError(t, err)
	assert.Equal(t, "Ada", fb.AdminName)
	require.Len(t, mail.sent, 1)
	assert.Equal(t, "john@example.com", mail.sent[0].To)

	items, err := svc.ListFeedback(ctx, Caller{UserID: "u1"}, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = svc.ListFeedback(ctx, Caller{UserID: "stranger"}, ticket.ID)
	assert.ErrorIs(t, err, utils.ErrForbidden)

	_, err = svc.AddFeedback(ctx, admin, uuid.New(), "lost")
	assert.ErrorIs(t, err, utils.ErrTicketNotFound)
}

func TestSupport_UpdateStatus(t *testing.T) {
	repo := newFakeSupportRepo()
	svc := NewSupportService(repo, newFakeUserRepo(), &fakeMail{}, testLogger)
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, Caller{UserID: "u1", Email: "x@example.com"}, request_models.CreateTicketRequest{Message: "m"})
	require.NoError(t, err)
	assert.Equal(t, "US001", ticket.TicketNo)

	require.NoError(t, svc.UpdateStatus(ctx, ticket.ID, "closed"))
	assert.Equal(t, dbm.TicketStatusClosed, repo.tickets[ticket.ID].Status)

	assert.ErrorIs(t, svc.UpdateStatus(ctx, ticket.ID, "archived"), utils.ErrInvalidTicketStatus)
	assert.ErrorIs(t, svc.UpdateStatus(ctx, uuid.New(), "open"), utils.ErrTicketNotFound)
}
