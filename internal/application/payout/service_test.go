package payout

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/agrolease/agrolease/internal/apperr"
	"github.com/agrolease/agrolease/internal/application/actor"
	"github.com/agrolease/agrolease/internal/application/policy"
	"github.com/agrolease/agrolease/internal/domain/audit"
	"github.com/agrolease/agrolease/internal/domain/investment"
	invmocks "github.com/agrolease/agrolease/internal/domain/investment/mocks"
	"github.com/agrolease/agrolease/internal/domain/lease"
	leasemocks "github.com/agrolease/agrolease/internal/domain/lease/mocks"
	"github.com/agrolease/agrolease/internal/domain/notify"
	domain "github.com/agrolease/agrolease/internal/domain/payout"
	"github.com/agrolease/agrolease/internal/domain/payout/mocks"
)

type auditorStub struct{}

func (auditorStub) Log(context.Context, *audit.AuditEntry) {}

func newTestService(t *testing.T, repo domain.Repository, leaseRepo lease.Repository, invRepo investment.Repository, expr string) *Service {
	t.Helper()
	engine, err := policy.NewEngine(expr)
	require.NoError(t, err)
	return NewService(repo, leaseRepo, invRepo, auditorStub{}, engine, notify.NopHub{}, zerolog.Nop())
}

func activeLease(owner uuid.UUID) *lease.Lease {
	return &lease.Lease{
		LeaseID:       uuid.New(),
		LandID:        uuid.New(),
		FarmerID:      uuid.New(),
		OwnerID:       owner,
		PricePerMonth: 5000,
		TotalPayments: 12,
		PaymentsMade:  3,
		Status:        lease.StatusActive,
	}
}

func TestRequestLeaseRent(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	leaseRepo := leasemocks.NewMockRepository(ctrl)
	svc := newTestService(t, repo, leaseRepo, &invmocks.MockRepository{}, "")

	owner := actor.Actor{UserID: uuid.New(), Username: "olu", Role: "LANDOWNER"}
	ls := activeLease(owner.UserID)

	leaseRepo.EXPECT().GetByID(gomock.Any(), ls.LeaseID).Return(ls, nil)
	repo.EXPECT().HasPending(gomock.Any(), domain.KindLeaseRent, ls.LeaseID, owner.UserID).Return(false, nil)
	repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	r, err := svc.RequestLeaseRent(context.Background(), ls.LeaseID, owner, CreateInput{PayoutMethodID: "pm-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, r.Status)
	assert.Equal(t, domain.KindLeaseRent, r.Kind)
	assert.Equal(t, ls.PricePerMonth, r.Amount)
	assert.False(t, r.FlaggedForReview)
}

func TestRequestLeaseRentDuplicatePending(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	leaseRepo := leasemocks.NewMockRepository(ctrl)
	svc := newTestService(t, repo, leaseRepo, &invmocks.MockRepository{}, "")

	owner := actor.Actor{UserID: uuid.New(), Username: "olu", Role: "LANDOWNER"}
	ls := activeLease(owner.UserID)

	leaseRepo.EXPECT().GetByID(gomock.Any(), ls.LeaseID).Return(ls, nil)
	repo.EXPECT().HasPending(gomock.Any(), domain.KindLeaseRent, ls.LeaseID, owner.UserID).Return(true, nil)

	_, err := svc.RequestLeaseRent(context.Background(), ls.LeaseID, owner, CreateInput{PayoutMethodID: "pm-1"})
	assert.ErrorIs(t, err, apperr.ErrDuplicatePending)
}

func TestRequestLeaseRentNotOwner(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	leaseRepo := leasemocks.NewMockRepository(ctrl)
	svc := newTestService(t, repo, leaseRepo, &invmocks.MockRepository{}, "")

	ls := activeLease(uuid.New())
	leaseRepo.EXPECT().GetByID(gomock.Any(), ls.LeaseID).Return(ls, nil)

	stranger := actor.Actor{UserID: uuid.New(), Username: "eve", Role: "LANDOWNER"}
	_, err := svc.RequestLeaseRent(context.Background(), ls.LeaseID, stranger, CreateInput{PayoutMethodID: "pm-1"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestRequestLeaseRentAllPaymentsComplete(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	leaseRepo := leasemocks.NewMockRepository(ctrl)
	svc := newTestService(t, repo, leaseRepo, &invmocks.MockRepository{}, "")

	owner := actor.Actor{UserID: uuid.New(), Username: "olu", Role: "LANDOWNER"}
	ls := activeLease(owner.UserID)
	ls.PaymentsMade = ls.TotalPayments
	ls.Status = lease.StatusCompleted
	leaseRepo.EXPECT().GetByID(gomock.Any(), ls.LeaseID).Return(ls, nil)

	_, err := svc.RequestLeaseRent(context.Background(), ls.LeaseID, owner, CreateInput{PayoutMethodID: "pm-1"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRequestLeaseRentPolicyFlagging(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	leaseRepo := leasemocks.NewMockRepository(ctrl)
	svc := newTestService(t, repo, leaseRepo, &invmocks.MockRepository{}, "amount > 100000")

	owner := actor.Actor{UserID: uuid.New(), Username: "olu", Role: "LANDOWNER"}
	ls := activeLease(owner.UserID)

	leaseRepo.EXPECT().GetByID(gomock.Any(), ls.LeaseID).Return(ls, nil)
	repo.EXPECT().HasPending(gomock.Any(), domain.KindLeaseRent, ls.LeaseID, owner.UserID).Return(false, nil)
	repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	amount := int64(250000)
	r, err := svc.RequestLeaseRent(context.Background(), ls.LeaseID, owner, CreateInput{PayoutMethodID: "pm-1", Amount: &amount})
	require.NoError(t, err)
	assert.True(t, r.FlaggedForReview)
}

func TestRequestInvestmentReturn(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	leaseRepo := leasemocks.NewMockRepository(ctrl)
	invRepo := &invmocks.MockRepository{}
	svc := newTestService(t, repo, leaseRepo, invRepo, "")

	investor := actor.Actor{UserID: uuid.New(), Username: "ada", Role: "INVESTOR"}
	inv := &investment.Investment{
		InvestmentID: uuid.New(),
		InvestorID:   investor.UserID,
		LeaseID:      uuid.New(),
		Amount:       80000,
		Status:       investment.StatusActive,
	}
	invRepo.On("GetByID", mock.Anything, inv.InvestmentID).Return(inv, nil)
	repo.EXPECT().HasPending(gomock.Any(), domain.KindInvestmentReturn, inv.InvestmentID, investor.UserID).Return(false, nil)
	repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	r, err := svc.RequestInvestmentReturn(context.Background(), inv.InvestmentID, investor, CreateInput{PayoutMethodID: "pm-9"})
	require.NoError(t, err)
	assert.Equal(t, domain.KindInvestmentReturn, r.Kind)
	assert.Equal(t, inv.Amount, r.Amount)
}

func TestReviewApprove(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	leaseRepo := leasemocks.NewMockRepository(ctrl)
	svc := newTestService(t, repo, leaseRepo, &invmocks.MockRepository{}, "")

	admin := actor.Actor{UserID: uuid.New(), Username: "root", Role: "ADMIN"}
	requestID := uuid.New()
	pending := &domain.Request{RequestID: requestID, Kind: domain.KindLeaseRent, Status: domain.StatusPending, RequesterID: uuid.New()}
	approved := &domain.Request{RequestID: requestID, Kind: domain.KindLeaseRent, Status: domain.StatusApproved, RequesterID: pending.RequesterID}

	repo.EXPECT().GetByID(gomock.Any(), requestID).Return(pending, nil)
	repo.EXPECT().UpdateStatus(gomock.Any(), requestID, domain.StatusPending, gomock.Any(), gomock.Any()).Return(nil)
	repo.EXPECT().GetByID(gomock.Any(), requestID).Return(approved, nil)

	r, err := svc.Review(context.Background(), requestID, admin, ReviewInput{Status: domain.StatusApproved})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, r.Status)
}

func TestReviewMarkPaid(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	leaseRepo := leasemocks.NewMockRepository(ctrl)
	svc := newTestService(t, repo, leaseRepo, &invmocks.MockRepository{}, "")

	admin := actor.Actor{UserID: uuid.New(), Username: "root", Role: "ADMIN"}
	requestID := uuid.New()
	leaseID := uuid.New()
	approved := &domain.Request{RequestID: requestID, Kind: domain.KindLeaseRent, SourceID: leaseID, Status: domain.StatusApproved, RequesterID: uuid.New()}
	paid := &domain.Request{RequestID: requestID, Kind: domain.KindLeaseRent, SourceID: leaseID, Status: domain.StatusPaid, RequesterID: approved.RequesterID}

	repo.EXPECT().GetByID(gomock.Any(), requestID).Return(approved, nil)
	repo.EXPECT().MarkPaid(gomock.Any(), requestID, gomock.Any(), gomock.Any()).
		Return(&domain.PaidResult{PaymentsMade: 12, TotalPayments: 12, LeaseCompleted: true}, nil)
	repo.EXPECT().GetByID(gomock.Any(), requestID).Return(paid, nil)

	ref := "tx-123"
	r, err := svc.Review(context.Background(), requestID, admin, ReviewInput{Status: domain.StatusPaid, TransactionRef: &ref})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, r.Status)
}

func TestReviewTerminalRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	leaseRepo := leasemocks.NewMockRepository(ctrl)
	svc := newTestService(t, repo, leaseRepo, &invmocks.MockRepository{}, "")

	admin := actor.Actor{UserID: uuid.New(), Username: "root", Role: "ADMIN"}
	requestID := uuid.New()
	paid := &domain.Request{RequestID: requestID, Kind: domain.KindLeaseRent, Status: domain.StatusPaid, RequesterID: uuid.New()}
	repo.EXPECT().GetByID(gomock.Any(), requestID).Return(paid, nil)

	_, err := svc.Review(context.Background(), requestID, admin, ReviewInput{Status: domain.StatusApproved})
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
}

func TestReviewConflictLostRace(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	leaseRepo := leasemocks.NewMockRepository(ctrl)
	svc := newTestService(t, repo, leaseRepo, &invmocks.MockRepository{}, "")

	admin := actor.Actor{UserID: uuid.New(), Username: "root", Role: "ADMIN"}
	requestID := uuid.New()
	pending := &domain.Request{RequestID: requestID, Kind: domain.KindLeaseRent, Status: domain.StatusPending, RequesterID: uuid.New()}

	repo.EXPECT().GetByID(gomock.Any(), requestID).Return(pending, nil)
	repo.EXPECT().UpdateStatus(gomock.Any(), requestID, domain.StatusPending, gomock.Any(), gomock.Any()).Return(apperr.ErrConflict)

	_, err := svc.Review(context.Background(), requestID, admin, ReviewInput{Status: domain.StatusRejected})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestCancelOnlyRequester(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	leaseRepo := leasemocks.NewMockRepository(ctrl)
	svc := newTestService(t, repo, leaseRepo, &invmocks.MockRepository{}, "")

	requestID := uuid.New()
	pending := &domain.Request{RequestID: requestID, Kind: domain.KindLeaseRent, Status: domain.StatusPending, RequesterID: uuid.New()}
	repo.EXPECT().GetByID(gomock.Any(), requestID).Return(pending, nil)

	stranger := actor.Actor{UserID: uuid.New(), Username: "eve", Role: "FARMER"}
	_, err := svc.Cancel(context.Background(), requestID, stranger)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestGetByIDNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	leaseRepo := leasemocks.NewMockRepository(ctrl)
	svc := newTestService(t, repo, leaseRepo, &invmocks.MockRepository{}, "")

	requestID := uuid.New()
	repo.EXPECT().GetByID(gomock.Any(), requestID).Return(nil, nil)

	admin := actor.Actor{UserID: uuid.New(), Username: "root", Role: "ADMIN"}
	_, err := svc.GetByID(context.Background(), requestID, admin)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListScopesToRequester(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	leaseRepo := leasemocks.NewMockRepository(ctrl)
	svc := newTestService(t, repo, leaseRepo, &invmocks.MockRepository{}, "")

	caller := actor.Actor{UserID: uuid.New(), Username: "olu", Role: "LANDOWNER"}
	repo.EXPECT().List(gomock.Any(), gomock.Any(), 50, 0).
		DoAndReturn(func(_ context.Context, filter domain.Filter, _, _ int) ([]*domain.Request, error) {
			if filter.RequesterID == nil || *filter.RequesterID != caller.UserID {
				return nil, errors.New("filter not scoped to caller")
			}
			return []*domain.Request{}, nil
		})

	_, err := svc.List(context.Background(), domain.Filter{}, caller, 0, 0)
	require.NoError(t, err)
}
