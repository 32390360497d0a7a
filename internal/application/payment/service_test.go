package payment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/agrolease/agrolease/internal/apperr"
	"github.com/agrolease/agrolease/internal/application/actor"
	"github.com/agrolease/agrolease/internal/domain/audit"
	"github.com/agrolease/agrolease/internal/domain/lease"
	leasemocks "github.com/agrolease/agrolease/internal/domain/lease/mocks"
	"github.com/agrolease/agrolease/internal/domain/notify"
	domain "github.com/agrolease/agrolease/internal/domain/payment"
	"github.com/agrolease/agrolease/internal/domain/payment/mocks"
)

type auditorStub struct{}

func (auditorStub) Log(context.Context, *audit.AuditEntry) {}

func approvedLease(farmer uuid.UUID) *lease.Lease {
	return &lease.Lease{
		LeaseID:       uuid.New(),
		LandID:        uuid.New(),
		FarmerID:      farmer,
		OwnerID:       uuid.New(),
		PricePerMonth: 5000,
		TotalPayments: 12,
		PaymentsMade:  0,
		Status:        lease.StatusApproved,
	}
}

func TestFund(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := &mocks.MockRepository{}
	leaseRepo := leasemocks.NewMockRepository(ctrl)
	svc := NewService(repo, leaseRepo, auditorStub{}, notify.NopHub{}, zerolog.Nop())

	farmer := actor.Actor{UserID: uuid.New(), Username: "tunde", Role: "FARMER"}
	ls := approvedLease(farmer.UserID)

	leaseRepo.EXPECT().GetByID(gomock.Any(), ls.LeaseID).Return(ls, nil)
	repo.On("CreateEscrow", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	p, err := svc.Fund(context.Background(), ls.LeaseID, farmer, FundInput{})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEscrow, p.Status)
	assert.Equal(t, ls.PricePerMonth, p.Amount)
	assert.Equal(t, ls.FarmerID, p.PayerID)
	assert.Equal(t, ls.OwnerID, p.PayeeID)
	repo.AssertExpectations(t)
}

func TestFundOnlyFarmer(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := &mocks.MockRepository{}
	leaseRepo := leasemocks.NewMockRepository(ctrl)
	svc := NewService(repo, leaseRepo, auditorStub{}, notify.NopHub{}, zerolog.Nop())

	ls := approvedLease(uuid.New())
	leaseRepo.EXPECT().GetByID(gomock.Any(), ls.LeaseID).Return(ls, nil)

	stranger := actor.Actor{UserID: uuid.New(), Username: "eve", Role: "FARMER"}
	_, err := svc.Fund(context.Background(), ls.LeaseID, stranger, FundInput{})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestFundLeaseNotFunded(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := &mocks.MockRepository{}
	leaseRepo := leasemocks.NewMockRepository(ctrl)
	svc := NewService(repo, leaseRepo, auditorStub{}, notify.NopHub{}, zerolog.Nop())

	farmer := actor.Actor{UserID: uuid.New(), Username: "tunde", Role: "FARMER"}
	ls := approvedLease(farmer.UserID)
	ls.Status = lease.StatusPending
	leaseRepo.EXPECT().GetByID(gomock.Any(), ls.LeaseID).Return(ls, nil)

	_, err := svc.Fund(context.Background(), ls.LeaseID, farmer, FundInput{})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestFundCounterFull(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := &mocks.MockRepository{}
	leaseRepo := leasemocks.NewMockRepository(ctrl)
	svc := NewService(repo, leaseRepo, auditorStub{}, notify.NopHub{}, zerolog.Nop())

	farmer := actor.Actor{UserID: uuid.New(), Username: "tunde", Role: "FARMER"}
	ls := approvedLease(farmer.UserID)
	ls.Status = lease.StatusActive
	ls.PaymentsMade = ls.TotalPayments
	leaseRepo.EXPECT().GetByID(gomock.Any(), ls.LeaseID).Return(ls, nil)

	_, err := svc.Fund(context.Background(), ls.LeaseID, farmer, FundInput{})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRequestRelease(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := &mocks.MockRepository{}
	leaseRepo := leasemocks.NewMockRepository(ctrl)
	svc := NewService(repo, leaseRepo, auditorStub{}, notify.NopHub{}, zerolog.Nop())

	payee := actor.Actor{UserID: uuid.New(), Username: "olu", Role: "LANDOWNER"}
	p := &domain.Payment{PaymentID: uuid.New(), PayerID: uuid.New(), PayeeID: payee.UserID, Status: domain.StatusEscrow}

	repo.On("GetByID", mock.Anything, p.PaymentID).Return(p, nil)
	repo.On("RequestRelease", mock.Anything, p.PaymentID).Return(true, nil)

	got, err := svc.RequestRelease(context.Background(), p.PaymentID, payee)
	require.NoError(t, err)
	assert.True(t, got.ReleaseRequested)
}

func TestRequestReleaseTwice(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := &mocks.MockRepository{}
	leaseRepo := leasemocks.NewMockRepository(ctrl)
	svc := NewService(repo, leaseRepo, auditorStub{}, notify.NopHub{}, zerolog.Nop())

	payee := actor.Actor{UserID: uuid.New(), Username: "olu", Role: "LANDOWNER"}
	p := &domain.Payment{PaymentID: uuid.New(), PayeeID: payee.UserID, Status: domain.StatusEscrow, ReleaseRequested: true}
	repo.On("GetByID", mock.Anything, p.PaymentID).Return(p, nil)

	_, err := svc.RequestRelease(context.Background(), p.PaymentID, payee)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
}

func TestRelease(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := &mocks.MockRepository{}
	leaseRepo := leasemocks.NewMockRepository(ctrl)
	svc := NewService(repo, leaseRepo, auditorStub{}, notify.NopHub{}, zerolog.Nop())

	admin := actor.Actor{UserID: uuid.New(), Username: "root", Role: "ADMIN"}
	paymentID := uuid.New()
	escrow := &domain.Payment{PaymentID: paymentID, PayerID: uuid.New(), PayeeID: uuid.New(), Status: domain.StatusEscrow}
	released := &domain.Payment{PaymentID: paymentID, PayerID: escrow.PayerID, PayeeID: escrow.PayeeID, Status: domain.StatusReleased}

	repo.On("GetByID", mock.Anything, paymentID).Return(escrow, nil).Once()
	repo.On("Settle", mock.Anything, paymentID, domain.StatusReleased, mock.Anything, mock.Anything).Return(nil)
	repo.On("GetByID", mock.Anything, paymentID).Return(released, nil).Once()

	got, err := svc.Release(context.Background(), paymentID, admin, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReleased, got.Status)
	repo.AssertExpectations(t)
}

func TestRefundAlreadySettled(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := &mocks.MockRepository{}
	leaseRepo := leasemocks.NewMockRepository(ctrl)
	svc := NewService(repo, leaseRepo, auditorStub{}, notify.NopHub{}, zerolog.Nop())

	admin := actor.Actor{UserID: uuid.New(), Username: "root", Role: "ADMIN"}
	p := &domain.Payment{PaymentID: uuid.New(), Status: domain.StatusReleased}
	repo.On("GetByID", mock.Anything, p.PaymentID).Return(p, nil)

	_, err := svc.Refund(context.Background(), p.PaymentID, admin, nil)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
}

func TestGetByIDRestrictedToParties(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := &mocks.MockRepository{}
	leaseRepo := leasemocks.NewMockRepository(ctrl)
	svc := NewService(repo, leaseRepo, auditorStub{}, notify.NopHub{}, zerolog.Nop())

	p := &domain.Payment{PaymentID: uuid.New(), PayerID: uuid.New(), PayeeID: uuid.New(), Status: domain.StatusEscrow}
	repo.On("GetByID", mock.Anything, p.PaymentID).Return(p, nil)

	stranger := actor.Actor{UserID: uuid.New(), Username: "eve", Role: "FARMER"}
	_, err := svc.GetByID(context.Background(), p.PaymentID, stranger)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}
