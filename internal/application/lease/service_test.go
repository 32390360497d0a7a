package lease

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
	"github.com/agrolease/agrolease/internal/domain/land"
	landmocks "github.com/agrolease/agrolease/internal/domain/land/mocks"
	domain "github.com/agrolease/agrolease/internal/domain/lease"
	"github.com/agrolease/agrolease/internal/domain/lease/mocks"
	"github.com/agrolease/agrolease/internal/domain/notify"
)

type auditorStub struct{}

func (auditorStub) Log(context.Context, *audit.AuditEntry) {}

func availableLand(owner uuid.UUID) *land.Land {
	return &land.Land{
		LandID:    uuid.New(),
		OwnerID:   owner,
		Title:     "riverside plot",
		Location:  "Ogun",
		SizeAcres: 4.5,
		Status:    land.StatusAvailable,
	}
}

func TestRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	landRepo := &landmocks.MockRepository{}
	svc := NewService(repo, landRepo, auditorStub{}, notify.NopHub{}, zerolog.Nop())

	owner := uuid.New()
	parcel := availableLand(owner)
	farmer := actor.Actor{UserID: uuid.New(), Username: "tunde", Role: "FARMER"}

	landRepo.On("GetByID", mock.Anything, parcel.LandID).Return(parcel, nil)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	ls, err := svc.Request(context.Background(), parcel.LandID, farmer, RequestInput{DurationMonths: 12, PricePerMonth: 5000})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, ls.Status)
	assert.Equal(t, owner, ls.OwnerID)
	assert.Equal(t, 12, ls.TotalPayments)
	assert.Equal(t, 0, ls.PaymentsMade)
}

func TestRequestLandNotAvailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	landRepo := &landmocks.MockRepository{}
	svc := NewService(repo, landRepo, auditorStub{}, notify.NopHub{}, zerolog.Nop())

	parcel := availableLand(uuid.New())
	parcel.Status = land.StatusLeased
	landRepo.On("GetByID", mock.Anything, parcel.LandID).Return(parcel, nil)

	farmer := actor.Actor{UserID: uuid.New(), Username: "tunde", Role: "FARMER"}
	_, err := svc.Request(context.Background(), parcel.LandID, farmer, RequestInput{DurationMonths: 12, PricePerMonth: 5000})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRequestInvalidInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	landRepo := &landmocks.MockRepository{}
	svc := NewService(repo, landRepo, auditorStub{}, notify.NopHub{}, zerolog.Nop())

	parcel := availableLand(uuid.New())
	landRepo.On("GetByID", mock.Anything, parcel.LandID).Return(parcel, nil)

	farmer := actor.Actor{UserID: uuid.New(), Username: "tunde", Role: "FARMER"}
	_, err := svc.Request(context.Background(), parcel.LandID, farmer, RequestInput{DurationMonths: 0, PricePerMonth: 5000})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Request(context.Background(), parcel.LandID, farmer, RequestInput{DurationMonths: 6, PricePerMonth: 0})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestApprove(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	landRepo := &landmocks.MockRepository{}
	svc := NewService(repo, landRepo, auditorStub{}, notify.NopHub{}, zerolog.Nop())

	owner := actor.Actor{UserID: uuid.New(), Username: "olu", Role: "LANDOWNER"}
	ls := &domain.Lease{
		LeaseID:  uuid.New(),
		LandID:   uuid.New(),
		FarmerID: uuid.New(),
		OwnerID:  owner.UserID,
		Status:   domain.StatusPending,
	}
	repo.EXPECT().GetByID(gomock.Any(), ls.LeaseID).Return(ls, nil)
	repo.EXPECT().UpdateStatus(gomock.Any(), ls.LeaseID, domain.StatusPending, domain.StatusApproved).Return(true, nil)
	landRepo.On("UpdateStatus", mock.Anything, ls.LandID, land.StatusAvailable, land.StatusLeased).Return(true, nil)

	got, err := svc.Approve(context.Background(), ls.LeaseID, owner)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, got.Status)
	landRepo.AssertExpectations(t)
}

func TestApproveNotOwner(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	svc := NewService(repo, &landmocks.MockRepository{}, auditorStub{}, notify.NopHub{}, zerolog.Nop())

	ls := &domain.Lease{LeaseID: uuid.New(), OwnerID: uuid.New(), Status: domain.StatusPending}
	repo.EXPECT().GetByID(gomock.Any(), ls.LeaseID).Return(ls, nil)

	stranger := actor.Actor{UserID: uuid.New(), Username: "eve", Role: "LANDOWNER"}
	_, err := svc.Approve(context.Background(), ls.LeaseID, stranger)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestApproveAlreadyDecided(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	svc := NewService(repo, &landmocks.MockRepository{}, auditorStub{}, notify.NopHub{}, zerolog.Nop())

	owner := actor.Actor{UserID: uuid.New(), Username: "olu", Role: "LANDOWNER"}
	ls := &domain.Lease{LeaseID: uuid.New(), OwnerID: owner.UserID, Status: domain.StatusRejected}
	repo.EXPECT().GetByID(gomock.Any(), ls.LeaseID).Return(ls, nil)

	_, err := svc.Approve(context.Background(), ls.LeaseID, owner)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
}

func TestApproveLostRace(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	svc := NewService(repo, &landmocks.MockRepository{}, auditorStub{}, notify.NopHub{}, zerolog.Nop())

	owner := actor.Actor{UserID: uuid.New(), Username: "olu", Role: "LANDOWNER"}
	ls := &domain.Lease{LeaseID: uuid.New(), LandID: uuid.New(), OwnerID: owner.UserID, Status: domain.StatusPending}
	repo.EXPECT().GetByID(gomock.Any(), ls.LeaseID).Return(ls, nil)
	repo.EXPECT().UpdateStatus(gomock.Any(), ls.LeaseID, domain.StatusPending, domain.StatusApproved).Return(false, nil)

	_, err := svc.Approve(context.Background(), ls.LeaseID, owner)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestDeleteOnlyPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	svc := NewService(repo, &landmocks.MockRepository{}, auditorStub{}, notify.NopHub{}, zerolog.Nop())

	farmer := actor.Actor{UserID: uuid.New(), Username: "tunde", Role: "FARMER"}
	ls := &domain.Lease{LeaseID: uuid.New(), FarmerID: farmer.UserID, OwnerID: uuid.New(), Status: domain.StatusActive}
	repo.EXPECT().GetByID(gomock.Any(), ls.LeaseID).Return(ls, nil)

	err := svc.Delete(context.Background(), ls.LeaseID, farmer)
	assert.ErrorIs(t, err, apperr.ErrInvalidTransition)
}

func TestGetByIDRestrictedToParties(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	svc := NewService(repo, &landmocks.MockRepository{}, auditorStub{}, notify.NopHub{}, zerolog.Nop())

	ls := &domain.Lease{LeaseID: uuid.New(), FarmerID: uuid.New(), OwnerID: uuid.New(), Status: domain.StatusActive}
	repo.EXPECT().GetByID(gomock.Any(), ls.LeaseID).Return(ls, nil).Times(2)

	stranger := actor.Actor{UserID: uuid.New(), Username: "eve", Role: "FARMER"}
	_, err := svc.GetByID(context.Background(), ls.LeaseID, stranger)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	admin := actor.Actor{UserID: uuid.New(), Username: "root", Role: "ADMIN"}
	got, err := svc.GetByID(context.Background(), ls.LeaseID, admin)
	require.NoError(t, err)
	assert.Equal(t, ls.LeaseID, got.LeaseID)
}
