package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/quillbooks/quillbooks_backend/internal/apperrors"
	"github.com/quillbooks/quillbooks_backend/internal/core/domain"
	portssvc "github.com/quillbooks/quillbooks_backend/internal/core/ports/services"
	"github.com/quillbooks/quillbooks_backend/internal/core/services"
	"github.com/quillbooks/quillbooks_backend/internal/dto"
)

type AccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockLedgerRepo  *MockLedgerRepository
	service         portssvc.AccountSvc
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.service = services.NewAccountService(suite.mockAccountRepo, suite.mockLedgerRepo)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	creatorUserID := uuid.NewString()
	req := dto.CreateAccountRequest{
		Code:        "1000",
		Name:        "Cash",
		AccountType: "ASSET",
		IsCash:      true,
	}

	suite.mockAccountRepo.On("FindAccountByCode", ctx, "1000").
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).
		Return(nil).Once()

	created, err := suite.service.CreateAccount(ctx, req, creatorUserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.NotEmpty(created.AccountID)
	suite.Equal(domain.Asset, created.AccountType)
	suite.True(created.IsActive)
	suite.True(created.IsCash)
	suite.Equal(creatorUserID, created.CreatedBy)
	suite.WithinDuration(time.Now(), created.CreatedAt, time.Second)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_InvalidType() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{Code: "9000", Name: "Wat", AccountType: "GOODWILL"}

	_, err := suite.service.CreateAccount(ctx, req, "user-1")

	suite.ErrorIs(err, services.ErrInvalidAccountType)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestCreateAccount_CodeTaken() {
	ctx := context.Background()
	existing := &domain.Account{AccountID: "other", Code: "1000"}
	suite.mockAccountRepo.On("FindAccountByCode", ctx, "1000").Return(existing, nil).Once()

	req := dto.CreateAccountRequest{Code: "1000", Name: "Cash", AccountType: "ASSET"}
	_, err := suite.service.CreateAccount(ctx, req, "user-1")

	suite.ErrorIs(err, services.ErrAccountCodeTaken)
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_Success() {
	ctx := context.Background()

	suite.mockLedgerRepo.On("BalanceOf", ctx, "acc-1", (*time.Time)(nil)).
		Return(domain.ZeroAmount, nil).Once()
	suite.mockAccountRepo.On("DeactivateAccount", ctx, "acc-1", "user-1", mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	err := suite.service.DeactivateAccount(ctx, "acc-1", "user-1")

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_NonZeroBalance() {
	ctx := context.Background()

	suite.mockLedgerRepo.On("BalanceOf", ctx, "acc-1", (*time.Time)(nil)).
		Return(domain.MustParseAmount("12.50"), nil).Once()

	err := suite.service.DeactivateAccount(ctx, "acc-1", "user-1")

	suite.ErrorIs(err, services.ErrAccountHasBalance)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "DeactivateAccount",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_NotFound() {
	ctx := context.Background()
	suite.mockLedgerRepo.On("BalanceOf", ctx, "ghost", (*time.Time)(nil)).
		Return(domain.ZeroAmount, apperrors.ErrNotFound).Once()

	err := suite.service.DeactivateAccount(ctx, "ghost", "user-1")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
