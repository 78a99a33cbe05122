package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/quillbooks/quillbooks_backend/internal/apperrors"
	"github.com/quillbooks/quillbooks_backend/internal/core/domain"
	portssvc "github.com/quillbooks/quillbooks_backend/internal/core/ports/services"
	"github.com/quillbooks/quillbooks_backend/internal/core/services"
	"github.com/quillbooks/quillbooks_backend/internal/dto"
	"github.com/quillbooks/quillbooks_backend/internal/utils"
)

type UserServiceTestSuite struct {
	suite.Suite
	mockRepo *MockUserRepository
	service  portssvc.UserSvc
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockUserRepository)
	suite.service = services.NewUserService(suite.mockRepo)
}

func (suite *UserServiceTestSuite) TestRegister_Success() {
	ctx := context.Background()
	req := dto.RegisterRequest{Username: "amara", Name: "Amara O.", Password: "s3cret-pass"}

	suite.mockRepo.On("FindUserByUsername", ctx, "amara").
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveUser", ctx, mock.AnythingOfType("domain.User")).
		Run(func(args mock.Arguments) {
			user := args.Get(1).(domain.User)
			suite.NotEqual("s3cret-pass", user.PasswordHash)
			suite.True(utils.CheckPasswordHash("s3cret-pass", user.PasswordHash))
		}).
		Return(nil).Once()

	user, err := suite.service.Register(ctx, req)

	suite.Require().NoError(err)
	suite.NotEmpty(user.UserID)
	suite.Equal("amara", user.Username)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestRegister_UsernameTaken() {
	ctx := context.Background()
	existing := &domain.User{UserID: "u-1", Username: "amara"}
	suite.mockRepo.On("FindUserByUsername", ctx, "amara").Return(existing, nil).Once()

	_, err := suite.service.Register(ctx, dto.RegisterRequest{Username: "amara", Name: "x", Password: "whatever-pw"})
	suite.ErrorIs(err, services.ErrUsernameTaken)
}

func (suite *UserServiceTestSuite) TestAuthenticate_Success() {
	ctx := context.Background()
	hash, err := utils.HashPassword("correct-horse")
	suite.Require().NoError(err)
	stored := &domain.User{UserID: "u-1", Username: "amara", PasswordHash: hash}
	suite.mockRepo.On("FindUserByUsername", ctx, "amara").Return(stored, nil).Once()

	user, err := suite.service.Authenticate(ctx, "amara", "correct-horse")

	suite.Require().NoError(err)
	suite.Equal("u-1", user.UserID)
}

func (suite *UserServiceTestSuite) TestAuthenticate_WrongPassword() {
	ctx := context.Background()
	hash, err := utils.HashPassword("correct-horse")
	suite.Require().NoError(err)
	stored := &domain.User{UserID: "u-1", Username: "amara", PasswordHash: hash}
	suite.mockRepo.On("FindUserByUsername", ctx, "amara").Return(stored, nil).Once()

	_, err = suite.service.Authenticate(ctx, "amara", "battery-staple")
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *UserServiceTestSuite) TestAuthenticate_UnknownUser() {
	ctx := context.Background()
	suite.mockRepo.On("FindUserByUsername", ctx, "ghost").
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.Authenticate(ctx, "ghost", "whatever-pw")
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
