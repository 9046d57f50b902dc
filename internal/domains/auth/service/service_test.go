package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"orzu/config"
	"orzu/infras/jwt"
	jwtMocks "orzu/infras/jwt/mocks"
	"orzu/infras/otel/mocks"
	"orzu/internal/domains/auth/model/dto"
	"orzu/internal/domains/auth/service"
	historyMocks "orzu/internal/domains/history/mocks"
	userMocks "orzu/internal/domains/user/mocks"
	userModel "orzu/internal/domains/user/model"
	"orzu/shared/constant"
	gModel "orzu/shared/model"
	"orzu/shared/timezone"
)

// bcrypt hash of the literal string "password".
const passwordHash = "$2a$10$92IXUNpkjO0rOQ5byMi.Ye4oKoEa3Ro9llC/.og/at2.uheWG/igi"

func validUser() userModel.User {
	return userModel.User{
		ID:       "user-id-123",
		Username: "frontdesk",
		Password: passwordHash,
		Role:     constant.RoleOperator,
		FullName: stringPtr("Front Desk"),
		Active:   true,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  "system",
			ModifiedBy: "system",
		},
	}
}

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.LoginRequest
		setupMock func(userRepo *userMocks.MockUser, jwtSvc *jwtMocks.MockJWT, history *historyMocks.MockHistoryService)
		wantErr   bool
	}{
		{
			name: "successful login",
			req: dto.LoginRequest{
				Username: "frontdesk",
				Password: "password",
			},
			setupMock: func(userRepo *userMocks.MockUser, jwtSvc *jwtMocks.MockJWT, history *historyMocks.MockHistoryService) {
				user := validUser()

				userRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(user, nil)

				jwtSvc.EXPECT().
					GenerateTokenPair(user.ID, user.Username, user.Role).
					Return(&jwt.TokenPair{
						AccessToken:  "access-token",
						RefreshToken: "refresh-token",
					}, nil)

				userRepo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				history.EXPECT().Record(gomock.Any(), gomock.Any())
			},
			wantErr: false,
		},
		{
			name: "unknown username",
			req: dto.LoginRequest{
				Username: "nobody",
				Password: "password",
			},
			setupMock: func(userRepo *userMocks.MockUser, _ *jwtMocks.MockJWT, _ *historyMocks.MockHistoryService) {
				userRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(userModel.User{}, nil)
			},
			wantErr: true,
		},
		{
			name: "wrong password",
			req: dto.LoginRequest{
				Username: "frontdesk",
				Password: "wrongpassword",
			},
			setupMock: func(userRepo *userMocks.MockUser, _ *jwtMocks.MockJWT, _ *historyMocks.MockHistoryService) {
				userRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(validUser(), nil)
			},
			wantErr: true,
		},
		{
			name: "inactive user",
			req: dto.LoginRequest{
				Username: "frontdesk",
				Password: "password",
			},
			setupMock: func(userRepo *userMocks.MockUser, _ *jwtMocks.MockJWT, _ *historyMocks.MockHistoryService) {
				inactiveUser := validUser()
				inactiveUser.Active = false

				userRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(inactiveUser, nil)
			},
			wantErr: true,
		},
		{
			name: "repository error",
			req: dto.LoginRequest{
				Username: "frontdesk",
				Password: "password",
			},
			setupMock: func(userRepo *userMocks.MockUser, _ *jwtMocks.MockJWT, _ *historyMocks.MockHistoryService) {
				userRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(userModel.User{}, errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockUserRepo := userMocks.NewMockUser(ctrl)
			mockJWT := jwtMocks.NewMockJWT(ctrl)
			mockHistory := historyMocks.NewMockHistoryService(ctrl)

			svc := service.New(mockUserRepo, &config.Config{}, mocks.NewOtel(), mockJWT, mockHistory)

			tt.setupMock(mockUserRepo, mockJWT, mockHistory)

			res, err := svc.Login(context.Background(), tt.req)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "access-token", res.AccessToken)
				assert.Equal(t, "frontdesk", res.Username)
				assert.Equal(t, constant.RoleOperator, res.Role)
			}
		})
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUserRepo := userMocks.NewMockUser(ctrl)
	mockJWT := jwtMocks.NewMockJWT(ctrl)
	mockHistory := historyMocks.NewMockHistoryService(ctrl)

	svc := service.New(mockUserRepo, &config.Config{}, mocks.NewOtel(), mockJWT, mockHistory)

	mockJWT.EXPECT().
		RefreshTokens("valid-refresh-token").
		Return(&jwt.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}, nil)

	res, err := svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: "valid-refresh-token"})

	assert.NoError(t, err)
	assert.Equal(t, "new-access", res.AccessToken)

	mockJWT.EXPECT().
		RefreshTokens("expired-token").
		Return(nil, errors.New("token expired"))

	_, err = svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: "expired-token"})

	assert.Error(t, err)
}

func TestAuthService_ChangePassword(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.ChangePasswordRequest
		setupMock func(userRepo *userMocks.MockUser)
		wantErr   bool
	}{
		{
			name: "successful change",
			req: dto.ChangePasswordRequest{
				CurrentPassword: "password",
				NewPassword:     "newlongpassword",
			},
			setupMock: func(userRepo *userMocks.MockUser) {
				userRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(validUser(), nil)

				userRepo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
			wantErr: false,
		},
		{
			name: "wrong current password",
			req: dto.ChangePasswordRequest{
				CurrentPassword: "nottheone",
				NewPassword:     "newlongpassword",
			},
			setupMock: func(userRepo *userMocks.MockUser) {
				userRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(validUser(), nil)
			},
			wantErr: true,
		},
		{
			name: "user not found",
			req: dto.ChangePasswordRequest{
				CurrentPassword: "password",
				NewPassword:     "newlongpassword",
			},
			setupMock: func(userRepo *userMocks.MockUser) {
				userRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(userModel.User{}, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockUserRepo := userMocks.NewMockUser(ctrl)
			mockJWT := jwtMocks.NewMockJWT(ctrl)
			mockHistory := historyMocks.NewMockHistoryService(ctrl)

			svc := service.New(mockUserRepo, &config.Config{}, mocks.NewOtel(), mockJWT, mockHistory)

			tt.setupMock(mockUserRepo)

			ctx := context.WithValue(context.Background(), constant.ContextKeyUsername, "frontdesk")
			err := svc.ChangePassword(ctx, tt.req, "user-id-123")

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func stringPtr(s string) *string {
	return &s
}
