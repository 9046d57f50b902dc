package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"orzu/config"
	"orzu/infras/otel/mocks"
	historyMocks "orzu/internal/domains/history/mocks"
	userMocks "orzu/internal/domains/user/mocks"
	"orzu/internal/domains/user/model"
	"orzu/internal/domains/user/model/dto"
	"orzu/internal/domains/user/service"
	cacheMocks "orzu/shared/cache/mocks"
	"orzu/shared/constant"
	"orzu/shared/failure"
)

func contextWithRole(role string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-id")
	ctx = context.WithValue(ctx, constant.ContextKeyUsername, "admin")

	return context.WithValue(ctx, constant.ContextKeyUserRole, role)
}

type userServiceMocks struct {
	repo    *userMocks.MockUser
	cache   *cacheMocks.MockRedisCache
	history *historyMocks.MockHistoryService
}

func newUserService(ctrl *gomock.Controller) (service.User, userServiceMocks) {
	m := userServiceMocks{
		repo:    userMocks.NewMockUser(ctrl),
		cache:   cacheMocks.NewMockRedisCache(ctrl),
		history: historyMocks.NewMockHistoryService(ctrl),
	}

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	return service.New(m.repo, cfg, m.cache, mocks.NewOtel(), m.history), m
}

func TestUserService_Create(t *testing.T) {
	tests := []struct {
		name      string
		role      string
		req       dto.CreateUserRequest
		setupMock func(m userServiceMocks)
		wantErr   bool
		wantCode  int
		wantRole  string
	}{
		{
			name: "administrator creates a user",
			role: constant.RoleAdministrator,
			req: dto.CreateUserRequest{
				Username: "frontdesk",
				Password: "longenoughpass",
				Role:     constant.RoleOperator,
			},
			setupMock: func(m userServiceMocks) {
				m.repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)

				m.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(nil)

				m.history.EXPECT().Record(gomock.Any(), gomock.Any())

				m.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
			},
			wantErr:  false,
			wantRole: constant.RoleOperator,
		},
		{
			name: "role defaults to viewer",
			role: constant.RoleAdministrator,
			req: dto.CreateUserRequest{
				Username: "reception",
				Password: "longenoughpass",
			},
			setupMock: func(m userServiceMocks) {
				m.repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)

				m.repo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(nil)

				m.history.EXPECT().Record(gomock.Any(), gomock.Any())

				m.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
			},
			wantErr:  false,
			wantRole: constant.RoleViewer,
		},
		{
			name: "duplicate username",
			role: constant.RoleAdministrator,
			req: dto.CreateUserRequest{
				Username: "frontdesk",
				Password: "longenoughpass",
			},
			setupMock: func(m userServiceMocks) {
				m.repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)
			},
			wantErr:  true,
			wantCode: http.StatusConflict,
		},
		{
			name: "manager is denied before any store access",
			role: constant.RoleManager,
			req: dto.CreateUserRequest{
				Username: "frontdesk",
				Password: "longenoughpass",
			},
			setupMock: func(userServiceMocks) {},
			wantErr:   true,
			wantCode:  http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, m := newUserService(ctrl)
			tt.setupMock(m)

			res, err := svc.Create(contextWithRole(tt.role), tt.req)

			if tt.wantErr {
				assert.Error(t, err)

				if tt.wantCode != 0 {
					assert.Equal(t, tt.wantCode, failure.GetCode(err))
				}
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, res.ID)
				assert.Equal(t, tt.wantRole, res.Role)
			}
		})
	}
}

func TestUserService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, m := newUserService(ctrl)

	m.cache.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("cache miss"))

	m.repo.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(model.User{ID: "user-id", Username: "frontdesk", Role: constant.RoleOperator}, nil)

	m.cache.EXPECT().
		Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).
		AnyTimes()

	res, err := svc.Get(contextWithRole(constant.RoleAdministrator), "user-id")

	assert.NoError(t, err)
	assert.Equal(t, "frontdesk", res.Username)
}

func TestUserService_GetDenied(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _ := newUserService(ctrl)

	_, err := svc.Get(contextWithRole(constant.RoleOperator), "user-id")

	assert.Error(t, err)
	assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
}

func TestUserService_Update(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.UpdateUserRequest
		setupMock func(m userServiceMocks)
		wantErr   bool
		wantCode  int
	}{
		{
			name: "role change",
			req:  dto.UpdateUserRequest{Role: ptr(constant.RoleManager)},
			setupMock: func(m userServiceMocks) {
				m.repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)

				m.repo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)

				m.history.EXPECT().Record(gomock.Any(), gomock.Any())

				m.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
				m.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
			},
			wantErr: false,
		},
		{
			name:      "empty update rejected",
			req:       dto.UpdateUserRequest{},
			setupMock: func(userServiceMocks) {},
			wantErr:   true,
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "user not found",
			req:  dto.UpdateUserRequest{Active: ptr(false)},
			setupMock: func(m userServiceMocks) {
				m.repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)
			},
			wantErr:  true,
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, m := newUserService(ctrl)
			tt.setupMock(m)

			err := svc.Update(contextWithRole(constant.RoleAdministrator), tt.req, "user-id")

			if tt.wantErr {
				assert.Error(t, err)

				if tt.wantCode != 0 {
					assert.Equal(t, tt.wantCode, failure.GetCode(err))
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUserService_Delete(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		setupMock func(m userServiceMocks)
		wantErr   bool
		wantCode  int
	}{
		{
			name: "administrator deletes another user",
			id:   "user-id",
			setupMock: func(m userServiceMocks) {
				m.repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)

				m.repo.EXPECT().
					Delete(gomock.Any(), gomock.Any()).
					Return(nil)

				m.history.EXPECT().Record(gomock.Any(), gomock.Any())

				m.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
				m.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
			},
			wantErr: false,
		},
		{
			name:      "self deletion rejected",
			id:        "admin-id",
			setupMock: func(userServiceMocks) {},
			wantErr:   true,
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "user not found",
			id:   "user-id",
			setupMock: func(m userServiceMocks) {
				m.repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)
			},
			wantErr:  true,
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc, m := newUserService(ctrl)
			tt.setupMock(m)

			err := svc.Delete(contextWithRole(constant.RoleAdministrator), tt.id)

			if tt.wantErr {
				assert.Error(t, err)

				if tt.wantCode != 0 {
					assert.Equal(t, tt.wantCode, failure.GetCode(err))
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func ptr[T any](v T) *T {
	return &v
}
