package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"orzu/infras/otel/mocks"
	historyMocks "orzu/internal/domains/history/mocks"
	"orzu/internal/domains/history/model"
	"orzu/internal/domains/history/service"
	"orzu/shared/constant"
	gDto "orzu/shared/dto"
	gModel "orzu/shared/model"
	"orzu/shared/timezone"
)

func viewerContext() context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "test-user-id")
	ctx = context.WithValue(ctx, constant.ContextKeyUsername, "test-user")

	return context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleViewer)
}

func TestHistoryService_Record(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := historyMocks.NewMockHistory(ctrl)
	mockOtel := mocks.NewOtel()

	svc := service.New(mockRepo, mockOtel)

	inserted := make(chan model.HistoryLog, 1)

	mockRepo.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, mod model.HistoryLog) error {
			inserted <- mod

			return nil
		})

	svc.Record(viewerContext(), service.Entry{
		EntityType:  model.EntityTypeBooking,
		EntityID:    "booking-id",
		Action:      model.ActionCreate,
		Changes:     map[string]string{"guest_name": "Alice"},
		Description: "created booking",
	})

	select {
	case mod := <-inserted:
		assert.Equal(t, "test-user-id", mod.UserID)
		assert.Equal(t, "test-user", mod.Username)
		assert.Equal(t, model.EntityTypeBooking, mod.EntityType)
		assert.Equal(t, model.ActionCreate, mod.Action)
		assert.JSONEq(t, `{"guest_name":"Alice"}`, string(mod.Changes))
	case <-time.After(time.Second):
		t.Fatal("expected history entry to be inserted")
	}
}

func TestHistoryService_RecordInsertFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := historyMocks.NewMockHistory(ctrl)
	mockOtel := mocks.NewOtel()

	svc := service.New(mockRepo, mockOtel)

	done := make(chan struct{})

	mockRepo.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, model.HistoryLog) error {
			close(done)

			return errors.New("database error")
		})

	// Recording never propagates errors to the caller.
	svc.Record(viewerContext(), service.Entry{
		EntityType: model.EntityTypeRoom,
		EntityID:   "room-id",
		Action:     model.ActionDelete,
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected insert attempt")
	}
}

func TestHistoryService_GetRecent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := historyMocks.NewMockHistory(ctrl)
	mockOtel := mocks.NewOtel()

	svc := service.New(mockRepo, mockOtel)

	logs := []model.HistoryLog{
		{
			ID:         "log-id",
			UserID:     "test-user-id",
			EntityType: model.EntityTypeBooking,
			EntityID:   "booking-id",
			Action:     model.ActionCreate,
			Metadata: gModel.Metadata{
				CreatedAt:  timezone.Now(),
				ModifiedAt: timezone.Now(),
			},
		},
	}

	tests := []struct {
		name      string
		ctx       context.Context
		hours     int
		setupMock func()
		wantErr   bool
		wantTotal int
	}{
		{
			name:  "successful get recent",
			ctx:   viewerContext(),
			hours: 24,
			setupMock: func() {
				mockRepo.EXPECT().
					Count(gomock.Any(), gomock.Any()).
					Return(1, nil)

				mockRepo.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(logs, nil)
			},
			wantErr:   false,
			wantTotal: 1,
		},
		{
			name:  "default window when hours not set",
			ctx:   viewerContext(),
			hours: 0,
			setupMock: func() {
				mockRepo.EXPECT().
					Count(gomock.Any(), gomock.Any()).
					Return(0, nil)

				mockRepo.EXPECT().
					GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, nil)
			},
			wantErr: false,
		},
		{
			name:      "missing role is denied without repository access",
			ctx:       context.Background(),
			hours:     24,
			setupMock: func() {},
			wantErr:   true,
		},
		{
			name:  "count error",
			ctx:   viewerContext(),
			hours: 24,
			setupMock: func() {
				mockRepo.EXPECT().
					Count(gomock.Any(), gomock.Any()).
					Return(0, errors.New("count error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			res, err := svc.GetRecent(tt.ctx, gDto.QueryParams{Limit: 10, Page: 1}, tt.hours)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantTotal, res.TotalData)
			}
		})
	}
}

func TestHistoryService_GetEntity(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := historyMocks.NewMockHistory(ctrl)
	mockOtel := mocks.NewOtel()

	svc := service.New(mockRepo, mockOtel)

	mockRepo.EXPECT().
		Count(gomock.Any(), gomock.Any()).
		Return(2, nil)

	mockRepo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]model.HistoryLog{{ID: "a"}, {ID: "b"}}, nil)

	res, err := svc.GetEntity(viewerContext(), model.EntityTypeBooking, "booking-id", gDto.QueryParams{Limit: 10, Page: 1})

	assert.NoError(t, err)
	assert.Equal(t, 2, res.TotalData)
	assert.Len(t, res.Logs, 2)
}

func TestHistoryService_GetUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := historyMocks.NewMockHistory(ctrl)
	mockOtel := mocks.NewOtel()

	svc := service.New(mockRepo, mockOtel)

	mockRepo.EXPECT().
		Count(gomock.Any(), gomock.Any()).
		Return(1, nil)

	mockRepo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]model.HistoryLog{{ID: "a", UserID: "other-user"}}, nil)

	res, err := svc.GetUser(viewerContext(), "other-user", gDto.QueryParams{Limit: 10, Page: 1})

	assert.NoError(t, err)
	assert.Equal(t, 1, res.TotalData)
}
