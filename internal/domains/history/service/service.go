package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=History=MockHistoryService

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"orzu/infras/otel"
	"orzu/internal/domains/history/model"
	"orzu/internal/domains/history/model/dto"
	"orzu/internal/domains/history/repository"
	"orzu/permissions"
	"orzu/shared/constant"
	gDto "orzu/shared/dto"
	gModel "orzu/shared/model"
	"orzu/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Entry describes a single audit record. The acting user is taken from
// the request context, not from the entry.
type Entry struct {
	EntityType  string
	EntityID    string
	Action      string
	Changes     any
	Description string
}

type History interface {
	Record(ctx context.Context, entry Entry)
	GetRecent(ctx context.Context, params gDto.QueryParams, hours int) (dto.GetHistoryResponse, error)
	GetEntity(ctx context.Context, entityType, entityID string, params gDto.QueryParams) (dto.GetHistoryResponse, error)
	GetUser(ctx context.Context, userID string, params gDto.QueryParams) (dto.GetHistoryResponse, error)
}

type serviceImpl struct {
	repo repository.History
	otel otel.Otel
}

func New(repo repository.History, otel otel.Otel) History {
	return &serviceImpl{
		repo: repo,
		otel: otel,
	}
}

// Record persists an audit entry. Recording is best effort: it runs after
// the mutation already succeeded, so a failed insert is logged and never
// propagated back to the caller.
func (s *serviceImpl) Record(ctx context.Context, entry Entry) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Record")
	defer scope.End()

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	username, _ := ctx.Value(constant.ContextKeyUsername).(string)

	var changes []byte
	if entry.Changes != nil {
		encoded, err := json.Marshal(entry.Changes)
		if err != nil {
			log.Error().Err(err).Str("entityType", entry.EntityType).Msg("failed to encode history changes")
		} else {
			changes = encoded
		}
	}

	logEntry := model.HistoryLog{
		ID:          uuid.NewString(),
		UserID:      userID,
		Username:    username,
		EntityType:  entry.EntityType,
		EntityID:    entry.EntityID,
		Action:      entry.Action,
		Changes:     changes,
		Description: entry.Description,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  userID,
			ModifiedBy: userID,
		},
	}

	go func(ctx context.Context) {
		if err := s.repo.Insert(ctx, logEntry); err != nil {
			log.Error().Err(err).
				Str("entityType", entry.EntityType).
				Str("entityId", entry.EntityID).
				Str("action", entry.Action).
				Msg("failed to record history entry")
		}
	}(context.WithoutCancel(ctx))
}

func (s *serviceImpl) GetRecent(ctx context.Context, params gDto.QueryParams, hours int) (res dto.GetHistoryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetRecent")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = permissions.Require(ctx, permissions.CapabilityRead); err != nil {
		return res, err
	}

	if hours <= 0 {
		hours = 24
	}

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    constant.FieldCreatedAt,
				Value:    timezone.Now().Add(-time.Duration(hours) * time.Hour),
				Operator: gDto.FilterOperatorGreaterEq,
				Table:    model.TableName,
			},
		},
	}

	return s.getAll(ctx, params, filter)
}

func (s *serviceImpl) GetEntity(ctx context.Context, entityType, entityID string, params gDto.QueryParams) (res dto.GetHistoryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetEntity")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = permissions.Require(ctx, permissions.CapabilityRead); err != nil {
		return res, err
	}

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldEntityType,
				Value:    entityType,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldEntityID,
				Value:    entityID,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
		},
	}

	return s.getAll(ctx, params, filter)
}

func (s *serviceImpl) GetUser(ctx context.Context, userID string, params gDto.QueryParams) (res dto.GetHistoryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetUser")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = permissions.Require(ctx, permissions.CapabilityRead); err != nil {
		return res, err
	}

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldUserID,
				Value:    userID,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
		},
	}

	return s.getAll(ctx, params, filter)
}

func (s *serviceImpl) getAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetHistoryResponse, err error) {
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count history logs")

		return res, fmt.Errorf("failed to count history logs: %w", err)
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get history logs")

		return res, fmt.Errorf("failed to get history logs: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	return res, nil
}
