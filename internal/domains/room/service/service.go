package service

import (
	"context"
	"fmt"

	"orzu/config"
	"orzu/infras/otel"
	bookingModel "orzu/internal/domains/booking/model"
	bookingRepo "orzu/internal/domains/booking/repository"
	"orzu/internal/domains/history/model"
	historySvc "orzu/internal/domains/history/service"
	roomModel "orzu/internal/domains/room/model"
	"orzu/internal/domains/room/model/dto"
	"orzu/internal/domains/room/repository"
	"orzu/internal/events"
	"orzu/permissions"
	"orzu/shared"
	"orzu/shared/cache"
	"orzu/shared/constant"
	"orzu/shared/daterange"
	gDto "orzu/shared/dto"
	"orzu/shared/failure"
	"orzu/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetRoom    = "room:get"
	cacheGetAllRoom = "room:gets"
	cacheCountRoom  = "room:count"
)

type Room interface {
	Create(ctx context.Context, req dto.CreateRoomRequest) (dto.RoomResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup, status string) (dto.GetRoomsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.RoomResponse, error)
	Update(ctx context.Context, req dto.UpdateRoomRequest, id string) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo     repository.Room
	bookings bookingRepo.Booking
	cfg      *config.Config
	cache    cache.RedisCache
	otel     otel.Otel
	history  historySvc.History
	events   events.Publisher
}

func New(repo repository.Room, bookings bookingRepo.Booking, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, history historySvc.History, events events.Publisher) Room {
	return &serviceImpl{
		repo:     repo,
		bookings: bookings,
		cfg:      cfg,
		cache:    cache,
		otel:     otel,
		history:  history,
		events:   events,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateRoomRequest) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = permissions.Require(ctx, permissions.CapabilitySettings); err != nil {
		return res, err
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	taken, err := s.repo.Exist(ctx, shared.FilterByID(req.RoomNumber, roomModel.FieldRoomNumber, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check room number uniqueness")

		return res, fmt.Errorf("failed to check room number uniqueness: %w", err)
	}

	if taken {
		return res, failure.Conflict(fmt.Sprintf("room number %s already exists", req.RoomNumber)) // nolint:wrapcheck
	}

	room := req.ToModel(user)

	if err = s.repo.Insert(ctx, room); err != nil {
		return res, err
	}

	s.history.Record(ctx, historySvc.Entry{
		EntityType:  model.EntityTypeRoom,
		EntityID:    room.ID,
		Action:      model.ActionCreate,
		Changes:     req,
		Description: fmt.Sprintf("created room %s", room.RoomNumber),
	})

	s.events.Publish(ctx, events.Event{
		EntityType: model.EntityTypeRoom,
		EntityID:   room.ID,
		Action:     events.ActionCreated,
		ActorID:    user,
	})

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllRoom)
		shared.InvalidateCaches(c, s.cache, cacheCountRoom)
	}()

	res.FromModel(room)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup, status string) (res dto.GetRoomsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = permissions.Require(ctx, permissions.CapabilityRead); err != nil {
		return res, err
	}

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllRoom, req, filter)

	if cacheErr := s.cache.Get(ctx, cacheKey, &res); cacheErr == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for rooms")

		// Occupancy depends on today, so refresh it even on a cache hit.
		if err = s.annotateBookingStatus(ctx, res.Rooms); err != nil {
			return res, err
		}

		return filterByStatus(res, status), nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count rooms")

		return res, fmt.Errorf("failed to count rooms: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get rooms")

		return res, fmt.Errorf("failed to get rooms: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	if err = s.annotateBookingStatus(ctx, res.Rooms); err != nil {
		return res, err
	}

	go func(c context.Context, snapshot dto.GetRoomsResponse) {
		if err := s.cache.Save(c, cacheKey, snapshot, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save rooms to cache")
		}
	}(context.WithoutCancel(ctx), res)

	return filterByStatus(res, status), nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountRoom, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for room count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count rooms")

		return res, fmt.Errorf("failed to count rooms: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save room count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = permissions.Require(ctx, permissions.CapabilityRead); err != nil {
		return res, err
	}

	cacheKey := shared.BuildCacheKey(cacheGetRoom, id)

	if cacheErr := s.cache.Get(ctx, cacheKey, &res); cacheErr != nil {
		room, err := s.repo.Get(ctx, shared.FilterByID(id, roomModel.FieldID, roomModel.TableName))
		if err != nil {
			log.Error().Err(err).Msg("failed to get room")

			return res, fmt.Errorf("failed to get room: %w", err)
		}

		if room.ID == constant.Empty {
			return res, failure.NotFound("room not found") // nolint:wrapcheck
		}

		res.FromModel(room)

		go func(c context.Context, snapshot dto.RoomResponse) {
			if err := s.cache.Save(c, cacheKey, snapshot, s.cfg.Cache.TTL); err != nil {
				log.Error().Err(err).Msg("failed to save room to cache")
			}
		}(context.WithoutCancel(ctx), res)
	} else {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for room")
	}

	annotated := []dto.RoomResponse{res}
	if err = s.annotateBookingStatus(ctx, annotated); err != nil {
		return res, err
	}

	return annotated[0], nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateRoomRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = permissions.Require(ctx, permissions.CapabilitySettings); err != nil {
		return err
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(id, roomModel.FieldID, roomModel.TableName)

	currentRoom, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check room existence")

		return err
	}

	if currentRoom.ID == constant.Empty {
		log.Error().Msg("room not found")

		return failure.NotFound("room not found") // nolint:wrapcheck
	}

	if req.RoomNumber != constant.Empty && req.RoomNumber != currentRoom.RoomNumber {
		taken, err := s.repo.Exist(ctx, shared.FilterByID(req.RoomNumber, roomModel.FieldRoomNumber, roomModel.TableName))
		if err != nil {
			log.Error().Err(err).Msg("failed to check room number uniqueness")

			return fmt.Errorf("failed to check room number uniqueness: %w", err)
		}

		if taken {
			return failure.Conflict(fmt.Sprintf("room number %s already exists", req.RoomNumber)) // nolint:wrapcheck
		}
	}

	updatedFields := shared.TransformFields(req, user)

	if err := s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update room")

		return fmt.Errorf("failed to update room: %w", err)
	}

	s.history.Record(ctx, historySvc.Entry{
		EntityType:  model.EntityTypeRoom,
		EntityID:    currentRoom.ID,
		Action:      model.ActionUpdate,
		Changes:     req,
		Description: fmt.Sprintf("updated room %s", currentRoom.RoomNumber),
	})

	s.events.Publish(ctx, events.Event{
		EntityType: model.EntityTypeRoom,
		EntityID:   currentRoom.ID,
		Action:     events.ActionUpdated,
		ActorID:    user,
	})

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetRoom, currentRoom.ID)); err != nil {
			log.Error().Err(err).Msg("failed to delete room cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllRoom)
		shared.InvalidateCaches(c, s.cache, cacheCountRoom)
	}()

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = permissions.Require(ctx, permissions.CapabilitySettings); err != nil {
		return err
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	room, err := s.repo.Get(ctx, shared.FilterByID(id, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if room exists")

		return fmt.Errorf("failed to check if room exists: %w", err)
	}

	if room.ID == constant.Empty {
		log.Error().Msg("room not found")

		return failure.NotFound("room not found") // nolint:wrapcheck
	}

	if err := s.repo.Delete(ctx, shared.FilterByID(id, roomModel.FieldID, roomModel.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete room")

		return fmt.Errorf("failed to delete room: %w", err)
	}

	s.history.Record(ctx, historySvc.Entry{
		EntityType:  model.EntityTypeRoom,
		EntityID:    room.ID,
		Action:      model.ActionDelete,
		Description: fmt.Sprintf("deleted room %s", room.RoomNumber),
	})

	s.events.Publish(ctx, events.Event{
		EntityType: model.EntityTypeRoom,
		EntityID:   room.ID,
		Action:     events.ActionDeleted,
		ActorID:    user,
	})

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetRoom, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete room from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllRoom)
		shared.InvalidateCaches(c, s.cache, cacheCountRoom)
	}()

	return nil
}

// annotateBookingStatus marks each room as occupied or free for today and
// attaches its current and next booking. One query fetches every booking that
// has not ended yet; the rooms are matched in memory.
func (s *serviceImpl) annotateBookingStatus(ctx context.Context, rooms []dto.RoomResponse) error {
	if len(rooms) == 0 {
		return nil
	}

	today := daterange.Day(timezone.Now())

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    bookingModel.FieldEndDate,
				Operator: gDto.FilterOperatorGreaterEq,
				Value:    today,
				Table:    bookingModel.TableName,
			},
		},
	}

	bookings, err := s.bookings.GetAll(ctx, gDto.QueryParams{}, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to load bookings for room status")

		return fmt.Errorf("failed to load bookings for room status: %w", err)
	}

	byRoom := make(map[string][]bookingModel.Booking, len(rooms))
	for _, booking := range bookings {
		byRoom[booking.RoomID] = append(byRoom[booking.RoomID], booking)
	}

	for i := range rooms {
		rooms[i].SetBookingStatus(today, byRoom[rooms[i].ID])
	}

	return nil
}

func filterByStatus(res dto.GetRoomsResponse, status string) dto.GetRoomsResponse {
	if status == constant.Empty {
		return res
	}

	wantAvailable := status == roomModel.StatusAvailable

	filtered := make([]dto.RoomResponse, 0, len(res.Rooms))

	for _, room := range res.Rooms {
		if room.IsAvailable == wantAvailable {
			filtered = append(filtered, room)
		}
	}

	res.Rooms = filtered

	return res
}
