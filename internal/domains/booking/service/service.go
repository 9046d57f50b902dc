package service

import (
	"context"
	"errors"
	"fmt"

	"orzu/config"
	"orzu/infras/otel"
	"orzu/internal/domains/booking/availability"
	bookingModel "orzu/internal/domains/booking/model"
	"orzu/internal/domains/booking/model/dto"
	"orzu/internal/domains/booking/repository"
	historyModel "orzu/internal/domains/history/model"
	historySvc "orzu/internal/domains/history/service"
	roomModel "orzu/internal/domains/room/model"
	roomRepo "orzu/internal/domains/room/repository"
	"orzu/internal/events"
	"orzu/permissions"
	"orzu/shared"
	"orzu/shared/cache"
	"orzu/shared/constant"
	"orzu/shared/daterange"
	gDto "orzu/shared/dto"
	"orzu/shared/failure"
	gModel "orzu/shared/model"
	"orzu/shared/timezone"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking    = "booking:get"
	cacheGetAllBooking = "booking:gets"
	cacheCountBooking  = "booking:count"
)

const pgExclusionViolation = "23P01"

// overlapViolation reports whether the write was rejected by the
// bookings_no_overlap exclusion constraint. The availability scan runs before
// the write, but only the constraint holds under concurrent requests.
func overlapViolation(err error) bool {
	var pqErr *pq.Error

	return errors.As(err, &pqErr) && pqErr.Code == pgExclusionViolation
}

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	Count(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	GetMine(ctx context.Context, params gDto.QueryParams) (dto.GetBookingsResponse, error)
	Update(ctx context.Context, req dto.UpdateBookingRequest, id string) error
	Delete(ctx context.Context, id string) error
	Extend(ctx context.Context, id string, req dto.ExtendBookingRequest) (dto.BookingResponse, error)
	CheckAvailability(ctx context.Context, req dto.CheckAvailabilityRequest) (dto.CheckAvailabilityResponse, error)
}

type serviceImpl struct {
	repo    repository.Booking
	rooms   roomRepo.Room
	cfg     *config.Config
	cache   cache.RedisCache
	otel    otel.Otel
	history historySvc.History
	events  events.Publisher
}

func New(repo repository.Booking, rooms roomRepo.Room, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, history historySvc.History, events events.Publisher) Booking {
	return &serviceImpl{
		repo:    repo,
		rooms:   rooms,
		cfg:     cfg,
		cache:   cache,
		otel:    otel,
		history: history,
		events:  events,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = permissions.Require(ctx, permissions.CapabilityCreate); err != nil {
		return res, err
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	stay, err := daterange.Parse(req.StartDate, req.EndDate)
	if err != nil {
		return res, err
	}

	room, err := s.rooms.Get(ctx, shared.FilterByID(req.RoomID, roomModel.FieldID, roomModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room for booking")

		return res, fmt.Errorf("failed to get room for booking: %w", err)
	}

	if room.ID == constant.Empty {
		return res, failure.NotFound("room not found") // nolint:wrapcheck
	}

	if !room.Active {
		return res, failure.BadRequestFromString(fmt.Sprintf("room %s is not active", room.RoomNumber)) // nolint:wrapcheck
	}

	existing, err := s.repo.ListByRoom(ctx, req.RoomID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list room bookings")

		return res, fmt.Errorf("failed to list room bookings: %w", err)
	}

	if err = availability.Check(stay, constant.Empty, existing); err != nil {
		return res, err
	}

	booking := req.ToModel(user, stay)

	if err = s.repo.Insert(ctx, booking); err != nil {
		if overlapViolation(err) {
			return res, failure.Conflict("room is already booked for an overlapping period") // nolint:wrapcheck
		}

		return res, err
	}

	s.history.Record(ctx, historySvc.Entry{
		EntityType:  historyModel.EntityTypeBooking,
		EntityID:    booking.ID,
		Action:      historyModel.ActionCreate,
		Changes:     req,
		Description: fmt.Sprintf("booked room %s for %s (%s)", room.RoomNumber, booking.GuestName, stay),
	})

	s.events.Publish(ctx, events.Event{
		EntityType: historyModel.EntityTypeBooking,
		EntityID:   booking.ID,
		Action:     events.ActionCreated,
		ActorID:    user,
	})

	s.invalidateListings(ctx)

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = permissions.Require(ctx, permissions.CapabilityRead); err != nil {
		return res, err
	}

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, params, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.Count(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountBooking, params, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = permissions.Require(ctx, permissions.CapabilityRead); err != nil {
		return res, err
	}

	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		return res, nil
	}

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, bookingModel.FieldID, bookingModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	res.FromModel(booking)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) GetMine(ctx context.Context, params gDto.QueryParams) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetMine")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    constant.FieldCreatedBy,
				Value:    user,
				Operator: gDto.FilterOperatorEq,
				Table:    bookingModel.TableName,
			},
		},
	}

	return s.GetAll(ctx, params, filter)
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateBookingRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = permissions.Require(ctx, permissions.CapabilityUpdate); err != nil {
		return err
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(id, bookingModel.FieldID, bookingModel.TableName)

	current, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking for update")

		return fmt.Errorf("failed to get booking for update: %w", err)
	}

	if current.ID == constant.Empty {
		return failure.NotFound("booking not found") // nolint:wrapcheck
	}

	updatedFields := shared.TransformFields(req, user)

	moved := req.RoomID != constant.Empty && req.RoomID != current.RoomID
	rescheduled := req.StartDate != constant.Empty || req.EndDate != constant.Empty

	if moved || rescheduled {
		targetRoom := current.RoomID
		if moved {
			targetRoom = req.RoomID

			room, err := s.rooms.Get(ctx, shared.FilterByID(targetRoom, roomModel.FieldID, roomModel.TableName))
			if err != nil {
				log.Error().Err(err).Msg("failed to get target room")

				return fmt.Errorf("failed to get target room: %w", err)
			}

			if room.ID == constant.Empty {
				return failure.NotFound("room not found") // nolint:wrapcheck
			}

			if !room.Active {
				return failure.BadRequestFromString(fmt.Sprintf("room %s is not active", room.RoomNumber)) // nolint:wrapcheck
			}
		}

		start := current.StartDate.Format(constant.DayFormat)
		if req.StartDate != constant.Empty {
			start = req.StartDate
		}

		end := current.EndDate.Format(constant.DayFormat)
		if req.EndDate != constant.Empty {
			end = req.EndDate
		}

		stay, err := daterange.Parse(start, end)
		if err != nil {
			return err
		}

		existing, err := s.repo.ListByRoom(ctx, targetRoom)
		if err != nil {
			log.Error().Err(err).Msg("failed to list room bookings")

			return fmt.Errorf("failed to list room bookings: %w", err)
		}

		// The booking being updated never conflicts with itself.
		if err = availability.Check(stay, current.ID, existing); err != nil {
			return err
		}

		updatedFields[bookingModel.FieldStartDate] = stay.Start
		updatedFields[bookingModel.FieldEndDate] = stay.End
	}

	if err := s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update booking")

		if overlapViolation(err) {
			return failure.Conflict("room is already booked for an overlapping period") // nolint:wrapcheck
		}

		return fmt.Errorf("failed to update booking: %w", err)
	}

	s.history.Record(ctx, historySvc.Entry{
		EntityType:  historyModel.EntityTypeBooking,
		EntityID:    current.ID,
		Action:      historyModel.ActionUpdate,
		Changes:     req,
		Description: fmt.Sprintf("updated booking for %s", current.GuestName),
	})

	s.events.Publish(ctx, events.Event{
		EntityType: historyModel.EntityTypeBooking,
		EntityID:   current.ID,
		Action:     events.ActionUpdated,
		ActorID:    user,
	})

	s.invalidateBooking(ctx, current.ID)

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)
	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	canDeleteAny := permissions.Can(role, permissions.CapabilityDelete)
	canDeleteOwn := permissions.Can(role, permissions.CapabilityDeleteOwn)

	if !canDeleteAny && !canDeleteOwn {
		return failure.ForbiddenError
	}

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, bookingModel.FieldID, bookingModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking for deletion")

		return fmt.Errorf("failed to get booking for deletion: %w", err)
	}

	if booking.ID == constant.Empty {
		return failure.NotFound("booking not found") // nolint:wrapcheck
	}

	if !canDeleteAny && booking.CreatedBy != user {
		return failure.ResourceRestrictedError
	}

	if err := s.repo.Delete(ctx, shared.FilterByID(id, bookingModel.FieldID, bookingModel.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete booking")

		return fmt.Errorf("failed to delete booking: %w", err)
	}

	s.history.Record(ctx, historySvc.Entry{
		EntityType:  historyModel.EntityTypeBooking,
		EntityID:    booking.ID,
		Action:      historyModel.ActionDelete,
		Description: fmt.Sprintf("deleted booking for %s (%s)", booking.GuestName, booking.Range()),
	})

	s.events.Publish(ctx, events.Event{
		EntityType: historyModel.EntityTypeBooking,
		EntityID:   booking.ID,
		Action:     events.ActionDeleted,
		ActorID:    user,
	})

	s.invalidateBooking(ctx, booking.ID)

	return nil
}

// Extend books the same room for the same guest starting the day after
// the current stay ends, one night by default.
func (s *serviceImpl) Extend(ctx context.Context, id string, req dto.ExtendBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Extend")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = permissions.Require(ctx, permissions.CapabilityCreate); err != nil {
		return res, err
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	current, err := s.repo.Get(ctx, shared.FilterByID(id, bookingModel.FieldID, bookingModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking for extension")

		return res, fmt.Errorf("failed to get booking for extension: %w", err)
	}

	if current.ID == constant.Empty {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	next := current.Range().Following()
	if req.Nights > 1 {
		next.End = next.Start.AddDate(0, 0, req.Nights)
	}

	existing, err := s.repo.ListByRoom(ctx, current.RoomID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list room bookings")

		return res, fmt.Errorf("failed to list room bookings: %w", err)
	}

	if err = availability.Check(next, constant.Empty, existing); err != nil {
		return res, err
	}

	extension := bookingModel.Booking{
		ID:        uuid.NewString(),
		RoomID:    current.RoomID,
		GuestName: current.GuestName,
		Notes:     current.Notes,
		StartDate: next.Start,
		EndDate:   next.End,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}

	if err = s.repo.Insert(ctx, extension); err != nil {
		if overlapViolation(err) {
			return res, failure.Conflict("room is already booked for an overlapping period") // nolint:wrapcheck
		}

		return res, err
	}

	s.history.Record(ctx, historySvc.Entry{
		EntityType:  historyModel.EntityTypeBooking,
		EntityID:    extension.ID,
		Action:      historyModel.ActionExtend,
		Description: fmt.Sprintf("extended stay for %s (%s)", extension.GuestName, next),
	})

	s.events.Publish(ctx, events.Event{
		EntityType: historyModel.EntityTypeBooking,
		EntityID:   extension.ID,
		Action:     events.ActionExtended,
		ActorID:    user,
	})

	s.invalidateListings(ctx)

	res.FromModel(extension)

	return res, nil
}

func (s *serviceImpl) CheckAvailability(ctx context.Context, req dto.CheckAvailabilityRequest) (res dto.CheckAvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CheckAvailability")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = permissions.Require(ctx, permissions.CapabilityRead); err != nil {
		return res, err
	}

	stay, err := daterange.Parse(req.StartDate, req.EndDate)
	if err != nil {
		return res, err
	}

	existing, err := s.repo.ListByRoom(ctx, req.RoomID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list room bookings")

		return res, fmt.Errorf("failed to list room bookings: %w", err)
	}

	clash, found := availability.FirstConflict(stay, req.ExcludeID, existing)
	if !found {
		res.Available = true

		return res, nil
	}

	conflict := &dto.BookingResponse{}
	conflict.FromModel(clash)
	res.Conflict = conflict

	return res, nil
}

func (s *serviceImpl) invalidateListings(ctx context.Context) {
	go func(c context.Context) {
		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)
	}(context.WithoutCancel(ctx))
}

func (s *serviceImpl) invalidateBooking(ctx context.Context, id string) {
	go func(c context.Context) {
		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetBooking, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete booking cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)
	}(context.WithoutCancel(ctx))
}
