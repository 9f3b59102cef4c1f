package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"karaoke/infras/otel"
	"karaoke/infras/postgres"
	"karaoke/internal/domains/room/model"
	"karaoke/shared/constant"
	gDto "karaoke/shared/dto"
	"karaoke/shared/logger"
	gRepo "karaoke/shared/repository"
)

const queryCountBookings = `SELECT COUNT(*) FROM bookings WHERE room_id = :room_id`

type Room interface {
	InsertReturningID(ctx context.Context, model model.Room) (int64, error)
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Room, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Room, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	CountBookings(ctx context.Context, roomID int64) (int, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Room]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Room {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Room](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// CountBookings counts every booking that references the room, whatever its status.
func (r *repositoryImpl) CountBookings(ctx context.Context, roomID int64) (int, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room.CountBookings")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, queryCountBookings)

	prepare, err := r.db.Read.PrepareNamedContext(ctx, queryCountBookings)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to prepare statement (%s): %w", model.EntityName, gRepo.TranslateError(err, model.EntityName))
	}
	defer prepare.Close()

	var count int

	if err = prepare.GetContext(ctx, &count, map[string]any{"room_id": roomID}); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to count bookings (%s): %w", model.EntityName, gRepo.TranslateError(err, model.EntityName))
	}

	return count, nil
}
