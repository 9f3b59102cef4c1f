package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"karaoke/infras/otel"
	"karaoke/infras/postgres"
	"karaoke/internal/domains/booking/model"
	roomModel "karaoke/internal/domains/room/model"
	"karaoke/shared/constant"
	gDto "karaoke/shared/dto"
	"karaoke/shared/failure"
	"karaoke/shared/logger"
	gRepo "karaoke/shared/repository"
	"karaoke/shared/timezone"
	"time"

	"github.com/jmoiron/sqlx"
)

const driverPostgres = "postgres"

const (
	bookingColumns = `id, room_id, customer_id, start_time, end_time, status, total_amount, notes, created_at, updated_at`
	roomColumns    = `rooms.id, rooms.name, rooms.type, rooms.price_per_hour, rooms.capacity, rooms.status, rooms.image, rooms.created_at, rooms.updated_at`

	// overlapPredicate is true for an active booking sharing any instant with [:start_time, :end_time).
	overlapPredicate = `status IN (:pending, :confirmed) AND start_time < :end_time AND end_time > :start_time`

	queryLockRoom = `SELECT id FROM rooms WHERE id = :room_id`

	queryCountOverlapping = `SELECT COUNT(*) FROM bookings WHERE room_id = :room_id AND id <> :exclude_id AND ` + overlapPredicate

	queryAvailableRooms = `SELECT ` + roomColumns + ` FROM rooms
		WHERE rooms.id NOT IN (SELECT room_id FROM bookings WHERE ` + overlapPredicate + `)
		ORDER BY rooms.price_per_hour ASC, rooms.name ASC, rooms.id ASC`

	queryModify = `UPDATE bookings
		SET room_id = :room_id, start_time = :start_time, end_time = :end_time, status = :status,
			total_amount = :total_amount, notes = :notes, updated_at = :updated_at
		WHERE id = :id AND status = :expected_status`

	queryConfirmedPastEnd = `SELECT ` + bookingColumns + ` FROM bookings
		WHERE status = :status AND end_time < :now ORDER BY end_time ASC, id ASC`

	queryCountActiveAt = `SELECT COUNT(*) FROM bookings WHERE status = :status AND start_time <= :now AND end_time > :now`
)

var ErrOverlap = failure.Conflict("time slot overlaps an existing booking")

type Booking interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Delete(ctx context.Context, filter gDto.FilterGroup) error

	// Insert is the only way a booking is created.
	Insert(ctx context.Context, booking model.Booking) (model.Booking, error)
	Modify(ctx context.Context, booking model.Booking, expectedStatus string) error
	UpdateStatus(ctx context.Context, id int64, to string, from ...string) (bool, error)

	FindAvailableRooms(ctx context.Context, start, end time.Time) ([]roomModel.Room, error)
	IsTimeSlotOverlapping(ctx context.Context, roomID int64, start, end time.Time, excludeID int64) (bool, error)

	FindConfirmedPastEnd(ctx context.Context, now time.Time) ([]model.Booking, error)
	MarkCompleted(ctx context.Context, id int64) (bool, error)
	CountActiveAt(ctx context.Context, now time.Time) (int, error)
}

type namedPreparer interface {
	PrepareNamedContext(ctx context.Context, query string) (*sqlx.NamedStmt, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func intervalArgs(start, end time.Time) map[string]any {
	return map[string]any{
		"pending":    model.StatusPending,
		"confirmed":  model.StatusConfirmed,
		"start_time": start,
		"end_time":   end,
	}
}

func (r *repositoryImpl) get(ctx context.Context, db namedPreparer, dest any, query string, args any) error {
	prepare, err := db.PrepareNamedContext(ctx, query)
	if err != nil {
		return err
	}
	defer prepare.Close()

	return prepare.GetContext(ctx, dest, args)
}

func (r *repositoryImpl) selectAll(ctx context.Context, db namedPreparer, dest any, query string, args any) error {
	prepare, err := db.PrepareNamedContext(ctx, query)
	if err != nil {
		return err
	}
	defer prepare.Close()

	return prepare.SelectContext(ctx, dest, args)
}

func (r *repositoryImpl) fail(scope otel.Scope, err error, action string) error {
	logger.ErrorWithStack(err)
	scope.TraceError(err)

	return fmt.Errorf("failed to %s (%s): %w", action, model.EntityName, gRepo.TranslateError(err, model.EntityName))
}

// lockRoom takes a row lock on the room so writers for the same room queue
// behind each other until the transaction ends.
func (r *repositoryImpl) lockRoom(ctx context.Context, tx *sqlx.Tx, roomID int64) error {
	query := queryLockRoom
	if r.db.Write.DriverName() == driverPostgres {
		query += " FOR UPDATE"
	}

	var id int64

	err := r.get(ctx, tx, &id, query, map[string]any{"room_id": roomID})
	if errors.Is(err, sql.ErrNoRows) {
		return failure.NotFound("room not found")
	}

	return err
}

func (r *repositoryImpl) overlapping(ctx context.Context, db namedPreparer, roomID int64, start, end time.Time, excludeID int64) (bool, error) {
	args := intervalArgs(start, end)
	args["room_id"] = roomID
	args["exclude_id"] = excludeID

	var count int

	if err := r.get(ctx, db, &count, queryCountOverlapping, args); err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *repositoryImpl) Insert(ctx context.Context, booking model.Booking) (res model.Booking, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.Insert")
	defer scope.End()

	err = r.Transaction(ctx, func(tx *sqlx.Tx) error {
		if err := r.lockRoom(ctx, tx, booking.RoomID); err != nil {
			return err
		}

		if booking.IsActive() {
			overlap, err := r.overlapping(ctx, tx, booking.RoomID, booking.StartTime, booking.EndTime, 0)
			if err != nil {
				return err
			}

			if overlap {
				return ErrOverlap
			}
		}

		id, err := r.InsertReturningIDTx(ctx, tx, booking)
		if err != nil {
			return err
		}

		booking.ID = id

		return nil
	})
	if err != nil {
		return res, r.fail(scope, err, "insert data")
	}

	return booking, nil
}

// Modify rewrites the mutable fields of a booking. The write is rejected when
// the stored status is no longer expectedStatus.
func (r *repositoryImpl) Modify(ctx context.Context, booking model.Booking, expectedStatus string) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.Modify")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, queryModify)

	err = r.Transaction(ctx, func(tx *sqlx.Tx) error {
		if err := r.lockRoom(ctx, tx, booking.RoomID); err != nil {
			return err
		}

		if booking.IsActive() {
			overlap, err := r.overlapping(ctx, tx, booking.RoomID, booking.StartTime, booking.EndTime, booking.ID)
			if err != nil {
				return err
			}

			if overlap {
				return ErrOverlap
			}
		}

		result, err := tx.NamedExecContext(ctx, queryModify, map[string]any{
			"id":              booking.ID,
			"room_id":         booking.RoomID,
			"start_time":      booking.StartTime,
			"end_time":        booking.EndTime,
			"status":          booking.Status,
			"total_amount":    booking.TotalAmount,
			"notes":           booking.Notes,
			"updated_at":      timezone.Now(),
			"expected_status": expectedStatus,
		})
		if err != nil {
			return err
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}

		if affected == 0 {
			return failure.Conflict("booking was changed by another request")
		}

		return nil
	})
	if err != nil {
		return r.fail(scope, err, "update data")
	}

	return nil
}

// UpdateStatus moves a booking to status to only while it is in one of from.
// It reports false when no row matched.
func (r *repositoryImpl) UpdateStatus(ctx context.Context, id int64, to string, from ...string) (bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.UpdateStatus")
	defer scope.End()

	if len(from) == 0 {
		return false, nil
	}

	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldID, Operator: gDto.FilterOperatorEq, Value: id},
			gDto.Filter{ArgName: "from_status", Field: model.FieldStatus, Operator: gDto.FilterOperatorIn, Value: from},
		},
	}

	where, args := filter.GetWhereClause()
	args["new_status"] = to
	args["updated_at"] = timezone.Now()

	query := fmt.Sprintf("UPDATE %s SET status = :new_status, updated_at = :updated_at WHERE %s", model.TableName, where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	result, err := r.db.Write.NamedExecContext(ctx, query, args)
	if err != nil {
		return false, r.fail(scope, err, "update status")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, r.fail(scope, err, "update status")
	}

	return affected > 0, nil
}

func (r *repositoryImpl) FindAvailableRooms(ctx context.Context, start, end time.Time) ([]roomModel.Room, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.FindAvailableRooms")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, queryAvailableRooms)

	rooms := []roomModel.Room{}

	if err := r.selectAll(ctx, r.db.Read, &rooms, queryAvailableRooms, intervalArgs(start, end)); err != nil {
		return nil, r.fail(scope, err, "find available rooms")
	}

	return rooms, nil
}

func (r *repositoryImpl) IsTimeSlotOverlapping(ctx context.Context, roomID int64, start, end time.Time, excludeID int64) (bool, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.IsTimeSlotOverlapping")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, queryCountOverlapping)

	overlap, err := r.overlapping(ctx, r.db.Read, roomID, start, end, excludeID)
	if err != nil {
		return false, r.fail(scope, err, "check overlap")
	}

	return overlap, nil
}

func (r *repositoryImpl) FindConfirmedPastEnd(ctx context.Context, now time.Time) ([]model.Booking, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.FindConfirmedPastEnd")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, queryConfirmedPastEnd)

	bookings := []model.Booking{}
	args := map[string]any{"status": model.StatusConfirmed, "now": now}

	if err := r.selectAll(ctx, r.db.Read, &bookings, queryConfirmedPastEnd, args); err != nil {
		return nil, r.fail(scope, err, "find expired bookings")
	}

	return bookings, nil
}

func (r *repositoryImpl) MarkCompleted(ctx context.Context, id int64) (bool, error) {
	return r.UpdateStatus(ctx, id, model.StatusCompleted, model.StatusConfirmed)
}

func (r *repositoryImpl) CountActiveAt(ctx context.Context, now time.Time) (int, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.CountActiveAt")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, queryCountActiveAt)

	var count int

	if err := r.get(ctx, r.db.Read, &count, queryCountActiveAt, map[string]any{"status": model.StatusConfirmed, "now": now}); err != nil {
		return 0, r.fail(scope, err, "count active bookings")
	}

	return count, nil
}
