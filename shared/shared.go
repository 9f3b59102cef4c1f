package shared

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"karaoke/shared/cache"
	"karaoke/shared/constant"
	"karaoke/shared/dto"
	"karaoke/shared/failure"
	"karaoke/shared/timezone"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidTime = errors.New("invalid time format, expected RFC3339 or 2006-01-02T15:04:05")
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func ConvertStringToInt(value string) (int, error) {
	res, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("failed to convert %q to int: %w", value, err)
	}

	return res, nil
}

func ConvertStringToInt64(value string) (int64, error) {
	res, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to convert %q to int64: %w", value, err)
	}

	return res, nil
}

// ParseID reads a path identifier. Anything but a positive integer is a validation failure.
func ParseID(value string) (int64, error) {
	id, err := ConvertStringToInt64(value)
	if err != nil || id <= 0 {
		return 0, failure.BadRequestFromString("id must be a positive integer")
	}

	return id, nil
}

// ParseTime accepts RFC3339 or a zone-less timestamp, which is read in the application timezone.
func ParseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	t, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return t, nil
	}

	for _, layout := range timeLayouts[1:] {
		if t, err = timezone.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	return time.Time{}, ErrInvalidTime
}

func CalculateTotalPage(total, limit int) (res int) {
	if total == 0 || limit <= 0 {
		res = 1
	} else {
		res = int(math.Ceil(float64(total) / float64(limit)))
	}

	return res
}

// TransformFields converts the fields of a struct into a map of updated fields.
func TransformFields(data any) map[string]any {
	val := reflect.ValueOf(data)
	typ := reflect.TypeOf(data)

	updatedFields := make(map[string]any)

	for index := range val.NumField() {
		field := val.Field(index)
		if field.IsZero() {
			continue
		}

		fieldName := typ.Field(index).Tag.Get("db")
		if fieldName == "" || fieldName == "-" {
			continue
		}

		updatedFields[fieldName] = field.Interface()
	}

	updatedFields[constant.FieldUpdatedAt] = timezone.Now()

	return updatedFields
}

func FilterByID(id any, fieldID, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    fieldID,
				Value:    id,
				Operator: dto.FilterOperatorEq,
				Table:    table,
			},
		},
	}
}

// BuildCacheKey joins prefix and parts with ':'.
func BuildCacheKey(prefix string, parts ...any) string {
	key := prefix

	for _, part := range parts {
		key += fmt.Sprintf(":%v", part)
	}

	return key
}

// BuildCacheKeyWithQuery derives a stable key from the query params and filter of a list call.
func BuildCacheKeyWithQuery(prefix string, params dto.QueryParams, filter dto.FilterGroup) string {
	where, args := filter.GetWhereClause()

	payload, err := json.Marshal(struct {
		Params dto.QueryParams `json:"params"`
		Where  string          `json:"where"`
		Args   map[string]any  `json:"args"`
	}{params, where, args})
	if err != nil {
		log.Warn().Err(err).Str("prefix", prefix).Msg("failed to marshal cache key payload")

		return prefix
	}

	sum := sha256.Sum256(payload)

	return prefix + ":" + hex.EncodeToString(sum[:])
}

// InvalidateCaches clears every key that starts with one of prefixes.
func InvalidateCaches(ctx context.Context, c cache.RedisCache, prefixes ...string) {
	for _, prefix := range prefixes {
		if err := c.Clear(ctx, prefix+constant.Asterix); err != nil {
			log.Warn().Err(err).Str("prefix", prefix).Msg("failed to invalidate cache")
		}
	}
}

// UserFromContext returns the caller id and role set by the auth middleware.
func UserFromContext(ctx context.Context) (int64, string, bool) {
	userID, ok := ctx.Value(constant.ContextKeyUserID).(int64)
	if !ok {
		return 0, "", false
	}

	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	return userID, role, true
}

// IsAdmin reports whether the caller in ctx acts with staff rights: an admin
// or an internal system caller.
func IsAdmin(ctx context.Context) bool {
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	return role == constant.RoleAdmin || role == constant.RoleSystem
}
