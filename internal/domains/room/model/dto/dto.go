package dto

import (
	"mime/multipart"

	"karaoke/internal/domains/room/model"
	"karaoke/shared"
	gDto "karaoke/shared/dto"
	gModel "karaoke/shared/model"
	"karaoke/shared/timezone"
)

type CreateRoomRequest struct {
	Name         string   `json:"name"           validate:"required,max=100"`
	Type         string   `json:"type"           validate:"omitempty,max=20"`
	PricePerHour *float64 `json:"price_per_hour" validate:"required,gte=0"`
	Capacity     int      `json:"capacity"       validate:"required,min=1"`
	Status       string   `json:"status"         validate:"omitempty,oneof=available occupied maintenance"`
}

func (c *CreateRoomRequest) ToModel() model.Room {
	status := c.Status
	if status == "" {
		status = model.StatusAvailable
	}

	now := timezone.Now()

	return model.Room{
		Name:         c.Name,
		Type:         model.NormalizeType(c.Type),
		PricePerHour: *c.PricePerHour,
		Capacity:     c.Capacity,
		Status:       status,
		Metadata: gModel.Metadata{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

type UpdateRoomRequest struct {
	Name         string   `db:"name"           json:"name"           validate:"omitempty,max=100"`
	Type         string   `db:"type"           json:"type"           validate:"omitempty,max=20"`
	PricePerHour *float64 `db:"price_per_hour" json:"price_per_hour" validate:"omitempty,gte=0"`
	Capacity     *int     `db:"capacity"       json:"capacity"       validate:"omitempty,min=1"`
	Status       string   `db:"status"         json:"status"         validate:"omitempty,oneof=available occupied maintenance"`
}

type UploadImageRequest struct {
	Image     *multipart.FileHeader `json:"image" validate:"required,mimetypes=image/png image/jpg image/jpeg,maxfilesize=2"`
	ImageFile multipart.File        `json:"-"`
}

type UpdateImage struct {
	Image string `db:"image"`
}

type RoomResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	PricePerHour float64 `json:"price_per_hour"`
	Capacity     int     `json:"capacity"`
	Status       string  `json:"status"`
	Image        *string `json:"image"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(m model.Room) {
	r.ID = m.ID
	r.Name = m.Name
	r.Type = m.Type
	r.PricePerHour = m.PricePerHour
	r.Capacity = m.Capacity
	r.Status = m.Status
	r.Image = m.Image
	r.Metadata.FromModel(m.Metadata)
}

type GetRoomsResponse struct {
	Rooms []RoomResponse `json:"rooms"`
	Meta  gDto.Meta      `json:"meta"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, total, page, limit int) {
	r.Meta = gDto.Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: shared.CalculateTotalPage(total, limit),
	}

	r.Rooms = make([]RoomResponse, len(models))
	for i, m := range models {
		r.Rooms[i].FromModel(m)
	}
}
