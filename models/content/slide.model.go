package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SlideType string

const (
	SlideText  SlideType = "text"
	SlideImage SlideType = "image"
	SlideVideo SlideType = "video"
)

// Slide is one ordered page of a module. Only the payload columns belonging to
// Type are populated; the rest stay zero.
type Slide struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ModuleID  uuid.UUID `json:"module_id" gorm:"type:uuid;not null;index:idx_slides_module_position,priority:1"`
	Position  int       `json:"position" gorm:"not null;default:-1;index:idx_slides_module_position,priority:2"`
	Type      SlideType `json:"type" gorm:"size:16;not null"`
	Title     string    `json:"title" gorm:"size:200"`
	Body      string    `json:"body,omitempty" gorm:"type:text"`
	ImageData []byte    `json:"image_data,omitempty"`
	ImageMime string    `json:"image_mime,omitempty" gorm:"size:100"`
	VideoPath string    `json:"video_path,omitempty" gorm:"size:500"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Slide) TableName() string { return "slides" }

func (s *Slide) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

// SetPayload stores p and clears every column that belongs to another shape.
func (s *Slide) SetPayload(p SlidePayload) {
	s.Type = p.SlideType()
	s.Body, s.ImageData, s.ImageMime, s.VideoPath = "", nil, "", ""
	switch v := p.(type) {
	case TextPayload:
		s.Body = v.Body
	case ImagePayload:
		s.ImageData = v.Data
		s.ImageMime = v.MimeType
	case VideoPayload:
		s.VideoPath = v.Path
	}
}

// Payload rebuilds the typed payload from the stored columns.
func (s *Slide) Payload() (SlidePayload, error) {
	return NewSlidePayload(s.Type, s.Body, s.ImageData, s.ImageMime, s.VideoPath)
}

// SlideSpec describes a slide to be created.
type SlideSpec struct {
	Title   string
	Payload SlidePayload
}

// Validate checks that the spec carries exactly one well-formed payload.
func (s SlideSpec) Validate() error {
	if s.Payload == nil {
		return &PayloadError{Reason: "slide requires a payload"}
	}
	if err := s.Payload.validate(); err != nil {
		return &PayloadError{Reason: err.Error()}
	}
	return nil
}
