package content

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Quiz represents a quiz made of ordered questions
type Quiz struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string    `json:"title" gorm:"size:200;not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Quiz) TableName() string { return "quizzes" }

func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	ensureID(&q.ID)
	return nil
}

// Question belongs to one quiz; it may carry an image and/or a video
type Question struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	QuizID    uuid.UUID `json:"quiz_id" gorm:"type:uuid;not null;index:idx_questions_quiz_position,priority:1"`
	Position  int       `json:"position" gorm:"not null;default:-1;index:idx_questions_quiz_position,priority:2"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	ImageData []byte    `json:"image_data,omitempty"`
	ImageMime string    `json:"image_mime,omitempty" gorm:"size:100"`
	VideoPath string    `json:"video_path,omitempty" gorm:"size:500"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string { return "questions" }

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	ensureID(&q.ID)
	return nil
}

// SetMedia replaces the question's media columns.
func (q *Question) SetMedia(m QuestionMedia) {
	q.ImageData = nil
	q.ImageMime = ""
	if m.Image != nil {
		q.ImageData = m.Image.Data
		q.ImageMime = m.Image.MimeType
	}
	q.VideoPath = m.VideoPath
}

// Option is one answer choice of a question, ordered per question
type Option struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	QuestionID uuid.UUID `json:"question_id" gorm:"type:uuid;not null;index:idx_options_question_position,priority:1"`
	Position   int       `json:"position" gorm:"not null;default:-1;index:idx_options_question_position,priority:2"`
	Text       string    `json:"text" gorm:"type:text;not null"`
	IsCorrect  bool      `json:"is_correct" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Option) TableName() string { return "options" }

func (o *Option) BeforeCreate(tx *gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// QuestionMedia is the optional media of a question. Image and video are
// independent of each other.
type QuestionMedia struct {
	Image     *ImagePayload
	VideoPath string
}

// NewQuestionMedia validates raw media fields. An image needs both data and a
// matching mime type; a lone half is rejected.
func NewQuestionMedia(imageData []byte, imageMime, videoPath string) (QuestionMedia, error) {
	if err := checkImage(imageData, imageMime, false); err != nil {
		return QuestionMedia{}, &PayloadError{Reason: err.Error()}
	}
	m := QuestionMedia{VideoPath: strings.TrimSpace(videoPath)}
	if len(imageData) > 0 {
		m.Image = &ImagePayload{Data: imageData, MimeType: imageMime}
	}
	return m, nil
}

// QuestionSpec describes a question to be created.
type QuestionSpec struct {
	Text  string
	Media QuestionMedia
}

func (s QuestionSpec) Validate() error {
	if strings.TrimSpace(s.Text) == "" {
		return &PayloadError{Reason: "question requires text"}
	}
	if s.Media.Image != nil {
		if err := checkImage(s.Media.Image.Data, s.Media.Image.MimeType, true); err != nil {
			return &PayloadError{Reason: err.Error()}
		}
	}
	return nil
}

// OptionSpec describes an option to be created.
type OptionSpec struct {
	Text      string
	IsCorrect bool
}

func (s OptionSpec) Validate() error {
	if strings.TrimSpace(s.Text) == "" {
		return &PayloadError{Reason: "option requires text"}
	}
	return nil
}
