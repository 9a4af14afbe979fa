// Package dto holds the request bodies of the content API with their
// validation rules.
package dto

type ModuleRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
}

type ModuleUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
}

type CategoryRequest = ModuleRequest
type CategoryUpdateRequest = ModuleUpdateRequest
type QuizRequest = ModuleRequest
type QuizUpdateRequest = ModuleUpdateRequest

// Index is the optional insert position shared by every create-child body.
// A missing index appends.
type Index struct {
	Index *int `json:"index"`
}

type SlideRequest struct {
	Index
	Title     string `json:"title" validate:"max=200"`
	Type      string `json:"type" validate:"required,oneof=text image video"`
	Body      string `json:"body"`
	ImageData []byte `json:"image_data"`
	ImageMime string `json:"image_mime" validate:"max=100"`
	VideoPath string `json:"video_path" validate:"max=500"`
}

// SlideUpdateRequest replaces the payload when Type is set; the payload fields
// are then read as in SlideRequest.
type SlideUpdateRequest struct {
	Title     *string `json:"title" validate:"omitempty,max=200"`
	Type      *string `json:"type" validate:"omitempty,oneof=text image video"`
	Body      string  `json:"body"`
	ImageData []byte  `json:"image_data"`
	ImageMime string  `json:"image_mime" validate:"max=100"`
	VideoPath string  `json:"video_path" validate:"max=500"`
}

type ObjectiveRequest struct {
	Index
	Text string `json:"text" validate:"required,max=1000"`
}

type MembershipRequest struct {
	Index
	ModuleID string `json:"module_id" validate:"required,uuid"`
}

type MediaRequest struct {
	ImageData []byte `json:"image_data"`
	ImageMime string `json:"image_mime" validate:"max=100"`
	VideoPath string `json:"video_path" validate:"max=500"`
}

type QuestionRequest struct {
	Index
	MediaRequest
	Text string `json:"text" validate:"required"`
}

// QuestionUpdateRequest replaces all media when Media is present.
type QuestionUpdateRequest struct {
	Text  *string       `json:"text" validate:"omitempty,min=1"`
	Media *MediaRequest `json:"media"`
}

type OptionRequest struct {
	Index
	Text      string `json:"text" validate:"required,max=1000"`
	IsCorrect bool   `json:"is_correct"`
}

type OptionUpdateRequest struct {
	Text      *string `json:"text" validate:"omitempty,min=1,max=1000"`
	IsCorrect *bool   `json:"is_correct"`
}

type PositionRequest struct {
	Position *int `json:"position" validate:"required"`
}

// ReorderRequest is the complete new order of a sibling group.
type ReorderRequest struct {
	IDs []string `json:"ids" validate:"dive,uuid"`
}

type SeedRequest struct {
	Count     int    `json:"count" validate:"required,min=1,max=500"`
	Generator string `json:"generator" validate:"omitempty,oneof=template fixtures"`
	Prefix    string `json:"prefix" validate:"max=100"`
}

type ListQuery struct {
	Page  int `query:"page" validate:"omitempty,min=1"`
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}

type RunsQuery struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=200"`
}

type AuditQuery struct {
	Repair bool `query:"repair"`
}
