package content

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// SlidePayload is the tagged union carried by a slide. The concrete types are
// TextPayload, ImagePayload and VideoPayload.
type SlidePayload interface {
	SlideType() SlideType
	validate() error
}

type TextPayload struct {
	Body string
}

type ImagePayload struct {
	Data     []byte
	MimeType string
}

type VideoPayload struct {
	Path string
}

func (TextPayload) SlideType() SlideType  { return SlideText }
func (ImagePayload) SlideType() SlideType { return SlideImage }
func (VideoPayload) SlideType() SlideType { return SlideVideo }

func (p TextPayload) validate() error {
	if strings.TrimSpace(p.Body) == "" {
		return fmt.Errorf("text slide requires a body")
	}
	return nil
}

func (p ImagePayload) validate() error {
	return checkImage(p.Data, p.MimeType, true)
}

func (p VideoPayload) validate() error {
	if strings.TrimSpace(p.Path) == "" {
		return fmt.Errorf("video slide requires a path")
	}
	return nil
}

// PayloadError is returned when raw fields do not form exactly one payload shape.
type PayloadError struct {
	Reason string
}

func (e *PayloadError) Error() string { return e.Reason }

// NewSlidePayload builds the payload for slideType from raw request fields and
// rejects any field that belongs to a different shape.
func NewSlidePayload(slideType SlideType, body string, imageData []byte, imageMime, videoPath string) (SlidePayload, error) {
	var p SlidePayload
	var foreign []string

	switch slideType {
	case SlideText:
		p = TextPayload{Body: body}
		if len(imageData) > 0 || imageMime != "" {
			foreign = append(foreign, "image")
		}
		if videoPath != "" {
			foreign = append(foreign, "video path")
		}
	case SlideImage:
		p = ImagePayload{Data: imageData, MimeType: imageMime}
		if body != "" {
			foreign = append(foreign, "body")
		}
		if videoPath != "" {
			foreign = append(foreign, "video path")
		}
	case SlideVideo:
		p = VideoPayload{Path: videoPath}
		if body != "" {
			foreign = append(foreign, "body")
		}
		if len(imageData) > 0 || imageMime != "" {
			foreign = append(foreign, "image")
		}
	default:
		return nil, &PayloadError{Reason: fmt.Sprintf("unknown slide type %q", slideType)}
	}

	if len(foreign) > 0 {
		return nil, &PayloadError{Reason: fmt.Sprintf("%s present on %s slide", strings.Join(foreign, " and "), slideType)}
	}
	if err := p.validate(); err != nil {
		return nil, &PayloadError{Reason: err.Error()}
	}
	return p, nil
}

// checkImage verifies that data and mime travel together and that the declared
// mime type matches the bytes.
func checkImage(data []byte, mime string, required bool) error {
	if len(data) == 0 && mime == "" {
		if required {
			return fmt.Errorf("image requires data and mime type")
		}
		return nil
	}
	if len(data) == 0 {
		return fmt.Errorf("image mime type given without data")
	}
	if mime == "" {
		return fmt.Errorf("image data given without mime type")
	}
	if !strings.HasPrefix(mime, "image/") {
		return fmt.Errorf("mime type %q is not an image type", mime)
	}
	detected := mimetype.Detect(data)
	if !detected.Is(mime) {
		return fmt.Errorf("image data is %s, declared %s", detected.String(), mime)
	}
	return nil
}
