package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestNewSlidePayload(t *testing.T) {
	tests := []struct {
		name      string
		slideType SlideType
		body      string
		data      []byte
		mime      string
		video     string
		want      SlidePayload
		wantErr   string
	}{
		{name: "text", slideType: SlideText, body: "Check your mirrors", want: TextPayload{Body: "Check your mirrors"}},
		{name: "image", slideType: SlideImage, data: pngBytes, mime: "image/png", want: ImagePayload{Data: pngBytes, MimeType: "image/png"}},
		{name: "video", slideType: SlideVideo, video: "videos/braking.mp4", want: VideoPayload{Path: "videos/braking.mp4"}},
		{name: "video path on text slide", slideType: SlideText, body: "x", video: "a.mp4", wantErr: "video path present on text slide"},
		{name: "body on image slide", slideType: SlideImage, body: "x", data: pngBytes, mime: "image/png", wantErr: "body present on image slide"},
		{name: "image on video slide", slideType: SlideVideo, video: "a.mp4", mime: "image/png", wantErr: "image present on video slide"},
		{name: "empty text", slideType: SlideText, wantErr: "text slide requires a body"},
		{name: "image without mime", slideType: SlideImage, data: pngBytes, wantErr: "image data given without mime type"},
		{name: "mime mismatch", slideType: SlideImage, data: pngBytes, mime: "image/jpeg", wantErr: "image data is image/png, declared image/jpeg"},
		{name: "non image mime", slideType: SlideImage, data: pngBytes, mime: "text/plain", wantErr: "not an image type"},
		{name: "unknown type", slideType: "audio", wantErr: "unknown slide type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewSlidePayload(tt.slideType, tt.body, tt.data, tt.mime, tt.video)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				var pe *PayloadError
				assert.ErrorAs(t, err, &pe)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSlideSetPayloadClearsOtherShapes(t *testing.T) {
	s := &Slide{}
	s.SetPayload(ImagePayload{Data: pngBytes, MimeType: "image/png"})
	assert.Equal(t, SlideImage, s.Type)

	s.SetPayload(VideoPayload{Path: "v.mp4"})
	assert.Equal(t, SlideVideo, s.Type)
	assert.Nil(t, s.ImageData)
	assert.Empty(t, s.ImageMime)

	p, err := s.Payload()
	require.NoError(t, err)
	assert.Equal(t, VideoPayload{Path: "v.mp4"}, p)
}

func TestNewQuestionMedia(t *testing.T) {
	m, err := NewQuestionMedia(pngBytes, "image/png", "clip.mp4")
	require.NoError(t, err)
	require.NotNil(t, m.Image)
	assert.Equal(t, "clip.mp4", m.VideoPath)

	m, err = NewQuestionMedia(nil, "", "")
	require.NoError(t, err)
	assert.Nil(t, m.Image)

	_, err = NewQuestionMedia(nil, "image/png", "")
	assert.Error(t, err)
}

func TestSpecsValidate(t *testing.T) {
	assert.Error(t, QuestionSpec{Text: "  "}.Validate())
	assert.NoError(t, QuestionSpec{Text: "Which lane?"}.Validate())
	assert.Error(t, OptionSpec{}.Validate())
	assert.NoError(t, OptionSpec{Text: "Left", IsCorrect: true}.Validate())
}
