package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seoulmaps/placemeta/internal/model"
)

func validHomeRaw() map[string]any {
	return map[string]any{
		"name":           "어머니대성집",
		"address":        "서울 동대문구 왕산로11길 4",
		"business_hours": "매일 00:00 - 24:00",
		"hours": []map[string]any{
			{"day": "월", "time": "00:00 - 24:00"},
			{"day": "공휴일", "time": "00:00 - 24:00"},
		},
	}
}

func TestHome_Valid(t *testing.T) {
	p, err := Home(validHomeRaw())
	require.NoError(t, err)
	assert.Equal(t, "어머니대성집", p.Name)
	assert.Equal(t, "서울 동대문구 왕산로11길 4", p.Address)
	require.Len(t, p.Hours, 2)
	assert.Equal(t, "공휴일", p.Hours[1].Day)
}

func TestHome_MissingAddress(t *testing.T) {
	raw := validHomeRaw()
	delete(raw, "address")

	_, err := Home(raw)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "address", ve.Field)
	assert.Equal(t, "required", ve.Constraint)
}

func TestHome_WrongTypeFailsLikeAbsent(t *testing.T) {
	raw := validHomeRaw()
	raw["business_hours"] = 42

	_, err := Home(raw)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "business_hours", ve.Field)
}

func TestHome_HoursEntryMissingTime(t *testing.T) {
	raw := validHomeRaw()
	raw["hours"] = []map[string]any{{"day": "월"}}

	_, err := Home(raw)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "hours[0].time", ve.Field)
}

func TestHome_NameOptional(t *testing.T) {
	raw := validHomeRaw()
	delete(raw, "name")

	p, err := Home(raw)
	require.NoError(t, err)
	assert.Empty(t, p.Name)
}

func TestReviews_AuthorRequired(t *testing.T) {
	reviews := []model.Review{{Author: "홍길동"}, {Author: ""}}

	_, err := Reviews(reviews)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "reviews[1].author", ve.Field)

	out, err := Reviews(reviews[:1])
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestBlog_NilMeansNoBlog(t *testing.T) {
	b, err := Blog(nil)
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestBlog_RequiredFields(t *testing.T) {
	raw := map[string]any{
		"title":    "혼밥 성지 후기",
		"blog_url": "https://blog.example.com/post/1",
		"author":   "먹보",
		"date":     "2023. 08. 15. 14:30",
		"content":  "본문",
		"images":   []string{"https://img.example.com/1.jpg"},
	}
	b, err := Blog(raw)
	require.NoError(t, err)
	assert.Equal(t, "혼밥 성지 후기", b.Title)
	assert.Equal(t, []string{"https://img.example.com/1.jpg"}, b.Images)

	delete(raw, "blog_url")
	_, err = Blog(raw)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "blog_url", ve.Field)
}

func TestBlog_OptionalFieldsPassThrough(t *testing.T) {
	b, err := Blog(map[string]any{
		"title":    "제목",
		"blog_url": "https://blog.example.com/post/2",
	})
	require.NoError(t, err)
	assert.Empty(t, b.Author)
	assert.Empty(t, b.DateText)
	assert.Nil(t, b.Images)
}

func TestPhotos_Valid(t *testing.T) {
	photos, err := Photos(map[string]any{
		"images": []map[string]any{
			{"image_url": "https://img.example.com/a.jpg", "width": 640, "height": 480},
		},
	})
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, 640, photos[0].Width)
}

func TestPhotos_MissingURL(t *testing.T) {
	_, err := Photos(map[string]any{
		"images": []map[string]any{{"width": 640, "height": 480}},
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "images[0].image_url", ve.Field)
}

func TestPhotos_EmptyListIsValid(t *testing.T) {
	photos, err := Photos(map[string]any{})
	require.NoError(t, err)
	assert.Empty(t, photos)
}

func TestValidationError_Message(t *testing.T) {
	err := error(&ValidationError{Field: "address", Constraint: "required"})
	assert.Equal(t, `validate: field "address": required`, err.Error())
	assert.True(t, errors.As(err, new(*ValidationError)))
}
