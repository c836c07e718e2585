package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seoulmaps/placemeta/internal/model"
)

func init() {
	// Replace global logger with a no-op to avoid noisy output in tests.
	zap.ReplaceGlobals(zap.NewNop())
}

func testGraph() *model.Graph {
	follow := false
	visitInfo := "방문 포장"
	return &model.Graph{
		Place: model.Place{
			Name:          "어머니대성집",
			Address:       "서울 동대문구 왕산로11길 4",
			BusinessHours: "매일 00:00 - 24:00",
			Hours: []model.HoursEntry{
				{Day: "월", Time: "00:00 - 24:00"},
				{Day: "화", Time: "00:00 - 24:00"},
			},
		},
		Reviews: []model.Review{
			{
				Author:    "홍길동",
				Follow:    &follow,
				VisitInfo: &visitInfo,
				Body:      "맛있어요 정말",
				Tags:      []string{"음식이 맛있어요"},
			},
			{Author: "김철수"},
		},
		Blog: &model.Blog{
			Title:    "혼밥 성지 후기",
			Author:   "먹보",
			DateText: "2023. 08. 15. 14:30",
			Content:  "본문",
			URL:      "https://blog.example.com/post/1",
			Images:   []string{"https://img.example.com/1.jpg", "https://img.example.com/2.jpg"},
		},
		Photos: []model.Photo{
			{URL: "https://img.example.com/p1.jpg", Width: 640, Height: 480},
			{URL: "https://img.example.com/p2.jpg", Width: 800, Height: 600},
			{URL: "https://img.example.com/p3.jpg", Width: 400, Height: 300},
		},
	}
}

func TestSavePlaceGraph_FullGraph(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	g := testGraph()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO place \(`).
		WithArgs(g.Place.Name, g.Place.Address, g.Place.BusinessHours).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))
	for range g.Place.Hours {
		mock.ExpectExec("INSERT INTO place_hours").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	for range g.Reviews {
		mock.ExpectExec("INSERT INTO review").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectQuery(`INSERT INTO blog \(`).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))
	for range g.Blog.Images {
		mock.ExpectExec("INSERT INTO blog_image").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	for range g.Photos {
		mock.ExpectExec("INSERT INTO place_photo").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()

	placeID, err := NewWithPool(mock).SavePlaceGraph(context.Background(), g)
	require.NoError(t, err)
	assert.Equal(t, int64(7), placeID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePlaceGraph_NoBlog(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	g := testGraph()
	g.Blog = nil
	g.Photos = g.Photos[:1]

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO place \(`).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
	for range g.Place.Hours {
		mock.ExpectExec("INSERT INTO place_hours").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	for range g.Reviews {
		mock.ExpectExec("INSERT INTO review").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectExec("INSERT INTO place_photo").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	_, err = NewWithPool(mock).SavePlaceGraph(context.Background(), g)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePlaceGraph_ReviewFailureRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	g := testGraph()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO place \(`).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))
	for range g.Place.Hours {
		mock.ExpectExec("INSERT INTO place_hours").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectExec("INSERT INTO review").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err = NewWithPool(mock).SavePlaceGraph(context.Background(), g)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet(), "no row past the failure may be written")
}

func TestSavePlaceGraph_MalformedBlogDateRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	g := testGraph()
	g.Blog.DateText = "August 15th, 2023"

	// Place, hours and reviews are staged before the date parse fails;
	// the rollback must discard all of them.
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO place \(`).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))
	for range g.Place.Hours {
		mock.ExpectExec("INSERT INTO place_hours").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	for range g.Reviews {
		mock.ExpectExec("INSERT INTO review").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectRollback()

	_, err = NewWithPool(mock).SavePlaceGraph(context.Background(), g)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse blog date")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePlaceGraph_BlogDateParsed(t *testing.T) {
	parsed, err := time.Parse(model.BlogDateLayout, "2023. 08. 15. 14:30")
	require.NoError(t, err)
	assert.Equal(t, 2023, parsed.Year())
	assert.Equal(t, time.August, parsed.Month())
	assert.Equal(t, 15, parsed.Day())
	assert.Equal(t, 14, parsed.Hour())
	assert.Equal(t, 30, parsed.Minute())
}

func TestEnsureSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS place").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, NewWithPool(mock).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPlace(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, COALESCE").
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "address", "business_hours", "created_at"}).
			AddRow(int64(7), "어머니대성집", "서울 동대문구 왕산로11길 4", "매일", now))

	p, err := NewWithPool(mock).GetPlace(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "어머니대성집", p.Name)
	assert.Equal(t, now, p.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPlaces(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, COALESCE").
		WithArgs(2).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "address", "business_hours", "created_at"}).
			AddRow(int64(2), "b", "addr b", "", now).
			AddRow(int64(1), "a", "addr a", "", now))

	places, err := NewWithPool(mock).ListPlaces(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, places, 2)
	assert.Equal(t, int64(2), places[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
