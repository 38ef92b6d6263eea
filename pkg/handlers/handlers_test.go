package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arnavshah/rotation-api-go/pkg/auth"
	"github.com/arnavshah/rotation-api-go/pkg/database"
	"github.com/arnavshah/rotation-api-go/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	h      *Handler
	router *gin.Engine
	key    string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open("", filepath.Join(t.TempDir(), "handlers.db"))
	require.NoError(t, err)

	authn := auth.New("jwt-secret", "master-secret", time.Hour)
	h := New(db, authn, Options{
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		MaxWeeks:     60,
		CacheEntries: 16,
	})
	return &testServer{h: h, router: NewRouter(h, gin.Recovery()), key: authn.GenerateKey("house")}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func smallInput(weeks int) models.ScheduleInput {
	return models.ScheduleInput{
		People: []string{"A", "B", "C", "D"},
		Tasks: []models.TaskInput{
			{Name: "Living Room", People: 2},
			{Name: "Toilets", People: 1},
		},
		StartWeek: "2024-09-02",
		Weeks:     weeks,
	}
}

func TestPublicRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), Version)

	rec = s.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rotation_http_requests_total")
}

func TestAPIKeyMiddleware(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/schedule", smallInput(1), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	forged := auth.New("", "wrong-secret", 0).GenerateKey("house")
	rec = s.do(t, http.MethodPost, "/api/schedule", smallInput(1), forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestScheduleJSON(t *testing.T) {
	s := newTestServer(t)
	in := models.DefaultScheduleInput()
	in.Weeks = 5

	rec := s.do(t, http.MethodPost, "/api/schedule", in, s.key)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[models.ScheduleResponse](t, rec)
	assert.Equal(t, []string{"Living Room", "Toilets", "Bathroom", "Showers", "Hallways", "Kitchen", "Laundry Room"}, resp.Tasks)
	assert.False(t, resp.Truncated)
	assert.Equal(t, 5, resp.Requested)
	require.Len(t, resp.Weeks, 5)
	assert.Equal(t, "2024-09-02", resp.Weeks[0].Week)
	assert.Equal(t, "2024-09-09", resp.Weeks[1].Week)
	for _, w := range resp.Weeks {
		require.Len(t, w.Assignees, len(resp.Tasks))
	}
	// the first week is a start-of-month week, the second is not
	assert.Len(t, resp.Weeks[0].Assignees[5], 3)
	assert.Empty(t, resp.Weeks[1].Assignees[5])
	assert.Contains(t, resp.Counters, "Kitchen")

	again := s.do(t, http.MethodPost, "/api/schedule", in, s.key)
	require.Equal(t, http.StatusOK, again.Code)
	assert.JSONEq(t, rec.Body.String(), again.Body.String())
	assert.Equal(t, 1, s.h.Cache.Len())
}

func TestScheduleJSON_Truncated(t *testing.T) {
	s := newTestServer(t)
	in := smallInput(6)
	in.Leaves = map[string][]string{"2024-09-16": {"A", "B"}}

	rec := s.do(t, http.MethodPost, "/api/schedule", in, s.key)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[models.ScheduleResponse](t, rec)
	assert.True(t, resp.Truncated)
	assert.Len(t, resp.Weeks, 2)
	assert.Contains(t, resp.Reason, "no feasible assignment")
}

func TestScheduleJSON_BadInput(t *testing.T) {
	s := newTestServer(t)

	dup := smallInput(3)
	dup.People = append(dup.People, "A")
	rec := s.do(t, http.MethodPost, "/api/schedule", dup, s.key)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "duplicate person")

	rec = s.do(t, http.MethodPost, "/api/schedule", smallInput(61), s.key)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/schedule", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+s.key)
	raw := httptest.NewRecorder()
	s.router.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestScheduleJSON_DefaultWeeks(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/schedule", smallInput(0), s.key)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[models.ScheduleResponse](t, rec)
	assert.Equal(t, models.DefaultWeeks, resp.Requested)
	assert.Len(t, resp.Weeks, models.DefaultWeeks)
}

func TestGenerate_CancelledContext(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.h.Generate(ctx, smallInput(3))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, http.StatusRequestTimeout, errorStatus(err))
}

func multipartRequest(t *testing.T, files map[string]string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := w.CreateFormFile(name, name+".csv")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for name, value := range fields {
		require.NoError(t, w.WriteField(name, value))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestScheduleCSV(t *testing.T) {
	s := newTestServer(t)

	body, contentType := multipartRequest(t, map[string]string{
		"people_file": "name\nA\nB\nC\nD\n",
		"tasks_file":  "name,people,kind\nLiving Room,2,weekly\nToilets,1,\n",
		"locked_file": "week,task,person\n2024-09-02,Toilets,D\n2024-09-02,Living Room,A\n2024-09-02,Living Room,B\n",
	}, map[string]string{"start_week": "2024-09-02", "weeks": "3", "seed": "7"})

	req := httptest.NewRequest(http.MethodPost, "/api/schedule/csv", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+s.key)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decode[struct {
		CSV       string `json:"csv"`
		Truncated bool   `json:"truncated"`
	}](t, rec)
	lines := strings.Split(strings.TrimSpace(out.CSV), "\n")
	require.Len(t, lines, 1+3*2)
	assert.Equal(t, "week,task,assignees", lines[0])
	assert.Equal(t, "2024-09-02,Living Room,A|B", lines[1])
	assert.Equal(t, "2024-09-02,Toilets,D", lines[2])
	assert.False(t, out.Truncated)
}

func TestScheduleCSV_MissingFiles(t *testing.T) {
	s := newTestServer(t)

	body, contentType := multipartRequest(t, map[string]string{"people_file": "name\nA\n"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/schedule/csv", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+s.key)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScheduleCSV_BadColumns(t *testing.T) {
	s := newTestServer(t)

	body, contentType := multipartRequest(t, map[string]string{
		"people_file": "person\nA\n",
		"tasks_file":  "name,people\nToilets,1\n",
	}, map[string]string{"start_week": "2024-09-02"})
	req := httptest.NewRequest(http.MethodPost, "/api/schedule/csv", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+s.key)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `missing column \"name\"`)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteScheduleCSV(t *testing.T) {
	resp := models.ScheduleResponse{
		Tasks: []string{"Kitchen", "Toilets"},
		Weeks: []models.WeekResult{{Week: "2024-09-02", Assignees: [][]string{{"Eva", "Ivo"}, {}}}},
	}

	var sb strings.Builder
	require.NoError(t, writeScheduleCSV(&sb, resp))
	assert.Equal(t, "week,task,assignees\n2024-09-02,Kitchen,Eva|Ivo\n2024-09-02,Toilets,\n", sb.String())

	assert.EqualError(t, writeScheduleCSV(failingWriter{}, resp), "disk full")
}

func TestValidateInput(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/validate", smallInput(3), s.key)
	require.Equal(t, http.StatusOK, rec.Code)
	ok := decode[map[string]any](t, rec)
	assert.Equal(t, true, ok["valid"])
	assert.Empty(t, ok["warnings"])

	crowded := smallInput(3)
	crowded.People = []string{"A", "B"}
	rec = s.do(t, http.MethodPost, "/api/validate", crowded, s.key)
	warned := decode[map[string]any](t, rec)
	assert.Equal(t, true, warned["valid"])
	assert.Len(t, warned["warnings"], 1)

	broken := smallInput(3)
	broken.Tasks[0].Kind = "yearly"
	rec = s.do(t, http.MethodPost, "/api/validate", broken, s.key)
	bad := decode[map[string]any](t, rec)
	assert.Equal(t, false, bad["valid"])
	assert.Contains(t, bad["error"], "unknown task kind")
}

func TestGetMyUsage(t *testing.T) {
	s := newTestServer(t)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/schedule", smallInput(4), s.key).Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/schedule", smallInput(2), s.key).Code)

	rec := s.do(t, http.MethodGet, "/api/usage", nil, s.key)
	require.Equal(t, http.StatusOK, rec.Code)

	usage := decode[struct {
		KeyName string `json:"key_name"`
		Totals  struct {
			Requests int `json:"requests"`
			Weeks    int `json:"weeks"`
			People   int `json:"people"`
		} `json:"totals"`
	}](t, rec)
	assert.Equal(t, "house", usage.KeyName)
	assert.Equal(t, 2, usage.Totals.Requests)
	assert.Equal(t, 6, usage.Totals.Weeks)
	assert.Equal(t, 8, usage.Totals.People)
}

func TestAdminFlow(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, auth.EnsureAdminExists(context.Background(), s.h.DB, "admin", "admin123", nil))

	rec := s.do(t, http.MethodGet, "/admin/keys", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/admin/login", map[string]string{"username": "admin", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/admin/login", map[string]string{"username": "admin", "password": "admin123"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[map[string]string](t, rec)["access_token"]
	require.NotEmpty(t, token)

	rec = s.do(t, http.MethodPost, "/admin/keys", map[string]any{"name": "flat-3"}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[struct {
		ID  uint   `json:"id"`
		Key string `json:"key"`
	}](t, rec)
	assert.True(t, strings.HasPrefix(created.Key, "flat-3."))

	rec = s.do(t, http.MethodPost, "/admin/keys", map[string]any{"name": "flat-3"}, token)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/admin/keys", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), created.Key, "full keys are never listed")
	assert.Contains(t, rec.Body.String(), auth.KeyPreview(created.Key))

	id := jsonID(created.ID)
	rec = s.do(t, http.MethodPut, "/admin/keys/"+id, map[string]int{"rate_limit": 50}, token)
	assert.Equal(t, http.StatusOK, rec.Code)

	// the generated key works against the API
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/schedule", smallInput(1), created.Key).Code)
	rec = s.do(t, http.MethodGet, "/admin/usage/"+id, nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"request_count":1`)

	rec = s.do(t, http.MethodDelete, "/admin/keys/"+id, nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodDelete, "/admin/keys/"+id, nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodPut, "/admin/keys/"+id, map[string]int{"rate_limit": 5}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func jsonID(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestRotations(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPut, "/api/rotations/house", smallInput(10), s.key)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	invalid := smallInput(10)
	invalid.Tasks = nil
	rec = s.do(t, http.MethodPut, "/api/rotations/broken", invalid, s.key)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/rotations", nil, s.key)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Rotations []database.SavedRotation `json:"rotations"`
	}](t, rec)
	require.Len(t, list.Rotations, 1)
	assert.Equal(t, "house", list.Rotations[0].Name)

	rec = s.do(t, http.MethodGet, "/api/rotations/house", nil, s.key)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[struct {
		Config models.ScheduleInput `json:"config"`
	}](t, rec)
	assert.Equal(t, smallInput(10), got.Config)

	rec = s.do(t, http.MethodPost, "/api/rotations/house/schedule?weeks=3", nil, s.key)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[models.ScheduleResponse](t, rec).Weeks, 3)

	rec = s.do(t, http.MethodPost, "/api/rotations/house/schedule?weeks=zero", nil, s.key)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// other keys cannot see it
	other := s.h.Auth.GenerateKey("someone-else")
	rec = s.do(t, http.MethodGet, "/api/rotations/house", nil, other)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/rotations/house", nil, s.key)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/rotations/house/schedule", nil, s.key)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
