package controllers_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	controllers "github.com/Sean-Brix/RiderMind-sub003/controllers/content"
	"github.com/Sean-Brix/RiderMind-sub003/graph"
	"github.com/Sean-Brix/RiderMind-sub003/lifecycle"
	"github.com/Sean-Brix/RiderMind-sub003/progress"
	"github.com/Sean-Brix/RiderMind-sub003/routers"
	"github.com/Sean-Brix/RiderMind-sub003/sequencer"
	"github.com/Sean-Brix/RiderMind-sub003/testutil"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    sonic.NoCopyRawMessage `json:"data"`
	Error   struct {
		Kind   string `json:"kind"`
		Entity string `json:"entity"`
	} `json:"error"`
}

func newApp(t *testing.T, dev bool) *fiber.App {
	t.Helper()
	store := testutil.Store(t)
	log := testutil.Logger(t)
	seq := sequencer.New(log)
	tracker := progress.New(store, log)
	g := graph.New(store, seq, tracker, log)
	ops := lifecycle.New(store, g, seq, tracker, log, 0)
	return routers.NewApp(controllers.New(g, ops, tracker, log), routers.Options{DevEndpoints: dev})
}

func do(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := sonic.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, sonic.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, sonic.Unmarshal(env.Data, &v))
	return v
}

type entity struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Position int       `json:"position"`
}

func createModule(t *testing.T, app *fiber.App, title string) uuid.UUID {
	t.Helper()
	status, env := do(t, app, http.MethodPost, "/modules", map[string]string{"title": title})
	require.Equal(t, http.StatusCreated, status, env.Message)
	return decode[entity](t, env).ID
}

func TestHealth(t *testing.T) {
	app := newApp(t, false)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestModuleValidation(t *testing.T) {
	app := newApp(t, false)

	status, env := do(t, app, http.MethodPost, "/modules", map[string]string{"description": "no title"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", env.Error.Kind)

	status, _ = do(t, app, http.MethodGet, "/modules/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = do(t, app, http.MethodGet, "/modules/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Error.Kind)
	assert.Equal(t, "module", env.Error.Entity)
}

func TestSlidesOverHTTP(t *testing.T) {
	app := newApp(t, false)
	mod := createModule(t, app, "Basics")
	base := "/modules/" + mod.String() + "/slides"

	status, env := do(t, app, http.MethodPost, base, map[string]interface{}{"type": "text", "title": "A", "body": "a"})
	require.Equal(t, http.StatusCreated, status, env.Message)
	a := decode[entity](t, env)

	status, env = do(t, app, http.MethodPost, base, map[string]interface{}{"type": "video", "title": "B", "video_path": "/v/b.mp4"})
	require.Equal(t, http.StatusCreated, status, env.Message)
	b := decode[entity](t, env)

	status, env = do(t, app, http.MethodPost, base, map[string]interface{}{"type": "text", "title": "C", "body": "c", "index": 0})
	require.Equal(t, http.StatusCreated, status, env.Message)
	c := decode[entity](t, env)
	assert.Equal(t, 0, c.Position)

	// a video slide without a path is rejected and nothing is written
	status, env = do(t, app, http.MethodPost, base, map[string]interface{}{"type": "video", "title": "D"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_PAYLOAD", env.Error.Kind)

	status, env = do(t, app, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, status)
	slides := decode[[]entity](t, env)
	require.Len(t, slides, 3)
	assert.Equal(t, []uuid.UUID{c.ID, a.ID, b.ID}, []uuid.UUID{slides[0].ID, slides[1].ID, slides[2].ID})

	status, _ = do(t, app, http.MethodPatch, "/slides/"+b.ID.String()+"/position", map[string]int{"position": 0})
	require.Equal(t, http.StatusOK, status)

	status, env = do(t, app, http.MethodPut, base+"/order", map[string][]string{"ids": {a.ID.String(), b.ID.String()}})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_ORDERING", env.Error.Kind)

	status, _ = do(t, app, http.MethodDelete, "/slides/"+b.ID.String(), nil)
	require.Equal(t, http.StatusOK, status)

	_, env = do(t, app, http.MethodGet, base, nil)
	slides = decode[[]entity](t, env)
	require.Len(t, slides, 2)
	assert.Equal(t, 0, slides[0].Position)
	assert.Equal(t, 1, slides[1].Position)
}

func TestCategoryMembershipOverHTTP(t *testing.T) {
	app := newApp(t, false)
	m1 := createModule(t, app, "M1")
	m2 := createModule(t, app, "M2")

	status, env := do(t, app, http.MethodPost, "/categories", map[string]string{"title": "Beginner"})
	require.Equal(t, http.StatusCreated, status)
	cat := decode[entity](t, env).ID
	members := "/categories/" + cat.String() + "/modules"

	status, _ = do(t, app, http.MethodPost, members, map[string]string{"module_id": m1.String()})
	require.Equal(t, http.StatusCreated, status)
	status, _ = do(t, app, http.MethodPost, members, map[string]interface{}{"module_id": m2.String(), "index": 0})
	require.Equal(t, http.StatusCreated, status)

	status, env = do(t, app, http.MethodPost, members, map[string]string{"module_id": m1.String()})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "DUPLICATE_MEMBERSHIP", env.Error.Kind)

	status, env = do(t, app, http.MethodGet, "/categories/"+cat.String(), nil)
	require.Equal(t, http.StatusOK, status)
	detail := decode[struct {
		Modules []entity `json:"modules"`
	}](t, env)
	require.Len(t, detail.Modules, 2)
	assert.Equal(t, m2, detail.Modules[0].ID)
	assert.Equal(t, m1, detail.Modules[1].ID)

	status, env = do(t, app, http.MethodDelete, "/modules/"+m2.String(), nil)
	require.Equal(t, http.StatusOK, status)
	counts := decode[struct {
		Counts map[string]int64 `json:"countsBySubEntity"`
	}](t, env)
	assert.Equal(t, int64(1), counts.Counts["categoryMemberships"])

	_, env = do(t, app, http.MethodGet, "/categories/"+cat.String(), nil)
	detail = decode[struct {
		Modules []entity `json:"modules"`
	}](t, env)
	require.Len(t, detail.Modules, 1)
	assert.Equal(t, m1, detail.Modules[0].ID)
}

func TestProgressOverHTTP(t *testing.T) {
	app := newApp(t, false)
	mod := createModule(t, app, "M1")
	student := uuid.New()
	base := "/students/" + student.String()

	status, _ := do(t, app, http.MethodPost, base+"/modules/"+mod.String()+"/visit", nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = do(t, app, http.MethodPost, base+"/modules/"+mod.String()+"/complete", nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = do(t, app, http.MethodPost, base+"/modules/"+uuid.NewString()+"/visit", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env := do(t, app, http.MethodGet, base+"/progress", nil)
	require.Equal(t, http.StatusOK, status)
	out := decode[struct {
		Summary progress.Summary `json:"summary"`
	}](t, env)
	assert.Equal(t, int64(1), out.Summary.Total)
	assert.Equal(t, int64(1), out.Summary.Completed)
}

func TestDevEndpoints(t *testing.T) {
	app := newApp(t, true)

	status, env := do(t, app, http.MethodPost, "/dev/seed-modules", map[string]interface{}{"count": 3})
	require.Equal(t, http.StatusCreated, status, env.Message)
	res := decode[lifecycle.Result](t, env)
	assert.Equal(t, int64(3), res.Counts["modules"])

	status, _ = do(t, app, http.MethodPost, "/dev/seed-modules", map[string]interface{}{"count": 0})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = do(t, app, http.MethodGet, "/dev/integrity", nil)
	require.Equal(t, http.StatusOK, status)
	report := decode[lifecycle.AuditReport](t, env)
	assert.Empty(t, report.Violations)

	status, env = do(t, app, http.MethodDelete, "/dev/clear-modules", nil)
	require.Equal(t, http.StatusOK, status)
	res = decode[lifecycle.Result](t, env)
	assert.Equal(t, int64(3), res.Counts["modules"])

	status, env = do(t, app, http.MethodDelete, "/dev/clear-quizzes", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "NOTHING_TO_CLEAR", env.Error.Kind)

	status, env = do(t, app, http.MethodGet, "/dev/runs?limit=10", nil)
	require.Equal(t, http.StatusOK, status)
	runs := decode[[]struct {
		Operation string `json:"operation"`
	}](t, env)
	assert.GreaterOrEqual(t, len(runs), 2)
}

func TestDevEndpointsDisabled(t *testing.T) {
	app := newApp(t, false)
	status, _ := do(t, app, http.MethodPost, "/dev/seed-modules", map[string]interface{}{"count": 1})
	assert.Equal(t, http.StatusNotFound, status)
}
