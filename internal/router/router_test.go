package router

import (
	"bytes"
	"context"
	"encoding/gob"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/restoflow/internal/config"
	"github.com/user/restoflow/internal/handler"
	"github.com/user/restoflow/internal/middleware"
	"github.com/user/restoflow/internal/model"
	"github.com/user/restoflow/internal/report"
	"github.com/user/restoflow/internal/repository"
	"github.com/user/restoflow/internal/sentiment"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "router-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
	gob.Register(model.SessionUser{})
}

// --- Mock implementations ---

type mockFeedbackService struct {
	analyzer *sentiment.Analyzer
	submitFn func(ctx context.Context, in sentiment.Input) (*model.Feedback, error)
	reportFn func(ctx context.Context) (report.Report, error)
	samples  []report.RatingSample
}

func (m *mockFeedbackService) Submit(ctx context.Context, in sentiment.Input) (*model.Feedback, error) {
	if m.submitFn != nil {
		return m.submitFn(ctx, in)
	}
	res, err := m.analyzer.Analyze(in)
	if err != nil {
		return nil, err
	}
	return &model.Feedback{
		ID:        1,
		Rating:    in.Rating,
		Comment:   in.Comment,
		Sentiment: res.Analysis.Sentiment,
		Analysis:  res.Analysis,
	}, nil
}

func (m *mockFeedbackService) Report(ctx context.Context) (report.Report, error) {
	if m.reportFn != nil {
		return m.reportFn(ctx)
	}
	return report.Build(nil), nil
}

func (m *mockFeedbackService) RatingBreakdown(ctx context.Context) ([]report.RatingSample, error) {
	return m.samples, nil
}

func (m *mockFeedbackService) AnalyzeBatch(ctx context.Context, inputs []sentiment.Input) ([]sentiment.Result, error) {
	out := make([]sentiment.Result, len(inputs))
	for i, in := range inputs {
		res, err := m.analyzer.Analyze(in)
		if err != nil {
			return nil, err
		}
		out[i] = res
	}
	return out, nil
}

type mockFeedbackReader struct {
	records    map[int]*model.Feedback
	lastFilter model.FeedbackFilter
}

func (m *mockFeedbackReader) List(ctx context.Context, filter model.FeedbackFilter) ([]model.Feedback, error) {
	m.lastFilter = filter
	var out []model.Feedback
	for _, f := range m.records {
		out = append(out, *f)
	}
	return out, nil
}

func (m *mockFeedbackReader) Count(ctx context.Context, filter model.FeedbackFilter) (int64, error) {
	return int64(len(m.records)), nil
}

func (m *mockFeedbackReader) FindByID(ctx context.Context, id int) (*model.Feedback, error) {
	return m.records[id], nil
}

type mockUserStore struct {
	users map[string]*model.User
}

func (m *mockUserStore) Create(ctx context.Context, email, username, password, role string) (*model.User, error) {
	if _, ok := m.users[email]; ok {
		return nil, repository.ErrUserExists
	}
	u := &model.User{ID: len(m.users) + 1, Email: email, Username: username, Role: role}
	m.users[email] = u
	return u, nil
}

func (m *mockUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.users[email], nil
}

func (m *mockUserStore) FindByID(ctx context.Context, id int) (*model.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserStore) ListAll(ctx context.Context) ([]*model.User, error) {
	var out []*model.User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserStore) CheckPassword(user *model.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// --- Helpers ---

type testEnv struct {
	engine   *gin.Engine
	feedback *mockFeedbackService
	reader   *mockFeedbackReader
	users    *mockUserStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("owner-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	env := &testEnv{
		feedback: &mockFeedbackService{analyzer: sentiment.DefaultAnalyzer()},
		reader:   &mockFeedbackReader{records: map[int]*model.Feedback{}},
		users: &mockUserStore{users: map[string]*model.User{
			"owner@example.com": {ID: 1, Email: "owner@example.com", Username: "owner", PasswordHash: string(hash), Role: model.RoleAdmin},
		}},
	}
	cfg := &config.Config{Env: "test", AppSecret: testSecret, JWTExpiry: time.Hour}
	h := handler.NewHandler(env.feedback, env.reader, env.users, cfg)
	env.engine = New(h)
	return env
}

func (e *testEnv) do(method, path string, body any, role string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		token, _ := middleware.GenerateToken(1, "owner@example.com", role, testSecret, time.Hour)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

// --- Tests ---

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSubmitFeedback(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/feedback", map[string]any{
		"comment": "The food was good and the service was excellent",
		"rating":  5,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var f model.Feedback
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &f))
	assert.Equal(t, sentiment.Positive, f.Sentiment)
	assert.Equal(t, []string{"good", "excellent"}, f.Analysis.KeyPraises)
}

func TestSubmitFeedback_NonTextCommentDegrades(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{
		`{"comment": 12345, "rating": 1}`,
		`{"comment": null, "rating": 1}`,
		`{"rating": 1}`,
	} {
		rec := env.do(http.MethodPost, "/api/feedback", body, "")
		require.Equal(t, http.StatusCreated, rec.Code, body)

		var f model.Feedback
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &f))
		assert.Equal(t, "", f.Comment)
		assert.Equal(t, sentiment.Negative, f.Sentiment)
		assert.Equal(t, []string{}, f.Analysis.KeyPraises)
		assert.Equal(t, []string{}, f.Analysis.KeyIssues)
	}
}

func TestSubmitFeedback_InvalidRating(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []string{
		`{"comment": "great", "rating": 0}`,
		`{"comment": "great", "rating": 6}`,
		`{"comment": "great", "rating": 4.5}`,
		`{"comment": "great"}`,
		`not json`,
	} {
		rec := env.do(http.MethodPost, "/api/feedback", body, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.False(t, decode(t, rec).Success)
	}
}

func TestSubmitFeedback_StoreError(t *testing.T) {
	env := newTestEnv(t)
	env.feedback.submitFn = func(ctx context.Context, in sentiment.Input) (*model.Feedback, error) {
		return nil, errors.New("db down")
	}

	rec := env.do(http.MethodPost, "/api/feedback", map[string]any{"rating": 3}, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAnalyzeFeedback(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{"items": []map[string]any{
		{"comment": "cool service", "rating": 3},
		{"comment": "cooler service", "rating": 3},
	}}

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/api/feedback/analyze", body, "").Code)

	rec := env.do(http.MethodPost, "/api/feedback/analyze", body, model.RoleKitchen)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var results []sentiment.Result
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &results))
	require.Len(t, results, 2)
	assert.Equal(t, sentiment.Positive, results[0].Analysis.Sentiment)
	assert.Equal(t, sentiment.Neutral, results[1].Analysis.Sentiment)

	rec = env.do(http.MethodPost, "/api/feedback/analyze", `{"items": []}`, model.RoleKitchen)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/api/feedback/analyze", `{"items": [{"comment": "ok", "rating": 9}]}`, model.RoleKitchen)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListFeedback_Roles(t *testing.T) {
	env := newTestEnv(t)
	env.reader.records[3] = &model.Feedback{ID: 3, Rating: 4, Sentiment: sentiment.Positive}

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/feedback", nil, "").Code)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/api/feedback", nil, model.RoleKitchen).Code)

	rec := env.do(http.MethodGet, "/api/feedback?sentiment=positive&rating=4&page=2&page_size=10", nil, model.RoleCashier)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, model.FeedbackFilter{Sentiment: sentiment.Positive, Rating: 4, Limit: 10, Offset: 10}, env.reader.lastFilter)

	var page struct {
		Total    int64 `json:"total"`
		Page     int   `json:"page"`
		PageSize int   `json:"page_size"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &page))
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.PageSize)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/feedback?sentiment=angry", nil, model.RoleAdmin).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/feedback?rating=8", nil, model.RoleAdmin).Code)
}

func TestGetFeedback(t *testing.T) {
	env := newTestEnv(t)
	env.reader.records[3] = &model.Feedback{ID: 3, Rating: 4, Sentiment: sentiment.Positive}

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/feedback/3", nil, model.RoleAdmin).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/feedback/99", nil, model.RoleAdmin).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/feedback/abc", nil, model.RoleAdmin).Code)
}

func TestFeedbackReport(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/api/reports/feedback", nil, model.RoleCashier).Code)

	rec := env.do(http.MethodGet, "/api/reports/feedback", nil, model.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"total":0,"positive_count":0,"neutral_count":0,"negative_count":0,"positive_percentage":null,"sorted_listing":[]}`,
		string(decode(t, rec).Data))

	env.feedback.reportFn = func(ctx context.Context) (report.Report, error) {
		return report.Build([]model.Feedback{
			{ID: 1, Rating: 5, Sentiment: sentiment.Positive},
			{ID: 2, Rating: 5, Sentiment: sentiment.Positive},
			{ID: 3, Rating: 3, Sentiment: sentiment.Neutral},
		}), nil
	}
	rec = env.do(http.MethodGet, "/api/reports/feedback", nil, model.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)

	var rep report.Report
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &rep))
	require.NotNil(t, rep.PositivePercentage)
	assert.Equal(t, 67, *rep.PositivePercentage)
	require.Len(t, rep.SortedListing, 3)
	assert.Equal(t, 2, rep.SortedListing[0].ID)
	assert.Equal(t, 1, rep.SortedListing[1].ID)
	assert.Equal(t, 3, rep.SortedListing[2].ID)
}

func TestFeedbackRatingBreakdown(t *testing.T) {
	env := newTestEnv(t)
	env.feedback.samples = []report.RatingSample{{Rating: 4, Feedback: model.Feedback{ID: 8, Rating: 4}}}

	rec := env.do(http.MethodGet, "/api/reports/feedback/ratings", nil, model.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)

	var samples []report.RatingSample
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &samples))
	require.Len(t, samples, 1)
	assert.Equal(t, 8, samples[0].Feedback.ID)
}

func TestLoginAndMe(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/login", map[string]string{"email": "owner@example.com", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/auth/login", map[string]string{"email": "owner@example.com", "password": "owner-pass"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var payload struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &payload))
	require.NotEmpty(t, payload.Token)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+payload.Token)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	me := httptest.NewRecorder()
	env.engine.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code, me.Body.String())

	var su model.SessionUser
	require.NoError(t, json.Unmarshal(decode(t, me).Data, &su))
	assert.Equal(t, "owner", su.Username)
	assert.Equal(t, model.RoleAdmin, su.Role)
}

func TestAdminCreateUser(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]string{"email": "cook@example.com", "username": "cook", "password": "long-enough", "role": "kitchen"}

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodPost, "/api/admin/users", body, model.RoleCashier).Code)
	assert.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/admin/users", body, model.RoleAdmin).Code)
	assert.Equal(t, http.StatusConflict, env.do(http.MethodPost, "/api/admin/users", body, model.RoleAdmin).Code)

	body["email"] = "waiter@example.com"
	body["role"] = "waiter"
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/api/admin/users", body, model.RoleAdmin).Code)

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/api/admin/users", nil, model.RoleKitchen).Code)
	rec := env.do(http.MethodGet, "/api/admin/users", nil, model.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)

	var users []model.User
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &users))
	assert.Len(t, users, 2)
	assert.NotContains(t, rec.Body.String(), "password")
}
