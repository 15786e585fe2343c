// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/postpredict/internal/auth"
	"github.com/tomtom215/postpredict/internal/config"
	"github.com/tomtom215/postpredict/internal/database"
	"github.com/tomtom215/postpredict/internal/features"
	"github.com/tomtom215/postpredict/internal/ml"
	"github.com/tomtom215/postpredict/internal/ml/storage"
)

// fakeStore is an in-memory Store.
type fakeStore struct {
	mu          sync.Mutex
	pingErr     error
	users       map[int64]*database.User
	uploads     map[int64]*database.Upload
	predictions map[string]*database.Prediction
	nextID      int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       map[int64]*database.User{},
		uploads:     map[int64]*database.Upload{},
		predictions: map[string]*database.Prediction{},
	}
}

func (s *fakeStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) Ping(context.Context) error { return s.pingErr }

func (s *fakeStore) CreateUser(_ context.Context, u *database.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return database.ErrDuplicate
		}
	}
	u.ID = s.id()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *fakeStore) GetUserByEmail(_ context.Context, email string) (*database.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *fakeStore) GetUserByID(_ context.Context, id int64) (*database.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, database.ErrNotFound
}

func (s *fakeStore) CreateUpload(_ context.Context, u *database.Upload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.id()
	cp := *u
	s.uploads[u.ID] = &cp
	return nil
}

func (s *fakeStore) GetUpload(_ context.Context, userID, id int64) (*database.Upload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.uploads[id]; ok && u.UserID == userID {
		cp := *u
		return &cp, nil
	}
	return nil, database.ErrNotFound
}

func (s *fakeStore) ListUploads(_ context.Context, userID int64, _ int) ([]database.Upload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []database.Upload{}
	for _, u := range s.uploads {
		if u.UserID == userID {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *fakeStore) SavePrediction(_ context.Context, p *database.Prediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = fmt.Sprintf("pred-%d", s.id())
	}
	cp := *p
	s.predictions[p.ID] = &cp
	return nil
}

func (s *fakeStore) GetPrediction(_ context.Context, userID int64, id string) (*database.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.predictions[id]; ok && p.UserID == userID {
		cp := *p
		return &cp, nil
	}
	return nil, database.ErrNotFound
}

func (s *fakeStore) ListPredictions(_ context.Context, userID int64, _ int) ([]database.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []database.Prediction{}
	for _, p := range s.predictions {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *fakeStore) GetDashboard(ctx context.Context, userID int64) (*database.Dashboard, error) {
	preds, _ := s.ListPredictions(ctx, userID, 0)
	return &database.Dashboard{TotalPredictions: len(preds), PlatformBreakdown: map[string]int{}}, nil
}

// fakePredictor records the datasets it receives.
type fakePredictor struct {
	mu       sync.Mutex
	err      error
	lastRows int
	family   ml.Family
}

func (p *fakePredictor) PredictAndAggregate(_ context.Context, ds *features.Dataset) (*ml.PredictResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	p.lastRows = ds.Len()
	hour := 10
	return &ml.PredictResult{
		Summary: ml.Summary{
			Likes:              ml.Stats{Average: 120, Max: 150, Min: 90},
			BestPostingHour:    &hour,
			PlatformAnalysis:   map[string]ml.PlatformStats{"instagram": {AvgPredictedLikes: 120, PostCount: ds.Len()}},
			TotalPostsAnalyzed: ds.Len(),
		},
		ModelFamily: ml.FamilyRandomForest,
		Features:    []string{features.ColPostingHour},
		Retrained:   true,
	}, nil
}

func (p *fakePredictor) Train(_ context.Context, ds *features.Dataset, family ml.Family) (*ml.TrainResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	p.family = family
	return &ml.TrainResult{
		Models:    map[string]*ml.Model{"likes_random_forest": {}, "likes_linear": {}},
		Metrics:   map[string]ml.Metrics{"likes_random_forest": {MAE: 1, RMSE: 2, R2: 0.5, EvalRows: 1}},
		Features:  []string{features.ColPostingHour},
		TrainRows: ds.Len(),
	}, nil
}

// fakeCatalog is a fixed ModelCatalog.
type fakeCatalog struct {
	models []storage.Metadata
	err    error
}

func (c *fakeCatalog) List(context.Context) ([]storage.Metadata, error) {
	return c.models, c.err
}

type testEnv struct {
	router    http.Handler
	store     *fakeStore
	predictor *fakePredictor
	models    *fakeCatalog
	jwt       *auth.JWTManager
}

func newTestEnv(t *testing.T, trainBurst int) *testEnv {
	t.Helper()
	jwtManager, err := auth.NewJWTManager(&config.SecurityConfig{
		JWTSecret:      "api_test_secret_that_is_long_enough_1234567890",
		SessionTimeout: time.Hour,
	})
	if err != nil {
		t.Fatal(err)
	}
	env := &testEnv{store: newFakeStore(), predictor: &fakePredictor{}, models: &fakeCatalog{}, jwt: jwtManager}
	h := NewHandler(HandlerConfig{
		Store:          env.store,
		Predictor:      env.predictor,
		Models:         env.models,
		Hasher:         auth.NewHasher(bcrypt.MinCost),
		JWT:            jwtManager,
		TrainLimiter:   auth.NewRateLimiter(trainBurst, time.Hour),
		MaxUploadBytes: 1 << 16,
		SampleSeed:     42,
	})
	env.router = NewRouter(h, RouterConfig{RateLimitDisabled: true})
	return env
}

// envelope mirrors APIResponse with raw data for per-test decoding.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return e.serve(t, req, token)
}

func (e *testEnv) serve(t *testing.T, req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope: %v\n%s", err, rec.Body.String())
		}
	}
	return rec, env
}

func (e *testEnv) register(t *testing.T, email string) string {
	t.Helper()
	rec, env := e.do(t, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{
		Email: email, Name: "Tester", Password: "password123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp AuthResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatal(err)
	}
	return resp.Token
}

const testCSV = `date,platform,content_type,likes,comments,shares,followers
2024-01-01,Instagram,Image,100,10,2,1000
2024-01-02,Facebook,Video,150,12,3,1010
2024-01-03,LinkedIn,Text,90,4,1,1020
2024-01-04,Instagram,Video,200,20,5,1030
2024-01-05,Facebook,Image,120,8,2,1045
2024-01-06,Instagram,Image,130,9,4,1050
`

func (e *testEnv) uploadCSV(t *testing.T, token, filename, content string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.serve(t, req, token)
}

func (e *testEnv) storedUploadID(t *testing.T, env envelope) int64 {
	t.Helper()
	var resp UploadResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatal(err)
	}
	return resp.Upload.ID
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t, 5)
	token := env.register(t, "Alice@Example.com")

	rec, body := env.do(t, http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{
		Email: "alice@example.com", Name: "Again", Password: "password123",
	})
	if rec.Code != http.StatusConflict || body.Error.Code != ErrCodeConflict {
		t.Errorf("duplicate register = %d %+v", rec.Code, body.Error)
	}

	rec, _ = env.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: "alice@example.com", Password: "wrongpass"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d", rec.Code)
	}
	rec, _ = env.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: "nobody@example.com", Password: "password123"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unknown user status = %d", rec.Code)
	}

	rec, body = env.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: "alice@example.com", Password: "password123"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}
	var login AuthResponse
	if err := json.Unmarshal(body.Data, &login); err != nil {
		t.Fatal(err)
	}
	if login.Token == "" || login.TokenType != "Bearer" || login.ExpiresIn != 3600 {
		t.Errorf("login response = %+v", login)
	}

	rec, body = env.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d", rec.Code)
	}
	var me database.User
	if err := json.Unmarshal(body.Data, &me); err != nil {
		t.Fatal(err)
	}
	if me.Email != "alice@example.com" {
		t.Errorf("me.Email = %q", me.Email)
	}
	if strings.Contains(string(body.Data), "password") {
		t.Error("user response leaks password hash")
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t, 5)

	tests := []struct {
		name     string
		body     any
		wantCode string
	}{
		{"short password", RegisterRequest{Email: "a@b.io", Name: "A", Password: "short"}, ErrCodeValidation},
		{"bad email", RegisterRequest{Email: "nope", Name: "A", Password: "password123"}, ErrCodeValidation},
		{"malformed json", "{", ErrCodeBadRequest},
		{"empty body", "", ErrCodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := env.do(t, http.MethodPost, "/api/v1/auth/register", "", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", rec.Code)
			}
			if body.Success || body.Error == nil || body.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", body.Error, tt.wantCode)
			}
		})
	}
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t, 5)

	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/uploads"},
		{http.MethodPost, "/api/v1/predict"},
		{http.MethodPost, "/api/v1/train"},
		{http.MethodGet, "/api/v1/predictions"},
		{http.MethodGet, "/api/v1/dashboard"},
		{http.MethodGet, "/api/v1/models"},
		{http.MethodGet, "/api/v1/auth/me"},
	}
	for _, p := range paths {
		rec, body := env.do(t, p.method, p.path, "", nil)
		if rec.Code != http.StatusUnauthorized || body.Error == nil || body.Error.Code != ErrCodeUnauthorized {
			t.Errorf("%s %s = %d %+v", p.method, p.path, rec.Code, body.Error)
		}
	}

	rec, _ := env.do(t, http.MethodGet, "/api/v1/uploads", "not-a-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("invalid token status = %d", rec.Code)
	}
}

func TestUploads(t *testing.T) {
	env := newTestEnv(t, 5)
	token := env.register(t, "alice@example.com")

	t.Run("csv multipart", func(t *testing.T) {
		rec, body := env.uploadCSV(t, token, "posts.csv", testCSV)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		var resp UploadResponse
		if err := json.Unmarshal(body.Data, &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Upload.TotalPosts != 6 || resp.Upload.OriginalFilename != "posts.csv" || resp.Upload.Format != database.FormatCSV {
			t.Errorf("upload = %+v", resp.Upload)
		}
		if len(resp.Preview) != previewRows {
			t.Errorf("preview rows = %d, want %d", len(resp.Preview), previewRows)
		}
		if !strings.HasSuffix(resp.Upload.Filename, ".csv") || resp.Upload.Filename == "posts.csv" {
			t.Errorf("stored filename = %q", resp.Upload.Filename)
		}
	})

	t.Run("json body", func(t *testing.T) {
		records := `[{"likes": 10, "platform": "Instagram"}, {"likes": 20, "platform": "Facebook"}]`
		rec, body := env.do(t, http.MethodPost, "/api/v1/uploads", token, records)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		var resp UploadResponse
		if err := json.Unmarshal(body.Data, &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Upload.Format != database.FormatJSON || resp.Upload.TotalPosts != 2 {
			t.Errorf("upload = %+v", resp.Upload)
		}
	})

	t.Run("missing likes", func(t *testing.T) {
		rec, body := env.uploadCSV(t, token, "posts.csv", "platform,comments\nInstagram,3\n")
		if rec.Code != http.StatusBadRequest || body.Error.Code != ErrCodeValidation {
			t.Errorf("status = %d error = %+v", rec.Code, body.Error)
		}
	})

	t.Run("unsupported extension", func(t *testing.T) {
		rec, _ := env.uploadCSV(t, token, "posts.xlsx", testCSV)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}
	})

	t.Run("too large", func(t *testing.T) {
		big := testCSV + strings.Repeat("2024-01-07,Instagram,Image,130,9,4,1050\n", 3000)
		rec, _ := env.uploadCSV(t, token, "big.csv", big)
		if rec.Code != http.StatusRequestEntityTooLarge && rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 413 or 400", rec.Code)
		}
	})

	rec, body := env.do(t, http.MethodGet, "/api/v1/uploads", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	if body.Meta == nil || body.Meta.Count == nil || *body.Meta.Count != 2 {
		t.Errorf("list meta = %+v, want count 2", body.Meta)
	}
}

func TestPredictFlow(t *testing.T) {
	env := newTestEnv(t, 5)
	alice := env.register(t, "alice@example.com")
	bob := env.register(t, "bob@example.com")

	_, up := env.uploadCSV(t, alice, "posts.csv", testCSV)
	uploadID := env.storedUploadID(t, up)

	rec, _ := env.do(t, http.MethodPost, "/api/v1/predict", bob, PredictRequest{UploadID: uploadID})
	if rec.Code != http.StatusNotFound {
		t.Errorf("predict on other user's upload = %d, want 404", rec.Code)
	}

	rec, body := env.do(t, http.MethodPost, "/api/v1/predict", alice, PredictRequest{UploadID: uploadID})
	if rec.Code != http.StatusOK {
		t.Fatalf("predict status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp PredictResponse
	if err := json.Unmarshal(body.Data, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.PredictionID == "" || !resp.Retrained || resp.Summary.Likes.Average != 120 {
		t.Errorf("predict response = %+v", resp)
	}
	if env.predictor.lastRows != 6 {
		t.Errorf("predictor saw %d rows, want 6", env.predictor.lastRows)
	}

	rec, body = env.do(t, http.MethodGet, "/api/v1/predictions/"+resp.PredictionID, alice, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get prediction status = %d", rec.Code)
	}
	var stored database.Prediction
	if err := json.Unmarshal(body.Data, &stored); err != nil {
		t.Fatal(err)
	}
	if stored.UploadID != uploadID || stored.AverageLikes != 120 || stored.BestPostingHour == nil || *stored.BestPostingHour != 10 {
		t.Errorf("stored prediction = %+v", stored)
	}

	rec, _ = env.do(t, http.MethodGet, "/api/v1/predictions/"+resp.PredictionID, bob, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("other user's prediction = %d, want 404", rec.Code)
	}

	rec, body = env.do(t, http.MethodGet, "/api/v1/dashboard", alice, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d", rec.Code)
	}
	var dash database.Dashboard
	if err := json.Unmarshal(body.Data, &dash); err != nil {
		t.Fatal(err)
	}
	if dash.TotalPredictions != 1 {
		t.Errorf("dashboard total = %d, want 1", dash.TotalPredictions)
	}

	rec, _ = env.do(t, http.MethodPost, "/api/v1/predict", alice, PredictRequest{UploadID: 9999})
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing upload = %d, want 404", rec.Code)
	}
}

func TestPredictErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"empty features", fmt.Errorf("select: %w", features.ErrEmptyFeatureSet), http.StatusBadRequest},
		{"empty selection as mismatch", fmt.Errorf("%w: %w", ml.ErrFeatureMismatch, features.ErrEmptyFeatureSet), http.StatusBadRequest},
		{"missing target", ml.ErrMissingTargetColumn, http.StatusBadRequest},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, 5)
			token := env.register(t, "alice@example.com")
			_, up := env.uploadCSV(t, token, "posts.csv", testCSV)
			env.predictor.err = tt.err

			rec, body := env.do(t, http.MethodPost, "/api/v1/predict", token, PredictRequest{UploadID: env.storedUploadID(t, up)})
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusInternalServerError && strings.Contains(body.Error.Message, "fire") {
				t.Error("internal error message leaked")
			}
		})
	}
}

func TestTrain(t *testing.T) {
	env := newTestEnv(t, 2)
	token := env.register(t, "alice@example.com")
	_, up := env.uploadCSV(t, token, "posts.csv", testCSV)
	uploadID := env.storedUploadID(t, up)

	rec, body := env.do(t, http.MethodPost, "/api/v1/train", token, TrainRequest{UploadID: uploadID, ModelType: "svm"})
	if rec.Code != http.StatusBadRequest || body.Error.Code != ErrCodeValidation {
		t.Errorf("bad model type = %d %+v", rec.Code, body.Error)
	}

	rec, body = env.do(t, http.MethodPost, "/api/v1/train", token, TrainRequest{UploadID: uploadID, ModelType: "both"})
	if rec.Code != http.StatusOK {
		t.Fatalf("train status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp TrainResponse
	if err := json.Unmarshal(body.Data, &resp); err != nil {
		t.Fatal(err)
	}
	if env.predictor.family != ml.FamilyBoth {
		t.Errorf("family = %q, want both", env.predictor.family)
	}
	if len(resp.Models) != 2 || resp.Models[0] != "likes_linear" || resp.TrainRows != 6 {
		t.Errorf("train response = %+v", resp)
	}

	// Burst of 2 is spent by the two requests above.
	rec, body = env.do(t, http.MethodPost, "/api/v1/train", token, TrainRequest{UploadID: uploadID})
	if rec.Code != http.StatusTooManyRequests || body.Error.Code != ErrCodeRateLimit {
		t.Errorf("third train = %d %+v, want 429", rec.Code, body.Error)
	}

	other := env.register(t, "bob@example.com")
	rec, _ = env.do(t, http.MethodPost, "/api/v1/train", other, TrainRequest{UploadID: uploadID})
	if rec.Code != http.StatusNotFound {
		t.Errorf("bob train on alice's upload = %d, want 404 (own bucket)", rec.Code)
	}
}

func TestSampleCSV(t *testing.T) {
	env := newTestEnv(t, 5)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sample-csv", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv") {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 51 {
		t.Errorf("lines = %d, want header + 50", len(lines))
	}
	if !strings.Contains(lines[0], "likes") {
		t.Errorf("header = %q", lines[0])
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, 5)

	rec, body := env.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK || !body.Success {
		t.Errorf("healthy = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	env.store.pingErr = errors.New("closed")
	rec, body = env.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusServiceUnavailable || body.Error.Code != ErrCodeUnavailable {
		t.Errorf("degraded = %d %+v", rec.Code, body.Error)
	}
}

func TestListModels(t *testing.T) {
	env := newTestEnv(t, 5)
	token := env.register(t, "models@example.com")

	rec, body := env.do(t, http.MethodGet, "/api/v1/models", token, nil)
	if rec.Code != http.StatusOK || body.Meta == nil || body.Meta.Count == nil || *body.Meta.Count != 0 {
		t.Fatalf("empty catalog = %d %+v", rec.Code, body.Meta)
	}

	trained := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	env.models.models = []storage.Metadata{
		{Key: "likes", Target: "likes", Family: "random_forest", Features: []string{features.ColPostingHour}, TrainedAt: trained, TrainRows: 40},
		{Key: "follower_growth", Target: "follower_growth", Family: "linear", TrainedAt: trained, TrainRows: 40},
	}
	rec, body = env.do(t, http.MethodGet, "/api/v1/models", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var got []storage.Metadata
	if err := json.Unmarshal(body.Data, &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Key != "likes" || got[1].Family != "linear" || !got[0].TrainedAt.Equal(trained) {
		t.Errorf("models = %+v", got)
	}
	if *body.Meta.Count != 2 {
		t.Errorf("count = %d, want 2", *body.Meta.Count)
	}

	env.models.err = errors.New("disk gone")
	rec, body = env.do(t, http.MethodGet, "/api/v1/models", token, nil)
	if rec.Code != http.StatusInternalServerError || body.Error == nil || body.Error.Code != ErrCodeInternal {
		t.Errorf("catalog failure = %d %+v", rec.Code, body.Error)
	}
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, 5)
	rec, body := env.do(t, http.MethodGet, "/api/v1/nope", "", nil)
	if rec.Code != http.StatusNotFound || body.Error == nil || body.Error.Code != ErrCodeNotFound {
		t.Errorf("unknown route = %d %+v", rec.Code, body.Error)
	}
}

func TestIPRateLimit(t *testing.T) {
	h := NewHandler(HandlerConfig{Store: newFakeStore(), Predictor: &fakePredictor{}})
	router := NewRouter(h, RouterConfig{RateLimitReqs: 2, RateLimitWindow: time.Minute})

	codes := make([]int, 3)
	for i := range codes {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sample-csv", nil))
		codes[i] = rec.Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}
}
