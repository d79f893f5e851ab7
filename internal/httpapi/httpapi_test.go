package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/orgball2608/reel-ranker/internal/domain"
	"github.com/orgball2608/reel-ranker/internal/instagram"
	mock_content "github.com/orgball2608/reel-ranker/internal/repositories/content/mocks"
	mock_resolver "github.com/orgball2608/reel-ranker/internal/resolver/mocks"
	"github.com/orgball2608/reel-ranker/pkg/config"
	pkgerrors "github.com/orgball2608/reel-ranker/pkg/errors"
	"github.com/orgball2608/reel-ranker/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newServer(t *testing.T, secret string) (*Server, *mock_resolver.MockClient, *mock_content.MockRepository) {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.APISecret = secret
	return newServerWithConfig(t, cfg)
}

// newOpenServer serves without authentication.
func newOpenServer(t *testing.T) (*Server, *mock_resolver.MockClient, *mock_content.MockRepository) {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.AllowAnonymous = true
	return newServerWithConfig(t, cfg)
}

func newServerWithConfig(t *testing.T, cfg *config.Config) (*Server, *mock_resolver.MockClient, *mock_content.MockRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	res := mock_resolver.NewMockClient(ctrl)
	repo := mock_content.NewMockRepository(ctrl)

	return New(Opts{Config: cfg, Logger: logger.NewNop(), Resolver: res, Repo: repo}), res, repo
}

func do(t *testing.T, s *Server, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func scored(shortcode string, score float64) *domain.ScoredContent {
	return &domain.ScoredContent{
		SourceURL: "https://instagram.com/reel/" + shortcode,
		Score:     &score,
		Video:     domain.ContentVideo{ID: shortcode},
	}
}

func TestResolveBatch_MixedResults(t *testing.T) {
	s, res, _ := newOpenServer(t)

	notFound := fmt.Errorf("%w: %q", instagram.ErrShortcodeNotFound, "https://instagram.com/chef")
	res.EXPECT().ResolveBatch(gomock.Any(), []string{"https://instagram.com/reel/A1", "https://instagram.com/chef"}, "tok").
		Return(domain.Batch{
			Results: []domain.ResolveResult{
				{SourceURL: "https://instagram.com/reel/A1", Content: scored("A1", 4.28)},
				{SourceURL: "https://instagram.com/chef", Err: notFound, Kind: instagram.Kind(notFound)},
			},
			Token: domain.AntiBotToken{Value: "tok", Source: domain.TokenSourceCallerSupplied},
		}, nil)

	rec := do(t, s, http.MethodPost, "/v1/instagram/resolve",
		`{"urls":["https://instagram.com/reel/A1"," https://instagram.com/chef ",""],"csrfToken":"tok"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body resolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "tok", body.CSRFToken)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "https://instagram.com/reel/A1", body.Data[0].SourceURL)
	assert.Equal(t, 4.28, *body.Data[0].Score)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, pkgerrors.CodeShortcodeNotFound, body.Errors[0].Kind)
	assert.Equal(t, "https://instagram.com/chef", body.Errors[0].URL)
}

func TestResolveBatch_TokenFailure(t *testing.T) {
	s, res, _ := newOpenServer(t)

	res.EXPECT().ResolveBatch(gomock.Any(), gomock.Any(), "").
		Return(domain.Batch{}, fmt.Errorf("%w: no cookie", instagram.ErrTokenAcquisitionFailed))

	rec := do(t, s, http.MethodPost, "/v1/instagram/resolve", `{"urls":["https://instagram.com/reel/A1"]}`, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body resolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, pkgerrors.CodeTokenAcquisitionFailed, body.Kind)
	assert.Empty(t, body.Data)
}

func TestResolveBatch_BadRequests(t *testing.T) {
	s, _, _ := newOpenServer(t)

	tooMany := make([]string, maxBatchURLs+1)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("https://instagram.com/reel/C%d", i)
	}
	tooManyBody, err := json.Marshal(resolveRequest{URLs: tooMany})
	require.NoError(t, err)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"urls":`},
		{"missing urls", `{}`},
		{"blank urls", `{"urls":["  ",""]}`},
		{"too many urls", string(tooManyBody)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/v1/instagram/resolve", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAuthorize(t *testing.T) {
	s, _, repo := newServer(t, "s3cret")
	repo.EXPECT().ListTop(gomock.Any(), defaultTopLimit).Return(nil, nil)

	rec := do(t, s, http.MethodGet, "/v1/instagram/top", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodGet, "/v1/instagram/top", "", map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodGet, "/v1/instagram/top", "", map[string]string{"Authorization": "Bearer s3cret"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestAuthorize_NoSecretRejects(t *testing.T) {
	s, _, _ := newServer(t, "")

	rec := do(t, s, http.MethodGet, "/v1/instagram/top", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodPost, "/v1/instagram/resolve", `{"urls":["https://instagram.com/reel/A1"]}`, map[string]string{"Authorization": "Bearer "})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, s, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthorize_SecretWinsOverAnonymous(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.APISecret = "s3cret"
	cfg.App.AllowAnonymous = true
	s, _, _ := newServerWithConfig(t, cfg)

	rec := do(t, s, http.MethodGet, "/v1/instagram/top", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTop(t *testing.T) {
	s, _, repo := newOpenServer(t)

	repo.EXPECT().ListTop(gomock.Any(), 2).Return([]*domain.StoredContent{
		{Shortcode: "A", Content: *scored("A", 9.1)},
		{Shortcode: "B", Content: *scored("B", 3.2)},
	}, nil)

	rec := do(t, s, http.MethodGet, "/v1/instagram/top?limit=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body topResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, 9.1, *body.Data[0].Score)
}

func TestTop_LimitHandling(t *testing.T) {
	s, _, repo := newOpenServer(t)

	rec := do(t, s, http.MethodGet, "/v1/instagram/top?limit=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	repo.EXPECT().ListTop(gomock.Any(), maxTopLimit).Return(nil, nil)
	rec = do(t, s, http.MethodGet, "/v1/instagram/top?limit=5000", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())

	repo.EXPECT().ListTop(gomock.Any(), defaultTopLimit).Return(nil, errors.New("connection refused"))
	rec = do(t, s, http.MethodGet, "/v1/instagram/top", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	s, _, _ := newOpenServer(t)
	rec := do(t, s, http.MethodGet, "/v1/instagram/resolve", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
