package instagramimpl

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/orgball2608/reel-ranker/internal/domain"
	"github.com/orgball2608/reel-ranker/internal/instagram"
	"github.com/orgball2608/reel-ranker/internal/scoring"
	"github.com/orgball2608/reel-ranker/pkg/config"
	pkgerrors "github.com/orgball2608/reel-ranker/pkg/errors"
	"github.com/orgball2608/reel-ranker/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMediaJSON = `{
  "data": {
    "xdt_shortcode_media": {
      "__typename": "XDTGraphVideo",
      "id": "3400000000000000001",
      "shortcode": "C9xYz12AbCd",
      "is_video": true,
      "taken_at_timestamp": 1760000000,
      "video_duration": 31.5,
      "display_url": "https://cdn.example/thumb.jpg",
      "video_url": "https://cdn.example/video.mp4",
      "video_view_count": 120000,
      "video_play_count": 450000,
      "owner": {
        "id": "178414",
        "username": "chef.daily",
        "full_name": "Chef Daily",
        "is_verified": true,
        "edge_owner_to_timeline_media": {"count": 812},
        "edge_followed_by": {"count": 250000}
      },
      "edge_media_to_caption": {
        "edges": [
          {"node": {"text": "15 minute ramen"}},
          {"node": {"text": "second caption"}}
        ]
      }
    }
  },
  "status": "ok"
}`

type waitRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (w *waitRecorder) sleep(_ context.Context, d time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.waits = append(w.waits, d)
	return nil
}

func (w *waitRecorder) recorded() []time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]time.Duration(nil), w.waits...)
}

func newTestImpl(t *testing.T, srv *httptest.Server) (*InstaImpl, *waitRecorder) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Instagram.BaseURL = srv.URL + "/"
	cfg.Instagram.GraphQLURL = srv.URL + "/graphql/query"
	cfg.Instagram.DocID = "9510064595728286"
	cfg.Instagram.Retries = 5
	cfg.Instagram.InitialDelay = time.Second

	scorer, err := scoring.NewWithPolicy(scoring.DefaultPolicy(), logger.NewNop())
	require.NoError(t, err)

	ig := New(Opts{
		Config:     cfg,
		Logger:     logger.NewNop(),
		HTTPClient: srv.Client(),
		Scorer:     scorer,
	})
	rec := &waitRecorder{}
	ig.sleep = rec.sleep
	return ig, rec
}

func token(v string) domain.AntiBotToken {
	return domain.AntiBotToken{Value: v, Source: domain.TokenSourceCallerSupplied}
}

func TestAcquireToken_ProvidedSkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits.Add(1) }))
	defer srv.Close()
	ig, _ := newTestImpl(t, srv)

	tok, err := ig.AcquireToken(context.Background(), "caller-token")
	require.NoError(t, err)
	assert.Equal(t, "caller-token", tok.Value)
	assert.Equal(t, domain.TokenSourceCallerSupplied, tok.Source)
	assert.Zero(t, hits.Load())
}

func TestAcquireToken_FromCookie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "mid", Value: "Zabc"})
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "RnTR2tK_UaOh1qL0tAEkrk", Path: "/"})
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()
	ig, _ := newTestImpl(t, srv)

	tok, err := ig.AcquireToken(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "RnTR2tK_UaOh1qL0tAEkrk", tok.Value)
	assert.Equal(t, domain.TokenSourceFetched, tok.Source)
	assert.False(t, tok.AcquiredAt.IsZero())
}

func TestAcquireToken_NoCookie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "mid", Value: "Zabc"})
	}))
	defer srv.Close()
	ig, _ := newTestImpl(t, srv)

	_, err := ig.AcquireToken(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, instagram.ErrTokenAcquisitionFailed)
	assert.Equal(t, pkgerrors.CodeTokenAcquisitionFailed, instagram.Kind(err))
}

func TestFetchContent_RetriesThrottlingWithDoubledDelay(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)

		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/graphql/query", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Equal(t, "tok-1", r.Header.Get("X-CSRFToken"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "9510064595728286", r.PostForm.Get("doc_id"))
		assert.JSONEq(t,
			`{"shortcode":"C9xYz12AbCd","fetch_tagged_user_count":null,"hoisted_comment_id":null,"hoisted_reply_id":null}`,
			r.PostForm.Get("variables"))

		if n <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(sampleMediaJSON))
	}))
	defer srv.Close()
	ig, rec := newTestImpl(t, srv)

	ref, err := instagram.ParseShortcode("https://www.instagram.com/reel/C9xYz12AbCd/")
	require.NoError(t, err)

	content, err := ig.FetchContent(context.Background(), ref, token("tok-1"))
	require.NoError(t, err)
	assert.EqualValues(t, 3, calls.Load())

	waits := rec.recorded()
	require.Len(t, waits, 2)
	assert.Equal(t, time.Second, waits[0])
	assert.Equal(t, 2*waits[0], waits[1])

	assert.Equal(t, "https://instagram.com/reel/C9xYz12AbCd", content.SourceURL)
	require.NotNil(t, content.Score)
}

func TestFetchContent_HonoursRetryAfter(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.Header().Set("Retry-After", "3")
			w.WriteHeader(http.StatusForbidden)
		case 2:
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			_, _ = w.Write([]byte(sampleMediaJSON))
		}
	}))
	defer srv.Close()
	ig, rec := newTestImpl(t, srv)

	_, err := ig.FetchContent(context.Background(), domain.MediaReference{Shortcode: "C9xYz12AbCd"}, token("t"))
	require.NoError(t, err)
	// the header overrides the first wait; the delay still doubles behind it
	assert.Equal(t, []time.Duration{3 * time.Second, 2 * time.Second}, rec.recorded())
}

func TestFetchContent_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()
	ig, rec := newTestImpl(t, srv)
	ig.backoff.Retries = 2

	_, err := ig.FetchContent(context.Background(), domain.MediaReference{Shortcode: "abc"}, token("t"))
	require.Error(t, err)
	assert.ErrorIs(t, err, instagram.ErrUpstreamRequestFailed)
	assert.EqualValues(t, 3, calls.Load())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, rec.recorded())
}

func TestFetchContent_BackoffStopsOnCancel(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()
	ig, _ := newTestImpl(t, srv)
	ig.sleep = sleepContext

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := ig.FetchContent(ctx, domain.MediaReference{Shortcode: "abc"}, token("t"))

	assert.ErrorIs(t, err, instagram.ErrUpstreamRequestFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.EqualValues(t, 1, calls.Load())
}

func TestFetchContent_NonThrottleStatusIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	ig, rec := newTestImpl(t, srv)

	_, err := ig.FetchContent(context.Background(), domain.MediaReference{Shortcode: "abc"}, token("t"))
	assert.ErrorIs(t, err, instagram.ErrUpstreamRequestFailed)
	assert.EqualValues(t, 1, calls.Load())
	assert.Empty(t, rec.recorded())
}

func TestFetchContent_UnsupportedContentType(t *testing.T) {
	for name, body := range map[string]string{
		"missing node": `{"data":{},"status":"ok"}`,
		"null data":    `{"data":null,"status":"fail","message":"login required"}`,
		"null node":    `{"data":{"xdt_shortcode_media":null},"status":"ok"}`,
	} {
		t.Run(name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()
			ig, _ := newTestImpl(t, srv)

			_, err := ig.FetchContent(context.Background(), domain.MediaReference{Shortcode: "abc"}, token("t"))
			assert.ErrorIs(t, err, instagram.ErrUnsupportedContentType)
			assert.Equal(t, pkgerrors.CodeUnsupportedContentType, instagram.Kind(err))
			assert.EqualValues(t, 1, calls.Load())
		})
	}
}

func TestFetchContent_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>login</html>"))
	}))
	defer srv.Close()
	ig, _ := newTestImpl(t, srv)

	_, err := ig.FetchContent(context.Background(), domain.MediaReference{Shortcode: "abc"}, token("t"))
	assert.ErrorIs(t, err, instagram.ErrUpstreamRequestFailed)
}

func TestFetchContent_AcquiresTokenWhenMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "fresh"})
			return
		}
		assert.Equal(t, "fresh", r.Header.Get("X-CSRFToken"))
		_, _ = w.Write([]byte(sampleMediaJSON))
	}))
	defer srv.Close()
	ig, _ := newTestImpl(t, srv)

	_, err := ig.FetchContent(context.Background(), domain.MediaReference{Shortcode: "C9xYz12AbCd"}, domain.AntiBotToken{})
	require.NoError(t, err)
}

func TestFetchContent_EmptyReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer srv.Close()
	ig, _ := newTestImpl(t, srv)

	_, err := ig.FetchContent(context.Background(), domain.MediaReference{RawURL: "x"}, token("t"))
	assert.ErrorIs(t, err, instagram.ErrShortcodeNotFound)
}

func TestNormalizeURL_FollowsShareLinkOnce(t *testing.T) {
	var shareHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/share/reel/BAxYz/", func(w http.ResponseWriter, r *http.Request) {
		shareHits.Add(1)
		http.Redirect(w, r, "/reel/DRealCode1/?igsh=share", http.StatusFound)
	})
	mux.HandleFunc("/reel/DRealCode1/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	ig, _ := newTestImpl(t, srv)

	raw := srv.URL + "/share/reel/BAxYz/"
	ref, err := ig.NormalizeURL(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "DRealCode1", ref.Shortcode)
	assert.Equal(t, "reel", ref.PlatformTag)
	assert.Equal(t, raw, ref.RawURL)
	assert.EqualValues(t, 1, shareHits.Load())
}

func TestNormalizeURL_NoNetworkForDirectLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer srv.Close()
	ig, _ := newTestImpl(t, srv)

	ref, err := ig.NormalizeURL(context.Background(), "https://www.instagram.com/p/B1a2C3d4E5/")
	require.NoError(t, err)
	assert.Equal(t, "B1a2C3d4E5", ref.Shortcode)

	_, err = ig.NormalizeURL(context.Background(), "https://www.instagram.com/chef.daily/")
	assert.ErrorIs(t, err, instagram.ErrShortcodeNotFound)
}

func TestNormalizeURL_ShareLinkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()
	ig, _ := newTestImpl(t, srv)

	_, err := ig.NormalizeURL(context.Background(), srv.URL+"/share/gone/")
	assert.ErrorIs(t, err, instagram.ErrUpstreamRequestFailed)
}

func TestResolve_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleMediaJSON))
	}))
	defer srv.Close()
	ig, _ := newTestImpl(t, srv)

	content, err := ig.Resolve(context.Background(), "https://www.instagram.com/reel/C9xYz12AbCd/?igsh=x", token("t"))
	require.NoError(t, err)

	out, err := json.Marshal(content)
	require.NoError(t, err)
	var shape map[string]any
	require.NoError(t, json.Unmarshal(out, &shape))
	assert.Contains(t, shape, "sourceUrl")
	assert.Contains(t, shape, "score")
	assert.Contains(t, shape["user"], "total_followers")
	assert.Contains(t, shape["video"], "thumbnail_url")

	score := *content.Score
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 10.0)
	assert.InDelta(t, math.Round(score*100)/100, score, 1e-9)
}
