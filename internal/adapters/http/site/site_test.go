package site

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	service "github.com/okian/techmentor/internal/app"
	"github.com/okian/techmentor/internal/domain/analysis"
	"github.com/okian/techmentor/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

type fakeDeps struct {
	mu         sync.Mutex
	stored     map[string]analysis.Result
	outcome    analysis.Outcome
	draft      string
	draftErr   error
	lastReq    service.AnalyzeRequest
	reflection string
	credential bool
}

func newFakeDeps() *fakeDeps {
	return &fakeDeps{stored: map[string]analysis.Result{}, credential: true}
}

func (f *fakeDeps) Analyze(_ context.Context, req service.AnalyzeRequest) analysis.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastReq = req
	if r, ok := f.outcome.Result(); ok {
		f.stored[req.SessionID] = r
	}
	return f.outcome
}

func (f *fakeDeps) DraftPost(_ context.Context, sessionID, reflection string, _ bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reflection = reflection
	if _, ok := f.stored[sessionID]; !ok {
		return "", service.ErrNoAnalysis
	}
	return f.draft, f.draftErr
}

func (f *fakeDeps) Latest(_ context.Context, sessionID string) (analysis.Result, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.stored[sessionID]
	return r, ok
}

func (f *fakeDeps) HasCredential() bool { return f.credential }
func (f *fakeDeps) Offline() bool       { return false }

const sessionID = "6f1c1f5e-7a43-4c1b-9a57-8d1c2e3f4a5b"

func withSession(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: "mentor_session", Value: sessionID})
	return req
}

func analyzeForm(fields map[string]string) *http.Request {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return withSession(req)
}

func devfest() analysis.Result {
	return analysis.Result{
		analysis.KeyEventName:   "DevFest",
		analysis.KeyScore:       float64(7),
		analysis.KeySkills:      []any{"Go", "Cloud Run"},
		analysis.KeyCertificate: "Likely (attendance badge)",
		analysis.KeyExplanation: "Strong community event.",
		analysis.KeyMissingInfo: []any{"Venue"},
	}
}

func TestSiteIndex(t *testing.T) {
	Convey("Given a registered site", t, func() {
		deps := newFakeDeps()
		h, err := NewHandler(deps)
		So(err, ShouldBeNil)
		mux := http.NewServeMux()
		h.Register(context.Background(), mux)

		Convey("When the page is requested without a session", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			Convey("Then the form is rendered and a session cookie issued", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
				body := w.Body.String()
				So(body, ShouldContainSubstring, "<title>Tech Event Mentor</title>")
				So(body, ShouldContainSubstring, "Analyse Event")
				So(body, ShouldContainSubstring, `accept=".png,.jpg,.jpeg`)
				So(body, ShouldContainSubstring, "Career Analysis")
				So(body, ShouldContainSubstring, "LinkedIn Post")
				So(len(w.Result().Cookies()), ShouldEqual, 1)
			})
		})

		Convey("When the post tab is opened before any analysis", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/?tab=post", nil)))

			Convey("Then it asks for an analysis first", func() {
				So(w.Body.String(), ShouldContainSubstring, "Analyse an event first")
				So(w.Body.String(), ShouldNotContainSubstring, "Generate Post")
			})
		})

		Convey("When the stylesheet is requested", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))

			Convey("Then it is served", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.Len(), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When an unknown path is requested", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/some-asset", nil))
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When there is no credential", func() {
			deps.credential = false
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			So(w.Body.String(), ShouldContainSubstring, "No API key configured")
		})
	})
}

func TestSiteAnalyze(t *testing.T) {
	Convey("Given a registered site", t, func() {
		deps := newFakeDeps()
		h, err := NewHandler(deps)
		So(err, ShouldBeNil)
		mux := http.NewServeMux()
		h.Register(context.Background(), mux)

		Convey("When an analysis succeeds", func() {
			deps.outcome = analysis.Success(devfest())
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, analyzeForm(map[string]string{"organizer": "GDG", "message": "Join us", "offline": "on"}))
			body := w.Body.String()

			Convey("Then the dashboard is rendered", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(body, ShouldContainSubstring, "Career Score: 7/10")
				So(body, ShouldContainSubstring, `value="70"`)
				So(body, ShouldContainSubstring, `class="callout success">Certificate: Likely (attendance badge)`)
				So(body, ShouldContainSubstring, "<li>Go</li>")
				So(body, ShouldContainSubstring, "<li>Cloud Run</li>")
				So(body, ShouldContainSubstring, "Strong community event.")
				So(body, ShouldContainSubstring, "<summary>Missing Information</summary>")
				So(body, ShouldContainSubstring, "<td>Date</td><td>—</td>")
			})

			Convey("And the form values reach the service", func() {
				So(deps.lastReq.SessionID, ShouldEqual, sessionID)
				So(deps.lastReq.Organizer, ShouldEqual, "GDG")
				So(deps.lastReq.Message, ShouldEqual, "Join us")
				So(deps.lastReq.Offline, ShouldBeTrue)
				So(deps.lastReq.Poster, ShouldBeNil)
			})

			Convey("And demo mode carries over to the post tab", func() {
				So(body, ShouldContainSubstring, "/?tab=post&offline=on")

				w := httptest.NewRecorder()
				mux.ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/?tab=post&offline=on", nil)))
				post := w.Body.String()
				So(post, ShouldContainSubstring, "Generate Post")
				So(post, ShouldContainSubstring, `name="offline" checked`)
			})
		})

		Convey("When an analysis runs live", func() {
			deps.outcome = analysis.Success(devfest())
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, analyzeForm(map[string]string{"organizer": "GDG"}))

			Convey("Then the post tab link does not force demo mode", func() {
				So(w.Body.String(), ShouldNotContainSubstring, "offline=on")
			})
		})

		Convey("When the certificate is not highlighted and nothing is missing", func() {
			r := devfest()
			r[analysis.KeyCertificate] = "No"
			delete(r, analysis.KeyMissingInfo)
			deps.outcome = analysis.Success(r)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, analyzeForm(nil))

			Convey("Then the muted note replaces the callout", func() {
				So(w.Body.String(), ShouldContainSubstring, `class="muted">Certificate: No`)
				So(w.Body.String(), ShouldNotContainSubstring, "Missing Information")
			})
		})

		Convey("When an analysis fails after a success", func() {
			deps.stored[sessionID] = devfest()
			deps.outcome = analysis.Failure("invalid JSON in model response")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, analyzeForm(nil))

			Convey("Then the error is shown inline above the previous result", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "invalid JSON in model response")
				So(w.Body.String(), ShouldContainSubstring, "Career Score: 7/10")
			})
		})

		Convey("When the organizer contains markup", func() {
			deps.outcome = analysis.Failure("API key not found")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, analyzeForm(map[string]string{"organizer": "<script>x</script>"}))

			Convey("Then it is escaped", func() {
				So(w.Body.String(), ShouldNotContainSubstring, "<script>x</script>")
				So(w.Body.String(), ShouldContainSubstring, "API key not found")
			})
		})
	})
}

func TestSitePost(t *testing.T) {
	Convey("Given a session with a stored analysis", t, func() {
		deps := newFakeDeps()
		deps.stored[sessionID] = devfest()
		h, err := NewHandler(deps, WithSessionCookie("mentor_session"))
		So(err, ShouldBeNil)
		mux := http.NewServeMux()
		h.Register(context.Background(), mux)

		post := func(reflection string) *httptest.ResponseRecorder {
			form := url.Values{"reflection": {reflection}}
			req := httptest.NewRequest(http.MethodPost, "/post", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, withSession(req))
			return w
		}

		Convey("When the post tab is opened", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, withSession(httptest.NewRequest(http.MethodGet, "/?tab=post", nil)))
			So(w.Body.String(), ShouldContainSubstring, "What did you learn at DevFest?")
			So(w.Body.String(), ShouldContainSubstring, "Generate Post")
		})

		Convey("When a draft is generated", func() {
			deps.draft = "Thrilled to have attended DevFest!"
			w := post("met great people")

			Convey("Then it is shown in an editable textarea", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := w.Body.String()
				So(body, ShouldContainSubstring, `<textarea id="draft" name="draft" class="draft" rows="12">Thrilled to have attended DevFest!</textarea>`)
				So(body, ShouldNotContainSubstring, "readonly")
				So(deps.reflection, ShouldEqual, "met great people")
			})
		})

		Convey("When drafting fails", func() {
			deps.draftErr = errors.New("quota exceeded")
			w := post("x")

			Convey("Then the error is shown inline", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "quota exceeded")
			})
		})
	})
}

func TestSiteHandlerWithNilMux(t *testing.T) {
	Convey("Given a nil mux", t, func() {
		h, err := NewHandler(newFakeDeps())
		So(err, ShouldBeNil)

		Convey("Then Register panics", func() {
			So(func() { h.Register(context.Background(), nil) }, ShouldPanic)
		})
	})
}
