package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"mercator-hq/tonecoach/pkg/config"
	"mercator-hq/tonecoach/pkg/mail"
)

// fakeAPI serves the subset of the Gmail REST API used by Client.
type fakeAPI struct {
	mu      sync.Mutex
	threads map[string]*gmailapi.Thread
	order   []string
	drafts  []*gmailapi.Draft
	queries []string
	maxes   []string
	formats []string
	status  int
}

func newFakeAPI(threads ...*gmailapi.Thread) *fakeAPI {
	f := &fakeAPI{threads: make(map[string]*gmailapi.Thread)}
	for _, th := range threads {
		f.threads[th.Id] = th
		f.order = append(f.order, th.Id)
	}
	return f
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /gmail/v1/users/me/threads", func(w http.ResponseWriter, r *http.Request) {
		if f.fail(w) {
			return
		}
		f.mu.Lock()
		f.queries = append(f.queries, r.URL.Query().Get("q"))
		f.maxes = append(f.maxes, r.URL.Query().Get("maxResults"))
		resp := &gmailapi.ListThreadsResponse{}
		for _, id := range f.order {
			th := f.threads[id]
			resp.Threads = append(resp.Threads, &gmailapi.Thread{Id: th.Id, Snippet: th.Snippet})
		}
		f.mu.Unlock()
		writeJSON(w, resp)
	})
	mux.HandleFunc("GET /gmail/v1/users/me/threads/{id}", func(w http.ResponseWriter, r *http.Request) {
		if f.fail(w) {
			return
		}
		f.mu.Lock()
		f.formats = append(f.formats, r.URL.Query().Get("format"))
		th, ok := f.threads[r.PathValue("id")]
		f.mu.Unlock()
		if !ok {
			writeAPIError(w, http.StatusNotFound, "Requested entity was not found.")
			return
		}
		writeJSON(w, th)
	})
	mux.HandleFunc("POST /gmail/v1/users/me/drafts", func(w http.ResponseWriter, r *http.Request) {
		if f.fail(w) {
			return
		}
		var d gmailapi.Draft
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			writeAPIError(w, http.StatusBadRequest, err.Error())
			return
		}
		f.mu.Lock()
		f.drafts = append(f.drafts, &d)
		f.mu.Unlock()
		writeJSON(w, &gmailapi.Draft{
			Id:      "r-1",
			Message: &gmailapi.Message{Id: "m-9", ThreadId: d.Message.ThreadId},
		})
	})
	return mux
}

func (f *fakeAPI) fail(w http.ResponseWriter) bool {
	f.mu.Lock()
	status := f.status
	f.mu.Unlock()
	if status == 0 {
		return false
	}
	writeAPIError(w, status, http.StatusText(status))
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": code, "message": message},
	})
}

func testMailConfig() *config.MailConfig {
	return &config.MailConfig{
		UserID:         "me",
		DefaultQuery:   "in:inbox",
		MaxResults:     5,
		RequestTimeout: 5 * time.Second,
	}
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	factory := func(ctx context.Context) (*gmailapi.Service, error) {
		return gmailapi.NewService(ctx,
			option.WithHTTPClient(srv.Client()),
			option.WithEndpoint(srv.URL+"/"),
		)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(testMailConfig(), factory, logger)
}

func b64(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func header(name, value string) *gmailapi.MessagePartHeader {
	return &gmailapi.MessagePartHeader{Name: name, Value: value}
}

func deadlineThread() *gmailapi.Thread {
	return &gmailapi.Thread{
		Id:      "t-1",
		Snippet: "Can&#39;t make Friday",
		Messages: []*gmailapi.Message{
			{
				Id:           "m-1",
				InternalDate: 1700000000000,
				Payload: &gmailapi.MessagePart{
					MimeType: "multipart/alternative",
					Headers: []*gmailapi.MessagePartHeader{
						header("From", "Lee <lee@example.com>"),
						header("To", "me@example.com"),
						header("Subject", "Deadline"),
						header("Message-ID", "<m1@example.com>"),
						header("Date", "Tue, 14 Nov 2023 22:13:20 +0000"),
					},
					Parts: []*gmailapi.MessagePart{
						{MimeType: "text/plain", Body: &gmailapi.MessagePartBody{Data: b64("Can't make Friday.")}},
						{MimeType: "text/html", Body: &gmailapi.MessagePartBody{Data: b64("<p>Can't make <b>Friday</b>.</p>")}},
					},
				},
			},
			{
				Id:           "m-2",
				InternalDate: 1700003600000,
				Payload: &gmailapi.MessagePart{
					MimeType: "text/html",
					Headers: []*gmailapi.MessagePartHeader{
						header("From", "Sam <sam@example.com>"),
						header("Subject", "Re: Deadline"),
						header("Message-ID", "<m2@example.com>"),
					},
					Body: &gmailapi.MessagePartBody{Data: b64("<div>Monday works &amp; so does Tuesday</div>")},
				},
			},
		},
	}
}

func budgetThread() *gmailapi.Thread {
	return &gmailapi.Thread{
		Id:      "t-2",
		Snippet: "Numbers attached",
		Messages: []*gmailapi.Message{
			{
				Id: "m-3",
				Payload: &gmailapi.MessagePart{
					MimeType: "text/plain",
					Headers:  []*gmailapi.MessagePartHeader{header("Subject", "Budget")},
					Body:     &gmailapi.MessagePartBody{Data: b64("See the numbers.")},
				},
			},
		},
	}
}

func TestClient_ListThreads(t *testing.T) {
	api := newFakeAPI(deadlineThread(), budgetThread())
	client := newTestClient(t, api)

	threads, err := client.ListThreads(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("ListThreads() error = %v", err)
	}

	want := []mail.ThreadSummary{
		{ID: "t-1", Snippet: "Can't make Friday", Subject: "Deadline"},
		{ID: "t-2", Snippet: "Numbers attached", Subject: "Budget"},
	}
	if len(threads) != len(want) {
		t.Fatalf("got %d threads, want %d", len(threads), len(want))
	}
	for i := range want {
		if threads[i] != want[i] {
			t.Errorf("threads[%d] = %+v, want %+v", i, threads[i], want[i])
		}
	}

	if api.queries[0] != "in:inbox" {
		t.Errorf("query = %q, want default in:inbox", api.queries[0])
	}
	if api.maxes[0] != "5" {
		t.Errorf("maxResults = %q, want default 5", api.maxes[0])
	}
	for _, f := range api.formats {
		if f != "metadata" {
			t.Errorf("subject fetch used format %q, want metadata", f)
		}
	}
}

func TestClient_ListThreads_ExplicitQuery(t *testing.T) {
	api := newFakeAPI(budgetThread())
	client := newTestClient(t, api)

	if _, err := client.ListThreads(context.Background(), "from:boss", 2); err != nil {
		t.Fatalf("ListThreads() error = %v", err)
	}
	if api.queries[0] != "from:boss" || api.maxes[0] != "2" {
		t.Errorf("query = %q max = %q, want from:boss 2", api.queries[0], api.maxes[0])
	}
}

func TestClient_GetThread(t *testing.T) {
	api := newFakeAPI(deadlineThread())
	client := newTestClient(t, api)

	thread, err := client.GetThread(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("GetThread() error = %v", err)
	}
	if api.formats[0] != "full" {
		t.Errorf("format = %q, want full", api.formats[0])
	}
	if len(thread.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(thread.Messages))
	}

	first := thread.Messages[0]
	if first.Body != "Can't make Friday." {
		t.Errorf("first body = %q, want the text/plain part", first.Body)
	}
	if first.From != "Lee <lee@example.com>" || first.MessageID != "<m1@example.com>" {
		t.Errorf("first headers = %+v", first)
	}
	if !first.Date.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("first date = %v, want Date header", first.Date)
	}

	second := thread.Messages[1]
	if second.Body != "Monday works & so does Tuesday" {
		t.Errorf("second body = %q, want converted html", second.Body)
	}
	if !second.Date.Equal(time.UnixMilli(1700003600000)) {
		t.Errorf("second date = %v, want internal date", second.Date)
	}

	wantText := "Can't make Friday." + mail.MessageSeparator + "Monday works & so does Tuesday"
	if thread.Text() != wantText {
		t.Errorf("Text() = %q, want %q", thread.Text(), wantText)
	}
}

func TestClient_GetThread_NotFound(t *testing.T) {
	client := newTestClient(t, newFakeAPI())

	_, err := client.GetThread(context.Background(), "missing")
	var notFound *mail.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want *mail.NotFoundError", err)
	}
	if notFound.ThreadID != "missing" {
		t.Errorf("ThreadID = %q, want missing", notFound.ThreadID)
	}

	if _, err := client.GetThread(context.Background(), ""); !errors.As(err, &notFound) {
		t.Errorf("empty id error = %v, want *mail.NotFoundError", err)
	}
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		checkFn func(error) bool
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			checkFn: func(err error) bool {
				var target *mail.NotAuthorizedError
				return errors.As(err, &target)
			},
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			checkFn: func(err error) bool {
				var target *mail.GatewayError
				return errors.As(err, &target) && target.Op == "list_threads"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(budgetThread())
			api.status = tt.status
			client := newTestClient(t, api)

			_, err := client.ListThreads(context.Background(), "", 0)
			if err == nil || !tt.checkFn(err) {
				t.Errorf("ListThreads() error = %v (%T)", err, err)
			}
		})
	}
}

func TestClient_CreateDraft(t *testing.T) {
	api := newFakeAPI(deadlineThread())
	client := newTestClient(t, api)

	ref, err := client.CreateDraft(context.Background(), mail.Draft{
		ThreadID:  "t-1",
		To:        "Lee <lee@example.com>",
		Subject:   "Re: Deadline",
		Body:      "Monday works.\nThanks!",
		InReplyTo: "<m1@example.com>",
	})
	if err != nil {
		t.Fatalf("CreateDraft() error = %v", err)
	}
	if ref.ID != "r-1" || ref.MessageID != "m-9" || ref.ThreadID != "t-1" {
		t.Errorf("ref = %+v", ref)
	}

	if len(api.drafts) != 1 {
		t.Fatalf("got %d drafts, want 1", len(api.drafts))
	}
	sent := api.drafts[0].Message
	if sent.ThreadId != "t-1" {
		t.Errorf("draft thread = %q, want t-1", sent.ThreadId)
	}
	raw, err := base64.URLEncoding.DecodeString(sent.Raw)
	if err != nil {
		t.Fatalf("raw is not base64url: %v", err)
	}
	for _, want := range []string{
		"To: Lee <lee@example.com>\r\n",
		"Subject: Re: Deadline\r\n",
		"In-Reply-To: <m1@example.com>\r\n",
		"Content-Type: text/plain; charset=\"UTF-8\"\r\n",
		"\r\n\r\nMonday works.\r\nThanks!",
	} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("raw message missing %q:\n%s", want, raw)
		}
	}
}

func TestClient_LazyService(t *testing.T) {
	api := newFakeAPI(budgetThread())
	srv := httptest.NewServer(api.handler())
	defer srv.Close()

	calls := 0
	authorized := false
	factory := func(ctx context.Context) (*gmailapi.Service, error) {
		calls++
		if !authorized {
			return nil, &mail.NotAuthorizedError{Reason: "no saved token"}
		}
		return gmailapi.NewService(ctx,
			option.WithHTTPClient(srv.Client()),
			option.WithEndpoint(srv.URL+"/"),
		)
	}
	client := NewClient(testMailConfig(), factory, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := client.GetThread(context.Background(), "t-2")
	var notAuth *mail.NotAuthorizedError
	if !errors.As(err, &notAuth) {
		t.Fatalf("error = %v, want *mail.NotAuthorizedError", err)
	}

	authorized = true
	for i := 0; i < 2; i++ {
		if _, err := client.GetThread(context.Background(), "t-2"); err != nil {
			t.Fatalf("GetThread() after auth error = %v", err)
		}
	}
	if calls != 2 {
		t.Errorf("factory called %d times, want 2 (retry after failure, then cached)", calls)
	}
}

func TestClient_FactoryFailure(t *testing.T) {
	factory := func(ctx context.Context) (*gmailapi.Service, error) {
		return nil, errors.New("credentials file is malformed")
	}
	client := NewClient(testMailConfig(), factory, nil)

	_, err := client.CreateDraft(context.Background(), mail.Draft{ThreadID: "t-1"})
	var gwErr *mail.GatewayError
	if !errors.As(err, &gwErr) || gwErr.Op != "connect" {
		t.Errorf("error = %v, want GatewayError with op connect", err)
	}
}
