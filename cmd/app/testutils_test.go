package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/blogsite/internal/blogservice"
	"github.com/sushihentaime/blogsite/internal/commentservice"
	"github.com/sushihentaime/blogsite/internal/common"
	"github.com/sushihentaime/blogsite/internal/docstore"
	"github.com/sushihentaime/blogsite/internal/identity"
	"github.com/sushihentaime/blogsite/internal/wishlistservice"
)

const testSecret = "test-secret-that-is-at-least-32-bytes-long"

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

// publishedMessage is a message seen by recordingProducer.
type publishedMessage struct {
	body     []byte
	key      common.BindingKey
	exchange common.Exchange
}

type recordingProducer struct {
	mu       sync.Mutex
	messages []publishedMessage
}

func (p *recordingProducer) Publish(_ context.Context, msg []byte, key common.BindingKey, exchange common.Exchange) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, publishedMessage{body: msg, key: key, exchange: exchange})
	return nil
}

func (p *recordingProducer) Messages() []publishedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedMessage(nil), p.messages...)
}

// testEnv exposes the collaborators behind a test application.
type testEnv struct {
	blogs    *docstore.Recorder
	wishlist *docstore.Recorder
	comments *docstore.Recorder
	verifier *identity.HMACVerifier
	producer *recordingProducer
}

// storeCalls is the number of calls made to every collection.
func (e *testEnv) storeCalls() int {
	return e.blogs.Calls("") + e.wishlist.Calls("") + e.comments.Calls("")
}

func (e *testEnv) token(t *testing.T, email string) *string {
	t.Helper()

	token, err := e.verifier.Sign(email, time.Hour)
	require.NoError(t, err)

	return &token
}

func newTestConfig() *Config {
	return &Config{
		Port:          "4000",
		Environment:   "development",
		Version:       "1.0.0",
		StorageDriver: storageDriverMemory,
		AuthDevSecret: testSecret,
	}
}

func newTestApplication(t *testing.T) (*application, *testEnv) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	verifier, err := identity.NewHMACVerifier(testSecret, devTokenIssuer, devTokenAudience)
	require.NoError(t, err)

	env := &testEnv{
		blogs:    docstore.NewRecorder(docstore.NewMemoryStore()),
		wishlist: docstore.NewRecorder(docstore.NewMemoryStore()),
		comments: docstore.NewRecorder(docstore.NewMemoryStore()),
		verifier: verifier,
		producer: &recordingProducer{},
	}

	app := &application{
		config:          newTestConfig(),
		logger:          logger,
		verifier:        verifier,
		blogService:     blogservice.NewBlogService(env.blogs),
		wishlistService: wishlistservice.NewWishlistService(env.wishlist),
		commentService:  commentservice.NewCommentService(env.comments, env.blogs, env.producer, logger),
	}

	return app, env
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	var envelope envelope
	err = json.Unmarshal(responseBody, &envelope)
	if err != nil {
		t.Fatal(err)
	}

	return res.StatusCode, res.Header, envelope
}

func (ts *testServer) do(t *testing.T, method, path string, token *string, payload any) (int, http.Header, envelope) {
	var body io.Reader

	if payload != nil {
		jsonPayload, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(jsonPayload)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != nil {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *token))
	}

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) post(t *testing.T, path string, token *string, payload any) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPost, path, token, payload)
}

func (ts *testServer) get(t *testing.T, path string, token *string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodGet, path, token, nil)
}

func (ts *testServer) put(t *testing.T, path string, token *string, payload any) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPut, path, token, payload)
}

func (ts *testServer) delete(t *testing.T, path string, token *string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodDelete, path, token, nil)
}

// rawRequest sends a request with the Authorization header set verbatim.
func (ts *testServer) rawRequest(t *testing.T, method, path, authorization string, payload any) (int, envelope) {
	var body io.Reader

	if payload != nil {
		jsonPayload, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(jsonPayload)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}

	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	status, _, env := readResponse(t, res)
	return status, env
}

// seedBlog inserts blog directly into the store and returns its id.
func seedBlog(t *testing.T, env *testEnv, blog docstore.Document) string {
	t.Helper()

	res, err := env.blogs.Store.InsertOne(context.Background(), blog)
	require.NoError(t, err)

	return res.InsertedID
}

func seedWishlistEntry(t *testing.T, env *testEnv, entry docstore.Document) string {
	t.Helper()

	res, err := env.wishlist.Store.InsertOne(context.Background(), entry)
	require.NoError(t, err)

	return res.InsertedID
}

func strptr(s string) *string {
	return &s
}

// failingStore answers every call with err, as an unreachable database would.
type failingStore struct {
	err error
}

func (s failingStore) InsertOne(context.Context, docstore.Document) (*docstore.InsertOneResult, error) {
	return nil, s.err
}

func (s failingStore) Find(context.Context, docstore.Filter, ...docstore.FindOptions) ([]docstore.Document, error) {
	return nil, s.err
}

func (s failingStore) FindOne(context.Context, docstore.Filter) (docstore.Document, error) {
	return nil, s.err
}

func (s failingStore) UpdateOne(context.Context, docstore.Filter, docstore.Document) (*docstore.UpdateResult, error) {
	return nil, s.err
}

func (s failingStore) DeleteOne(context.Context, docstore.Filter) (*docstore.DeleteResult, error) {
	return nil, s.err
}
