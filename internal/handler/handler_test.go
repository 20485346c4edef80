package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/iliyamo/order-desk/internal/database"
	"github.com/iliyamo/order-desk/internal/queue"
	"github.com/iliyamo/order-desk/internal/repository"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.OrderEvent
}

func (p *recordingPublisher) PublishOrderEvent(_ context.Context, ev queue.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) snapshot() []queue.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]queue.OrderEvent(nil), p.events...)
}

type testServer struct {
	e      *echo.Echo
	db     *sql.DB
	events *recordingPublisher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "handler.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	pub := &recordingPublisher{}
	e := echo.New()

	ch := NewCustomerHandler(repository.NewCustomerRepo(db))
	e.POST("/customers/", ch.Create)
	e.GET("/customers/:id", ch.Get)
	e.PUT("/customers/:id", ch.Update)
	e.DELETE("/customers/:id", ch.Delete)

	ih := NewItemHandler(repository.NewItemRepo(db))
	e.POST("/items/", ih.Create)
	e.GET("/items/:id", ih.Get)
	e.PUT("/items/:id", ih.Update)
	e.DELETE("/items/:id", ih.Delete)

	oh := NewOrderHandler(repository.NewOrderRepo(db), pub)
	e.POST("/orders/", oh.Create)
	e.GET("/orders/:id", oh.Get)
	e.PUT("/orders/:id", oh.Update)
	e.DELETE("/orders/:id", oh.Delete)
	e.GET("/orders/:id/items", oh.ListLines)
	e.POST("/orders/:id/items", oh.AddLine)

	return &testServer{e: e, db: db, events: pub}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) count(t *testing.T, table string) int {
	t.Helper()

	var n int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

// mustCreate posts body to path, expects 201 and returns the value of idKey.
func (s *testServer) mustCreate(t *testing.T, path, body, idKey string) int64 {
	t.Helper()

	rec := s.do(http.MethodPost, path, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := gjson.Get(rec.Body.String(), idKey).Int()
	require.Positive(t, id)
	return id
}

func idPath(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10)
}
