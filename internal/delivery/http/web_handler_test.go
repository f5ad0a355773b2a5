package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"optionstracker/internal/domain"
	"optionstracker/internal/middleware"
	"optionstracker/internal/repository"
	"optionstracker/internal/table"
	"optionstracker/internal/usecase"
)

type stubGateway struct {
	mu        sync.Mutex
	positions map[domain.Bucket][]domain.Position
	creates   int
	failWrite bool
}

func (g *stubGateway) ListPositions(_ context.Context, b domain.Bucket) ([]domain.Position, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]domain.Position(nil), g.positions[b]...), nil
}

func (g *stubGateway) CreatePosition(_ context.Context, d domain.PositionDraft) (domain.Bucket, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.creates++
	if g.failWrite {
		return "", fmt.Errorf("%w: status=500", domain.ErrAddPosition)
	}
	g.positions[domain.BucketActive] = append(g.positions[domain.BucketActive], domain.Position{
		PositionID:     domain.PositionID(fmt.Sprintf("n%d", g.creates)),
		Ticker:         d.Ticker,
		ExpirationDate: d.ExpirationDate,
		StrikePrice:    decimal.RequireFromString(d.StrikePrice),
	})
	return domain.BucketActive, nil
}

func (g *stubGateway) DeletePosition(_ context.Context, id domain.PositionID) (domain.Bucket, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWrite {
		return "", fmt.Errorf("%w: status=500", domain.ErrDeletePosition)
	}
	return domain.BucketActive, nil
}

func (g *stubGateway) Ping(context.Context) error { return nil }

func newTestServer(t *testing.T) (*echo.Echo, *stubGateway) {
	t.Helper()

	gw := &stubGateway{positions: map[domain.Bucket][]domain.Position{
		domain.BucketActive: {
			{PositionID: "1", Ticker: "MSFT", StrikePrice: decimal.NewFromInt(300), ExpirationDate: "2025-03-21"},
			{PositionID: "2", Ticker: "AAPL", StrikePrice: decimal.NewFromInt(150), ExpirationDate: "2025-01-17"},
		},
		domain.BucketExpired: {},
	}}

	tmpl, err := ParseTemplates()
	if err != nil {
		t.Fatalf("ParseTemplates() error = %v", err)
	}

	engine := table.NewEngine(table.DefaultRegistry(), zap.NewNop())
	svc := usecase.NewDashboardService(gw, repository.NewMemoryViewStateRepository(), engine, zap.NewNop())
	sessions := middleware.NewSessions("test-secret", time.Hour, false, nil)

	e := echo.New()
	SetupRoutes(e, &RouterConfig{
		WebHandler: NewWebHandler(tmpl, svc, zap.NewNop()),
		Sessions:   sessions.Middleware,
	})
	return e, gw
}

// client replays the session cookie across requests
type client struct {
	t      *testing.T
	e      *echo.Echo
	cookie *http.Cookie
}

func (c *client) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	c.t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	rec := httptest.NewRecorder()
	c.e.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.SessionCookie {
			c.cookie = ck
		}
	}
	return rec
}

func validForm() url.Values {
	return url.Values{
		"ticker":          {"nvda"},
		"contract_type":   {"Call"},
		"trade_direction": {"Long"},
		"quantity":        {"1"},
		"strike_price":    {"500"},
		"expiration_date": {"2025-06-20"},
		"premium":         {"10"},
		"open_price":      {"480"},
		"open_date":       {"2025-01-02"},
	}
}

func TestHandleIndexRedirects(t *testing.T) {
	e, _ := newTestServer(t)
	c := &client{t: t, e: e}

	rec := c.do(http.MethodGet, "/", nil)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/dashboard" {
		t.Errorf("GET / = %d %q, want 302 /dashboard", rec.Code, rec.Header().Get("Location"))
	}
}

func TestHandleDashboard(t *testing.T) {
	e, _ := newTestServer(t)
	c := &client{t: t, e: e}

	rec := c.do(http.MethodGet, "/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if c.cookie == nil {
		t.Fatal("no session cookie issued")
	}

	body := rec.Body.String()
	for _, want := range []string{"Active Positions", "Expired Positions", "$150.00", "Add New Position", "No positions"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Index(body, "AAPL") > strings.Index(body, "MSFT") {
		t.Error("AAPL should be listed before MSFT by expiration date")
	}
}

func TestHandleSort(t *testing.T) {
	e, _ := newTestServer(t)
	c := &client{t: t, e: e}
	c.do(http.MethodGet, "/dashboard", nil)

	c.do(http.MethodPost, "/dashboard/tables/active/sort?key=ticker", nil)
	rec := c.do(http.MethodPost, "/dashboard/tables/active/sort?key=ticker", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := rec.Body.String()
	if !strings.Contains(body, `id="table-active"`) {
		t.Error("fragment is not the active table")
	}
	if strings.Index(body, "MSFT") > strings.Index(body, "AAPL") {
		t.Error("descending ticker sort should list MSFT first")
	}
}

func TestHandleSortErrors(t *testing.T) {
	e, _ := newTestServer(t)
	c := &client{t: t, e: e}

	if rec := c.do(http.MethodPost, "/dashboard/tables/closed/sort?key=ticker", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown table status = %d, want 404", rec.Code)
	}
	if rec := c.do(http.MethodPost, "/dashboard/tables/active/sort", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("missing key status = %d, want 400", rec.Code)
	}
}

func TestHandleCreateMissingField(t *testing.T) {
	e, gw := newTestServer(t)
	c := &client{t: t, e: e}

	form := validForm()
	form.Del("strike_price")
	rec := c.do(http.MethodPost, "/dashboard/positions", form)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if gw.creates != 0 {
		t.Errorf("gateway creates = %d, want 0", gw.creates)
	}

	var trigger map[string]string
	if err := json.Unmarshal([]byte(rec.Header().Get("HX-Trigger")), &trigger); err != nil {
		t.Fatalf("HX-Trigger not JSON: %v", err)
	}
	if !strings.Contains(trigger["showAlert"], "strike_price") {
		t.Errorf("alert = %q, want strike_price named", trigger["showAlert"])
	}
	if rec.Header().Get("HX-Retarget") != "#alerts" {
		t.Errorf("HX-Retarget = %q, want #alerts", rec.Header().Get("HX-Retarget"))
	}
}

func TestHandleCreate(t *testing.T) {
	e, _ := newTestServer(t)
	c := &client{t: t, e: e}
	c.do(http.MethodGet, "/dashboard", nil)

	rec := c.do(http.MethodPost, "/dashboard/positions", validForm())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "NVDA") {
		t.Error("tables fragment missing the new position")
	}
}

func TestHandleWriteFailures(t *testing.T) {
	e, gw := newTestServer(t)
	c := &client{t: t, e: e}
	c.do(http.MethodGet, "/dashboard", nil)
	gw.failWrite = true

	rec := c.do(http.MethodPost, "/dashboard/positions", validForm())
	if rec.Code != http.StatusBadGateway {
		t.Errorf("create status = %d, want 502", rec.Code)
	}

	rec = c.do(http.MethodDelete, "/dashboard/positions/1", nil)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("delete status = %d, want 502", rec.Code)
	}

	rec = c.do(http.MethodGet, "/dashboard/tables", nil)
	if !strings.Contains(rec.Body.String(), "MSFT") {
		t.Error("failed delete changed the table")
	}
}

func TestHandleDelete(t *testing.T) {
	e, _ := newTestServer(t)
	c := &client{t: t, e: e}
	c.do(http.MethodGet, "/dashboard", nil)

	rec := c.do(http.MethodDelete, "/dashboard/positions/1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "MSFT") {
		t.Error("deleted position still rendered")
	}
	if !strings.Contains(body, "AAPL") {
		t.Error("other position missing")
	}
}

func TestHandleAPITable(t *testing.T) {
	e, _ := newTestServer(t)
	c := &client{t: t, e: e}

	rec := c.do(http.MethodGet, "/api/tables/active", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Status string     `json:"status"`
		Data   table.Grid `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "success" || resp.Data.Table != domain.TableActive || len(resp.Data.Rows) != 2 {
		t.Errorf("response = %+v", resp)
	}

	if rec := c.do(http.MethodGet, "/api/tables/closed", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown table status = %d, want 404", rec.Code)
	}
}
