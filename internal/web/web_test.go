package web

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"dealradar/internal/database"
	"dealradar/internal/monitor"
	"dealradar/internal/scraper"

	"github.com/gin-gonic/gin"
)

const adminEmail = "admin@dealradar.com"

type stubScraper struct {
	details map[string]scraper.Details
}

func (s *stubScraper) Seller() string                        { return "Amazon" }
func (s *stubScraper) SellerURL() string                     { return "https://amazon.com" }
func (s *stubScraper) CanHandle(u string) bool               { return strings.HasPrefix(u, "https://shop.test/") }
func (s *stubScraper) CanonicalURL(u string) (string, error) { return u, nil }

func (s *stubScraper) FetchProductDetails(ctx context.Context, u string) (*scraper.Details, error) {
	d, ok := s.details[u]
	if !ok {
		return nil, scraper.ErrNotFound
	}
	d.CanonicalURL = u
	return &d, nil
}

type testApp struct {
	db     *database.DB
	ts     *httptest.Server
	client *http.Client
	shop   *stubScraper
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.New("sqlite3", filepath.Join(t.TempDir(), "web.db"))
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	shop := &stubScraper{details: map[string]scraper.Details{}}
	mon := monitor.New(db, scraper.NewRegistryWith(shop), nil, 0)
	srv := New(db, mon, NewMemoryStore(), Options{AdminEmail: adminEmail})

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	jar, _ := cookiejar.New(nil)
	return &testApp{db: db, ts: ts, client: &http.Client{Jar: jar}, shop: shop}
}

func (a *testApp) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := a.client.Get(a.ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return readResponse(t, resp)
}

func (a *testApp) post(t *testing.T, path string, form url.Values) (int, string) {
	t.Helper()
	resp, err := a.client.PostForm(a.ts.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return readResponse(t, resp)
}

func readResponse(t *testing.T, resp *http.Response) (int, string) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func (a *testApp) signupAndLogin(t *testing.T, email string) {
	t.Helper()
	_, body := a.post(t, "/signup", url.Values{
		"fname": {"Ana"}, "lname": {"Lima"}, "email": {email}, "password": {"secret"},
	})
	if !strings.Contains(body, "Account created! Please login.") {
		t.Fatalf("signup page: %s", body)
	}
	_, body = a.post(t, "/login", url.Values{"email": {email}, "password": {"secret"}})
	if !strings.Contains(body, "<h1>Dashboard</h1>") && !strings.Contains(body, "<h1>Admin</h1>") {
		t.Fatalf("login did not reach dashboard: %s", body)
	}
}

func TestSignupLoginLogout(t *testing.T) {
	app := newTestApp(t)

	status, body := app.get(t, "/")
	if status != http.StatusOK || !strings.Contains(body, "<h1>Login</h1>") {
		t.Fatalf("GET / = %d %s", status, body)
	}

	app.signupAndLogin(t, "ana@example.com")

	_, body = app.get(t, "/dashboard")
	if !strings.Contains(body, "ana@example.com") || !strings.Contains(body, "Nothing being watched yet.") {
		t.Errorf("unexpected dashboard: %s", body)
	}

	_, body = app.get(t, "/logout")
	if !strings.Contains(body, "<h1>Login</h1>") {
		t.Errorf("logout did not return to login: %s", body)
	}
	_, body = app.get(t, "/dashboard")
	if !strings.Contains(body, "<h1>Login</h1>") {
		t.Errorf("dashboard reachable after logout: %s", body)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	app.signupAndLogin(t, "ana@example.com")
	app.get(t, "/logout")

	_, body := app.post(t, "/signup", url.Values{
		"fname": {"Ana"}, "email": {"ANA@example.com"}, "password": {"other"},
	})
	if !strings.Contains(body, "Email exists.") {
		t.Errorf("duplicate signup: %s", body)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	app := newTestApp(t)
	app.signupAndLogin(t, "ana@example.com")
	app.get(t, "/logout")

	_, body := app.post(t, "/login", url.Values{"email": {"ana@example.com"}, "password": {"wrong"}})
	if !strings.Contains(body, "User not found!") {
		t.Errorf("wrong password: %s", body)
	}
}

func TestStaleSessionAfterReset(t *testing.T) {
	app := newTestApp(t)
	app.signupAndLogin(t, "ana@example.com")

	if err := app.db.Reset(context.Background()); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	status, body := app.get(t, "/dashboard")
	if status != http.StatusOK || !strings.Contains(body, "Database was reset. Please login again.") {
		t.Fatalf("stale dashboard = %d %s", status, body)
	}
	if !strings.Contains(body, "<h1>Login</h1>") {
		t.Errorf("stale session not sent to login: %s", body)
	}

	app.shop.details["https://shop.test/p/1"] = scraper.Details{Name: "Lamp", Price: 10}
	app.signupAndLogin(t, "bob@example.com")
	app.db.Reset(context.Background())
	_, body = app.post(t, "/user/create_product", url.Values{"pname_or_link": {"https://shop.test/p/1"}})
	if !strings.Contains(body, "Database was reset. Please login again.") {
		t.Errorf("stale create_product: %s", body)
	}
}

func TestCreateProductAndUpdateTarget(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	app.signupAndLogin(t, "ana@example.com")
	app.shop.details["https://shop.test/p/1"] = scraper.Details{Name: "Espresso Machine Deluxe Edition", Category: "Amazon Import", Price: 80}

	_, body := app.post(t, "/user/create_product", url.Values{"pname_or_link": {"https://shop.test/p/1"}})
	if !strings.Contains(body, "Added &#39;Espresso Machine Del...&#39;") {
		t.Fatalf("create_product: %s", body)
	}

	_, body = app.post(t, "/user/create_product", url.Values{"pname_or_link": {"https://shop.test/missing"}})
	if !strings.Contains(body, "Could not read product link.") {
		t.Errorf("failed discovery: %s", body)
	}

	u, err := app.db.UserByEmail(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("UserByEmail: %v", err)
	}
	items, err := app.db.Watchlist(ctx, u.ID)
	if err != nil || len(items) != 1 {
		t.Fatalf("Watchlist = %+v, %v", items, err)
	}
	cid := items[0].CartID

	form := url.Values{"cid": {itoa(cid)}, "new_cutoff": {"100"}}
	_, body = app.post(t, "/update_target", form)
	if !strings.Contains(body, "Deal detected!") {
		t.Errorf("first update: %s", body)
	}
	if !strings.Contains(body, `class="deal"`) {
		t.Errorf("deal not highlighted: %s", body)
	}

	_, body = app.post(t, "/update_target", form)
	if !strings.Contains(body, "Target updated.") {
		t.Errorf("second update: %s", body)
	}

	for _, bad := range []string{"abc", "NaN", "Inf", "-5"} {
		status, body := app.post(t, "/update_target", url.Values{"cid": {itoa(cid)}, "new_cutoff": {bad}})
		if status != http.StatusOK || !strings.Contains(body, "Invalid target price.") {
			t.Errorf("target %q: %d %s", bad, status, body)
		}
	}

	_, body = app.get(t, "/delete_cart/"+itoa(cid))
	if !strings.Contains(body, "Nothing being watched yet.") {
		t.Errorf("delete_cart: %s", body)
	}
}

func TestTriggerScrape(t *testing.T) {
	app := newTestApp(t)
	app.signupAndLogin(t, "ana@example.com")

	_, body := app.get(t, "/trigger_scrape")
	if !strings.Contains(body, "No tracked links.") {
		t.Errorf("trigger_scrape: %s", body)
	}
}

func TestAdminPanel(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	app.signupAndLogin(t, "ana@example.com")
	_, body := app.get(t, "/admin")
	if strings.Contains(body, "<h1>Admin</h1>") {
		t.Fatal("regular user reached admin panel")
	}
	app.get(t, "/logout")

	app.signupAndLogin(t, adminEmail)
	_, body = app.get(t, "/dashboard")
	if !strings.Contains(body, "<h1>Admin</h1>") {
		t.Fatalf("admin dashboard did not redirect to panel: %s", body)
	}

	_, body = app.post(t, "/admin/add_product", url.Values{
		"pname": {"Standing Desk"}, "description": {"Oak"}, "category": {"Home"}, "msrp": {"499.999"},
	})
	if !strings.Contains(body, "Product created.") || !strings.Contains(body, "Standing Desk") || !strings.Contains(body, "500.00") {
		t.Fatalf("add_product: %s", body)
	}

	for _, bad := range []string{"NaN", "-Inf", "-1"} {
		status, body := app.post(t, "/admin/add_product", url.Values{"pname": {"Broken"}, "msrp": {bad}})
		if status != http.StatusOK || !strings.Contains(body, "Invalid MSRP.") {
			t.Errorf("msrp %q: %d %s", bad, status, body)
		}
	}

	products, err := app.db.ListProducts(ctx)
	if err != nil || len(products) != 1 {
		t.Fatalf("ListProducts = %+v, %v", products, err)
	}
	_, body = app.get(t, "/admin/delete_product/"+itoa(products[0].ID))
	if strings.Contains(body, "Standing Desk") {
		t.Errorf("product still listed after delete: %s", body)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	status, body := app.get(t, "/health")
	if status != http.StatusOK || !strings.Contains(body, `"status":"ok"`) {
		t.Errorf("health = %d %s", status, body)
	}

	status, body = app.get(t, "/metrics")
	if status != http.StatusOK || !strings.Contains(body, "dealradar_http_requests_total") {
		t.Errorf("metrics = %d, missing request counter", status)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	sess := &Session{UserID: 7, Email: "ana@example.com"}
	sess.AddFlash("info", "hello")
	if err := store.Save(ctx, "abc", sess, time.Hour); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UserID != 7 || len(got.popFlashes()) != 1 {
		t.Errorf("got %+v", got)
	}
	if again, _ := store.Get(ctx, "abc"); len(again.Flashes) != 1 {
		t.Error("popFlashes on a copy changed the stored session")
	}

	now = now.Add(2 * time.Hour)
	if _, err := store.Get(ctx, "abc"); err != ErrNoSession {
		t.Errorf("expired session: err = %v, want ErrNoSession", err)
	}
}

func TestSessionClearKeepsFlashes(t *testing.T) {
	sess := &Session{UserID: 1, Email: "a@b.c", IsAdmin: true}
	sess.AddFlash("warning", "bye")
	sess.Clear()

	want := Flash{Category: "warning", Message: "bye"}
	if sess.LoggedIn() || sess.Email != "" || sess.IsAdmin || len(sess.Flashes) != 1 || sess.Flashes[0] != want {
		t.Errorf("Clear() = %+v", sess)
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
