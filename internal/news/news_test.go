package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"dealradar/internal/database"
	"dealradar/internal/models"

	"github.com/google/go-cmp/cmp"
)

const techFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Tech</title>
	<item><title>Fourth headline</title><link>https://news.test/4</link><pubDate>Thu, 04 Jan 2024 10:00:00 GMT</pubDate></item>
	<item><title>Third headline</title><link>https://news.test/3</link><pubDate>Wed, 03 Jan 2024 10:00:00 GMT</pubDate></item>
	<item><title>Second headline</title><link>https://news.test/2</link><pubDate>Tue, 02 Jan 2024 10:00:00 GMT</pubDate></item>
	<item><title>First headline</title><link>https://news.test/1</link><pubDate>Mon, 01 Jan 2024 10:00:00 GMT</pubDate></item>
</channel></rss>`

func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/tech.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(techFeed))
	})
	mux.HandleFunc("/broken.xml", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New("sqlite3", filepath.Join(t.TempDir(), "news.db"))
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestIngest(t *testing.T) {
	ts := newFeedServer(t)
	db := newTestDB(t)
	ctx := context.Background()

	in := NewIngester(db, map[string]string{
		"Electronics": ts.URL + "/tech.xml",
		"Home":        ts.URL + "/broken.xml",
	}, ts.Client())

	result, err := in.Ingest(ctx)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	want := &Result{Fetched: 3, Inserted: 3, Failed: []string{"Home"}}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}

	again, err := in.Ingest(ctx)
	if err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if again.Inserted != 0 {
		t.Errorf("second ingest inserted %d items, want 0", again.Inserted)
	}

	u, err := db.CreateUser(ctx, "Jane", "Roe", "jane@example.com", "secret")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	pid, err := db.CreateProduct(ctx, models.Product{Name: "Headphones", Category: "Electronics"})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if _, err := db.AddToCart(ctx, u.ID, pid, 0); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	relevant, err := db.RelevantNews(ctx, u.ID, 10)
	if err != nil {
		t.Fatalf("RelevantNews: %v", err)
	}
	var titles []string
	for _, n := range relevant {
		titles = append(titles, n.Title)
	}
	if diff := cmp.Diff([]string{"Fourth headline", "Third headline", "Second headline"}, titles); diff != "" {
		t.Errorf("titles mismatch (-want +got):\n%s", diff)
	}
}

func TestNewIngesterDefaults(t *testing.T) {
	in := NewIngester(nil, nil, nil)
	if diff := cmp.Diff(DefaultSources, in.sources); diff != "" {
		t.Errorf("sources mismatch (-want +got):\n%s", diff)
	}
}
