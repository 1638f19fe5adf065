package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/valosek/hn-browser/app/database"
)

func TestResolveImageNilURL(t *testing.T) {
	resolver := NewResolver(testClient())

	imageURL, readable, errRecord := resolver.ResolveImage(context.Background(), nil)
	if imageURL != nil {
		t.Errorf("Expected nil image URL, got %v", *imageURL)
	}
	if readable != nil {
		t.Error("Expected nil readable content")
	}
	if errRecord != nil {
		t.Errorf("Expected no error record, got %+v", errRecord)
	}
}

func TestResolveImageFirstImgWins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<img src="/assets/hero.png">
			<img src="https://cdn.example/second.jpg">
		</body></html>`))
	}))
	defer server.Close()

	resolver := NewResolver(testClient())
	pageURL := server.URL + "/post"

	imageURL, _, errRecord := resolver.ResolveImage(context.Background(), &pageURL)
	if errRecord != nil {
		t.Fatalf("Expected no error record, got %+v", errRecord)
	}
	if imageURL == nil {
		t.Fatal("Expected an image URL")
	}
	if *imageURL != server.URL+"/assets/hero.png" {
		t.Errorf("Expected first image resolved against page URL, got %s", *imageURL)
	}
}

func TestResolveImageKeepsDataURI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><img src="data:image/gif;base64,R0lGOD"></body></html>`))
	}))
	defer server.Close()

	resolver := NewResolver(testClient())
	pageURL := server.URL

	imageURL, _, errRecord := resolver.ResolveImage(context.Background(), &pageURL)
	if errRecord != nil {
		t.Fatalf("Expected no error record, got %+v", errRecord)
	}
	if imageURL == nil || *imageURL != "data:image/gif;base64,R0lGOD" {
		t.Errorf("Expected data URI kept verbatim, got %v", imageURL)
	}
}

func TestResolveImageNoImagesIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>text only</p></body></html>`))
	}))
	defer server.Close()

	resolver := NewResolver(testClient())
	pageURL := server.URL

	imageURL, _, errRecord := resolver.ResolveImage(context.Background(), &pageURL)
	if imageURL != nil {
		t.Errorf("Expected nil image URL, got %v", *imageURL)
	}
	if errRecord != nil {
		t.Errorf("Expected no error record for a page without images, got %+v", errRecord)
	}
}

func TestResolveImageFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	resolver := NewResolver(testClient())
	pageURL := server.URL

	imageURL, _, errRecord := resolver.ResolveImage(context.Background(), &pageURL)
	if imageURL != nil {
		t.Error("Expected nil image URL on fetch failure")
	}
	if errRecord == nil || errRecord.Kind != database.FailureImageFetch {
		t.Errorf("Expected ImageFetchFailed record, got %+v", errRecord)
	}
}

func TestResolveImageEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 200 with no body
	}))
	defer server.Close()

	resolver := NewResolver(testClient())
	pageURL := server.URL

	imageURL, _, errRecord := resolver.ResolveImage(context.Background(), &pageURL)
	if imageURL != nil {
		t.Error("Expected nil image URL on empty body")
	}
	if errRecord == nil || errRecord.Kind != database.FailureEmptyResponse {
		t.Errorf("Expected EmptyResponse record, got %+v", errRecord)
	}
}

func TestResolveImageURL(t *testing.T) {
	resolved := resolveImageURL("https://blog.example/posts/1", "../img/a.png")
	if resolved != "https://blog.example/img/a.png" {
		t.Errorf("Unexpected resolved URL: %s", resolved)
	}

	resolved = resolveImageURL("https://blog.example/posts/1", "https://cdn.example/a.png")
	if resolved != "https://cdn.example/a.png" {
		t.Errorf("Absolute src should be kept, got: %s", resolved)
	}
}
