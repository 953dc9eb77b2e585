package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearxNG_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("format") != "json" || q.Get("q") != "go generics" {
			t.Errorf("query = %v", q)
		}
		if q.Get("language") != "en" {
			t.Errorf("language = %q", q.Get("language"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"query":"go generics","number_of_results":3,"results":[
			{"url":"https://go.dev/doc/tutorial/generics","title":"Tutorial: Getting started with generics","content":"This tutorial introduces the basics of generics in Go."},
			{"url":"","title":"broken","content":"skipped"},
			{"url":"https://go.dev/blog/intro-generics","title":"An Introduction To Generics","content":"Go 1.18 adds generics."}
		]}`))
	}))
	defer server.Close()

	s := NewSearxNG(server.URL+"/", WithSearxNGLanguage("en"))
	results, err := s.Search(context.Background(), "go generics")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[1].Title != "An Introduction To Generics" {
		t.Errorf("title = %q", results[1].Title)
	}
}

func TestSearxNG_Search_Errors(t *testing.T) {
	if _, err := NewSearxNG("").Search(context.Background(), "q"); err == nil {
		t.Error("expected error without base URL")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	if _, err := NewSearxNG(server.URL).Search(context.Background(), "q"); err == nil {
		t.Error("expected error on 403")
	}
}
