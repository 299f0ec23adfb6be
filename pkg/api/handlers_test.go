package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestServer_handleHealth(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	server.handleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response APIResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if !response.Success {
		t.Error("Expected success to be true")
	}

	if response.Data == nil {
		t.Error("Expected data to be present")
	}
}

func TestServer_handlePut(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	tests := []struct {
		name           string
		key            string
		value          string
		expectedStatus int
	}{
		{
			name:           "valid put",
			key:            "testkey",
			value:          "testvalue",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "empty key",
			key:            "",
			value:          "testvalue",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "empty value",
			key:            "testkey2",
			value:          "",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := json.Marshal(tt.value)
			if err != nil {
				t.Fatalf("Failed to marshal request body: %v", err)
			}

			req := httptest.NewRequest("PUT", "/kv/"+tt.key, bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			// Set up chi context for URL params
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("key", tt.key)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()

			handler := server.handlePut
			handler(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedStatus == http.StatusOK {
				var response APIResponse
				if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				if !response.Success {
					t.Error("Expected success to be true")
				}
			}
		})
	}
}

func TestServer_handleGet(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	// First put a value
	key := "testkey"
	value := "testvalue"
	if err := server.store.Put(key, value); err != nil {
		t.Fatalf("Failed to put test data: %v", err)
	}

	tests := []struct {
		name           string
		key            string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "existing key",
			key:            "testkey",
			expectedStatus: http.StatusOK,
			expectedBody:   `"testvalue"`,
		},
		{
			name:           "non-existing key",
			key:            "nonexistent",
			expectedStatus: http.StatusNotFound,
			expectedBody:   "",
		},
		{
			name:           "empty key",
			key:            "",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/kv/"+tt.key, nil)
			req.Header.Set("Accept", "application/json")

			// Set up chi context for URL params
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("key", tt.key)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()

			handler := server.handleGet
			handler(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedStatus == http.StatusOK {
				body := strings.TrimSpace(w.Body.String())
				if body != tt.expectedBody {
					t.Errorf("Expected body %q, got %q", tt.expectedBody, body)
				}

				contentType := w.Header().Get("Content-Type")
				if contentType != "application/json" {
					t.Errorf("Expected Content-Type application/json, got %s", contentType)
				}
			}
		})
	}
}

func TestServer_handleGet_framed(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	key := "testkey"
	value := "testvalue"
	if err := server.store.Put(key, value); err != nil {
		t.Fatalf("Failed to put test data: %v", err)
	}

	req := httptest.NewRequest("GET", "/kv/"+key, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("key", key)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	w := httptest.NewRecorder()
	server.handleGet(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	contentType := w.Header().Get("Content-Type")
	if contentType != "application/octet-stream" {
		t.Errorf("Expected Content-Type application/octet-stream, got %s", contentType)
	}

	if w.Body.Len() == 0 {
		t.Error("Expected a non-empty framed body")
	}
}

func TestServer_handleDelete(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	// First put a value
	key := "testkey"
	value := "testvalue"
	if err := server.store.Put(key, value); err != nil {
		t.Fatalf("Failed to put test data: %v", err)
	}

	tests := []struct {
		name           string
		key            string
		expectedStatus int
	}{
		{
			name:           "existing key",
			key:            "testkey",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "non-existing key",
			key:            "nonexistent",
			expectedStatus: http.StatusOK, // Delete is idempotent
		},
		{
			name:           "empty key",
			key:            "",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("DELETE", "/kv/"+tt.key, nil)

			// Set up chi context for URL params
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("key", tt.key)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()

			handler := server.handleDelete
			handler(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedStatus == http.StatusOK {
				var response APIResponse
				if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				if !response.Success {
					t.Error("Expected success to be true")
				}
			}
		})
	}
}

func TestServer_handleListKeys(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	// Put some test data
	testData := map[string]string{
		"user:1": "John",
		"user:2": "Jane",
		"item:1": "Laptop",
		"item:2": "Phone",
	}

	for key, value := range testData {
		if err := server.store.Put(key, value); err != nil {
			t.Fatalf("Failed to put test data: %v", err)
		}
	}

	tests := []struct {
		name           string
		prefix         string
		expectedCount  int
		expectedStatus int
	}{
		{
			name:           "all keys",
			prefix:         "",
			expectedCount:  4,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "user prefix",
			prefix:         "user",
			expectedCount:  2,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "item prefix",
			prefix:         "item",
			expectedCount:  2,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "non-existing prefix",
			prefix:         "nonexistent",
			expectedCount:  0,
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/kv?prefix="+tt.prefix, nil)
			w := httptest.NewRecorder()

			handler := server.handleListKeys
			handler(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedStatus == http.StatusOK {
				var response APIResponse
				if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}

				if !response.Success {
					t.Error("Expected success to be true")
				}

				data, ok := response.Data.(map[string]interface{})
				if !ok {
					t.Fatal("Expected data to be a map")
				}

				// Handle the case where keys might be nil or empty
				if keysData, exists := data["keys"]; exists {
					if keys, ok := keysData.([]interface{}); ok {
						if len(keys) != tt.expectedCount {
							t.Errorf("Expected %d keys, got %d", tt.expectedCount, len(keys))
						}
					} else {
						// If it's not an array, it might be nil or another type
						if tt.expectedCount != 0 {
							t.Errorf("Expected %d keys, but keys field is not an array", tt.expectedCount)
						}
					}
				} else if tt.expectedCount != 0 {
					t.Errorf("Expected %d keys, but keys field is missing", tt.expectedCount)
				}
			}
		})
	}
}

func TestServer_handleCreateRelationship(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	// Create test entities first
	if err := server.store.Put("user:1", "John"); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	if err := server.store.Put("item:1", "Laptop"); err != nil {
		t.Fatalf("Failed to create test item: %v", err)
	}

	tests := []struct {
		name           string
		request        RelationshipRequest
		expectedStatus int
	}{
		{
			name: "valid relationship",
			request: RelationshipRequest{
				FromKey:  "user:1",
				ToKey:    "item:1",
				Relation: "owns",
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "missing from_key",
			request: RelationshipRequest{
				ToKey:    "item:1",
				Relation: "owns",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing to_key",
			request: RelationshipRequest{
				FromKey:  "user:1",
				Relation: "owns",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing relation",
			request: RelationshipRequest{
				FromKey: "user:1",
				ToKey:   "item:1",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "non-existent from_key",
			request: RelationshipRequest{
				FromKey:  "user:999",
				ToKey:    "item:1",
				Relation: "owns",
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requestBody, _ := json.Marshal(tt.request)
			req := httptest.NewRequest("POST", "/relationships", bytes.NewReader(requestBody))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()

			handler := server.handleCreateRelationship
			handler(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestServer_handleStats(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	req := httptest.NewRequest("GET", "/stats", nil)
	w := httptest.NewRecorder()

	server.handleStats(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response APIResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if !response.Success {
		t.Error("Expected success to be true")
	}

	if response.Data == nil {
		t.Error("Expected data to be present")
	}
}

func TestServer_handleInspect(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	req := httptest.NewRequest("PUT", "/kv/inspecttest", strings.NewReader(`"hello"`))
	req.Header.Set("Content-Type", "application/json")
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("key", "inspecttest")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()
	server.handlePut(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Failed to seed inspect test data: got status %d", w.Code)
	}

	getReq := httptest.NewRequest("GET", "/kv/inspecttest", nil)
	getReq = getReq.WithContext(context.WithValue(getReq.Context(), chi.RouteCtxKey, rctx))
	getW := httptest.NewRecorder()
	server.handleGet(getW, getReq)
	if getW.Code != http.StatusOK {
		t.Fatalf("Failed to fetch framed value: got status %d", getW.Code)
	}

	inspectReq := httptest.NewRequest("POST", "/inspect", bytes.NewReader(getW.Body.Bytes()))
	inspectW := httptest.NewRecorder()
	server.handleInspect(inspectW, inspectReq)

	if inspectW.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", inspectW.Code)
	}

	var response APIResponse
	if err := json.NewDecoder(inspectW.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !response.Success {
		t.Error("Expected success to be true")
	}
}
