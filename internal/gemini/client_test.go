// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "AIza-test-key-0123456789"

func quietClient(baseURL string) *Client {
	return NewClient(testKey, "gemini-test").
		WithBaseURL(baseURL).
		WithLogger(log.New(io.Discard, "", 0))
}

// =============================================================================
// WIRE CONTRACT
// =============================================================================

func TestGenerateContent_RequestShape(t *testing.T) {
	var (
		gotPath   string
		gotMethod string
		gotKey    string
		gotBody   GenerateContentRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotKey = r.Header.Get("x-goog-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Hello"}]}}]}`))
	}))
	defer server.Close()

	contents := []Content{
		NewTextContent(RoleModel, "system prompt"),
		NewTextContent(RoleUser, "Hi"),
	}
	resp, err := quietClient(server.URL).GenerateContent(context.Background(), contents)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/v1beta/models/gemini-test:generateContent", gotPath)
	assert.Equal(t, testKey, gotKey)
	assert.Equal(t, contents, gotBody.Contents)

	text, ok := resp.Text()
	assert.True(t, ok)
	assert.Equal(t, "Hello", text)
}

func TestGenerateContent_BodyIsMinimal(t *testing.T) {
	var raw map[string]json.RawMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	_, err := quietClient(server.URL).GenerateContent(context.Background(), []Content{NewTextContent(RoleUser, "x")})
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Contains(t, raw, "contents")
	assert.JSONEq(t, `[{"role":"user","parts":[{"text":"x"}]}]`, string(raw["contents"]))
}

func TestGenerateContent_NotConfigured(t *testing.T) {
	c := NewClient("   ", "")
	assert.False(t, c.IsConfigured())
	_, err := c.GenerateContent(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

func TestGenerateContent_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"code":401,"message":"bad key","status":"UNAUTHENTICATED"}}`, ErrAuthFailed},
		{"forbidden no body", http.StatusForbidden, ``, ErrAuthFailed},
		{"not found", http.StatusNotFound, `{"error":{"code":404,"message":"no such model","status":"NOT_FOUND"}}`, ErrModelNotFound},
		{"quota", http.StatusTooManyRequests, `{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`, ErrRateLimited},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := quietClient(server.URL).GenerateContent(context.Background(), []Content{NewTextContent(RoleUser, "x")})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGenerateContent_ServerErrorIsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":500,"message":"internal","status":"INTERNAL"}}`))
	}))
	defer server.Close()

	_, err := quietClient(server.URL).GenerateContent(context.Background(), []Content{NewTextContent(RoleUser, "x")})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 500, apiErr.Status)
	assert.Equal(t, "INTERNAL", apiErr.Reason)
	assert.Contains(t, apiErr.Error(), "HTTP 500")
}

func TestGenerateContent_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	_, err := quietClient(server.URL).GenerateContent(context.Background(), []Content{NewTextContent(RoleUser, "x")})
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestGenerateContent_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := quietClient(url).GenerateContent(context.Background(), []Content{NewTextContent(RoleUser, "x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func TestResponseText(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		want   string
		wantOK bool
	}{
		{"first part", `{"candidates":[{"content":{"parts":[{"text":"a"},{"text":"b"}]}}]}`, "a", true},
		{"no candidates", `{}`, "", false},
		{"empty candidates", `{"candidates":[]}`, "", false},
		{"no content", `{"candidates":[{"finishReason":"SAFETY"}]}`, "", false},
		{"no parts", `{"candidates":[{"content":{"parts":[]}}]}`, "", false},
		{"empty text", `{"candidates":[{"content":{"parts":[{"text":""}]}}]}`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r GenerateContentResponse
			require.NoError(t, json.Unmarshal([]byte(tt.body), &r))
			got, ok := r.Text()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Text() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}

	var nilResp *GenerateContentResponse
	if _, ok := nilResp.Text(); ok {
		t.Error("nil response should not report text")
	}
}

func TestKeyFingerprint(t *testing.T) {
	if got := KeyFingerprint(""); got != "none" {
		t.Errorf("KeyFingerprint(\"\") = %q, want none", got)
	}
	fp := KeyFingerprint(testKey)
	if len(fp) != 8 {
		t.Errorf("fingerprint length = %d, want 8", len(fp))
	}
	if fp == testKey[:8] {
		t.Error("fingerprint must not expose key characters")
	}
}

func TestSetModel(t *testing.T) {
	c := NewClient(testKey, "")
	assert.Equal(t, DefaultModel, c.Model())
	c.SetModel("  ")
	assert.Equal(t, DefaultModel, c.Model())
	c.SetModel("gemini-other")
	assert.Equal(t, "gemini-other", c.Model())
}
