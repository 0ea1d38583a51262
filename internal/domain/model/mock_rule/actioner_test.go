package model

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduceStatic(t *testing.T) {
	rule := MustMatchRule(RuleSpec{
		URL:         "https://h/p",
		StatusCode:  http.StatusCreated,
		ContentType: &ContentTypeJSON,
		Headers:     map[string]string{"X-Request-Id": "42"},
		Responses: map[HTTPMethod][]byte{
			MethodGet: []byte(`{"a":1}`),
			MethodPut: []byte(`{"b":2}`),
		},
	})

	resp, ok := rule.Produce(newInfo(http.MethodPut, "https://h/p", ""))
	require.True(t, ok)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, []byte(`{"b":2}`), resp.Body)
	assert.Equal(t, "42", resp.Header("x-request-id"))
	assert.Equal(t, ContentTypeJSON.HeaderValue, resp.Header("Content-Type"))

	_, ok = rule.Produce(newInfo(http.MethodDelete, "https://h/p", ""))
	assert.False(t, ok)
}

func TestProduceHandler(t *testing.T) {
	rule, err := NewHandlerRule(MethodPost, "https://h/echo", MatchFull, func(req RequestInfo) GenericResponse {
		return GenericResponse{
			Headers: map[string][]string{"X-Method": {req.GetMethod()}},
			Body:    req.GetBody(),
		}
	})
	require.NoError(t, err)

	resp, ok := rule.Produce(newInfo(http.MethodPost, "https://h/echo", "ping"))
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "POST", resp.Header("X-Method"))
	assert.Equal(t, []byte("ping"), resp.Body)
}

func TestRedirectLocation(t *testing.T) {
	base := mustURL(t, "https://h/a")

	tests := []struct {
		name     string
		body     string
		expected string
		ok       bool
	}{
		{name: "absolute", body: "Location: https://h/b\r\n", expected: "https://h/b", ok: true},
		{name: "relative", body: "HTTP/1.1 302 Found\nLocation: /c?x=1\n\n", expected: "https://h/c?x=1", ok: true},
		{name: "first occurrence wins", body: "Location: https://h/1\nLocation: https://h/2", expected: "https://h/1", ok: true},
		{name: "after other headers", body: "HTTP/1.1 301 Moved Permanently\r\nContent-Length: 0\r\nlocation: https://h/d\r\n\r\nignored", expected: "https://h/d", ok: true},
		{name: "plain json", body: `{"name":"Mocker"}`, ok: false},
		{name: "json mentioning location", body: `{"label":"Location: Amsterdam"}`, ok: false},
		{name: "text before location", body: "see below\nLocation: https://h/b", ok: false},
		{name: "location after blank line", body: "Content-Type: text/plain\n\nLocation: https://h/b", ok: false},
		{name: "location with spaces", body: "Location: https://h/a b\r\n", ok: false},
		{name: "location with quotes", body: "Location: \"https://h/b\"\r\n", ok: false},
		{name: "absolute without host", body: "Location: https://\r\n", ok: false},
		{name: "empty location", body: "Location:   \r\n", ok: false},
		{name: "empty body", body: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, ok := RedirectLocation([]byte(tt.body), base)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, u.String())
			}
		})
	}
}

func TestRedirectBody(t *testing.T) {
	u, ok := RedirectLocation(RedirectBody("https://h/target"), nil)
	require.True(t, ok)
	assert.Equal(t, "https://h/target", u.String())
}
