// Copyright 2025 The CoordConv Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServerTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	NewServer(2).Register(router)

	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, target string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, target, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]any
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}

	return w, resp
}

func TestParseToken(t *testing.T) {
	router := setupServerTest(t)

	tests := []struct {
		token  string
		format string
		value  any
		ok     bool
	}{
		{`45°30'15"S`, "dms", -45.5041667, true},
		{"45°30'N", "dm", 45.5, true},
		{"120.456W", "decimal", -120.456, true},
		{"0", "decimal", 0.0, true},
		{"not a coordinate", "none", nil, false},
	}

	for _, tc := range tests {
		t.Run(tc.token, func(t *testing.T) {
			w, resp := doJSON(t, router, http.MethodGet, "/api/parse?token="+url.QueryEscape(tc.token), nil)
			require.Equal(t, http.StatusOK, w.Code)

			assert.Equal(t, tc.token, resp["token"])
			assert.Equal(t, tc.format, resp["format"])
			assert.Equal(t, tc.value, resp["value"])
			assert.Equal(t, tc.ok, resp["ok"])
		})
	}
}

func TestParseTokenRequired(t *testing.T) {
	router := setupServerTest(t)

	w, resp := doJSON(t, router, http.MethodGet, "/api/parse", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp["error"], "token")
}

func TestListFormats(t *testing.T) {
	router := setupServerTest(t)

	w, _ := doJSON(t, router, http.MethodGet, "/api/formats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var formats []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &formats))
	require.Len(t, formats, 4)
	assert.Equal(t, "decimal", formats[0]["format"])
	assert.Equal(t, "numeric", formats[3]["format"])
}

func TestDetectColumns(t *testing.T) {
	router := setupServerTest(t)

	w, resp := doJSON(t, router, http.MethodPost, "/api/columns", map[string]any{
		"columns": []string{"Site", "LATITUD", "Longitud"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Longitud", resp["longitude"])
	assert.Equal(t, "LATITUD", resp["latitude"])
}

func TestConvertTable(t *testing.T) {
	router := setupServerTest(t)

	w, resp := doJSON(t, router, http.MethodPost, "/api/convert", map[string]any{
		"columns": []string{"name", "lon", "lat"},
		"rows": [][]any{
			{"a", "120°30'W", "45°30'N"},
			{"b", -56.15, "bad"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, []any{"name", "lon", "lat", "Longitude_Converted", "Latitude_Converted", "Convert_Status"}, resp["columns"])
	assert.Equal(t, []any{
		[]any{"a", "120°30'W", "45°30'N", -120.5, 45.5, "Yes"},
		[]any{"b", -56.15, "bad", -56.15, nil, "No"},
	}, resp["rows"])
	assert.Equal(t, map[string]any{"longitude": "lon", "latitude": "lat"}, resp["selection"])

	metrics, ok := resp["metrics"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 2.0, metrics["rows"])
	assert.Equal(t, 1.0, metrics["converted"])
	assert.Equal(t, 1.0, metrics["failed"])
}

func TestConvertTableExplicitSelection(t *testing.T) {
	router := setupServerTest(t)

	w, resp := doJSON(t, router, http.MethodPost, "/api/convert", map[string]any{
		"columns":   []string{"lat", "lon"},
		"rows":      [][]any{{"10E", "20N"}},
		"longitude": "lat",
		"latitude":  "lon",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{[]any{"10E", "20N", 10.0, 20.0, "Yes"}}, resp["rows"])
}

func TestConvertTableErrors(t *testing.T) {
	router := setupServerTest(t)

	tests := []struct {
		name string
		body any
	}{
		{"unknown column", map[string]any{"columns": []string{"lon", "lat"}, "rows": [][]any{}, "longitude": "nope"}},
		{"missing columns", map[string]any{"rows": [][]any{}}},
		{"no columns", map[string]any{"columns": []string{}, "rows": [][]any{}}},
		{"bad h3 resolution", map[string]any{"columns": []string{"lon", "lat"}, "h3_resolution": 99}},
		{"malformed rows", map[string]any{"columns": []string{"lon"}, "rows": [][]any{{"1", "2"}}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, resp := doJSON(t, router, http.MethodPost, "/api/convert", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, resp["error"])
			assert.Nil(t, resp["rows"])
		})
	}
}

func TestConvertTableUnknownColumnListsColumns(t *testing.T) {
	router := setupServerTest(t)

	w, resp := doJSON(t, router, http.MethodPost, "/api/convert", map[string]any{
		"columns":  []string{"Lon", "Lat"},
		"rows":     [][]any{{"1E", "2N"}},
		"latitude": "Latitude",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp["error"], "Latitude")
	assert.Equal(t, []any{"Lon", "Lat"}, resp["columns"])
	assert.Nil(t, resp["rows"])
}
