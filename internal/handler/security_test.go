package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLInjection(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	router := setupRouter(t)
	token := adminToken(t)

	injections := []struct {
		name string
		url  string
	}{
		{"status param", "/api/v1/requests?status=paid'%3B+DROP+TABLE+requests%3B+--"},
		{"status with OR", "/api/v1/requests?status=paid'+OR+'1'%3D'1"},
		{"container injection", "/api/v1/requests?container=MSKU'+UNION+SELECT+*+FROM+pg_catalog.pg_tables+--"},
		{"bill of lading", "/api/v1/requests?bill_of_lading=BL'%3B+DROP+TABLE+actors%3B+--"},
		{"type injection", "/api/v1/requests?type=gate_in'+OR+'1'%3D'1"},
	}

	for _, tc := range injections {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(router, "GET", tc.url, token, "")

			// Parameterized queries turn these into harmless filters, so we
			// expect 200 with no matches or 400, never a SQL error.
			assert.NotEqual(t, http.StatusInternalServerError, w.Code,
				"SQL injection attempt should not cause 500")
		})
	}
}

func TestMalformedJSON(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	router := setupRouter(t)
	token := clientToken(t)

	cases := []struct {
		name string
		body string
	}{
		{"truncated JSON", `{"shipping_line_id":"00000000-0000-0000-0000-000000000001","type":"gate_in"`},
		{"null required fields", `{"shipping_line_id":null,"type":null}`},
		{"wrong types", `{"shipping_line_id":123,"type":456,"usd_amount":true}`},
		{"unknown type value", `{"shipping_line_id":"00000000-0000-0000-0000-000000000001","type":"teleport"}`},
		{"empty object", `{}`},
		{"just array", `[]`},
		{"empty string", ``},
		{"random string", `hello world`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(router, "POST", "/api/v1/requests", token, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code,
				"malformed JSON should return 400, got %d for %s", w.Code, tc.name)
		})
	}
}

func TestBoundaryConditions(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	router := setupRouter(t)
	lineID := firstShippingLineID(t, router)

	t.Run("page_size: negative defaults to 20", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/v1/requests?page_size=-1", adminToken(t), "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("page_size: 101 caps to 100", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/v1/requests?page_size=101", adminToken(t), "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("negative usd amount rejected", func(t *testing.T) {
		body := fmt.Sprintf(`{"shipping_line_id":%q,"type":"demurrage","usd_amount":"-10"}`, lineID)
		w := doJSON(router, "POST", "/api/v1/requests", clientToken(t), body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("demurrage without amount rejected", func(t *testing.T) {
		body := fmt.Sprintf(`{"shipping_line_id":%q,"type":"demurrage"}`, lineID)
		w := doJSON(router, "POST", "/api/v1/requests", clientToken(t), body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown document kind rejected", func(t *testing.T) {
		body := fmt.Sprintf(`{"shipping_line_id":%q,"type":"turns"}`, lineID)
		w := doJSON(router, "POST", "/api/v1/requests", clientToken(t), body)
		require.Equal(t, http.StatusCreated, w.Code)

		buf, contentType := multipartFile(t, testPNG)
		var created struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

		up := doRequest(router, "POST", "/api/v1/requests/"+created.ID+"/documents/receipt",
			clientToken(t), buf, contentType)
		assert.Equal(t, http.StatusBadRequest, up.Code)
	})

	t.Run("text file rejected as proof", func(t *testing.T) {
		body := fmt.Sprintf(`{"shipping_line_id":%q,"type":"turns","container":"TCLU7654321"}`, lineID)
		w := doJSON(router, "POST", "/api/v1/requests", clientToken(t), body)
		require.Equal(t, http.StatusCreated, w.Code)

		var created struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

		buf, contentType := multipartFile(t, []byte("just some text"))
		up := doRequest(router, "POST", "/api/v1/requests/"+created.ID+"/documents/proof",
			clientToken(t), buf, contentType)
		assert.Equal(t, http.StatusUnsupportedMediaType, up.Code)
	})
}
