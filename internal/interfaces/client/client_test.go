package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/donation-desk/internal/form"
)

func TestClient_Call(t *testing.T) {
	var gotPath, gotAuth string
	var gotArgs map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotArgs))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":{"invoice":"SINV-2026-00001","grand_total":500}}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "tok", time.Second)
	resp, err := c.Call(context.Background(), form.CallRequest{
		Doctype: "Donation",
		Name:    "DON-2026-00001",
		Method:  form.MethodGenerateInvoice,
		Args:    map[string]interface{}{"save": true},
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/method/Donation/DON-2026-00001/generate_invoice", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, true, gotArgs["save"])
	assert.Equal(t, "SINV-2026-00001", resp.Get("invoice"))
}

func TestClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"success":false,"error":"an invoice is already linked to this document"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "", 0).Call(context.Background(), form.CallRequest{Doctype: "Donation", Name: "DON-2026-00001", Method: "generate_invoice"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "an invoice is already linked to this document", apiErr.Message)
}

func TestClient_FetchRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/desk/Donation/DON-2026-00001", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"data":{"record":{"doctype":"Donation","name":"DON-2026-00001","docstatus":1,"fields":{"invoice":""}},"actions":[]}}`))
	}))
	defer srv.Close()

	rec, err := New(srv.URL, "", time.Second).FetchRecord(context.Background(), "Donation", "DON-2026-00001")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.DocStatus)
	assert.True(t, form.CanGenerateInvoice(rec))
}
