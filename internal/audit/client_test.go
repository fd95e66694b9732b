package audit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audit-portal-go/pkg/model"
)

func TestClientStartAudit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/audits", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body StartRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://example.in", body.TargetURL)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"audit_id":"a-123"}`))
	}))
	defer srv.Close()

	client := NewClient(time.Second, logr.Discard())
	resp, err := client.StartAudit(context.Background(), model.Region{ID: model.RegionIN, EndpointBaseURL: srv.URL}, "https://example.in")

	require.NoError(t, err)
	assert.Equal(t, "a-123", resp.AuditID)
	assert.Equal(t, model.StageQueued, resp.Stage)
}

func TestClientStartAuditUnknownStage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"audit_id":"a-7","stage":"warp"}`))
	}))
	defer srv.Close()

	client := NewClient(time.Second, logr.Discard())
	resp, err := client.StartAudit(context.Background(), model.Region{EndpointBaseURL: srv.URL}, "https://example.com")

	require.NoError(t, err)
	assert.Equal(t, model.StageQueued, resp.Stage)
}

func TestClientStartAuditErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(time.Second, logr.Discard())
	_, err := client.StartAudit(context.Background(), model.Region{ID: model.RegionUS, EndpointBaseURL: srv.URL}, "https://example.com")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "quota exceeded")
}

func TestClientStartAuditMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(time.Second, logr.Discard())
	_, err := client.StartAudit(context.Background(), model.Region{EndpointBaseURL: srv.URL}, "https://example.com")
	assert.Error(t, err)
}

func TestClientStartAuditBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := NewClient(time.Second, logr.Discard())
	_, err := client.StartAudit(context.Background(), model.Region{EndpointBaseURL: srv.URL}, "https://example.com")
	assert.ErrorContains(t, err, "failed to parse response")
}

func TestClientGetStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/audits/a-9", r.URL.Path)
		w.Write([]byte(`{"audit_id":"a-9","stage":"ssl","message":"checking certificates"}`))
	}))
	defer srv.Close()

	client := NewClient(time.Second, logr.Discard())
	status, err := client.GetStatus(context.Background(), model.Region{EndpointBaseURL: srv.URL}, "a-9")

	require.NoError(t, err)
	assert.Equal(t, model.StageSSL, status.Stage)
	assert.Equal(t, "checking certificates", status.Message)
}

func TestClientGetStatusEscapesAuditID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audits/a%2Fb%3Fc", r.URL.EscapedPath())
		assert.Empty(t, r.URL.RawQuery)
		w.Write([]byte(`{"audit_id":"a/b?c","stage":"dns"}`))
	}))
	defer srv.Close()

	client := NewClient(time.Second, logr.Discard())
	status, err := client.GetStatus(context.Background(), model.Region{EndpointBaseURL: srv.URL}, "a/b?c")

	require.NoError(t, err)
	assert.Equal(t, model.StageDNS, status.Stage)
}

func TestClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(time.Second, logr.Discard())
	_, err := client.StartAudit(context.Background(), model.Region{EndpointBaseURL: url}, "https://example.com")
	assert.ErrorContains(t, err, "failed to send request")
}
