package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftdesk/draftdesk/internal/documents"
)

func TestSubmitVoucherSuccess(t *testing.T) {
	var gotPath, gotToken, gotContentType string
	var gotBody VoucherPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("Idempotency-Key")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"message":"voucher posted","data":{"document_number":"JV-2024-000815"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL + "/")
	payload := VoucherPayload{VoucherNumber: "JV-705032024140902123", TotalAmount: 500}
	result, err := client.SubmitVoucher(context.Background(), documents.TypeJournal, payload, "tok-1")
	require.NoError(t, err)

	assert.Equal(t, "/accounts/journal", gotPath)
	assert.Equal(t, "tok-1", gotToken)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "JV-705032024140902123", gotBody.VoucherNumber)
	assert.Equal(t, "voucher posted", result.Message)
	require.NotNil(t, result.ServerNumber)
	assert.Equal(t, "JV-2024-000815", *result.ServerNumber)
}

func TestSubmitOrderPathUsesTypeSlug(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.SubmitOrder(context.Background(), documents.TypePurchaseOrder, OrderPayload{}, "tok-2")
	require.NoError(t, err)
	assert.Equal(t, "/inventory/purchase-order", gotPath)
}

func TestSubmitRejectionCarriesBackendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"success":false,"message":"account 2 is inactive"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.SubmitVoucher(context.Background(), documents.TypePayment, VoucherPayload{}, "")
	require.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "account 2 is inactive")
}

func TestSubmitRejectionFallbackMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.SubmitVoucher(context.Background(), documents.TypeJournal, VoucherPayload{}, "")
	require.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "the document could not be saved")
}

func TestSubmitServerErrorIsNotRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`upstream timeout`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.SubmitVoucher(context.Background(), documents.TypeJournal, VoucherPayload{}, "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRejected)
}

func TestSubmitTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL)
	_, err := client.SubmitVoucher(context.Background(), documents.TypeJournal, VoucherPayload{}, "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRejected)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	require.NoError(t, client.Ping(context.Background()))
}
