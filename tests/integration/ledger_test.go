//go:build integration

package integration

import (
	"net/http"
	"sort"
	"sync"
	"testing"

	"github.com/constructora/backend/internal/domain/housing"
	"github.com/constructora/backend/internal/domain/ledger"
	"github.com/constructora/backend/internal/interfaces/http/middleware"
	"github.com/constructora/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentFlow_AuditTrail(t *testing.T) {
	a := newApp(t)
	clientID, houseID := a.seed(t, "12130001")

	resp := a.api.Do(t, http.MethodPost, "/payments", downPayment(clientID, houseID, 8_000_000),
		middleware.HeaderIdempotencyKey, "caja-0001")
	testutil.RequireStatus(t, resp, http.StatusCreated)
	paymentID := resp.Data(t)["abono"].(map[string]any)["id"].(string)

	// retried submit of the same form
	resp = a.api.Do(t, http.MethodPost, "/payments", downPayment(clientID, houseID, 8_000_000),
		middleware.HeaderIdempotencyKey, "caja-0001")
	testutil.AssertError(t, resp, http.StatusConflict, "DUPLICATE_REQUEST")

	resp = a.api.Do(t, http.MethodPost, "/payments/"+paymentID+"/void", map[string]any{"motivo": "Consignación rechazada"})
	testutil.RequireStatus(t, resp, http.StatusOK)

	resp = a.api.Do(t, http.MethodGet, "/houses/"+houseID, nil)
	testutil.RequireStatus(t, resp, http.StatusOK)
	assert.Equal(t, "0", resp.Data(t)["totalAbonado"])

	resp = a.api.Do(t, http.MethodPost, "/payments/"+paymentID+"/revert", nil)
	testutil.RequireStatus(t, resp, http.StatusOK)

	resp = a.api.Do(t, http.MethodGet, "/houses/"+houseID, nil)
	testutil.RequireStatus(t, resp, http.StatusOK)
	assert.Equal(t, "8000000", resp.Data(t)["totalAbonado"])
	assert.Equal(t, "92000000", resp.Data(t)["saldoPendiente"])

	assert.Equal(t, 1, a.events.Count(ledger.EventPaymentRegistered))
	assert.Equal(t, 1, a.events.Count(ledger.EventPaymentVoided))
	assert.Equal(t, 1, a.events.Count(ledger.EventPaymentVoidReverted))

	resp = a.api.Do(t, http.MethodGet, "/audits?tipo="+ledger.EventPaymentVoided, nil)
	testutil.RequireStatus(t, resp, http.StatusOK)
	audits := resp.List(t)
	require.Len(t, audits, 1)
	assert.Equal(t, "Cartera", audits[0].(map[string]any)["userName"])

	resp = a.api.Do(t, http.MethodGet, "/audits?usuario=Cartera", nil)
	testutil.RequireStatus(t, resp, http.StatusOK)
	assert.GreaterOrEqual(t, resp.Body.Meta.Total, int64(4))
}

func TestConcurrentPayments_RespectCeiling(t *testing.T) {
	a := newApp(t)
	clientID, houseID := a.seed(t, "12130002")

	const attempts = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted []int
		rejected []string
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := a.api.Do(t, http.MethodPost, "/payments", downPayment(clientID, houseID, 5_000_000))
			mu.Lock()
			defer mu.Unlock()
			if resp.Status == http.StatusCreated {
				abono := resp.Body.Data.(map[string]any)["abono"].(map[string]any)
				accepted = append(accepted, int(abono["consecutivo"].(float64)))
				return
			}
			if resp.Body.Error != nil {
				rejected = append(rejected, resp.Body.Error.Code)
			}
		}()
	}
	wg.Wait()

	// 20M ceiling in 5M payments
	sort.Ints(accepted)
	assert.Equal(t, []int{1, 2, 3, 4}, accepted)
	require.Len(t, rejected, attempts-4)
	for _, code := range rejected {
		assert.Equal(t, "CEILING_EXCEEDED", code)
	}

	resp := a.api.Do(t, http.MethodGet, "/clients/"+clientID+"/summary", nil)
	testutil.RequireStatus(t, resp, http.StatusOK)
	assert.Equal(t, "20000000", resp.Data(t)["totalAbonado"])
}

func TestReconcile_ReportsDrift(t *testing.T) {
	a := newApp(t)
	clientID, houseID := a.seed(t, "12130003")

	resp := a.api.Do(t, http.MethodPost, "/payments", downPayment(clientID, houseID, 3_000_000))
	testutil.RequireStatus(t, resp, http.StatusCreated)

	resp = a.api.Do(t, http.MethodPost, "/admin/reconcile", nil)
	testutil.RequireStatus(t, resp, http.StatusOK)
	assert.Equal(t, float64(1), resp.Data(t)["revisadas"])
	assert.Empty(t, resp.Data(t)["diferencias"])

	// stored total drifts from the ledger
	require.NoError(t, a.db.DB.Exec(
		"UPDATE viviendas SET total_abonado = 1000000, saldo_pendiente = 99000000 WHERE id = ?", houseID).Error)

	resp = a.api.Do(t, http.MethodPost, "/admin/reconcile", nil)
	testutil.RequireStatus(t, resp, http.StatusOK)
	require.Len(t, resp.Data(t)["diferencias"], 1)
	assert.Equal(t, 1, a.events.Count(housing.EventBalanceMismatch))

	resp = a.api.Do(t, http.MethodGet, "/audits?tipo="+housing.EventBalanceMismatch, nil)
	testutil.RequireStatus(t, resp, http.StatusOK)
	assert.Len(t, resp.List(t), 1)
}

func TestHealth_Postgres(t *testing.T) {
	a := newApp(t)
	resp := a.api.Do(t, http.MethodGet, "/health", nil)
	testutil.RequireStatus(t, resp, http.StatusOK)
	assert.Equal(t, "ok", resp.Data(t)["checks"].(map[string]any)["database"])
}
