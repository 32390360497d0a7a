//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	httpapi "github.com/agrolease/agrolease/internal/api/http"
	"github.com/agrolease/agrolease/internal/application/audit"
	"github.com/agrolease/agrolease/internal/application/auth"
	"github.com/agrolease/agrolease/internal/application/dispute"
	"github.com/agrolease/agrolease/internal/application/investment"
	"github.com/agrolease/agrolease/internal/application/land"
	"github.com/agrolease/agrolease/internal/application/lease"
	"github.com/agrolease/agrolease/internal/application/payment"
	"github.com/agrolease/agrolease/internal/application/payout"
	"github.com/agrolease/agrolease/internal/application/policy"
	"github.com/agrolease/agrolease/internal/application/user"
	"github.com/agrolease/agrolease/internal/infrastructure/postgres"
	"github.com/agrolease/agrolease/internal/infrastructure/sse"
)

const auditKeyHex = "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff"
const adminUsername = "root.admin"
const testPassword = "S3cure!Passw0rd"

func TestLeaseEscrowLifecycle(t *testing.T) {
	server, cleanup := newTestServer(t)
	defer cleanup()

	adminClient := bootstrapAdminClient(t, server.URL)
	ownerClient := registerAndLogin(t, server.URL, "olu.owner", "LANDOWNER")
	farmerClient := registerAndLogin(t, server.URL, "tunde.farmer", "FARMER")

	var parcel map[string]interface{}
	doJSON(t, ownerClient, http.MethodPost, server.URL+"/v1/lands", map[string]interface{}{
		"title":      "riverside plot",
		"location":   "Ogun",
		"size_acres": 4.5,
	}, &parcel)
	landID := parcel["landId"].(string)

	var ls map[string]interface{}
	doJSON(t, farmerClient, http.MethodPost, server.URL+"/v1/lands/"+landID+"/lease-requests", map[string]interface{}{
		"duration_months": 2,
		"price_per_month": 5000,
	}, &ls)
	leaseID := ls["leaseId"].(string)
	if ls["status"] != "PENDING" {
		t.Fatalf("lease status = %v, want PENDING", ls["status"])
	}

	doJSON(t, ownerClient, http.MethodPost, server.URL+"/v1/leases/"+leaseID+"/approve", nil, &ls)
	if ls["status"] != "APPROVED" {
		t.Fatalf("lease status = %v, want APPROVED", ls["status"])
	}

	// First escrow funding activates the lease.
	var pay map[string]interface{}
	doJSON(t, farmerClient, http.MethodPost, server.URL+"/v1/leases/"+leaseID+"/payments", map[string]interface{}{}, &pay)
	if pay["status"] != "ESCROW" {
		t.Fatalf("payment status = %v, want ESCROW", pay["status"])
	}
	doJSON(t, farmerClient, http.MethodGet, server.URL+"/v1/leases/"+leaseID, nil, &ls)
	if ls["status"] != "ACTIVE" {
		t.Fatalf("lease status = %v, want ACTIVE", ls["status"])
	}

	var req map[string]interface{}
	doJSON(t, ownerClient, http.MethodPost, server.URL+"/v1/leases/"+leaseID+"/payout-requests", map[string]interface{}{
		"payout_method_id": "bank-001",
	}, &req)
	requestID := req["requestId"].(string)
	if req["status"] != "PENDING" {
		t.Fatalf("payout status = %v, want PENDING", req["status"])
	}

	// A second pending request on the same lease is rejected.
	status, body := doRaw(t, ownerClient, http.MethodPost, server.URL+"/v1/leases/"+leaseID+"/payout-requests", map[string]interface{}{
		"payout_method_id": "bank-001",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("duplicate payout status = %d, body %s", status, body)
	}

	doJSON(t, adminClient, http.MethodPatch, server.URL+"/v1/admin/payout-requests/"+requestID, map[string]interface{}{
		"status": "APPROVED",
	}, &req)
	if req["status"] != "APPROVED" {
		t.Fatalf("payout status = %v, want APPROVED", req["status"])
	}

	doJSON(t, adminClient, http.MethodPatch, server.URL+"/v1/admin/payout-requests/"+requestID, map[string]interface{}{
		"status":          "PAID",
		"transaction_ref": "tx-001",
	}, &req)
	if req["status"] != "PAID" {
		t.Fatalf("payout status = %v, want PAID", req["status"])
	}

	// Marking paid advances the lease counter.
	doJSON(t, ownerClient, http.MethodGet, server.URL+"/v1/leases/"+leaseID, nil, &ls)
	if got := ls["paymentsMade"].(float64); got != 1 {
		t.Fatalf("paymentsMade = %v, want 1", got)
	}
}

func TestEscrowReleaseFlow(t *testing.T) {
	server, cleanup := newTestServer(t)
	defer cleanup()

	adminClient := bootstrapAdminClient(t, server.URL)
	ownerClient := registerAndLogin(t, server.URL, "olu.owner", "LANDOWNER")
	farmerClient := registerAndLogin(t, server.URL, "tunde.farmer", "FARMER")

	leaseID := activeLease(t, server.URL, ownerClient, farmerClient)

	var pay map[string]interface{}
	doJSON(t, farmerClient, http.MethodPost, server.URL+"/v1/leases/"+leaseID+"/payments", map[string]interface{}{}, &pay)
	paymentID := pay["paymentId"].(string)

	doJSON(t, ownerClient, http.MethodPost, server.URL+"/v1/payments/"+paymentID+"/request-release", nil, &pay)
	if pay["releaseRequested"] != true {
		t.Fatalf("releaseRequested = %v, want true", pay["releaseRequested"])
	}

	doJSON(t, adminClient, http.MethodPut, server.URL+"/v1/payments/"+paymentID+"/release", map[string]interface{}{}, &pay)
	if pay["status"] != "RELEASED" {
		t.Fatalf("payment status = %v, want RELEASED", pay["status"])
	}

	// Settled payments cannot be refunded.
	status, body := doRaw(t, adminClient, http.MethodPut, server.URL+"/v1/payments/"+paymentID+"/refund", map[string]interface{}{})
	if status != http.StatusBadRequest {
		t.Fatalf("refund after release status = %d, body %s", status, body)
	}
}

func TestDuplicateOpenDispute(t *testing.T) {
	server, cleanup := newTestServer(t)
	defer cleanup()

	bootstrapAdminClient(t, server.URL)
	ownerClient := registerAndLogin(t, server.URL, "olu.owner", "LANDOWNER")
	farmerClient := registerAndLogin(t, server.URL, "tunde.farmer", "FARMER")

	leaseID := activeLease(t, server.URL, ownerClient, farmerClient)

	var d map[string]interface{}
	doJSON(t, farmerClient, http.MethodPost, server.URL+"/v1/disputes", map[string]interface{}{
		"lease_id": leaseID,
		"category": "LAND_CONDITION",
		"reason":   "flooded after first rain",
	}, &d)
	disputeID := d["disputeId"].(string)

	status, body := doRaw(t, farmerClient, http.MethodPost, server.URL+"/v1/disputes", map[string]interface{}{
		"lease_id": leaseID,
		"category": "LAND_CONDITION",
		"reason":   "still flooded",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("duplicate dispute status = %d, body %s", status, body)
	}
	var dup map[string]interface{}
	if err := json.Unmarshal(body, &dup); err != nil {
		t.Fatalf("decode duplicate body: %v", err)
	}
	existing, ok := dup["dispute"].(map[string]interface{})
	if !ok || existing["disputeId"] != disputeID {
		t.Fatalf("duplicate body must carry the existing dispute: %s", body)
	}
}

func activeLease(t *testing.T, baseURL string, ownerClient, farmerClient *http.Client) string {
	t.Helper()
	var parcel map[string]interface{}
	doJSON(t, ownerClient, http.MethodPost, baseURL+"/v1/lands", map[string]interface{}{
		"title":      "upland plot",
		"location":   "Oyo",
		"size_acres": 2.0,
	}, &parcel)
	landID := parcel["landId"].(string)

	var ls map[string]interface{}
	doJSON(t, farmerClient, http.MethodPost, baseURL+"/v1/lands/"+landID+"/lease-requests", map[string]interface{}{
		"duration_months": 6,
		"price_per_month": 3000,
	}, &ls)
	leaseID := ls["leaseId"].(string)
	doJSON(t, ownerClient, http.MethodPost, baseURL+"/v1/leases/"+leaseID+"/approve", nil, nil)

	var pay map[string]interface{}
	doJSON(t, farmerClient, http.MethodPost, baseURL+"/v1/leases/"+leaseID+"/payments", map[string]interface{}{}, &pay)
	return leaseID
}

func doJSON(t *testing.T, client *http.Client, method, url string, body interface{}, out interface{}) {
	t.Helper()
	status, respBody := doRaw(t, client, method, url, body)
	if status >= 300 {
		t.Fatalf("%s %s status %d: %s", method, url, status, respBody)
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			t.Fatalf("decode response from %s: %v", url, err)
		}
	}
}

func doRaw(t *testing.T, client *http.Client, method, url string, body interface{}) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, respBody
}

func bootstrapAdminClient(t *testing.T, baseURL string) *http.Client {
	t.Helper()
	client := newCookieClient(t)
	payload := map[string]string{"username": adminUsername, "password": testPassword}
	data, _ := json.Marshal(payload)
	resp, err := client.Post(baseURL+"/v1/auth/bootstrap", "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("bootstrap status %d: %s", resp.StatusCode, string(body))
	}
	login(t, client, baseURL, adminUsername)
	return client
}

func registerAndLogin(t *testing.T, baseURL, username, role string) *http.Client {
	t.Helper()
	client := newCookieClient(t)
	doJSON(t, client, http.MethodPost, baseURL+"/v1/auth/register", map[string]string{
		"username": username,
		"password": testPassword,
		"role":     role,
	}, nil)
	login(t, client, baseURL, username)
	return client
}

func login(t *testing.T, client *http.Client, baseURL, username string) {
	t.Helper()
	doJSON(t, client, http.MethodPost, baseURL+"/v1/auth/login", map[string]string{
		"username": username,
		"password": testPassword,
	}, nil)
}

func newCookieClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{Timeout: 10 * time.Second, Jar: jar}
}

func newTestServer(t *testing.T) (*httptest.Server, func()) {
	t.Helper()
	dsn := testDatabaseURL(t)

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("db pool: %v", err)
	}

	root := repoRoot(t)
	if err := postgres.RunMigrations(ctx, pool, filepath.Join(root, "internal", "migrations")); err != nil {
		pool.Close()
		t.Fatalf("migrations: %v", err)
	}
	if err := resetDatabase(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("reset db: %v", err)
	}

	logger := zerolog.Nop()
	userRepo := postgres.NewUserRepository(pool)
	sessionRepo := postgres.NewSessionRepository(pool)
	landRepo := postgres.NewLandRepository(pool)
	leaseRepo := postgres.NewLeaseRepository(pool)
	payoutRepo := postgres.NewPayoutRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	disputeRepo := postgres.NewDisputeRepository(pool)
	investmentRepo := postgres.NewInvestmentRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)

	sseHub := sse.NewHub()
	reviewPolicy, err := policy.NewEngine("")
	if err != nil {
		t.Fatalf("policy: %v", err)
	}

	auditSvc := audit.NewService(auditRepo, mustDecodeHex(t, auditKeyHex), logger)
	authSvc := auth.NewService(userRepo, sessionRepo, auditSvc, 24*time.Hour, logger)
	userSvc := user.NewService(userRepo, auditSvc, logger)
	landSvc := land.NewService(landRepo, auditSvc, logger)
	leaseSvc := lease.NewService(leaseRepo, landRepo, auditSvc, sseHub, logger)
	payoutSvc := payout.NewService(payoutRepo, leaseRepo, investmentRepo, auditSvc, reviewPolicy, sseHub, logger)
	paymentSvc := payment.NewService(paymentRepo, leaseRepo, auditSvc, sseHub, logger)
	disputeSvc := dispute.NewService(disputeRepo, leaseRepo, paymentRepo, auditSvc, sseHub, logger)
	investmentSvc := investment.NewService(investmentRepo, leaseRepo, auditSvc, logger)

	apiServer := httpapi.NewServer(authSvc, userSvc, landSvc, leaseSvc, payoutSvc, paymentSvc, disputeSvc, investmentSvc, auditSvc, sseHub, logger, "agrolease_session", false)
	server := httptest.NewServer(apiServer.Router())

	cleanup := func() {
		server.Close()
		sseHub.Stop()
		pool.Close()
	}
	return server, cleanup
}

func testDatabaseURL(t *testing.T) string {
	t.Helper()
	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		return dsn
	}
	t.Skip("TEST_DATABASE_URL not set; skipping integration tests")
	return ""
}

func repoRoot(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}

func resetDatabase(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		TRUNCATE TABLE
			audit_logs,
			dispute_history,
			disputes,
			payment_history,
			payments,
			payout_request_history,
			payout_requests,
			investments,
			leases,
			lands,
			sessions,
			users
		RESTART IDENTITY CASCADE
	`)
	return err
}

func mustDecodeHex(t *testing.T, value string) []byte {
	t.Helper()
	b, err := hex.DecodeString(value)
	if err != nil {
		t.Fatalf("invalid hex: %v", err)
	}
	return b
}

