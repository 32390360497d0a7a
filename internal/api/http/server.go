package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appAudit "github.com/agrolease/agrolease/internal/application/audit"
	appAuth "github.com/agrolease/agrolease/internal/application/auth"
	appDispute "github.com/agrolease/agrolease/internal/application/dispute"
	appInvestment "github.com/agrolease/agrolease/internal/application/investment"
	appLand "github.com/agrolease/agrolease/internal/application/land"
	appLease "github.com/agrolease/agrolease/internal/application/lease"
	appPayment "github.com/agrolease/agrolease/internal/application/payment"
	appPayout "github.com/agrolease/agrolease/internal/application/payout"
	appUser "github.com/agrolease/agrolease/internal/application/user"
	"github.com/agrolease/agrolease/internal/domain/notify"
	domainUser "github.com/agrolease/agrolease/internal/domain/user"
	"github.com/agrolease/agrolease/internal/infrastructure/sse"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	authSvc             *appAuth.Service
	userSvc             *appUser.Service
	landSvc             *appLand.Service
	leaseSvc            *appLease.Service
	payoutSvc           *appPayout.Service
	paymentSvc          *appPayment.Service
	disputeSvc          *appDispute.Service
	investmentSvc       *appInvestment.Service
	auditSvc            *appAudit.Service
	sseHub              *sse.Hub
	logger              zerolog.Logger
	sessionCookieName   string
	sessionCookieSecure bool
}

func NewServer(
	authSvc *appAuth.Service,
	userSvc *appUser.Service,
	landSvc *appLand.Service,
	leaseSvc *appLease.Service,
	payoutSvc *appPayout.Service,
	paymentSvc *appPayment.Service,
	disputeSvc *appDispute.Service,
	investmentSvc *appInvestment.Service,
	auditSvc *appAudit.Service,
	sseHub *sse.Hub,
	logger zerolog.Logger,
	sessionCookieName string,
	sessionCookieSecure bool,
) *Server {
	return &Server{
		authSvc:             authSvc,
		userSvc:             userSvc,
		landSvc:             landSvc,
		leaseSvc:            leaseSvc,
		payoutSvc:           payoutSvc,
		paymentSvc:          paymentSvc,
		disputeSvc:          disputeSvc,
		investmentSvc:       investmentSvc,
		auditSvc:            auditSvc,
		sseHub:              sseHub,
		logger:              logger.With().Str("component", "http").Logger(),
		sessionCookieName:   sessionCookieName,
		sessionCookieSecure: sessionCookieSecure,
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	admin := s.requireRole(string(domainUser.RoleAdmin))

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.register)
			r.Post("/login", s.login)
			r.Post("/bootstrap", s.bootstrapAdmin)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/logout", s.logout)
				r.Get("/me", s.me)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Route("/users", func(r chi.Router) {
				r.With(admin).Post("/", s.createUser)
				r.With(admin).Get("/", s.listUsers)
				r.Get("/{userId}", s.getUser)
				r.With(admin).Put("/{userId}/status", s.setUserStatus)
			})

			r.Route("/lands", func(r chi.Router) {
				r.With(s.requireRole(string(domainUser.RoleLandowner))).Post("/", s.createLand)
				r.Get("/", s.listLands)
				r.Get("/{landId}", s.getLand)
				r.With(s.requireRole(string(domainUser.RoleFarmer))).Post("/{landId}/lease-requests", s.requestLease)
			})

			r.Route("/leases", func(r chi.Router) {
				r.Get("/", s.listLeases)
				r.Get("/{leaseId}", s.getLease)
				r.Post("/{leaseId}/approve", s.approveLease)
				r.Post("/{leaseId}/reject", s.rejectLease)
				r.Delete("/{leaseId}", s.deleteLease)

				r.Post("/{leaseId}/payout-requests", s.requestLeaseRentPayout)
				r.With(s.requireRole(string(domainUser.RoleFarmer))).Post("/{leaseId}/payments", s.fundEscrow)
				r.With(s.requireRole(string(domainUser.RoleInvestor))).Post("/{leaseId}/investments", s.createInvestment)
			})

			r.Route("/investments", func(r chi.Router) {
				r.Get("/", s.listInvestments)
				r.Get("/{investmentId}", s.getInvestment)
				r.Post("/{investmentId}/payout-requests", s.requestInvestmentReturnPayout)
			})

			r.Route("/payout-requests", func(r chi.Router) {
				r.Get("/", s.listPayoutRequests)
				r.Get("/{requestId}", s.getPayoutRequest)
				r.Get("/{requestId}/history", s.getPayoutRequestHistory)
				r.Delete("/{requestId}", s.cancelPayoutRequest)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Get("/", s.listPayments)
				r.Get("/{paymentId}", s.getPayment)
				r.Get("/{paymentId}/history", s.getPaymentHistory)
				r.Post("/{paymentId}/request-release", s.requestRelease)
				r.With(admin).Put("/{paymentId}/release", s.releasePayment)
				r.With(admin).Put("/{paymentId}/refund", s.refundPayment)
			})

			r.Route("/disputes", func(r chi.Router) {
				r.Post("/", s.createDispute)
				r.Get("/", s.listDisputes)
				r.Get("/{disputeId}", s.getDispute)
				r.Get("/{disputeId}/history", s.getDisputeHistory)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(admin)
				r.Patch("/payout-requests/{requestId}", s.reviewPayoutRequest)
				r.Put("/disputes/{disputeId}/status", s.updateDisputeStatus)
				r.Get("/audit", s.queryAudit)
				r.Get("/audit/{auditId}", s.getAudit)
				r.Get("/audit/{auditId}/verify", s.verifyAudit)
			})

			r.Get("/stream", s.sseEndpoint)
		})
	})

	return r
}

// Helpers
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

func parseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, key))
}

func parseUUIDQuery(val string) (uuid.UUID, error) {
	return uuid.Parse(val)
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func parsePagination(r *http.Request) (limit, offset int) {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}
	return limit, offset
}

func (s *Server) sseEndpoint(w http.ResponseWriter, r *http.Request) {
	auth := authUserFromContext(r.Context())
	if auth == nil {
		respondError(w, http.StatusUnauthorized, "NOT_AUTHENTICATED", "authentication required")
		return
	}
	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		clientID = uuid.NewString()
	}
	userID := auth.UserID.String()
	groups := []string{strings.ToLower(string(auth.Role)) + "s"}

	client := notify.NewClient(clientID, &userID, groups)
	s.sseHub.Register(client)
	defer s.sseHub.Unregister(clientID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "streaming not supported")
		return
	}
	w.WriteHeader(http.StatusOK)
	// Initial comment flushes headers and confirms the connection.
	_, _ = w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case msg := <-client.MessageChan:
			if msg == nil {
				return
			}
			payload, _ := json.Marshal(msg)
			_, _ = w.Write([]byte("data: "))
			_, _ = w.Write(payload)
			_, _ = w.Write([]byte("\n\n"))
			flusher.Flush()
		case <-ctx.Done():
			return
		}
	}
}
