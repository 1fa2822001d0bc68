package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/mehrclinic/records-service/internal/auth"
	"github.com/mehrclinic/records-service/internal/delivery"
	"github.com/mehrclinic/records-service/internal/messaging"
	"github.com/mehrclinic/records-service/internal/notification"
	"github.com/mehrclinic/records-service/internal/patient"
	"github.com/mehrclinic/records-service/internal/quota"
	"github.com/mehrclinic/records-service/internal/store"
	"github.com/mehrclinic/records-service/internal/telemetry"
)

// Options carries everything the router needs. Verifier may be nil, in
// which case the API is served without authentication (closed-LAN mode).
type Options struct {
	Store     store.Store
	Publisher messaging.PublisherInterface
	Metrics   *telemetry.Metrics
	Verifier  *auth.Verifier
	Perms     auth.Permissions
}

// SetupRouter wires all services and routes of the application.
func SetupRouter(opts Options) *mux.Router {
	notificationService := notification.NewService(opts.Store)
	notificationHandler := notification.NewHandler(notificationService)

	quotaService := quota.NewService(opts.Store, notificationService, opts.Publisher, opts.Metrics)
	quotaHandler := quota.NewHandler(quotaService)

	deliveryService := delivery.NewService(opts.Store, opts.Publisher, opts.Metrics)
	deliveryHandler := delivery.NewHandler(deliveryService)

	patientService := patient.NewService(opts.Store, quotaService, deliveryService, opts.Publisher, opts.Metrics)
	patientHandler := patient.NewHandler(patientService)

	// protect applies token verification and a permission check when auth
	// is configured.
	protect := func(h http.Handler, perm string) http.Handler {
		if opts.Verifier == nil {
			return h
		}
		return auth.MiddlewareWithMetrics(opts.Verifier, opts.Metrics)(
			auth.RequirePermission(perm, opts.Perms)(h),
		)
	}

	r := mux.NewRouter()
	r.Use(otelmux.Middleware("records-service"))
	r.Use(MetricsMiddleware(opts.Metrics))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"records-service"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Patient registry
	api.Handle("/patients", protect(http.HandlerFunc(patientHandler.Register), "patient:create")).Methods("POST")
	api.Handle("/patients", protect(http.HandlerFunc(patientHandler.List), "patient:view")).Methods("GET")
	api.Handle("/patients/search", protect(http.HandlerFunc(patientHandler.Search), "patient:view")).Methods("GET")
	api.Handle("/patients/export", protect(http.HandlerFunc(patientHandler.Export), "patient:view")).Methods("GET")
	api.Handle("/patients/{id}", protect(http.HandlerFunc(patientHandler.Get), "patient:view")).Methods("GET")
	api.Handle("/patients/{id}", protect(http.HandlerFunc(patientHandler.Update), "patient:update")).Methods("PUT")
	api.Handle("/patients/{id}", protect(http.HandlerFunc(patientHandler.Delete), "patient:delete")).Methods("DELETE")
	api.Handle("/patients/{id}/quota", protect(http.HandlerFunc(patientHandler.AdjustQuota), "quota:update")).Methods("POST")
	api.Handle("/patients/{id}/quota-history", protect(http.HandlerFunc(patientHandler.QuotaHistory), "patient:view")).Methods("GET")

	// Global quota ledger
	api.Handle("/global-quota", protect(http.HandlerFunc(quotaHandler.GetGlobalQuota), "quota:view")).Methods("GET")
	api.Handle("/global-quota", protect(http.HandlerFunc(quotaHandler.AdjustGlobalQuota), "quota:update")).Methods("PUT")
	api.Handle("/global-quota/monthly", protect(http.HandlerFunc(quotaHandler.AddMonthlyTopUp), "quota:update")).Methods("POST")

	// Drug deliveries and monthly reports
	api.Handle("/drug-delivery", protect(http.HandlerFunc(deliveryHandler.Record), "delivery:create")).Methods("POST")
	api.Handle("/drug-delivery", protect(http.HandlerFunc(deliveryHandler.List), "delivery:view")).Methods("GET")
	api.Handle("/drug-delivery/export", protect(http.HandlerFunc(deliveryHandler.Export), "delivery:view")).Methods("GET")
	api.Handle("/drug-delivery/{id}", protect(http.HandlerFunc(deliveryHandler.Get), "delivery:view")).Methods("GET")
	api.Handle("/drug-delivery/{id}", protect(http.HandlerFunc(deliveryHandler.Update), "delivery:update")).Methods("PUT")
	api.Handle("/monthly-report", protect(http.HandlerFunc(deliveryHandler.MonthlyReport), "report:view")).Methods("GET")
	api.Handle("/monthly-report/export", protect(http.HandlerFunc(deliveryHandler.ExportReport), "report:view")).Methods("GET")

	// Notifications
	api.Handle("/notifications", protect(http.HandlerFunc(notificationHandler.List), "notification:view")).Methods("GET")
	api.Handle("/notifications", protect(http.HandlerFunc(notificationHandler.Create), "notification:create")).Methods("POST")
	api.Handle("/notifications/{id}/read", protect(http.HandlerFunc(notificationHandler.MarkRead), "notification:update")).Methods("PUT")

	return r
}
