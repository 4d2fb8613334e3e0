// Package api exposes the Tally engine over HTTP with JSON bodies.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/xraph/tally"
)

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	engine *tally.Tally
	logger *slog.Logger
}

// NewRouter wires up the HTTP API for engine.
func NewRouter(engine *tally.Tally, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{engine: engine, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Post("/", create(h, h.engine.CreateProduct))
		r.Get("/{id}", getOne(h, h.engine.GetProduct))
		r.Patch("/{id}", patch(h, h.engine.GetProduct, h.engine.UpdateProduct))
		r.Delete("/{id}", remove(h, h.engine.DeleteProduct))
		r.Post("/{id}/stock", h.adjustStock)
	})

	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.listCustomers)
		r.Post("/", create(h, h.engine.CreateCustomer))
		r.Get("/{id}", getOne(h, h.engine.GetCustomer))
		r.Patch("/{id}", patch(h, h.engine.GetCustomer, h.engine.UpdateCustomer))
		r.Delete("/{id}", remove(h, h.engine.DeleteCustomer))
	})

	r.Route("/suppliers", func(r chi.Router) {
		r.Get("/", h.listSuppliers)
		r.Post("/", create(h, h.engine.CreateSupplier))
		r.Get("/{id}", getOne(h, h.engine.GetSupplier))
		r.Patch("/{id}", patch(h, h.engine.GetSupplier, h.engine.UpdateSupplier))
		r.Delete("/{id}", remove(h, h.engine.DeleteSupplier))
	})

	r.Route("/sales", func(r chi.Router) {
		r.Get("/", h.listSales)
		r.Post("/", create(h, h.engine.RecordSale))
		r.Get("/{id}", getOne(h, h.engine.GetSale))
		r.Delete("/{id}", remove(h, h.engine.DeleteSale))
		r.Post("/{id}/invoice", h.generateInvoice)
	})

	r.Get("/invoices", h.listInvoices)

	r.Route("/purchases", func(r chi.Router) {
		r.Get("/", h.listPurchases)
		r.Post("/", create(h, h.engine.RecordPurchase))
		r.Get("/{id}", getOne(h, h.engine.GetPurchase))
		r.Post("/{id}/receive", h.receivePurchase)
	})

	r.Route("/courses", func(r chi.Router) {
		r.Get("/", h.listCourses)
		r.Post("/", create(h, h.engine.CreateCourse))
		r.Get("/{id}", getOne(h, h.engine.GetCourse))
		r.Patch("/{id}", patch(h, h.engine.GetCourse, h.engine.UpdateCourse))
		r.Delete("/{id}", remove(h, h.engine.DeleteCourse))
	})

	r.Route("/batches", func(r chi.Router) {
		r.Get("/", h.listBatches)
		r.Post("/", create(h, h.engine.CreateBatch))
		r.Get("/{id}", getOne(h, h.engine.GetBatch))
		r.Patch("/{id}", patch(h, h.engine.GetBatch, h.engine.UpdateBatch))
		r.Delete("/{id}", remove(h, h.engine.DeleteBatch))
	})

	r.Route("/students", func(r chi.Router) {
		r.Get("/", h.listStudents)
		r.Post("/", create(h, h.engine.CreateStudent))
		r.Get("/{id}", getOne(h, h.engine.GetStudent))
		r.Patch("/{id}", patch(h, h.engine.GetStudent, h.engine.UpdateStudent))
		r.Delete("/{id}", remove(h, h.engine.DeleteStudent))
	})

	r.Route("/admissions", func(r chi.Router) {
		r.Get("/", h.listAdmissions)
		r.Post("/", create(h, h.engine.CreateAdmission))
		r.Get("/{id}", getOne(h, h.engine.GetAdmission))
		r.Patch("/{id}", patch(h, h.engine.GetAdmission, h.engine.UpdateAdmission))
		r.Delete("/{id}", remove(h, h.engine.DeleteAdmission))
	})

	r.Route("/enrollments", func(r chi.Router) {
		r.Get("/", h.listEnrollments)
		r.Post("/", h.enroll)
		r.Get("/{id}", getOne(h, h.engine.GetEnrollment))
		r.Delete("/{id}", h.deleteEnrollment)
		r.Post("/{id}/status", h.setEnrollmentStatus)
	})

	r.Route("/payments", func(r chi.Router) {
		r.Get("/", h.listPayments)
		r.Post("/", create(h, h.engine.RecordCoursePayment))
		r.Get("/{id}", getOne(h, h.engine.GetCoursePayment))
		r.Delete("/{id}", remove(h, h.engine.DeleteCoursePayment))
	})

	r.Route("/vouchers", func(r chi.Router) {
		r.Get("/", h.listVouchers)
		r.Post("/{number}", h.generateVoucher)
	})

	r.Route("/tickets", func(r chi.Router) {
		r.Get("/", h.listTickets)
		r.Post("/", create(h, h.engine.OpenServiceTicket))
		r.Get("/{id}", getOne(h, h.engine.GetServiceTicket))
		r.Patch("/{id}", patch(h, h.engine.GetServiceTicket, h.engine.UpdateServiceTicket))
		r.Post("/{id}/invoice", h.generateServiceInvoice)
	})

	r.Route("/technicians", func(r chi.Router) {
		r.Get("/", h.listTechnicians)
		r.Post("/", create(h, h.engine.CreateTechnician))
	})

	r.Route("/attendance", func(r chi.Router) {
		r.Get("/", h.listSessions)
		r.Post("/", create(h, h.engine.CreateAttendanceSession))
		r.Get("/{id}", getOne(h, h.engine.GetAttendanceSession))
		r.Post("/{id}/marks", h.markAttendance)
	})

	r.Get("/backup", h.exportBackup)
	r.Post("/backup", h.importBackup)

	r.Get("/reports/summary", h.summary)
	r.Get("/reports/summary.xlsx", h.summaryXLSX)

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Ping(r.Context()); err != nil {
		h.logger.Warn("health check failed", "error", err)
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
