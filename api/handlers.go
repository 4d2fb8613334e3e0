package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xraph/tally"
	"github.com/xraph/tally/attendance"
	"github.com/xraph/tally/course"
	"github.com/xraph/tally/customer"
	"github.com/xraph/tally/enrollment"
	"github.com/xraph/tally/invoice"
	"github.com/xraph/tally/payment"
	"github.com/xraph/tally/product"
	"github.com/xraph/tally/purchase"
	"github.com/xraph/tally/report"
	"github.com/xraph/tally/sale"
	"github.com/xraph/tally/service"
	"github.com/xraph/tally/student"
	"github.com/xraph/tally/supplier"
)

// ──────────────────────────────────────────────────
// Inventory
// ──────────────────────────────────────────────────

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	supplierID, err := queryID(r, "supplierId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	recs, err := h.engine.ListProducts(r.Context(), product.ListOpts{
		Category:   product.Category(r.URL.Query().Get("category")),
		SupplierID: supplierID,
		LowStock:   queryBool(r, "lowStock"),
	})
	list(h, w, r, recs, err)
}

type stockRequest struct {
	Delta int64 `json:"delta"`
}

func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req stockRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.engine.AdjustStock(r.Context(), productID, req.Delta)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	recs, err := h.engine.ListCustomers(r.Context(), customer.ListOpts{Search: r.URL.Query().Get("search")})
	list(h, w, r, recs, err)
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	recs, err := h.engine.ListSuppliers(r.Context(), supplier.ListOpts{})
	list(h, w, r, recs, err)
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	customerID, err := queryID(r, "customerId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	recs, err := h.engine.ListSales(r.Context(), sale.ListOpts{
		CustomerID: customerID,
		Status:     sale.Status(r.URL.Query().Get("status")),
	})
	list(h, w, r, recs, err)
}

func (h *Handler) generateInvoice(w http.ResponseWriter, r *http.Request) {
	saleID, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	inv, err := h.engine.GenerateInvoice(r.Context(), saleID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, inv)
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	saleID, err := queryID(r, "saleId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	recs, err := h.engine.ListInvoices(r.Context(), invoice.ListOpts{SaleID: saleID})
	list(h, w, r, recs, err)
}

func (h *Handler) listPurchases(w http.ResponseWriter, r *http.Request) {
	supplierID, err := queryID(r, "supplierId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	recs, err := h.engine.ListPurchases(r.Context(), purchase.ListOpts{
		SupplierID: supplierID,
		Status:     purchase.Status(r.URL.Query().Get("status")),
	})
	list(h, w, r, recs, err)
}

func (h *Handler) receivePurchase(w http.ResponseWriter, r *http.Request) {
	purchaseID, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.engine.ReceivePurchase(r.Context(), purchaseID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// ──────────────────────────────────────────────────
// Training centre
// ──────────────────────────────────────────────────

func (h *Handler) listCourses(w http.ResponseWriter, r *http.Request) {
	recs, err := h.engine.ListCourses(r.Context(), course.ListOpts{Status: course.Status(r.URL.Query().Get("status"))})
	list(h, w, r, recs, err)
}

func (h *Handler) listBatches(w http.ResponseWriter, r *http.Request) {
	courseID, err := queryID(r, "courseId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	recs, err := h.engine.ListBatches(r.Context(), course.BatchListOpts{
		CourseID: courseID,
		Status:   course.BatchStatus(r.URL.Query().Get("status")),
	})
	list(h, w, r, recs, err)
}

func (h *Handler) listStudents(w http.ResponseWriter, r *http.Request) {
	recs, err := h.engine.ListStudents(r.Context(), student.ListOpts{Search: r.URL.Query().Get("search")})
	list(h, w, r, recs, err)
}

func (h *Handler) listEnrollments(w http.ResponseWriter, r *http.Request) {
	var opts enrollment.ListOpts
	var err error
	if opts.StudentID, err = queryID(r, "studentId"); err != nil {
		h.fail(w, r, err)
		return
	}
	if opts.BatchID, err = queryID(r, "batchId"); err != nil {
		h.fail(w, r, err)
		return
	}
	if opts.CourseID, err = queryID(r, "courseId"); err != nil {
		h.fail(w, r, err)
		return
	}
	opts.Status = enrollment.Status(r.URL.Query().Get("status"))

	recs, err := h.engine.ListEnrollments(r.Context(), opts)
	list(h, w, r, recs, err)
}

func (h *Handler) listAdmissions(w http.ResponseWriter, r *http.Request) {
	var opts enrollment.AdmissionListOpts
	var err error
	if opts.StudentID, err = queryID(r, "studentId"); err != nil {
		h.fail(w, r, err)
		return
	}
	if opts.BatchID, err = queryID(r, "batchId"); err != nil {
		h.fail(w, r, err)
		return
	}
	opts.Status = enrollment.AdmissionStatus(r.URL.Query().Get("status"))

	recs, err := h.engine.ListAdmissions(r.Context(), opts)
	list(h, w, r, recs, err)
}

func (h *Handler) enroll(w http.ResponseWriter, r *http.Request) {
	var req enrollment.Request
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	e, err := h.engine.Enroll(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, e)
}

// deleteEnrollment refuses while payments exist unless ?cascade=true.
func (h *Handler) deleteEnrollment(w http.ResponseWriter, r *http.Request) {
	enrollmentID, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if queryBool(r, "cascade") {
		err = h.engine.DeleteEnrollmentCascade(r.Context(), enrollmentID)
	} else {
		err = h.engine.DeleteEnrollment(r.Context(), enrollmentID)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setEnrollmentStatus(w http.ResponseWriter, r *http.Request) {
	enrollmentID, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req enrollment.StatusChange
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	e, err := h.engine.SetEnrollmentStatus(r.Context(), enrollmentID, req.Status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, e)
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	var opts payment.ListOpts
	var err error
	if opts.EnrollmentID, err = queryID(r, "enrollmentId"); err != nil {
		h.fail(w, r, err)
		return
	}
	if opts.StudentID, err = queryID(r, "studentId"); err != nil {
		h.fail(w, r, err)
		return
	}
	opts.Type = payment.Type(r.URL.Query().Get("type"))

	recs, err := h.engine.ListCoursePayments(r.Context(), opts)
	list(h, w, r, recs, err)
}

func (h *Handler) listVouchers(w http.ResponseWriter, r *http.Request) {
	paymentID, err := queryID(r, "paymentId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	recs, err := h.engine.ListVouchers(r.Context(), payment.VoucherListOpts{PaymentID: paymentID})
	list(h, w, r, recs, err)
}

func (h *Handler) generateVoucher(w http.ResponseWriter, r *http.Request) {
	v, err := h.engine.GeneratePaymentVoucher(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	batchID, err := queryID(r, "batchId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	recs, err := h.engine.ListAttendanceSessions(r.Context(), attendance.ListOpts{BatchID: batchID})
	list(h, w, r, recs, err)
}

func (h *Handler) markAttendance(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req tally.MarkRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	s, err := h.engine.MarkAttendance(r.Context(), sessionID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

// ──────────────────────────────────────────────────
// Repair desk
// ──────────────────────────────────────────────────

func (h *Handler) listTickets(w http.ResponseWriter, r *http.Request) {
	var opts service.TicketListOpts
	var err error
	if opts.CustomerID, err = queryID(r, "customerId"); err != nil {
		h.fail(w, r, err)
		return
	}
	if opts.TechnicianID, err = queryID(r, "technicianId"); err != nil {
		h.fail(w, r, err)
		return
	}
	opts.Status = service.Status(r.URL.Query().Get("status"))
	opts.PendingOnly = queryBool(r, "pending")

	recs, err := h.engine.ListServiceTickets(r.Context(), opts)
	list(h, w, r, recs, err)
}

func (h *Handler) generateServiceInvoice(w http.ResponseWriter, r *http.Request) {
	ticketID, err := pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	inv, err := h.engine.GenerateServiceInvoice(r.Context(), ticketID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, inv)
}

func (h *Handler) listTechnicians(w http.ResponseWriter, r *http.Request) {
	recs, err := h.engine.ListTechnicians(r.Context(), service.TechnicianListOpts{
		Status: service.TechnicianStatus(r.URL.Query().Get("status")),
	})
	list(h, w, r, recs, err)
}

// ──────────────────────────────────────────────────
// Backup & reports
// ──────────────────────────────────────────────────

func (h *Handler) exportBackup(w http.ResponseWriter, r *http.Request) {
	doc, err := h.engine.Export(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := doc.Encode(&buf); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="tally-backup.json"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w) //nolint:errcheck // the client went away
}

func (h *Handler) importBackup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := h.engine.Import(r.Context(), r.Body); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	s, err := report.Build(r.Context(), h.engine.Store())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, s)
}

func (h *Handler) summaryXLSX(w http.ResponseWriter, r *http.Request) {
	s, err := report.Build(r.Context(), h.engine.Store())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, s); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="tally-summary.xlsx"`)
	_, _ = buf.WriteTo(w) //nolint:errcheck // the client went away
}
