package http

import (
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Ashik-Muhammed/Travelita-sub002/internal/booking"
	"github.com/Ashik-Muhammed/Travelita-sub002/internal/catalog"
	"github.com/Ashik-Muhammed/Travelita-sub002/internal/domain"
	"github.com/Ashik-Muhammed/Travelita-sub002/internal/observability"
	"github.com/Ashik-Muhammed/Travelita-sub002/internal/reconcile"
)

// Handlers adapt HTTP to the core services. Auth lives upstream; the
// gateway forwards the caller's identity as X-Actor-Role and X-Actor-Id.
type Handlers struct {
	bookings *booking.Service
	packages *catalog.Service
	engine   *reconcile.Engine
	logger   observability.Logger
}

func NewHandlers(bookings *booking.Service, packages *catalog.Service, engine *reconcile.Engine, logger observability.Logger) *Handlers {
	return &Handlers{
		bookings: bookings,
		packages: packages,
		engine:   engine,
		logger:   logger,
	}
}

func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID        string   `json:"userId"`
		PackageID     string   `json:"packageId"`
		Status        string   `json:"status"`
		CustomerName  string   `json:"customerName"`
		CustomerEmail string   `json:"customerEmail"`
		Price         *float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, replayed, err := h.bookings.Create(r.Context(), booking.CreateInput{
		UserID:        req.UserID,
		PackageID:     req.PackageID,
		Status:        req.Status,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Price:         req.Price,
	}, r.Header.Get("Idempotency-Key"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, b)
}

func (h *Handlers) ListBookings(w http.ResponseWriter, r *http.Request) {
	var f domain.BookingFilter
	if v := r.URL.Query().Get("userId"); v != "" {
		oid, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid userId")
			return
		}
		f.UserID = &oid
	}
	if v := r.URL.Query().Get("packageId"); v != "" {
		oid, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid packageId")
			return
		}
		f.PackageID = &oid
	}

	bookings, err := h.bookings.List(r.Context(), f)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *Handlers) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b, err := h.bookings.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handlers) CreatePackage(w http.ResponseWriter, r *http.Request) {
	if actorRole(r) != domain.RoleVendor && actorRole(r) != domain.RoleAdmin {
		writeJSONError(w, http.StatusForbidden, "vendor or admin role required")
		return
	}
	vendorID, ok := actorID(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "missing or invalid X-Actor-Id")
		return
	}

	var req struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Destination string  `json:"destination"`
		Duration    string  `json:"duration"`
		Price       float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	pkg, err := h.packages.Create(r.Context(), catalog.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Destination: req.Destination,
		Duration:    req.Duration,
		Price:       req.Price,
	}, vendorID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pkg)
}

// ListPackages serves the cached public listing, or a vendor's own
// packages when the caller is a vendor asking for them.
func (h *Handlers) ListPackages(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("mine") == "true" && actorRole(r) == domain.RoleVendor {
		vendorID, ok := actorID(r)
		if !ok {
			writeJSONError(w, http.StatusBadRequest, "missing or invalid X-Actor-Id")
			return
		}
		pkgs, err := h.packages.List(r.Context(), domain.PackageFilter{VendorID: &vendorID})
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pkgs)
		return
	}

	pkgs, err := h.packages.ListPublic(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pkgs)
}

func (h *Handlers) GetPackage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	pkg, err := h.packages.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pkg)
}

func (h *Handlers) SetPackageStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Status domain.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	pkg, err := h.packages.SetStatus(r.Context(), id, req.Status, actorRole(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pkg)
}

func (h *Handlers) SetPackageAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actor, _ := actorID(r)
	var req struct {
		Available bool `json:"available"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	pkg, err := h.packages.SetAvailability(r.Context(), id, req.Available, actorRole(r), actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pkg)
}

func (h *Handlers) DeletePackage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actor, _ := actorID(r)
	if err := h.packages.Delete(r.Context(), id, actorRole(r), actor); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RunReconciliation kicks a synchronous reconciliation pass and returns its
// report. Admin tooling only.
func (h *Handlers) RunReconciliation(w http.ResponseWriter, r *http.Request) {
	if actorRole(r) != domain.RoleAdmin {
		writeJSONError(w, http.StatusForbidden, "admin role required")
		return
	}
	report, err := h.engine.Run(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	case errors.Is(err, domain.ErrPreconditionFailed):
		writeJSON(w, http.StatusPreconditionFailed, map[string]interface{}{
			"error":  "precondition failed",
			"detail": errors.FlattenDetails(err),
		})
	case errors.Is(err, domain.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrConflict):
		writeJSONError(w, http.StatusConflict, "conflict")
	case errors.Is(err, domain.ErrStoreUnavailable):
		h.logger.WithError(err).Error("store unavailable")
		writeJSONError(w, http.StatusServiceUnavailable, "store unavailable")
	default:
		h.logger.WithError(err).Error("request failed")
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid id")
		return primitive.NilObjectID, false
	}
	return id, true
}

func actorRole(r *http.Request) domain.Role {
	return domain.Role(r.Header.Get("X-Actor-Role"))
}

func actorID(r *http.Request) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(r.Header.Get("X-Actor-Id"))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
