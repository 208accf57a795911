package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"intellishield.dev/internal/audit"
	"intellishield.dev/internal/extinguisher"
	"intellishield.dev/internal/obs"
	"intellishield.dev/internal/stream"
)

type createExtinguisherRequest struct {
	CylinderNumber     string            `json:"cylinder_number"`
	TypeOfExtinguisher string            `json:"type_of_extinguisher"`
	LocationTagNumber  string            `json:"location_tag_number"`
	Location           string            `json:"location"`
	ServiceProvider    string            `json:"service_provider"`
	UOM                string            `json:"uom"`
	NetWeight          string            `json:"net_weight"`
	Capacity           string            `json:"capacity"`
	DateOfRefilling    extinguisher.Date `json:"date_of_refilling"`
	DueOfRefilling     extinguisher.Date `json:"due_of_refilling"`
	DateOfHPT          extinguisher.Date `json:"date_of_hpt"`
	DueOfHPT           extinguisher.Date `json:"due_of_hpt"`
	ManufacturingDate  extinguisher.Date `json:"manufacturing_date"`
	ExpiryDate         extinguisher.Date `json:"expiry_date"`
}

// extinguisherSummary is the compliance-annotated unit view.
type extinguisherSummary struct {
	SlNo               string            `json:"sl_no"`
	SerialNo           string            `json:"serial_no"`
	LocationName       string            `json:"location_name"`
	LocationTagNo      string            `json:"location_tag_no"`
	CylinderNumber     string            `json:"cylinder_number"`
	DateOfRefilling    extinguisher.Date `json:"date_of_refilling"`
	DueOfRefilling     extinguisher.Date `json:"due_of_refilling"`
	TypeOfExtinguisher string            `json:"type_of_extinguisher"`
	NetWeight          string            `json:"net_weight"`
	UOM                string            `json:"uom"`
	DueOfHPT           extinguisher.Date `json:"due_of_hpt"`
	ExpiryDate         extinguisher.Date `json:"expiry_date"`
	NonCompliant       bool              `json:"non_compliant"`
}

func summarize(unit *extinguisher.Extinguisher, nonCompliant bool) extinguisherSummary {
	return extinguisherSummary{
		SlNo:               unit.ID,
		SerialNo:           unit.ISNumber,
		LocationName:       unit.Location,
		LocationTagNo:      unit.LocationTagNumber,
		CylinderNumber:     unit.CylinderNumber,
		DateOfRefilling:    unit.DateOfRefilling,
		DueOfRefilling:     unit.DueOfRefilling,
		TypeOfExtinguisher: unit.TypeOfExtinguisher,
		NetWeight:          unit.NetWeight,
		UOM:                unit.UOM,
		DueOfHPT:           unit.DueOfHPT,
		ExpiryDate:         unit.ExpiryDate,
		NonCompliant:       nonCompliant,
	}
}

func (a *API) handleExtinguishers(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/fireextinguishers/")
	switch {
	case path == "":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		a.createExtinguisher(w, r)
	case strings.HasPrefix(path, "summary/"):
		a.getSummary(w, r, strings.TrimPrefix(path, "summary/"))
	case strings.HasPrefix(path, "web/"):
		a.getUnitRaw(w, r, strings.TrimPrefix(path, "web/"))
	case strings.HasPrefix(path, "filter/"):
		a.filterHistory(w, r, strings.TrimPrefix(path, "filter/"))
	case strings.HasPrefix(path, "fe_data/"):
		a.listByAdmin(w, r, strings.TrimPrefix(path, "fe_data/"))
	case strings.Contains(path, "/"):
		writeError(w, r, http.StatusNotFound, "resource not found")
	default:
		a.getStrict(w, r, path)
	}
}

// createExtinguisher registers a unit for the calling admin, gated on
// the license quota embedded in the admin's token.
func (a *API) createExtinguisher(w http.ResponseWriter, r *http.Request) {
	principal, r, ok := a.requireAdmin(w, r)
	if !ok {
		return
	}
	var req createExtinguisherRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	owned, err := a.registry.CountByAdmin(r.Context(), principal.ID)
	if err != nil {
		handleRegistryError(w, r, err)
		return
	}
	if err := extinguisher.CheckQuota(principal.Quota, owned); err != nil {
		handleRegistryError(w, r, err)
		return
	}

	unit := &extinguisher.Extinguisher{
		CylinderNumber:     req.CylinderNumber,
		TypeOfExtinguisher: req.TypeOfExtinguisher,
		LocationTagNumber:  req.LocationTagNumber,
		Location:           req.Location,
		ServiceProvider:    req.ServiceProvider,
		UOM:                req.UOM,
		NetWeight:          req.NetWeight,
		Capacity:           req.Capacity,
		DateOfRefilling:    req.DateOfRefilling,
		DueOfRefilling:     req.DueOfRefilling,
		DateOfHPT:          req.DateOfHPT,
		DueOfHPT:           req.DueOfHPT,
		ManufacturingDate:  req.ManufacturingDate,
		ExpiryDate:         req.ExpiryDate,
		AdminID:            principal.ID,
	}
	if err := a.registry.Register(r.Context(), unit); err != nil {
		handleRegistryError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "registry.extinguisher.create", map[string]any{
		"is_number": unit.ISNumber,
		"admin_id":  principal.ID,
	})
	if a.stream != nil {
		a.stream.Publish(stream.InspectionEvent{
			Kind:     "registered",
			ISNumber: unit.ISNumber,
			Location: unit.Location,
		})
	}

	w.Header().Set("Location", "/fireextinguishers/"+unit.ISNumber)
	writeJSON(w, http.StatusCreated, unit)
}

// getStrict evaluates the latest inspection and refuses to answer with
// a clean summary while unwaived defects remain.
func (a *API) getStrict(w http.ResponseWriter, r *http.Request, isNumber string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	unit, verdict, ok := a.evaluateUnit(w, r, isNumber)
	if !ok {
		return
	}
	if err := verdict.Violation(); err != nil {
		var ce *extinguisher.ComplianceError
		if !errors.As(err, &ce) {
			writeError(w, r, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Fire extinguisher not compliant with safety standards:",
			"id":      ce.RecordID,
			"defects": ce.Defects,
		})
		return
	}
	writeJSON(w, http.StatusOK, summarize(unit, verdict.NonCompliant))
}

// getSummary reports the same verdict as the strict view but never
// turns defects into a client error.
func (a *API) getSummary(w http.ResponseWriter, r *http.Request, isNumber string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	unit, verdict, ok := a.evaluateUnit(w, r, isNumber)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, summarize(unit, verdict.NonCompliant))
}

// evaluateUnit loads the unit and recomputes compliance from its
// history. The verdict is never persisted.
func (a *API) evaluateUnit(w http.ResponseWriter, r *http.Request, isNumber string) (*extinguisher.Extinguisher, extinguisher.Verdict, bool) {
	unit, err := a.registry.Unit(r.Context(), isNumber)
	if err != nil {
		handleRegistryError(w, r, err)
		return nil, extinguisher.Verdict{}, false
	}
	history, err := a.registry.History(r.Context(), isNumber)
	if err != nil {
		handleRegistryError(w, r, err)
		return nil, extinguisher.Verdict{}, false
	}
	verdict := extinguisher.Evaluate(history)
	switch {
	case verdict.NoHistory:
		obs.ObserveCompliance("no_history")
	case verdict.NonCompliant:
		obs.ObserveCompliance("non_compliant")
	default:
		obs.ObserveCompliance("compliant")
	}
	return unit, verdict, true
}

func (a *API) getUnitRaw(w http.ResponseWriter, r *http.Request, isNumber string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	unit, err := a.registry.Unit(r.Context(), isNumber)
	if err != nil {
		handleRegistryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, unit)
}

// filterHistory returns the unit with its inspection records filtered
// by an optional inspection-date range.
func (a *API) filterHistory(w http.ResponseWriter, r *http.Request, isNumber string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	unit, err := a.registry.Unit(r.Context(), isNumber)
	if err != nil {
		handleRegistryError(w, r, err)
		return
	}

	var start, end *extinguisher.Date
	if raw := strings.TrimSpace(r.URL.Query().Get("start_date")); raw != "" {
		d, err := extinguisher.ParseDate(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
			return
		}
		start = &d
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("end_date")); raw != "" {
		d, err := extinguisher.ParseDate(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD")
			return
		}
		end = &d
	}

	history, err := a.registry.HistoryBetween(r.Context(), isNumber, start, end)
	if err != nil {
		handleRegistryError(w, r, err)
		return
	}
	if history == nil {
		history = []*extinguisher.Inspection{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"fire_extinguisher": struct {
			*extinguisher.Extinguisher
			MonthlyActivities []*extinguisher.Inspection `json:"monthly_activities"`
		}{unit, history},
	})
}

func (a *API) listByAdmin(w http.ResponseWriter, r *http.Request, adminID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	units, err := a.registry.UnitsByAdmin(r.Context(), adminID)
	if err != nil {
		handleRegistryError(w, r, err)
		return
	}
	if len(units) == 0 {
		writeError(w, r, http.StatusNotFound, "Fire extinguishers not found")
		return
	}
	writeJSON(w, http.StatusOK, units)
}

// handleRegistryError maps registry failures onto status codes. The
// quota message carries the numeric limit verbatim.
func handleRegistryError(w http.ResponseWriter, r *http.Request, err error) {
	var qe *extinguisher.QuotaError
	switch {
	case errors.As(err, &qe):
		writeError(w, r, http.StatusForbidden, qe.Error())
	case errors.Is(err, extinguisher.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "Fire extinguisher not found")
	case errors.Is(err, extinguisher.ErrAlreadyExists):
		writeError(w, r, http.StatusConflict, "Fire extinguisher already registered")
	case errors.Is(err, extinguisher.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
