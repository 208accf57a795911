package httpapi

import (
	"net/http"
	"strings"

	"intellishield.dev/internal/audit"
	"intellishield.dev/internal/extinguisher"
	"intellishield.dev/internal/stream"
)

type createActivityRequest struct {
	ISNumber       string            `json:"is_number"`
	InspectionDate extinguisher.Date `json:"inspection_date"`
	DueDate        extinguisher.Date `json:"due_date"`
	CapacityUOM    string            `json:"capacity_uom"`
	Weight         string            `json:"weight"`
	Pressure       string            `json:"pressure"`

	CylinderNozzle  bool `json:"cylinder_nozzle"`
	OperatingLever  bool `json:"operating_lever"`
	SafetyPin       bool `json:"safety_pin"`
	PressureGauge   bool `json:"pressure_gauge"`
	PaintPeeledOff  bool `json:"paint_peeled_off"`
	PresenceOfRust  bool `json:"presence_of_rust"`
	DamagedCylinder bool `json:"damaged_cylinder"`
	DentOnBody      bool `json:"dent_on_body"`

	Complaints     string         `json:"complaints"`
	InspectorsName string         `json:"inspectors_name"`
	AdditionalInfo map[string]any `json:"additional_info"`
}

type updateActivityRequest struct {
	AdditionalInfo map[string]any `json:"additional_info"`
}

func (a *API) handleActivities(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/monthlyactivity/")
	if path == "" {
		switch r.Method {
		case http.MethodPost:
			a.createActivity(w, r)
		case http.MethodGet:
			a.listActivities(w, r)
		default:
			methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
		}
		return
	}
	if strings.Contains(path, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	switch r.Method {
	case http.MethodPut:
		a.updateActivity(w, r, path)
	case http.MethodDelete:
		a.deleteActivity(w, r, path)
	default:
		methodNotAllowed(w, r, http.MethodPut, http.MethodDelete)
	}
}

// createActivity appends an inspection record; the referenced unit
// must already be registered.
func (a *API) createActivity(w http.ResponseWriter, r *http.Request) {
	var req createActivityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	record := &extinguisher.Inspection{
		ISNumber:        strings.TrimSpace(req.ISNumber),
		InspectionDate:  req.InspectionDate,
		DueDate:         req.DueDate,
		CapacityUOM:     req.CapacityUOM,
		Weight:          req.Weight,
		Pressure:        req.Pressure,
		CylinderNozzle:  req.CylinderNozzle,
		OperatingLever:  req.OperatingLever,
		SafetyPin:       req.SafetyPin,
		PressureGauge:   req.PressureGauge,
		PaintPeeledOff:  req.PaintPeeledOff,
		PresenceOfRust:  req.PresenceOfRust,
		DamagedCylinder: req.DamagedCylinder,
		DentOnBody:      req.DentOnBody,
		Complaints:      req.Complaints,
		InspectorsName:  req.InspectorsName,
		AdditionalInfo:  req.AdditionalInfo,
	}
	if err := a.registry.RecordInspection(r.Context(), record); err != nil {
		handleRegistryError(w, r, err)
		return
	}

	verdict := extinguisher.Evaluate([]*extinguisher.Inspection{record})
	_ = audit.LogEvent(r.Context(), "registry.inspection.create", map[string]any{
		"is_number": record.ISNumber,
		"record_id": record.ID,
		"defects":   verdict.Defects,
	})
	if a.stream != nil {
		a.stream.Publish(stream.InspectionEvent{
			Kind:         "inspected",
			ISNumber:     record.ISNumber,
			RecordID:     record.ID,
			NonCompliant: verdict.NonCompliant,
			Defects:      verdict.Defects,
		})
	}

	writeJSON(w, http.StatusCreated, record)
}

func (a *API) listActivities(w http.ResponseWriter, r *http.Request) {
	records, err := a.registry.AllInspections(r.Context())
	if err != nil {
		handleRegistryError(w, r, err)
		return
	}
	if records == nil {
		records = []*extinguisher.Inspection{}
	}
	writeJSON(w, http.StatusOK, records)
}

// updateActivity merges override keys into the record's map. Existing
// keys survive; the merge never removes anything.
func (a *API) updateActivity(w http.ResponseWriter, r *http.Request, id string) {
	var req updateActivityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	record, err := a.registry.MergeOverrides(r.Context(), id, req.AdditionalInfo)
	if err != nil {
		handleRegistryError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "registry.inspection.override", map[string]any{
		"record_id": record.ID,
		"keys":      overrideKeys(req.AdditionalInfo),
	})
	if a.stream != nil {
		verdict := extinguisher.Evaluate([]*extinguisher.Inspection{record})
		a.stream.Publish(stream.InspectionEvent{
			Kind:         "overridden",
			ISNumber:     record.ISNumber,
			RecordID:     record.ID,
			NonCompliant: verdict.NonCompliant,
			Defects:      verdict.Defects,
		})
	}
	writeJSON(w, http.StatusOK, record)
}

func (a *API) deleteActivity(w http.ResponseWriter, r *http.Request, id string) {
	record, err := a.registry.DeleteInspection(r.Context(), id)
	if err != nil {
		handleRegistryError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "registry.inspection.delete", map[string]any{
		"record_id": record.ID,
		"is_number": record.ISNumber,
	})
	if a.stream != nil {
		a.stream.Publish(stream.InspectionEvent{
			Kind:     "deleted",
			ISNumber: record.ISNumber,
			RecordID: record.ID,
		})
	}
	writeJSON(w, http.StatusOK, record)
}

func overrideKeys(info map[string]any) []string {
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	return keys
}
