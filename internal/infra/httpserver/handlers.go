package httpserver

import (
	"net/http"

	appequipment "github.com/bryanwahyu/rbi-inspect/internal/application/equipment"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/equipment"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/inspections"
	"github.com/bryanwahyu/rbi-inspect/internal/domain/rbi"
	"github.com/bryanwahyu/rbi-inspect/internal/middleware"
)

// GET /api/equipment
func (r *Router) handleListEquipment(w http.ResponseWriter, req *http.Request) error {
	list, err := r.svc.Equipment.List(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// POST /api/equipment
func (r *Router) handleCreateEquipment(w http.ResponseWriter, req *http.Request) error {
	var cmd appequipment.Command
	if err := decode(req, &cmd); err != nil {
		return err
	}
	e, err := r.svc.Equipment.Create(req.Context(), cmd)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, e)
}

// GET /api/equipment/{id}
func (r *Router) handleGetEquipment(w http.ResponseWriter, req *http.Request) error {
	id, err := pathID(req)
	if err != nil {
		return err
	}
	e, err := r.svc.Equipment.Get(req.Context(), equipment.ID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, e)
}

// PUT /api/equipment/{id}
func (r *Router) handleUpdateEquipment(w http.ResponseWriter, req *http.Request) error {
	id, err := pathID(req)
	if err != nil {
		return err
	}
	var cmd appequipment.Command
	if err := decode(req, &cmd); err != nil {
		return err
	}
	e, err := r.svc.Equipment.Update(req.Context(), equipment.ID(id), cmd)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, e)
}

// DELETE /api/equipment/{id}
func (r *Router) handleDeleteEquipment(w http.ResponseWriter, req *http.Request) error {
	id, err := pathID(req)
	if err != nil {
		return err
	}
	if err := r.svc.Equipment.Delete(req.Context(), equipment.ID(id)); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// POST /api/equipment/{id}/floc
// Body: {"floc": "...", "corrosion_loop": "..."}; a null floc unassigns.
func (r *Router) handleAssignFLOC(w http.ResponseWriter, req *http.Request) error {
	id, err := pathID(req)
	if err != nil {
		return err
	}
	var body struct {
		FLOC          *string `json:"floc"`
		CorrosionLoop *string `json:"corrosion_loop"`
	}
	if err := decode(req, &body); err != nil {
		return err
	}
	e, err := r.svc.Equipment.AssignFLOC(req.Context(), equipment.ID(id), body.FLOC, body.CorrosionLoop)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, e)
}

// GET /api/floc
func (r *Router) handleFLOCGroups(w http.ResponseWriter, req *http.Request) error {
	groups, err := r.svc.Equipment.FLOCGroups(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, groups)
}

// GET /api/damage-mechanisms
func (r *Router) handleDamageMechanisms(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, r.svc.Analyses.DamageMechanisms())
}

// POST /api/rbi-analysis
func (r *Router) handleRunAnalysis(w http.ResponseWriter, req *http.Request) error {
	var in rbi.Input
	if err := decode(req, &in); err != nil {
		return err
	}
	res, err := r.svc.Analyses.Run(req.Context(), in)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, res)
}

// GET /api/rbi-analysis?limit=50
func (r *Router) handleListAnalyses(w http.ResponseWriter, req *http.Request) error {
	limit, err := queryLimit(req)
	if err != nil {
		return err
	}
	list, err := r.svc.Analyses.List(req.Context(), limit)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /api/rbi-analysis/{id}
func (r *Router) handleGetAnalysis(w http.ResponseWriter, req *http.Request) error {
	id, err := pathID(req)
	if err != nil {
		return err
	}
	a, err := r.svc.Analyses.Get(req.Context(), rbi.AnalysisID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, a)
}

// POST /api/rbi-analysis/{id}/narrative
func (r *Router) handleNarrate(w http.ResponseWriter, req *http.Request) error {
	id, err := pathID(req)
	if err != nil {
		return err
	}
	n, err := r.svc.Advisory.Narrate(req.Context(), rbi.AnalysisID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, n)
}

// GET /api/rbi-analysis/{id}/narrative
func (r *Router) handleLatestNarrative(w http.ResponseWriter, req *http.Request) error {
	id, err := pathID(req)
	if err != nil {
		return err
	}
	n, err := r.svc.Advisory.Latest(req.Context(), rbi.AnalysisID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, n)
}

// GET /api/inspection-schedules
func (r *Router) handleListSchedules(w http.ResponseWriter, req *http.Request) error {
	list, err := r.svc.Inspections.List(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// PUT /api/inspection-schedules/{id}/complete?findings=...
func (r *Router) handleCompleteSchedule(w http.ResponseWriter, req *http.Request) error {
	id, err := pathID(req)
	if err != nil {
		return err
	}
	findings := middleware.SanitizeString(req.URL.Query().Get("findings"))
	sc, err := r.svc.Inspections.Complete(req.Context(), inspections.ScheduleID(id), findings)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, sc)
}

// GET /api/dashboard/stats
func (r *Router) handleDashboardStats(w http.ResponseWriter, req *http.Request) error {
	st, err := r.svc.Dashboard.Stats(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, st)
}

// GET /api/export/csv
func (r *Router) handleExportCSV(w http.ResponseWriter, req *http.Request) error {
	data, err := r.svc.Reports.ExportCSV(req.Context())
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="rbi_analysis_export.csv"`)
	_, err = w.Write(data)
	return err
}

// POST /api/export/csv/publish
func (r *Router) handlePublishCSV(w http.ResponseWriter, req *http.Request) error {
	url, err := r.svc.Reports.Publish(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
