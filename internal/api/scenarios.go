package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dividend-projection-lab/internal/domain"
	"dividend-projection-lab/internal/observability"
	"dividend-projection-lab/internal/reporting"
	"dividend-projection-lab/internal/simulation"
	"dividend-projection-lab/internal/verification"
)

// ScenarioHandler serves stored scenarios, runs, traces and reports.
type ScenarioHandler struct {
	Runner   *simulation.Runner
	Verifier verification.Verifier
	Reports  *reporting.Generator
	Metrics  *observability.Metrics
}

// Register mounts the handler routes.
func (h *ScenarioHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1")
	group.POST("/scenarios", h.createScenario)
	group.GET("/scenarios", h.listScenarios)
	group.GET("/scenarios/:id", h.getScenario)
	group.POST("/scenarios/:id/runs", h.runScenario)
	group.GET("/scenarios/:id/runs", h.listRuns)
	group.GET("/scenarios/:id/verify", h.verifyScenario)

	group.GET("/runs/:id", h.getRun)
	group.GET("/runs/:id/records", h.getRecords)
	group.GET("/runs/:id/verify", h.verifyRun)
	group.GET("/runs/:id/report.md", h.reportMarkdown)
	group.GET("/runs/:id/report.csv", h.reportCSV)
}

type createScenarioRequest struct {
	Name   string                  `json:"name"`
	Config domain.SimulationConfig `json:"config"`
}

type runResponse struct {
	Run    *domain.Run              `json:"run"`
	Report *domain.SimulationReport `json:"report,omitempty"`
}

func (h *ScenarioHandler) createScenario(c *gin.Context) {
	var req createScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}

	sc, err := h.Runner.SaveScenario(c.Request.Context(), req.Name, req.Config)
	if err != nil {
		writeError(c, err)
		return
	}
	Created(c, sc)
}

func (h *ScenarioHandler) listScenarios(c *gin.Context) {
	list, err := h.Runner.ListScenarios(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, list, map[string]any{"count": len(list)})
}

func (h *ScenarioHandler) getScenario(c *gin.Context) {
	sc, err := h.Runner.GetScenario(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, sc, nil)
}

func (h *ScenarioHandler) runScenario(c *gin.Context) {
	run, report, err := h.Runner.RunScenario(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	Created(c, runResponse{Run: run, Report: report})
}

func (h *ScenarioHandler) listRuns(c *gin.Context) {
	runs, err := h.Runner.ListRuns(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, runs, map[string]any{"count": len(runs)})
}

func (h *ScenarioHandler) getRun(c *gin.Context) {
	run, err := h.Runner.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, run, nil)
}

func (h *ScenarioHandler) getRecords(c *gin.Context) {
	records, err := h.Runner.GetRecords(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, records, map[string]any{"count": len(records)})
}

func (h *ScenarioHandler) verifyRun(c *gin.Context) {
	if h.Verifier == nil {
		Error(c, http.StatusServiceUnavailable, "verification unavailable", nil)
		return
	}
	result, err := h.Verifier.VerifyRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, result, nil)
}

func (h *ScenarioHandler) verifyScenario(c *gin.Context) {
	if h.Verifier == nil {
		Error(c, http.StatusServiceUnavailable, "verification unavailable", nil)
		return
	}
	report, err := h.Verifier.VerifyScenario(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, report, nil)
}

func (h *ScenarioHandler) reportMarkdown(c *gin.Context) {
	report, ok := h.generate(c)
	if !ok {
		return
	}
	h.Metrics.ReportsGenerated.WithLabelValues("markdown").Inc()
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(reporting.RenderMarkdown(report)))
}

// reportCSV renders yearly rows, or the full trace with ?kind=trace.
func (h *ScenarioHandler) reportCSV(c *gin.Context) {
	kind := c.DefaultQuery("kind", "yearly")
	if kind != "yearly" && kind != "trace" {
		Error(c, http.StatusBadRequest, "kind must be yearly or trace", nil)
		return
	}

	report, ok := h.generate(c)
	if !ok {
		return
	}

	var body string
	if kind == "trace" {
		body = reporting.RenderTraceCSV(report.Trace)
	} else {
		body = reporting.RenderYearlyCSV(report.Yearly)
	}
	h.Metrics.ReportsGenerated.WithLabelValues("csv").Inc()
	c.Header("Content-Disposition", "attachment; filename="+report.RunID+"_"+kind+".csv")
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(body))
}

func (h *ScenarioHandler) generate(c *gin.Context) (*reporting.Report, bool) {
	if h.Reports == nil {
		Error(c, http.StatusServiceUnavailable, "reporting unavailable", nil)
		return nil, false
	}
	report, err := h.Reports.Generate(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return report, true
}
