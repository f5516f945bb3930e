package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"dividend-projection-lab/internal/calculator"
	"dividend-projection-lab/internal/domain"
	"dividend-projection-lab/internal/observability"
	"dividend-projection-lab/internal/simulation"
)

// MaxCompareConfigs bounds a single comparison request.
const MaxCompareConfigs = 16

// ProjectionHandler serves one-off projections, presets and calculators.
type ProjectionHandler struct {
	Runner     *simulation.Runner
	Calculator *calculator.Calculator
	Metrics    *observability.Metrics
}

// Register mounts the handler routes.
func (h *ProjectionHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1")
	group.POST("/simulate", h.simulate)
	group.POST("/compare", h.compare)
	group.GET("/presets", h.listPresets)
	group.GET("/presets/:name", h.getPreset)

	calc := group.Group("/calculators")
	calc.POST("/drip", h.drip)
	calc.POST("/dividend-growth", h.dividendGrowth)
	calc.POST("/yield-on-cost", h.yieldOnCost)
	calc.POST("/retirement-income", h.retirementIncome)
}

type compareRequest struct {
	Configs []domain.SimulationConfig `json:"configs"`
	Presets []string                  `json:"presets"`
}

func (h *ProjectionHandler) simulate(c *gin.Context) {
	var cfg domain.SimulationConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}

	report, err := h.Runner.Simulate(simulation.SourceAPI, cfg, nil)
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, report, map[string]any{"periods": len(report.Trace)})
}

func (h *ProjectionHandler) compare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}

	configs := append([]domain.SimulationConfig(nil), req.Configs...)
	for _, name := range req.Presets {
		p, err := calculator.Preset(name)
		if err != nil {
			writeError(c, err)
			return
		}
		configs = append(configs, p.Config)
	}
	if len(configs) > MaxCompareConfigs {
		Error(c, http.StatusBadRequest, fmt.Sprintf("at most %d configs per comparison", MaxCompareConfigs), nil)
		return
	}

	reports, err := h.Calculator.Compare(c.Request.Context(), configs)
	if err != nil {
		writeError(c, err)
		return
	}
	h.Metrics.ComparisonsTotal.Inc()
	Ok(c, reports, map[string]any{"count": len(reports)})
}

func (h *ProjectionHandler) listPresets(c *gin.Context) {
	presets := calculator.Presets()
	Ok(c, presets, map[string]any{"count": len(presets)})
}

func (h *ProjectionHandler) getPreset(c *gin.Context) {
	p, err := calculator.Preset(c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, p, nil)
}

func (h *ProjectionHandler) drip(c *gin.Context) {
	var in calculator.DRIPInput
	if err := c.ShouldBindJSON(&in); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}
	report, err := h.Calculator.DRIP(in)
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, report, nil)
}

func (h *ProjectionHandler) dividendGrowth(c *gin.Context) {
	var in calculator.DividendGrowthInput
	if err := c.ShouldBindJSON(&in); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}
	result, err := h.Calculator.DividendGrowth(in)
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, result, nil)
}

func (h *ProjectionHandler) yieldOnCost(c *gin.Context) {
	var in calculator.YieldOnCostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}
	result, err := h.Calculator.YieldOnCost(in)
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, result, nil)
}

func (h *ProjectionHandler) retirementIncome(c *gin.Context) {
	var in calculator.RetirementIncomeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body: "+err.Error(), nil)
		return
	}
	result, err := h.Calculator.RetirementIncome(in)
	if err != nil {
		writeError(c, err)
		return
	}
	Ok(c, result, nil)
}
