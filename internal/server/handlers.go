package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"apexrun/internal/analysis"
	"apexrun/internal/export"
	"apexrun/internal/service"
	"apexrun/internal/session"
	"apexrun/internal/store"
)

// MaxAnalyzeBody caps the size of a POST /analyze body
const MaxAnalyzeBody = 64 << 20

// SessionHandler serves the stored session list
type SessionHandler struct {
	query *service.QueryService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(q *service.QueryService) *SessionHandler {
	return &SessionHandler{query: q}
}

// List handles GET /api/v1/sessions
func (h *SessionHandler) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultPageSize)))
	if err != nil || limit <= 0 {
		BadRequest(c, "Invalid limit parameter")
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		BadRequest(c, "Invalid offset parameter")
		return
	}

	page, err := h.query.GetSessionsList(c.Request.Context(), limit, offset)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, page)
}

// Get handles GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	detail, err := h.query.GetSessionDetail(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrSessionNotFound) {
		NotFound(c, "Session not found")
		return
	}
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, detail)
}

// ReportHandler serves views of the analyzed stored history. Every request
// analyzes a fresh snapshot of the store.
type ReportHandler struct {
	query *service.QueryService
}

// NewReportHandler creates a new report handler
func NewReportHandler(q *service.QueryService) *ReportHandler {
	return &ReportHandler{query: q}
}

func (h *ReportHandler) report(c *gin.Context) (*analysis.Report, bool) {
	report, err := h.query.Report(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return nil, false
	}
	return report, true
}

// Report handles GET /api/v1/report
func (h *ReportHandler) Report(c *gin.Context) {
	if report, ok := h.report(c); ok {
		Success(c, report)
	}
}

// Windows handles GET /api/v1/windows, optionally filtered by ?kind=short|medium|long
func (h *ReportHandler) Windows(c *gin.Context) {
	kind := analysis.WindowKind(c.Query("kind"))
	if kind != "" && kind != analysis.ShortTerm && kind != analysis.MediumTerm && kind != analysis.LongTerm {
		BadRequest(c, "Invalid kind parameter")
		return
	}
	report, ok := h.report(c)
	if !ok {
		return
	}
	if kind != "" {
		Success(c, report.Windows.Get(kind))
		return
	}
	Success(c, report.Windows)
}

// Insights handles GET /api/v1/insights, optionally filtered by ?horizon=
func (h *ReportHandler) Insights(c *gin.Context) {
	horizon := analysis.Horizon(c.Query("horizon"))
	switch horizon {
	case "", analysis.HorizonShort, analysis.HorizonMedium, analysis.HorizonLong, analysis.HorizonAnalysis:
	default:
		BadRequest(c, "Invalid horizon parameter")
		return
	}
	report, ok := h.report(c)
	if !ok {
		return
	}
	insights := report.Insights
	if horizon != "" {
		insights = analysis.InsightsFor(insights, horizon)
	}
	if insights == nil {
		insights = []analysis.Insight{}
	}
	Success(c, gin.H{
		"insights": insights,
		"count":    len(insights),
	})
}

// Predictions handles GET /api/v1/predictions
func (h *ReportHandler) Predictions(c *gin.Context) {
	if report, ok := h.report(c); ok {
		Success(c, report.Predictions)
	}
}

// Records handles GET /api/v1/records
func (h *ReportHandler) Records(c *gin.Context) {
	if report, ok := h.report(c); ok {
		Success(c, gin.H{
			"records": report.Records,
			"count":   len(report.Records),
		})
	}
}

// Comparisons handles GET /api/v1/comparisons
func (h *ReportHandler) Comparisons(c *gin.Context) {
	comps, err := h.query.GetComparisons(c.Request.Context())
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, comps)
}

// Context handles GET /api/v1/context and returns plain text
func (h *ReportHandler) Context(c *gin.Context) {
	if report, ok := h.report(c); ok {
		c.String(http.StatusOK, export.BuildContext(report))
	}
}

// AnalyzeRequest is a history to analyze without storing it
type AnalyzeRequest struct {
	Athlete  *session.Athlete `json:"athlete"`
	Now      *time.Time       `json:"now"`
	Sessions []session.Record `json:"sessions"`
}

// AnalyzeHandler runs the engine over a posted history
type AnalyzeHandler struct {
	athlete session.Athlete
}

// NewAnalyzeHandler creates an analyze handler. athlete is used when the
// request does not carry one.
func NewAnalyzeHandler(athlete session.Athlete) *AnalyzeHandler {
	return &AnalyzeHandler{athlete: athlete}
}

// Analyze handles POST /api/v1/analyze. Invalid sessions are listed in the
// report's rejected field; the rest are analyzed.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxAnalyzeBody)

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	athlete := h.athlete
	if req.Athlete != nil {
		athlete = *req.Athlete
	}
	var now time.Time
	if req.Now != nil {
		now = *req.Now
	}

	report := analysis.Analyze(req.Sessions, athlete, now)
	Success(c, report)
}
