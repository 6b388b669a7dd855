package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/assinahub/assinahub/internal/http/response"
	"github.com/assinahub/assinahub/internal/service"

	"github.com/gin-gonic/gin"
)

// GetDashboardOverview serves the backoffice overview figures.
func (h *Handler) GetDashboardOverview(c *gin.Context) {
	input, err := parseDashboardQuery(c)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	data, err := h.DashboardService.GetOverview(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrDashboardRangeInvalid) {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.dashboard_fetch_failed", err)
		return
	}
	response.Success(c, data)
}

// GetDashboardTrends serves the per-day revenue series and plan ranking.
func (h *Handler) GetDashboardTrends(c *gin.Context) {
	input, err := parseDashboardQuery(c)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	data, err := h.DashboardService.GetTrends(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrDashboardRangeInvalid) {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.dashboard_fetch_failed", err)
		return
	}
	response.Success(c, data)
}

func parseDashboardQuery(c *gin.Context) (service.DashboardQueryInput, error) {
	from, err := parseTimeNullable(strings.TrimSpace(c.Query("from")))
	if err != nil {
		return service.DashboardQueryInput{}, err
	}
	to, err := parseTimeNullable(strings.TrimSpace(c.Query("to")))
	if err != nil {
		return service.DashboardQueryInput{}, err
	}

	forceRefresh := false
	if raw := strings.TrimSpace(c.Query("force_refresh")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return service.DashboardQueryInput{}, err
		}
		forceRefresh = parsed
	}

	return service.DashboardQueryInput{
		Range:        strings.TrimSpace(c.DefaultQuery("range", "7d")),
		From:         from,
		To:           to,
		Timezone:     strings.TrimSpace(c.Query("tz")),
		ForceRefresh: forceRefresh,
	}, nil
}

func parseTimeNullable(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
