package insights

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	v1 "github.com/cdrlab/cdr-insights/internal/api/v1"
	httperr "github.com/cdrlab/cdr-insights/internal/core/errors"
	"github.com/gin-gonic/gin"
)

const defaultTopCallers = 5

// RegisterRoutes registers all insights API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	cdr := r.Group("/cdr")
	cdr.GET("/average-cost", s.HandleAverageCost)
	cdr.GET("/max-cost", s.HandleMaxCost)
	cdr.GET("/longest-call", s.HandleLongestCall)
	cdr.GET("/average-calls-per-day", s.HandleAverageCallsPerDay)
	cdr.GET("/total-cost-by-currency", s.HandleTotalCostByCurrency)
	cdr.GET("/top-callers", s.HandleTopCallers)
	cdr.GET("/daily-summary", s.HandleDailySummary)
	cdr.GET("/count", s.HandleCallCountInRange)
	cdr.GET("/total-duration", s.HandleTotalDurationByRecipient)
}

// HandleAverageCost handles GET /cdr/average-cost.
func (s *Service) HandleAverageCost(c *gin.Context) {
	avg, err := s.AverageCost(c.Request.Context())
	if err != nil {
		writeInternalError(c, "Failed to compute average cost", err)
		return
	}
	c.JSON(http.StatusOK, avg)
}

// HandleMaxCost handles GET /cdr/max-cost. 404 when the store is empty.
func (s *Service) HandleMaxCost(c *gin.Context) {
	record, err := s.MaxCostRecord(c.Request.Context())
	if err != nil {
		writeInternalError(c, "Failed to find max cost call", err)
		return
	}
	writeRecordOrNotFound(c, record)
}

// HandleLongestCall handles GET /cdr/longest-call. 404 when the store is empty.
func (s *Service) HandleLongestCall(c *gin.Context) {
	record, err := s.LongestCall(c.Request.Context())
	if err != nil {
		writeInternalError(c, "Failed to find longest call", err)
		return
	}
	writeRecordOrNotFound(c, record)
}

// HandleAverageCallsPerDay handles GET /cdr/average-calls-per-day.
func (s *Service) HandleAverageCallsPerDay(c *gin.Context) {
	avg, err := s.AverageCallsPerDay(c.Request.Context())
	if err != nil {
		writeInternalError(c, "Failed to compute average calls per day", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"averageCallsPerDay": avg})
}

// HandleTotalCostByCurrency handles GET /cdr/total-cost-by-currency.
func (s *Service) HandleTotalCostByCurrency(c *gin.Context) {
	totals, err := s.TotalCostByCurrency(c.Request.Context())
	if err != nil {
		writeInternalError(c, "Failed to compute cost by currency", err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

// HandleTopCallers handles GET /cdr/top-callers?n=5.
func (s *Service) HandleTopCallers(c *gin.Context) {
	n := defaultTopCallers
	if raw := c.Query("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidRequestError,
				Message:   "Query parameter n must be an integer",
				Details:   raw,
			})
			return
		}
		n = parsed
	}

	callers, err := s.TopCallers(c.Request.Context(), n)
	if err != nil {
		writeInternalError(c, "Failed to rank top callers", err)
		return
	}
	c.JSON(http.StatusOK, callers)
}

// HandleDailySummary handles GET /cdr/daily-summary.
func (s *Service) HandleDailySummary(c *gin.Context) {
	summaries, err := s.DailySummary(c.Request.Context())
	if err != nil {
		writeInternalError(c, "Failed to compute daily summary", err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// HandleCallCountInRange handles GET /cdr/count?start=2006-01-02&end=2006-01-02.
func (s *Service) HandleCallCountInRange(c *gin.Context) {
	start, ok := bindDateParam(c, "start")
	if !ok {
		return
	}
	end, ok := bindDateParam(c, "end")
	if !ok {
		return
	}

	if start.After(end) {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRequestError,
			Message:   "Start date must not be after end date",
		})
		return
	}

	count, err := s.CallCountInRange(c.Request.Context(), start, end)
	if err != nil {
		writeInternalError(c, "Failed to count calls in range", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"start": start.Format(v1.DateLayout),
		"end":   end.Format(v1.DateLayout),
		"count": count,
	})
}

// HandleTotalDurationByRecipient handles GET /cdr/total-duration?recipient=X.
func (s *Service) HandleTotalDurationByRecipient(c *gin.Context) {
	recipient := c.Query("recipient")
	if strings.TrimSpace(recipient) == "" {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRequestError,
			Message:   "Recipient is required",
		})
		return
	}

	total, err := s.TotalDurationByRecipient(c.Request.Context(), recipient)
	if err != nil {
		writeInternalError(c, "Failed to sum duration by recipient", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"recipient":     recipient,
		"totalDuration": total,
	})
}

func bindDateParam(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRequestError,
			Message:   "Query parameter " + name + " is required",
		})
		return time.Time{}, false
	}

	parsed, err := time.Parse(v1.DateLayout, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidRequestError,
			Message:   "Query parameter " + name + " must be a date in " + v1.DateLayout + " form",
			Details:   raw,
		})
		return time.Time{}, false
	}
	return parsed, true
}

func writeRecordOrNotFound(c *gin.Context, record *v1.CdrRecord) {
	if record == nil {
		c.JSON(http.StatusNotFound, httperr.ErrorResponse{
			ErrorType: httperr.HttpNotFoundError,
			Message:   "No records in store",
		})
		return
	}
	c.JSON(http.StatusOK, record)
}

func writeInternalError(c *gin.Context, message string, err error) {
	slog.Error(message, "error", err)
	c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpInternalError,
		Message:   message,
		Details:   err.Error(),
	})
}
