package query

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	httperr "github.com/tally-lab/island-tally/internal/core/errors"
)

// RegisterRoutes registers all query API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/snapshot", s.HandleSnapshot)
	r.GET("/v1/summary", s.HandleIslandSummary)
	r.GET("/v1/candidates", s.HandleIslandCandidates)
	r.GET("/v1/districts", s.HandleDistricts)
	r.GET("/v1/districts/:code", s.HandleDistrict)
	r.GET("/v1/districts/:code/summary", s.HandleDistrictSummary)
	r.GET("/v1/districts/:code/candidates", s.HandleDistrictCandidates)
}

// HandleSnapshot handles GET /v1/snapshot
func (s *Service) HandleSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, s.Snapshot())
}

// HandleDistricts handles GET /v1/districts
func (s *Service) HandleDistricts(c *gin.Context) {
	c.JSON(http.StatusOK, s.Districts())
}

// HandleDistrict handles GET /v1/districts/:code
func (s *Service) HandleDistrict(c *gin.Context) {
	rec, ok := s.District(c.Param("code"))
	if !ok {
		writeNotFound(c)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// HandleDistrictSummary handles GET /v1/districts/:code/summary
func (s *Service) HandleDistrictSummary(c *gin.Context) {
	summary, ok := s.DistrictSummary(c.Param("code"))
	if !ok {
		writeNotFound(c)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// HandleDistrictCandidates handles GET /v1/districts/:code/candidates?limit=n
func (s *Service) HandleDistrictCandidates(c *gin.Context) {
	n, perr := parseLimit(c)
	if perr != nil {
		c.JSON(http.StatusBadRequest, *perr)
		return
	}
	ranked, ok := s.TopCandidates(c.Param("code"), n)
	if !ok {
		writeNotFound(c)
		return
	}
	c.JSON(http.StatusOK, ranked)
}

// HandleIslandSummary handles GET /v1/summary
func (s *Service) HandleIslandSummary(c *gin.Context) {
	c.JSON(http.StatusOK, s.IslandSummary())
}

// HandleIslandCandidates handles GET /v1/candidates?limit=n
func (s *Service) HandleIslandCandidates(c *gin.Context) {
	n, perr := parseLimit(c)
	if perr != nil {
		c.JSON(http.StatusBadRequest, *perr)
		return
	}
	c.JSON(http.StatusOK, s.IslandTopCandidates(n))
}

// parseLimit reads the optional limit query parameter. 0 means "use the
// configured default".
func parseLimit(c *gin.Context) (int, *httperr.ErrorResponse) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, &httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "limit must be a positive integer",
		}
	}
	return n, nil
}

func writeNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, httperr.ErrorResponse{
		ErrorType: httperr.HttpDistrictNotFoundError,
		Message:   "no results recorded for district",
	})
}
