// Package httpapi exposes the optimisation engine over HTTP using gin,
// mirroring the teacher's route-group-per-concern layout in main.go.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/oleamind/agroalloc/adjust"
	"github.com/oleamind/agroalloc/agroerr"
	"github.com/oleamind/agroalloc/config"
	"github.com/oleamind/agroalloc/domain"
	"github.com/oleamind/agroalloc/engine"
	"github.com/oleamind/agroalloc/httpapi/middleware"
	"github.com/oleamind/agroalloc/metrics"
	"github.com/oleamind/agroalloc/suggest"
)

// Server bundles everything a request handler needs to reach the
// optimisation engine.
type Server struct {
	Engine  engine.Dependencies
	Metrics *metrics.Metrics
}

// NewRouter builds the gin engine with every route group registered. CORS
// origins come from allowedOrigins so each deployment can restrict its own
// frontend, the way the teacher hardcodes its Vite dev origin in main.go.
func NewRouter(s *Server, allowedOrigins []string) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	protected := r.Group("/optimize")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("/candidates", s.handleCandidates)
		protected.POST("/period", s.handlePeriod)
		protected.POST("/allocate", s.handleAllocate)
		protected.GET("/suggest", s.handleSuggest)

		operators := protected.Group("")
		operators.Use(middleware.RequireRole("operator", "owner"))
		operators.POST("/adjust", s.handleAdjust)
	}

	return r
}

// errorResponse wraps an error into the §7 JSON error envelope and picks
// the matching HTTP status from its agroerr.Kind.
func errorResponse(c *gin.Context, err error) {
	kind := agroerr.KindOf(err)
	status := http.StatusInternalServerError
	code := "internal_error"
	switch kind {
	case agroerr.KindValidation:
		status = http.StatusBadRequest
		code = "validation_error"
	case agroerr.KindInsufficientWeather:
		status = http.StatusUnprocessableEntity
		code = "insufficient_weather"
	case agroerr.KindInternalInvariant:
		status = http.StatusInternalServerError
		code = "internal_invariant"
	}
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": err.Error(),
		},
	})
}

// AllocateRequest drives POST /optimize/allocate.
type AllocateRequest struct {
	OptimizationID string    `json:"optimization_id" binding:"required"`
	HorizonStart   time.Time `json:"horizon_start" binding:"required"`
	HorizonEnd     time.Time `json:"horizon_end" binding:"required"`
	Profile        string    `json:"profile"` // fast | balanced | quality, default balanced
}

func (s *Server) handleAllocate(c *gin.Context) {
	var req AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, agroerrWrap(err))
		return
	}

	profileName := req.Profile
	if profileName == "" {
		profileName = "balanced"
	}
	cfg, err := config.Profile(profileName)
	if err != nil {
		errorResponse(c, agroerrWrap(err))
		return
	}

	result, err := engine.Run(c.Request.Context(), req.OptimizationID, req.HorizonStart, req.HorizonEnd, cfg, s.Engine, s.Metrics, engine.WallClock)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

// CandidatesRequest drives POST /optimize/candidates.
type CandidatesRequest struct {
	HorizonStart time.Time `json:"horizon_start" binding:"required"`
	HorizonEnd   time.Time `json:"horizon_end" binding:"required"`
	Profile      string    `json:"profile"`
}

func (s *Server) handleCandidates(c *gin.Context) {
	var req CandidatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, agroerrWrap(err))
		return
	}

	profileName := req.Profile
	if profileName == "" {
		profileName = "balanced"
	}
	cfg, err := config.Profile(profileName)
	if err != nil {
		errorResponse(c, agroerrWrap(err))
		return
	}

	pool, err := engine.GenerateCandidates(req.HorizonStart, req.HorizonEnd, cfg, s.Engine)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "candidates": pool})
}

// PeriodRequest drives POST /optimize/period.
type PeriodRequest struct {
	FieldID      string    `json:"field_id" binding:"required"`
	CropID       string    `json:"crop_id" binding:"required"`
	Variety      string    `json:"variety"`
	WindowStart  time.Time `json:"window_start" binding:"required"`
	WindowEnd    time.Time `json:"window_end" binding:"required"`
	HorizonEnd   time.Time `json:"horizon_end" binding:"required"`
	AreaUsed     float64   `json:"area_used" binding:"required"`
}

func (s *Server) handlePeriod(c *gin.Context) {
	var req PeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, agroerrWrap(err))
		return
	}

	result, err := engine.EvaluatePeriodFor(req.FieldID, req.CropID, req.Variety,
		periodWindow(req.WindowStart, req.WindowEnd), req.HorizonEnd, req.AreaUsed, s.Engine)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

// SuggestRequest drives GET /optimize/suggest.
type SuggestRequest struct {
	OptimizationID string    `form:"optimization_id" binding:"required"`
	CropID         string    `form:"crop_id" binding:"required"`
	WindowStart    time.Time `form:"window_start" binding:"required"`
	WindowEnd      time.Time `form:"window_end" binding:"required"`
	HorizonEnd     time.Time `form:"horizon_end" binding:"required"`
}

func (s *Server) handleSuggest(c *gin.Context) {
	var req SuggestRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		errorResponse(c, agroerrWrap(err))
		return
	}

	sink, ok := s.Engine.Sink.(resultLoader)
	if !ok {
		errorResponse(c, agroerrWrap(errNoResultLoader))
		return
	}
	result, found, err := sink.Load(req.OptimizationID, s.Engine.Fields, s.Engine.Profiles)
	if err != nil {
		errorResponse(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": gin.H{"code": "not_found", "message": "optimization result not found"}})
		return
	}

	suggestions, err := suggest.Suggest(result, req.CropID, periodWindow(req.WindowStart, req.WindowEnd), req.HorizonEnd, suggest.Dependencies{
		Fields:   s.Engine.Fields,
		Profiles: s.Engine.Profiles,
		Weather:  s.Engine.Weather,
		Rules:    s.Engine.Rules,
		Checker:  violationsChecker(),
	})
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "suggestions": suggestions})
}

// AdjustRequest drives POST /optimize/adjust.
type AdjustRequest struct {
	OptimizationID string                   `json:"optimization_id" binding:"required"`
	HorizonEnd     time.Time                `json:"horizon_end" binding:"required"`
	Instructions   []domain.MoveInstruction `json:"instructions" binding:"required"`
}

func (s *Server) handleAdjust(c *gin.Context) {
	var req AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, agroerrWrap(err))
		return
	}

	sink, ok := s.Engine.Sink.(resultLoader)
	if !ok {
		errorResponse(c, agroerrWrap(errNoResultLoader))
		return
	}
	result, found, err := sink.Load(req.OptimizationID, s.Engine.Fields, s.Engine.Profiles)
	if err != nil {
		errorResponse(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": gin.H{"code": "not_found", "message": "optimization result not found"}})
		return
	}

	outcome, err := adjust.Apply(result, req.Instructions, req.HorizonEnd, adjust.Dependencies{
		Fields:   s.Engine.Fields,
		Profiles: s.Engine.Profiles,
		Weather:  s.Engine.Weather,
		Rules:    s.Engine.Rules,
		Checker:  violationsChecker(),
	})
	if err != nil {
		errorResponse(c, err)
		return
	}

	if s.Engine.Sink != nil {
		if err := s.Engine.Sink.Save(outcome.Result); err != nil {
			errorResponse(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "outcome": outcome})
}
