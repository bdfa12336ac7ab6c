package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/adaptutor/internal/tutor"
)

type userRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Name   string `json:"name"`
	Email  string `json:"email" binding:"omitempty,email"`
}

type practiceRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Concept string `json:"concept" binding:"required"`
	N       int    `json:"n" binding:"omitempty,min=0,max=10"`
}

type submitRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	Concept    string `json:"concept"`
	QID        string `json:"qid" binding:"required"`
	Answer     string `json:"answer"`
	SourceCode string `json:"source_code"`
	LanguageID int    `json:"language_id" binding:"omitempty,min=1"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.cfg.Version})
}

func (s *Server) upsertUser(c *gin.Context) {
	var req userRequest
	if !bind(c, &req) {
		return
	}
	l, err := s.svc.UpsertLearner(c.Request.Context(), req.UserID, req.Name, req.Email)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (s *Server) getUser(c *gin.Context) {
	l, err := s.svc.GetLearner(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (s *Server) concepts(c *gin.Context) {
	concepts, err := s.svc.Concepts(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if concepts == nil {
		concepts = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"concepts": concepts})
}

func (s *Server) practice(c *gin.Context) {
	var req practiceRequest
	if !bind(c, &req) {
		return
	}
	sel, err := s.svc.SelectQuestions(c.Request.Context(), req.UserID, req.Concept, req.N)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sel)
}

func (s *Server) submitAnswer(c *gin.Context) {
	var req submitRequest
	if !bind(c, &req) {
		return
	}
	res, err := s.svc.EvaluateAnswer(c.Request.Context(), tutor.EvaluateRequest{
		UserID:     req.UserID,
		Concept:    req.Concept,
		QuestionID: req.QID,
		Answer:     req.Answer,
		SourceCode: req.SourceCode,
		LanguageID: req.LanguageID,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) mastery(c *gin.Context) {
	rec, err := s.svc.GetMastery(c.Request.Context(), c.Param("user"), c.Param("concept"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// bind decodes the JSON body and answers 400 on failure.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "invalid request: " + err.Error()})
		return false
	}
	return true
}

// fail maps a service error to a status code.
func (s *Server) fail(c *gin.Context, err error) {
	var verr *tutor.ValidationError
	var nf *tutor.NotFoundError
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: verr.Error(), Field: verr.Field})
	case errors.As(err, &nf):
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Error: nf.Error()})
	default:
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
