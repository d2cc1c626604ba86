package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/wfm/pkg/api"
)

var (
	ErrListResults         = errors.New("failed to list results")
	ErrCreateResult        = errors.New("failed to create result")
	ErrUpdateResult        = errors.New("failed to update result")
	ErrWorkorderIDRequired = errors.New("workorder ID is required")
)

func (s *Server) listResults(c *gin.Context) {
	results, err := s.client.ListResults(c.Request.Context())
	if err != nil {
		respondError(c, ErrListResults, err)
		return
	}

	c.JSON(http.StatusOK, api.ResultsListResponse{
		Results: results,
		Count:   len(results),
	})
}

func (s *Server) createResult(c *gin.Context) {
	ctx := c.Request.Context()
	var res api.Result
	if !bindJSON(c, &res) {
		return
	}
	if res.WorkorderID == "" {
		badRequest(c, ErrWorkorderIDRequired)
		return
	}

	created, err := s.client.CreateResult(ctx, &res)
	if err != nil {
		respondError(c, ErrCreateResult, err)
		return
	}
	s.publishStatus(ctx, created)
	c.JSON(http.StatusCreated, created)
}

func (s *Server) updateResult(c *gin.Context) {
	ctx := c.Request.Context()
	var res api.Result
	if !bindJSON(c, &res) {
		return
	}
	res.ID = api.ResultID(c.Param("resultID"))

	updated, err := s.client.UpdateResult(ctx, &res)
	if err != nil {
		respondError(c, ErrUpdateResult, err)
		return
	}
	s.publishStatus(ctx, updated)
	c.JSON(http.StatusOK, updated)
}
