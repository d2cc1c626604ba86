package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/wfm/pkg/api"
)

var (
	ErrListWorkorders  = errors.New("failed to list workorders")
	ErrGetWorkorder    = errors.New("failed to get workorder")
	ErrUpdateWorkorder = errors.New("failed to update workorder")
	ErrGetSummary      = errors.New("failed to get workorder summary")
	ErrNoResult        = errors.New("workorder has no result")
)

func (s *Server) listWorkorders(c *gin.Context) {
	wos, err := s.client.ListWorkorders(c.Request.Context())
	if err != nil {
		respondError(c, ErrListWorkorders, err)
		return
	}

	c.JSON(http.StatusOK, api.WorkordersListResponse{
		Workorders: wos,
		Count:      len(wos),
	})
}

func (s *Server) getWorkorder(c *gin.Context) {
	id := api.WorkorderID(c.Param("workorderID"))

	wo, err := s.client.ReadWorkorder(c.Request.Context(), id)
	if err != nil {
		respondError(c, ErrGetWorkorder, err)
		return
	}
	c.JSON(http.StatusOK, wo)
}

func (s *Server) updateWorkorder(c *gin.Context) {
	var wo api.Workorder
	if !bindJSON(c, &wo) {
		return
	}
	wo.ID = api.WorkorderID(c.Param("workorderID"))

	res, err := s.client.UpdateWorkorder(c.Request.Context(), &wo)
	if err != nil {
		respondError(c, ErrUpdateWorkorder, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) getWorkorderSummary(c *gin.Context) {
	id := api.WorkorderID(c.Param("workorderID"))

	res, err := s.client.GetWorkorderStatus(c.Request.Context(), id)
	if err != nil {
		respondError(c, ErrGetSummary, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) getWorkorderResult(c *gin.Context) {
	id := api.WorkorderID(c.Param("workorderID"))

	res, err := s.client.GetResultByWorkorderID(c.Request.Context(), id)
	if err != nil {
		respondError(c, ErrListResults, err)
		return
	}
	if res == nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{
			Error:  fmt.Sprintf("%s: %s", ErrNoResult, id),
			Status: http.StatusNotFound,
		})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) beginWorkorder(c *gin.Context) {
	ctx := c.Request.Context()
	id := api.WorkorderID(c.Param("workorderID"))

	res, err := s.client.CreateNewResult(ctx, id)
	if err != nil {
		respondError(c, ErrCreateResult, err)
		return
	}
	s.publishStatus(ctx, res)
	c.JSON(http.StatusCreated, res)
}
