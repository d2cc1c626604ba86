package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/wfm/pkg/api"
)

var (
	ErrListWorkflows  = errors.New("failed to list workflows")
	ErrGetWorkflow    = errors.New("failed to get workflow")
	ErrCreateWorkflow = errors.New("failed to create workflow")
	ErrUpdateWorkflow = errors.New("failed to update workflow")
	ErrRemoveWorkflow = errors.New("failed to remove workflow")
)

func (s *Server) listWorkflows(c *gin.Context) {
	flows, err := s.client.ListWorkflows(c.Request.Context())
	if err != nil {
		respondError(c, ErrListWorkflows, err)
		return
	}

	c.JSON(http.StatusOK, api.WorkflowsListResponse{
		Workflows: flows,
		Count:     len(flows),
	})
}

func (s *Server) createWorkflow(c *gin.Context) {
	var wf api.Workflow
	if !bindJSON(c, &wf) {
		return
	}
	if err := wf.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	res, err := s.client.CreateWorkflow(c.Request.Context(), &wf)
	if err != nil {
		respondError(c, ErrCreateWorkflow, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (s *Server) getWorkflow(c *gin.Context) {
	id := api.WorkflowID(c.Param("workflowID"))

	wf, err := s.client.ReadWorkflow(c.Request.Context(), id)
	if err != nil {
		respondError(c, ErrGetWorkflow, err)
		return
	}
	c.JSON(http.StatusOK, wf)
}

func (s *Server) updateWorkflow(c *gin.Context) {
	var wf api.Workflow
	if !bindJSON(c, &wf) {
		return
	}
	wf.ID = api.WorkflowID(c.Param("workflowID"))
	if err := wf.Validate(); err != nil {
		badRequest(c, err)
		return
	}

	res, err := s.client.UpdateWorkflow(c.Request.Context(), &wf)
	if err != nil {
		respondError(c, ErrUpdateWorkflow, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) removeWorkflow(c *gin.Context) {
	id := api.WorkflowID(c.Param("workflowID"))

	wf, err := s.client.RemoveWorkflow(c.Request.Context(), id)
	if err != nil {
		respondError(c, ErrRemoveWorkflow, err)
		return
	}
	c.JSON(http.StatusOK, wf)
}
