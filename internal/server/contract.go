package server

import (
	"net/http"

	contractdomain "github.com/coverlane/coverlane/internal/contract/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createContractRequest struct {
	StartDate  string           `json:"startDate"`
	EndDate    string           `json:"endDate"`
	CostAmount *decimal.Decimal `json:"costAmount"`
}

type updateContractCostRequest struct {
	CostAmount *decimal.Decimal `json:"costAmount"`
}

func (s *Server) CreateContract(c *gin.Context) {
	clientID, err := parsePathID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.CostAmount == nil {
		AbortWithError(c, newValidationError("costAmount", "invalid_cost_amount", "costAmount is required"))
		return
	}

	startDate, err := parseOptionalDate(req.StartDate)
	if err != nil {
		AbortWithError(c, newValidationError("startDate", "invalid_start_date", "invalid startDate"))
		return
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		AbortWithError(c, newValidationError("endDate", "invalid_end_date", "invalid endDate"))
		return
	}

	resp, err := s.contractSvc.Create(c.Request.Context(), clientID, contractdomain.CreateContractRequest{
		StartDate:  startDate,
		EndDate:    endDate,
		CostAmount: *req.CostAmount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) GetContractByID(c *gin.Context) {
	id, err := parsePathID(c.Param("contractId"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	resp, err := s.contractSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListActiveContracts returns the client's active contracts, optionally
// narrowed to those modified at or after the modifiedAfter query parameter.
func (s *Server) ListActiveContracts(c *gin.Context) {
	clientID, err := parsePathID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	modifiedAfter, err := parseOptionalTime(c.Query("modifiedAfter"))
	if err != nil {
		AbortWithError(c, newValidationError("modifiedAfter", "invalid_modified_after", "invalid modifiedAfter"))
		return
	}

	resp, err := s.contractSvc.ListActive(c.Request.Context(), clientID, modifiedAfter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetTotalCost(c *gin.Context) {
	clientID, err := parsePathID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	resp, err := s.contractSvc.TotalCost(c.Request.Context(), clientID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) UpdateContractCost(c *gin.Context) {
	id, err := parsePathID(c.Param("contractId"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req updateContractCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.CostAmount == nil {
		AbortWithError(c, newValidationError("costAmount", "invalid_cost_amount", "costAmount is required"))
		return
	}

	resp, err := s.contractSvc.UpdateCost(c.Request.Context(), id, contractdomain.UpdateCostRequest{
		CostAmount: *req.CostAmount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeleteContract(c *gin.Context) {
	id, err := parsePathID(c.Param("contractId"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	if err := s.contractSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
