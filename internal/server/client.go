package server

import (
	"net/http"
	"strings"
	"time"

	clientdomain "github.com/coverlane/coverlane/internal/client/domain"
	"github.com/gin-gonic/gin"
)

type createPersonRequest struct {
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	BirthDate string `json:"birthDate"`
}

type createCompanyRequest struct {
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	CompanyIdentifier string `json:"companyIdentifier"`
}

type updateClientRequest struct {
	Email             *string `json:"email"`
	Phone             *string `json:"phone"`
	FirstName         *string `json:"firstName"`
	LastName          *string `json:"lastName"`
	BirthDate         *string `json:"birthDate"`
	CompanyIdentifier *string `json:"companyIdentifier"`
}

func (s *Server) CreatePerson(c *gin.Context) {
	var req createPersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	birthDate, err := parseOptionalDate(req.BirthDate)
	if err != nil {
		AbortWithError(c, newValidationError("birthDate", "invalid_birth_date", "invalid birthDate"))
		return
	}

	resp, err := s.clientSvc.CreatePerson(c.Request.Context(), clientdomain.CreatePersonRequest{
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		BirthDate: birthDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) CreateCompany(c *gin.Context) {
	var req createCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.clientSvc.CreateCompany(c.Request.Context(), clientdomain.CreateCompanyRequest{
		Email:             strings.TrimSpace(req.Email),
		Phone:             strings.TrimSpace(req.Phone),
		CompanyIdentifier: strings.TrimSpace(req.CompanyIdentifier),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) ListClients(c *gin.Context) {
	resp, err := s.clientSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetClientByID(c *gin.Context) {
	id, err := parsePathID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	resp, err := s.clientSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) UpdateClient(c *gin.Context) {
	id, err := parsePathID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req updateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var birthDate *time.Time
	if req.BirthDate != nil {
		birthDate, err = parseOptionalDate(*req.BirthDate)
		if err != nil {
			AbortWithError(c, newValidationError("birthDate", "invalid_birth_date", "invalid birthDate"))
			return
		}
	}

	resp, err := s.clientSvc.Update(c.Request.Context(), id, clientdomain.UpdateClientRequest{
		Email:             trimOptional(req.Email),
		Phone:             trimOptional(req.Phone),
		FirstName:         trimOptional(req.FirstName),
		LastName:          trimOptional(req.LastName),
		BirthDate:         birthDate,
		CompanyIdentifier: trimOptional(req.CompanyIdentifier),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeleteClient(c *gin.Context) {
	id, err := parsePathID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrNotFound)
		return
	}

	if err := s.clientSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}
