// Package server exposes the invoice engine over HTTP for the desktop UI.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Kopoklesz/EmployeeManager/internal/backend"
	ierr "github.com/Kopoklesz/EmployeeManager/internal/errors"
	"github.com/Kopoklesz/EmployeeManager/internal/logger"
	"github.com/Kopoklesz/EmployeeManager/internal/model"
	"github.com/Kopoklesz/EmployeeManager/internal/service"
)

// Config holds server configuration
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Server represents the HTTP API server
type Server struct {
	config   *Config
	router   *gin.Engine
	invoices *service.InvoiceService
	selector *backend.Selector
	active   string
	log      *logger.Logger
}

// NewServer creates a new API server over the invoice service.
func NewServer(config *Config, invoices *service.InvoiceService, selector *backend.Selector, activeBackend string, log *logger.Logger) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if log == nil {
		log = logger.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	s := &Server{
		config:   config,
		router:   router,
		invoices: invoices,
		selector: selector,
		active:   activeBackend,
		log:      log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/invoices", s.handleList)
		v1.POST("/invoices", s.handleCreate)
		v1.GET("/invoices/:id", s.handleGet)
		v1.PUT("/invoices/:id", s.handleUpdate)
		v1.DELETE("/invoices/:id", s.handleDelete)

		// Lifecycle
		v1.POST("/invoices/:id/issue", s.handleIssue)
		v1.POST("/invoices/:id/resend", s.handleResend)
		v1.POST("/invoices/:id/pay", s.handlePay)
		v1.POST("/invoices/:id/cancel", s.handleCancel)

		// Documents
		v1.GET("/invoices/:id/xml", s.handleExportXML)
		v1.GET("/invoices/:id/pdf", s.handleRenderPDF)

		// Backends
		v1.GET("/backends", s.handleBackends)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) error(c *gin.Context, err error) {
	c.JSON(ierr.HTTPStatusFromErr(err), ErrorResponse{Error: err.Error()})
}

func invoiceResponse(inv *model.Invoice) InvoiceResponse {
	return InvoiceResponse{Invoice: inv, DisplayStatus: inv.DisplayStatus(time.Now())}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleList(c *gin.Context) {
	invoices, err := s.invoices.List(c.Request.Context())
	if err != nil {
		s.error(c, err)
		return
	}

	out := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, invoiceResponse(inv))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleCreate(c *gin.Context) {
	var in service.DraftInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	inv, err := s.invoices.CreateDraft(c.Request.Context(), in)
	if err != nil {
		s.error(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoiceResponse(inv))
}

func (s *Server) handleGet(c *gin.Context) {
	inv, err := s.invoices.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.error(c, err)
		return
	}
	c.JSON(http.StatusOK, invoiceResponse(inv))
}

func (s *Server) handleUpdate(c *gin.Context) {
	var in service.DraftInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	inv, err := s.invoices.UpdateDraft(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		s.error(c, err)
		return
	}
	c.JSON(http.StatusOK, invoiceResponse(inv))
}

func (s *Server) handleDelete(c *gin.Context) {
	if err := s.invoices.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleIssue(c *gin.Context) {
	inv, res, err := s.invoices.Issue(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.error(c, err)
		return
	}
	c.JSON(http.StatusOK, issueResponse(inv, res))
}

func (s *Server) handleResend(c *gin.Context) {
	inv, res, err := s.invoices.Resend(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.error(c, err)
		return
	}
	c.JSON(http.StatusOK, issueResponse(inv, res))
}

func issueResponse(inv *model.Invoice, res *backend.Result) IssueResponse {
	out := IssueResponse{Invoice: invoiceResponse(inv)}
	if res != nil {
		out.ExternalID = res.ExternalID
		out.DocumentURL = res.DocumentURL
		out.Message = res.Message
	}
	return out
}

func (s *Server) handlePay(c *gin.Context) {
	var req PayRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
			return
		}
	}

	inv, err := s.invoices.MarkPaid(c.Request.Context(), c.Param("id"), req.PaidAt)
	if err != nil {
		s.error(c, err)
		return
	}
	c.JSON(http.StatusOK, invoiceResponse(inv))
}

func (s *Server) handleCancel(c *gin.Context) {
	var req CancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
			return
		}
	}

	inv, err := s.invoices.Cancel(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		s.error(c, err)
		return
	}
	c.JSON(http.StatusOK, invoiceResponse(inv))
}

func (s *Server) handleExportXML(c *gin.Context) {
	data, err := s.invoices.ExportXML(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.error(c, err)
		return
	}
	c.Data(http.StatusOK, "application/xml", data)
}

func (s *Server) handleRenderPDF(c *gin.Context) {
	data, err := s.invoices.RenderPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.error(c, err)
		return
	}
	c.Data(http.StatusOK, "application/pdf", data)
}

func (s *Server) handleBackends(c *gin.Context) {
	all := s.selector.All()
	out := make([]BackendResponse, 0, len(all))
	activeKind := s.selector.Select(s.active).Kind()
	for _, b := range all {
		out = append(out, BackendResponse{
			Kind:      b.Kind().String(),
			Available: b.IsAvailable(),
			Active:    b.Kind() == activeKind,
		})
	}
	c.JSON(http.StatusOK, out)
}
