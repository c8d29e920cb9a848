package ui

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"peajes/app"
	"peajes/internal/errors"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleViews(c *gin.Context) {
	outcomes, err := s.dispatcher.LoadAll(c.Request.Context(), filterFrom(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"views": outcomes})
}

// handleCurrentView returns the caller's last successful outcome of a view.
func (s *Server) handleCurrentView(c *gin.Context) {
	view, err := app.ParseView(c.Param("view"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	client := c.GetString("client_id")
	if client == "" {
		s.writeError(c, errors.InvalidInput(ClientIDHeader+" header required"))
		return
	}
	out, ok := s.dispatcher.Current(client, view)
	if !ok {
		s.writeError(c, errors.NotFound("current "+string(view)+" view"))
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleEDA(c *gin.Context) {
	s.dispatch(c, app.ViewEDA, filterFrom(c))
}

func (s *Server) handleModelsSummary(c *gin.Context) {
	s.dispatch(c, app.ViewModels, withClient(c, app.Filter{}))
}

func (s *Server) handleTrafficSummary(c *gin.Context) {
	s.dispatch(c, app.ViewTraffic, withClient(c, app.Filter{}))
}

func (s *Server) handleStations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"peajes": s.dispatcher.Catalog().StationNames()})
}

func (s *Server) handleStationModel(c *gin.Context) {
	s.dispatch(c, app.ViewStation, withClient(c, app.Filter{Peaje: c.Param("peaje")}))
}

// handleTrafficSample exports the traffic sample rows as CSV.
func (s *Server) handleTrafficSample(c *gin.Context) {
	out, err := s.dispatcher.Dispatch(c.Request.Context(), app.ViewTraffic, withClient(c, app.Filter{}))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if out.Failed() {
		c.JSON(http.StatusOK, out)
		return
	}
	sample := out.Data.(*app.TrafficView).Sample
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(sample.Encode()))
}

func (s *Server) handleChart(c *gin.Context) {
	slot, ok := strings.CutSuffix(c.Param("file"), ".png")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "chart not found"})
		return
	}
	img, err := s.dispatcher.RenderChart(c.Request.Context(), slot, filterFrom(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, img.ContentType, img.Data)
}

// dispatch answers with the view outcome. View failures are not HTTP
// failures: the outcome carries the message and the status is 200.
func (s *Server) dispatch(c *gin.Context, view app.View, filter app.Filter) {
	out, err := s.dispatcher.Dispatch(c.Request.Context(), view, filter)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("[Server] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}

func statusFor(err error) int {
	switch {
	case errors.IsNotFound(err), errors.IsEmptyDataset(err):
		return http.StatusNotFound
	case errors.HasCode(err, errors.CodeInvalidInput):
		return http.StatusBadRequest
	case errors.IsStale(err):
		return http.StatusConflict
	case errors.IsRetrieval(err):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func filterFrom(c *gin.Context) app.Filter {
	return withClient(c, app.Filter{Year: c.Query("year"), Peaje: c.Query("peaje")})
}

func withClient(c *gin.Context, f app.Filter) app.Filter {
	f.Client = c.GetString("client_id")
	return f
}
