package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-freelance-backend/internal/delivery/http/middleware"
	"go-freelance-backend/internal/delivery/http/response"
	"go-freelance-backend/internal/domain"
	"go-freelance-backend/pkg/apperror"
)

type CandidatureHandler struct {
	candidatureUC domain.CandidatureUsecase
}

func NewCandidatureHandler(protected *gin.RouterGroup, candidatureUC domain.CandidatureUsecase) {
	handler := &CandidatureHandler{candidatureUC: candidatureUC}

	candidatures := protected.Group("/candidatures")
	{
		candidatures.GET("", handler.ListForEntreprise)
		candidatures.GET("/export", handler.Export)
		candidatures.PATCH("/:id", middleware.RequireRole(domain.RoleEntreprise), handler.UpdateStatus)
		candidatures.DELETE("/:id", handler.Withdraw)
	}

	notifications := protected.Group("/notifications")
	{
		notifications.GET("", handler.ListForFreelance)
		notifications.GET("/entreprise", handler.ListForEntreprise)
	}
}

// statusFilter parses ?status=a,b
func statusFilter(c *gin.Context) ([]domain.CandidatureStatus, bool) {
	statuses, err := domain.ParseCandidatureStatuses(c.Query("status"))
	if err != nil {
		c.Error(apperror.BadRequest("Statut inconnu"))
		return nil, false
	}
	return statuses, true
}

// ListForEntreprise godoc
// @Summary      Candidatures received by own entreprise
// @Description  Every candidature on the caller's missions, optionally filtered by status
// @Tags         candidatures
// @Produce      json
// @Security     SessionAuth
// @Param        status  query  string  false  "Comma-separated statuses (en_attente,en_entretien,acceptee,refusee)"
// @Success      200  {object}  response.Response{data=[]domain.CandidatureView}
// @Failure      403  {object}  response.Response
// @Router       /candidatures [get]
// @Router       /notifications/entreprise [get]
func (h *CandidatureHandler) ListForEntreprise(c *gin.Context) {
	userID, role := caller(c)
	statuses, ok := statusFilter(c)
	if !ok {
		return
	}

	views, err := h.candidatureUC.ListForEntreprise(c.Request.Context(), userID, role, statuses)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidatures", views)
}

// ListForFreelance godoc
// @Summary      Own candidatures with their current status
// @Tags         notifications
// @Produce      json
// @Security     SessionAuth
// @Success      200  {object}  response.Response{data=[]domain.CandidatureView}
// @Failure      403  {object}  response.Response
// @Router       /notifications [get]
func (h *CandidatureHandler) ListForFreelance(c *gin.Context) {
	userID, role := caller(c)
	views, err := h.candidatureUC.ListForFreelance(c.Request.Context(), userID, role)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Notifications", views)
}

// UpdateStatus godoc
// @Summary      Move a candidature through its lifecycle
// @Description  en_attente -> en_entretien|refusee, en_entretien -> en_entretien|acceptee|refusee
// @Tags         candidatures
// @Accept       json
// @Produce      json
// @Security     SessionAuth
// @Param        id    path  int                       true  "Candidature ID"
// @Param        body  body  domain.CandidatureUpdate  true  "New status and interview slot"
// @Success      200  {object}  response.Response{data=domain.CandidatureView}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /candidatures/{id} [patch]
func (h *CandidatureHandler) UpdateStatus(c *gin.Context) {
	userID, role := caller(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var update domain.CandidatureUpdate
	if !bindJSON(c, &update) {
		return
	}

	view, err := h.candidatureUC.UpdateStatus(c.Request.Context(), userID, role, id, update)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidature mise à jour", view)
}

// Withdraw godoc
// @Summary      Withdraw own pending candidature
// @Tags         candidatures
// @Security     SessionAuth
// @Param        id   path  int  true  "Candidature ID"
// @Success      204
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /candidatures/{id} [delete]
func (h *CandidatureHandler) Withdraw(c *gin.Context) {
	userID, role := caller(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.candidatureUC.Withdraw(c.Request.Context(), userID, role, id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Export godoc
// @Summary      Export received candidatures
// @Tags         candidatures
// @Produce      application/octet-stream
// @Security     SessionAuth
// @Param        status  query  string  false  "Comma-separated statuses"
// @Success      200  {file}    binary
// @Failure      403  {object}  response.Response
// @Router       /candidatures/export [get]
func (h *CandidatureHandler) Export(c *gin.Context) {
	userID, role := caller(c)
	statuses, ok := statusFilter(c)
	if !ok {
		return
	}

	data, filename, err := h.candidatureUC.Export(c.Request.Context(), userID, role, statuses)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
