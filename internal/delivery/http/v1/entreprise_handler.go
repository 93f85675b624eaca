package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-freelance-backend/internal/delivery/http/response"
	"go-freelance-backend/internal/domain"
)

type EntrepriseHandler struct {
	entrepriseUC domain.EntrepriseUsecase
}

func NewEntrepriseHandler(protected *gin.RouterGroup, entrepriseUC domain.EntrepriseUsecase) {
	handler := &EntrepriseHandler{entrepriseUC: entrepriseUC}

	entreprises := protected.Group("/entreprises")
	{
		entreprises.GET("/me", handler.GetMine)
		entreprises.POST("/me", handler.UpsertMine)
		entreprises.GET("/id", handler.GetMyID)
	}
}

// GetMine godoc
// @Summary      Get own entreprise profile
// @Tags         entreprises
// @Produce      json
// @Security     SessionAuth
// @Success      200  {object}  response.Response{data=domain.Entreprise}
// @Failure      404  {object}  response.Response
// @Router       /entreprises/me [get]
func (h *EntrepriseHandler) GetMine(c *gin.Context) {
	userID, _ := caller(c)
	e, err := h.entrepriseUC.GetMine(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profil entreprise", e)
}

// UpsertMine godoc
// @Summary      Create or update own entreprise profile
// @Description  Creates the profile on first call, then applies partial updates. Entreprise accounts only.
// @Tags         entreprises
// @Accept       json
// @Produce      json
// @Security     SessionAuth
// @Param        profile  body      domain.EntreprisePatch  true  "Profile fields"
// @Success      200  {object}  response.Response{data=domain.Entreprise}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /entreprises/me [post]
func (h *EntrepriseHandler) UpsertMine(c *gin.Context) {
	userID, role := caller(c)

	var patch domain.EntreprisePatch
	if !bindOptionalJSON(c, &patch) {
		return
	}

	e, created, err := h.entrepriseUC.UpsertMine(c.Request.Context(), userID, role, patch)
	if err != nil {
		c.Error(err)
		return
	}

	msg := "Profil mis à jour"
	if created {
		msg = "Profil créé"
	}
	response.Success(c, http.StatusOK, msg, e)
}

// GetMyID godoc
// @Summary      Get own entreprise id
// @Tags         entreprises
// @Produce      json
// @Security     SessionAuth
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /entreprises/id [get]
func (h *EntrepriseHandler) GetMyID(c *gin.Context) {
	userID, _ := caller(c)
	id, err := h.entrepriseUC.GetMyID(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Entreprise", gin.H{"entreprise_id": id})
}
