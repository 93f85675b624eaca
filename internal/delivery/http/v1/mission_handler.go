package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-freelance-backend/internal/delivery/http/middleware"
	"go-freelance-backend/internal/delivery/http/response"
	"go-freelance-backend/internal/domain"
)

type MissionHandler struct {
	missionUC     domain.MissionUsecase
	candidatureUC domain.CandidatureUsecase
}

func NewMissionHandler(protected *gin.RouterGroup, missionUC domain.MissionUsecase, candidatureUC domain.CandidatureUsecase) {
	handler := &MissionHandler{missionUC: missionUC, candidatureUC: candidatureUC}
	entrepriseOnly := middleware.RequireRole(domain.RoleEntreprise)

	missions := protected.Group("/missions")
	{
		missions.GET("", handler.List)
		missions.GET("/me", handler.ListMine)
		missions.POST("/me", handler.Create)
		missions.GET("/:id", handler.Get)
		missions.PATCH("/:id", entrepriseOnly, handler.Update)
		missions.DELETE("/:id", entrepriseOnly, handler.Delete)
		missions.POST("/:id/candidatures", handler.Apply)
	}
}

// MissionRequest is the body of a mission creation
type MissionRequest struct {
	Titre            string       `json:"titre" binding:"required,min=3,max=255,no_emoji"`
	Description      string       `json:"description" binding:"max=10000"`
	CompetenceRequis string       `json:"competence_requis" binding:"max=2000"`
	Budget           domain.Money `json:"budget" binding:"gte=0"`
}

// ApplyRequest is the optional body of an application
type ApplyRequest struct {
	LettreMotivation *string `json:"lettre_motivation" binding:"omitempty,max=5000"`
}

// List godoc
// @Summary      Browse missions
// @Tags         missions
// @Produce      json
// @Security     SessionAuth
// @Param        page       query  int  false  "Page number (default: 1)"
// @Param        page_size  query  int  false  "Items per page (default: 20, max: 100)"
// @Success      200  {object}  response.Response{data=PageResult}
// @Router       /missions [get]
func (h *MissionHandler) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	missions, total, err := h.missionUC.List(c.Request.Context(), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Missions", PageResult{Items: missions, Total: total, Page: page, PageSize: pageSize})
}

// ListMine godoc
// @Summary      List own entreprise missions
// @Tags         missions
// @Produce      json
// @Security     SessionAuth
// @Success      200  {object}  response.Response{data=[]domain.Mission}
// @Failure      403  {object}  response.Response
// @Router       /missions/me [get]
func (h *MissionHandler) ListMine(c *gin.Context) {
	userID, role := caller(c)
	missions, err := h.missionUC.ListMine(c.Request.Context(), userID, role)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Mes missions", missions)
}

// Create godoc
// @Summary      Publish a mission
// @Description  The mission is attached to the caller's entreprise
// @Tags         missions
// @Accept       json
// @Produce      json
// @Security     SessionAuth
// @Param        mission  body  MissionRequest  true  "Mission"
// @Success      201  {object}  response.Response{data=domain.Mission}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /missions/me [post]
func (h *MissionHandler) Create(c *gin.Context) {
	userID, role := caller(c)

	var req MissionRequest
	if !bindJSON(c, &req) {
		return
	}

	mission := &domain.Mission{
		Titre:            req.Titre,
		Description:      req.Description,
		CompetenceRequis: req.CompetenceRequis,
		Budget:           req.Budget,
	}
	if err := h.missionUC.Create(c.Request.Context(), userID, role, mission); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Mission créée", mission)
}

// Get godoc
// @Summary      Get a mission
// @Tags         missions
// @Produce      json
// @Security     SessionAuth
// @Param        id   path  int  true  "Mission ID"
// @Success      200  {object}  response.Response{data=domain.Mission}
// @Failure      404  {object}  response.Response
// @Router       /missions/{id} [get]
func (h *MissionHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	m, err := h.missionUC.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Mission", m)
}

// Update godoc
// @Summary      Update a mission
// @Description  Partial update, restricted to the owning entreprise
// @Tags         missions
// @Accept       json
// @Produce      json
// @Security     SessionAuth
// @Param        id       path  int                  true  "Mission ID"
// @Param        mission  body  domain.MissionPatch  true  "Fields to change"
// @Success      200  {object}  response.Response{data=domain.Mission}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /missions/{id} [patch]
func (h *MissionHandler) Update(c *gin.Context) {
	userID, role := caller(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var patch domain.MissionPatch
	if !bindOptionalJSON(c, &patch) {
		return
	}

	m, err := h.missionUC.Update(c.Request.Context(), userID, role, id, patch)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Mission mise à jour", m)
}

// Delete godoc
// @Summary      Delete a mission
// @Tags         missions
// @Security     SessionAuth
// @Param        id   path  int  true  "Mission ID"
// @Success      204
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /missions/{id} [delete]
func (h *MissionHandler) Delete(c *gin.Context) {
	userID, role := caller(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.missionUC.Delete(c.Request.Context(), userID, role, id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Apply godoc
// @Summary      Apply to a mission
// @Tags         candidatures
// @Accept       json
// @Produce      json
// @Security     SessionAuth
// @Param        id    path  int           true   "Mission ID"
// @Param        body  body  ApplyRequest  false  "Cover letter"
// @Success      201  {object}  response.Response{data=domain.Candidature}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /missions/{id}/candidatures [post]
func (h *MissionHandler) Apply(c *gin.Context) {
	userID, role := caller(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req ApplyRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	cand, err := h.candidatureUC.Apply(c.Request.Context(), userID, role, id, req.LettreMotivation)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Candidature envoyée", cand)
}
