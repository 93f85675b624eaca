package v1

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"go-freelance-backend/internal/delivery/http/response"
	"go-freelance-backend/internal/domain"
	"go-freelance-backend/pkg/apperror"
	"go-freelance-backend/pkg/media"
	"go-freelance-backend/pkg/validation"
)

type FreelanceHandler struct {
	freelanceUC domain.FreelanceUsecase
}

func NewFreelanceHandler(protected *gin.RouterGroup, freelanceUC domain.FreelanceUsecase, uploadLimiter gin.HandlerFunc) {
	handler := &FreelanceHandler{freelanceUC: freelanceUC}

	freelances := protected.Group("/freelances")
	{
		freelances.GET("", handler.List)
		freelances.POST("", handler.Create)
		freelances.GET("/me", handler.GetMine)
		freelances.POST("/me", handler.UpsertMine)
		freelances.POST("/me/photo", uploadLimiter, handler.UploadPhoto)
		freelances.POST("/me/cv", uploadLimiter, handler.UploadCV)
	}
}

// List godoc
// @Summary      List freelance profiles
// @Tags         freelances
// @Produce      json
// @Security     SessionAuth
// @Param        page       query  int  false  "Page number (default: 1)"
// @Param        page_size  query  int  false  "Items per page (default: 20, max: 100)"
// @Success      200  {object}  response.Response{data=PageResult}
// @Router       /freelances [get]
func (h *FreelanceHandler) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	freelances, total, err := h.freelanceUC.List(c.Request.Context(), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Freelances", PageResult{Items: freelances, Total: total, Page: page, PageSize: pageSize})
}

// Create godoc
// @Summary      Create own freelance profile
// @Description  Returns 201 on creation; when the profile already exists the fields are merged and 200 is returned
// @Tags         freelances
// @Accept       json,mpfd,x-www-form-urlencoded
// @Produce      json
// @Security     SessionAuth
// @Param        profile  body  domain.FreelancePatch  true  "Profile fields"
// @Success      201  {object}  response.Response{data=domain.Freelance}
// @Success      200  {object}  response.Response{data=domain.Freelance}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /freelances [post]
func (h *FreelanceHandler) Create(c *gin.Context) {
	h.upsert(c, http.StatusCreated)
}

// GetMine godoc
// @Summary      Get own freelance profile
// @Tags         freelances
// @Produce      json
// @Security     SessionAuth
// @Success      200  {object}  response.Response{data=domain.Freelance}
// @Failure      404  {object}  response.Response
// @Router       /freelances/me [get]
func (h *FreelanceHandler) GetMine(c *gin.Context) {
	userID, _ := caller(c)
	f, err := h.freelanceUC.GetMine(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profil freelance", f)
}

// UpsertMine godoc
// @Summary      Create or update own freelance profile
// @Tags         freelances
// @Accept       json,mpfd,x-www-form-urlencoded
// @Produce      json
// @Security     SessionAuth
// @Param        profile  body  domain.FreelancePatch  true  "Profile fields"
// @Success      200  {object}  response.Response{data=domain.Freelance}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /freelances/me [post]
func (h *FreelanceHandler) UpsertMine(c *gin.Context) {
	h.upsert(c, http.StatusOK)
}

func (h *FreelanceHandler) upsert(c *gin.Context, createdStatus int) {
	userID, role := caller(c)

	var patch domain.FreelancePatch
	if !bindFreelancePatch(c, &patch) {
		return
	}

	f, created, err := h.freelanceUC.UpsertMine(c.Request.Context(), userID, role, patch)
	if err != nil {
		c.Error(err)
		return
	}
	if created {
		response.Success(c, createdStatus, "Profil créé", f)
		return
	}
	response.Success(c, http.StatusOK, "Profil mis à jour", f)
}

// freelanceForm carries the profile fields of multipart and urlencoded requests
type freelanceForm struct {
	Nom         *string `form:"nom"`
	Description *string `form:"description"`
	Competence  *string `form:"competence"`
	Experience  *string `form:"experience"`
	Formation   *string `form:"formation"`
	Certificat  *string `form:"certificat"`
	Tarif       *string `form:"tarif"`
}

func (f freelanceForm) patch() (domain.FreelancePatch, error) {
	p := domain.FreelancePatch{
		Nom:         f.Nom,
		Description: f.Description,
		Competence:  f.Competence,
		Experience:  f.Experience,
		Formation:   f.Formation,
		Certificat:  f.Certificat,
	}
	if f.Tarif != nil && *f.Tarif != "" {
		tarif, err := domain.ParseMoney(*f.Tarif)
		if err != nil {
			return p, err
		}
		p.Tarif = &tarif
	}
	return p, nil
}

// bindFreelancePatch accepts JSON as well as form bodies; form values go through the same validation tags
func bindFreelancePatch(c *gin.Context, patch *domain.FreelancePatch) bool {
	switch c.ContentType() {
	case binding.MIMEMultipartPOSTForm, binding.MIMEPOSTForm:
	default:
		return bindOptionalJSON(c, patch)
	}

	var form freelanceForm
	if err := c.ShouldBind(&form); err != nil {
		c.Error(apperror.Validation(validation.FormatValidationErrors(err)))
		return false
	}
	p, err := form.patch()
	if err != nil {
		c.Error(apperror.Validation([]string{"Tarif invalide : montant décimal attendu (ex. 50.00)"}))
		return false
	}
	if err := binding.Validator.ValidateStruct(&p); err != nil {
		c.Error(apperror.Validation(validation.FormatValidationErrors(err)))
		return false
	}
	*patch = p
	return true
}

// UploadPhoto godoc
// @Summary      Upload profile photo
// @Description  The image is downscaled to 800px and stored as JPEG
// @Tags         freelances
// @Accept       multipart/form-data
// @Produce      json
// @Security     SessionAuth
// @Param        photo  formData  file  true  "JPEG, PNG, GIF or WebP image"
// @Success      200  {object}  response.Response{data=domain.Freelance}
// @Failure      400  {object}  response.Response
// @Failure      503  {object}  response.Response
// @Router       /freelances/me/photo [post]
func (h *FreelanceHandler) UploadPhoto(c *gin.Context) {
	userID, role := caller(c)
	data, ok := readUpload(c, "photo", media.MaxImageBytes)
	if !ok {
		return
	}

	f, err := h.freelanceUC.UploadPhoto(c.Request.Context(), userID, role, data)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Photo mise à jour", f)
}

// UploadCV godoc
// @Summary      Upload CV
// @Tags         freelances
// @Accept       multipart/form-data
// @Produce      json
// @Security     SessionAuth
// @Param        cv  formData  file  true  "PDF, 5 MiB max"
// @Success      200  {object}  response.Response{data=domain.Freelance}
// @Failure      400  {object}  response.Response
// @Failure      503  {object}  response.Response
// @Router       /freelances/me/cv [post]
func (h *FreelanceHandler) UploadCV(c *gin.Context) {
	userID, role := caller(c)
	data, ok := readUpload(c, "cv", media.MaxPDFBytes)
	if !ok {
		return
	}

	f, err := h.freelanceUC.UploadCV(c.Request.Context(), userID, role, data)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "CV mis à jour", f)
}

// readUpload reads one multipart file, refusing anything larger than limit
func readUpload(c *gin.Context, field string, limit int64) ([]byte, bool) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		c.Error(apperror.BadRequest("Fichier manquant : " + field))
		return nil, false
	}
	if fileHeader.Size > limit {
		c.Error(apperror.BadRequest("Fichier trop volumineux"))
		return nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.Internal(err))
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil && !errors.Is(err, io.EOF) {
		c.Error(apperror.Internal(err))
		return nil, false
	}
	if int64(len(data)) > limit {
		c.Error(apperror.BadRequest("Fichier trop volumineux"))
		return nil, false
	}
	return data, true
}
