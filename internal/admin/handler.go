package admin

import (
	"errors"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"cybershield/internal/importer"
	"cybershield/internal/models"
	"cybershield/internal/pkg"
	"cybershield/internal/repository"
	"cybershield/internal/service"
	"cybershield/internal/workbook"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const tokenTTL = 8 * time.Hour

type AdminHandler struct {
	repo       *repository.Repository
	imports    *service.ImportService
	files      importer.Files
	importRoot string
	uploadDir  string
	jwtSecret  string
}

func NewAdminHandler(repo *repository.Repository, imports *service.ImportService, importRoot, uploadDir, jwtSecret string) *AdminHandler {
	return &AdminHandler{
		repo:       repo,
		imports:    imports,
		files:      imports.Importer().Options().Files,
		importRoot: importRoot,
		uploadDir:  uploadDir,
		jwtSecret:  jwtSecret,
	}
}

func (h *AdminHandler) AdminLogin(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	admin, err := h.repo.GetAdmin(c.Request.Context(), req.Username)
	if err != nil || !admin.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	tokenString, err := pkg.IssueAdminToken(h.jwtSecret, admin.Username, tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": tokenString})
}

func (h *AdminHandler) ChangePassword(c *gin.Context) {
	var req struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=8"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	admin, err := h.repo.GetAdmin(c.Request.Context(), c.GetString(pkg.ContextAdmin))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Admin not found"})
		return
	}
	if !admin.CheckPassword(req.OldPassword) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid old password"})
		return
	}

	if err := h.repo.EnsureAdmin(c.Request.Context(), admin.Username, req.NewPassword); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "password_changed"})
}

// RunImport runs the import synchronously and answers with the run and its report.
func (h *AdminHandler) RunImport(c *gin.Context) {
	result, err := h.imports.Run(c.Request.Context(), "api")
	switch {
	case errors.Is(err, service.ErrImportRunning):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		resp := gin.H{"error": err.Error()}
		if result != nil {
			resp["run"] = result.Run
		}
		c.JSON(importStatus(err), resp)
	default:
		c.JSON(http.StatusOK, result)
	}
}

func importStatus(err error) int {
	switch {
	case errors.Is(err, workbook.ErrNotFound),
		errors.Is(err, importer.ErrOrphanActivity),
		errors.Is(err, importer.ErrInvalidMapping):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *AdminHandler) ListImports(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	runs, err := h.imports.Runs(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, runs)
}

func (h *AdminHandler) GetImport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}

	run, err := h.imports.GetRun(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Import run not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}

// UploadWorkbook replaces one workbook of the import root. The form carries "slot"
// (countries, cities, events, activities, organizers, moderators, jury, participants) and "file".
func (h *AdminHandler) UploadWorkbook(c *gin.Context) {
	name, ok := h.files.Slot(c.PostForm("slot"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown workbook slot"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}

	saved, err := pkg.SaveUpload(file, h.uploadDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := checkWorkbook(saved); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	installed, err := pkg.Install(saved, h.importRoot, name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "uploaded", "path": installed})
}

func checkWorkbook(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = workbook.ReadRows(f)
	return err
}

// ImportForm serves the HTML form button: it runs the import and redirects back to "/" with
// the counts, or with ?error= when the run failed.
func (h *AdminHandler) ImportForm(c *gin.Context) {
	result, err := h.imports.Run(c.Request.Context(), "form")
	q := url.Values{}
	if err != nil {
		q.Set("error", err.Error())
	} else {
		q.Set("status", string(models.ImportSucceeded))
		for k, v := range result.Report.Counts() {
			q.Set(k, strconv.Itoa(v))
		}
	}
	c.Redirect(http.StatusSeeOther, "/?"+q.Encode())
}
