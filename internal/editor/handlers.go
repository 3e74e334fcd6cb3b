package editor

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alexanderramin/showcase/internal/build"
	"github.com/alexanderramin/showcase/internal/catalog"
	"github.com/alexanderramin/showcase/internal/domain"
	"github.com/alexanderramin/showcase/internal/fsutil"
	"github.com/alexanderramin/showcase/internal/session"
	"github.com/gin-gonic/gin"
)

type errorBody struct {
	Error string `json:"error"`
}

type saveResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type uploadResponse struct {
	Success bool   `json:"success"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

type buildResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Output  string `json:"output"`
	Error   string `json:"error,omitempty"`
}

func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorBody{Error: msg})
}

// lang reads and checks the :lang parameter, writing a 400 when it is not a
// configured locale.
func (s *Server) lang(c *gin.Context) (string, bool) {
	lang := c.Param("lang")
	if !slices.Contains(s.opts.Locales, lang) {
		respondError(c, http.StatusBadRequest, "Invalid language: "+lang)
		return "", false
	}
	return lang, true
}

func (s *Server) getData(c *gin.Context) {
	lang, ok := s.lang(c)
	if !ok {
		return
	}
	doc, err := s.catalogs.EditorDocument(c.Request.Context(), lang)
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) saveData(c *gin.Context) {
	lang, ok := s.lang(c)
	if !ok {
		return
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	doc, err := catalog.Parse(body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	if errs := catalog.Validate(doc); len(errs) > 0 {
		respondError(c, http.StatusBadRequest, catalog.FormatValidationErrors(errs).Error())
		return
	}

	saved, err := s.catalogs.Save(c.Request.Context(), lang, doc)
	if err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, saveResponse{
		Success: true,
		Message: "Saved to " + filepath.Base(saved),
	})
}

func (s *Server) upload(c *gin.Context) {
	lang, ok := s.lang(c)
	if !ok {
		return
	}
	rel := strings.TrimPrefix(c.Param("path"), "/")
	if rel == "" {
		respondError(c, http.StatusBadRequest, "Invalid upload path")
		return
	}
	dst, err := fsutil.SafeJoin(filepath.Join(s.opts.ResourcesDir, lang), rel)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid upload path")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("Upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		respondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := fsutil.WriteFileAtomic(dst, body); err != nil {
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	public := path.Join("resources", lang, filepath.ToSlash(rel))
	s.log.Info("upload stored", "path", public, "bytes", len(body))
	c.JSON(http.StatusOK, uploadResponse{
		Success: true,
		Path:    public,
		Message: "Uploaded to " + public,
	})
}

func (s *Server) collected(c *gin.Context) {
	rel := strings.TrimPrefix(c.Param("path"), "/")
	if rel == "list" {
		sessions, err := s.sessions.List()
		if err != nil {
			_ = c.Error(err)
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		if sessions == nil {
			sessions = []domain.SessionInfo{}
		}
		c.JSON(http.StatusOK, sessions)
		return
	}

	detail, err := s.sessions.Detail(rel)
	switch {
	case errors.Is(err, fsutil.ErrInvalidPath):
		respondError(c, http.StatusBadRequest, "Invalid session path: "+rel)
	case errors.Is(err, session.ErrSessionNotFound):
		respondError(c, http.StatusNotFound, "Session not found: "+rel)
	case err != nil:
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, err.Error())
	default:
		c.JSON(http.StatusOK, detail)
	}
}

func (s *Server) build(c *gin.Context) {
	result, err := s.builds.Build(c.Request.Context())
	var report *build.Report
	if result != nil {
		report = result.Report
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, buildResponse{
			Success: false,
			Message: "Build failed",
			Output:  buildOutput(report),
			Error:   err.Error(),
		})
		return
	}
	out := buildOutput(report)
	if result.Change != "" {
		out += fmt.Sprintf("artifacts: %s\n", result.Change)
	}
	c.JSON(http.StatusOK, buildResponse{
		Success: true,
		Message: "Build completed",
		Output:  out,
	})
}

// buildOutput renders a build report as the plain text the editor shows in
// its build log panel.
func buildOutput(r *build.Report) string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	for _, l := range r.Locales {
		fmt.Fprintf(&b, "%s: %d cases from %s -> %s\n", l.Locale, l.Cases, filepath.Base(l.Source), l.Output)
		for _, id := range l.Skipped {
			fmt.Fprintf(&b, "  skipped %s (no data and no source_session)\n", id)
		}
	}
	for _, locale := range r.MissingLocales {
		fmt.Fprintf(&b, "%s: no catalog, skipped\n", locale)
	}
	return b.String()
}
