package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"

	"github.com/solatis/formkeeper/internal/schema"
	"github.com/solatis/formkeeper/internal/types"
)

func (h *Handler) listForms(c *gin.Context) {
	includeDeleted, err := boolQuery(c, "include_deleted")
	if err != nil {
		h.fail(c, err)
		return
	}
	forms, err := h.svc.ListForms(c.Request.Context(), includeDeleted)
	if err != nil {
		h.fail(c, err)
		return
	}
	if forms == nil {
		forms = []schema.Form{}
	}
	respondOK(c, http.StatusOK, forms)
}

// createForm stores a new definition. With ?import=true an existing form
// with the same slug is updated instead.
func (h *Handler) createForm(c *gin.Context) {
	def, err := h.readDefinition(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	upsert, err := boolQuery(c, "import")
	if err != nil {
		h.fail(c, err)
		return
	}

	if upsert {
		form, created, err := h.svc.ImportForm(c.Request.Context(), def)
		if err != nil {
			h.fail(c, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		respondOK(c, status, form)
		return
	}

	form, err := h.svc.CreateForm(c.Request.Context(), def)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, http.StatusCreated, form)
}

func (h *Handler) getForm(c *gin.Context) {
	form, err := h.svc.FormByID(c.Request.Context(), types.FormID(c.Param("id")))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, http.StatusOK, form)
}

func (h *Handler) updateForm(c *gin.Context) {
	def, err := h.readDefinition(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	form, err := h.svc.UpdateForm(c.Request.Context(), types.FormID(c.Param("id")), def)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, http.StatusOK, form)
}

// deleteForm soft-deletes a form, or removes it with ?hard=true.
func (h *Handler) deleteForm(c *gin.Context) {
	hard, err := boolQuery(c, "hard")
	if err != nil {
		h.fail(c, err)
		return
	}
	id := types.FormID(c.Param("id"))
	if err := h.svc.DeleteForm(c.Request.Context(), id, hard); err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id, "hard": hard})
}

func (h *Handler) restoreForm(c *gin.Context) {
	form, err := h.svc.RestoreForm(c.Request.Context(), types.FormID(c.Param("id")))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, http.StatusOK, form)
}

// exportForm returns the authoring definition, as YAML with ?format=yaml.
func (h *Handler) exportForm(c *gin.Context) {
	def, err := h.svc.ExportForm(c.Request.Context(), types.FormID(c.Param("id")))
	if err != nil {
		h.fail(c, err)
		return
	}
	if c.Query("format") != "yaml" {
		respondOK(c, http.StatusOK, def)
		return
	}
	out, err := yaml.Marshal(def)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/yaml; charset=utf-8", out)
}

func (h *Handler) listSubmissions(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.fail(c, fmt.Errorf("%w: limit must be a non-negative integer", types.ErrInvalidData))
			return
		}
		limit = n
	}
	list, err := h.svc.ListSubmissions(c.Request.Context(), types.FormID(c.Param("id")), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	if list.Submissions == nil {
		list.Submissions = []schema.Submission{}
	}
	respondOK(c, http.StatusOK, list)
}

func (h *Handler) getSubmission(c *gin.Context) {
	sub, err := h.svc.GetSubmission(c.Request.Context(), types.SubmissionID(c.Param("id")))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, http.StatusOK, sub)
}

func (h *Handler) deleteSubmission(c *gin.Context) {
	id := types.SubmissionID(c.Param("id"))
	if err := h.svc.DeleteSubmission(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}

// readDefinition parses a JSON or YAML definition from the request body.
func (h *Handler) readDefinition(c *gin.Context) (*schema.FormDefinition, error) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, types.ErrSubmissionTooLarge
		}
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	return schema.ParseDefinition(body)
}

func boolQuery(c *gin.Context, key string) (bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", types.ErrInvalidData, key)
	}
	return v, nil
}
