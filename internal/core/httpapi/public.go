package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/solatis/formkeeper/internal/core/api"
	"github.com/solatis/formkeeper/internal/core/extract"
	"github.com/solatis/formkeeper/internal/render"
	"github.com/solatis/formkeeper/internal/types"
)

const htmlContentType = "text/html; charset=utf-8"

func (h *Handler) formHTML(c *gin.Context) {
	form, err := h.svc.GetForm(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.failHTML(c, err)
		return
	}
	etag := api.FormETag(form)
	if c.GetHeader("If-None-Match") == etag {
		c.AbortWithStatus(http.StatusNotModified)
		return
	}
	out, err := render.HTML(form, nil, nil)
	if err != nil {
		h.failHTML(c, err)
		return
	}
	c.Header("ETag", etag)
	c.Data(http.StatusOK, htmlContentType, []byte(out))
}

func (h *Handler) formJSON(c *gin.Context) {
	form, err := h.svc.GetForm(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	etag := api.FormETag(form)
	if c.GetHeader("If-None-Match") == etag {
		c.AbortWithStatus(http.StatusNotModified)
		return
	}
	c.Header("ETag", etag)
	respondOK(c, http.StatusOK, render.FormJSON(form))
}

// submitJSON accepts a submission from API clients. Validation failures
// are reported with 422 and both the grouped and flat error maps.
func (h *Handler) submitJSON(c *gin.Context) {
	data, err := extract.FromRequest(c.Request, h.maxBody)
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.svc.Submit(c.Request.Context(), c.Param("slug"), data, h.metadata(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	if !res.Success {
		respondError(c, http.StatusUnprocessableEntity, string(api.CodeValidationFailed), "validation failed", gin.H{
			"steps":  res.Errors,
			"fields": res.Errors.Flatten(),
		})
		return
	}
	respondOK(c, http.StatusOK, res)
}

// submitHTML handles a browser form post: a redirect on success, the
// re-rendered form with inline errors otherwise.
func (h *Handler) submitHTML(c *gin.Context) {
	ctx := c.Request.Context()
	slug := c.Param("slug")

	data, err := extract.FromRequest(c.Request, h.maxBody)
	if err != nil {
		h.failHTML(c, err)
		return
	}
	res, err := h.svc.Submit(ctx, slug, data, h.metadata(c))
	if err != nil {
		h.failHTML(c, err)
		return
	}
	if res.Success {
		target := res.RedirectURL
		if target == "" {
			target = "/api/forms/" + slug + "/success"
		}
		c.Redirect(http.StatusSeeOther, target)
		return
	}

	form, err := h.svc.GetForm(ctx, slug)
	if err != nil {
		h.failHTML(c, err)
		return
	}
	out, err := render.HTML(form, data, res.Errors.Flatten())
	if err != nil {
		h.failHTML(c, err)
		return
	}
	c.Data(http.StatusUnprocessableEntity, htmlContentType, []byte(out))
}

func (h *Handler) successHTML(c *gin.Context) {
	form, err := h.svc.GetForm(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.failHTML(c, err)
		return
	}
	out, err := render.SuccessHTML(form)
	if err != nil {
		h.failHTML(c, err)
		return
	}
	c.Data(http.StatusOK, htmlContentType, []byte(out))
}

func (h *Handler) validateStep(c *gin.Context) {
	data, err := extract.FromRequest(c.Request, h.maxBody)
	if err != nil {
		h.fail(c, err)
		return
	}
	errs, err := h.svc.ValidateStep(c.Request.Context(), c.Param("slug"), c.Param("step"), data)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !errs.IsEmpty() {
		respondError(c, http.StatusUnprocessableEntity, string(api.CodeValidationFailed), "validation failed", gin.H{
			"fields": errs,
		})
		return
	}
	respondOK(c, http.StatusOK, gin.H{"valid": true})
}

func (h *Handler) visibility(c *gin.Context) {
	data, err := extract.FromRequest(c.Request, h.maxBody)
	if err != nil {
		h.fail(c, err)
		return
	}
	vm, err := h.svc.Visibility(c.Request.Context(), c.Param("slug"), data)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, http.StatusOK, vm)
}

func (h *Handler) metadata(c *gin.Context) types.Metadata {
	meta := types.Metadata{
		"ip":         c.ClientIP(),
		"request_id": c.GetString(requestIDKey),
	}
	if ua := c.Request.UserAgent(); ua != "" {
		meta["user_agent"] = ua
	}
	if ref := c.Request.Referer(); ref != "" {
		meta["referer"] = ref
	}
	return meta
}
