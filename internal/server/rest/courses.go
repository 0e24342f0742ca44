package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/capacitanet/internal/server/services"
	"github.com/go-chi/chi/v5"
)

const (
	maxUploadMemory = 32 << 20
	// DefaultMaxUploadBytes caps a whole multipart upload request.
	DefaultMaxUploadBytes = 256 << 20
)

type toggleResponse struct {
	StatusResponse
	Active bool `json:"active"`
}

type viewedResponse struct {
	StatusResponse
	Viewed bool `json:"viewed"`
}

func (h *handler) createCourse(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var in services.CreateCourseInput
	if !decodeJSON(w, r, &in) {
		return
	}

	if _, err := h.courses.Create(r.Context(), p, in); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeStatus(w, http.StatusOK, "course registered")
}

func (h *handler) listCourses(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	active := true
	if v := r.URL.Query().Get("active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeStatus(w, http.StatusBadRequest, "active must be true or false")
			return
		}
		active = b
	}

	list, err := h.courses.List(r.Context(), p, active)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handler) attachResource(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeStatus(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		writeStatus(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeStatus(w, http.StatusBadRequest, services.ErrFileRequired.Message)
		return
	}
	defer file.Close()

	order := 0
	if v := r.FormValue("order"); v != "" {
		order, err = strconv.Atoi(v)
		if err != nil {
			writeStatus(w, http.StatusBadRequest, "order must be a number")
			return
		}
	}

	res, err := h.courses.AttachResource(r.Context(), p, chi.URLParam(r, "courseID"), services.AttachResourceInput{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
		Order:       order,
		Kind:        r.FormValue("kind"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) toggleActive(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	active, err := h.courses.ToggleActive(r.Context(), p, chi.URLParam(r, "courseID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	msg := "course deactivated"
	if active {
		msg = "course activated"
	}
	writeJSON(w, http.StatusOK, toggleResponse{StatusResponse{http.StatusOK, msg}, active})
}

func (h *handler) subscribe(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	res, err := h.enrollment.Subscribe(r.Context(), p, chi.URLParam(r, "courseID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeStatus(w, http.StatusOK, res.String())
}

func (h *handler) markViewed(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	found, err := h.enrollment.MarkModuleViewed(r.Context(), p, chi.URLParam(r, "courseID"), chi.URLParam(r, "resourceID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	msg := "not subscribed to this module"
	if found {
		msg = "module marked as viewed"
	}
	writeJSON(w, http.StatusOK, viewedResponse{StatusResponse{http.StatusOK, msg}, found})
}
