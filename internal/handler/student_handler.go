package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"campus-records/internal/middleware"
	"campus-records/internal/model"
	"campus-records/internal/service"
	"campus-records/pkg/apierror"
)

type StudentHandler struct {
	service *service.StudentService
}

func NewStudentHandler(service *service.StudentService) *StudentHandler {
	return &StudentHandler{service: service}
}

func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	students, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, students, nil)
}

// Get applies the owner override on top of the route-level policy: a
// student-role principal may read only the record whose owner identity
// matches the authenticated subject.
func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	student, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("UNAUTHORIZED", "authentication required", "", http.StatusUnauthorized))
		return
	}

	if !principal.HasAnyRole(model.RoleAdmin, model.RoleTeacher) && !ownsRecord(principal, student) {
		writeError(w, apierror.New("FORBIDDEN", "cannot view another student's record", "", http.StatusForbidden))
		return
	}

	writeSuccess(w, http.StatusOK, student, nil)
}

func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.StudentCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	student, err := h.service.Create(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, student, nil)
}

func (h *StudentHandler) Update(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.StudentUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("invalid JSON body", ""))
		return
	}

	student, err := h.service.Update(r.Context(), id, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, student, nil)
}

func (h *StudentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true}, nil)
}

// ownsRecord compares the authenticated subject against the student's
// email, the owner-identifying field carried on the record.
func ownsRecord(principal *model.Principal, student model.Student) bool {
	return strings.EqualFold(student.Email, principal.Subject)
}
