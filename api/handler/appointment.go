package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/medsched/api/transport"
	"github.com/fastygo/medsched/domain"
	"github.com/fastygo/medsched/pkg/httpcontext"
	appointmentUC "github.com/fastygo/medsched/usecase/appointment"
)

// DoctorLookup resolves the doctor a patient books with.
type DoctorLookup interface {
	FindByID(id string) (*domain.User, error)
}

type AppointmentHandler struct {
	baseHandler
	uc      *appointmentUC.UseCase
	doctors DoctorLookup
}

func NewAppointmentHandler(uc *appointmentUC.UseCase, doctors DoctorLookup, adapter *httpcontext.Adapter, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		doctors:     doctors,
	}
}

// @Summary List appointments visible to the caller
// @Tags appointments
// @Router /api/v1/appointments [get]
func (h *AppointmentHandler) List(ctx *fasthttp.RequestCtx) {
	session, ok := h.session(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var (
		list []domain.Appointment
		err  error
	)
	switch session.User.Role {
	case domain.RoleAdmin:
		list, err = h.uc.ListAll(stdCtx)
	case domain.RoleDoctor:
		list, err = h.uc.ListForDoctor(stdCtx, session.User.ID)
	case domain.RolePatient:
		list, err = h.uc.ListForPatient(stdCtx, session.User.ID)
	default:
		err = domain.ErrForbidden
	}
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondList(ctx, list, len(list))
}

// @Summary Book an appointment
// @Tags appointments
// @Router /api/v1/appointments [post]
func (h *AppointmentHandler) Create(ctx *fasthttp.RequestCtx) {
	session, ok := h.session(ctx, domain.RolePatient)
	if !ok {
		return
	}

	var req transport.CreateAppointmentRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	doctor, err := h.doctors.FindByID(req.DoctorID)
	if err != nil || !doctor.IsDoctor() {
		h.respondError(ctx, stdCtx, domain.Invalid("unknown doctor"))
		return
	}

	created, err := h.uc.Create(stdCtx, domain.AppointmentDraft{
		PatientID:   session.User.ID,
		PatientName: session.User.Name,
		DoctorID:    doctor.ID,
		DoctorName:  doctor.Name,
		Specialty:   doctor.Specialty,
		Date:        req.Date,
		Time:        req.Time,
	})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Confirm or cancel a pending appointment
// @Tags appointments
// @Router /api/v1/appointments/{id}/status [put]
func (h *AppointmentHandler) UpdateStatus(ctx *fasthttp.RequestCtx) {
	session, ok := h.session(ctx, domain.RoleAdmin, domain.RoleDoctor)
	if !ok {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	var req transport.StatusRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	status, valid := domain.ParseStatus(req.Status)
	if id == "" || !valid {
		h.respondError(ctx, stdCtx, domain.Invalid("status must be confirmed or cancelled"))
		return
	}

	updated, err := h.uc.Review(stdCtx, id, status, session.User)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}
