package handler

import (
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/medsched/domain"
	"github.com/fastygo/medsched/pkg/httpcontext"
	"github.com/fastygo/medsched/usecase/identity"
)

type DirectoryHandler struct {
	baseHandler
	directory *identity.Directory
}

func NewDirectoryHandler(directory *identity.Directory, adapter *httpcontext.Adapter, logger *zap.Logger) *DirectoryHandler {
	return &DirectoryHandler{
		baseHandler: newBaseHandler(adapter, logger),
		directory:   directory,
	}
}

// @Summary List doctors
// @Tags directory
// @Router /api/v1/doctors [get]
func (h *DirectoryHandler) Doctors(ctx *fasthttp.RequestCtx) {
	if _, ok := h.session(ctx); !ok {
		return
	}
	doctors := h.directory.AllDoctors()
	h.respondList(ctx, doctors, len(doctors))
}

// @Summary List doctors and patients
// @Tags directory
// @Router /api/v1/users [get]
func (h *DirectoryHandler) Users(ctx *fasthttp.RequestCtx) {
	if _, ok := h.session(ctx, domain.RoleAdmin); !ok {
		return
	}
	users := h.directory.AllUsers()
	h.respondList(ctx, users, len(users))
}

// @Summary List registered patients
// @Tags directory
// @Router /api/v1/patients [get]
func (h *DirectoryHandler) Patients(ctx *fasthttp.RequestCtx) {
	if _, ok := h.session(ctx, domain.RoleAdmin); !ok {
		return
	}
	patients := h.directory.Patients()
	h.respondList(ctx, patients, len(patients))
}
