package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/libradesk/library-backend/internal/errs"
	"github.com/libradesk/library-backend/internal/model"
	"github.com/libradesk/library-backend/internal/service"
	"github.com/libradesk/library-backend/pkg/auth"
	mw "github.com/libradesk/library-backend/pkg/middleware"
	"github.com/libradesk/library-backend/pkg/validate"
)

type Handler struct {
	authSvc    AuthService
	catalogSvc CatalogService
	borrowSvc  BorrowService
	fineSvc    FineService
	log        *zap.Logger
}

func New(authSvc AuthService, catalogSvc CatalogService, borrowSvc BorrowService, fineSvc FineService, log *zap.Logger) *Handler {
	return &Handler{
		authSvc:    authSvc,
		catalogSvc: catalogSvc,
		borrowSvc:  borrowSvc,
		fineSvc:    fineSvc,
		log:        log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", mw.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(mw.RequestLoggerConfig()),
		middleware.RequestID(),
		mw.NewRateLimiter(apiRPS),
	)

	api.POST("/register", h.Register)
	api.POST("/authorize", h.Authorize)

	api.GET("/catalog", h.ListDescriptions)
	api.GET("/catalog/:descriptionUid/items", h.ListItems)

	authed := api.Group("", mw.JwtAuthentication)
	authed.POST("/borrower/borrow-request", h.SubmitBorrow)
	authed.POST("/borrower/return", h.SubmitReturn)
	authed.GET("/borrower/borrows", h.ListBorrows)

	authed.GET("/librarian/fines", h.ListFines)
	authed.POST("/librarian/catalog", h.CreateDescription)
	authed.POST("/librarian/catalog/:descriptionUid/items", h.AddItem)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) Register(c echo.Context) error {
	var req model.UserCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.authSvc.RegisterUser(c.Request().Context(), req); err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.String(http.StatusCreated, "ok")
}

func (h *Handler) Authorize(c echo.Context) error {
	var req model.AuthRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	resp, err := h.authSvc.Authorize(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) SubmitBorrow(c echo.Context) error {
	var req model.SubmitBorrowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := auth.FromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	summary, err := h.borrowSvc.SubmitBorrow(c.Request().Context(), p, req)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, errs.ErrNoAvailableCopy):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, errs.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) SubmitReturn(c echo.Context) error {
	var req model.ReturnRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := auth.FromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	if err := h.borrowSvc.SubmitReturn(c.Request().Context(), p, req.BorrowUid); err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, errs.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, errs.ErrAlreadyReturned):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, model.MessageResponse{Message: "return accepted"})
}

func (h *Handler) ListBorrows(c echo.Context) error {
	p, err := auth.FromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	borrows, err := h.borrowSvc.ListBorrows(c.Request().Context(), p)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, borrows)
}

func (h *Handler) ListFines(c echo.Context) error {
	p, err := auth.FromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	if !p.IsLibrarian() {
		return echo.NewHTTPError(http.StatusForbidden, errs.ErrForbidden.Error())
	}
	fines, err := h.fineSvc.ListFines(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, fines)
}

func (h *Handler) CreateDescription(c echo.Context) error {
	p, err := auth.FromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	if !p.IsLibrarian() {
		return echo.NewHTTPError(http.StatusForbidden, errs.ErrForbidden.Error())
	}
	var req model.CreateDescriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	desc, err := h.catalogSvc.CreateDescription(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, desc)
}

func (h *Handler) AddItem(c echo.Context) error {
	p, err := auth.FromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	if !p.IsLibrarian() {
		return echo.NewHTTPError(http.StatusForbidden, errs.ErrForbidden.Error())
	}
	descriptionUid := c.Param("descriptionUid")
	if descriptionUid == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "descriptionUid is empty")
	}
	item, err := h.catalogSvc.AddItem(c.Request().Context(), descriptionUid)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *Handler) ListItems(c echo.Context) error {
	descriptionUid := c.Param("descriptionUid")
	if descriptionUid == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "descriptionUid is empty")
	}
	items, err := h.catalogSvc.ListItems(c.Request().Context(), descriptionUid)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListDescriptions(c echo.Context) error {
	descs, err := h.catalogSvc.ListDescriptions(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, descs)
}
