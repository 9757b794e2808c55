package api

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"ChurnPull/internal/domain/models"
	"ChurnPull/internal/services/features"
	"ChurnPull/internal/usecase"
	xhttp "ChurnPull/pkg/http"
	"ChurnPull/pkg/http/middleware"
	xlogger "ChurnPull/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// ChurnEchoHandler serves the prediction form and the JSON API.
type ChurnEchoHandler struct {
	logger    *xlogger.Logger
	predictor *usecase.ChurnPredictor
	batch     *usecase.BatchScorer
	limiter   middleware.Allower
	maxUpload int64
}

// NewChurnEchoHandler builds the handler. limiter may be nil to disable
// rate limiting.
func NewChurnEchoHandler(
	logger *xlogger.Logger,
	predictor *usecase.ChurnPredictor,
	batch *usecase.BatchScorer,
	limiter middleware.Allower,
	maxUpload int64,
) *ChurnEchoHandler {
	if maxUpload <= 0 {
		maxUpload = 5 << 20
	}
	return &ChurnEchoHandler{
		logger:    logger,
		predictor: predictor,
		batch:     batch,
		limiter:   limiter,
		maxUpload: maxUpload,
	}
}

func (h *ChurnEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Index)
	e.POST("/predict", h.PredictForm)
	e.GET("/health", h.Health)

	var limited []echo.MiddlewareFunc
	if h.limiter != nil {
		limited = append(limited, middleware.RateLimit(h.limiter))
	}

	g := e.Group("/api")
	g.POST("/predict", h.Predict, limited...)
	g.POST("/predict/batch", h.PredictBatch, limited...)
	g.GET("/options", h.Options)
	g.GET("/predictions", h.Recent)
}

type pageData struct {
	Options    models.FormOptions
	Input      models.CustomerInput
	Prediction *models.Prediction
	Errors     []string
}

func (h *ChurnEchoHandler) Index(c echo.Context) error {
	return h.render(c, http.StatusOK, pageData{Input: models.FormDefaults()})
}

func (h *ChurnEchoHandler) PredictForm(c echo.Context) error {
	in := models.CustomerInput{}
	if verr := xhttp.ReadAndValidateRequest(c, &in); verr != nil {
		msgs := make([]string, len(verr))
		for i, v := range verr {
			msgs[i] = v.Message
		}
		return h.render(c, http.StatusBadRequest, pageData{Input: in, Errors: msgs})
	}

	pred, err := h.predictor.Predict(c.Request().Context(), in)
	if err != nil {
		appErr := h.predictError(err)
		return h.render(c, appErr.Status, pageData{Input: in, Errors: []string{appErr.Message}})
	}
	return h.render(c, http.StatusOK, pageData{Input: in, Prediction: pred})
}

func (h *ChurnEchoHandler) Predict(c echo.Context) error {
	in := &models.CustomerInput{}
	if verr := xhttp.ReadAndValidateRequest(c, in); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	req := models.ScoringRequest{
		RequestID: c.Request().Header.Get(echo.HeaderXRequestID),
		Customer:  *in,
	}
	pred, err := h.predictor.Score(c.Request().Context(), req)
	if err != nil {
		return xhttp.AppErrorResponse(c, h.predictError(err))
	}
	return xhttp.SuccessResponse(c, pred)
}

func (h *ChurnEchoHandler) PredictBatch(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("multipart field 'file' is required").WithError(err))
	}
	if fh.Size > h.maxUpload {
		return xhttp.AppErrorResponse(c, xhttp.PayloadTooLargeError("upload exceeds size limit").
			WithParam("max_bytes", h.maxUpload))
	}
	f, err := fh.Open()
	if err != nil {
		h.logger.Error("open batch upload", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("cannot read upload"))
	}
	defer f.Close()

	res, err := h.batch.ScoreCSV(c.Request().Context(), f)
	switch {
	case errors.Is(err, usecase.ErrTooManyRows):
		return xhttp.AppErrorResponse(c, xhttp.PayloadTooLargeError(err.Error()))
	case err != nil:
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ChurnEchoHandler) Options(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.predictor.Options())
}

func (h *ChurnEchoHandler) Recent(c echo.Context) error {
	req := &models.RecentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.predictor.Recent(c.Request().Context(), req.Limit)
	if errors.Is(err, usecase.ErrNoStore) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError(err.Error()))
	}
	if err != nil {
		h.logger.Error("recent predictions", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("cannot load predictions"))
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *ChurnEchoHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"model":     h.predictor.ModelName(),
		"threshold": h.predictor.Threshold(),
	})
}

func (h *ChurnEchoHandler) render(c echo.Context, status int, data pageData) error {
	data.Options = h.predictor.Options()
	var sb strings.Builder
	if err := pageTmpl.Execute(&sb, data); err != nil {
		h.logger.Error("render page", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return c.HTML(status, sb.String())
}

// predictError maps predictor failures onto HTTP errors.
func (h *ChurnEchoHandler) predictError(err error) *xhttp.AppError {
	var (
		uc *features.UnknownCategoryError
		sm *features.ShapeMismatchError
		me *usecase.ModelError
	)
	switch {
	case errors.As(err, &uc):
		return xhttp.UnprocessableError("ERR_UNKNOWN_CATEGORY", strings.ToLower(uc.Feature), uc.Error()).
			WithParam("value", uc.Value).
			WithParam("known", uc.Known)
	case errors.As(err, &sm):
		return xhttp.UnprocessableError("ERR_SHAPE_MISMATCH", sm.Stage, sm.Error()).
			WithParam("expected", sm.Expected).
			WithParam("got", sm.Got)
	case errors.As(err, &me):
		h.logger.Error("model failure", xlogger.String("model", me.Model), xlogger.Error(me.Err))
		return xhttp.NewAppError("ERR_MODEL", "", "model failed to score input", http.StatusInternalServerError).WithError(err)
	default:
		h.logger.Error("predict", xlogger.Error(err))
		return xhttp.InternalError("prediction failed").WithError(err)
	}
}

var _ xhttp.Handler = (*ChurnEchoHandler)(nil)
