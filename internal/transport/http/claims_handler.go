package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"claimsight/internal/claims"
	"claimsight/internal/config"
	apierrors "claimsight/internal/errors"
	"claimsight/internal/middleware"
	"claimsight/internal/model"
	"claimsight/internal/services"
)

// ClaimsHandler handles claim analytics HTTP requests with RFC 7807 compliance
type ClaimsHandler struct {
	service      *services.AnalyzerService
	uploadCfg    config.UploadConfig
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validator    *validator.Validate
}

// NewClaimsHandler creates a new claims handler with RFC 7807 error handling
func NewClaimsHandler(service *services.AnalyzerService, uploadCfg config.UploadConfig, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ClaimsHandler {
	return &ClaimsHandler{
		service:      service,
		uploadCfg:    uploadCfg,
		logger:       logger.With(slog.String("component", "claims_handler")),
		errorHandler: errorHandler,
		validator:    validator.New(),
	}
}

// Routes returns the claims routes with proper Chi patterns
func (h *ClaimsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/upload", h.Upload)
	r.Post("/train", h.Train)
	r.Post("/predict", h.Predict)
	r.Get("/analysis", h.GetAnalysis)

	return r
}

// UploadResponse is the combined analysis plus model payload returned
// after a successful file upload.
type UploadResponse struct {
	*claims.AnalysisResult
	MLModel      *model.TrainResult  `json:"ml_model,omitempty"`
	TrainingInfo *model.TrainingInfo `json:"training_info,omitempty"`
}

// PredictRequest is the request body for denial risk prediction
type PredictRequest struct {
	CPTCode          string `json:"cpt_code" validate:"required,max=64"`
	InsuranceCompany string `json:"insurance_company" validate:"required,max=256"`
	PhysicianName    string `json:"physician_name" validate:"required,max=256"`
}

// Upload handles POST /api/claims/upload.
// The uploaded file is decoded, analyzed and used to train a fresh model
// in one pass, mirroring the single-shot workflow of the upload form.
func (h *ClaimsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	h.logger.InfoContext(r.Context(), "claims upload received",
		slog.String("request_id", reqID),
		slog.String("remote_addr", r.RemoteAddr),
	)

	r.Body = http.MaxBytesReader(w, r.Body, h.uploadCfg.MaxBytes)
	if err := r.ParseMultipartForm(h.uploadCfg.MaxBytes); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusRequestEntityTooLarge,
			"UPLOAD_REJECTED",
			"Upload exceeds the maximum allowed size",
		))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "A claims file is required"))
		return
	}
	defer file.Close()

	if !h.extensionAllowed(header.Filename) {
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusBadRequest,
			"UPLOAD_REJECTED",
			fmt.Sprintf("Unsupported file type %q. Allowed: %s",
				filepath.Ext(header.Filename), strings.Join(h.uploadCfg.AllowedExtensions, ", ")),
		))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	result, err := h.service.LoadAndAnalyze(r.Context(), data)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "claims upload failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
			slog.String("filename", header.Filename),
		)
		h.errorHandler.HandleError(w, r, h.mapDomainError(err))
		return
	}

	response := &UploadResponse{AnalysisResult: result}

	// Training failure is not fatal to the upload. The analysis is still
	// returned and the model fields report what happened.
	trainResult, trainingInfo, err := h.service.TrainModel(r.Context())
	if err != nil {
		h.logger.WarnContext(r.Context(), "model training skipped",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		response.MLModel = model.TrainFailure(err)
	} else {
		response.MLModel = trainResult
		response.TrainingInfo = trainingInfo
	}

	render.JSON(w, r, response)
}

// Train handles POST /api/claims/train
func (h *ClaimsHandler) Train(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	h.logger.InfoContext(r.Context(), "model training requested",
		slog.String("request_id", reqID),
	)

	trainResult, trainingInfo, err := h.service.TrainModel(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "model training failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, h.mapDomainError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"ml_model":      trainResult,
		"training_info": trainingInfo,
	})
}

// Predict handles POST /api/claims/predict
func (h *ClaimsHandler) Predict(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var req PredictRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field := strings.ToLower(verrs[0].Field())
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation(field, verrs[0].Error()))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	input := map[string]string{
		claims.FieldCPTCode:          req.CPTCode,
		claims.FieldInsuranceCompany: req.InsuranceCompany,
		claims.FieldPhysicianName:    req.PhysicianName,
	}

	prediction, err := h.service.Predict(r.Context(), input)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "prediction failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, h.mapDomainError(err))
		return
	}

	render.JSON(w, r, prediction)
}

// GetAnalysis handles GET /api/claims/analysis
func (h *ClaimsHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Analysis(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, h.mapDomainError(err))
		return
	}

	render.JSON(w, r, result)
}

// mapDomainError converts service layer errors to API errors
func (h *ClaimsHandler) mapDomainError(err error) error {
	switch {
	case errors.Is(err, services.ErrNoData):
		return apierrors.New(http.StatusNotFound, "NO_DATA",
			"No claim data loaded. Upload a claims file first.")
	case errors.Is(err, services.ErrModelNotTrained):
		return apierrors.New(http.StatusBadRequest, "MODEL_NOT_TRAINED",
			"Model has not been trained yet. Upload a claims file first.")
	case errors.Is(err, claims.ErrEmptyInput):
		return apierrors.New(http.StatusBadRequest, "UPLOAD_REJECTED",
			"The uploaded file contains no claim rows.")
	case errors.Is(err, claims.ErrUnreadableInput):
		return apierrors.NewWithDetails(http.StatusUnprocessableEntity, "UNREADABLE_FILE",
			"The uploaded file could not be parsed as CSV or Excel.", err.Error())
	case errors.Is(err, model.ErrNoFeatures):
		return apierrors.New(http.StatusUnprocessableEntity, "NO_FEATURES",
			"The claim data has none of the columns the model can learn from.")
	default:
		return err
	}
}

func (h *ClaimsHandler) extensionAllowed(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range h.uploadCfg.AllowedExtensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}
