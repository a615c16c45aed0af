package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bryanwahyu/leafsense/internal/application/analysis"
	appplants "github.com/bryanwahyu/leafsense/internal/application/plants"
	domai "github.com/bryanwahyu/leafsense/internal/domain/ai"
	domain "github.com/bryanwahyu/leafsense/internal/domain/plants"
	"github.com/bryanwahyu/leafsense/internal/middleware"
)

const maxUploadBytes = 16 << 20

type Router struct {
	plantsSvc       *appplants.Service
	registry        *analysis.Registry
	images          domain.ImageStore
	analysisTimeout time.Duration
}

func NewRouter(plantsSvc *appplants.Service, registry *analysis.Registry, images domain.ImageStore, analysisTimeout time.Duration) http.Handler {
	r := &Router{
		plantsSvc:       plantsSvc,
		registry:        registry,
		images:          images,
		analysisTimeout: analysisTimeout,
	}
	mux := chi.NewRouter()

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Post("/plants", r.wrap(r.handleCreatePlant))
		rt.Get("/plants", r.wrap(r.handleListPlants))
		rt.Get("/plants/{plantID}", r.wrap(r.handleGetPlant))
		rt.Post("/plants/{plantID}/analyses", r.wrap(r.handleAnalyze))
		rt.Get("/plants/{plantID}/analyses/progress", r.wrap(r.handleProgress))
		rt.Get("/plants/{plantID}/analyses/latest", r.wrap(r.handleLatest))
		rt.Get("/plants/{plantID}/faults", r.wrap(r.handleFaults))
		rt.Post("/analyses", r.wrap(r.handleQuickAnalyze))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			var pre *analysis.PreconditionError
			switch {
			case errors.Is(err, domain.ErrNotFound):
				http.Error(w, "plant profile not found", http.StatusNotFound)
			case errors.Is(err, domain.ErrEmptyName):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.As(err, &pre):
				http.Error(w, pre.Error(), http.StatusConflict)
			case errors.Is(err, domai.ErrQuotaExceeded):
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

// POST /v1/{tenant}/plants
// Body: {"name": "<plant name>"}
func (r *Router) handleCreatePlant(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return nil
	}
	name := middleware.SanitizeString(body.Name)
	if err := middleware.ValidatePlantName(name); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	p, err := r.plantsSvc.CreateProfile(req.Context(), tenant, name)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	return json.NewEncoder(w).Encode(p)
}

// GET /v1/{tenant}/plants
func (r *Router) handleListPlants(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")

	list, err := r.plantsSvc.List(req.Context(), tenant)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domain.PlantProfile{}
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/plants/{plantID}
func (r *Router) handleGetPlant(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := domain.ProfileID(chi.URLParam(req, "plantID"))

	p, err := r.plantsSvc.Get(req.Context(), tenant, id)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(p)
}

// POST /v1/{tenant}/plants/{plantID}/analyses
// Multipart form: image file plus sunlight/watering/notes/organic/latitude/longitude fields.
// The attempt runs in the background; poll the progress endpoint for the
// live partial text and the terminal result.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := domain.ProfileID(chi.URLParam(req, "plantID"))
	return r.startAnalysis(w, req, tenant, id)
}

// POST /v1/{tenant}/analyses
// Quick analysis: same multipart form plus an optional "name" field; a new
// profile is created implicitly so the result still lands in a history.
func (r *Router) handleQuickAnalyze(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")

	if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return nil
	}
	name := middleware.SanitizeString(req.FormValue("name"))
	if name == "" {
		name = "My plant"
	}
	p, err := r.plantsSvc.CreateProfile(req.Context(), tenant, name)
	if err != nil {
		return err
	}
	return r.startAnalysis(w, req, tenant, p.ID)
}

func (r *Router) startAnalysis(w http.ResponseWriter, req *http.Request, tenant string, id domain.ProfileID) error {
	if err := middleware.ValidateTenantID(tenant); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	// Profile must exist before anything is uploaded or streamed.
	if _, err := r.plantsSvc.Get(req.Context(), tenant, id); err != nil {
		return err
	}

	image, contentType, env, err := parseAnalyzeForm(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	objKey := fmt.Sprintf("%s/%s/%s%s", tenant, id, uuid.New().String(), extensionFor(contentType))
	imageURL, err := r.images.Upload(req.Context(), objKey, bytes.NewReader(image), int64(len(image)), contentType)
	if err != nil {
		return fmt.Errorf("image upload failed: %w", err)
	}

	sess := r.registry.Session(tenant, id)
	cmd := analysis.StartCommand{
		TenantID:    tenant,
		ProfileID:   id,
		Image:       image,
		MIMEType:    contentType,
		ImageURL:    imageURL,
		Environment: env,
	}
	if err := sess.Start(cmd); err != nil {
		return err
	}

	// Run in the background so the stream survives this request; clients
	// poll the progress endpoint.
	go func() {
		middleware.IncrementAnalyses()
		middleware.IncrementAnalysesStreaming()
		defer middleware.DecrementAnalysesStreaming()

		ctx, cancel := context.WithTimeout(context.Background(), r.analysisTimeout)
		defer cancel()

		if _, err := sess.Run(ctx); err != nil {
			middleware.IncrementAnalysesFailed()
			log.Printf("background analysis error for tenant=%s plant=%s: %v", tenant, id, err)
			return
		}
		log.Printf("analysis finished: tenant=%s plant=%s", tenant, id)
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	return json.NewEncoder(w).Encode(map[string]any{
		"status":   string(analysis.StateStreaming),
		"tenant":   tenant,
		"plantId":  id,
		"imageUrl": imageURL,
		"message":  "analysis started; poll the progress endpoint",
		"queuedAt": time.Now(),
	})
}

// GET /v1/{tenant}/plants/{plantID}/analyses/progress
func (r *Router) handleProgress(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := domain.ProfileID(chi.URLParam(req, "plantID"))

	snap, _ := r.registry.Peek(tenant, id)

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(snap)
}

// GET /v1/{tenant}/plants/{plantID}/analyses/latest
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := domain.ProfileID(chi.URLParam(req, "plantID"))

	rec, err := r.plantsSvc.MostRecent(req.Context(), tenant, id)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(rec)
}

// GET /v1/{tenant}/plants/{plantID}/faults?limit=20
func (r *Router) handleFaults(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := domain.ProfileID(chi.URLParam(req, "plantID"))
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.plantsSvc.RecentFaults(req.Context(), tenant, id, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// parseAnalyzeForm extracts the photo and environmental context from a
// multipart request.
func parseAnalyzeForm(req *http.Request) ([]byte, string, domain.EnvironmentalData, error) {
	var env domain.EnvironmentalData

	if req.MultipartForm == nil {
		if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, "", env, fmt.Errorf("invalid multipart form")
		}
	}

	file, header, err := req.FormFile("image")
	if err != nil {
		return nil, "", env, fmt.Errorf("image file is required")
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return nil, "", env, fmt.Errorf("failed to read image: %w", err)
	}
	if len(image) == 0 {
		return nil, "", env, fmt.Errorf("image file is empty")
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(image)
	}
	if err := middleware.ValidateImageContentType(contentType); err != nil {
		return nil, "", env, err
	}

	env.Sunlight = middleware.SanitizeString(req.FormValue("sunlight"))
	env.Watering = middleware.SanitizeString(req.FormValue("watering"))
	env.Notes = middleware.SanitizeString(req.FormValue("notes"))
	env.OrganicPreference = req.FormValue("organic") == "true"

	latStr, lngStr := req.FormValue("latitude"), req.FormValue("longitude")
	if latStr != "" || lngStr != "" {
		lat, err1 := strconv.ParseFloat(latStr, 64)
		lng, err2 := strconv.ParseFloat(lngStr, 64)
		if err1 != nil || err2 != nil {
			return nil, "", env, fmt.Errorf("latitude and longitude must both be valid numbers")
		}
		if err := middleware.ValidateCoordinates(lat, lng); err != nil {
			return nil, "", env, err
		}
		env.Location = &domain.GeoPoint{Latitude: lat, Longitude: lng}
	}

	return image, contentType, env, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	return ""
}
