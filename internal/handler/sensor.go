package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/fcaqualink/aqualink-monitor/internal/history"
	"github.com/fcaqualink/aqualink-monitor/internal/pipeline"
	"github.com/fcaqualink/aqualink-monitor/internal/sensor"
)

// Snapshotter exposes the pipeline's current dashboard state
type Snapshotter interface {
	Snapshot() pipeline.Snapshot
}

var (
	errBadMode  = errors.New("modo must be dia, rango, mes, or anio")
	errBadDate  = errors.New("dates must use the YYYY-MM-DD form")
	errBadRange = errors.New("fin must not precede inicio")
	errBadMonth = errors.New("mes must be a number from 1 to 12")
	errBadYear  = errors.New("anio must be a number")
)

// SensorHandler handles the sensor data API
type SensorHandler struct {
	pipeline Snapshotter
	view     *history.View
	logger   *zap.Logger
}

// NewSensorHandler creates a new sensor data handler
func NewSensorHandler(pipeline Snapshotter, view *history.View, logger *zap.Logger) *SensorHandler {
	return &SensorHandler{
		pipeline: pipeline,
		view:     view,
		logger:   logger,
	}
}

// RegisterRoutes registers the sensor data routes
func (h *SensorHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/sensores/actual", h.GetCurrent).Methods("GET")
	router.HandleFunc("/sensores/historial", h.GetHistory).Methods("GET")
	router.HandleFunc("/sensores/resumen", h.GetSummary).Methods("GET")
	router.HandleFunc("/sensores/agregado", h.GetAggregate).Methods("GET")
	router.HandleFunc("/sensores/calidad", h.GetQuality).Methods("GET")

	h.logger.Info("Sensor data routes registered")
}

// GetCurrent returns the live dashboard snapshot
func (h *SensorHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.pipeline.Snapshot())
}

// GetHistory returns the records matching the requested filter
func (h *SensorHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res := h.view.Query(r.Context(), filter)

	response := map[string]any{
		"status":  "success",
		"remote":  res.Remote,
		"count":   len(res.Records),
		"results": res.Records,
	}
	if res.Err != "" {
		response["remoteError"] = res.Err
	}
	writeJSON(w, http.StatusOK, response)
}

// GetSummary returns per-sensor means over the filtered records
func (h *SensorHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res := h.view.Query(r.Context(), filter)
	summary := history.Summarize(res.Records)

	means := make(map[string]any, len(sensor.Keys))
	counts := make(map[string]int, len(sensor.Keys))
	for _, key := range sensor.Keys {
		means[string(key)] = summary.Mean[key]
		counts[string(key)] = summary.Count[key]
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"remote": res.Remote,
		"mean":   means,
		"count":  counts,
	})
}

// GetAggregate returns bucketed means for one sensor
func (h *SensorHandler) GetAggregate(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key, ok := sensor.KeyForName(r.URL.Query().Get("sensor"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown sensor")
		return
	}

	bucket := history.Mode(r.URL.Query().Get("bucket"))
	switch bucket {
	case history.ModeDay, history.ModeMonth, history.ModeYear:
	case "":
		bucket = history.ModeDay
	default:
		writeError(w, http.StatusBadRequest, "bucket must be dia, mes, or anio")
		return
	}

	res := h.view.Query(r.Context(), filter)
	points := history.Aggregate(res.Records, key, bucket)

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"sensor":  key,
		"bucket":  bucket,
		"results": points,
	})
}

// GetQuality returns the quality band distribution for one sensor
func (h *SensorHandler) GetQuality(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key, ok := sensor.KeyForName(r.URL.Query().Get("sensor"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown sensor")
		return
	}

	res := h.view.Query(r.Context(), filter)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "success",
		"sensor":       key,
		"distribution": history.QualityDistribution(res.Records, key),
	})
}

// parseFilter builds a history filter from the request's query
// parameters. Dates use the dashboard's YYYY-MM-DD form. An omitted
// modo defaults to today's records.
func parseFilter(r *http.Request) (history.Filter, error) {
	q := r.URL.Query()
	mode := history.Mode(q.Get("modo"))
	if mode == "" {
		mode = history.ModeDay
	}

	switch mode {
	case history.ModeDay:
		day := time.Now()
		if fecha := q.Get("fecha"); fecha != "" {
			parsed, err := parseDate(fecha)
			if err != nil {
				return history.Filter{}, err
			}
			day = parsed
		}
		return history.Filter{Mode: history.ModeDay, Day: day}, nil

	case history.ModeRange:
		start, err := parseDate(q.Get("inicio"))
		if err != nil {
			return history.Filter{}, err
		}
		end, err := parseDate(q.Get("fin"))
		if err != nil {
			return history.Filter{}, err
		}
		if end.Before(start) {
			return history.Filter{}, errBadRange
		}
		return history.Filter{Mode: history.ModeRange, Start: start, End: end}, nil

	case history.ModeMonth:
		month, err := strconv.Atoi(q.Get("mes"))
		if err != nil || month < 1 || month > 12 {
			return history.Filter{}, errBadMonth
		}
		year, err := strconv.Atoi(q.Get("anio"))
		if err != nil {
			return history.Filter{}, errBadYear
		}
		return history.Filter{Mode: history.ModeMonth, Month: time.Month(month), Year: year}, nil

	case history.ModeYear:
		year, err := strconv.Atoi(q.Get("anio"))
		if err != nil {
			return history.Filter{}, errBadYear
		}
		return history.Filter{Mode: history.ModeYear, Year: year}, nil

	default:
		return history.Filter{}, errBadMode
	}
}

func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, errBadDate
	}
	return t, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"status": "error", "error": msg})
}
