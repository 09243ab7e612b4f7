package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterHandlers mounts the /runs API on r.
func (o *Orchestrator) RegisterHandlers(r chi.Router) {
	r.Get("/runs", o.handleList)
	r.Post("/runs", o.handleLaunch)
	r.Get("/runs/{id}", o.handleGet)
	r.Get("/runs/{id}/logs", o.handleLogs)
	r.Post("/runs/{id}/cancel", o.handleCancel)
}

func (o *Orchestrator) handleList(w http.ResponseWriter, r *http.Request) {
	jsonResp(w, 200, o.List())
}

func (o *Orchestrator) handleLaunch(w http.ResponseWriter, r *http.Request) {
	var req LaunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		jsonErr(w, 400, fmt.Errorf("invalid JSON"))
		return
	}

	run, err := o.Launch(req)
	switch {
	case errors.Is(err, errBadLaunch):
		jsonErr(w, 400, err)
	case errors.Is(err, errTargetLocked):
		body := map[string]any{"error": err.Error()}
		if lock := o.locks.Get(o.target(req.URL)); lock != nil {
			body["lock"] = lock
		}
		jsonResp(w, 409, body)
	case err != nil:
		jsonErr(w, 500, err)
	default:
		jsonResp(w, 201, run)
	}
}

func (o *Orchestrator) handleGet(w http.ResponseWriter, r *http.Request) {
	run, err := o.Get(chi.URLParam(r, "id"))
	if err != nil {
		jsonErr(w, 404, err)
		return
	}
	jsonResp(w, 200, run)
}

func (o *Orchestrator) handleLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := o.Logs(chi.URLParam(r, "id"))
	if err != nil {
		jsonErr(w, 404, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(logs))
}

func (o *Orchestrator) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := o.Cancel(id)
	switch {
	case errors.Is(err, errRunNotFound):
		jsonErr(w, 404, err)
	case errors.Is(err, errRunFinished):
		jsonErr(w, 409, err)
	case err != nil:
		jsonErr(w, 500, err)
	default:
		jsonResp(w, 202, map[string]string{"status": "cancelling", "id": id})
	}
}

func jsonResp(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonErr(w http.ResponseWriter, code int, err error) {
	jsonResp(w, code, map[string]string{"error": err.Error()})
}
