package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vaidya-ai/clinicalmap/pkg/buildinfo"
	"github.com/vaidya-ai/clinicalmap/pkg/clinical"
	"github.com/vaidya-ai/clinicalmap/pkg/errors"
	"github.com/vaidya-ai/clinicalmap/pkg/markup"
	"github.com/vaidya-ai/clinicalmap/pkg/pipeline"
	"github.com/vaidya-ai/clinicalmap/pkg/render"
	"github.com/vaidya-ai/clinicalmap/pkg/session"
	"github.com/vaidya-ai/clinicalmap/pkg/view"
)

// mapRequest is the body of the preview and create endpoints.
type mapRequest struct {
	Content       string `json:"content" validate:"required"`
	Topic         string `json:"topic,omitempty" validate:"max=200"`
	CleanMarkdown bool   `json:"clean_markdown,omitempty"`
}

// mapResponse is a parsed and laid out map. ID and CreatedAt are set for
// saved maps only.
type mapResponse struct {
	ID        string          `json:"id,omitempty"`
	Topic     string          `json:"topic"`
	CreatedAt *time.Time      `json:"created_at,omitempty"`
	Graph     clinical.Graph  `json:"graph"`
	Layout    clinical.Layout `json:"layout"`
}

type healthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Info: buildinfo.Get()})
}

// previewMap handles POST /api/v1/maps/preview.
func (s *Server) previewMap(w http.ResponseWriter, r *http.Request) {
	req, err := decodeMapRequest(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	resp, err := s.buildMap(r.Context(), req.Content, topicOf(req), req.CleanMarkdown)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// createMap handles POST /api/v1/maps.
func (s *Server) createMap(w http.ResponseWriter, r *http.Request) {
	req, err := decodeMapRequest(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	topic := topicOf(req)
	resp, err := s.buildMap(r.Context(), req.Content, topic, req.CleanMarkdown)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	sess, err := session.New(topic, req.Content, s.opts.SessionTTL)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if err := s.store.Set(r.Context(), sess); err != nil {
		writeError(w, r, s.logger, errors.Wrap(errors.ErrCodeInternal, err, "save map"))
		return
	}

	resp.ID = sess.ID
	resp.Topic = sess.Topic
	resp.CreatedAt = &sess.CreatedAt
	s.logger.Info("saved map", "id", sess.ID, "topic", sess.Topic, "nodes", len(resp.Graph.Nodes))
	writeJSON(w, http.StatusCreated, resp)
}

// listMaps handles GET /api/v1/maps.
func (s *Server) listMaps(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, r, s.logger, errors.Wrap(errors.ErrCodeInternal, err, "list maps"))
		return
	}
	if list == nil {
		list = []session.Summary{}
	}
	writeJSON(w, http.StatusOK, list)
}

// getMap handles GET /api/v1/maps/{id}.
func (s *Server) getMap(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	resp, err := s.buildMap(r.Context(), sess.Content, sess.Topic, false)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	resp.ID = sess.ID
	resp.CreatedAt = &sess.CreatedAt
	writeJSON(w, http.StatusOK, resp)
}

// renderMap handles GET /api/v1/maps/{id}/render.{format}. Hover and
// selection ids that are not in the map are ignored.
func (s *Server) renderMap(w http.ResponseWriter, r *http.Request) {
	format, err := render.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		writeError(w, r, s.logger, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unsupported format %q", chi.URLParam(r, "format")))
		return
	}

	sess, err := s.loadSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	q := r.URL.Query()
	opts := s.pipelineOptions(sess.Content, sess.Topic, false)
	opts.Formats = []string{string(format)}
	opts.Interactive = boolParam(q.Get("interactive"))
	opts.Detailed = boolParam(q.Get("detailed"))
	opts.Guides = boolParam(q.Get("guides"))

	if err := opts.ValidateForParse(); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	g, _ := s.runner.Parse(r.Context(), opts)
	l, err := s.runner.Layout(r.Context(), g, opts)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	st := view.State{Hovered: q.Get("hover"), Selected: q.Get("selected")}
	st.Prune(l)
	opts.Hovered, opts.Selected = st.Hovered, st.Selected

	artifacts, err := s.runner.Render(r.Context(), l, opts)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[string(format)])
}

// deleteMap handles DELETE /api/v1/maps/{id}.
func (s *Server) deleteMap(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateSessionID(id); err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		writeError(w, r, s.logger, errors.Wrap(errors.ErrCodeInternal, err, "delete map"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// buildMap parses content and computes its layout through the runner so
// layouts are shared with the CLI cache.
func (s *Server) buildMap(ctx context.Context, content, topic string, clean bool) (*mapResponse, error) {
	opts := s.pipelineOptions(content, topic, clean)
	if err := opts.ValidateForParse(); err != nil {
		return nil, err
	}

	g, _ := s.runner.Parse(ctx, opts)
	l, err := s.runner.Layout(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	return &mapResponse{Topic: topic, Graph: g, Layout: l}, nil
}

func (s *Server) pipelineOptions(content, topic string, clean bool) pipeline.Options {
	return pipeline.Options{
		Content:       content,
		Topic:         topic,
		CleanMarkdown: clean,
		Width:         s.opts.Width,
		Height:        s.opts.Height,
		Logger:        s.logger,
	}
}

func (s *Server) loadSession(ctx context.Context, id string) (*session.Session, error) {
	if err := errors.ValidateSessionID(id); err != nil {
		return nil, err
	}
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load map %s", id)
	}
	if sess == nil {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "map %s not found", id)
	}
	return sess, nil
}

func decodeMapRequest(r *http.Request) (mapRequest, error) {
	var req mapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case stderrors.As(err, &tooLarge):
			return req, errors.Wrap(errors.ErrCodeContentTooLarge, err, "request body too large (max %d bytes)", tooLarge.Limit)
		case stderrors.Is(err, io.EOF):
			return req, errors.New(errors.ErrCodeInvalidInput, "request body is empty")
		default:
			return req, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON body")
		}
	}
	return req, validateStruct(req)
}

// topicOf prefers the request topic and falls back to the topic of a
// generator envelope in the content.
func topicOf(req mapRequest) string {
	if req.Topic != "" {
		return req.Topic
	}
	if env, ok := markup.ParseEnvelope(req.Content); ok {
		return env.Topic
	}
	return ""
}

func boolParam(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}
