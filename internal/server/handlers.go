package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/tracegraph/pkg/buildinfo"
	"github.com/matzehuels/tracegraph/pkg/errors"
	"github.com/matzehuels/tracegraph/pkg/pipeline"
	"github.com/matzehuels/tracegraph/pkg/trace"
	"github.com/matzehuels/tracegraph/pkg/transform"
)

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:  "image/svg+xml",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

type ruleResponse struct {
	Name string `json:"name"`
	Op   string `json:"op,omitempty"`
	To   string `json:"to,omitempty"`
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	rules := append(transform.FrameworkTransforms(), s.opts.Rules...)
	out := make([]ruleResponse, len(rules))
	for i, rule := range rules {
		out[i] = ruleResponse{Name: rule.Name()}
		if rn, ok := rule.(*transform.Rename); ok {
			out[i].Op, out[i].To = rn.Pattern(), rn.Replacement()
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rules": out})
}

func (s *Server) handleCreateGraph(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	opts, err := s.parseOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	tr, err := readTrace(r, s.opts.MaxBodyBytes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Trace = tr

	res, err := s.runner.Execute(ctx, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", contentTypes[res.Format])
	h.Set("X-Run-Id", res.RunID)
	h.Set("X-Graph-Hash", res.GraphHash)
	h.Set("X-Cache", cacheStatus(res.CacheInfo))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifact)
}

func (s *Server) parseOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Format: q.Get("format"),
		Rules:  s.opts.Rules,
		Logger: s.logger.With("request", RequestID(r.Context())),
	}
	if names := q.Get("input_names"); names != "" {
		opts.InputNames = strings.Split(names, ",")
	}

	var err error
	if opts.Indexed, err = boolParam(q.Get("indexed")); err != nil {
		return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "indexed")
	}
	if opts.Detailed, err = boolParam(q.Get("detailed")); err != nil {
		return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "detailed")
	}
	if opts.Refresh, err = boolParam(q.Get("refresh")); err != nil {
		return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "refresh")
	}
	return opts, nil
}

func boolParam(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

// readTrace decodes the request body as a trace. YAML is selected by a
// YAML content type; anything else is read as JSON.
func readTrace(r *http.Request, limit int64) (*trace.Trace, error) {
	format := trace.FormatJSON
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "content type")
		}
		switch mt {
		case "application/yaml", "application/x-yaml", "text/yaml":
			format = trace.FormatYAML
		}
	}

	body := io.LimitReader(r.Body, limit+1)
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body")
	}
	if int64(len(data)) > limit {
		return nil, errors.New(errors.ErrCodeInvalidInput, "trace exceeds %d bytes", limit)
	}
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty request body")
	}
	return trace.Read(bytes.NewReader(data), format)
}

func cacheStatus(ci pipeline.CacheInfo) string {
	switch {
	case ci.GraphHit && ci.RenderHit:
		return "hit"
	case ci.GraphHit || ci.RenderHit:
		return "partial"
	default:
		return "miss"
	}
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidRule:
		return http.StatusBadRequest
	case errors.ErrCodeInvalidTrace, errors.ErrCodeInvalidAttributes:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCodeOr(err, errors.ErrCodeInternal)
	status := statusFor(code)
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, map[string]errorBody{"error": {
		Code:      code,
		Message:   msg,
		RequestID: RequestID(r.Context()),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
