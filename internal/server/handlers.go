package server

import (
	"io"
	"net/http"
	"strconv"

	"github.com/matzehuels/safetree/pkg/errors"
	stio "github.com/matzehuels/safetree/pkg/io"
	"github.com/matzehuels/safetree/pkg/pipeline"
)

const cacheHeader = "X-Safetree-Cache"

func (s *Server) handleStringify(w http.ResponseWriter, r *http.Request) {
	doc, opts, err := s.readRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.cfg.Runner.Stringify(r.Context(), doc, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeader(w, out.CacheHit)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, out.Line+"\n")
}

func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	doc, opts, err := s.readRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Needle = r.URL.Query().Get("needle")
	out, err := s.cfg.Runner.Locate(r.Context(), doc, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeader(w, out.CacheHit)
	writeJSON(w, http.StatusOK, out)
}

var graphContentTypes = map[string]string{
	pipeline.GraphSVG: "image/svg+xml",
	pipeline.GraphDOT: "text/vnd.graphviz",
	pipeline.GraphPDF: "application/pdf",
	pipeline.GraphPNG: "image/png",
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	doc, opts, err := s.readRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	opts.GraphFormat = q.Get("format")
	opts.Detailed = q.Get("detailed") == "true"
	out, err := s.cfg.Runner.Graph(r.Context(), doc, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeader(w, out.CacheHit)
	w.Header().Set("Content-Type", graphContentTypes[out.Format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Data)
}

// readRequest reads the body and the options shared by every route.
func (s *Server) readRequest(w http.ResponseWriter, r *http.Request) ([]byte, pipeline.Options, error) {
	var opts pipeline.Options

	format, err := stio.FormatFromContentType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, opts, err
	}
	opts.Format = format

	q := r.URL.Query()
	opts.MaxDepth = s.cfg.DefaultDepth
	if v := q.Get("depth"); v != "" {
		depth, err := strconv.Atoi(v)
		if err != nil {
			return nil, opts, errors.New(errors.ErrCodeInvalidDepth, "depth must be an integer, got %q", v)
		}
		opts.MaxDepth = depth
		opts.ExplicitDepth = true
	}
	if v := q.Get("max_nodes"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, opts, errors.New(errors.ErrCodeInvalidInput, "max_nodes must be an integer, got %q", v)
		}
		opts.MaxNodes = n
	}
	opts.Refresh = q.Get("refresh") == "true"

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		return nil, opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body")
	}
	if len(body) == 0 {
		return nil, opts, errors.New(errors.ErrCodeInvalidInput, "request body is empty")
	}
	return body, opts, nil
}

type errorBody struct {
	Error   errors.Code `json:"error"`
	Message string      `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.cfg.Logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorBody{Error: code, Message: errors.UserMessage(err)})
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set(cacheHeader, "hit")
	} else {
		w.Header().Set(cacheHeader, "miss")
	}
}
