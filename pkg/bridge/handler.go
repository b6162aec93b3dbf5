package bridge

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"time"

	"github.com/go-chi/chi/v5"
)

// DefaultMaxBodyBytes is the default request body limit.
const DefaultMaxBodyBytes = 1 << 20

// UnknownFunction is the name observers see for calls to unregistered
// functions.
const UnknownFunction = "unknown"

// Observer is told about every call the handler completes.
type Observer func(function string, status int, elapsed time.Duration)

// HandlerConfig configures Handler.
type HandlerConfig struct {
	// MaxBodyBytes limits the request body. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64

	// Logger receives function failures. Defaults to slog.Default().
	Logger *slog.Logger

	// Observer, when set, is called after every call.
	Observer Observer
}

// HTTPError is an error with an HTTP status, written as {"error": message}.
type HTTPError struct {
	Code    int
	Message string
	Err     error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

type handler struct {
	reg *Registry
	cfg HandlerConfig
}

// Handler returns the HTTP handler serving POST /{name} for every function
// in the registry. Functions registered later are served as well.
func (r *Registry) Handler(cfgs ...HandlerConfig) http.Handler {
	var cfg HandlerConfig
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	h := &handler{reg: r, cfg: cfg}

	mux := chi.NewRouter()
	mux.Post("/{name}", h.serveCall)
	mux.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, &HTTPError{Code: http.StatusNotFound, Message: "no such function"})
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, &HTTPError{Code: http.StatusMethodNotAllowed, Message: "bridge functions are called with POST"})
	})
	return mux
}

func (h *handler) serveCall(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	name := chi.URLParam(req, "name")

	status, body, err := h.call(w, req, name)
	if h.cfg.Observer != nil {
		label := name
		if status == http.StatusNotFound {
			label = UnknownFunction
		}
		h.cfg.Observer(label, status, time.Since(start))
	}
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.cfg.Logger.Debug("bridge response write failed", "function", name, "error", err)
	}
}

func (h *handler) call(w http.ResponseWriter, req *http.Request, name string) (int, []byte, error) {
	f, ok := h.reg.Lookup(name)
	if !ok {
		return http.StatusNotFound, nil, &HTTPError{Code: http.StatusNotFound, Message: "no such function"}
	}

	args, err := h.decodeArgs(w, req, f)
	if err != nil {
		var httpErr *HTTPError
		stderrors.As(err, &httpErr)
		return httpErr.Code, nil, err
	}

	result, err := f.Call(req.Context(), args)
	if err != nil {
		h.cfg.Logger.Error("bridge function failed", "function", name, "error", err)
		return http.StatusInternalServerError, nil, &HTTPError{Code: http.StatusInternalServerError, Message: err.Error(), Err: err}
	}

	body, err := json.Marshal(result)
	if err != nil {
		h.cfg.Logger.Error("bridge result not encodable", "function", name, "error", err)
		return http.StatusInternalServerError, nil, &HTTPError{Code: http.StatusInternalServerError, Message: "result could not be encoded", Err: err}
	}
	return http.StatusOK, append(body, '\n'), nil
}

func (h *handler) decodeArgs(w http.ResponseWriter, req *http.Request, f *Function) ([]reflect.Value, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, req.Body, h.cfg.MaxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			return nil, &HTTPError{Code: http.StatusRequestEntityTooLarge, Message: "request body too large", Err: err}
		}
		return nil, &HTTPError{Code: http.StatusBadRequest, Message: "invalid request body", Err: err}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, &HTTPError{Code: http.StatusBadRequest, Message: "request body must be a JSON array of arguments", Err: err}
	}
	if len(elems) != f.Arity() {
		return nil, &HTTPError{Code: http.StatusBadRequest, Message: fmt.Sprintf("%s takes %d arguments, got %d", f.Name, f.Arity(), len(elems))}
	}

	args := make([]reflect.Value, len(elems))
	for i, elem := range elems {
		v := reflect.New(f.Params[i])
		if err := json.Unmarshal(elem, v.Interface()); err != nil {
			return nil, &HTTPError{Code: http.StatusBadRequest, Message: fmt.Sprintf("argument %d (%s): %v", i, f.ParamNames[i], err), Err: err}
		}
		args[i] = v.Elem()
	}
	return args, nil
}

func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	msg := err.Error()
	var httpErr *HTTPError
	if stderrors.As(err, &httpErr) {
		code = httpErr.Code
		msg = httpErr.Message
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
