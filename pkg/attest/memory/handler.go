package memory

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/goliatone/go-attestform/pkg/attest"
)

const maxBodyBytes = 1 << 20

// HandlerOption configures NewHandler.
type HandlerOption func(*handler)

// WithSigningKey requires every request to carry a valid body signature.
func WithSigningKey(key string) HandlerOption {
	return func(h *handler) {
		h.key = key
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(logger *zap.Logger) HandlerOption {
	return func(h *handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

type handler struct {
	client attest.Client
	key    string
	logger *zap.Logger
}

// NewHandler serves the attestation wire protocol spoken by the remote
// client on top of any attest.Client:
//
//	POST /schemas          {"name", "data": [{"name","type"}]} -> {"schemaId"}
//	GET  /schemas/{id}     -> {"schemaId","name","data"}
//	POST /attestations     {"schemaId","data": {...}} -> {"attestationId"}
func NewHandler(client attest.Client, options ...HandlerOption) http.Handler {
	h := &handler{client: client, logger: zap.NewNop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(h)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /schemas", h.createSchema)
	mux.HandleFunc("GET /schemas/{id}", h.getSchema)
	mux.HandleFunc("POST /attestations", h.createAttestation)
	return mux
}

func (h *handler) createSchema(w http.ResponseWriter, r *http.Request) {
	var spec attest.SchemaSpec
	if !h.decode(w, r, &spec) {
		return
	}
	result, err := h.client.CreateSchema(r.Context(), spec)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, http.StatusCreated, result)
}

func (h *handler) getSchema(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, nil) {
		return
	}
	found, err := h.client.GetSchema(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, http.StatusOK, found)
}

func (h *handler) createAttestation(w http.ResponseWriter, r *http.Request) {
	var req attest.AttestationRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.client.CreateAttestation(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.write(w, http.StatusCreated, result)
}

func (h *handler) decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "read body")
		return false
	}
	if !h.authorize(w, r, body) {
		return false
	}
	if err := json.Unmarshal(body, dest); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid json payload")
		return false
	}
	return true
}

// authorize verifies the signature over the method, path, mode and chain
// headers and the body (empty for GET requests).
func (h *handler) authorize(w http.ResponseWriter, r *http.Request, body []byte) bool {
	if h.key == "" {
		return true
	}
	if !attest.VerifySignature(h.key, attest.RequestToSign(r, body), r.Header.Get(attest.HeaderSignature)) {
		h.writeError(w, http.StatusUnauthorized, "invalid signature")
		return false
	}
	return true
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, attest.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, attest.ErrInvalidRequest):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, attest.ErrUnauthorized):
		status = http.StatusUnauthorized
	}
	h.logger.Debug("attest request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err))
	h.writeError(w, status, err.Error())
}

func (h *handler) writeError(w http.ResponseWriter, status int, message string) {
	h.write(w, status, map[string]string{"error": message})
}

func (h *handler) write(w http.ResponseWriter, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("encode attest response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		h.logger.Debug("write attest response", zap.Error(err))
	}
}
