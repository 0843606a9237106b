package remote

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/weftbuild/weft/pkg/object"
	"github.com/weftbuild/weft/pkg/store"
)

// maxObjectBody caps PUT request bodies.
const maxObjectBody = 64 << 20

// Server exposes a local object store over the exchange protocol:
//
//	HEAD /weft/v1/objects/{id}  presence check
//	GET  /weft/v1/objects/{id}  encoded object bytes
//	PUT  /weft/v1/objects/{id}  upload one encoded object
//
// Uploads are decoded and re-stored, so the server only ever persists
// bytes whose content id it has verified itself.
type Server struct {
	store *store.Store
	log   *slog.Logger
}

// NewServer creates a Server over the given store.
func NewServer(s *store.Store, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{store: s, log: log}
}

func (srv *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, objectsPath) {
		http.NotFound(w, r)
		return
	}
	id := object.ID(strings.TrimPrefix(r.URL.Path, objectsPath))
	if err := ValidateID(id); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set(headerProtocol, ProtocolVersion)

	switch r.Method {
	case http.MethodHead:
		if !srv.store.Has(id) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)

	case http.MethodGet:
		payload, err := srv.store.Load(r.Context(), id)
		if err != nil {
			if errors.Is(err, object.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			srv.log.Error("load object", "id", id, "error", err)
			http.Error(w, "load object", http.StatusInternalServerError)
			return
		}
		encoded, err := store.Encode(r.Context(), srv.store, payload)
		if err != nil {
			srv.log.Error("encode object", "id", id, "error", err)
			http.Error(w, "encode object", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(encoded)

	case http.MethodPut:
		body, err := io.ReadAll(io.LimitReader(r.Body, maxObjectBody+1))
		if err != nil {
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}
		if len(body) > maxObjectBody {
			http.Error(w, "object too large", http.StatusRequestEntityTooLarge)
			return
		}
		payload, err := store.Decode(body)
		if err != nil {
			http.Error(w, "decode object", http.StatusBadRequest)
			return
		}
		stored, err := srv.store.Store(r.Context(), payload)
		if err != nil {
			srv.log.Error("store object", "id", id, "error", err)
			http.Error(w, "store object", http.StatusInternalServerError)
			return
		}
		if stored != id {
			http.Error(w, "content does not match id", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)

	default:
		w.Header().Set("Allow", "HEAD, GET, PUT")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
