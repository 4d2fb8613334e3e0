package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xraph/tally"
	"github.com/xraph/tally/id"
)

// maxBody caps request bodies; backups are the largest payloads.
const maxBody = 32 << 20

var errBadRequest = fmt.Errorf("%w: malformed request", tally.ErrInvalidInput)

type errorBody struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload) //nolint:errcheck // the client went away
}

// fail maps err onto a status: NotFound 404, conflicts 409, bad input 400,
// anything else 500 with the detail kept in the log.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case tally.IsNotFound(err):
		status = http.StatusNotFound
	case tally.IsConflict(err):
		status = http.StatusConflict
	case tally.IsInvalid(err):
		status = http.StatusBadRequest
	default:
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}

	body := errorBody{Error: err.Error()}
	var multi tally.MultiError
	if errors.As(err, &multi) {
		for _, e := range multi.Errors {
			var ve tally.ValidationError
			if errors.As(e, &ve) {
				body.Fields = append(body.Fields, ve.Field)
			}
		}
	}
	respondJSON(w, status, body)
}

// decode reads a JSON body into dst, refusing unknown fields.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return nil
}

// pathID parses the {id} URL parameter. Legacy numeric IDs are accepted.
func pathID(r *http.Request) (id.ID, error) {
	v, err := id.ParseAny(chi.URLParam(r, "id"))
	if err != nil {
		return id.ID{}, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return v, nil
}

// queryID parses an optional ID query parameter; absent means the nil ID.
func queryID(r *http.Request, key string) (id.ID, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return id.ID{}, nil
	}
	v, err := id.ParseAny(s)
	if err != nil {
		return id.ID{}, fmt.Errorf("%w: %s: %w", errBadRequest, key, err)
	}
	return v, nil
}

func queryBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key)) //nolint:errcheck // anything unparsable is false
	return b
}

// ──────────────────────────────────────────────────
// Generic record handlers
// ──────────────────────────────────────────────────

func getOne[T any](h *Handler, get func(context.Context, id.ID) (*T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := pathID(r)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		rec, err := get(r.Context(), v)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, rec)
	}
}

func create[T any](h *Handler, fn func(context.Context, *T) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := new(T)
		if err := decode(r, rec); err != nil {
			h.fail(w, r, err)
			return
		}
		if err := fn(r.Context(), rec); err != nil {
			h.fail(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, rec)
	}
}

// patch merges a partial JSON object onto the stored record. The body is
// tried against a copy first so a bad field never reaches the engine.
func patch[T any](
	h *Handler,
	get func(context.Context, id.ID) (*T, error),
	update func(context.Context, id.ID, func(*T)) (*T, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := pathID(r)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
		if err != nil {
			h.fail(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
			return
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(body, &fields); err != nil {
			h.fail(w, r, fmt.Errorf("%w: body must be a JSON object", errBadRequest))
			return
		}

		current, err := get(r.Context(), v)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if err := json.Unmarshal(body, current); err != nil {
			h.fail(w, r, fmt.Errorf("%w: %w", errBadRequest, err))
			return
		}

		updated, err := update(r.Context(), v, func(rec *T) {
			_ = json.Unmarshal(body, rec) //nolint:errcheck // already decoded once above
		})
		if err != nil {
			h.fail(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, updated)
	}
}

func remove(h *Handler, del func(context.Context, id.ID) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := pathID(r)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if err := del(r.Context(), v); err != nil {
			h.fail(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// list responds with recs, or an empty array when there are none.
func list[T any](h *Handler, w http.ResponseWriter, r *http.Request, recs []*T, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if recs == nil {
		recs = []*T{}
	}
	respondJSON(w, http.StatusOK, recs)
}
