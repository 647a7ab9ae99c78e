package handlers

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"

	"github.com/brightlux/storefront-backend/internal/db"
	"github.com/brightlux/storefront-backend/internal/logging"
	"github.com/brightlux/storefront-backend/internal/media"
	"github.com/brightlux/storefront-backend/internal/services"
	"github.com/gorilla/mux"
)

// attachment describes the uploaded file(s) an entity references.
type attachment[T any] struct {
	field  string
	folder string
	multi  bool
	get    func(*T) []string
	set    func(*T, []string)
	clear  func(*T)
}

// resource serves list/create at the collection root and get/update/delete at
// /{id} for one entity type.
type resource[T any, P db.Doc[T]] struct {
	svc      *services.ContentService[T, P]
	log      logging.Logger
	uploader *media.Uploader
	maxBytes int64
	files    *attachment[T]
	// create overrides svc.Add for entities with extra rules on creation.
	create func(context.Context, *T) (*T, error)
}

func (h *resource[T, P]) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.GetAll(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *resource[T, P]) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *resource[T, P]) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doc := new(T)
	var uploaded []string

	if h.files != nil && isMultipart(r) {
		if err := parseMultipart(w, r, h.maxBytes); err != nil {
			writeError(w, r, h.log, err)
			return
		}
		if err := decodeForm(r, doc); err != nil {
			writeError(w, r, h.log, err)
			return
		}
		// Reject bad payloads before anything reaches storage.
		if err := services.Validate(doc); err != nil {
			writeError(w, r, h.log, err)
			return
		}
		urls, err := h.uploadAll(ctx, r.MultipartForm.File[h.files.field])
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		if len(urls) > 0 {
			h.files.set(doc, urls)
			uploaded = urls
		}
	} else {
		if err := decodeJSON(w, r, doc, false); err != nil {
			writeError(w, r, h.log, err)
			return
		}
		if h.files != nil {
			// Attachments only ever point at objects uploaded with the request.
			h.files.clear(doc)
		}
	}

	create := h.svc.Add
	if h.create != nil {
		create = h.create
	}
	created, err := create(ctx, doc)
	if err != nil {
		h.removeAll(ctx, uploaded)
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *resource[T, P]) Update(w http.ResponseWriter, r *http.Request) {
	if h.files != nil && isMultipart(r) {
		h.updateMultipart(w, r)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := unmarshal(body, new(T), false); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	updated, err := h.svc.Update(r.Context(), mux.Vars(r)["id"], func(doc *T) error {
		// Unmarshalling onto the stored document only overwrites the
		// fields present in the body.
		return json.Unmarshal(body, doc)
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *resource[T, P]) updateMultipart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	if err := parseMultipart(w, r, h.maxBytes); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	current, err := h.svc.GetByID(ctx, id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := decodeForm(r, current); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := services.Validate(current); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	apply := func(urls []string) (*T, error) {
		return h.svc.Update(ctx, id, func(doc *T) error {
			if err := decodeForm(r, doc); err != nil {
				return err
			}
			if urls != nil {
				h.files.set(doc, urls)
			}
			return nil
		})
	}

	var updated *T
	headers := r.MultipartForm.File[h.files.field]
	old := h.files.get(current)
	switch {
	case len(headers) == 0:
		updated, err = apply(nil)
	case !h.files.multi && len(old) == 1:
		f, closer, ferr := media.FromMultipart(headers[0])
		if ferr != nil {
			writeError(w, r, h.log, ferr)
			return
		}
		// The previous object goes only once the document points elsewhere.
		_, err = h.uploader.ReplaceWith(ctx, h.files.folder, f, old[0], func(url string) error {
			var uerr error
			updated, uerr = apply([]string{url})
			return uerr
		})
		closer.Close()
	default:
		urls, uerr := h.uploadAll(ctx, headers)
		if uerr != nil {
			writeError(w, r, h.log, uerr)
			return
		}
		if updated, err = apply(urls); err != nil {
			h.removeAll(ctx, urls)
		} else {
			h.removeAll(ctx, old)
		}
	}
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *resource[T, P]) Delete(w http.ResponseWriter, r *http.Request) {
	removed, err := h.svc.Delete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if h.files != nil {
		h.removeAll(r.Context(), h.files.get(removed))
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": mux.Vars(r)["id"]})
}

// uploadAll stores every file, or none of them.
func (h *resource[T, P]) uploadAll(ctx context.Context, headers []*multipart.FileHeader) ([]string, error) {
	if !h.files.multi && len(headers) > 1 {
		headers = headers[:1]
	}
	urls := make([]string, 0, len(headers))
	for _, fh := range headers {
		f, closer, err := media.FromMultipart(fh)
		if err != nil {
			h.removeAll(ctx, urls)
			return nil, err
		}
		url, err := h.uploader.Upload(ctx, h.files.folder, f)
		closer.Close()
		if err != nil {
			h.removeAll(ctx, urls)
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (h *resource[T, P]) removeAll(ctx context.Context, urls []string) {
	for _, u := range urls {
		h.uploader.Remove(ctx, u)
	}
}

// single adapts a one-URL field to an attachment.
func single[T any](field, folder string, ptr func(*T) *string) *attachment[T] {
	return &attachment[T]{
		field:  field,
		folder: folder,
		get: func(doc *T) []string {
			if v := *ptr(doc); v != "" {
				return []string{v}
			}
			return nil
		},
		set:   func(doc *T, urls []string) { *ptr(doc) = urls[0] },
		clear: func(doc *T) { *ptr(doc) = "" },
	}
}

func many[T any](field, folder string, ptr func(*T) *[]string) *attachment[T] {
	return &attachment[T]{
		field:  field,
		folder: folder,
		multi:  true,
		get:    func(doc *T) []string { return *ptr(doc) },
		set:    func(doc *T, urls []string) { *ptr(doc) = urls },
		clear:  func(doc *T) { *ptr(doc) = nil },
	}
}
