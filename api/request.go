package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rpupo63/blog-platform-backend/errs"
	"github.com/rpupo63/blog-platform-backend/services"
)

const (
	maxJSONBodyBytes      = 1 << 20
	multipartMemoryBytes  = 8 << 20
	multipartFormOverhead = 1 << 20
	imageFormField        = "image"
)

// parseIDParam reads a UUID path parameter.
func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return uuid.Nil, errs.NewMissingRequiredFieldError(name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.NewInvalidFieldError(name, "must be a UUID")
	}
	return id, nil
}

func mediaType(r *http.Request) string {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return mt
}

func bodyError(err error, limit int64, payloadType string) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errs.NewMaxBodySizeExceededError(limit)
	}
	return errs.NewMalformedPayloadError(payloadType, err)
}

// formFields holds text fields, recording which were present at all.
type formFields map[string]*string

func (f formFields) value(name string) string {
	if v := f[name]; v != nil {
		return *v
	}
	return ""
}

// parsedBody is a request body decoded from JSON, urlencoded or multipart form data.
type parsedBody struct {
	fields formFields
	image  *services.ImageFile
	close  func()
}

// parseBody decodes the named string fields. Only multipart bodies may carry an image.
func parseBody(w http.ResponseWriter, r *http.Request, maxUploadBytes int64, names ...string) (*parsedBody, error) {
	body := &parsedBody{fields: formFields{}, close: func() {}}

	switch mediaType(r) {
	case "multipart/form-data":
		limit := maxUploadBytes + multipartFormOverhead
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		if err := r.ParseMultipartForm(multipartMemoryBytes); err != nil {
			return nil, bodyError(err, maxUploadBytes, "multipart")
		}
		form := r.MultipartForm
		for _, name := range names {
			if values, ok := form.Value[name]; ok && len(values) > 0 {
				v := values[0]
				body.fields[name] = &v
			}
		}

		file, header, err := r.FormFile(imageFormField)
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			_ = form.RemoveAll()
			return nil, errs.NewMalformedPayloadError("multipart", err)
		default:
			if header.Size > maxUploadBytes {
				_ = file.Close()
				_ = form.RemoveAll()
				return nil, errs.NewMaxBodySizeExceededError(maxUploadBytes)
			}
			body.image = &services.ImageFile{Name: header.Filename, Body: file}
		}
		body.close = func() {
			if body.image != nil {
				if f, ok := body.image.Body.(multipart.File); ok {
					_ = f.Close()
				}
			}
			_ = form.RemoveAll()
		}

	case "application/x-www-form-urlencoded":
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
		if err := r.ParseForm(); err != nil {
			return nil, bodyError(err, maxJSONBodyBytes, "form")
		}
		for _, name := range names {
			if values, ok := r.PostForm[name]; ok && len(values) > 0 {
				v := values[0]
				body.fields[name] = &v
			}
		}

	default:
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errs.NewMalformedPayloadError("json", errors.New("empty body"))
			}
			return nil, bodyError(err, maxJSONBodyBytes, "json")
		}
		for _, name := range names {
			msg, ok := raw[name]
			if !ok || string(msg) == "null" {
				continue
			}
			var v string
			if err := json.Unmarshal(msg, &v); err != nil {
				return nil, errs.NewInvalidFieldError(name, "must be a string")
			}
			body.fields[name] = &v
		}
	}

	return body, nil
}
