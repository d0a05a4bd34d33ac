package request

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/okian/techmentor/internal/adapters/poster"
	service "github.com/okian/techmentor/internal/app"
)

// Form field names.
const (
	FieldOrganizer  = "organizer"
	FieldMessage    = "message"
	FieldPoster     = "poster"
	FieldOffline    = "offline"
	FieldReflection = "reflection"
)

// Sentinel errors for form parsing.
var (
	ErrBadForm         = errors.New("malformed form")
	ErrUnsupportedFile = errors.New("poster must be a png, jpg or jpeg file")
)

// allowedExtensions are the poster uploads accepted by the form.
var allowedExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

// ParseAnalyze reads the analyse form. Every field is optional; a poster,
// when present, is decoded and normalised before it reaches the service.
func ParseAnalyze(r *http.Request, sessionID string, maxBytes int64) (service.AnalyzeRequest, error) {
	req := service.AnalyzeRequest{SessionID: sessionID}

	// The multipart limit bounds memory; the poster limit is enforced on decode.
	if err := parseForm(r, maxBytes); err != nil {
		return req, err
	}

	req.Organizer = r.FormValue(FieldOrganizer)
	req.Message = r.FormValue(FieldMessage)
	req.Offline = Checked(r.FormValue(FieldOffline))

	file, header, err := r.FormFile(FieldPoster)
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return req, nil
	case err != nil:
		return req, fmt.Errorf("%w: %w", ErrBadForm, err)
	}
	defer file.Close()

	img, err := decodePoster(file, header, maxBytes)
	if err != nil {
		return req, err
	}
	req.Poster = img
	return req, nil
}

func decodePoster(file multipart.File, header *multipart.FileHeader, maxBytes int64) (*poster.Image, error) {
	if header.Size == 0 && header.Filename == "" {
		return nil, nil
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return nil, ErrUnsupportedFile
	}
	img, err := poster.Decode(file, maxBytes)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// ParseForm parses a urlencoded or multipart body.
func ParseForm(r *http.Request, maxBytes int64) error {
	return parseForm(r, maxBytes)
}

func parseForm(r *http.Request, maxBytes int64) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			return fmt.Errorf("%w: %w", ErrBadForm, err)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%w: %w", ErrBadForm, err)
	}
	return nil
}

// Checked interprets a checkbox or boolean form value.
func Checked(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	if strings.EqualFold(v, "on") || strings.EqualFold(v, "yes") {
		return true
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
