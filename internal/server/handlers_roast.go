package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/bobmcallan/roastme/internal/models"
)

// maxRoastBody caps a roast request: one image plus room for multipart framing.
const maxRoastBody = models.MaxImageBytes + 1<<20

type roastRequest struct {
	Bio string `json:"bio"`
}

type roastResponse struct {
	Roast string `json:"roast"`
}

// handleRoast handles POST /api/roast with either a JSON bio or a multipart image.
func (s *Server) handleRoast(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	uc := requireIdentity(w, r)
	if uc == nil {
		return
	}

	input, err := parseRoastInput(w, r)
	if err != nil {
		input = models.MalformedInput{Err: err}
	}

	roast, err := s.app.RoastService.Generate(r.Context(), uc.IdentityRef, input)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	s.logger.Info().
		Str("identity", uc.IdentityRef).
		Str("input", string(roast.Input)).
		Str("model", roast.Model).
		Msg("Roast served")

	WriteJSON(w, http.StatusOK, roastResponse{Roast: roast.Text})
}

// parseRoastInput decodes the request body into a RoastInput variant.
// Only structural problems fail here (content type, malformed JSON, body over
// the transport cap). The caller hands them to the service as a MalformedInput
// so they surface after the availability and quota checks, like the content
// rules in each input's Validate.
func parseRoastInput(w http.ResponseWriter, r *http.Request) (models.RoastInput, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = ""
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRoastBody)

	switch mediaType {
	case "application/json":
		var req roastRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			if isBodyTooLarge(err) {
				return nil, bodyTooLarge(err)
			}
			return nil, models.WrapError(models.ErrInvalidInput, "Invalid JSON body.", err)
		}
		return models.BioInput{Bio: req.Bio}, nil

	case "multipart/form-data":
		return parseImagePart(r)

	default:
		return nil, models.NewError(models.ErrUnsupportedMedia, "Unsupported Content-Type. Use application/json or multipart/form-data.")
	}
}

// parseImagePart streams the multipart body looking for the "image" file
// part. At most MaxImageBytes+1 bytes are kept so oversize uploads are still
// reported by ImageInput.Validate. A missing or non-file "image" field yields
// an empty ImageInput.
func parseImagePart(r *http.Request) (models.RoastInput, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, models.WrapError(models.ErrInvalidInput, "Invalid multipart form data.", err)
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return models.ImageInput{}, nil
		}
		if err != nil {
			if isBodyTooLarge(err) {
				return nil, bodyTooLarge(err)
			}
			return nil, models.WrapError(models.ErrInvalidInput, "Invalid multipart form data.", err)
		}

		if part.FormName() != "image" || part.FileName() == "" {
			part.Close()
			continue
		}

		data, err := io.ReadAll(io.LimitReader(part, models.MaxImageBytes+1))
		part.Close()
		if err != nil {
			if isBodyTooLarge(err) {
				return nil, bodyTooLarge(err)
			}
			return nil, models.WrapError(models.ErrInvalidInput, "Invalid multipart form data.", err)
		}

		return models.ImageInput{
			Data:      data,
			MediaType: part.Header.Get("Content-Type"),
		}, nil
	}
}

func isBodyTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}

func bodyTooLarge(err error) error {
	return models.WrapError(models.ErrPayloadTooLarge, "Request body too large.", err)
}
