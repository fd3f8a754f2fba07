package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/okian/swatch/internal/domain/analysis"
	"github.com/okian/swatch/internal/domain/model"
	"github.com/okian/swatch/internal/domain/region"
)

// ClassifyRequest is the JSON body of POST /v1/classify.
type ClassifyRequest struct {
	ImageBase64 string               `json:"image_base64,omitempty"`
	ImageURL    string               `json:"image_url,omitempty"`
	Crop        *model.Region        `json:"crop,omitempty"`
	FaceBox     *model.NormalizedBox `json:"face_box,omitempty"`
}

// ClassifyHandler handles classification requests.
type ClassifyHandler struct {
	deps Dependencies
}

// NewClassifyHandler creates a new classify handler.
func NewClassifyHandler(deps Dependencies) *ClassifyHandler {
	return &ClassifyHandler{deps: deps}
}

// HandleClassify handles POST /v1/classify with a JSON or multipart body.
func (h *ClassifyHandler) HandleClassify(c *gin.Context) {
	const op = "classify"

	mediaType, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if err != nil {
		mediaType = ""
	}

	var req analysis.Request
	switch mediaType {
	case gin.MIMEJSON:
		req, err = decodeJSONClassify(c)
	case gin.MIMEMultipartPOSTForm:
		req, err = decodeMultipartClassify(c)
	default:
		writeCode(c, http.StatusUnsupportedMediaType, codeUnsupportedCT,
			"content type must be application/json or multipart/form-data", false)
		return
	}
	if err != nil {
		h.fail(c, op, err)
		return
	}

	res, err := h.deps.Classify(c.Request.Context(), req)
	if err != nil {
		h.fail(c, op, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ClassifyHandler) fail(c *gin.Context, op string, err error) {
	err = wrapOp(c, op, err)
	_ = c.Error(err)
	writeError(c, err)
}

func decodeJSONClassify(c *gin.Context) (analysis.Request, error) {
	var body ClassifyRequest
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		return analysis.Request{}, bodyError(err)
	}

	hasImage := body.ImageBase64 != ""
	hasURL := strings.TrimSpace(body.ImageURL) != ""
	switch {
	case hasImage && hasURL:
		return analysis.Request{}, fmt.Errorf("%w: image_base64 and image_url are mutually exclusive", ErrBadRequest)
	case !hasImage && !hasURL:
		return analysis.Request{}, fmt.Errorf("%w: one of image_base64 or image_url is required", ErrBadRequest)
	}

	if err := checkCrop(body.Crop); err != nil {
		return analysis.Request{}, err
	}
	req := analysis.Request{
		ImageURL: strings.TrimSpace(body.ImageURL),
		Crop:     body.Crop,
		FaceBox:  body.FaceBox,
	}
	if hasImage {
		img, err := decodeBase64(body.ImageBase64)
		if err != nil {
			return analysis.Request{}, err
		}
		req.Image = img
	}
	return req, nil
}

func decodeMultipartClassify(c *gin.Context) (analysis.Request, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return analysis.Request{}, bodyError(fmt.Errorf("image file: %w", err))
	}
	f, err := fh.Open()
	if err != nil {
		return analysis.Request{}, fmt.Errorf("%w: image file: %v", ErrBadRequest, err)
	}
	defer f.Close()

	img, err := io.ReadAll(f)
	if err != nil {
		return analysis.Request{}, bodyError(err)
	}
	if len(img) == 0 {
		return analysis.Request{}, fmt.Errorf("%w: image file is empty", ErrBadRequest)
	}

	req := analysis.Request{Image: img}
	if raw := c.PostForm("crop"); raw != "" {
		var crop model.Region
		if err := json.Unmarshal([]byte(raw), &crop); err != nil {
			return analysis.Request{}, fmt.Errorf("%w: crop: %v", ErrBadRequest, err)
		}
		if err := checkCrop(&crop); err != nil {
			return analysis.Request{}, err
		}
		req.Crop = &crop
	}
	if raw := c.PostForm("face_box"); raw != "" {
		var box model.NormalizedBox
		if err := json.Unmarshal([]byte(raw), &box); err != nil {
			return analysis.Request{}, fmt.Errorf("%w: face_box: %v", ErrBadRequest, err)
		}
		req.FaceBox = &box
	}
	return req, nil
}

func checkCrop(crop *model.Region) error {
	if crop != nil && (crop.Width <= 0 || crop.Height <= 0) {
		return fmt.Errorf("%w: crop width and height must be positive", region.ErrInvalidCropBox)
	}
	return nil
}

// decodeBase64 accepts standard or raw encodings and an optional data URI prefix.
func decodeBase64(s string) ([]byte, error) {
	if i := strings.Index(s, ";base64,"); strings.HasPrefix(s, "data:") && i > 0 {
		s = s[i+len(";base64,"):]
	}
	s = strings.TrimSpace(s)
	img, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		img, err = base64.RawStdEncoding.DecodeString(s)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: image_base64: %v", ErrBadRequest, err)
	}
	if len(img) == 0 {
		return nil, fmt.Errorf("%w: image_base64 is empty", ErrBadRequest)
	}
	return img, nil
}

// bodyError keeps MaxBytesError visible to writeError and tags the rest as bad requests.
func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrBadRequest, err)
}
