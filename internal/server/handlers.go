package server

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"scanorder/internal/logger"
	"scanorder/internal/metrics"
	"scanorder/internal/ocr"
	"scanorder/internal/order"
	"scanorder/internal/storage"
)

const uploadField = "files"

// ReviewItem is one extracted upload shown on the review page.
type ReviewItem struct {
	Index      int
	File       string
	Text       string
	Diagnostic bool
}

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{"Title": "Upload purchase orders"})
}

// handleUpload stores and extracts every allowed file, then renders the review page.
func (s *Server) handleUpload(c *gin.Context) {
	log := logger.WithContext(c.Request.Context())

	files, err := uploadedFiles(c)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			renderError(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("Upload exceeds the %d byte limit.", tooLarge.Limit))
			return
		}
		log.Warn().Err(err).Msg("Failed to parse upload form")
		renderError(c, http.StatusBadRequest, "The upload could not be read.")
		return
	}

	results := make([]ReviewItem, 0, len(files))
	for _, fh := range files {
		if fh.Filename == "" || !storage.AllowedFile(fh.Filename) {
			metrics.RecordUpload(metrics.UploadSkipped)
			log.Debug().Str("filename", fh.Filename).Msg("Skipping file with unsupported extension")
			continue
		}

		item, err := s.processUpload(c, fh)
		if err != nil {
			metrics.RecordUpload(metrics.UploadFailed)
			log.Error().Err(err).Str("filename", fh.Filename).Msg("Failed to process upload")
			renderError(c, http.StatusInternalServerError, "The upload could not be processed.")
			return
		}
		item.Index = len(results)
		results = append(results, item)
	}

	log.Info().
		Int("received", len(files)).
		Int("accepted", len(results)).
		Msg("Uploads extracted")

	c.HTML(http.StatusOK, "edit.html", gin.H{
		"Title":   "Review extracted text",
		"Results": results,
	})
}

func (s *Server) processUpload(c *gin.Context, fh *multipart.FileHeader) (ReviewItem, error) {
	f, err := fh.Open()
	if err != nil {
		return ReviewItem{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	up, err := s.store.Save(f, fh.Filename)
	if err != nil {
		return ReviewItem{}, err
	}
	metrics.RecordUpload(metrics.UploadStored)

	res, err := s.extractor.Extract(c.Request.Context(), up.Path)
	if err != nil {
		return ReviewItem{}, err
	}

	return ReviewItem{
		File:       up.Name,
		Text:       res.Text,
		Diagnostic: res.Diagnostic(),
	}, nil
}

// uploadedFiles returns the parts posted under "files". A body that is not
// multipart at all counts as zero files.
func uploadedFiles(c *gin.Context) ([]*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return form.File[uploadField], nil
}

// handleSubmit validates each text_<idx> field and renders the generated sales orders.
// A file_<idx> value is kept only when it names a stored upload.
func (s *Server) handleSubmit(c *gin.Context) {
	log := logger.WithContext(c.Request.Context())

	form, err := postedForm(c)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to parse submission form")
		renderError(c, http.StatusBadRequest, "The submission could not be read.")
		return
	}

	fields := order.FieldsFromForm(form)
	for i := range fields {
		if fields[i].File == "" {
			continue
		}
		if _, ok := s.store.Lookup(fields[i].File); !ok {
			log.Warn().
				Str("index", fields[i].Index).
				Str("file", fields[i].File).
				Msg("Submitted file is not a stored upload")
			fields[i].File = ""
		}
	}

	entries := s.orders.Submit(c.Request.Context(), fields)

	c.HTML(http.StatusOK, "success.html", gin.H{
		"Title":   "Sales orders created",
		"Entries": entries,
	})
}

// postedForm returns the body fields of a urlencoded or multipart submission.
func postedForm(c *gin.Context) (map[string][]string, error) {
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, err
		}
		return form.Value, nil
	}
	if err := c.Request.ParseForm(); err != nil {
		return nil, err
	}
	return c.Request.PostForm, nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"ocr_engine":    s.extractor.EngineName(),
		"ocr_available": s.extractor.OCRAvailable(),
		"pdf_available": s.extractor.PDFAvailable(),
		"diagnostics": gin.H{
			"ocr": diagnosticFor(s.extractor.OCRAvailable(), ocr.NotInstalledOCR),
			"pdf": diagnosticFor(s.extractor.PDFAvailable(), ocr.NotInstalledPDF),
		},
	})
}

func diagnosticFor(available bool, message string) string {
	if available {
		return ""
	}
	return message
}
