package uploadmw

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_backend/internal/logging"
	"github.com/Skotchmaster/shop_backend/internal/transport"
)

const (
	FieldName   = "image"
	MaxFileSize = 5 << 20

	fileKey = "upload_image"
	// room for the other form fields and multipart framing
	bodySlack = 1 << 20
)

// SingleImage accepts at most one file, in the "image" field, and keeps it in
// memory for the handler. Requests without a file pass through untouched.
func SingleImage(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		if !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
			return next(c)
		}
		l := logging.FromContext(req.Context()).With("middleware", "upload")

		req.Body = http.MaxBytesReader(c.Response(), req.Body, MaxFileSize+bodySlack)
		form, err := c.MultipartForm()
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				l.Warn("upload_rejected", "status", 413, "reason", "body too large")
				return reject(c, http.StatusRequestEntityTooLarge, "File too large")
			}
			l.Warn("upload_rejected", "status", 400, "reason", "malformed multipart", "error", err)
			return reject(c, http.StatusBadRequest, "Malformed multipart form")
		}

		for field, files := range form.File {
			if field != FieldName || len(files) > 1 {
				l.Warn("upload_rejected", "status", 400, "reason", "unexpected field", "field", field)
				return reject(c, http.StatusBadRequest, "Unexpected field")
			}
		}

		files := form.File[FieldName]
		if len(files) == 0 {
			return next(c)
		}
		fh := files[0]
		if fh.Size > MaxFileSize {
			l.Warn("upload_rejected", "status", 413, "reason", "file too large", "size", fh.Size)
			return reject(c, http.StatusRequestEntityTooLarge, "File too large")
		}

		f, err := fh.Open()
		if err != nil {
			return err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return err
		}

		contentType := fh.Header.Get(echo.HeaderContentType)
		if contentType == "" || contentType == echo.MIMEOctetStream {
			contentType = mimetype.Detect(data).String()
		}
		if !strings.HasPrefix(contentType, "image/") {
			l.Warn("upload_rejected", "status", 400, "reason", "not an image", "content_type", contentType)
			return reject(c, http.StatusBadRequest, "Only image files are allowed!")
		}

		c.Set(fileKey, &transport.ImageFile{
			Filename:    fh.Filename,
			ContentType: contentType,
			Data:        data,
		})
		return next(c)
	}
}

// ImageFrom returns the file stored by SingleImage, or nil.
func ImageFrom(c echo.Context) *transport.ImageFile {
	img, _ := c.Get(fileKey).(*transport.ImageFile)
	return img
}

func reject(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"message": msg})
}
