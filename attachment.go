package sitebook

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"mime"
	"path"
	"slices"
	"strconv"
	"strings"
)

const (
	// MaxFileSize is the largest file that can be attached, in bytes.
	MaxFileSize = 5 * 1024 * 1024
	// MaxAttachments is the default number of files per payment.
	MaxAttachments = 5
)

// AllowedFileTypes are the MIME types that can be attached.
var AllowedFileTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/webp",
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"text/plain",
	"text/csv",
}

// extensionTypes maps the extensions offered by the upload dialog.
var extensionTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".txt":  "text/plain",
	".csv":  "text/csv",
}

var (
	ErrNoFile          = errors.New("no file selected")
	ErrFileTooLarge    = fmt.Errorf("file size must be less than %dMB", MaxFileSize/1024/1024)
	ErrUnsupportedType = errors.New("file type not supported")
	ErrTooManyFiles    = errors.New("too many files")
)

// MimeType returns the MIME type of a file name, without parameters, or ""
// when unknown.
func MimeType(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	t, _, err := mime.ParseMediaType(mime.TypeByExtension(ext))
	if err != nil {
		return ""
	}
	return t
}

// ValidateFile checks a file before it is encoded.
func ValidateFile(name, mimeType string, size int64) error {
	if name == "" {
		return ErrNoFile
	}
	if size > MaxFileSize {
		return fmt.Errorf("%s: %w", name, ErrFileTooLarge)
	}
	if !slices.Contains(AllowedFileTypes, mimeType) {
		return fmt.Errorf("%s (%s): %w", name, mimeType, ErrUnsupportedType)
	}
	return nil
}

// Upload is the state of a file being attached. It is one of PendingUpload,
// EncodedUpload or FailedUpload.
type Upload interface {
	FileName() string
	upload()
}

// PendingUpload is a file selected but not read yet.
type PendingUpload struct {
	Path string
}

// EncodedUpload is a file validated and encoded, ready to be attached.
type EncodedUpload struct {
	Attachment Attachment
}

// FailedUpload is a file that could not be read, validated or encoded.
type FailedUpload struct {
	Name string
	Err  error
}

func (u PendingUpload) FileName() string { return path.Base(u.Path) }
func (u EncodedUpload) FileName() string { return u.Attachment.Name }
func (u FailedUpload) FileName() string  { return u.Name }

func (PendingUpload) upload() {}
func (EncodedUpload) upload() {}
func (FailedUpload) upload()  {}

// Encode reads the pending file from fsys, validates and encodes it. The
// read runs to completion: there is no cancellation.
func (u PendingUpload) Encode(fsys fs.FS) Upload {
	name := u.FileName()
	info, err := fs.Stat(fsys, u.Path)
	if err != nil {
		return FailedUpload{Name: name, Err: fmt.Errorf("failed to read file: %w", err)}
	}
	// validate on the size before reading a file that will be rejected.
	mimeType := MimeType(name)
	if err := ValidateFile(name, mimeType, info.Size()); err != nil {
		return FailedUpload{Name: name, Err: err}
	}
	content, err := fs.ReadFile(fsys, u.Path)
	if err != nil {
		return FailedUpload{Name: name, Err: fmt.Errorf("failed to read file: %w", err)}
	}
	return EncodeBytes(name, mimeType, content)
}

// EncodeBytes validates and encodes an in-memory file.
func EncodeBytes(name, mimeType string, content []byte) Upload {
	if err := ValidateFile(name, mimeType, int64(len(content))); err != nil {
		return FailedUpload{Name: name, Err: err}
	}
	return EncodedUpload{Attachment: Attachment{
		ID:         NewID(),
		Name:       name,
		Type:       mimeType,
		Size:       int64(len(content)),
		Data:       DataURL(mimeType, content),
		UploadedAt: timeNow(),
	}}
}

// Attach appends the encoded uploads to existing. The whole batch is
// rejected with ErrTooManyFiles when it would exceed limit files; otherwise
// failed uploads are skipped and reported in the returned error, alongside
// the attachments that made it.
func Attach(existing []Attachment, uploads []Upload, limit int) ([]Attachment, error) {
	if limit <= 0 {
		limit = MaxAttachments
	}
	if len(existing)+len(uploads) > limit {
		return existing, fmt.Errorf("maximum %d files allowed: %w", limit, ErrTooManyFiles)
	}
	attachments := slices.Clip(existing)
	var errs error
	for _, u := range uploads {
		switch u := u.(type) {
		case EncodedUpload:
			attachments = append(attachments, u.Attachment)
		case FailedUpload:
			errs = errors.Join(errs, u.Err)
		case PendingUpload:
			errs = errors.Join(errs, fmt.Errorf("%s: not encoded", u.FileName()))
		}
	}
	return nonNil(attachments), errs
}

// Detach removes the attachment id.
func Detach(attachments []Attachment, id string) []Attachment {
	return slices.DeleteFunc(slices.Clone(attachments), func(a Attachment) bool { return a.ID == id })
}

// DataURL encodes content as a self-describing inline payload.
func DataURL(mimeType string, content []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(content)
}

// DecodeData decodes an attachment payload back into its MIME type and
// content.
func DecodeData(data string) (mimeType string, content []byte, err error) {
	rest, ok := strings.CutPrefix(data, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URL")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data URL")
	}
	header, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("unsupported data URL encoding")
	}
	content, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URL: %w", err)
	}
	return header, content, nil
}

// FormatFileSize renders a size like "1.5 KB".
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	sizes := []string{"Bytes", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	i = min(i, len(sizes)-1)
	v := math.Round(float64(bytes)/math.Pow(1024, float64(i))*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizes[i]
}

// FileExtension returns the extension of name without the dot. Names
// without a dot, or whose only dot is the first character, have none.
func FileExtension(name string) string {
	i := strings.LastIndex(name, ".")
	if i <= 0 {
		return ""
	}
	return name[i+1:]
}

func IsImage(mimeType string) bool { return strings.HasPrefix(mimeType, "image/") }
func IsPDF(mimeType string) bool   { return mimeType == "application/pdf" }
