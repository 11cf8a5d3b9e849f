package archive

import (
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"
)

var allowedContentTypes = map[string]bool{
	"image/png":          true,
	"image/jpeg":         true,
	"image/gif":          true,
	"application/pdf":    true,
	"image/webp":         true,
	"video/mp4":          true,
	"video/quicktime":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// ErrContentTypeNotAllowed is wrapped by NewTicketFile for disallowed MIME types.
var ErrContentTypeNotAllowed = errors.New("file type not allowed")

// TicketFile is one archived attachment. Rows are append-only.
type TicketFile struct {
	id          uint
	metadataID  uint
	externalID  string
	filename    string
	contentType string
	data        []byte
	createdAt   time.Time
}

// NewTicketFile validates an attachment for storage. externalID is the
// platform attachment id and may be empty.
func NewTicketFile(metadataID uint, externalID, filename, contentType string, data []byte) (*TicketFile, error) {
	if metadataID == 0 {
		return nil, fmt.Errorf("metadata ID is required")
	}
	if strings.TrimSpace(filename) == "" {
		return nil, fmt.Errorf("filename is required")
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("file data is empty")
	}
	if !IsAllowedContentType(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrContentTypeNotAllowed, contentType)
	}
	return &TicketFile{
		metadataID:  metadataID,
		externalID:  externalID,
		filename:    filename,
		contentType: contentType,
		data:        data,
		createdAt:   time.Now().UTC(),
	}, nil
}

func ReconstructTicketFile(id, metadataID uint, externalID, filename, contentType string, data []byte, createdAt time.Time) *TicketFile {
	return &TicketFile{
		id:          id,
		metadataID:  metadataID,
		externalID:  externalID,
		filename:    filename,
		contentType: contentType,
		data:        data,
		createdAt:   createdAt,
	}
}

// IsAllowedContentType matches the media type against the allow-list, ignoring parameters.
func IsAllowedContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, _, _ = strings.Cut(contentType, ";")
	}
	return allowedContentTypes[strings.ToLower(strings.TrimSpace(mediaType))]
}

func (f *TicketFile) SetID(id uint) {
	f.id = id
}

func (f *TicketFile) ID() uint {
	return f.id
}

func (f *TicketFile) MetadataID() uint {
	return f.metadataID
}

func (f *TicketFile) ExternalID() string {
	return f.externalID
}

func (f *TicketFile) Filename() string {
	return f.filename
}

func (f *TicketFile) ContentType() string {
	return f.contentType
}

func (f *TicketFile) Data() []byte {
	return f.data
}

func (f *TicketFile) Size() int {
	return len(f.data)
}

func (f *TicketFile) CreatedAt() time.Time {
	return f.createdAt
}
