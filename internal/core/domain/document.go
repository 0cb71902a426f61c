package domain

import "time"

// Document is the extracted plain text of an uploaded file.
type Document struct {
	Name       string    `json:"name"`
	Content    string    `json:"content"`
	PageCount  int       `json:"pageCount"`
	StorageKey string    `json:"storageKey,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// SourceFile points at an uploaded file in object storage.
type SourceFile struct {
	Filename   string
	MimeType   string
	StorageKey string
}
