package dto

// InitUGCUploadRequest asks for a signed upload URL for a UGC file
type InitUGCUploadRequest struct {
	AdID     uint   `json:"-"`
	UserID   uint   `json:"-"`
	FileName string `json:"file_name" validate:"required,max=255"`
}

// InitUGCUploadResponse carries the signed URL; MediaURL is what to submit afterwards
type InitUGCUploadResponse struct {
	Message    string `json:"message"`
	UploadURL  string `json:"upload_url"`
	ObjectPath string `json:"object_path"`
	MediaURL   string `json:"media_url"`
	MediaType  string `json:"media_type"`
	ExpiresAt  string `json:"expires_at"`
}
