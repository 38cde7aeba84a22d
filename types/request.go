package types

// TextToModelRequest is the payload for a text-to-model task.
type TextToModelRequest struct {
	Prompt string `json:"prompt"`
	Type   string `json:"type"`
}

// S3Object points at a file uploaded to the service's object store.
type S3Object struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// FileContent describes the image input of an image-to-model task.
// Exactly one of Object, URL, or FileToken is set.
type FileContent struct {
	Type      string    `json:"type"`
	Object    *S3Object `json:"object,omitempty"`
	URL       string    `json:"url,omitempty"`
	FileToken string    `json:"file_token,omitempty"`
}

// ImageToModelRequest is the payload for an image-to-model task.
type ImageToModelRequest struct {
	Type string      `json:"type"`
	File FileContent `json:"file"`
}

// StsToken is the temporary object-store credential set returned by the
// upload/sts/token endpoint.
type StsToken struct {
	AccessKey      string `json:"sts_ak"`
	SecretKey      string `json:"sts_sk"`
	SessionToken   string `json:"session_token"`
	ResourceBucket string `json:"resource_bucket"`
	ResourceURI    string `json:"resource_uri"`
}

// UploadData is returned by the multipart upload endpoint.
type UploadData struct {
	ImageToken string `json:"image_token"`
}
