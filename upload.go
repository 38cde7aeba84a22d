package tripo

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tripolabs/tripo-go/types"
)

// UploadFile uploads a local image with a multipart request and returns
// the file token to reference in a later ImageToModel call. This is the
// primary upload path.
func (c *Client) UploadFile(ctx context.Context, imagePath string) (string, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return "", types.NewError(types.ErrValidationFailure, "opening image file").WithCause(err)
	}
	defer file.Close()

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(imagePath)))
		header.Set("Content-Type", mimeTypeOf(imagePath))

		part, err := writer.CreatePart(header)
		if err == nil {
			_, err = io.Copy(part, file)
		}
		if err == nil {
			err = writer.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL("upload/sts"), pr)
	if err != nil {
		return "", types.NewError(types.ErrValidationFailure, "building upload request").WithCause(err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var data types.UploadData
	if err := c.send(req, http.MethodPost, "upload/sts", &data); err != nil {
		return "", err
	}
	return data.ImageToken, nil
}

// UploadFileS3 uploads a local image straight to the service's object
// store using temporary STS credentials, and returns the FileContent to
// reference in an image-to-model request. Most callers want UploadFile
// instead.
func (c *Client) UploadFileS3(ctx context.Context, imagePath string) (*types.FileContent, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return nil, types.NewError(types.ErrValidationFailure, "opening image file").WithCause(err)
	}
	defer file.Close()

	var token types.StsToken
	body := map[string]string{"format": extensionOf(imagePath)}
	if err := c.do(ctx, http.MethodPost, "upload/sts/token", body, &token); err != nil {
		return nil, err
	}

	s3Client := s3.New(s3.Options{
		Region: "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider(
			token.AccessKey, token.SecretKey, token.SessionToken),
	}, func(o *s3.Options) {
		if c.cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(c.cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	_, err = s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(token.ResourceBucket),
		Key:    aws.String(token.ResourceURI),
		Body:   file,
	})
	if err != nil {
		return nil, types.NewError(types.ErrUpstreamError, "object store upload failed").
			WithRetryable(true).WithCause(err)
	}

	c.logger.Debug("uploaded image to object store",
		zap.String("bucket", token.ResourceBucket),
		zap.String("key", token.ResourceURI),
	)

	return &types.FileContent{
		Type:   extensionOf(imagePath),
		Object: &types.S3Object{Bucket: token.ResourceBucket, Key: token.ResourceURI},
	}, nil
}

// fileContentFromString resolves the flexible image argument of
// ImageToModel: a public URL, a file token, or a local path.
func (c *Client) fileContentFromString(ctx context.Context, image string) (*types.FileContent, error) {
	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return &types.FileContent{Type: extensionOf(image), URL: image}, nil
	}

	if isFileToken(image) {
		return &types.FileContent{Type: "jpeg", FileToken: image}, nil
	}

	if _, err := os.Stat(image); err != nil {
		return nil, types.NewError(types.ErrValidationFailure,
			fmt.Sprintf("image file not found: %s", image)).WithCause(err)
	}
	token, err := c.UploadFile(ctx, image)
	if err != nil {
		return nil, err
	}
	return &types.FileContent{Type: extensionOf(image), FileToken: token}, nil
}

// isFileToken reports whether s is a canonical UUID, the shape of upload
// tokens. Only the dashed 36-char form counts; anything else is treated as
// a path.
func isFileToken(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

func extensionOf(p string) string {
	// Cut any URL query or fragment so "model.png?sig=1" yields "png".
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	ext := strings.TrimPrefix(filepath.Ext(p), ".")
	if ext == "" {
		return "jpeg"
	}
	return strings.ToLower(ext)
}

func mimeTypeOf(p string) string {
	if t := mime.TypeByExtension(filepath.Ext(p)); t != "" {
		return t
	}
	return "application/octet-stream"
}
