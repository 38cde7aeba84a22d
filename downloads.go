package tripo

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tripolabs/tripo-go/download"
	"github.com/tripolabs/tripo-go/types"
)

// downloader builds the download helper with the client's logger. Result
// URLs are signed and served by the object store, so downloads use a
// dedicated HTTP client without the API timeout.
func (c *Client) downloader() download.Downloader {
	return download.Downloader{
		HTTPClient: &http.Client{Timeout: 5 * time.Minute},
		Logger:     c.logger,
	}
}

// DownloadModel downloads a single result artifact into destDir and
// returns the written path.
func (c *Client) DownloadModel(ctx context.Context, taskID string, artifact types.Artifact, destDir string) (string, error) {
	path, err := c.downloader().One(ctx, taskID, artifact, destDir)
	c.collector.ObserveDownload(err == nil)
	return path, err
}

// DownloadAllModels downloads every artifact of a completed task's result
// manifest into destDir. Failures are best-effort per artifact: reachable
// files are still written and the failures come back aggregated in a
// *download.PartialError.
func (c *Client) DownloadAllModels(ctx context.Context, task *types.Task, destDir string) ([]string, error) {
	paths, err := c.downloader().All(ctx, task, destDir)

	if c.collector != nil {
		var partial *download.PartialError
		switch {
		case err == nil:
			for range paths {
				c.collector.ObserveDownload(true)
			}
		case errors.As(err, &partial):
			for range partial.Succeeded {
				c.collector.ObserveDownload(true)
			}
			for range partial.Failures {
				c.collector.ObserveDownload(false)
			}
		}
	}
	return paths, err
}
