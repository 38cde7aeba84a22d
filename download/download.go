// Package download fetches the output files of a completed task into a
// local directory.
//
// Downloads are best-effort per artifact: one artifact failing does not
// abort its siblings. Failures are collected into a *PartialError naming
// each failed artifact, while every reachable file is still written.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/tripolabs/tripo-go/types"
)

// DefaultConcurrency bounds parallel artifact downloads so a single task
// does not hammer the remote object store.
const DefaultConcurrency = 3

// Failure records one artifact that could not be downloaded.
type Failure struct {
	Artifact string
	Err      error
}

// PartialError aggregates per-artifact failures. Succeeded lists the paths
// that were written despite the failures.
type PartialError struct {
	Succeeded []string
	Failures  []Failure
}

func (e *PartialError) Error() string {
	names := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		names[i] = f.Artifact
	}
	return fmt.Sprintf("[%s] %d of %d artifacts failed: %s",
		types.ErrDownloadFailure, len(e.Failures), len(e.Failures)+len(e.Succeeded),
		strings.Join(names, ", "))
}

// Downloader fetches result artifacts over HTTP.
type Downloader struct {
	// HTTPClient defaults to a client with a 5 minute timeout; model
	// files can be large.
	HTTPClient *http.Client

	// Concurrency bounds parallel downloads per All call. Defaults to
	// DefaultConcurrency.
	Concurrency int

	Logger *zap.Logger
}

func (d Downloader) httpClient() *http.Client {
	if d.HTTPClient != nil {
		return d.HTTPClient
	}
	return &http.Client{Timeout: 5 * time.Minute}
}

func (d Downloader) logger() *zap.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return zap.NewNop()
}

// FileName derives the deterministic local name for an artifact:
// <taskID>_<artifact><ext>, with the extension taken from the URL path.
func FileName(taskID string, artifact types.Artifact) string {
	ext := ".bin"
	if u, err := url.Parse(artifact.URL); err == nil {
		if e := path.Ext(u.Path); e != "" {
			ext = e
		}
	}
	return sanitize(taskID) + "_" + sanitize(artifact.Name) + ext
}

// sanitize keeps the name a single path element.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '-'
		}
		return r
	}, s)
}

// One downloads a single artifact into destDir, creating the directory if
// absent, and returns the written path. The body is streamed to disk.
func (d Downloader) One(ctx context.Context, taskID string, artifact types.Artifact, destDir string) (string, error) {
	if artifact.URL == "" {
		return "", types.NewError(types.ErrValidationFailure, "artifact has no URL")
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", types.NewError(types.ErrDownloadFailure, "creating destination directory").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, artifact.URL, nil)
	if err != nil {
		return "", types.NewError(types.ErrValidationFailure, "invalid artifact URL").WithCause(err)
	}

	resp, err := d.httpClient().Do(req)
	if err != nil {
		return "", types.NewError(types.ErrNetworkFailure, "artifact download failed").
			WithRetryable(true).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", types.NewError(types.ErrDownloadFailure,
			fmt.Sprintf("artifact download returned status %d", resp.StatusCode)).
			WithHTTPStatus(resp.StatusCode).
			WithRetryable(resp.StatusCode >= 500)
	}

	dest := filepath.Join(destDir, FileName(taskID, artifact))
	file, err := os.Create(dest)
	if err != nil {
		return "", types.NewError(types.ErrDownloadFailure, "creating local file").WithCause(err)
	}

	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		os.Remove(dest)
		return "", types.NewError(types.ErrDownloadFailure, "writing local file").WithCause(err)
	}
	if err := file.Close(); err != nil {
		return "", types.NewError(types.ErrDownloadFailure, "closing local file").WithCause(err)
	}

	d.logger().Debug("artifact downloaded",
		zap.String("task_id", taskID),
		zap.String("artifact", artifact.Name),
		zap.String("path", dest),
	)
	return dest, nil
}

// All downloads every artifact of the task's result manifest into destDir
// and returns the written paths in manifest order.
//
// When some artifacts fail the successful paths are returned together with
// a *PartialError listing the failures.
func (d Downloader) All(ctx context.Context, task *types.Task, destDir string) ([]string, error) {
	artifacts := task.Result.Files()
	if len(artifacts) == 0 {
		return nil, nil
	}

	limit := int64(d.Concurrency)
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	sem := semaphore.NewWeighted(limit)

	type result struct {
		path string
		err  error
	}
	results := make([]result, len(artifacts))

	var wg sync.WaitGroup
	for i, artifact := range artifacts {
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = result{err: err}
			continue
		}
		wg.Add(1)
		go func(i int, artifact types.Artifact) {
			defer wg.Done()
			defer sem.Release(1)
			p, err := d.One(ctx, task.TaskID, artifact, destDir)
			results[i] = result{path: p, err: err}
		}(i, artifact)
	}
	wg.Wait()

	var paths []string
	var failures []Failure
	for i, r := range results {
		if r.err != nil {
			failures = append(failures, Failure{Artifact: artifacts[i].Name, Err: r.err})
			continue
		}
		paths = append(paths, r.path)
	}

	if len(failures) > 0 {
		return paths, &PartialError{Succeeded: paths, Failures: failures}
	}
	return paths, nil
}
