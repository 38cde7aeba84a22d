// Package tripo is a typed Go client for the Tripo3D model-generation API:
// text-to-model and image-to-model task submission, status polling, account
// balance queries, WebSocket task watching, and result downloads.
//
// A Client is safe for concurrent use; it holds only read-only
// configuration and the underlying HTTP connection pool.
//
//	cfg := tripo.Config{APIKey: os.Getenv("TRIPO_API_KEY")}
//	client, err := tripo.New(cfg, logger)
//	if err != nil { ... }
//
//	created, err := client.TextToModel(ctx, "a delicious hamburger")
//	task, err := client.WaitForTask(ctx, created.TaskID, tripo.WithMaxWait(10*time.Minute))
//	paths, err := client.DownloadAllModels(ctx, task, "./models")
package tripo
