// Command tripo is a small CLI over the Tripo3D client SDK: submit
// generation tasks, query status and balance, wait for completion, and
// download results.
//
// Usage:
//
//	tripo [-config tripo.yaml] text -prompt "a delicious hamburger"
//	tripo image -image ./cat.png
//	tripo task -id <task-id>
//	tripo wait -id <task-id> [-download ./models]
//	tripo balance
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tripo "github.com/tripolabs/tripo-go"
	"github.com/tripolabs/tripo-go/config"
	"github.com/tripolabs/tripo-go/poll"
	"github.com/tripolabs/tripo-go/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	global := flag.NewFlagSet("tripo", flag.ExitOnError)
	configPath := global.String("config", "", "path to a YAML config file")
	global.Usage = usage

	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		return fmt.Errorf("missing command")
	}

	// Global flags may precede the command.
	if err := global.Parse(args); err != nil {
		return err
	}
	rest := global.Args()
	if len(rest) == 0 {
		usage()
		return fmt.Errorf("missing command")
	}
	command, commandArgs := rest[0], rest[1:]

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, err := tripo.New(cfg.Client, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "text":
		return runText(ctx, client, commandArgs)
	case "image":
		return runImage(ctx, client, commandArgs)
	case "task":
		return runTask(ctx, client, commandArgs)
	case "wait":
		return runWait(ctx, client, cfg, commandArgs)
	case "balance":
		return runBalance(ctx, client)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: tripo [-config file] <command> [flags]

commands:
  text     submit a text-to-model task     (-prompt)
  image    submit an image-to-model task   (-image url|token|path)
  task     fetch a task snapshot           (-id)
  wait     wait for completion             (-id, -download dir)
  balance  show the account balance`)
}

func runText(ctx context.Context, client *tripo.Client, args []string) error {
	fs := flag.NewFlagSet("text", flag.ExitOnError)
	prompt := fs.String("prompt", "", "text description of the model to generate")
	fs.Parse(args)

	created, err := client.TextToModel(ctx, *prompt)
	if err != nil {
		return err
	}
	return printJSON(created)
}

func runImage(ctx context.Context, client *tripo.Client, args []string) error {
	fs := flag.NewFlagSet("image", flag.ExitOnError)
	image := fs.String("image", "", "image URL, file token, or local path")
	fs.Parse(args)

	created, err := client.ImageToModel(ctx, *image)
	if err != nil {
		return err
	}
	return printJSON(created)
}

func runTask(ctx context.Context, client *tripo.Client, args []string) error {
	fs := flag.NewFlagSet("task", flag.ExitOnError)
	id := fs.String("id", "", "task ID")
	fs.Parse(args)

	task, err := client.GetTask(ctx, *id)
	if err != nil {
		return err
	}
	return printJSON(task)
}

func runWait(ctx context.Context, client *tripo.Client, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("wait", flag.ExitOnError)
	id := fs.String("id", "", "task ID")
	downloadDir := fs.String("download", "", "download results into this directory when the task succeeds")
	fs.Parse(args)

	task, err := client.WaitForTask(ctx, *id,
		tripo.WithInterval(cfg.Poll.Interval),
		tripo.WithMaxWait(cfg.Poll.MaxWait),
		tripo.WithProgress(poll.ProgressFunc(func(task types.Task) {
			fmt.Fprintf(os.Stderr, "task %s: %s %d%%\n", task.TaskID, task.Status, task.Progress)
		})),
	)
	if err != nil {
		return err
	}
	if err := printJSON(task); err != nil {
		return err
	}

	if *downloadDir != "" && task.Status == types.TaskSuccess {
		paths, err := client.DownloadAllModels(ctx, task, *downloadDir)
		for _, p := range paths {
			fmt.Println(p)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func runBalance(ctx context.Context, client *tripo.Client) error {
	balance, err := client.GetBalance(ctx)
	if err != nil {
		return err
	}
	return printJSON(balance)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
