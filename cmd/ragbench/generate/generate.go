// Package generatecmder provides the `ragbench generate` CLI command.
package generatecmder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ragbenchco/ragbench/pkg/cliui"
	"github.com/ragbenchco/ragbench/pkg/config"
	"github.com/ragbenchco/ragbench/pkg/credentials"
	"github.com/ragbenchco/ragbench/pkg/dispatch"
	"github.com/ragbenchco/ragbench/pkg/dotdir"
	"github.com/ragbenchco/ragbench/pkg/eventstream"
	kafkastream "github.com/ragbenchco/ragbench/pkg/eventstream/kafka"
	"github.com/ragbenchco/ragbench/pkg/eventstream/nop"
	"github.com/ragbenchco/ragbench/pkg/groq"
	"github.com/ragbenchco/ragbench/pkg/keypool"
	"github.com/ragbenchco/ragbench/pkg/logger"
	"github.com/ragbenchco/ragbench/pkg/runner"
	"github.com/ragbenchco/ragbench/pkg/runstate"
	"github.com/ragbenchco/ragbench/pkg/submission"
	"github.com/ragbenchco/ragbench/pkg/task"
	"github.com/ragbenchco/ragbench/pkg/utils"
)

const generateLongDesc string = `Generate benchmark predictions for a JSONL task file.

Each line of the task file is one task: a conversation, its retrieval
contexts, and a collection name. Answers are generated through the
configured completion endpoint, rotating across all stored API keys as
quotas run out, and appended to the output file as they complete.

Tasks with retrieval contexts are answered from those passages; tasks
without contexts receive a refusal. If every key's quota is exhausted
the run stops and keeps everything generated so far; rerun with
--resume to pick up where it left off.

Examples:
  ragbench generate tasks.jsonl
  ragbench generate tasks.jsonl -o submission.jsonl
  ragbench generate tasks.jsonl --api-keys "gsk_a,gsk_b" --model llama-3.3-70b-versatile
  ragbench generate tasks.jsonl --resume`

const generateShortDesc string = "Generate predictions for a task file"

// generateFlags defines the flags this command binds into the viper
// precedence chain.
var generateFlags = config.FlagSet{
	config.FlagEndpoint: {
		Name:        "endpoint",
		ViperKey:    "generation.endpoint",
		Description: "Completion API base URL",
	},
	config.FlagModel: {
		Name:        "model",
		Shorthand:   "m",
		ViperKey:    "generation.model",
		Description: "Model used for generation",
	},
	config.FlagMaxTokens: {
		Name:        "max-tokens",
		ViperKey:    "generation.max_tokens",
		Description: "Maximum tokens per completion",
	},
	config.FlagTaskDelay: {
		Name:        "task-delay",
		ViperKey:    "generation.task_delay_ms",
		Description: "Delay between tasks in milliseconds",
	},
	config.FlagRunstateSQLite: {
		Name:        "runstate-sqlite",
		ViperKey:    "runstate.sqlite_path",
		Description: "Path to the resume cache database",
	},
}

var boundFlags = []string{
	config.FlagEndpoint,
	config.FlagModel,
	config.FlagMaxTokens,
	config.FlagTaskDelay,
	config.FlagRunstateSQLite,
}

type generateCommander struct {
	endpoint     string
	model        string
	maxTokens    uint
	taskDelayMs  uint
	runstatePath string
	apiKeys      string
	output       string
	resume       bool
	debug        bool
	configDir    string
	logger       *zap.Logger
}

// NewGenerateCmd creates the generate cobra command.
func NewGenerateCmd() *cobra.Command {
	cmder := &generateCommander{}

	cmd := &cobra.Command{
		Use:   "generate <tasks-file>",
		Short: generateShortDesc,
		Long:  generateLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, generateFlags, boundFlags)

			cmder.endpoint = v.GetString("generation.endpoint")
			cmder.model = v.GetString("generation.model")
			cmder.maxTokens = v.GetUint("generation.max_tokens")
			cmder.taskDelayMs = v.GetUint("generation.task_delay_ms")
			cmder.runstatePath = v.GetString("runstate.sqlite_path")

			publisher, err := cmder.newPublisher(v)
			if err != nil {
				return err
			}
			defer publisher.Close()

			return cmder.run(cmd.Context(), args[0], publisher)
		},
	}

	config.AddStringFlag(cmd, generateFlags, config.FlagEndpoint, &cmder.endpoint)
	config.AddStringFlag(cmd, generateFlags, config.FlagModel, &cmder.model)
	config.AddUintFlag(cmd, generateFlags, config.FlagMaxTokens, &cmder.maxTokens)
	config.AddUintFlag(cmd, generateFlags, config.FlagTaskDelay, &cmder.taskDelayMs)
	config.AddStringFlag(cmd, generateFlags, config.FlagRunstateSQLite, &cmder.runstatePath)

	cmd.Flags().StringVarP(&cmder.output, "output", "o", "predictions.jsonl", "Output predictions file")
	cmd.Flags().StringVar(&cmder.apiKeys, "api-keys", "", "Comma-separated API keys (overrides stored credentials)")
	cmd.Flags().BoolVar(&cmder.resume, "resume", false, "Skip tasks already completed in a previous run")

	return cmd
}

func (c *generateCommander) run(ctx context.Context, tasksPath string, publisher eventstream.Publisher) error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	dispatcher, poolSize, err := c.newDispatcher()
	if err != nil {
		return err
	}

	var records []json.RawMessage
	var skipped int
	if err := cliui.Step(os.Stdout, "Loading "+tasksPath, func() error {
		var loadErr error
		records, skipped, loadErr = task.LoadFile(tasksPath, c.logger)
		return loadErr
	}); err != nil {
		return err
	}

	c.logger.Info("loaded tasks",
		zap.String("file", tasksPath),
		zap.Int("tasks", len(records)),
		zap.Int("invalid_lines", skipped),
		zap.Int("keys", poolSize),
	)

	writer, err := submission.NewWriter(c.output)
	if err != nil {
		return err
	}
	defer writer.Close()

	opts := runner.Options{
		TaskDelay: time.Duration(c.taskDelayMs) * time.Millisecond,
		Publisher: publisher,
	}

	if c.resume {
		store, err := runstate.Open(c.resolveRunstatePath())
		if err != nil {
			return err
		}
		defer store.Close()

		opts.State = store
	}

	r := runner.New(dispatcher, writer, opts, c.logger)

	stats, runErr := r.Run(ctx, records)

	fmt.Println()
	fmt.Println(cliui.HeaderStyle.Render("ragbench generate"))
	fmt.Println(stats.Summary())

	for _, failure := range stats.Failures {
		fmt.Printf("  %s line %d (%s): %s\n",
			cliui.FailMark,
			failure.Line,
			failure.TaskID,
			utils.Truncate(failure.Err.Error(), 120),
		)
	}

	if runErr != nil {
		if errors.Is(runErr, dispatch.ErrAllKeysExhausted) {
			fmt.Printf("\n  %s All API keys exhausted. Completed results are in %s.\n",
				cliui.WarnStyle.Render("!"), c.output)
			fmt.Println("  Rerun with --resume once quotas reset to finish the remaining tasks.")
		}

		return runErr
	}

	fmt.Printf("\n  %s Wrote %s\n\n", cliui.SuccessMark, cliui.ValueStyle.Render(c.output))

	return nil
}

// newDispatcher resolves the API keys and builds one completion client per
// key behind a rotating dispatcher.
func (c *generateCommander) newDispatcher() (*dispatch.Dispatcher, int, error) {
	mgr, err := credentials.NewManager(c.configDir)
	if err != nil {
		return nil, 0, fmt.Errorf("loading credentials: %w", err)
	}

	keys, err := mgr.ResolveKeys(c.apiKeys)
	if err != nil {
		if errors.Is(err, credentials.ErrNoKeys) {
			return nil, 0, fmt.Errorf("%w\n\nStore keys with 'ragbench auth', set %s, or pass --api-keys",
				err, credentials.EnvVar)
		}
		return nil, 0, err
	}

	clients := make([]dispatch.Completer, 0, len(keys))
	for _, key := range keys {
		client, err := groq.New(groq.Config{
			APIKey:    key,
			BaseURL:   c.endpoint,
			Model:     c.model,
			MaxTokens: int(c.maxTokens),
		})
		if err != nil {
			return nil, 0, err
		}

		clients = append(clients, client)
	}

	pool, err := keypool.New(len(clients))
	if err != nil {
		return nil, 0, err
	}

	dispatcher, err := dispatch.New(clients, pool, dispatch.DefaultPolicy(), c.logger)
	if err != nil {
		return nil, 0, err
	}

	return dispatcher, len(clients), nil
}

func (c *generateCommander) newPublisher(v *viper.Viper) (eventstream.Publisher, error) {
	if !v.GetBool("eventstream.enabled") {
		return nop.NewPublisher(), nil
	}

	return kafkastream.NewPublisher(
		v.GetStringSlice("eventstream.brokers"),
		v.GetString("eventstream.topic"),
	)
}

func (c *generateCommander) resolveRunstatePath() string {
	if c.runstatePath != "" {
		return c.runstatePath
	}

	target, err := dotdir.NewManager().Target(c.configDir)
	if err != nil {
		return "runstate.db"
	}

	return filepath.Join(target, "runstate.db")
}
