package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"soundscape-server/internal/analysis"
	"soundscape-server/internal/patterns"
	sharedLogger "soundscape-server/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// commandContext - общие флаги и ленивая инициализация движка.
type commandContext struct {
	patternsFile string
	selection    string
	seed         uint64
	wpm          float64
	maxRunes     int
	logLevel     string

	logger *zap.Logger
	engine *analysis.Engine
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "soundscape",
		Short:         "Scene classification and soundscape composition for book pages",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&ctx.patternsFile, "patterns", "", "Pattern tables file (.toml, .yaml, .json); embedded defaults when empty")
	flags.StringVar(&ctx.selection, "selection", analysis.PickerHash, "Trigger sound selection: random, hash or first")
	flags.Uint64Var(&ctx.seed, "seed", 0, "Seed for random sound selection (0 = time-seeded)")
	flags.Float64Var(&ctx.wpm, "wpm", analysis.DefaultWordsPerMinute, "Reading speed in words per minute")
	flags.IntVar(&ctx.maxRunes, "max-runes", analysis.DefaultMaxTextRunes, "Maximum text length in runes (0 = unlimited)")
	flags.StringVar(&ctx.logLevel, "log-level", "warn", "Log level for diagnostics written to stderr")

	rootCmd.AddCommand(newAnalyzeCommand(ctx))
	rootCmd.AddCommand(newTriggersCommand(ctx))
	rootCmd.AddCommand(newBatchCommand(ctx))
	rootCmd.AddCommand(newImportCommand(ctx))
	rootCmd.AddCommand(newPatternsCommand(ctx))

	return rootCmd
}

func (c *commandContext) ensureLogger() (*zap.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}
	logger, err := sharedLogger.New(sharedLogger.Config{
		Level:      c.logLevel,
		Encoding:   "console",
		OutputPath: "stderr",
	})
	if err != nil {
		return nil, err
	}
	c.logger = logger
	return logger, nil
}

func (c *commandContext) ensureEngine() (*analysis.Engine, error) {
	if c.engine != nil {
		return c.engine, nil
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	set, err := patterns.Load(c.patternsFile)
	if err != nil {
		return nil, err
	}
	picker, err := analysis.NewSoundPicker(c.selection, c.seed)
	if err != nil {
		return nil, err
	}
	c.engine = analysis.NewEngine(set,
		analysis.WithSoundPicker(picker),
		analysis.WithReadingSpeed(c.wpm),
		analysis.WithMaxTextRunes(c.maxRunes),
		analysis.WithLogger(logger),
	)
	return c.engine, nil
}

// readInput читает текст из файла или из stdin, если файл не указан или равен "-".
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	path := strings.TrimSpace(args[0])
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
