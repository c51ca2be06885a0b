package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wision/internal/config"
	"wision/internal/kvstore"
	"wision/internal/logging"
	"wision/internal/service"
)

var (
	configPath string
	outputPath string
	inputPath  string
	clearData  bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export and restore the Wision key-value store",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New("info", "console")
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every key to a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackupService(cmd.Context(), func(svc *service.BackupService) error {
			return runExport(cmd.Context(), svc, outputPath)
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Restore keys from a JSON export",
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputPath == "" {
			return fmt.Errorf("--input is required")
		}
		if clearData && !confirm(cmd.InOrStdin(), cmd.OutOrStdout()) {
			logger.Info("import cancelled")
			return nil
		}
		return withBackupService(cmd.Context(), func(svc *service.BackupService) error {
			return runImport(cmd.Context(), svc, inputPath, clearData)
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("WISION_CONFIG"), "Path to a YAML config file")

	exportCmd.Flags().StringVar(&outputPath, "output", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	importCmd.Flags().StringVar(&inputPath, "input", "", "Input file path (required)")
	importCmd.Flags().BoolVar(&clearData, "clear", false, "Delete every existing key before import (WARNING: destructive)")

	rootCmd.AddCommand(exportCmd, importCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func withBackupService(ctx context.Context, fn func(*service.BackupService) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	store, closeStore, err := kvstore.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	return fn(service.NewBackupService(store, logger))
}

func runExport(ctx context.Context, svc *service.BackupService, path string) error {
	if path == "" {
		path = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if _, err := svc.Export(ctx, file); err != nil {
		return err
	}

	if info, err := file.Stat(); err == nil {
		logger.Info("export written",
			zap.String("file", path),
			zap.Float64("size_mb", float64(info.Size())/1024/1024))
	}
	return nil
}

func runImport(ctx context.Context, svc *service.BackupService, path string, clear bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	_, err = svc.Import(ctx, file, clear)
	return err
}

func confirm(in io.Reader, out io.Writer) bool {
	fmt.Fprint(out, "WARNING: This will delete all existing data. Type 'yes' to confirm: ")
	line, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(line) == "yes"
}
