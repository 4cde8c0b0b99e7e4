package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/shouni/go-caption-kit/pkg/config"
)

// appOptions は CLI フラグから渡される実行時のパラメータなのだ。
type appOptions struct {
	Verbose   bool
	EnvFile   string
	Model     string // --model
	Profile   string // --profile
	FontPath  string // --font
	OutputDir string // --output-dir
	PageID    string // --page-id
}

var opts appOptions

var rootCmd = &cobra.Command{
	Use:   "caption-kit",
	Short: "4コマ絵本のキャプション生成と画像合成を行うのだ。",
	Long: `ページ台本からヘブライ語のキャプションを生成・検証し、
2x2 のコマ画像にキャプションバーを合成して PNG で保存するのだ。`,
	SilenceUsage:      true,
	PersistentPreRunE: preRunAppE,
}

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "デバッグログを出力するのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "読み込む .env ファイルのパスなのだ。")

	// --- AIモデル・規則 ---
	rootCmd.PersistentFlags().StringVar(&opts.Model, "model", "", "使用する Gemini モデル名なのだ（既定は GEMINI_MODEL）。")
	rootCmd.PersistentFlags().StringVar(&opts.Profile, "profile", "", "キャプション規則（standard / compact）なのだ。")

	// --- 合成・出力 ---
	rootCmd.PersistentFlags().StringVar(&opts.FontPath, "font", "", "キャプション描画に使う TTF/OTF フォントなのだ（既定は CAPTION_FONT_PATH）。")
	rootCmd.PersistentFlags().StringVarP(&opts.OutputDir, "output-dir", "o", config.DefaultOutputDir, "成果物を保存するディレクトリなのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.PageID, "page-id", "", "ページIDなのだ。省略すると自動で採番するのだ。")
}

// preRunAppE は、コマンド実行前にロガーと .env の準備をするのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	setupLogger(opts.Verbose)

	if err := godotenv.Load(opts.EnvFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf(".env の読み込みに失敗したのだ: %w", err)
		}
		slog.Debug(".env が見つからないので環境変数だけを使うのだ", "path", opts.EnvFile)
	}
	return nil
}

// setupLogger は charmbracelet/log を slog のハンドラとして設定するのだ。
func setupLogger(verbose bool) {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
	slog.SetDefault(slog.New(handler))
}

// loadConfig は環境変数の設定にフラグの値を上書きして返すのだ。
func loadConfig() config.Config {
	cfg := config.LoadConfig()
	if opts.Model != "" {
		cfg.GeminiModel = opts.Model
	}
	if opts.Profile != "" {
		cfg.Profile = opts.Profile
	}
	if opts.FontPath != "" {
		cfg.FontPath = opts.FontPath
	}
	if opts.OutputDir != "" {
		cfg.OutputDir = opts.OutputDir
	}
	return cfg
}

// requireAPIKey は Gemini API を使うコマンドの必須チェックなのだ。
func requireAPIKey(cfg config.Config) error {
	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("エラー: 環境変数 %s が設定されていません。キャプション生成には必須なのだ", config.EnvGeminiAPIKey)
	}
	return nil
}

func init() {
	addAppFlags(rootCmd)
	rootCmd.AddCommand(captionCmd, composeCmd, pageCmd)
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
