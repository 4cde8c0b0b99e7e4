package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/go-caption-kit/pkg/workflow"
)

var captionScript string

// captionCmd は、ページ台本から 4 コマ分のキャプションを確定させて JSON で保存するサブコマンドなのだ。
var captionCmd = &cobra.Command{
	Use:   "caption",
	Short: "ページ台本からキャプションを生成して JSON で保存するのだ。",
	Long: `ページ台本（Markdown または JSON）を読み込み、下書きの検証、必要に応じた再生成、
ページ全体の語数チェックを経てキャプションを確定させるのだ。
結果は --output-dir の captions.json と標準出力に書き出すのだよ。`,
	RunE: captionCommand,
}

func init() {
	captionCmd.Flags().StringVarP(&captionScript, "script-file", "f", "", "ページ台本のパスなのだ（'-' で標準入力、省略でサンプル）。")
}

func captionCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg := loadConfig()
	if err := requireAPIKey(cfg); err != nil {
		return err
	}

	page, err := loadPage(captionScript)
	if err != nil {
		return err
	}

	manager, err := workflow.New(ctx, workflow.ManagerArgs{Config: cfg})
	if err != nil {
		return fmt.Errorf("ワークフローの初期化に失敗したのだ: %w", err)
	}
	runner, err := manager.BuildCaptionRunner()
	if err != nil {
		return err
	}

	slog.Info("キャプション生成を開始するのだ！",
		"page_id", page.ID,
		"model", cfg.GeminiModel,
		"profile", manager.Rules().Name)

	captions, path, err := runner.RunAndSave(ctx, page, cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("キャプション生成に失敗したのだ: %w", err)
	}

	slog.Info("キャプションを保存したのだ！", "path", path)
	return printJSON(cmd.OutOrStdout(), captions)
}
