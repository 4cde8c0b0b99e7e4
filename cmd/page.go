package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/shouni/go-caption-kit/pkg/domain"
	"github.com/shouni/go-caption-kit/pkg/workflow"
)

var pageScript string

// pageCmd は、キャプションの確定から画像合成までを一度に実行するサブコマンドなのだ。
var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "キャプション生成と画像合成を一度に実行するのだ。",
	Long: `ページ台本を読み込み、キャプションを確定させてから台本の画像に合成するのだ。
captions.json、captioned_page_1.png、captioned_page.md を --output-dir に保存するのだよ。`,
	RunE: pageCommand,
}

func init() {
	pageCmd.Flags().StringVarP(&pageScript, "script-file", "f", "", "ページ台本のパスなのだ（'-' で標準入力、省略でサンプル）。")
}

func pageCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	startTime := time.Now()

	cfg := loadConfig()
	if err := requireAPIKey(cfg); err != nil {
		return err
	}

	page, err := loadPage(pageScript)
	if err != nil {
		return err
	}

	manager, err := workflow.New(ctx, workflow.ManagerArgs{Config: cfg})
	if err != nil {
		return fmt.Errorf("ワークフローの初期化に失敗したのだ: %w", err)
	}
	captionRunner, err := manager.BuildCaptionRunner()
	if err != nil {
		return err
	}
	composeRunner, err := manager.BuildComposeRunner()
	if err != nil {
		return err
	}
	publishRunner, err := manager.BuildPublishRunner()
	if err != nil {
		return err
	}

	// 1. キャプションの確定
	captions, captionsPath, err := captionRunner.RunAndSave(ctx, page, cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("キャプション生成に失敗したのだ: %w", err)
	}
	page.Captions = &captions

	// 2. 画像合成
	paths, err := composeRunner.RunAndSave(ctx, []*domain.PageRecord{page}, cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("画像合成に失敗したのだ: %w", err)
	}

	// 3. 確定キャプション入りの台本を書き戻すのだ
	// 合成済み画像に重ねて描かないよう、台本は元の画像を参照するのだ
	result, err := publishRunner.Run(ctx, page, nil, cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("台本の書き出しに失敗したのだ: %w", err)
	}

	slog.Info("ページの生成がすべて完了したのだ！",
		"page_id", page.ID,
		"captions", captionsPath,
		"script", result.ScriptPath,
		"images", paths,
		"duration", time.Since(startTime).Round(time.Millisecond))
	return nil
}
