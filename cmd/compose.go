package cmd

import (
	"fmt"
	"log/slog"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/shouni/go-caption-kit/pkg/domain"
	"github.com/shouni/go-caption-kit/pkg/workflow"
)

type composeOptions struct {
	Image    string
	Captions string
	Text     string
	DataURI  bool
}

var composeOpts composeOptions

// composeCmd は、既存の画像とキャプションを合成するサブコマンドなのだ。
// テキスト生成をしないので API キーは不要なのだ。
var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "2x2 のコマ画像にキャプションを合成するのだ。",
	Long: `画像（URL、data URI、ローカルパス）に、キャプションJSON または自由テキストを合成するのだ。
キャプションJSON を渡した場合、自由テキストは使わないのだよ。`,
	RunE: composeCommand,
}

func init() {
	composeCmd.Flags().StringVarP(&composeOpts.Image, "image", "i", "", "合成元の画像なのだ。")
	composeCmd.Flags().StringVarP(&composeOpts.Captions, "captions", "c", "", "PanelCaptions の JSON ファイルなのだ。")
	composeCmd.Flags().StringVarP(&composeOpts.Text, "text", "t", "", "4 分割して使う自由テキストなのだ。")
	composeCmd.Flags().BoolVar(&composeOpts.DataURI, "data-uri", false, "保存せずに data URI を標準出力に書き出すのだ。")
	_ = composeCmd.MarkFlagRequired("image")
}

func composeCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := loadConfig()

	pageID := opts.PageID
	if pageID == "" {
		pageID = ksuid.New().String()
	}
	page := &domain.PageRecord{
		ID:       pageID,
		ImageURL: composeOpts.Image,
		Text:     composeOpts.Text,
	}
	if composeOpts.Captions != "" {
		captions, err := loadCaptions(composeOpts.Captions)
		if err != nil {
			return err
		}
		page.Captions = captions
	}
	if page.Captions == nil && page.Text == "" {
		slog.Warn("キャプションもテキストもないので空のバーだけを描くのだ")
	}

	manager, err := workflow.New(ctx, workflow.ManagerArgs{Config: cfg})
	if err != nil {
		return fmt.Errorf("ワークフローの初期化に失敗したのだ: %w", err)
	}
	runner, err := manager.BuildComposeRunner()
	if err != nil {
		return err
	}

	if composeOpts.DataURI {
		uri, err := runner.RunDataURI(ctx, page)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), uri)
		return err
	}

	paths, err := runner.RunAndSave(ctx, []*domain.PageRecord{page}, cfg.OutputDir)
	if err != nil {
		return err
	}
	slog.Info("合成画像を保存したのだ！", "paths", paths)
	return nil
}
