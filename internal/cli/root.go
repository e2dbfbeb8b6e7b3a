package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/blankform/go-printfill/internal/config"
	"github.com/blankform/go-printfill/internal/diffview"
	"github.com/blankform/go-printfill/internal/formats/markdown"
	"github.com/blankform/go-printfill/internal/logger"
	"github.com/blankform/go-printfill/internal/report"
	"github.com/blankform/go-printfill/pkg/printfill"
)

var (
	// 命令行标志变量
	cfgFile     string
	debugMode   bool
	verboseMode bool // 显示详细日志

	formatType    string // 输入格式: auto / html / markdown
	sanitizeMD    bool   // markdown 转换后做 UGC 清洗
	minFieldWidth int    // 输入框最小字符宽度（0 表示用配置值）
	revertDelayMs int    // 还原延迟毫秒（负数表示用配置值）
	fieldLabel    string // 辅助技术描述标签

	revertMode bool // 还原模式：恢复已转换的文档
	printRun   bool // 演练打印路径：扫描 → 写出 → 延迟还原
	showReport bool // 输出扫描报告表格
	showDiff   bool // 输出转换前后差异
	dryRun     bool // 只扫描并报告，不写出结果
)

// NewRootCommand 创建根命令
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "printfill [flags] input_file [output_file]",
		Short: "在打印前把文档中的空白占位符替换为可填写的输入框",
		Long: `printfill 检测文档文本中的空白占位符（冒号后接至少 5 个下划线），
在打印前把每个占位符就地替换为按下划线长度定宽的可填写输入框，
打印结束后按标记容器上保存的原文逐字还原文档。

输入为 HTML 或 Markdown（Markdown 先转换为 HTML 再处理）。
input_file 为 - 时从标准输入读取；省略 output_file 时写到标准输出。`,
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 || len(args) > 2 {
				return fmt.Errorf("accepts 1 or 2 arg(s), received %d", len(args))
			}
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			log := logger.NewLoggerWithVerbose(debugMode, verboseMode)
			defer func() {
				_ = log.Sync()
			}()

			// 加载配置并用命令行参数覆盖
			cfg, err := config.LoadConfig(cfgFile)
			if err != nil {
				log.Error("加载配置失败", zap.Error(err))
				os.Exit(1)
			}
			updateConfigFromFlags(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				log.Error("配置无效", zap.Error(err))
				os.Exit(1)
			}

			inputPath := args[0]
			outputPath := ""
			if len(args) == 2 {
				outputPath = args[1]
			}

			if err := run(log, cfg, inputPath, outputPath); err != nil {
				log.Error("处理文档失败", zap.Error(err))
				os.Exit(1)
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径（默认搜索 ./.printfill.yaml 和 ~/.printfill.yaml）")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "启用调试日志")
	rootCmd.PersistentFlags().BoolVarP(&verboseMode, "verbose", "v", false, "显示详细日志")

	rootCmd.Flags().StringVarP(&formatType, "format", "f", "", "输入格式 (auto, html, markdown)")
	rootCmd.Flags().BoolVar(&sanitizeMD, "sanitize", false, "Markdown 转换后做 UGC 清洗")
	rootCmd.Flags().IntVar(&minFieldWidth, "min-width", 0, "输入框最小字符宽度")
	rootCmd.Flags().IntVar(&revertDelayMs, "revert-delay", -1, "打印动作之后到还原的延迟（毫秒）")
	rootCmd.Flags().StringVar(&fieldLabel, "label", "", "输入框的辅助技术描述标签")

	rootCmd.Flags().BoolVar(&revertMode, "revert", false, "还原一个已转换的文档")
	rootCmd.Flags().BoolVar(&printRun, "print-run", false, "演练打印路径：扫描、写出、延迟还原并校验")
	rootCmd.Flags().BoolVar(&showReport, "report", false, "输出扫描报告表格")
	rootCmd.Flags().BoolVar(&showDiff, "diff", false, "输出转换前后差异")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "只扫描并报告，不写出结果")

	return rootCmd
}

// updateConfigFromFlags 用显式传入的命令行参数覆盖配置
func updateConfigFromFlags(cmd *cobra.Command, cfg *config.Config) {
	cfg.Debug = cfg.Debug || debugMode
	cfg.Verbose = cfg.Verbose || verboseMode

	if cmd.Flags().Changed("format") {
		cfg.Format = formatType
	}
	if cmd.Flags().Changed("sanitize") {
		cfg.SanitizeMarkdown = sanitizeMD
	}
	if cmd.Flags().Changed("min-width") {
		cfg.MinFieldWidth = minFieldWidth
	}
	if cmd.Flags().Changed("revert-delay") {
		cfg.RevertDelayMs = revertDelayMs
	}
	if cmd.Flags().Changed("label") {
		cfg.FieldLabel = fieldLabel
	}
}

// run 执行一次完整的 读取 → 转换/还原 → 写出
func run(log *zap.Logger, cfg *config.Config, inputPath, outputPath string) error {
	data, err := readInput(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	// Markdown 先转换为 HTML 页面
	if resolveFormat(cfg.Format, inputPath) == config.FormatMarkdown {
		page, metadata, err := markdown.NewConverter(cfg.SanitizeMarkdown).ToHTML(data)
		if err != nil {
			return err
		}
		log.Info("Markdown 已转换为 HTML",
			zap.String("输入", inputPath),
			zap.Int("元数据项", len(metadata)))
		data = page
	}

	doc, err := printfill.LoadHTML(bytes.NewReader(data))
	if err != nil {
		return err
	}

	tr := printfill.New(
		printfill.WithLogger(log),
		printfill.WithMinFieldWidth(cfg.MinFieldWidth),
		printfill.WithFieldLabel(cfg.FieldLabel),
		printfill.WithExtraExemptTags(cfg.ExtraExemptTags...),
		printfill.WithRevertDelay(cfg.RevertDelay()),
	)

	if revertMode {
		tr.Revert(doc)
		out, err := printfill.RenderHTML(doc)
		if err != nil {
			return err
		}
		log.Info("文档已还原", zap.String("输入", inputPath))
		return writeOutput(outputPath, out)
	}

	if printRun {
		return runPrintPath(log, cfg, tr, doc, inputPath, outputPath)
	}

	before, err := printfill.RenderHTML(doc)
	if err != nil {
		return err
	}

	tr.PrepareForPrint(doc)

	out, err := printfill.RenderHTML(doc)
	if err != nil {
		return err
	}

	if showReport || dryRun {
		report.Render(os.Stdout, report.Collect(doc))
	}
	if showDiff {
		fmt.Println(diffview.Render(before, out))
	}
	if dryRun {
		log.Info("预演完成，结果未写出", zap.String("输入", inputPath))
		return nil
	}

	log.Info("转换完成",
		zap.String("输入", inputPath),
		zap.Int("标记容器", doc.Find("span."+printfill.MarkerClass).Length()),
		zap.Int("输入框", doc.Find("input."+printfill.FieldClass).Length()))

	return writeOutput(outputPath, out)
}

// runPrintPath 演练手动打印路径：
// 扫描同步发生在写出动作之前，还原在动作之后按配置延迟调度；
// 最后校验文档是否逐字节回到扫描前的状态
func runPrintPath(log *zap.Logger, cfg *config.Config, tr *printfill.Transformer, doc *goquery.Document, inputPath, outputPath string) error {
	before, err := printfill.RenderHTML(doc)
	if err != nil {
		return err
	}

	action := tr.WrapPrintAction(doc, func(ctx context.Context) error {
		out, err := printfill.RenderHTML(doc)
		if err != nil {
			return err
		}
		return writeOutput(outputPath, out)
	})

	if err := action(context.Background()); err != nil {
		return err
	}

	// 等待延迟还原触发；延迟只是尽力而为的近似，这里额外留出余量
	time.Sleep(cfg.RevertDelay() + 100*time.Millisecond)

	after, err := printfill.RenderHTML(doc)
	if err != nil {
		return err
	}
	if after == before {
		log.Info("打印路径完成，文档已逐字节还原", zap.String("输入", inputPath))
	} else {
		log.Warn("还原后的文档与扫描前不一致", zap.String("输入", inputPath))
	}

	return nil
}

// resolveFormat 按配置与文件扩展名决定输入格式
func resolveFormat(configured, inputPath string) string {
	if configured != "" && configured != config.FormatAuto {
		return configured
	}
	switch strings.ToLower(filepath.Ext(inputPath)) {
	case ".md", ".markdown", ".mdown":
		return config.FormatMarkdown
	default:
		return config.FormatHTML
	}
}

// readInput 读取输入文件，- 表示标准输入
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// writeOutput 写出结果，路径为空表示标准输出
func writeOutput(path, content string) error {
	if path == "" {
		_, err := fmt.Print(content)
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
