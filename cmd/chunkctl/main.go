package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"chunkforge/internal/chunking"
	"chunkforge/internal/export"
	"chunkforge/internal/models"
	"chunkforge/internal/parser"
	"chunkforge/internal/tokenizer"
	"chunkforge/internal/util"
)

// chunkctl chunks local files without the api, worker, or database: parse,
// generate, export, one artifact per input file.

type Config struct {
	In            string
	Out           string
	ConfigPath    string
	Preset        string
	Strategy      string
	ChunkSize     int
	Encoding      string
	Format        string
	ExportPreset  string
	OverlapUnit   string
	OverlapAmount int
	IDPrefix      string
	Workers       int
	PageSeparator string
}

var supportedExts = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
	".pdf":      true,
}

func main() {
	config := parseFlags()

	if err := run(config); err != nil {
		log.Fatal(err)
	}
}

func parseFlags() Config {
	var config Config

	flag.StringVar(&config.In, "in", ".", "File or directory to chunk")
	flag.StringVar(&config.Out, "out", "./chunks", "Output directory for export artifacts")
	flag.StringVar(&config.ConfigPath, "config", "", "Path to a preset config file")
	flag.StringVar(&config.Preset, "preset", "", "Named preset from the config file")
	flag.StringVar(&config.Strategy, "strategy", chunking.StrategyRecursive, "Chunking strategy")
	flag.IntVar(&config.ChunkSize, "chunk-size", 0, "Target chunk size, 0 uses the strategy default")
	flag.StringVar(&config.Encoding, "encoding", "cl100k_base", "Tokenizer encoding for token counts")
	flag.StringVar(&config.Format, "format", export.FormatJSONL, "Export format: json, jsonl, csv, markdown")
	flag.StringVar(&config.ExportPreset, "export-preset", export.PresetGeneric, "Export shape: generic, langchain, llamaindex")
	flag.StringVar(&config.OverlapUnit, "overlap-unit", string(chunking.OverlapChars), "Overlap unit: characters or tokens")
	flag.IntVar(&config.OverlapAmount, "overlap", 0, "Overlap injected into exported chunk copies")
	flag.StringVar(&config.IDPrefix, "id-prefix", "", "Rewrite exported chunk ids with this prefix")
	flag.IntVar(&config.Workers, "workers", runtime.NumCPU(), "Documents processed concurrently")
	flag.StringVar(&config.PageSeparator, "page-separator", chunking.DefaultPageSeparator, "Separator that marks page breaks")
	flag.Parse()

	return config
}

type chunkPreset struct {
	Strategy          string   `yaml:"strategy"`
	ChunkSize         int      `yaml:"chunk_size"`
	Separators        []string `yaml:"separators"`
	HeadingLevels     []int    `yaml:"heading_levels"`
	MaxSectionSize    int      `yaml:"max_section_size"`
	SentencesPerChunk int      `yaml:"sentences_per_chunk"`
	ChunkSizes        []int    `yaml:"chunk_sizes"`
	PageSeparator     string   `yaml:"page_separator"`
}

func (p chunkPreset) toConfig() chunking.Config {
	return chunking.Config{
		Strategy:          p.Strategy,
		ChunkSize:         p.ChunkSize,
		Separators:        p.Separators,
		HeadingLevels:     p.HeadingLevels,
		MaxSectionSize:    p.MaxSectionSize,
		SentencesPerChunk: p.SentencesPerChunk,
		ChunkSizes:        p.ChunkSizes,
		PageSeparator:     p.PageSeparator,
	}
}

type exportSettings struct {
	Format  string `yaml:"format"`
	Preset  string `yaml:"preset"`
	Overlap struct {
		Unit   string `yaml:"unit"`
		Amount int    `yaml:"amount"`
	} `yaml:"overlap"`
	IDPrefix string `yaml:"id_prefix"`
}

type presetFile struct {
	Default string                 `yaml:"default"`
	Presets map[string]chunkPreset `yaml:"presets"`
	Export  exportSettings         `yaml:"export"`
}

func loadPresets(path string) (*presetFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var pf presetFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &pf, nil
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("docs"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func run(config Config) error {
	chunkCfg := chunking.Config{
		Strategy:      config.Strategy,
		ChunkSize:     config.ChunkSize,
		PageSeparator: config.PageSeparator,
	}
	opts := export.Options{
		Format: config.Format,
		Preset: config.ExportPreset,
		Overlap: chunking.OverlapSpec{
			Unit:   chunking.OverlapUnit(config.OverlapUnit),
			Amount: config.OverlapAmount,
		},
		IDPrefix: config.IDPrefix,
	}

	if config.ConfigPath != "" {
		pf, err := loadPresets(config.ConfigPath)
		if err != nil {
			return err
		}
		name := config.Preset
		if name == "" {
			name = pf.Default
		}
		if name != "" {
			preset, ok := pf.Presets[name]
			if !ok {
				return fmt.Errorf("preset %q not found in %s", name, config.ConfigPath)
			}
			chunkCfg = preset.toConfig()
			if chunkCfg.PageSeparator == "" {
				chunkCfg.PageSeparator = config.PageSeparator
			}
			color.Cyan("Using preset %q (strategy %s)", name, chunkCfg.Strategy)
		}
		if pf.Export.Format != "" {
			opts.Format = pf.Export.Format
		}
		if pf.Export.Preset != "" {
			opts.Preset = pf.Export.Preset
		}
		if pf.Export.Overlap.Amount > 0 {
			opts.Overlap = chunking.OverlapSpec{
				Unit:   chunking.OverlapUnit(pf.Export.Overlap.Unit),
				Amount: pf.Export.Overlap.Amount,
			}
		}
		if pf.Export.IDPrefix != "" {
			opts.IDPrefix = pf.Export.IDPrefix
		}
	}

	files, err := collectFiles(config.In)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no supported documents under %s (md, markdown, txt, pdf)", config.In)
	}
	if err := util.EnsureDir(config.Out); err != nil {
		return err
	}

	var tok chunking.Tokenizer
	if enc, err := tokenizer.New(config.Encoding); err == nil {
		tok = enc
	} else {
		color.Yellow("tokenizer encoding %q unavailable, token counts are estimates", config.Encoding)
	}
	exporter := export.New(tok)

	workers := config.Workers
	if workers <= 0 {
		workers = 1
	}

	bar := getProgressBar(len(files), " Chunking documents")
	g, gctx := errgroup.WithContext(context.Background())
	semaphore := make(chan struct{}, workers)

	var (
		totalChunks int32
		failed      int32
	)
	for _, path := range files {
		path := path
		g.Go(func() error {
			select {
			case semaphore <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-semaphore }()

			n, err := processFile(path, config.Out, chunkCfg, opts, exporter, tok)
			if err != nil {
				atomic.AddInt32(&failed, 1)
				color.Red("✗ %s: %v", filepath.Base(path), err)
			} else {
				atomic.AddInt32(&totalChunks, int32(n))
			}
			_ = bar.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	_ = bar.Finish()
	fmt.Println()

	ok := len(files) - int(failed)
	color.Green("✓ Chunked %d documents into %d chunks (%s)", ok, totalChunks, config.Out)
	if failed > 0 {
		color.Yellow("%d documents failed, see messages above", failed)
	}
	return nil
}

func collectFiles(in string) ([]string, error) {
	info, err := os.Stat(in)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if !supportedExts[strings.ToLower(filepath.Ext(in))] {
			return nil, fmt.Errorf("unsupported document format: %s", filepath.Ext(in))
		}
		return []string{in}, nil
	}

	var files []string
	err = filepath.WalkDir(in, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if supportedExts[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func processFile(path, outDir string, cfg chunking.Config, opts export.Options, exporter *export.Exporter, tok chunking.Tokenizer) (int, error) {
	res, err := parser.ParseLocal(path)
	if err != nil {
		return 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	documentID, err := util.SHA256HexFromReader(f)
	_ = f.Close()
	if err != nil {
		return 0, err
	}

	doc := models.Document{
		DocumentID:    documentID,
		Filename:      filepath.Base(path),
		Content:       res.Markdown,
		ContentLength: len(res.Markdown),
		PageSeparator: cfg.PageSeparator,
		Strategy:      cfg.Strategy,
	}
	if res.PageCount > 0 {
		pc := res.PageCount
		doc.PageCount = &pc
	}

	chunks := chunking.Generate(doc, cfg, tok)
	out, err := exporter.Export(doc, chunks, opts)
	if err != nil {
		return 0, err
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	target := filepath.Join(outDir, stem+"-"+out.Filename)
	if err := util.WriteBytesAtomic(target, out.Payload); err != nil {
		return 0, err
	}
	return len(chunks), nil
}
