package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/go-dialogprep/internal/config"
	"github.com/example/go-dialogprep/internal/dataset"
	"github.com/example/go-dialogprep/internal/pipeline"
	"github.com/example/go-dialogprep/internal/testutil"
	"github.com/example/go-dialogprep/internal/text"
	"github.com/example/go-dialogprep/internal/tokenizer"
	"github.com/example/go-dialogprep/internal/vocab"
)

func TestReadSentences(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		stdin   string
		want    []string
		wantErr bool
	}{
		{"flag wins", "方向机 重", "ignored\n", []string{"方向机 重"}, false},
		{"stdin lines", "", "a b\n\n  c \n", []string{"a b", "c"}, false},
		{"nothing", "  ", "\n", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readSentences(tt.flag, strings.NewReader(tt.stdin))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v; wantErr %v", err, tt.wantErr)
			}

			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("got %q; want %q", got, tt.want)
			}
		})
	}
}

func TestRunEncode(t *testing.T) {
	dir := t.TempDir()

	v := vocab.FromRanked([]string{"方向机", "重"}, 0)
	if err := v.Save(filepath.Join(dir, pipeline.VocabFile), filepath.Join(dir, pipeline.ReverseVocabFile)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Paths.OutputDir = dir
	cfg.Encode.MaxEncLen = 5

	proc := text.NewProcessor(&text.Resources{
		Tokenizer: tokenizer.Whitespace{},
		Stopwords: text.NewStopwordSet("的"),
	})

	var out strings.Builder
	if err := runEncode(cfg, proc, []string{"方向机 的 重", "异响"}, &out); err != nil {
		t.Fatalf("runEncode: %v", err)
	}

	want := "2 4 5 3 0\n2 1 3 0 0\n"
	if out.String() != want {
		t.Errorf("output = %q; want %q", out.String(), want)
	}
}

func TestRunEncode_Errors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Paths.OutputDir = t.TempDir()

	proc := text.NewProcessor(&text.Resources{Tokenizer: tokenizer.Whitespace{}})

	if err := runEncode(cfg, proc, []string{"a"}, &strings.Builder{}); err == nil {
		t.Error("expected error without vocabulary files")
	}

	cfg.Encode.MaxEncLen = 1
	if err := runEncode(cfg, proc, []string{"a"}, &strings.Builder{}); err == nil {
		t.Error("expected error for max-enc-len < 2")
	}
}

func TestRunInspect(t *testing.T) {
	dir := t.TempDir()

	x, err := dataset.NewMatrix(2, 4, []int64{2, 4, 3, 0, 2, 5, 4, 3})
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}

	y, err := dataset.NewMatrix(2, 3, []int64{2, 4, 3, 2, 1, 3})
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}

	if err := (&dataset.Dataset{X: x, Y: y}).Save(filepath.Join(dir, pipeline.TrainTensorFile), nil); err != nil {
		t.Fatalf("Save train: %v", err)
	}

	if err := (&dataset.Dataset{X: x}).Save(filepath.Join(dir, pipeline.TestTensorFile), nil); err != nil {
		t.Fatalf("Save test: %v", err)
	}

	m := &dataset.Manifest{RunID: "run-1", CreatedAt: time.Now().UTC(), TrainRows: 2, TestRows: 2, MaxLenX: 2, MaxLenY: 1, VocabSize: 6}
	if err := m.Write(filepath.Join(dir, pipeline.ManifestFile)); err != nil {
		t.Fatalf("Write manifest: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Paths.OutputDir = dir
	cfg.Encode.MaxEncLen = 3
	cfg.Encode.MaxDecLen = 0

	var out strings.Builder
	if err := runInspect(cfg, 1, &out); err != nil {
		t.Fatalf("runInspect: %v", err)
	}

	for _, want := range []string{"run-1", "train:", "x (2, 3)", "y (2, 3)", "    2 4 3\n", "test:"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunInspect_MissingManifest(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Paths.OutputDir = t.TempDir()

	if err := runInspect(cfg, 0, &strings.Builder{}); err == nil {
		t.Error("expected error without manifest")
	}
}

func TestRunBuild(t *testing.T) {
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Paths.Dictionary = testutil.WriteLines(t, dir, "dict.txt",
		"技师 100", "车主 100", "检查 80", "刹车片 40", "助力泵 30", "异响 30", "建议 20", "更换 20")
	cfg.Paths.UserDictionary = testutil.WriteLines(t, dir, "user_dict.txt", "方向机 10", "朗逸 5")
	cfg.Paths.Stopwords = testutil.WriteLines(t, dir, "stopwords.txt", "的", "了")
	cfg.Paths.TrainData = testutil.WriteLines(t, dir, "train.csv",
		"QID,Brand,Model,Question,Dialogue,Report",
		"Q1,奔驰,E300,方向机很重,技师说：你好|车主说：[语音],建议更换助力泵",
		"Q2,宝马,X1,刹车有异响,技师说：需要检查刹车片,检查刹车片",
	)
	cfg.Paths.TestData = testutil.WriteLines(t, dir, "test.csv",
		"QID,Brand,Model,Question,Dialogue",
		"T1,大众,朗逸,方向机异响,技师说：检查助力泵",
	)
	cfg.Paths.OutputDir = filepath.Join(dir, "out")
	cfg.Embedding.Dim = 8
	cfg.Embedding.Epochs = 1
	cfg.Embedding.MinCount = 1
	cfg.Build.Workers = 2

	var out strings.Builder
	if err := runBuild(context.Background(), cfg, &out); err != nil {
		t.Fatalf("runBuild: %v", err)
	}

	if !strings.Contains(out.String(), "train 2, test 1") {
		t.Errorf("summary = %q", out.String())
	}
}

func TestRunBench(t *testing.T) {
	proc := text.NewProcessor(&text.Resources{Tokenizer: tokenizer.Whitespace{}})
	table := &dataset.Table{Rows: []dataset.Record{
		{Brand: "a", Model: "b", Question: "方向机 重", Dialogue: "技师 说"},
		{Brand: "c", Model: "d", Question: "异响", Dialogue: "检查"},
		{Brand: "e", Model: "f", Question: "抖动", Dialogue: ""},
	}}

	results, err := runBench(context.Background(), proc, table, 3, 2)
	if err != nil {
		t.Fatalf("runBench: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("len(results) = %d; want 3", len(results))
	}

	for i, r := range results {
		if r.Index != i || r.Cold != (i == 0) || r.Rows != 3 || r.Workers != 2 {
			t.Errorf("result %d = %+v", i, r)
		}
	}
}

func TestRunBench_Canceled(t *testing.T) {
	proc := text.NewProcessor(&text.Resources{Tokenizer: tokenizer.Whitespace{}})
	table := &dataset.Table{Rows: []dataset.Record{{Question: "a"}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := runBench(ctx, proc, table, 2, 1); err == nil {
		t.Error("expected error for canceled context")
	}
}
