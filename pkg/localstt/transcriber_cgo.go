//go:build cgo && whisper_go
// +build cgo,whisper_go

package localstt

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/jeff-barlow-spady/xscribe/pkg/logger"
)

type whisperTranscriber struct {
	mu      sync.Mutex
	model   whisper.Model
	context whisper.Context
}

func newWhisperTranscriber(cfg Config, modelPath string) (Transcriber, error) {
	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("localstt: load model: %w", err)
	}

	context, err := model.NewContext()
	if err != nil {
		model.Close()
		return nil, fmt.Errorf("localstt: create context: %w", err)
	}

	if cfg.Language != "" && cfg.Language != "auto" {
		_ = context.SetLanguage(cfg.Language)
	}
	if cfg.Threads > 0 {
		context.SetThreads(cfg.Threads)
	}

	logger.Info(logger.CategoryModel, "local whisper transcriber ready using %s", modelPath)
	return &whisperTranscriber{model: model, context: context}, nil
}

func (t *whisperTranscriber) Transcribe(samples []float32) (string, error) {
	if len(samples) == 0 {
		return "", ErrEmptyAudio
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.context.Process(samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("localstt: whisper process: %w", err)
	}

	var sb strings.Builder
	for _, segment := range t.context.Segments() {
		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

func (t *whisperTranscriber) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.model != nil {
		t.model.Close()
		t.model = nil
	}
	t.context = nil
	return nil
}
