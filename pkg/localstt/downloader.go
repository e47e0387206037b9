package localstt

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/sync/singleflight"

	"github.com/jeff-barlow-spady/xscribe/pkg/logger"
)

// modelBaseURL is the HuggingFace mirror whisper.cpp itself publishes
// ggml model files to.
const modelBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// downloadGroup collapses concurrent EnsureModel calls for the same
// model size into a single download.
var downloadGroup singleflight.Group

// EnsureModel resolves cfg's model file, downloading it into the
// default model directory if it isn't present anywhere Config names.
func EnsureModel(cfg Config) (string, error) {
	if path, ok := resolveModelPath(cfg); ok {
		return path, nil
	}

	filename, ok := modelFilenames[cfg.ModelSize]
	if !ok {
		filename = modelFilenames[ModelTiny]
	}

	dir := defaultModelDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create model directory %s: %v", ErrModelDownloadFailed, dir, err)
	}

	dest := filepath.Join(dir, filename)
	result, err, _ := downloadGroup.Do(dest, func() (interface{}, error) {
		logger.Info(logger.CategoryModel, "downloading whisper model %s to %s", cfg.ModelSize, dest)
		if err := downloadFile(dest, filename); err != nil {
			return nil, err
		}
		logger.Info(logger.CategoryModel, "model download complete: %s", dest)
		return dest, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrModelDownloadFailed, err)
	}
	return result.(string), nil
}

func downloadFile(dest, filename string) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), "model-download-*.bin")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	resp, err := http.Get(modelBaseURL + "/" + filename)
	if err != nil {
		return fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		return fmt.Errorf("copy response body: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmp.Name(), dest)
}
