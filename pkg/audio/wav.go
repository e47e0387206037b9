// Package audio provides functionality for capturing and processing audio
package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/jeff-barlow-spady/xscribe/pkg/logger"
)

// floatsToPCM16 converts float32 samples in [-1, 1] to int PCM samples
// suitable for a go-audio IntBuffer, clamping to the int16 range.
func floatsToPCM16(samples []float32) []int {
	ints := make([]int, len(samples))
	for i, s := range samples {
		v := int(s * 32767)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		ints[i] = v
	}
	return ints
}

// EncodeWAV renders mono float32 PCM as a 16-bit PCM WAV file in memory —
// the format a provider with a native audio input modality expects.
func EncodeWAV(samples []float32, sampleRate int) ([]byte, error) {
	var buf bytes.Buffer
	enc := wav.NewEncoder(&buf, sampleRate, 16, 1, 1)
	audioBuf := &goaudio.IntBuffer{
		Format: &goaudio.Format{SampleRate: sampleRate, NumChannels: 1},
		Data:   floatsToPCM16(samples),
	}
	if err := enc.Write(audioBuf); err != nil {
		return nil, fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close wav encoder: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveToWav saves audio samples to a WAV file on disk at 16kHz mono.
func SaveToWav(samples []float32, outputPath string) error {
	logger.Debug(logger.CategoryAudio, "Saving audio to WAV file: %s", outputPath)

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		logger.Error(logger.CategoryAudio, "Failed to create output directory: %v", err)
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if len(samples) < 1000 {
		logger.Warning(logger.CategoryAudio, "Very small audio sample size: %d samples", len(samples))
	}

	f, err := os.Create(outputPath)
	if err != nil {
		logger.Error(logger.CategoryAudio, "Failed to create WAV file: %v", err)
		return fmt.Errorf("failed to create WAV file: %w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, 16000, 16, 1, 1)
	audioBuf := &goaudio.IntBuffer{
		Format: &goaudio.Format{SampleRate: 16000, NumChannels: 1},
		Data:   floatsToPCM16(samples),
	}
	if err := enc.Write(audioBuf); err != nil {
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	return enc.Close()
}

// LoadFromWav loads a WAV file and returns the audio data as float32 samples
// normalized to [-1, 1], averaging down to mono if the file is stereo.
func LoadFromWav(filePath string) ([]float32, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("not a valid WAV file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode PCM data: %w", err)
	}

	numChannels := buf.Format.NumChannels
	logger.Info(logger.CategoryAudio, "WAV file: %d channels, %d Hz, %d bits per sample",
		numChannels, buf.Format.SampleRate, buf.SourceBitDepth)

	fullScale := float32(int(1) << (buf.SourceBitDepth - 1))
	if numChannels == 2 {
		samples := make([]float32, len(buf.Data)/2)
		for i := range samples {
			samples[i] = (float32(buf.Data[i*2]) + float32(buf.Data[i*2+1])) / (2 * fullScale)
		}
		return samples, nil
	}

	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float32(v) / fullScale
	}
	return samples, nil
}

// ConvertToPCM16 converts float32 audio samples to little-endian 16-bit
// PCM bytes, clamping samples to [-1, 1].
func ConvertToPCM16(samples []float32) []byte {
	bufferSize := len(samples) * 2
	buffer := make([]byte, bufferSize)

	for i, sample := range samples {
		if sample > 1.0 {
			sample = 1.0
		} else if sample < -1.0 {
			sample = -1.0
		}

		var sampleInt16 int16
		if sample >= 0 {
			sampleInt16 = int16(sample * 32767.0)
		} else {
			sampleInt16 = int16(sample * 32768.0)
		}

		buffer[i*2] = byte(sampleInt16 & 0xFF)
		buffer[i*2+1] = byte(sampleInt16 >> 8)
	}

	return buffer
}

// ResampleTo16k resamples audio data to 16kHz, which is what Whisper expects.
func ResampleTo16k(samples []float32, originalSampleRate int) []float32 {
	if originalSampleRate == 16000 {
		return samples
	}

	ratio := float64(16000) / float64(originalSampleRate)
	newLength := int(float64(len(samples)) * ratio)

	resampled := make([]float32, newLength)

	for i := 0; i < newLength; i++ {
		pos := float64(i) / ratio

		index := int(pos)
		if index >= len(samples)-1 {
			resampled[i] = samples[len(samples)-1]
			continue
		}

		weight := float32(pos - float64(index))
		resampled[i] = (1.0-weight)*samples[index] + weight*samples[index+1]
	}

	logger.Info(logger.CategoryAudio, "Resampled audio from %d Hz to 16000 Hz (from %d to %d samples)",
		originalSampleRate, len(samples), len(resampled))

	return resampled
}

// ProcessDspFilters applies any DSP filters to the audio data. Currently a
// passthrough.
func ProcessDspFilters(samples []float32) []float32 {
	return samples
}

// AppendToWav appends audio samples to an existing WAV file on disk,
// patching the RIFF/data chunk sizes in place. go-audio/wav's Encoder
// assumes a single contiguous Write-then-Close, so a live-growing file
// still needs this direct header patch rather than the library's encoder.
func AppendToWav(samples []float32, wavPath string) error {
	logger.Debug(logger.CategoryAudio, "Appending audio to WAV file: %s", wavPath)

	if _, err := os.Stat(wavPath); err != nil {
		return fmt.Errorf("cannot append to WAV file, file does not exist: %w", err)
	}

	file, err := os.OpenFile(wavPath, os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("failed to open WAV file for appending: %w", err)
	}
	defer file.Close()

	header := make([]byte, 44)
	if _, err := io.ReadFull(file, header); err != nil {
		return fmt.Errorf("failed to read WAV header: %w", err)
	}

	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return fmt.Errorf("not a valid WAV file")
	}

	existingDataSize := binary.LittleEndian.Uint32(header[40:44])
	newDataSize := existingDataSize + uint32(len(samples)*2)
	newChunkSize := 36 + newDataSize

	binary.LittleEndian.PutUint32(header[4:8], newChunkSize)
	binary.LittleEndian.PutUint32(header[40:44], newDataSize)

	if _, err := file.Seek(0, 0); err != nil {
		return fmt.Errorf("failed to seek to beginning of file: %w", err)
	}
	if _, err := file.Write(header); err != nil {
		return fmt.Errorf("failed to write updated header: %w", err)
	}

	if _, err := file.Seek(int64(44+existingDataSize), 0); err != nil {
		return fmt.Errorf("failed to seek to end of data: %w", err)
	}

	for _, sample := range samples {
		sampleInt16 := int16(sample * 32767.0)
		if err := binary.Write(file, binary.LittleEndian, sampleInt16); err != nil {
			return fmt.Errorf("failed to write sample data: %w", err)
		}
	}

	logger.Debug(logger.CategoryAudio, "Successfully appended %d samples to WAV file", len(samples))
	return nil
}
