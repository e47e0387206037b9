// Package localstt provides local, offline speech-to-text via
// whisper.cpp's Go bindings. It exists so a text-only model provider
// (see pkg/modelclient) can still be driven by voice: the audio is
// transcribed on-device first and the resulting text takes the
// Request.Text path instead of Request.Audio.
package localstt

import "errors"

// Common error types for the localstt package.
var (
	// ErrModelNotFound indicates the configured model file could not be
	// located in any standard location and was not downloaded.
	ErrModelNotFound = errors.New("localstt: whisper model not found")

	// ErrModelDownloadFailed indicates downloading the model failed.
	ErrModelDownloadFailed = errors.New("localstt: failed to download whisper model")

	// ErrBindingsUnavailable indicates the binary was built without the
	// whisper_go tag, so no local transcription backend is linked in.
	ErrBindingsUnavailable = errors.New("localstt: whisper.cpp Go bindings not available (build with -tags=whisper_go)")

	// ErrEmptyAudio indicates Transcribe was called with no samples.
	ErrEmptyAudio = errors.New("localstt: no audio samples to transcribe")
)
