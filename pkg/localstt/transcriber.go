package localstt

// Transcriber turns a single finished recording into text. It exists
// for providers without a native audio modality (see
// modelclient.AnthropicProvider): the app (cmd/xscribe) runs the
// recording through a Transcriber first and sends the result as
// Request.Text.
type Transcriber interface {
	// Transcribe converts 16kHz mono float32 PCM samples to text.
	Transcribe(samples []float32) (string, error)
	Close() error
}

// New loads a Transcriber per cfg, downloading the model file first if
// necessary. The concrete implementation is selected at build time by
// the cgo and whisper_go tags; see transcriber_cgo.go and
// transcriber_stub.go.
func New(cfg Config) (Transcriber, error) {
	modelPath, err := EnsureModel(cfg)
	if err != nil {
		return nil, err
	}
	return newWhisperTranscriber(cfg, modelPath)
}
