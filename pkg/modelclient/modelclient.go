// Package modelclient defines the boundary between the coordinator and
// whatever LLM backend turns a recording into the numbered-segment XML
// stream pkg/streamproc parses. Provider implementations live in
// anthropic.go and openai.go.
package modelclient

import (
	"context"
	"errors"
)

// Common error types for the model-client package.
var (
	// ErrAudioNotSupported indicates this provider's API has no audio
	// input modality and the caller must pre-transcribe via pkg/localstt
	// and send Request.Text instead.
	ErrAudioNotSupported = errors.New("modelclient: provider does not accept raw audio input")

	// ErrEmptyResponse indicates a request carried neither audio nor
	// text, so there was no user input to send.
	ErrEmptyResponse = errors.New("modelclient: provider returned an empty response")

	// ErrMissingCredentials indicates the provider was selected but its
	// required API key/config was not supplied.
	ErrMissingCredentials = errors.New("modelclient: missing provider credentials")
)

// AudioInput is a single-shot recording to hand to a provider capable of
// accepting raw audio in its user message.
type AudioInput struct {
	PCM          []byte
	SampleRateHz int
	MimeType     string // e.g. "audio/wav"
}

// ConversationSnapshot is the frozen state of the prior turn's output.
// It is captured once, when a finished recording is dispatched to the
// model, not when the recording starts; from then on the request sees
// that view even if the segment store moves on.
type ConversationSnapshot struct {
	// XMLMarkup is the prior turn's <id>body</id> segment markup.
	XMLMarkup string

	// RenderedText is the prior turn's plain-text render of that markup.
	RenderedText string

	// SampleRateHz is the audio sample rate in effect for this
	// conversation, carried alongside the text state for providers that
	// need it to interpret or re-encode raw audio.
	SampleRateHz int
}

// IsEmpty reports whether this snapshot carries no prior conversation —
// the case for the first turn, where providers leave the prior-state
// part out of the user message.
func (s ConversationSnapshot) IsEmpty() bool {
	return s.XMLMarkup == ""
}

// Request is one turn's worth of input to a provider. Exactly one of
// Audio or Text is set: Audio for providers with a native audio
// modality, Text for providers that require pre-transcription.
type Request struct {
	// SystemPrompt is the composed instruction template for the active
	// mode (see pkg/instructions). Providers send it as a cacheable
	// system message.
	SystemPrompt string

	// Snapshot is the prior turn's frozen conversation state, given as
	// context so the model can continue or revise it rather than
	// starting blank.
	Snapshot ConversationSnapshot

	Audio *AudioInput
	Text  string
}

// Chunk is one piece of streamed text output.
type Chunk struct {
	Text string
}

// Stream is a provider's in-flight response. Recv returns io.EOF once the
// stream is exhausted; Close releases the underlying connection and may
// be called at any time, including before the stream is drained.
type Stream interface {
	Recv() (Chunk, error)
	Close() error
}

// Provider is one LLM backend capable of turning a Request into a
// streamed XML reply.
type Provider interface {
	Stream(ctx context.Context, req Request) (Stream, error)
}
