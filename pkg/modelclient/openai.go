package modelclient

import (
	"context"
	"encoding/base64"
	"io"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
	"github.com/openai/openai-go/shared"

	"github.com/jeff-barlow-spady/xscribe/pkg/logger"
)

// OpenAIProvider drives the Chat Completions streaming API. Unlike
// AnthropicProvider it accepts raw audio directly in the user message,
// so a turn can skip pkg/localstt entirely when this provider is
// selected.
type OpenAIProvider struct {
	client oai.Client
	model  string
}

// NewOpenAIProvider returns a provider using apiKey and model (e.g. "gpt-4o-audio-preview").
func NewOpenAIProvider(apiKey, model string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, ErrMissingCredentials
	}
	client := oai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{client: client, model: model}, nil
}

// Stream implements Provider.
func (p *OpenAIProvider) Stream(ctx context.Context, req Request) (Stream, error) {
	var messages []oai.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		messages = append(messages, oai.SystemMessage(req.SystemPrompt))
	}

	userMsg, err := p.buildUserMessage(req)
	if err != nil {
		return nil, err
	}
	messages = append(messages, userMsg)

	params := oai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
	}

	stream := p.client.Chat.Completions.NewStreaming(ctx, params)
	if err := stream.Err(); err != nil {
		return nil, err
	}
	return newOpenAIStream(ctx, stream), nil
}

// buildUserMessage assembles the one user turn: prior snapshot plus
// either raw audio or pre-transcribed text, labeled the way
// transcription_service.py labels its single combined user message.
func (p *OpenAIProvider) buildUserMessage(req Request) (oai.ChatCompletionMessageParamUnion, error) {
	var parts []oai.ChatCompletionContentPartUnionParam

	if !req.Snapshot.IsEmpty() {
		parts = append(parts, oai.TextContentPart(
			"Current conversation XML: "+req.Snapshot.XMLMarkup+
				"\nCurrent conversation text: "+req.Snapshot.RenderedText))
	}

	switch {
	case req.Audio != nil:
		parts = append(parts, oai.ChatCompletionContentPartUnionParam{
			OfInputAudio: &oai.ChatCompletionContentPartInputAudioParam{
				InputAudio: oai.ChatCompletionContentPartInputAudioInputAudioParam{
					Data:   base64.StdEncoding.EncodeToString(req.Audio.PCM),
					Format: audioFormat(req.Audio.MimeType),
				},
			},
		})
	case req.Text != "":
		parts = append(parts, oai.TextContentPart("NEW INPUT:\n"+req.Text))
	default:
		return oai.ChatCompletionMessageParamUnion{}, ErrEmptyResponse
	}

	return oai.ChatCompletionMessageParamUnion{
		OfUser: &oai.ChatCompletionUserMessageParam{
			Content: oai.ChatCompletionUserMessageParamContentUnion{
				OfArrayOfContentParts: parts,
			},
		},
	}, nil
}

func audioFormat(mimeType string) string {
	switch mimeType {
	case "audio/mp3", "audio/mpeg":
		return "mp3"
	default:
		return "wav"
	}
}

// openAIStream adapts the SDK's ssestream.Stream to modelclient.Stream.
type openAIStream struct {
	ctx    context.Context
	cancel context.CancelFunc
	raw    *ssestream.Stream[oai.ChatCompletionChunk]

	chunks chan Chunk
	errCh  chan error
}

func newOpenAIStream(ctx context.Context, raw *ssestream.Stream[oai.ChatCompletionChunk]) *openAIStream {
	cctx, cancel := context.WithCancel(ctx)
	s := &openAIStream{
		ctx:    cctx,
		cancel: cancel,
		raw:    raw,
		chunks: make(chan Chunk, 32),
		errCh:  make(chan error, 1),
	}
	go s.run()
	return s
}

func (s *openAIStream) run() {
	defer close(s.chunks)
	for s.raw.Next() {
		chunk := s.raw.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		text := chunk.Choices[0].Delta.Content
		if text == "" {
			continue
		}
		select {
		case s.chunks <- Chunk{Text: text}:
		case <-s.ctx.Done():
			return
		}
	}
	if err := s.raw.Err(); err != nil {
		logger.Error(logger.CategoryModel, "openai stream error: %v", err)
		s.errCh <- err
	}
}

func (s *openAIStream) Recv() (Chunk, error) {
	select {
	case chunk, ok := <-s.chunks:
		if !ok {
			select {
			case err := <-s.errCh:
				return Chunk{}, err
			default:
				return Chunk{}, io.EOF
			}
		}
		return chunk, nil
	case <-s.ctx.Done():
		return Chunk{}, s.ctx.Err()
	}
}

func (s *openAIStream) Close() error {
	s.cancel()
	return s.raw.Close()
}
