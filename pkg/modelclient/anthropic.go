package modelclient

import (
	"context"
	"io"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"github.com/jeff-barlow-spady/xscribe/pkg/logger"
)

// AnthropicProvider drives Claude's Messages streaming API. It has no
// audio modality: Request.Audio is rejected with ErrAudioNotSupported,
// and callers must pre-transcribe via pkg/localstt first.
type AnthropicProvider struct {
	client    sdk.Client
	model     sdk.Model
	maxTokens int64
}

// NewAnthropicProvider returns a provider using apiKey and model (e.g.
// sdk.ModelClaude3_7SonnetLatest).
func NewAnthropicProvider(apiKey string, model sdk.Model, maxTokens int64) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, ErrMissingCredentials
	}
	return &AnthropicProvider{
		client:    sdk.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Stream implements Provider.
func (p *AnthropicProvider) Stream(ctx context.Context, req Request) (Stream, error) {
	if req.Audio != nil {
		return nil, ErrAudioNotSupported
	}

	userContent := req.Text
	if !req.Snapshot.IsEmpty() {
		userContent = "Current conversation XML: " + req.Snapshot.XMLMarkup +
			"\nCurrent conversation text: " + req.Snapshot.RenderedText +
			"\n\nNEW INPUT:\n" + req.Text
	}

	params := sdk.MessageNewParams{
		Model:     p.model,
		MaxTokens: p.maxTokens,
		System: []sdk.TextBlockParam{
			{Text: req.SystemPrompt},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(userContent)),
		},
	}

	sseStream := p.client.Messages.NewStreaming(ctx, params)
	return newAnthropicStream(ctx, sseStream), nil
}

// anthropicStream adapts an *ssestream.Stream[sdk.MessageStreamEventUnion]
// to modelclient.Stream, draining it on a background goroutine the way
// the pack's SSE adapters do so Recv never blocks on stream internals
// directly.
type anthropicStream struct {
	ctx    context.Context
	cancel context.CancelFunc
	raw    *ssestream.Stream[sdk.MessageStreamEventUnion]

	chunks chan Chunk
	errCh  chan error
}

func newAnthropicStream(ctx context.Context, raw *ssestream.Stream[sdk.MessageStreamEventUnion]) *anthropicStream {
	cctx, cancel := context.WithCancel(ctx)
	s := &anthropicStream{
		ctx:    cctx,
		cancel: cancel,
		raw:    raw,
		chunks: make(chan Chunk, 32),
		errCh:  make(chan error, 1),
	}
	go s.run()
	return s
}

func (s *anthropicStream) run() {
	defer close(s.chunks)
	for s.raw.Next() {
		event := s.raw.Current()
		if delta, ok := event.AsAny().(sdk.ContentBlockDeltaEvent); ok {
			if text, ok := delta.Delta.AsAny().(sdk.TextDelta); ok && text.Text != "" {
				select {
				case s.chunks <- Chunk{Text: text.Text}:
				case <-s.ctx.Done():
					return
				}
			}
		}
	}
	if err := s.raw.Err(); err != nil {
		logger.Error(logger.CategoryModel, "anthropic stream error: %v", err)
		s.errCh <- err
	}
}

func (s *anthropicStream) Recv() (Chunk, error) {
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

func (s *anthropicStream) Close() error {
	s.cancel()
	return s.raw.Close()
}
