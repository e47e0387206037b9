package modelclient

import (
	"io"
	"testing"
)

// fakeStream is a canned Stream for exercising code that only depends on
// the Provider/Stream interfaces, not on a concrete SDK.
type fakeStream struct {
	chunks []Chunk
	pos    int
	err    error
	closed bool
}

func (f *fakeStream) Recv() (Chunk, error) {
	if f.pos >= len(f.chunks) {
		if f.err != nil {
			return Chunk{}, f.err
		}
		return Chunk{}, io.EOF
	}
	c := f.chunks[f.pos]
	f.pos++
	return c, nil
}

func (f *fakeStream) Close() error {
	f.closed = true
	return nil
}

func drain(s Stream) (string, error) {
	var out string
	for {
		c, err := s.Recv()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out += c.Text
	}
}

func TestDrainConcatenatesChunksUntilEOF(t *testing.T) {
	s := &fakeStream{chunks: []Chunk{{Text: "<1>hel"}, {Text: "lo</1>"}}}
	got, err := drain(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "<1>hello</1>" {
		t.Fatalf("got %q", got)
	}
}

func TestNewAnthropicProviderRejectsEmptyKey(t *testing.T) {
	if _, err := NewAnthropicProvider("", "claude-3-7-sonnet-latest", 1024); err != ErrMissingCredentials {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestNewOpenAIProviderRejectsEmptyKey(t *testing.T) {
	if _, err := NewOpenAIProvider("", "gpt-4o-audio-preview"); err != ErrMissingCredentials {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

// TestOpenAIUserMessageIncludesSnapshotPartWhenPresent locks in that a
// non-empty snapshot contributes its own content part (carrying both the
// XML and rendered-text labels together) ahead of the new-input part, and
// that an empty snapshot contributes none.
func TestOpenAIUserMessageIncludesSnapshotPartWhenPresent(t *testing.T) {
	p := &OpenAIProvider{}
	req := Request{
		Snapshot: ConversationSnapshot{
			XMLMarkup:    "<10>The </10><20>quick </20>",
			RenderedText: "The quick ",
		},
		Text: "brown fox",
	}

	msg, err := p.buildUserMessage(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(msg.OfUser.Content.OfArrayOfContentParts); got != 2 {
		t.Fatalf("expected a snapshot part plus a new-input part, got %d parts", got)
	}
}

func TestOpenAIUserMessageOmitsSnapshotWhenEmpty(t *testing.T) {
	p := &OpenAIProvider{}
	req := Request{Text: "hello"}

	msg, err := p.buildUserMessage(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(msg.OfUser.Content.OfArrayOfContentParts); got != 1 {
		t.Fatalf("expected exactly one content part with no snapshot, got %d", got)
	}
}
