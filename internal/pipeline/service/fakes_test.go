package service

import (
	"context"
	"sync"

	"golang-deal-scout/internal/pipeline/dto"
)

// fakeAgent replays canned responses in order; the last one repeats.
type fakeAgent struct {
	mu        sync.Mutex
	responses []string
	err       error
	fragments []string
	calls     [][]dto.Message
	// during runs inside Complete, before the reply is returned.
	during func()
}

func (f *fakeAgent) Complete(_ context.Context, messages []dto.Message) (string, error) {
	if f.during != nil {
		f.during()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, messages)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", nil
	}
	resp := f.responses[0]
	if len(f.responses) > 1 {
		f.responses = f.responses[1:]
	}
	return resp, nil
}

func (f *fakeAgent) Stream(ctx context.Context, messages []dto.Message) (<-chan dto.StreamFragment, error) {
	f.mu.Lock()
	f.calls = append(f.calls, messages)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make(chan dto.StreamFragment)
	go func() {
		defer close(out)
		for _, text := range f.fragments {
			select {
			case out <- dto.StreamFragment{Text: text}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (f *fakeAgent) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return ""
	}
	msgs := f.calls[len(f.calls)-1]
	return msgs[len(msgs)-1].Content
}

func (f *fakeAgent) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeNotifier struct {
	messages []string
}

func (f *fakeNotifier) SendMessage(text string) error {
	f.messages = append(f.messages, text)
	return nil
}
