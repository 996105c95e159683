package completion

import (
	"context"
	"log"
)

// WithLogging logs model, prompt size and errors for every request. A nil
// logger uses log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next Completer) Completer {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next Completer
	log  *log.Logger
}

func (l *logging) Name() string { return l.next.Name() }

func (l *logging) Complete(ctx context.Context, req Request) (string, error) {
	l.log.Printf("completion request (%s %s): %d prompt tokens, max %d, temperature %.1f",
		l.next.Name(), req.Model, CountTokens(req.Model, req.Prompt), req.MaxTokens, req.Temperature)
	out, err := l.next.Complete(ctx, req)
	if err != nil {
		l.log.Printf("completion error (%s): %v", l.next.Name(), err)
		return out, err
	}
	l.log.Printf("completion response (%s): %d bytes", l.next.Name(), len(out))
	return out, nil
}
