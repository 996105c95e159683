package completion

import (
	"context"
	"sync"
)

// demoResponses answer the reform, structure and JSON stages in order.
var demoResponses = []string{
	"tracks daily habits and shows a weekly streak for each one",
	`    favicon.ico
/components
    HabitList.tsx
    StreakBadge.tsx
/pages
    /api
        habits.ts
    _app.tsx
    index.tsx
/styles
    globals.css
`,
	`
  "public": {
    "favicon.ico": {}
  },
  "components": {
    "HabitList.tsx": {},
    "StreakBadge.tsx": {}
  },
  "pages": {
    "api": {
      "habits.ts": {}
    },
    "_app.tsx": {},
    "index.tsx": {}
  },
  "styles": {
    "globals.css": {}
  }
}
`,
}

// FakeClient returns canned responses in order, cycling when it runs out,
// and records every request it sees. It never touches the network.
type FakeClient struct {
	mu        sync.Mutex
	responses []string
	requests  []Request
	next      int

	// Err, when set, is returned instead of a response.
	Err error
}

// NewFakeClient returns a client scripted with responses, or with a
// three-stage demo script when none are given.
func NewFakeClient(responses ...string) *FakeClient {
	if len(responses) == 0 {
		responses = demoResponses
	}
	return &FakeClient{responses: responses}
}

func (f *FakeClient) Name() string { return "fake" }

func (f *FakeClient) Complete(_ context.Context, req Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.Err != nil {
		return "", f.Err
	}
	out := f.responses[f.next%len(f.responses)]
	f.next++
	return out, nil
}

// Requests returns a copy of the requests seen so far.
func (f *FakeClient) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}
