package webhook

import "context"

// MockClient permite tests sin llamar al webhook real.
type MockClient struct {
	Response string
	Err      error
	Requests []Request
}

func (m *MockClient) Send(ctx context.Context, req Request) (string, error) {
	m.Requests = append(m.Requests, req)
	return m.Response, m.Err
}
