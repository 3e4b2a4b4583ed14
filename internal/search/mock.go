package search

import "context"

// MockClient permite tests sin llamar a un buscador real.
type MockClient struct {
	Results []Result
	Err     error

	LastQuery string
}

func (m *MockClient) Search(ctx context.Context, query string) ([]Result, error) {
	m.LastQuery = query
	return m.Results, m.Err
}
