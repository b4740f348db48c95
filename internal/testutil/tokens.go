package testutil

// MemoryTokens is an in-memory token store
type MemoryTokens struct {
	Value    string
	SetErr   error
	ClearErr error
}

func (m *MemoryTokens) Token() (string, error) {
	return m.Value, nil
}

func (m *MemoryTokens) SetToken(token string) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.Value = token
	return nil
}

func (m *MemoryTokens) ClearToken() error {
	m.Value = ""
	return m.ClearErr
}
