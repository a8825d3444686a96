// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package mock

import "context"

// defaultCompletion is a minimal well-formed suggestion payload.
const defaultCompletion = `{"suggestions":[{"title":"Add a usage section","category":"documentation","rationale":"The README has no usage examples.","proposed_text":"## Usage\n\nRun the binary with a repository URL."}]}`

// MockChatModel is a test double for ai.ChatModel.
// It allows custom behavior injection via function fields, or a fixed
// script of responses consumed one per call.
type MockChatModel struct {
	// CompleteFunc is called by Complete if set.
	// If nil, scripted Responses are consumed; if those run out (or
	// none were given), a default well-formed payload is returned.
	CompleteFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Responses are returned in order, one per Complete call.
	Responses []string

	// LastSystemPrompt and LastUserPrompt record the most recent call
	// for prompt-content assertions.
	LastSystemPrompt string
	LastUserPrompt   string

	callCount int
}

// NewMockChatModel creates a mock chat model with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockChatModel() *MockChatModel {
	return &MockChatModel{}
}

// Complete returns the injected behavior, the next scripted response,
// or the default payload.
func (m *MockChatModel) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	call := m.callCount
	m.callCount++
	m.LastSystemPrompt = systemPrompt
	m.LastUserPrompt = userPrompt

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, systemPrompt, userPrompt)
	}

	if call < len(m.Responses) {
		return m.Responses[call], nil
	}

	return defaultCompletion, nil
}

// CallCount returns the number of times Complete was called.
func (m *MockChatModel) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockChatModel) Reset() {
	m.callCount = 0
	m.CompleteFunc = nil
	m.Responses = nil
	m.LastSystemPrompt = ""
	m.LastUserPrompt = ""
}
