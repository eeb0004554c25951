package usecase_test

import (
	"github.com/stretchr/testify/mock"

	"github.com/fairyhunter13/jobfit/internal/domain"
)

type mockJobStore struct{ mock.Mock }

func (m *mockJobStore) Upsert(ctx domain.Context, job domain.CanonicalJob) (domain.StoredJob, error) {
	args := m.Called(ctx, job)
	return args.Get(0).(domain.StoredJob), args.Error(1)
}

type mockAIClient struct{ mock.Mock }

func (m *mockAIClient) Chat(ctx domain.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	args := m.Called(ctx, systemPrompt, userPrompt, maxTokens)
	return args.String(0), args.Error(1)
}

func (m *mockAIClient) Provider() string { return "mock" }
