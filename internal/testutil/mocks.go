// Package testutil provides shared test doubles for the engine's external
// collaborators.
package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/helicon-ai/skillforge/pkg/skills"
)

// MockReflectionService is a testify mock for skills.ReflectionService.
type MockReflectionService struct {
	mock.Mock
}

func (m *MockReflectionService) Reflect(ctx context.Context, event *skills.LearningEvent) (*skills.Reflection, error) {
	args := m.Called(ctx, event)
	if r := args.Get(0); r != nil {
		return r.(*skills.Reflection), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockCurationService is a testify mock for skills.CurationService.
type MockCurationService struct {
	mock.Mock
}

func (m *MockCurationService) Curate(ctx context.Context, reflection *skills.Reflection, snapshot []skills.Skill, taskContext string) (skills.SkillUpdate, error) {
	args := m.Called(ctx, reflection, snapshot, taskContext)
	if u := args.Get(0); u != nil {
		return u.(skills.SkillUpdate), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockTextGenerator is a testify mock for skills.TextGenerator.
type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	args := m.Called(ctx, prompt, maxTokens)
	return args.String(0), args.Error(1)
}

func (m *MockTextGenerator) ModelID() string {
	args := m.Called()
	return args.String(0)
}
