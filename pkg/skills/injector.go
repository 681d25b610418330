package skills

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/helicon-ai/skillforge/pkg/logging"
)

const (
	injectHeader     = "## Learned Strategies"
	injectHeaderTopK = "## Learned Strategies (TOP-K)"
)

// InjectContext appends the ranked skill block to the prompt and returns
// the result. The prompt is never mutated in place, the repository lock is
// held only while snapshotting, and any internal failure returns the
// original prompt unchanged.
func (e *Engine) InjectContext(prompt string) string {
	if !e.config.Enabled {
		return prompt
	}

	result := prompt
	start := time.Now()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("inject panic: %v", r)
			}
		}()

		e.mu.Lock()
		snapshot := e.repo.Skills()
		e.mu.Unlock()

		if len(snapshot) == 0 {
			return nil
		}

		var block string
		if k := e.config.TopKSkills; k > 0 && len(snapshot) > k {
			sort.SliceStable(snapshot, func(i, j int) bool {
				return snapshot[i].Score() > snapshot[j].Score()
			})
			block = RenderSkills(injectHeaderTopK, snapshot[:k])
		} else {
			block = RenderGrouped(injectHeader, snapshot)
		}

		result = prompt + "\n\n" + block
		return nil
	}()

	e.telemetry.Record(KindInject, time.Since(start), err == nil, map[string]interface{}{
		"top_k": e.config.TopKSkills,
	}, err)
	if err != nil {
		logging.GetLogger().Error(context.Background(), "context injection failed, passing prompt through: %v", err)
		return prompt
	}

	return result
}
