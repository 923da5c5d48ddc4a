package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJobPriorityRankOrdersCriticalFirst(t *testing.T) {
	assert.Less(t, PriorityCritical.Rank(), PriorityHigh.Rank())
	assert.Less(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Less(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.Greater(t, JobPriority("unknown").Rank(), PriorityLow.Rank())
}

func TestJobPriorityValid(t *testing.T) {
	assert.True(t, PriorityHigh.Valid())
	assert.False(t, JobPriority("urgent").Valid())
}

func TestJobStatusIsTerminal(t *testing.T) {
	assert.True(t, JobStatusDone.IsTerminal())
	assert.True(t, JobStatusCancelled.IsTerminal())
	assert.False(t, JobStatusTodo.IsTerminal())
	assert.False(t, JobStatusInProgress.IsTerminal())
}

func TestSummarizeTruncatesAtRuneLimit(t *testing.T) {
	short := "hello world"
	assert.Equal(t, short, Summarize(short))

	long := strings.Repeat("x", SummaryRuneLimit+50)
	summary := Summarize(long)
	assert.Len(t, []rune(summary), SummaryRuneLimit)
}

func TestLockLiveAndAge(t *testing.T) {
	now := time.Now()
	lock := &Lock{UpdatedAt: now.Add(-time.Minute)}
	assert.True(t, lock.Live(now, 2*time.Minute))
	assert.False(t, lock.Live(now, 30*time.Second))
}
