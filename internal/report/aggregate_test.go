package report

import (
	"testing"

	"github.com/ashureev/tabtime/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestAggregate_StartOnlyWindow(t *testing.T) {
	sessions := []domain.SessionRecord{
		{Domain: "a.com", Start: 1000, End: 5000},
		{Domain: "a.com", Start: 100000, End: 200000},
	}

	got := Aggregate(sessions, 0, 10000)

	assert.Equal(t, Totals{"a.com": 4}, got)
}

func TestAggregate_BoundsAreInclusive(t *testing.T) {
	sessions := []domain.SessionRecord{
		{Domain: "a.com", Start: 1000, End: 3500},
		{Domain: "b.com", Start: 2000, End: 9000},
		{Domain: "c.com", Start: 2001, End: 9000},
	}

	got := Aggregate(sessions, 1000, 2000)

	assert.Equal(t, Totals{"a.com": 2, "b.com": 7}, got)
}

func TestAggregate_SessionStartingBeforeWindowExcluded(t *testing.T) {
	sessions := []domain.SessionRecord{
		{Domain: "a.com", Start: 500, End: 60_000},
	}

	got := Aggregate(sessions, 1000, 100_000)

	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestAggregate_SumsFlooredPerSession(t *testing.T) {
	sessions := []domain.SessionRecord{
		{Domain: "a.com", Start: 0, End: 1999},
		{Domain: "a.com", Start: 10_000, End: 11_999},
		{Domain: "b.com", Start: 20_000, End: 25_500},
	}

	got := Aggregate(sessions, 0, 100_000)

	// 1.999s + 1.999s floors per session to 1 + 1, not floor(3.998) = 3.
	assert.Equal(t, Totals{"a.com": 2, "b.com": 5}, got)
}

func TestAggregate_NullDomainIsADomain(t *testing.T) {
	sessions := []domain.SessionRecord{
		{Domain: "", Start: 0, End: 3000},
	}

	got := Aggregate(sessions, 0, 10_000)

	assert.Equal(t, Totals{"": 3}, got)
	assert.Equal(t, "null", got.Rows()[0].Label())
}

func TestAggregate_Empty(t *testing.T) {
	assert.Empty(t, Aggregate(nil, 0, 1<<62))
}

func TestTotals_RowsOrdering(t *testing.T) {
	totals := Totals{"b.com": 10, "a.com": 10, "c.com": 30}

	rows := totals.Rows()

	assert.Equal(t, []Row{
		{Domain: "c.com", Seconds: 30},
		{Domain: "a.com", Seconds: 10},
		{Domain: "b.com", Seconds: 10},
	}, rows)
	assert.Equal(t, int64(50), totals.Sum())
}
