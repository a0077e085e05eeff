package pipeline_test

import (
	"slices"
	"testing"

	"github.com/nikhilakjoshi/reg-interpret-server/pipeline"
)

func TestGroupByFirstSeenOrder(t *testing.T) {
	items := []string{"apple", "avocado", "banana", "apricot", "blueberry", "cherry"}

	grouping := pipeline.GroupBy(items, func(s string) string {
		return s[:1]
	})

	if expected := []string{"a", "b", "c"}; !slices.Equal(grouping.Keys(), expected) {
		t.Fatalf("expected keys %v, got %v", expected, grouping.Keys())
	}

	if group := grouping.Group("a"); !slices.Equal(group, []string{"apple", "avocado", "apricot"}) {
		t.Errorf("unexpected group a: %v", group)
	}

	if grouping.Len() != 3 {
		t.Errorf("expected 3 groups, got %d", grouping.Len())
	}
}

func TestCountBy(t *testing.T) {
	items := []string{"high", "low", "high", "medium", "high"}

	counts := pipeline.CountBy(items, func(s string) string { return s })

	if counts["high"] != 3 || counts["low"] != 1 || counts["medium"] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}
