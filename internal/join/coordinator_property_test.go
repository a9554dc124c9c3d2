package join

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// outcomePlan описывает один прогон: сколько операций, какие из них падают и в каком порядке завершаются.
type outcomePlan struct {
	failures []bool
	order    []int
}

// genPlan строит порядок завершения сортировкой индексов по случайным ключам,
// так что весь прогон воспроизводится по seed.
func genPlan() gopter.Gen {
	return gen.SliceOf(gen.Bool()).FlatMap(func(v interface{}) gopter.Gen {
		failures := v.([]bool)
		return gen.SliceOfN(len(failures), gen.UInt32()).Map(func(keys []uint32) outcomePlan {
			order := make([]int, len(keys))
			for i := range order {
				order[i] = i
			}
			sort.SliceStable(order, func(a, b int) bool { return keys[order[a]] < keys[order[b]] })
			return outcomePlan{failures: failures, order: order}
		})
	}, reflect.TypeOf(outcomePlan{}))
}

func propertyParameters() *gopter.TestParameters {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	return parameters
}

// TestJoin_FiresExactlyOnceAfterLastCompletion проверяет, что для любого N и любого
// порядка и набора исходов продолжение вызывается ровно один раз и только после N-го завершения.
func TestJoin_FiresExactlyOnceAfterLastCompletion(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("continuation fires once after the last completion", prop.ForAll(
		func(plan outcomePlan) bool {
			fired := 0
			c := New()
			if err := c.OnFinished(func(Summary) { fired++ }); err != nil {
				return false
			}
			n := len(plan.failures)
			cycle, err := c.Begin(n)
			if err != nil {
				return false
			}
			if n == 0 {
				return fired == 1
			}
			for i, idx := range plan.order {
				if fired != 0 {
					return false
				}
				var opErr error
				if plan.failures[idx] {
					opErr = fmt.Errorf("op %d failed", idx)
				}
				if err := cycle.Complete(opErr); err != nil {
					return false
				}
				if i < n-1 && c.Pending() != n-1-i {
					return false
				}
			}
			return fired == 1 && !c.Active()
		},
		genPlan(),
	))

	properties.TestingRun(t)
}

// TestJoin_IncompleteCycleNeverFires проверяет, что меньше N завершений не вызывают продолжение.
func TestJoin_IncompleteCycleNeverFires(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("fewer than N completions never fire", prop.ForAll(
		func(n, k int) bool {
			if k >= n {
				k = n - 1
			}
			fired := false
			c := New()
			_ = c.OnFinished(func(Summary) { fired = true })
			cycle, err := c.Begin(n)
			if err != nil {
				return false
			}
			for i := 0; i < k; i++ {
				if err := cycle.Complete(nil); err != nil {
					return false
				}
			}
			return !fired && c.Pending() == n-k
		},
		gen.IntRange(1, 50),
		gen.IntRange(0, 50),
	))

	properties.TestingRun(t)
}

// TestJoin_FailuresLeaveOnlyTheirSlotsEmpty проверяет, что каждая ошибка даёт ровно одно
// сообщение в побочный канал и пустой слот, а остальные слоты заполняются.
func TestJoin_FailuresLeaveOnlyTheirSlotsEmpty(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("failed slot stays empty, others filled", prop.ForAll(
		func(plan outcomePlan) bool {
			reports := 0
			c := New(WithErrorReporter(ReporterFunc(func(string) { reports++ })))
			slots := make([]*Slot[int], len(plan.failures))
			resetters := make([]Resetter, len(slots))
			for i := range slots {
				slots[i] = &Slot[int]{}
				resetters[i] = slots[i]
			}

			// Прогоняем два цикла подряд: второй не должен видеть значений первого.
			for round := 0; round < 2; round++ {
				reports = 0
				cycle, err := c.Begin(len(slots), resetters...)
				if err != nil {
					return false
				}
				wantReports := 0
				for _, idx := range plan.order {
					var opErr error
					failed := plan.failures[idx] != (round == 1)
					if failed {
						opErr = errors.New("network error")
						wantReports++
					}
					if err := Deliver(cycle, slots[idx], idx+round, opErr); err != nil {
						return false
					}
				}
				if reports != wantReports {
					return false
				}
				for i, s := range slots {
					v, ok := s.Get()
					failed := plan.failures[i] != (round == 1)
					if failed && ok {
						return false
					}
					if !failed && (!ok || v != i+round) {
						return false
					}
				}
			}
			return true
		},
		genPlan(),
	))

	properties.TestingRun(t)
}
