package aru

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUpdate_ExclusiveOrdering is S1: concurrently submitted updates must
// never run concurrently with one another.
func TestUpdate_ExclusiveOrdering(t *testing.T) {
	c := New()
	defer c.Destroy()

	const n = 500
	var inFlight int32
	var maxInFlight int32
	var sum int

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Update(nil, func(any) {
				cur := atomic.AddInt32(&inFlight, 1)
				for {
					old := atomic.LoadInt32(&maxInFlight)
					if cur <= old || atomic.CompareAndSwapInt32(&maxInFlight, old, cur) {
						break
					}
				}
				sum++
				atomic.AddInt32(&inFlight, -1)
			}, nil)
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		c.Sync()
		return c.Stats().UpdatesExecuted == n
	}, time.Second, time.Millisecond)

	assert.Equal(t, n, sum)
	assert.EqualValues(t, 1, maxInFlight, "updates must never overlap")
}

// TestRead_DoesNotWaitOnPriorPendingRead is S1's counterpart for reads: a
// read must not be blocked by an earlier read that hasn't completed yet
// (only prior updates gate it). Execution is still serialized onto
// whichever goroutine's drain claims a given node first — true overlap is
// a scheduling property, not a correctness one — so this only asserts the
// dependency itself, at the coordinator level rather than in isolation.
func TestRead_DoesNotWaitOnPriorPendingRead(t *testing.T) {
	c := New()
	defer c.Destroy()

	block := make(chan struct{})
	secondDone := make(chan struct{})

	// The submitting goroutine runs the first read's callback itself, so
	// that read is submitted from its own goroutine and left blocked there.
	firstStarted := make(chan struct{})
	go c.Read(nil, func(any) { close(firstStarted); <-block }, nil)
	<-firstStarted
	c.Read(nil, func(any) { close(secondDone) }, nil)

	// Several goroutines also drive drain concurrently; any drain can walk
	// past the first read while it is stuck inside its callback (failing to
	// claim the locked node, then moving on) and reach the second read.
	stop := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			for {
				select {
				case <-stop:
					return
				default:
					c.Sync()
				}
			}
		}()
	}
	defer close(stop)

	select {
	case <-secondDone:
	case <-time.After(2 * time.Second):
		t.Fatal("second read must not wait on the first, still-pending, read")
	}
	close(block)

	require.Eventually(t, func() bool {
		c.Sync()
		return c.Stats().ReadsExecuted == 2
	}, time.Second, time.Millisecond)
}

// TestUpdateThenRead_SeesPriorUpdate covers basic dependency ordering
// between an update and a read submitted after it.
func TestUpdateThenRead_SeesPriorUpdate(t *testing.T) {
	c := New()
	defer c.Destroy()

	var value int
	c.Update(nil, func(a any) { *(a.(*int)) = 7 }, &value)

	var observed int
	c.Read(nil, func(a any) { observed = *(a.(*int)) }, &value)

	require.Eventually(t, func() bool {
		c.Sync()
		return c.Stats().ReadsExecuted == 1
	}, time.Second, time.Millisecond)
	assert.Equal(t, 7, observed)
}

// TestDependencyWalkIncludesTailNode resolves Open Question #2: a node at
// the coordinator's current tail boundary must itself be Done before a
// later node may run, i.e. the walk is inclusive of tail_node.
func TestDependencyWalkIncludesTailNode(t *testing.T) {
	c := New()
	defer c.Destroy()

	block := make(chan struct{})
	var secondRan int32

	// The submitting goroutine runs the first update's callback itself, so
	// that update is submitted from its own goroutine and left blocked there.
	firstStarted := make(chan struct{})
	go c.Update(nil, func(any) { close(firstStarted); <-block }, nil)
	<-firstStarted
	c.Update(nil, func(any) { atomic.StoreInt32(&secondRan, 1) }, nil)

	done := make(chan struct{})
	go func() {
		c.Sync()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
	}
	assert.EqualValues(t, 0, atomic.LoadInt32(&secondRan), "second update must wait on the tail node")

	close(block)
	require.Eventually(t, func() bool {
		c.Sync()
		return atomic.LoadInt32(&secondRan) == 1
	}, time.Second, time.Millisecond)
}

// TestInstancesAreIndependent is S4: two coordinators share no state.
func TestInstancesAreIndependent(t *testing.T) {
	c1 := New()
	defer c1.Destroy()
	c2 := New()
	defer c2.Destroy()

	c1.Update(nil, func(any) {}, nil)
	require.Eventually(t, func() bool {
		c1.Sync()
		return c1.Stats().UpdatesExecuted == 1
	}, time.Second, time.Millisecond)

	assert.EqualValues(t, 0, c2.Stats().UpdatesExecuted)
	assert.EqualValues(t, 0, c2.Stats().NodesSubmitted)
}

// TestDestroy_EmptyCoordinatorIsSafe is S6.
func TestDestroy_EmptyCoordinatorIsSafe(t *testing.T) {
	c := New()
	c.Destroy()
	c.Destroy() // idempotent
}

func TestDestroy_NilReceiverIsSafe(t *testing.T) {
	var c *Coordinator
	c.Destroy()
}

// TestSync_NoopOnEmptyCoordinator ensures Sync never blocks or panics
// before anything has been submitted.
func TestSync_NoopOnEmptyCoordinator(t *testing.T) {
	c := New()
	defer c.Destroy()
	c.Sync()
	c.Sync()
}

// TestPanickingCallback_LeavesTagPending matches the documented contract:
// a panicking callback must not transition its node's tag to Done.
func TestPanickingCallback_LeavesTagPending(t *testing.T) {
	c := New()
	defer c.Destroy()

	var tag uint32
	n := newNode(KindUpdate, &tag, func(any) { panic("boom") }, nil)

	func() {
		defer func() { recover() }()
		n.tryRun()
	}()

	assert.Equal(t, Pending, atomic.LoadUint32(&tag))
	assert.Equal(t, Pending, n.tag.Load())
}

// TestReclamationAdvancesAndBoundsRetention is a scaled-down S5: submitting
// many nodes must not retain them all — reclamation must actually run and
// advance the tail.
func TestReclamationAdvancesAndBoundsRetention(t *testing.T) {
	c := New()
	defer c.Destroy()

	const n = 20_000
	for i := 0; i < n; i++ {
		c.Update(nil, func(any) {}, nil)
		if i%64 == 0 {
			c.Sync()
		}
	}
	require.Eventually(t, func() bool {
		c.Sync()
		return c.Stats().UpdatesExecuted == n
	}, 5*time.Second, time.Millisecond)

	assert.Greater(t, c.Stats().ReclamationBatches, uint64(0))
}

// TestStats_CountsSubmittedAndExecutedByKind exercises the ambient metrics
// surface described in SPEC_FULL §4.
func TestStats_CountsSubmittedAndExecutedByKind(t *testing.T) {
	c := New()
	defer c.Destroy()

	c.Update(nil, func(any) {}, nil)
	c.Update(nil, func(any) {}, nil)
	c.Read(nil, func(any) {}, nil)

	require.Eventually(t, func() bool {
		c.Sync()
		s := c.Stats()
		return s.UpdatesExecuted == 2 && s.ReadsExecuted == 1
	}, time.Second, time.Millisecond)

	s := c.Stats()
	assert.EqualValues(t, 3, s.NodesSubmitted)
}
