package engine

import (
	"context"

	"github.com/creastat/infra/telemetry"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// RunPhaseGraph is the Phase Scheduler (spec.md §4.4): it launches one
// task per phase node, each task waiting for its own upstream nodes to
// reach a terminal state before invoking PhaseNode.Run, so that
// independent branches of the graph run concurrently and a failed or
// canceled branch never blocks a branch it has no edge to.
//
// Grounded on the teacher's executeGraph (graph.go), which drove one
// goroutine per graphNode off a plain WaitGroup; here a plain
// errgroup.Group (no derived cancellation context) launches and awaits
// the tasks. Every task returns nil — phase outcomes are recorded on the
// nodes themselves — so the returned error is always nil, and one node
// failing never cancels unrelated branches; only an explicit ctx
// cancellation does that.
func RunPhaseGraph(ctx context.Context, nodes []*PhaseNode, store *DocumentStore, executionID uuid.UUID, logger telemetry.Logger) error {
	var g errgroup.Group

	for _, node := range nodes {
		node := node
		g.Go(func() error {
			waitUpstream(node)
			node.Run(ctx, store, executionID, logger)
			return nil
		})
	}

	return g.Wait()
}

// waitUpstream blocks until every upstream node of n has reached a
// terminal state. It never consults ctx directly: a canceled context is
// observed by each node's own Run, which terminates promptly and closes
// its Done channel, so cancellation still propagates without this
// function needing to race on it.
func waitUpstream(n *PhaseNode) {
	for _, up := range n.Upstream() {
		<-up.Done()
	}
}
