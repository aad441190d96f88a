// Package layering assigns integer levels to the nodes of a flow graph so a
// layered (hierarchical) layout can be drawn.
//
// # Strategies
//
// Every strategy implements [Assigner] and maps raw [flow.Edge] values to a
// level per node:
//
//   - [StrategyTopDown]: longest path from the roots. Roots are nodes that
//     never receive money; a graph without such a node starts from the source
//     with the largest outgoing value.
//   - [StrategyLeftRight]: static partition. Pure senders are level 0, nodes
//     that both send and receive are level 1, pure receivers are level 2.
//   - [StrategyTimeline]: nodes are numbered in the order they first appear
//     in date-sorted edges, up to a maximum level.
//
// [DemoteHubs] wraps any strategy and pushes nodes with many distinct
// counterparties one level down.
//
// # Tie-break
//
// When several parents reach a node, the node takes the maximum of the
// candidate levels: it sits no higher than the deepest path reaching it.
// For every edge (u, v) that is not part of a cycle, level(v) >= level(u)+1.
//
// # Cycles
//
// Money flows are frequently circular. [BreakCycles] removes back edges found
// by a depth-first search that starts at the roots and visits children in
// sorted order, so the residual graph is acyclic and the result is
// deterministic. Components unreachable from the roots are entered at their
// heaviest node, which then starts at level 0.
//
// # Determinism
//
// All strategies are pure functions of their input edges. Node and child
// iteration happens in [identity.Compare] order, so the same edges always
// produce the same levels regardless of row order.
package layering
