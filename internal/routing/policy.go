// ABOUTME: Dispatch policy selectors for request registration groups
// ABOUTME: SINGLE/FIRST/LAST pick ends, NEXT rotates a cursor, RANDOM is uniform

package routing

import (
	"math/rand/v2"

	"github.com/flowpro/tnc-gateway/proto/tnc"
)

// selector picks one registration from a non-empty group. Called with the
// engine lock held; NEXT mutates the group's cursor.
type selector func(*requestGroup) *requestRegistration

func selectorFor(policy tnc.Policy) selector {
	switch policy {
	case tnc.PolicyLast:
		return selectLast
	case tnc.PolicyNext:
		return selectNext
	case tnc.PolicyRandom:
		return selectRandom
	default:
		// SINGLE and FIRST both resolve to the head; SINGLE additionally
		// caps the group at one registration at registration time.
		return selectFirst
	}
}

func selectFirst(g *requestGroup) *requestRegistration {
	return g.regs[0]
}

func selectLast(g *requestGroup) *requestRegistration {
	return g.regs[len(g.regs)-1]
}

func selectNext(g *requestGroup) *requestRegistration {
	r := g.regs[g.cursor]
	g.cursor = (g.cursor + 1) % len(g.regs)
	return r
}

func selectRandom(g *requestGroup) *requestRegistration {
	return g.regs[rand.IntN(len(g.regs))]
}
