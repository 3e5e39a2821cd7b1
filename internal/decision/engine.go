package decision

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wonny/quorum/internal/contracts"
)

// Decide derives the trade action from the final score and the policy
// thresholds. Pure function: no I/O, fully reproducible from its inputs.
//
// Strict inequalities: a score exactly on a threshold is HOLD.
func Decide(finalScore float64, policy contracts.WeightPolicy) contracts.Action {
	switch {
	case finalScore > policy.BuyThreshold:
		return contracts.ActionBuy
	case finalScore < policy.SellThreshold:
		return contracts.ActionSell
	default:
		return contracts.ActionHold
	}
}

// Reasoning builds the human-readable summary recorded on every decision:
// weighted score, derived action, and the individual agent scores in a
// stable order.
func Reasoning(finalScore float64, action contracts.Action, agentScores map[string]float64) string {
	agents := make([]string, 0, len(agentScores))
	for agent := range agentScores {
		agents = append(agents, agent)
	}
	sort.Strings(agents)

	parts := make([]string, 0, len(agents))
	for _, agent := range agents {
		parts = append(parts, fmt.Sprintf("%s: %.2f", agent, agentScores[agent]))
	}

	return fmt.Sprintf("weighted score %.3f → %s. agent scores: %s",
		finalScore, action, strings.Join(parts, ", "))
}
