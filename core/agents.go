package core

// AgentName identifies one of the nine fixed pipeline agents.
type AgentName string

// The full roster. Eight specialists plus the Axiom challenger. The set is
// fixed at compile time; agents are never discovered at runtime.
const (
	AgentLyra  AgentName = "lyra"
	AgentMira  AgentName = "mira"
	AgentDex   AgentName = "dex"
	AgentRex   AgentName = "rex"
	AgentVela  AgentName = "vela"
	AgentKoda  AgentName = "koda"
	AgentHalo  AgentName = "halo"
	AgentNova  AgentName = "nova"
	AgentAxiom AgentName = "axiom"
)

// Challenger is the distinguished agent that critiques the specialists and
// issues verdicts.
const Challenger = AgentAxiom

// AgentInfo carries static display metadata for a roster member.
type AgentInfo struct {
	Name  AgentName
	Label string
	Role  string
}

// roster is ordered; presentation preserves this order.
var roster = []AgentInfo{
	{Name: AgentLyra, Label: "Lyra", Role: "Goal"},
	{Name: AgentMira, Label: "Mira", Role: "Stakeholder"},
	{Name: AgentDex, Label: "Dex", Role: "Requirement"},
	{Name: AgentRex, Label: "Rex", Role: "Capability"},
	{Name: AgentVela, Label: "Vela", Role: "Value"},
	{Name: AgentKoda, Label: "Koda", Role: "Value-Stream"},
	{Name: AgentHalo, Label: "Halo", Role: "Value-Chain"},
	{Name: AgentNova, Label: "Nova", Role: "Implementation"},
	{Name: AgentAxiom, Label: "Axiom", Role: "Challenger"},
}

// Roster returns the fixed agent roster in display order.
func Roster() []AgentInfo {
	out := make([]AgentInfo, len(roster))
	copy(out, roster)
	return out
}

// RosterSize is the number of agents tracked per run.
const RosterSize = 9

// Specialists returns the roster minus the challenger, in display order.
func Specialists() []AgentInfo {
	out := make([]AgentInfo, 0, len(roster)-1)
	for _, a := range roster {
		if a.Name != Challenger {
			out = append(out, a)
		}
	}
	return out
}

// LookupAgent resolves static metadata for a roster member. The second return
// is false for names outside the roster.
func LookupAgent(name AgentName) (AgentInfo, bool) {
	for _, a := range roster {
		if a.Name == name {
			return a, true
		}
	}
	return AgentInfo{}, false
}
