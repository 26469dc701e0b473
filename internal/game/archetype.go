package game

// ArchetypeID selects an enemy stat tuple.
type ArchetypeID string

const (
	ArchetypeGrunt  ArchetypeID = "grunt"
	ArchetypeArcher ArchetypeID = "archer"
	ArchetypeBrute  ArchetypeID = "brute"
	ArchetypeBoss   ArchetypeID = "boss"
)

// ArchetypeStats is the fixed stat tuple for one enemy archetype.
type ArchetypeStats struct {
	Health         int     `yaml:"health"`
	Speed          float64 `yaml:"speed"`
	Damage         int     `yaml:"damage"`
	DetectRange    float64 `yaml:"detect_range"`
	AttackRange    float64 `yaml:"attack_range"`
	AttackCooldown float64 `yaml:"attack_cooldown"` // seconds between attack starts
}

// ArchetypeTable maps archetype IDs to their stats.
type ArchetypeTable map[ArchetypeID]ArchetypeStats

// DefaultArchetypes returns the built-in stat table. A YAML override loaded
// at boot may replace individual entries (see internal/data).
func DefaultArchetypes() ArchetypeTable {
	return ArchetypeTable{
		ArchetypeGrunt:  {Health: 30, Speed: 3.0, Damage: 5, DetectRange: 12, AttackRange: 1.2, AttackCooldown: 1.2},
		ArchetypeArcher: {Health: 20, Speed: 2.5, Damage: 4, DetectRange: 16, AttackRange: 9.0, AttackCooldown: 2.0},
		ArchetypeBrute:  {Health: 80, Speed: 1.8, Damage: 12, DetectRange: 10, AttackRange: 1.6, AttackCooldown: 2.5},
		ArchetypeBoss:   {Health: 400, Speed: 2.2, Damage: 20, DetectRange: 22, AttackRange: 2.2, AttackCooldown: 1.8},
	}
}

// Get returns the stats for id, falling back to Grunt for unknown IDs so a
// bad spawn table cannot produce a zero-stat enemy.
func (t ArchetypeTable) Get(id ArchetypeID) ArchetypeStats {
	if s, ok := t[id]; ok {
		return s
	}
	return t[ArchetypeGrunt]
}
