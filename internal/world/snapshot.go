package world

// StatSnapshot methods flatten an entity's live statistics into the
// field map consumed by the rules evaluator. Keys match the `field`
// names used in the target-modifier rule tables.

// StatSnapshot returns the hero's flat stat view.
func (h *Hero) StatSnapshot() map[string]any {
	return map[string]any{
		"level":       float64(h.Level),
		"age":         float64(h.Age),
		"power":       h.Power,
		"guidance":    h.Guidance,
		"inspiration": h.Inspiration,
		"good":        float64(h.Alignment.Good),
		"chaotic":     float64(h.Alignment.Chaotic),
		"role":        h.Role,
	}
}

// StatSnapshot returns the settlement's flat stat view.
func (s *Settlement) StatSnapshot() map[string]any {
	return map[string]any{
		"population":    float64(s.Population),
		"prosperity":    s.Prosperity,
		"defensibility": s.Defensibility,
		"development":   s.Development,
		"type":          string(s.Type),
	}
}

// StatSnapshot returns the region's flat stat view.
func (r *Region) StatSnapshot() map[string]any {
	return map[string]any{
		"prosperity":       r.Prosperity,
		"chaos":            r.Chaos,
		"magic_affinity":   r.MagicAffinity,
		"danger_level":     r.DangerLevel,
		"divine_resonance": r.DivineResonance,
	}
}

// StatSnapshot returns the landmark's flat stat view.
func (l *Landmark) StatSnapshot() map[string]any {
	return map[string]any{
		"magic_level":  l.MagicLevel,
		"danger_level": l.DangerLevel,
		"power_level":  l.PowerLevel,
	}
}
