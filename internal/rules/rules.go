// Package rules evaluates declarative modifier-rule tables against flat
// entity stat snapshots. One generic interpreter serves every target and
// bet type, so new rule tables need no code changes.
package rules

// Comparator is a rule predicate operator.
type Comparator string

const (
	CmpGT Comparator = ">"
	CmpLT Comparator = "<"
	CmpGE Comparator = ">="
	CmpLE Comparator = "<="
	CmpEQ Comparator = "="
)

// CombineOp folds a satisfied rule's value into the running multiplier.
type CombineOp string

const (
	OpMultiply CombineOp = "multiply"
	OpAdd      CombineOp = "add"
)

// Rule is one conditional modifier: if snapshot[Field] satisfies
// Comparator/Threshold, Value is combined into the result via Op.
type Rule struct {
	Field      string     `yaml:"field" json:"field"`
	Comparator Comparator `yaml:"comparator" json:"comparator"`
	Threshold  float64    `yaml:"threshold" json:"threshold"`
	Op         CombineOp  `yaml:"op" json:"op"`
	Value      float64    `yaml:"value" json:"value"`
}

const (
	// DefaultStat substitutes for fields missing from a snapshot.
	DefaultStat = 50.0

	// MinResult and MaxResult bound the combined multiplier.
	MinResult = 0.5
	MaxResult = 2.5
)

// Evaluate folds the rule table over the snapshot and returns the
// combined multiplier, clamped to [MinResult, MaxResult].
//
// Rules are applied strictly in table order, so a mix of multiply and
// add rules is order-dependent. That matches how the rule tables were
// authored; do not regroup by op.
func Evaluate(snapshot map[string]any, table []Rule) float64 {
	m := 1.0
	for _, r := range table {
		v := numericStat(snapshot, r.Field)
		if !r.Comparator.holds(v, r.Threshold) {
			continue
		}
		switch r.Op {
		case OpAdd:
			m += r.Value
		default: // multiply, including unknown ops
			m *= r.Value
		}
	}
	if m < MinResult {
		return MinResult
	}
	if m > MaxResult {
		return MaxResult
	}
	return m
}

// numericStat resolves a snapshot field to a float. Missing fields and
// non-numeric values coerce to DefaultStat rather than failing.
func numericStat(snapshot map[string]any, field string) float64 {
	v, ok := snapshot[field]
	if !ok {
		return DefaultStat
	}
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	default:
		return DefaultStat
	}
}

func (c Comparator) holds(v, threshold float64) bool {
	switch c {
	case CmpGT:
		return v > threshold
	case CmpLT:
		return v < threshold
	case CmpGE:
		return v >= threshold
	case CmpLE:
		return v <= threshold
	case CmpEQ:
		return v == threshold
	default:
		return false
	}
}
