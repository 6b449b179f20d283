package worldgen

import "github.com/ravenna/godsworn/internal/rng"

// Procedural naming by syllable combination. Settlement names follow
// the prefix+suffix scheme; regions and landmarks get article forms.

var regionAdjectives = []string{
	"Ashen", "Gilded", "Sundered", "Verdant", "Howling", "Silent",
	"Amber", "Frozen", "Shattered", "Emerald", "Crimson", "Pale",
	"Thundering", "Veiled", "Windswept", "Umbral",
}

var regionNouns = []string{
	"Reach", "Marches", "Expanse", "Lowlands", "Highlands", "Wilds",
	"Steppe", "Vales", "Coast", "Barrens", "Heartlands", "Frontier",
}

var settlementPrefixes = []string{
	"Iron", "Green", "Ash", "Stone", "Mill", "Cross", "Black",
	"Silver", "Red", "White", "Dark", "Bright", "High", "Low",
	"Old", "New", "Far", "Deep", "Long", "Broad", "Gold", "Frost",
	"Storm", "Thorn", "Elm", "Oak", "Pine", "Copper", "River",
}

var settlementSuffixes = []string{
	"haven", "ford", "hollow", "wick", "bridge", "gate", "keep",
	"stead", "wood", "field", "dale", "crest", "vale", "port",
	"town", "bury", "marsh", "well", "brook", "cliff", "moor",
	"ridge", "watch", "fall", "rest", "point", "reach", "helm",
}

var landmarkForms = []string{
	"Sunken Temple", "Standing Stones", "Weeping Spire", "Drowned Gate",
	"Hollow Barrow", "Starfall Crater", "Whispering Grove", "Broken Throne",
	"Endless Stair", "Obsidian Arch", "Sleeping Colossus", "Mirror Lake",
}

var heroFirstNames = []string{
	"Serah", "Kaelen", "Brannoc", "Yva", "Torvald", "Maren", "Aldous",
	"Riona", "Castor", "Elowen", "Garrick", "Sable", "Oswin", "Thessaly",
	"Vael", "Ismar", "Neria", "Duncan", "Pell", "Arienne",
}

var heroEpithets = []string{
	"the Bold", "of the Ford", "Greymantle", "Ironhand", "the Quiet",
	"Swiftblade", "of the Vale", "Stormborn", "the Unbowed", "Halfmoon",
	"Emberheart", "the Wanderer", "Thrice-Blessed", "of the Deep Roads",
}

func pick(src rng.Source, list []string) string {
	return list[src.IntN(len(list))]
}

func regionName(src rng.Source) string {
	return "The " + pick(src, regionAdjectives) + " " + pick(src, regionNouns)
}

func landmarkName(src rng.Source) string {
	return "The " + pick(src, landmarkForms)
}

func heroName(src rng.Source) string {
	return pick(src, heroFirstNames) + " " + pick(src, heroEpithets)
}

// settlementNamer hands out unique prefix+suffix names.
type settlementNamer struct {
	src  rng.Source
	used map[string]bool
}

func newSettlementNamer(src rng.Source) *settlementNamer {
	return &settlementNamer{src: src, used: map[string]bool{}}
}

func (n *settlementNamer) next() string {
	for {
		name := pick(n.src, settlementPrefixes) + pick(n.src, settlementSuffixes)
		if !n.used[name] {
			n.used[name] = true
			return name
		}
	}
}
