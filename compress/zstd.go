package compress

// zstdLevels maps a Level to the zstd numeric level used by both backends.
var zstdLevels = [numLevels]int{
	LevelDefault: 3,
	LevelFastest: 1,
	LevelBetter:  7,
	LevelBest:    11,
}
