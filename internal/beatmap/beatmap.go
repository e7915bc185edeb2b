// internal/beatmap/beatmap.go
package beatmap

import "fmt"

// Mod specifiers with dedicated rendering rules. Anything else is treated
// as a literal mod string and layered on top of NoFail.
const (
	ModNoMod   = "NM"
	ModFreeMod = "FM"
)

// Beatmap is one mappool entry: a beatmap ID and the mod it is played with.
// Immutable once built.
type Beatmap struct {
	ID  string
	Mod string
}

func (b Beatmap) String() string {
	return fmt.Sprintf("%s-%s", b.ID, b.Mod)
}

// Commands renders the two Bancho commands that select this map in a
// multiplayer lobby: the map change and the mods change. Rendering is total;
// an unrecognized mod falls back to NoFail plus the literal mod string.
func (b Beatmap) Commands() (mapCmd, modCmd string) {
	mapCmd = fmt.Sprintf("!mp map %s", b.ID)
	switch b.Mod {
	case ModFreeMod:
		modCmd = "!mp mods 1 freemod"
	case ModNoMod:
		modCmd = "!mp mods NF"
	default:
		modCmd = fmt.Sprintf("!mp mods NF %s", b.Mod)
	}
	return mapCmd, modCmd
}

// Mappool is the ordered rotation every tryout lobby plays through.
type Mappool []Beatmap
