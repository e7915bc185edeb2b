// internal/beatmap/beatmap_test.go
package beatmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandsRendering(t *testing.T) {
	tests := []struct {
		name       string
		b          Beatmap
		wantMapCmd string
		wantModCmd string
	}{
		{
			name:       "no modifier renders plain nofail",
			b:          Beatmap{ID: "1425962", Mod: ModNoMod},
			wantMapCmd: "!mp map 1425962",
			wantModCmd: "!mp mods NF",
		},
		{
			name:       "free mod renders freemod toggle",
			b:          Beatmap{ID: "2117567", Mod: ModFreeMod},
			wantMapCmd: "!mp map 2117567",
			wantModCmd: "!mp mods 1 freemod",
		},
		{
			name:       "named mod layers on nofail",
			b:          Beatmap{ID: "129891", Mod: "HD"},
			wantMapCmd: "!mp map 129891",
			wantModCmd: "!mp mods NF HD",
		},
		{
			name:       "unrecognized mod falls back to literal",
			b:          Beatmap{ID: "53", Mod: "HDHR"},
			wantMapCmd: "!mp map 53",
			wantModCmd: "!mp mods NF HDHR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapCmd, modCmd := tt.b.Commands()
			assert.Equal(t, tt.wantMapCmd, mapCmd)
			assert.Equal(t, tt.wantModCmd, modCmd)
		})
	}
}
