package icons

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/spellpack/internal/fault"
)

const skillsUV = `<?xml version="1.0" encoding="UTF-8"?>
<save>
	<region id="IconUVList">
		<node id="root">
			<children>
				<node id="IconUV">
					<attribute id="MapKey" type="FixedString" value="statIcons_YeenoghusHunger"/>
					<attribute id="U1" type="float" value="0.1953125"/>
					<attribute id="U2" type="float" value="0.2265625"/>
					<attribute id="V1" type="float" value="0.3515625"/>
					<attribute id="V2" type="float" value="0.3828125"/>
				</node>
				<node id="IconUV">
					<attribute id="U1" type="float" value="0.5"/>
				</node>
				<node id="TextureAtlasInfo">
					<attribute id="MapKey" type="FixedString" value="notAnIcon"/>
				</node>
				<node id="IconUV">
					<attribute id="MapKey" type="FixedString" value="Spell_Evocation_Fireball"/>
					<attribute id="U1" type="float" value="0"/>
					<attribute id="V1" type="float" value="0.96875"/>
				</node>
			</children>
		</node>
	</region>
</save>`

const itemsUV = `<save><node id="IconUV">
	<attribute id="MapKey" type="FixedString" value="Item_Potion"/>
	<attribute id="U1" type="float" value="0.0625"/>
	<attribute id="V1" type="float" value="0.125"/>
</node></save>`

func TestExtract(t *testing.T) {
	a := make(Atlas)
	n, err := Extract(a, strings.NewReader(skillsUV), 0)
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, [3]int{6, 11, 0}, a["statIcons_YeenoghusHunger"].Triple())
	assert.Equal(t, [3]int{0, 31, 0}, a["Spell_Evocation_Fireball"].Triple())
	assert.NotContains(t, a, "notAnIcon")
}

func TestExtract_BadCoordinate(t *testing.T) {
	doc := `<node id="IconUV"><attribute id="MapKey" value="x"/><attribute id="U1" value="abc"/></node>`
	_, err := Extract(make(Atlas), strings.NewReader(doc), 0)
	assert.Error(t, err)
}

func TestQuantize(t *testing.T) {
	tests := []struct {
		in   string
		want uint8
	}{
		{"0", 0},
		{"0.03125", 1},
		{"0.0312", 0},
		{"1", 32},
		{"-0.5", 0},
		{"100", 255},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := quantize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	skills := filepath.Join(dir, "Icons_Skills.lsx")
	items := filepath.Join(dir, "Icons_Items.lsx")
	require.NoError(t, os.WriteFile(skills, []byte(skillsUV), 0o644))
	require.NoError(t, os.WriteFile(items, []byte(itemsUV), 0o644))

	a, err := Load([]string{skills, items})
	require.NoError(t, err)

	assert.Len(t, a, 3)
	assert.Equal(t, Icon{U: 6, V: 11, Atlas: 0}, a["statIcons_YeenoghusHunger"])
	assert.Equal(t, Icon{U: 2, V: 4, Atlas: 1}, a["Item_Potion"])
}

func TestLoad_Faults(t *testing.T) {
	dir := t.TempDir()

	_, err := Load([]string{filepath.Join(dir, "absent.lsx")})
	assert.Equal(t, fault.KindIO, fault.KindOf(err))

	broken := filepath.Join(dir, "broken.lsx")
	require.NoError(t, os.WriteFile(broken, []byte(`<node id="IconUV"><attribute`), 0o644))
	_, err = Load([]string{broken})
	assert.Equal(t, fault.KindDecode, fault.KindOf(err))
}
