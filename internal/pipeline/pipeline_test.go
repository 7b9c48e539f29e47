package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/spellpack/internal/config"
	"github.com/udisondev/spellpack/internal/encode"
	"github.com/udisondev/spellpack/internal/fault"
	"github.com/udisondev/spellpack/internal/resolve"
	"github.com/udisondev/spellpack/internal/stats"
)

const englishXML = `<contentList>
	<content contentuid="hFireballName" version="1">Fireball</content>
	<content contentuid="hFireballDesc" version="1">A bright streak flashes from your pointing finger.</content>
	<content contentuid="hUpcast" version="1">Deals extra damage.</content>
</contentList>`

const tooltipsXML = `<save><region id="TooltipUpcastDescriptions"><node id="root"><children>
	<node id="TooltipUpcastDescription">
		<attribute id="Name" type="FixedString" value="Fireball"/>
		<attribute id="Text" type="TranslatedString" handle="hUpcast" version="1"/>
		<attribute id="UUID" type="guid" value="5c5a0a9b"/>
	</node>
</children></node></region></save>`

const iconsXML = `<save><node id="IconUV">
	<attribute id="MapKey" type="FixedString" value="statIcons_YeenoghusHunger"/>
	<attribute id="U1" type="float" value="0.1953125"/>
	<attribute id="V1" type="float" value="0.3515625"/>
</node></save>`

const sharedSpells = `new entry "Target_Fireball"
type "SpellData"
data "SpellType" "Target"
data "Level" "3"
data "DisplayName" "hFireballName;1"
data "TooltipUpcastDescription" "5c5a0a9b"
data "Icon" "statIcons_YeenoghusHunger"

new entry "Shout_Dash"
type "SpellData"
data "SpellType" "Shout"
data "Level" "0"
`

const modSpells = `new entry "Target_Fireball"
type "SpellData"
using "Target_Fireball"
data "Description" "hFireballDesc;2"
`

const modPassives = `new entry "Passive_Alert"
type "PassiveData"
data "DisplayName" "Alert"
`

func setupUnpack(t *testing.T) config.Converter {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"English/english.xml":           englishXML,
		"Shared/GUI/tooltips.lsx":       tooltipsXML,
		"Shared/GUI/Icons_Skills.lsx":   iconsXML,
		"Shared/Stats/Spell_Target.txt": sharedSpells,
		"Shared/Stats/Status_BOOST.txt": "new entry \"IGNORED\"\n",
		"Mod/Stats/Spell_Target.txt":    modSpells,
		"Mod/Stats/Passive.txt":         modPassives,
	}
	for path, content := range files {
		full := filepath.Join(root, path)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("creating dirs for %s: %v", path, err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", path, err)
		}
	}

	cfg := config.Default()
	cfg.Version = "4.1.1"
	cfg.UnpackDir = root
	cfg.English = "English/english.xml"
	cfg.Tooltips = "Shared/GUI/tooltips.lsx"
	cfg.Spells = []string{"Shared/Stats", "Mod/Stats"}
	cfg.Layers = []string{"Shared", "MyMod"}
	cfg.Icons = []string{"Shared/GUI/Icons_Skills.lsx"}
	cfg.Textures = []string{"Shared/GUI/Icons_Skills.dds"}
	cfg.Workers = 2
	return cfg
}

func TestRun(t *testing.T) {
	cfg := setupUnpack(t)

	res, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, "4.1.1", res.Version)
	assert.Equal(t, "Shout,Target", res.SpellTypes)
	assert.Equal(t, 3, res.Primaries)
	require.Len(t, res.Records, 4)
	assert.Equal(t, [3]int{6, 11, 0}, res.Icons["statIcons_YeenoghusHunger"].Triple())
	assert.Equal(t, []string{"Shared/GUI/Icons_Skills.dds"}, res.Textures)
	assert.Equal(t, 1, res.Misses, "the literal DisplayName of Passive_Alert")
	assert.Empty(t, res.Warnings)

	// Fireball (3), Dash (0 -> 98), Alert (missing -> 99), then Fireball's override
	decoded := make([]map[string]string, len(res.Records))
	for i, rec := range res.Records {
		fields, err := encode.Decode(res.Keys, rec)
		require.NoError(t, err)
		decoded[i] = map[string]string{}
		for _, f := range fields {
			decoded[i][f.Key] = f.Value
		}
	}

	fireball := decoded[0]
	assert.Equal(t, "Fireball", fireball["DisplayName"])
	assert.Equal(t, "Fireball<br>Deals extra damage.", fireball["TooltipUpcastDescription"])
	assert.Equal(t, "Shared", fireball["mod"])
	assert.NotContains(t, fireball, "i")

	assert.Equal(t, "0", decoded[1]["Level"])
	assert.Equal(t, "Alert", decoded[2]["DisplayName"])
	assert.Equal(t, "MyMod", decoded[2]["mod"])

	patch := decoded[3]
	assert.Equal(t, "A bright streak flashes from your pointing finger.", patch["Description"])
	assert.Equal(t, "3", patch["Using"], "last layer links to itself")
	assert.Equal(t, "0", patch["i"])
	assert.Equal(t, "MyMod", patch["mod"])

	assert.Equal(t, []int{0}, res.Search["fireball"])
}

func TestRun_LayeredResolution(t *testing.T) {
	cfg := setupUnpack(t)
	c, err := NewContext(cfg)
	require.NoError(t, err)

	sources, err := stats.Discover([]string{c.path(cfg.Spells[0]), c.path(cfg.Spells[1])})
	require.NoError(t, err)
	loaded, err := stats.Load(context.Background(), stats.NewParser(c.Lang, c.Tooltips), sources, 2)
	require.NoError(t, err)

	r := resolve.NewResolver(loaded.Entries, c.Policy)

	name, ok := r.Lookup("Target_Fireball", "DisplayName")
	require.True(t, ok)
	assert.Equal(t, "Fireball", name)

	desc, ok := r.Lookup("Target_Fireball", "Description")
	require.True(t, ok)
	assert.Equal(t, "A bright streak flashes from your pointing finger.", desc)
}

func TestRun_Deterministic(t *testing.T) {
	cfg := setupUnpack(t)

	first, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := Run(context.Background(), cfg)
		require.NoError(t, err)
		assert.Equal(t, first.Records, again.Records)
		assert.Equal(t, first.Keys, again.Keys)
		assert.Equal(t, first.Digest(), again.Digest())
	}
	assert.Len(t, first.Digest(), 64)
}

func TestRun_Faults(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Converter)
		want   fault.Kind
	}{
		{"invalid config", func(c *config.Converter) { c.Layers = nil }, fault.KindConfig},
		{"missing localization", func(c *config.Converter) { c.English = "nope.xml" }, fault.KindIO},
		{"missing layer", func(c *config.Converter) { c.Spells[1] = "Absent" }, fault.KindIO},
		{"bad tooltips", func(c *config.Converter) { c.Tooltips = "English/english.xml" }, fault.KindDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := setupUnpack(t)
			tt.mutate(&cfg)

			_, err := Run(context.Background(), cfg)
			require.Error(t, err)
			assert.Equal(t, tt.want, fault.KindOf(err))
		})
	}
}

func TestDigest_ChangesWithContent(t *testing.T) {
	a := &Result{Version: "1", Keys: []string{"Level"}, Records: []string{"x"}}
	b := &Result{Version: "1", Keys: []string{"Level"}, Records: []string{"y"}}
	c := &Result{Version: "1", Keys: []string{"Level", "x"}}

	assert.NotEqual(t, a.Digest(), b.Digest())
	assert.NotEqual(t, a.Digest(), c.Digest())
}
