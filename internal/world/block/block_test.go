package block

import (
	"testing"

	"github.com/annel0/resinfarm/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCode(t *testing.T) {
	c := ParseCode("game:log-barked-oak-ud")
	assert.Equal(t, Code{Domain: "game", Path: "log-barked-oak-ud"}, c)
	assert.Equal(t, "game:log-barked-oak-ud", c.String())
	assert.Equal(t, "log-barked-oak", c.FirstPart())

	assert.Equal(t, "game:stone", ParseCode("Stone").String())
	assert.Equal(t, "stone", ParseCode("stone").FirstPart())
	assert.Equal(t, "", ParseCode("").String())
}

func TestFaceRotationSuffix(t *testing.T) {
	cases := map[Face]string{
		FaceNorth: "-north",
		FaceSouth: "-south",
		FaceEast:  "-east",
		FaceWest:  "-west",
		FaceUp:    "-ud",
		FaceDown:  "-ud",
		FaceNone:  "-ud",
	}
	for face, want := range cases {
		t.Run(face.String(), func(t *testing.T) {
			assert.Equal(t, want, face.RotationSuffix())
		})
	}
}

func TestParseFace(t *testing.T) {
	f, err := ParseFace("West")
	require.NoError(t, err)
	assert.Equal(t, FaceWest, f)

	f, err = ParseFace("")
	require.NoError(t, err)
	assert.Equal(t, FaceNone, f)

	_, err = ParseFace("sideways")
	assert.Error(t, err)

	var decoded Face
	require.NoError(t, decoded.UnmarshalText([]byte("south")))
	assert.Equal(t, FaceSouth, decoded)
}

func TestSessionLifecycle(t *testing.T) {
	s := NewSession("BarkCuttable", nil, nil, Selection{Position: vec.Vec3{X: 1}})
	require.True(t, s.Active())
	assert.NotEmpty(t, s.ID)

	require.NoError(t, s.Advance(0.5))
	require.NoError(t, s.Advance(0.2))
	assert.Equal(t, 0.5, s.Elapsed, "время не должно убывать")

	require.NoError(t, s.Cancel())
	assert.Equal(t, StateCancelled, s.State)
	assert.ErrorIs(t, s.Advance(1), ErrSessionNotActive)
	assert.ErrorIs(t, s.Cancel(), ErrSessionNotActive)

	var nilSession *Session
	assert.False(t, nilSession.Active())
}

func TestProperties(t *testing.T) {
	props := Properties{
		"duration": 4,
		"chance":   0.25,
		"tools":    []interface{}{"game:knife-*", 7, "game:axe-*"},
		"single":   "game:saw-*",
	}

	d, ok := props.Float("duration")
	require.True(t, ok)
	assert.Equal(t, 4.0, d)

	_, ok = props.Float("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"game:knife-*", "game:axe-*"}, props.Strings("tools"))
	assert.Equal(t, []string{"game:saw-*"}, props.Strings("single"))
	assert.Nil(t, props.Strings("missing"))
}

type noopBehavior struct{ name string }

func (n noopBehavior) Name() string { return n.name }

func (n noopBehavior) Start(Agent, Selection) (*Session, Handling) { return nil, PassThrough }

func (n noopBehavior) Step(*Session, float64) (bool, error) { return false, nil }

func (n noopBehavior) Stop(*Session, float64) (StopResult, error) { return StopResult{}, nil }

func (n noopBehavior) Help() []WorldInteraction { return nil }

func TestBehaviorRegistry(t *testing.T) {
	r := NewBehaviorRegistry()
	r.Register("Noop", func(bt *BlockType, props Properties, env Env) (InteractionBehavior, error) {
		return noopBehavior{name: "Noop"}, nil
	})

	b, err := r.Create("noop", &BlockType{}, nil, Env{})
	require.NoError(t, err)
	assert.Equal(t, "Noop", b.Name())

	_, err = r.Create("missing", &BlockType{}, nil, Env{})
	assert.Error(t, err)
	assert.Equal(t, []string{"noop"}, r.Names())
}

func TestTypeTable(t *testing.T) {
	table := NewTypeTable()
	bt := &BlockType{Code: ParseCode("log-barked-oak-ud"), Variant: map[string]string{"wood": "oak"}}
	require.NoError(t, table.Add(bt))
	assert.Error(t, table.Add(bt))

	got, ok := table.Get(ParseCode("game:log-barked-oak-ud"))
	require.True(t, ok)
	assert.Equal(t, "oak", got.Block().VariantValue("wood"))
	assert.Equal(t, 1, table.Len())

	var visited []string
	table.Each(func(bt *BlockType) { visited = append(visited, bt.Code.String()) })
	assert.Equal(t, []string{"game:log-barked-oak-ud"}, visited)

	assert.Equal(t, "", Block{}.VariantValue("wood"))
}
