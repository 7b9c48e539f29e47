package fault

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"config", Config("validate", base), KindConfig},
		{"io", IO("read", "/x", base), KindIO},
		{"decode", Decode("unmarshal", "/x.xml", base), KindDecode},
		{"wrapped", fmt.Errorf("run: %w", IO("read", "/x", base)), KindIO},
		{"plain", base, KindUnknown},
		{"nil", nil, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	err := IO("read spell file", "/data/Spell_Target.txt", os.ErrNotExist)

	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, "read spell file /data/Spell_Target.txt: file does not exist", err.Error())
	assert.Equal(t, "config: bad", Config("config", errors.New("bad")).Error())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "config", KindConfig.String())
	assert.Equal(t, "io", KindIO.String())
	assert.Equal(t, "decode", KindDecode.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
