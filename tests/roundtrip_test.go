package toon_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toon-format/toon-go"
)

var roundtripSeeds = []any{
	map[string]any{"id": float64(1), "name": "Ada"},
	map[string]any{"user": map[string]any{"id": float64(1)}},
	map[string]any{"tags": []any{"foo", "bar"}},
	map[string]any{"items": []any{float64(1), map[string]any{"a": float64(1)}, "x"}},
	[]any{"x", "y"},
	map[string]any{"note": "hello, world"},
	map[string]any{"nested": map[string]any{"deep": map[string]any{"value": true}}},
}

func TestRoundTripDecodeEncodeIsStable(t *testing.T) {
	for i, seed := range roundtripSeeds {
		seed := seed
		t.Run(seedName(i), func(t *testing.T) {
			doc, err := toon.MarshalString(seed)
			require.NoError(t, err)

			decoded, err := toon.DecodeString(doc)
			require.NoError(t, err)
			if diff := cmp.Diff(seed, decoded); diff != "" {
				t.Fatalf("decode(encode(v)) != v (-want +got):\n%s", diff)
			}

			again, err := toon.MarshalString(decoded)
			require.NoError(t, err)
			assert.Equal(t, doc, again, "idempotence: a second encode/decode cycle must be stable")
		})
	}
}

func seedName(i int) string {
	return "seed" + string(rune('A'+i))
}

func FuzzDecodeEncode(f *testing.F) {
	for _, doc := range []string{
		"id: 1\nname: Ada",
		"tags[2]: foo,bar",
		"items[2]{id,qty}:\n  1,5\n  2,3",
		"",
		"items[0]:",
		"note: \"hello, world\"",
	} {
		f.Add(doc)
	}

	f.Fuzz(func(t *testing.T, doc string) {
		value, err := toon.DecodeString(doc, toon.WithStrictMode(false))
		if err != nil {
			return
		}
		encoded, err := toon.MarshalString(value)
		if err != nil {
			t.Fatalf("re-encode of a successfully decoded value must not fail: %v", err)
		}
		redecoded, err := toon.DecodeString(encoded, toon.WithStrictMode(false))
		if err != nil {
			t.Fatalf("re-decode of re-encoded output must not fail: %v", err)
		}
		if diff := cmp.Diff(value, redecoded); diff != "" {
			t.Fatalf("decode(encode(decode(doc))) != decode(doc) (-want +got):\n%s", diff)
		}
	})
}
