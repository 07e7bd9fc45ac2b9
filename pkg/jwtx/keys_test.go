package jwtx_test

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/alex2808pl/url-shortener/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func b64(n int, fill byte) string {
	return base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{fill}, n))
}

func TestLoadKeys(t *testing.T) {
	tests := []struct {
		name    string
		access  string
		refresh string
		alg     string
		wantErr error
	}{
		{"valid HS256", b64(32, 'a'), b64(32, 'b'), "HS256", nil},
		{"valid HS512", b64(64, 'a'), b64(64, 'b'), "HS512", nil},
		{"missing access", "", b64(32, 'b'), "HS256", jwtx.ErrKeyMissing},
		{"missing refresh", b64(32, 'a'), "  ", "HS256", jwtx.ErrKeyMissing},
		{"too short", b64(31, 'a'), b64(32, 'b'), "HS256", jwtx.ErrKeyTooShort},
		{"too short for HS384", b64(32, 'a'), b64(48, 'b'), "HS384", jwtx.ErrKeyTooShort},
		{"not base64", "%%%not-base64%%%", b64(32, 'b'), "HS256", jwtx.ErrKeyEncoding},
		{"identical", b64(32, 'a'), b64(32, 'a'), "HS256", jwtx.ErrKeysIdentical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys, err := jwtx.LoadKeys(tt.access, tt.refresh, tt.alg)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, keys.Access, jwtx.MinKeyLen(tt.alg))
			require.NotEqual(t, keys.Access, keys.Refresh)
		})
	}
}

func TestDecodeKeyAcceptsURLAlphabet(t *testing.T) {
	raw := bytes.Repeat([]byte{0xfb, 0xff}, 16)
	encoded := base64.RawURLEncoding.EncodeToString(raw)

	k, err := jwtx.DecodeKey(encoded, "HS256")
	require.NoError(t, err)
	require.Equal(t, raw, []byte(k))
}
